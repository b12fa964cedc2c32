// Package dilithium implements CRYSTALS-Dilithium key generation, signing,
// and verification (FIPS 204, draft), orchestrating pkg/field, pkg/ntt,
// pkg/poly, pkg/sampling, pkg/packing, and pkg/shake.
package dilithium

import (
	"bytes"
	"crypto"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"zkdilithium-signer/pkg/field"
	"zkdilithium-signer/pkg/packing"
	"zkdilithium-signer/pkg/params"
	"zkdilithium-signer/pkg/poly"
	"zkdilithium-signer/pkg/sampling"
	"zkdilithium-signer/pkg/shake"
)

// Mode selects the security level; re-exported for callers that only import
// this package.
type Mode = params.Mode

const (
	Mode2 = params.Mode2
	Mode3 = params.Mode3
	Mode5 = params.Mode5
)

// PublicKey is rho (the matrix seed) plus t1, the high-order bits of
// t = A*s1 + s2 (spec.md §3).
type PublicKey struct {
	mode params.Mode
	rho  []byte
	t1   poly.Vector
}

// PrivateKey is the full expanded signing key: rho, the signing key key,
// tr = H(pk), and s1/s2/t0 (spec.md §3).
type PrivateKey struct {
	mode params.Mode
	rho  []byte
	key  []byte
	tr   []byte
	s1   poly.Vector
	s2   poly.Vector
	t0   poly.Vector

	pub *PublicKey
}

// Mode reports the security level a key was generated for.
func (pk *PublicKey) Mode() params.Mode { return pk.mode }

// Mode reports the security level a key was generated for.
func (sk *PrivateKey) Mode() params.Mode { return sk.mode }

// Public returns the corresponding public key, satisfying crypto.Signer.
func (sk *PrivateKey) Public() crypto.PublicKey { return sk.pub }

// Equal reports whether two public keys are identical, satisfying the
// crypto.PublicKey.Equal convention.
func (pk *PublicKey) Equal(x crypto.PublicKey) bool {
	other, ok := x.(*PublicKey)
	if !ok || other.mode != pk.mode || !bytes.Equal(other.rho, pk.rho) {
		return false
	}
	for i := range pk.t1 {
		if !poly.Equal(&pk.t1[i], &other.t1[i]) {
			return false
		}
	}
	return true
}

// GenerateKey derives a keypair from a 32-byte seed (spec.md §4.I,
// Algorithm 6 KeyGen). A caller wanting fresh randomness should pass
// crypto/rand output; a caller reproducing a known-answer test passes a
// fixed seed.
func GenerateKey(mode params.Mode, seed []byte) (*PublicKey, *PrivateKey, error) {
	if len(seed) != params.SeedBytes {
		return nil, nil, fmt.Errorf("dilithium: seed must be %d bytes, got %d", params.SeedBytes, len(seed))
	}
	p := params.For(mode)

	expanded := shake.Sum(2*params.SeedBytes+params.MuBytes, seed)
	rho := append([]byte{}, expanded[:params.SeedBytes]...)
	rhoPrime := expanded[params.SeedBytes : params.SeedBytes+params.MuBytes]
	key := append([]byte{}, expanded[params.SeedBytes+params.MuBytes:params.SeedBytes+params.MuBytes+params.SeedBytes]...)

	a := sampling.Matrix(rho, p.K, p.L)
	s1, s2 := sampling.SecretVectors(rhoPrime, p.L, p.K, p.Eta)

	s1Hat := ntTCopy(s1)
	t := poly.MatVecMulNTT(a, s1Hat)
	poly.InvNTTVector(t)
	t = poly.AddVector(t, s2)

	t1 := make(poly.Vector, p.K)
	t0 := make(poly.Vector, p.K)
	for i := range t {
		t1[i], t0[i] = t[i].Power2Round()
	}

	pub := &PublicKey{mode: mode, rho: rho, t1: t1}
	tr := shake.Sum(params.CRHBytes, packPublicKey(pub, p))

	priv := &PrivateKey{
		mode: mode,
		rho:  rho,
		key:  key,
		tr:   tr,
		s1:   s1,
		s2:   s2,
		t0:   t0,
		pub:  pub,
	}
	return pub, priv, nil
}

func ntTCopy(v poly.Vector) poly.Vector {
	out := make(poly.Vector, len(v))
	copy(out, v)
	poly.NTTVector(out)
	return out
}

// SignOptions configures a single signing call. The zero value reproduces
// spec.md §4.I exactly: empty context, deterministic signing.
type SignOptions struct {
	// Context is an optional domain-separation string, at most 255 bytes.
	// A nil Context reproduces spec.md's mu = SHAKE256(tr||m, 64) bit for
	// bit; a non-nil (possibly empty) Context switches to the FIPS 204
	// final-text convention mu = SHAKE256(tr || 0 || len(ctx) || ctx || m,
	// 64), an additive capability (SPEC_FULL.md §5).
	Context []byte
	// Randomized enables the RANDOMIZED_SIGNING hedge (spec.md §6): when
	// true, Rand (or crypto/rand.Reader if nil) supplies 32 bytes folded
	// into rho' so repeated signatures over the same message differ.
	Randomized bool
	Rand       io.Reader
}

func (o *SignOptions) randReader() io.Reader {
	if o == nil || o.Rand == nil {
		return rand.Reader
	}
	return o.Rand
}

func (o *SignOptions) randomized() bool {
	return o != nil && o.Randomized
}

func (o *SignOptions) context() []byte {
	if o == nil {
		return nil
	}
	return o.Context
}

func computeMu(tr, msg, ctx []byte) []byte {
	if ctx == nil {
		return shake.Sum(params.MuBytes, tr, msg)
	}
	return shake.Sum(params.MuBytes, tr, []byte{0, byte(len(ctx))}, ctx, msg)
}

// Sign produces a detached signature over msg (spec.md §4.I, Algorithm 7
// Sign_internal), retrying the rejection loop until all four conditions
// (||z||, ||r0||, ||ct0|| and the hint weight) are satisfied.
func Sign(sk *PrivateKey, msg []byte, opts *SignOptions) ([]byte, error) {
	if len(opts.context()) > 255 {
		return nil, errors.New("dilithium: context must be at most 255 bytes")
	}
	p := params.For(sk.mode)
	mu := computeMu(sk.tr, msg, opts.context())

	var rhoPrime []byte
	if opts.randomized() {
		rnd := make([]byte, params.SeedBytes)
		if _, err := io.ReadFull(opts.randReader(), rnd); err != nil {
			return nil, fmt.Errorf("dilithium: reading randomness: %w", err)
		}
		rhoPrime = shake.Sum(params.MuBytes, sk.key, rnd, mu)
	} else {
		rhoPrime = shake.Sum(params.MuBytes, sk.key, mu)
	}

	a := sampling.Matrix(sk.rho, p.K, p.L)
	s1Hat := ntTCopy(sk.s1)
	s2Hat := ntTCopy(sk.s2)
	t0Hat := ntTCopy(sk.t0)

	gamma1Minus := p.Gamma1 - p.Beta
	gamma2Minus := p.Gamma2 - p.Beta

	for kappa := uint16(0); ; kappa += uint16(p.L) {
		y := sampling.MaskVector(rhoPrime, p.L, kappa, p.Gamma1, p.Gamma1Bits, p.PolyZBytes)
		yHat := ntTCopy(y)

		w := poly.MatVecMulNTT(a, yHat)
		poly.InvNTTVector(w)

		w1 := make(poly.Vector, p.K)
		for i := range w {
			w1[i], _ = w[i].Decompose(p.Gamma2)
		}

		cTilde := shake.Sum(params.SeedBytes, mu, packW1(w1, p))
		c := sampling.Challenge(cTilde, p.Tau)
		cHat := c
		cHat.NTT()

		z := make(poly.Vector, p.L)
		ok := true
		for i := range z {
			cs1 := poly.MulNTT(&cHat, &s1Hat[i])
			cs1.InvNTT()
			z[i] = poly.Add(&y[i], &cs1)
			if !z[i].CheckNorm(gamma1Minus) {
				ok = false
			}
		}
		if !ok {
			continue
		}

		wcs2 := make(poly.Vector, p.K)
		for i := range wcs2 {
			cs2 := poly.MulNTT(&cHat, &s2Hat[i])
			cs2.InvNTT()
			wcs2[i] = poly.Sub(&w[i], &cs2)
		}
		for i := range wcs2 {
			_, r0 := wcs2[i].Decompose(p.Gamma2)
			if !r0.CheckNorm(gamma2Minus) {
				ok = false
			}
		}
		if !ok {
			continue
		}

		ct0 := make(poly.Vector, p.K)
		for i := range ct0 {
			v := poly.MulNTT(&cHat, &t0Hat[i])
			v.InvNTT()
			ct0[i] = v
			if !ct0[i].CheckNorm(p.Gamma2) {
				ok = false
			}
		}
		if !ok {
			continue
		}

		hints := make([]*[params.N]bool, p.K)
		totalWeight := 0
		for i := range hints {
			var zArg, rArg poly.Poly
			for j := 0; j < params.N; j++ {
				zArg[j] = field.Freeze(-ct0[i][j])
				rArg[j] = field.Freeze(wcs2[i][j] + ct0[i][j])
			}
			h := &[params.N]bool{}
			totalWeight += poly.MakeHint(&zArg, &rArg, p.Gamma2, h)
			hints[i] = h
		}
		if totalWeight > p.Omega {
			continue
		}

		for i := range z {
			z[i].Normalize()
		}
		hintBytes, err := packing.PackHint(hints, p.Omega)
		if err != nil {
			continue
		}
		return packSignature(cTilde, z, hintBytes, p), nil
	}
}

// Open verifies a detached signature (spec.md §4.I, Algorithm 8
// Verify_internal).
func Open(pub *PublicKey, msg, sig []byte, opts *SignOptions) error {
	p := params.For(pub.mode)
	if len(sig) != p.SignatureBytes {
		return fmt.Errorf("dilithium: signature length %d, want %d", len(sig), p.SignatureBytes)
	}
	cTilde, z, hints, err := unpackSignature(sig, p)
	if err != nil {
		return fmt.Errorf("dilithium: %w", err)
	}

	for i := range z {
		if !z[i].CheckNorm(p.Gamma1 - p.Beta) {
			return errors.New("dilithium: z out of range")
		}
	}

	tr := shake.Sum(params.CRHBytes, packPublicKey(pub, p))
	mu := computeMu(tr, msg, opts.context())

	c := sampling.Challenge(cTilde, p.Tau)
	cHat := c
	cHat.NTT()

	a := sampling.Matrix(pub.rho, p.K, p.L)
	zHat := ntTCopy(z)
	az := poly.MatVecMulNTT(a, zHat)

	t1Shifted := make(poly.Vector, p.K)
	for i := range pub.t1 {
		t1Shifted[i] = pub.t1[i].ShiftLeft(params.D)
	}
	t1Hat := ntTCopy(t1Shifted)

	w1 := make(poly.Vector, p.K)
	for i := range az {
		ct1 := poly.MulNTT(&cHat, &t1Hat[i])
		v := poly.Sub(&az[i], &ct1)
		v.InvNTT()
		w1[i] = poly.UseHint(&v, hints[i], p.Gamma2)
	}

	cTilde2 := shake.Sum(params.SeedBytes, mu, packW1(w1, p))
	if !bytes.Equal(cTilde, cTilde2) {
		return errors.New("dilithium: signature verification failed")
	}
	return nil
}

// Verify is a convenience wrapper over Open returning a bool instead of an
// error, matching the free-function surface spec.md §6 asks for.
func Verify(pub *PublicKey, msg, sig []byte) bool {
	return Open(pub, msg, sig, nil) == nil
}

// SignMessage returns the bundled form sm = sig || msg (spec.md §6).
func SignMessage(sk *PrivateKey, msg []byte, opts *SignOptions) ([]byte, error) {
	sig, err := Sign(sk, msg, opts)
	if err != nil {
		return nil, err
	}
	sm := make([]byte, 0, len(sig)+len(msg))
	sm = append(sm, sig...)
	sm = append(sm, msg...)
	return sm, nil
}

// OpenMessage splits sm = sig || msg, verifies it, and returns msg on
// success.
func OpenMessage(pub *PublicKey, sm []byte, opts *SignOptions) ([]byte, error) {
	p := params.For(pub.mode)
	if len(sm) < p.SignatureBytes {
		return nil, errors.New("dilithium: signed message shorter than a signature")
	}
	sig, msg := sm[:p.SignatureBytes], sm[p.SignatureBytes:]
	if err := Open(pub, msg, sig, opts); err != nil {
		return nil, err
	}
	return msg, nil
}

// Bytes serializes pk per spec.md §4.F: rho || t1.
func (pk *PublicKey) Bytes() []byte {
	return packPublicKey(pk, params.For(pk.mode))
}

// ParsePublicKey deserializes a public key previously produced by Bytes.
func ParsePublicKey(mode params.Mode, data []byte) (*PublicKey, error) {
	return unpackPublicKey(mode, data)
}

// Bytes serializes sk per spec.md §4.F: rho || key || tr || s1 || s2 || t0.
func (sk *PrivateKey) Bytes() []byte {
	return packPrivateKey(sk, params.For(sk.mode))
}

// ParsePrivateKey deserializes a private key previously produced by Bytes,
// recomputing the cached public key from s1/s2/rho.
func ParsePrivateKey(mode params.Mode, data []byte) (*PrivateKey, error) {
	return unpackPrivateKey(mode, data)
}

// Sign implements crypto.Signer. digest is treated as the message directly
// (Dilithium signs the message, not a pre-hashed digest); opts is accepted
// for interface compatibility and ignored beyond requiring crypto.Hash(0).
func (sk *PrivateKey) Sign(rnd io.Reader, digest []byte, opts crypto.SignerOpts) ([]byte, error) {
	if opts != nil && opts.HashFunc() != crypto.Hash(0) {
		return nil, errors.New("dilithium: pre-hashed signing is not supported, pass crypto.Hash(0)")
	}
	return Sign(sk, digest, &SignOptions{Randomized: rnd != nil, Rand: rnd})
}

func packPublicKey(pk *PublicKey, p params.Params) []byte {
	out := make([]byte, 0, p.PublicKeyBytes)
	out = append(out, pk.rho...)
	for i := range pk.t1 {
		out = append(out, packing.PackT1(&pk.t1[i])...)
	}
	return out
}

func unpackPublicKey(mode params.Mode, data []byte) (*PublicKey, error) {
	p := params.For(mode)
	if len(data) != p.PublicKeyBytes {
		return nil, fmt.Errorf("public key length %d, want %d", len(data), p.PublicKeyBytes)
	}
	rho := append([]byte{}, data[:params.SeedBytes]...)
	rest := data[params.SeedBytes:]
	t1 := make(poly.Vector, p.K)
	for i := range t1 {
		t1[i] = packing.UnpackT1(rest[i*p.PolyT1Bytes : (i+1)*p.PolyT1Bytes])
	}
	return &PublicKey{mode: mode, rho: rho, t1: t1}, nil
}

func packPrivateKey(sk *PrivateKey, p params.Params) []byte {
	out := make([]byte, 0, p.PrivateKeyBytes)
	out = append(out, sk.rho...)
	out = append(out, sk.key...)
	out = append(out, sk.tr...)
	for i := range sk.s1 {
		out = append(out, packing.PackEta(&sk.s1[i], p.Eta, p.EtaBits)...)
	}
	for i := range sk.s2 {
		out = append(out, packing.PackEta(&sk.s2[i], p.Eta, p.EtaBits)...)
	}
	for i := range sk.t0 {
		out = append(out, packing.PackT0(&sk.t0[i])...)
	}
	return out
}

func unpackPrivateKey(mode params.Mode, data []byte) (*PrivateKey, error) {
	p := params.For(mode)
	if len(data) != p.PrivateKeyBytes {
		return nil, fmt.Errorf("private key length %d, want %d", len(data), p.PrivateKeyBytes)
	}
	off := 0
	rho := append([]byte{}, data[off:off+params.SeedBytes]...)
	off += params.SeedBytes
	key := append([]byte{}, data[off:off+params.SeedBytes]...)
	off += params.SeedBytes
	tr := append([]byte{}, data[off:off+params.CRHBytes]...)
	off += params.CRHBytes

	s1 := make(poly.Vector, p.L)
	for i := range s1 {
		s1[i] = packing.UnpackEta(data[off:off+p.PolyEtaBytes], p.Eta, p.EtaBits)
		off += p.PolyEtaBytes
	}
	s2 := make(poly.Vector, p.K)
	for i := range s2 {
		s2[i] = packing.UnpackEta(data[off:off+p.PolyEtaBytes], p.Eta, p.EtaBits)
		off += p.PolyEtaBytes
	}
	t0 := make(poly.Vector, p.K)
	for i := range t0 {
		t0[i] = packing.UnpackT0(data[off : off+p.PolyT0Bytes])
		off += p.PolyT0Bytes
	}

	// The private key encoding carries t0 but not t1 (spec.md §3); recompute
	// t = A*s1 + s2 the same way GenerateKey did, to rebuild the public key
	// that PrivateKey.Public() (crypto.Signer) needs.
	a := sampling.Matrix(rho, p.K, p.L)
	s1Hat := ntTCopy(s1)
	t := poly.MatVecMulNTT(a, s1Hat)
	poly.InvNTTVector(t)
	t = poly.AddVector(t, s2)
	t1 := make(poly.Vector, p.K)
	for i := range t {
		t1[i], _ = t[i].Power2Round()
	}

	priv := &PrivateKey{
		mode: mode, rho: rho, key: key, tr: tr, s1: s1, s2: s2, t0: t0,
		pub: &PublicKey{mode: mode, rho: rho, t1: t1},
	}
	return priv, nil
}

func packW1(w1 poly.Vector, p params.Params) []byte {
	out := make([]byte, 0, len(w1)*p.PolyW1Bytes)
	for i := range w1 {
		out = append(out, packing.PackW1(&w1[i], p.W1Bits)...)
	}
	return out
}

func packSignature(cTilde []byte, z poly.Vector, hintBytes []byte, p params.Params) []byte {
	out := make([]byte, 0, p.SignatureBytes)
	out = append(out, cTilde...)
	for i := range z {
		out = append(out, packing.PackZ(&z[i], p.Gamma1, p.Gamma1Bits)...)
	}
	out = append(out, hintBytes...)
	return out
}

func unpackSignature(sig []byte, p params.Params) (cTilde []byte, z poly.Vector, hints []*[params.N]bool, err error) {
	off := 0
	cTilde = append([]byte{}, sig[off:off+params.SeedBytes]...)
	off += params.SeedBytes

	z = make(poly.Vector, p.L)
	for i := range z {
		z[i] = packing.UnpackZ(sig[off:off+p.PolyZBytes], p.Gamma1, p.Gamma1Bits)
		off += p.PolyZBytes
	}

	hints, err = packing.UnpackHint(sig[off:], p.Omega, p.K)
	if err != nil {
		return nil, nil, nil, err
	}
	return cTilde, z, hints, nil
}
