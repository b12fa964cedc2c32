// Package sampling implements the rejection samplers that turn SHAKE output
// into uniform ring elements, eta-bounded secrets, gamma1-bounded masks, and
// the sparse challenge polynomial (spec.md §4.E, FIPS 204 Algorithms
// 29-31/34).
package sampling

import (
	"zkdilithium-signer/pkg/field"
	"zkdilithium-signer/pkg/packing"
	"zkdilithium-signer/pkg/params"
	"zkdilithium-signer/pkg/poly"
	"zkdilithium-signer/pkg/shake"
)

// UniformPoly rejection-samples a polynomial with coefficients uniform in
// [0,q), reading 3 bytes per candidate coefficient (FIPS 204 Algorithm 30).
func UniformPoly(xof *shake.StreamingXOF128) poly.Poly {
	var p poly.Poly
	i := 0
	for i < params.N {
		b0, b1, b2 := xof.Read3()
		d := (uint32(b0) | uint32(b1)<<8 | uint32(b2)<<16) & 0x7FFFFF
		if d < field.Q {
			p[i] = int32(d)
			i++
		}
	}
	return p
}

// etaHalfByteValue maps a 4-bit candidate d to a coefficient in [-eta,eta],
// reporting whether d was accepted (FIPS 204 Algorithm 31, CoeffFromHalfByte).
func etaHalfByteValue(d uint8, eta int32) (int32, bool) {
	if eta == 2 {
		if d >= 15 {
			return 0, false
		}
		return field.Freeze(2 - int32(d%5)), true
	}
	// eta == 4
	if d >= 9 {
		return 0, false
	}
	return field.Freeze(4 - int32(d)), true
}

// EtaPoly rejection-samples a polynomial with coefficients in [-eta, eta]
// from a streaming SHAKE256 XOF, 4 bits (a half-byte) per candidate.
func EtaPoly(xof *shake.StreamingXOF256, eta int32) poly.Poly {
	var p poly.Poly
	i := 0
	for i < params.N {
		b0, b1, b2 := xof.Read3()
		for _, b := range [3]byte{b0, b1, b2} {
			if v, ok := etaHalfByteValue(b&0xF, eta); ok {
				p[i] = v
				i++
				if i >= params.N {
					break
				}
			}
			if v, ok := etaHalfByteValue(b>>4, eta); ok {
				p[i] = v
				i++
				if i >= params.N {
					break
				}
			}
		}
	}
	return p
}

// GammaPoly derives the masking polynomial y from a SHAKE256 stream over
// seed||nonce, unpacking gamma1Bits-wide coefficients directly — no
// rejection is needed since the packed width exactly spans [0, 2*gamma1)
// (FIPS 204 Algorithm 34, ExpandMask).
func GammaPoly(seed []byte, nonce uint16, gamma1 int32, gamma1Bits, polyBytes int) poly.Poly {
	stream := shake.Sum(polyBytes, seed, []byte{byte(nonce), byte(nonce >> 8)})
	return packing.UnpackZ(stream, gamma1, gamma1Bits)
}

// Matrix expands the public matrix A (K x L polynomials, already in NTT
// domain — the rejection-sampled output is used as-is, spec.md §3) from
// seed rho, one SHAKE128 stream per (i,j) pair keyed by nonce 256*i+j
// (FIPS 204 Algorithm 32, ExpandA). The seed is absorbed once and its
// post-absorption state cloned for every (i,j), avoiding K*L re-hashes.
func Matrix(rho []byte, k, l int) poly.Matrix {
	a := poly.NewMatrix(k, l)
	x := shake.NewSeedClonableXOF128(rho)
	for i := 0; i < k; i++ {
		for j := 0; j < l; j++ {
			x.SetNonce(uint16(i<<8 | j))
			a[i][j] = uniformFromClonable(x)
		}
	}
	return a
}

func uniformFromClonable(x *shake.SeedClonableXOF128) poly.Poly {
	var p poly.Poly
	i := 0
	for i < params.N {
		b0, b1, b2 := x.Read3()
		d := (uint32(b0) | uint32(b1)<<8 | uint32(b2)<<16) & 0x7FFFFF
		if d < field.Q {
			p[i] = int32(d)
			i++
		}
	}
	return p
}

// SecretVectors expands s1 (length l) and s2 (length k) from seed, each
// coefficient bounded by eta, nonces assigned consecutively 0..l+k-1 (FIPS
// 204 Algorithm 33, ExpandS).
func SecretVectors(seed []byte, l, k int, eta int32) (s1, s2 poly.Vector) {
	s1 = poly.NewVector(l)
	s2 = poly.NewVector(k)
	xof := shake.NewStreamingXOF256(seed, 0)
	for i := 0; i < l; i++ {
		xof.Reset(seed, uint16(i))
		s1[i] = EtaPoly(xof, eta)
	}
	for i := 0; i < k; i++ {
		xof.Reset(seed, uint16(l+i))
		s2[i] = EtaPoly(xof, eta)
	}
	return
}

// MaskVector expands the masking vector y (length l) from seed and a
// starting nonce, FIPS 204 Algorithm 34 applied per coordinate.
func MaskVector(seed []byte, l int, startNonce uint16, gamma1 int32, gamma1Bits, polyBytes int) poly.Vector {
	y := poly.NewVector(l)
	for i := 0; i < l; i++ {
		y[i] = GammaPoly(seed, startNonce+uint16(i), gamma1, gamma1Bits, polyBytes)
	}
	return y
}

// Challenge samples the sparse, tau-weight, +-1 challenge polynomial from a
// SHAKE256 stream seeded by c~ (FIPS 204 Algorithm 29, SampleInBall).
//
// The first 8 bytes of the stream supply one sign bit per set position; the
// remaining bytes supply a Fisher-Yates-style shuffle of the last tau
// positions, rejecting any candidate swap index that does not fit in the
// current range.
func Challenge(cTilde []byte, tau int) poly.Poly {
	var c poly.Poly
	h := shakeReader(cTilde)

	var signBytes [8]byte
	h.read(signBytes[:])
	var signs uint64
	for i, b := range signBytes {
		signs |= uint64(b) << uint(8*i)
	}

	for i := params.N - tau; i < params.N; i++ {
		var b byte
		for {
			b = h.readByte()
			if int(b) <= i {
				break
			}
		}
		j := int(b)
		c[i] = c[j]
		if signs&1 == 1 {
			c[j] = field.Q - 1
		} else {
			c[j] = 1
		}
		signs >>= 1
	}
	return c
}

// shakeStream is a minimal single-byte-at-a-time SHAKE256 reader used only
// by Challenge, which (unlike the rejection samplers above) consumes a
// variable, data-dependent number of individual bytes.
type shakeStream struct {
	x *shake.StreamingXOF256
}

func shakeReader(seed []byte) shakeStream {
	return shakeStream{x: shake.NewStreamingXOF256Seed(seed)}
}

func (s shakeStream) read(buf []byte) {
	s.x.ReadBytes(buf)
}

func (s shakeStream) readByte() byte {
	var b [1]byte
	s.x.ReadBytes(b[:])
	return b[0]
}
