// Package packing provides the bit-exact pack/unpack pairs for every
// structured object in the scheme: t1/t0 (key split), eta-bounded secrets,
// gamma1-bounded masks, w1 (commitment high bits), and the hint vector.
//
// Every packer bit-packs coefficients LSB-first into consecutive bytes, the
// same simple bit-packing convention the teacher used for its fixed-width
// eta/gamma1 polynomials, generalized here to an arbitrary width per
// coefficient so one routine serves every object in spec.md §4.F.
package packing

import (
	"fmt"

	"zkdilithium-signer/pkg/field"
	"zkdilithium-signer/pkg/params"
	"zkdilithium-signer/pkg/poly"
)

// packBits bit-packs vals (each assumed to fit in bitsPerCoeff bits)
// LSB-first into a byte slice of length ceil(len(vals)*bitsPerCoeff/8).
func packBits(vals []int32, bitsPerCoeff int) []byte {
	out := make([]byte, (len(vals)*bitsPerCoeff+7)/8)
	var acc uint32
	accBits := 0
	pos := 0
	for _, v := range vals {
		acc |= uint32(v) << uint(accBits)
		accBits += bitsPerCoeff
		for accBits >= 8 {
			out[pos] = byte(acc)
			acc >>= 8
			accBits -= 8
			pos++
		}
	}
	if accBits > 0 {
		out[pos] = byte(acc)
	}
	return out
}

// unpackBits inverts packBits, reading n values of bitsPerCoeff bits each.
func unpackBits(data []byte, n, bitsPerCoeff int) []int32 {
	out := make([]int32, n)
	mask := uint32(1)<<uint(bitsPerCoeff) - 1
	var acc uint32
	accBits := 0
	pos := 0
	for i := 0; i < n; i++ {
		for accBits < bitsPerCoeff {
			acc |= uint32(data[pos]) << uint(accBits)
			pos++
			accBits += 8
		}
		out[i] = int32(acc & mask)
		acc >>= uint(bitsPerCoeff)
		accBits -= bitsPerCoeff
	}
	return out
}

// PackT1 packs the 10-bit high-order public key coefficients.
func PackT1(p *poly.Poly) []byte {
	vals := make([]int32, params.N)
	for i, c := range p {
		vals[i] = field.Freeze(c)
	}
	return packBits(vals, 10)
}

// UnpackT1 inverts PackT1.
func UnpackT1(data []byte) poly.Poly {
	var p poly.Poly
	copy(p[:], unpackBits(data, params.N, 10))
	return p
}

// PackT0 packs the D=13-bit low-order private key coefficients, stored
// centered at 2^(D-1) so the packed value is always in [0, 2^D).
func PackT0(p *poly.Poly) []byte {
	const bias = 1 << (params.D - 1)
	vals := make([]int32, params.N)
	for i, c := range p {
		vals[i] = field.Freeze(bias - c)
	}
	return packBits(vals, params.D)
}

// UnpackT0 inverts PackT0.
func UnpackT0(data []byte) poly.Poly {
	const bias = 1 << (params.D - 1)
	var p poly.Poly
	unpacked := unpackBits(data, params.N, params.D)
	for i, v := range unpacked {
		p[i] = field.Freeze(bias - v)
	}
	return p
}

// PackEta packs a polynomial with coefficients in [-eta, eta], bits wide per
// coefficient, stored centered at eta.
func PackEta(p *poly.Poly, eta int32, bits int) []byte {
	vals := make([]int32, params.N)
	for i, c := range p {
		vals[i] = field.Freeze(eta - c)
	}
	return packBits(vals, bits)
}

// UnpackEta inverts PackEta.
func UnpackEta(data []byte, eta int32, bits int) poly.Poly {
	var p poly.Poly
	unpacked := unpackBits(data, params.N, bits)
	for i, v := range unpacked {
		p[i] = field.Freeze(eta - v)
	}
	return p
}

// PackZ packs a polynomial with coefficients in (-gamma1, gamma1], bits wide
// per coefficient, stored centered at gamma1.
func PackZ(p *poly.Poly, gamma1 int32, bits int) []byte {
	vals := make([]int32, params.N)
	for i, c := range p {
		vals[i] = field.Freeze(gamma1 - c)
	}
	return packBits(vals, bits)
}

// UnpackZ inverts PackZ.
func UnpackZ(data []byte, gamma1 int32, bits int) poly.Poly {
	var p poly.Poly
	unpacked := unpackBits(data, params.N, bits)
	for i, v := range unpacked {
		p[i] = field.Freeze(gamma1 - v)
	}
	return p
}

// PackW1 packs the commitment's high bits directly (already small,
// non-negative values — no centering needed).
func PackW1(p *poly.Poly, bits int) []byte {
	vals := make([]int32, params.N)
	for i, c := range p {
		vals[i] = c
	}
	return packBits(vals, bits)
}

// UnpackW1 inverts PackW1.
func UnpackW1(data []byte, bits int) poly.Poly {
	var p poly.Poly
	copy(p[:], unpackBits(data, params.N, bits))
	return p
}

// PackHint serializes the K polynomials' hint bits into the signature's
// omega+K-byte hint region: the first omega bytes hold, concatenated by
// polynomial, the indices of set bits; the last K bytes hold the running
// total of set bits after each polynomial (spec.md §4.F).
func PackHint(hints []*[params.N]bool, omega int) ([]byte, error) {
	out := make([]byte, omega+len(hints))
	pos := 0
	for i, h := range hints {
		for j := 0; j < params.N; j++ {
			if h[j] {
				if pos >= omega {
					return nil, fmt.Errorf("packing: hint weight exceeds omega=%d", omega)
				}
				out[pos] = byte(j)
				pos++
			}
		}
		out[omega+i] = byte(pos)
	}
	return out, nil
}

// UnpackHint deserializes the hint region, enforcing the strict-monotonicity
// and bounds checks spec.md §4.F and §7 require: indices within a
// polynomial's segment must be strictly increasing, each polynomial's
// recorded cumulative count must not decrease, and no unused trailing byte
// of the index region may be nonzero.
func UnpackHint(data []byte, omega, k int) ([]*[params.N]bool, error) {
	if len(data) != omega+k {
		return nil, fmt.Errorf("packing: hint region length %d, want %d", len(data), omega+k)
	}
	hints := make([]*[params.N]bool, k)
	pos := 0
	for i := 0; i < k; i++ {
		h := &[params.N]bool{}
		end := int(data[omega+i])
		if end < pos || end > omega {
			return nil, fmt.Errorf("packing: hint count for polynomial %d out of range", i)
		}
		prev := -1
		for ; pos < end; pos++ {
			idx := int(data[pos])
			if idx <= prev {
				return nil, fmt.Errorf("packing: hint indices for polynomial %d not strictly increasing", i)
			}
			prev = idx
			h[idx] = true
		}
		hints[i] = h
	}
	for ; pos < omega; pos++ {
		if data[pos] != 0 {
			return nil, fmt.Errorf("packing: nonzero padding in unused hint region")
		}
	}
	return hints, nil
}
