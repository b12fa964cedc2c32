// Package poly provides polynomial and vector/matrix operations over
// Z_q[X]/(X^256+1) for Dilithium, built on pkg/field and pkg/ntt.
//
// A Poly always carries canonical [0,q) coefficients except while it is in
// NTT domain, where Reduce32-bounded (not necessarily frozen) values are
// tolerated between operations and are frozen again by Normalize.
package poly

import (
	"zkdilithium-signer/pkg/field"
	"zkdilithium-signer/pkg/ntt"
	"zkdilithium-signer/pkg/params"
)

// Poly is a polynomial in Z_q[X]/(X^256+1), one coefficient per slot.
type Poly [params.N]int32

// Vector is a fixed-length list of polynomials, e.g. s1 (length L) or t
// (length K). Length is carried by the caller via params.Params, not by the
// type, since K and L vary by mode (spec.md §9, Design Notes / Namespacing).
type Vector []Poly

// Matrix is a K x L array of polynomials, used for the expanded public
// matrix A.
type Matrix [][]Poly

// NewVector allocates a zeroed vector of the given length.
func NewVector(n int) Vector {
	return make(Vector, n)
}

// NewMatrix allocates a zeroed K x L matrix.
func NewMatrix(k, l int) Matrix {
	m := make(Matrix, k)
	for i := range m {
		m[i] = make([]Poly, l)
	}
	return m
}

// Add computes a + b coefficientwise, reduced to [0,q).
func Add(a, b *Poly) Poly {
	var r Poly
	for i := range r {
		r[i] = field.Freeze(a[i] + b[i])
	}
	return r
}

// Sub computes a - b coefficientwise, reduced to [0,q).
func Sub(a, b *Poly) Poly {
	var r Poly
	for i := range r {
		r[i] = field.Freeze(a[i] - b[i])
	}
	return r
}

// AddVector computes a + b elementwise over two vectors of equal length.
func AddVector(a, b Vector) Vector {
	r := make(Vector, len(a))
	for i := range r {
		r[i] = Add(&a[i], &b[i])
	}
	return r
}

// SubVector computes a - b elementwise over two vectors of equal length.
func SubVector(a, b Vector) Vector {
	r := make(Vector, len(a))
	for i := range r {
		r[i] = Sub(&a[i], &b[i])
	}
	return r
}

// Normalize freezes every coefficient to its canonical [0,q) representative.
func (p *Poly) Normalize() {
	for i := range p {
		p[i] = field.Freeze(p[i])
	}
}

// NTT computes the forward Number Theoretic Transform in place.
func (p *Poly) NTT() {
	ntt.NTT((*[params.N]int32)(p))
}

// InvNTT computes the inverse Number Theoretic Transform in place, and
// normalizes the result. Like ntt.InvNTT it multiplies by R, so it returns
// the plain-domain value after a MulNTT/DotNTT product, and a*R for a
// polynomial that went through NTT alone.
func (p *Poly) InvNTT() {
	ntt.InvNTT((*[params.N]int32)(p))
	p.Normalize()
}

// NTTVector applies NTT to every polynomial in v, in place.
func NTTVector(v Vector) {
	for i := range v {
		v[i].NTT()
	}
}

// InvNTTVector applies InvNTT to every polynomial in v, in place.
func InvNTTVector(v Vector) {
	for i := range v {
		v[i].InvNTT()
	}
}

// MulNTT performs pointwise multiplication of two NTT-domain polynomials.
func MulNTT(a, b *Poly) Poly {
	var r Poly
	ntt.MulNTT((*[params.N]int32)(a), (*[params.N]int32)(b), (*[params.N]int32)(&r))
	return r
}

// DotNTT computes the dot product of two equal-length vectors of NTT-domain
// polynomials, accumulating lazily in int64 with a single reduction per
// coefficient per term — the teacher's lazy-accumulation pattern generalized
// from a fixed length to an arbitrary one (K and L are mode-dependent here).
func DotNTT(a, b Vector) Poly {
	var r Poly
	for k := 0; k < params.N; k++ {
		var acc int64
		for j := range a {
			acc += int64(field.MontgomeryReduce(int64(a[j][k]) * int64(b[j][k])))
		}
		r[k] = field.Freeze(int32(acc % field.Q))
	}
	return r
}

// MatVecMulNTT computes the matrix-vector product A*v in NTT domain, where A
// is K x L and v has length L.
func MatVecMulNTT(a Matrix, v Vector) Vector {
	r := make(Vector, len(a))
	for i := range a {
		r[i] = DotNTT(a[i], v)
	}
	return r
}

// CheckNorm reports whether every coefficient of p, interpreted as the
// signed residue in (-q/2, q/2], has absolute value strictly less than
// bound. The comparison is branch-free in the coefficient value: every
// coefficient is processed identically regardless of its magnitude, only
// the final accumulated verdict varies.
func (p *Poly) CheckNorm(bound int32) bool {
	var bad int32
	for _, c := range p {
		c = field.Freeze(c)
		// Map to the centered representative in (-q/2, q/2]: subtract q
		// when c > (q-1)/2, selected by the sign bit of (q-1)/2 - c.
		signed := c - ((((field.Q-1)/2 - c) >> 31) & field.Q)
		// Absolute value via the sign mask.
		mask := signed >> 31
		signed = (signed ^ mask) - mask
		// bad accumulates 1 (via sign bit trick) whenever signed >= bound.
		diff := bound - 1 - signed
		bad |= (diff >> 31) & 1
	}
	return bad == 0
}

// Power2Round splits every coefficient of p into (p1, p0) per field.Power2Round.
func (p *Poly) Power2Round() (p1, p0 Poly) {
	for i, c := range p {
		p1[i], p0[i] = field.Power2Round(field.Freeze(c))
	}
	return
}

// Decompose splits every coefficient of p into high/low parts relative to
// 2*gamma2, per field.Decompose.
func (p *Poly) Decompose(gamma2 int32) (p1, p0 Poly) {
	for i, c := range p {
		p1[i] = field.HighBits(c, gamma2)
		p0[i] = field.LowBits(c, gamma2)
	}
	return
}

// ShiftLeft multiplies every coefficient by 2^d, reduced to [0,q). Used to
// reconstruct t = t1*2^D from the packed high bits alone (verification does
// not have t0).
func (p *Poly) ShiftLeft(d uint) Poly {
	var r Poly
	for i, c := range p {
		r[i] = field.Freeze(c << d)
	}
	return r
}

// MakeHint computes, coefficientwise, whether adding z to r changes the high
// bits of r, writing one hint bit per coefficient into hint and returning
// the Hamming weight (the count packed/checked against params.Omega).
func MakeHint(z, r *Poly, gamma2 int32, hint *[params.N]bool) int {
	n := 0
	for i := range hint {
		hint[i] = field.MakeHint(z[i], r[i], gamma2)
		if hint[i] {
			n++
		}
	}
	return n
}

// UseHint reconstructs the corrected high bits of r from a hint vector.
func UseHint(r *Poly, hint *[params.N]bool, gamma2 int32) Poly {
	var out Poly
	for i := range out {
		out[i] = field.UseHint(r[i], hint[i], gamma2)
	}
	return out
}

// Equal reports whether a and b have identical canonical coefficients.
func Equal(a, b *Poly) bool {
	for i := range a {
		if field.Freeze(a[i]) != field.Freeze(b[i]) {
			return false
		}
	}
	return true
}
