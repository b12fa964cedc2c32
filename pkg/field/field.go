// Package field provides scalar arithmetic modulo q = 8380417 for
// Dilithium, including Montgomery reduction and the power-of-two rounding
// primitives that underlie t1/t0 splitting and hint generation.
//
// Coefficients are carried as signed 32-bit integers. Functions document
// their input and output range explicitly, since nearly every bug in a
// lattice scheme port traces back to an unreduced or wrongly-signed
// intermediate value (spec.md §3).
package field

import "zkdilithium-signer/pkg/params"

const (
	// Q is the field modulus.
	Q = params.Q

	// qInv = -q^(-1) mod 2^32, the constant used by Montgomery reduction.
	qInv = 58728449

	// montR2 = 2^64 mod q = R^2, used to enter Montgomery domain.
	montR2 = 2365951
)

// MontgomeryReduce returns a * R^(-1) mod q in (-q, q), given |a| < q * 2^31.
func MontgomeryReduce(a int64) int32 {
	t := int32(uint32(a) * qInv)
	return int32((a - int64(t)*Q) >> 32)
}

// Reduce32 partially reduces a to a representative in (-6283009, 6283009)
// congruent to a mod q.
func Reduce32(a int32) int32 {
	t := (a + (1 << 22)) >> 23
	return a - t*Q
}

// CAddQ adds q to a if a is negative, producing a value in [0, q) when the
// input is already a representative of a residue in (-q, q).
func CAddQ(a int32) int32 {
	a += (a >> 31) & Q
	return a
}

// Freeze fully reduces a to its unique representative in [0, q).
func Freeze(a int32) int32 {
	return CAddQ(Reduce32(a))
}

// ToMontgomery converts a (reduced, in [0,q)) to Montgomery form a*R mod q.
func ToMontgomery(a int32) int32 {
	return MontgomeryReduce(int64(a) * montR2)
}

// Power2Round splits a, a representative in [0,q), as a = a1*2^D + a0 with
// a0 in (-2^(D-1), 2^(D-1)] and a1 >= 0.
func Power2Round(a int32) (a1, a0 int32) {
	a1 = (a + (1 << (params.D - 1)) - 1) >> params.D
	a0 = a - (a1 << params.D)
	return a1, a0
}

// Decompose splits a, a representative of any residue class, into high and
// low parts relative to 2*gamma2, per spec.md §4.D. The special case where
// a1 would equal (q-1)/(2*gamma2) wraps a1 to 0.
func Decompose(a int32, gamma2 int32) (a1, a0 int32) {
	a = Freeze(a)
	a0 = a % (2 * gamma2)
	if a0 > gamma2 {
		a0 -= 2 * gamma2
	}
	if a-a0 == Q-1 {
		return 0, a0 - 1
	}
	return (a - a0) / (2 * gamma2), a0
}

// HighBits returns the high part of Decompose(a, gamma2).
func HighBits(a int32, gamma2 int32) int32 {
	a1, _ := Decompose(a, gamma2)
	return a1
}

// LowBits returns the low part of Decompose(a, gamma2).
func LowBits(a int32, gamma2 int32) int32 {
	_, a0 := Decompose(a, gamma2)
	return a0
}

// MakeHint reports whether adding z to r changes the high bits of r: the
// single hint bit from spec.md §4.D, FIPS 204 Algorithm 14.
func MakeHint(z, r int32, gamma2 int32) bool {
	r1 := HighBits(r, gamma2)
	v1 := HighBits(r+z, gamma2)
	return r1 != v1
}

// UseHint reconstructs the corrected high bits of r using a hint bit,
// FIPS 204 Algorithm 15.
func UseHint(r int32, hint bool, gamma2 int32) int32 {
	m := (Q - 1) / (2 * gamma2)
	a1, a0 := Decompose(r, gamma2)
	if !hint {
		return a1
	}
	if a0 > 0 {
		return (a1 + 1) % m
	}
	return (a1 - 1 + m) % m
}
