// Package params holds the per-mode parameter tables for Dilithium-2/3/5.
//
// N and Q are fixed by the ring Z_q[X]/(X^256+1); everything else (K, L,
// eta, the gamma/tau/beta/omega family, and the packed byte sizes that
// depend on them) varies by security level. A single Params value replaces
// the C reference's token-pasted per-mode symbol family (spec.md, Design
// Notes / Namespacing).
package params

import "fmt"

// Mode selects one of the three standardized security levels.
type Mode int

const (
	Mode2 Mode = 2
	Mode3 Mode = 3
	Mode5 Mode = 5
)

func (m Mode) String() string {
	return fmt.Sprintf("Dilithium-%d", int(m))
}

const (
	// N is the ring degree, fixed across all modes.
	N = 256
	// Q is the field modulus 2^23 - 2^13 + 1.
	Q = 8380417
	// D is the number of bits dropped by Power2Round.
	D = 13
	// SeedBytes is the width of rho, K (the private signing seed), and c-tilde.
	SeedBytes = 32
	// CRHBytes is the width of tr, the collision-resistant hash of pk.
	CRHBytes = 32
	// MuBytes is the width of mu and rho-prime.
	MuBytes = 64
)

// Params bundles one security level's parameters and the derived packed
// sizes for every structured object in spec.md §3/§4.F.
type Params struct {
	Mode Mode

	K, L int   // matrix/vector dimensions
	Eta  int32 // secret coefficient bound
	Tau  int   // number of ±1 coefficients in the challenge
	Beta int32 // Tau * Eta, rejection slack
	// Omega is the maximum Hamming weight of the hint vector.
	Omega int

	Gamma1 int32 // mask range bound
	Gamma2 int32 // low-order rounding granularity

	Gamma1Bits int // bit width per coefficient when packing z
	EtaBits    int // bit width per coefficient when packing s1/s2
	W1Bits     int // bit width per coefficient when packing w1

	PolyT1Bytes  int
	PolyT0Bytes  int
	PolyEtaBytes int
	PolyZBytes   int
	PolyW1Bytes  int

	PublicKeyBytes  int
	PrivateKeyBytes int
	SignatureBytes  int
}

// For returns the parameter table for the given mode. It panics on an
// unsupported mode since Mode is a compile-time/instantiation-time choice
// (spec.md §6), never derived from untrusted input.
func For(mode Mode) Params {
	switch mode {
	case Mode2:
		return build(mode, 4, 4, 2, 39, 80, 1<<17, (Q-1)/88, 18, 3, 6)
	case Mode3:
		return build(mode, 6, 5, 4, 49, 55, 1<<19, (Q-1)/32, 20, 4, 4)
	case Mode5:
		return build(mode, 8, 7, 2, 60, 75, 1<<19, (Q-1)/32, 20, 3, 4)
	default:
		panic(fmt.Sprintf("params: unsupported mode %v", mode))
	}
}

func build(mode Mode, k, l int, eta int32, tau, omega int, gamma1, gamma2 int32, gamma1Bits, etaBits, w1Bits int) Params {
	p := Params{
		Mode:       mode,
		K:          k,
		L:          l,
		Eta:        eta,
		Tau:        tau,
		Beta:       int32(tau) * eta,
		Omega:      omega,
		Gamma1:     gamma1,
		Gamma2:     gamma2,
		Gamma1Bits: gamma1Bits,
		EtaBits:    etaBits,
		W1Bits:     w1Bits,
	}
	p.PolyT1Bytes = (N * 10) / 8
	p.PolyT0Bytes = (N * D) / 8
	p.PolyEtaBytes = (N * etaBits) / 8
	p.PolyZBytes = (N * gamma1Bits) / 8
	p.PolyW1Bytes = (N * w1Bits) / 8

	p.PublicKeyBytes = SeedBytes + k*p.PolyT1Bytes
	p.PrivateKeyBytes = SeedBytes + SeedBytes + CRHBytes + l*p.PolyEtaBytes + k*p.PolyEtaBytes + k*p.PolyT0Bytes
	p.SignatureBytes = SeedBytes + l*p.PolyZBytes + p.Omega + k
	return p
}
