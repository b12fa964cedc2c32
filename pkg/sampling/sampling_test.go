package sampling

import (
	"testing"

	"zkdilithium-signer/pkg/field"
	"zkdilithium-signer/pkg/params"
	"zkdilithium-signer/pkg/poly"
	"zkdilithium-signer/pkg/shake"
)

func TestUniformPolyCoefficientsAreReduced(t *testing.T) {
	seed := make([]byte, 32)
	x := shake.NewStreamingXOF128(seed, 0)
	p := UniformPoly(x)
	for i, c := range p {
		if c < 0 || c >= field.Q {
			t.Fatalf("UniformPoly[%d] = %d, out of [0,q)", i, c)
		}
	}
}

func TestEtaPolyBounds(t *testing.T) {
	for _, eta := range []int32{2, 4} {
		seed := make([]byte, 64)
		x := shake.NewStreamingXOF256(seed, 0)
		p := EtaPoly(x, eta)
		for i, c := range p {
			signed := field.Freeze(c)
			if signed > (field.Q-1)/2 {
				signed -= field.Q
			}
			if signed < -eta || signed > eta {
				t.Fatalf("eta=%d: EtaPoly[%d] = %d, out of [-eta,eta]", eta, i, signed)
			}
		}
	}
}

func TestEtaHalfByteValueRejectsOutOfRange(t *testing.T) {
	if _, ok := etaHalfByteValue(15, 2); ok {
		t.Fatalf("eta=2 should reject d=15")
	}
	if _, ok := etaHalfByteValue(9, 4); ok {
		t.Fatalf("eta=4 should reject d=9")
	}
	if _, ok := etaHalfByteValue(8, 4); !ok {
		t.Fatalf("eta=4 should accept d=8")
	}
}

func TestGammaPolyDeterministic(t *testing.T) {
	p2 := params.For(params.Mode2)
	seed := make([]byte, params.SeedBytes)
	a := GammaPoly(seed, 3, p2.Gamma1, p2.Gamma1Bits, p2.PolyZBytes)
	b := GammaPoly(seed, 3, p2.Gamma1, p2.Gamma1Bits, p2.PolyZBytes)
	if a != b {
		t.Fatalf("GammaPoly not deterministic for the same seed/nonce")
	}
	c := GammaPoly(seed, 4, p2.Gamma1, p2.Gamma1Bits, p2.PolyZBytes)
	if a == c {
		t.Fatalf("GammaPoly collided across distinct nonces")
	}
}

func TestMatrixShapeAndDomain(t *testing.T) {
	p := params.For(params.Mode3)
	rho := make([]byte, params.SeedBytes)
	a := Matrix(rho, p.K, p.L)
	if len(a) != p.K {
		t.Fatalf("Matrix rows = %d, want %d", len(a), p.K)
	}
	for i := range a {
		if len(a[i]) != p.L {
			t.Fatalf("Matrix row %d cols = %d, want %d", i, len(a[i]), p.L)
		}
	}
}

func TestSecretVectorsBoundsAndLengths(t *testing.T) {
	p := params.For(params.Mode2)
	seed := make([]byte, params.SeedBytes)
	s1, s2 := SecretVectors(seed, p.L, p.K, p.Eta)
	if len(s1) != p.L || len(s2) != p.K {
		t.Fatalf("SecretVectors lengths = (%d,%d), want (%d,%d)", len(s1), len(s2), p.L, p.K)
	}
	all := make(poly.Vector, 0, len(s1)+len(s2))
	all = append(all, s1...)
	all = append(all, s2...)
	for _, v := range all {
		for _, c := range v {
			signed := field.Freeze(c)
			if signed > (field.Q-1)/2 {
				signed -= field.Q
			}
			if signed < -p.Eta || signed > p.Eta {
				t.Fatalf("secret coefficient %d out of bounds", signed)
			}
		}
	}
}

func TestChallengeHasTauNonzeroCoefficients(t *testing.T) {
	cTilde := make([]byte, 48)
	for i := range cTilde {
		cTilde[i] = byte(i * 7)
	}
	for _, tau := range []int{39, 49, 60} {
		c := Challenge(cTilde, tau)
		weight := 0
		for _, v := range c {
			if v != 0 {
				weight++
				if v != 1 && v != field.Q-1 {
					t.Fatalf("tau=%d: challenge coefficient %d is neither 0, 1, nor -1", tau, v)
				}
			}
		}
		if weight != tau {
			t.Fatalf("tau=%d: challenge weight = %d, want %d", tau, weight, tau)
		}
	}
}

func TestChallengeDeterministic(t *testing.T) {
	cTilde := make([]byte, 32)
	a := Challenge(cTilde, 39)
	b := Challenge(cTilde, 39)
	if a != b {
		t.Fatalf("Challenge not deterministic for the same c~")
	}
}
