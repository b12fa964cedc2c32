package dilithium

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"os"
	"testing"

	"zkdilithium-signer/pkg/params"
)

// katVector mirrors the structure of an ACVP/NIST known-answer record: a
// seed, message, and the expected public key, private key, and signature
// bytes, hex-encoded. No such fixture ships with this repository; the file
// is read on a best-effort basis so one can be dropped in later without
// code changes.
type katVector struct {
	Mode string `json:"mode"`
	Seed string `json:"seed"`
	Msg  string `json:"msg"`
	Pk   string `json:"pk"`
	Sk   string `json:"sk"`
	Sig  string `json:"sig"`
}

func modeFromName(name string) (params.Mode, bool) {
	switch name {
	case "2", "Dilithium-2":
		return Mode2, true
	case "3", "Dilithium-3":
		return Mode3, true
	case "5", "Dilithium-5":
		return Mode5, true
	default:
		return 0, false
	}
}

// TestKnownAnswerVectors checks Go output against an external fixture of
// known-answer records, if one is present at kat_vectors.json. Absent a
// fixture, it skips rather than fails.
func TestKnownAnswerVectors(t *testing.T) {
	data, err := os.ReadFile("../../kat_vectors.json")
	if err != nil {
		t.Skip("kat_vectors.json not found, skipping known-answer comparison")
	}

	var vectors []katVector
	if err := json.Unmarshal(data, &vectors); err != nil {
		t.Fatalf("failed to parse kat_vectors.json: %v", err)
	}
	t.Logf("checking %d known-answer vectors", len(vectors))

	for i, v := range vectors {
		mode, ok := modeFromName(v.Mode)
		if !ok {
			t.Errorf("vector %d: unknown mode %q", i, v.Mode)
			continue
		}
		seed, _ := hex.DecodeString(v.Seed)
		msg, _ := hex.DecodeString(v.Msg)
		wantPk, _ := hex.DecodeString(v.Pk)
		wantSk, _ := hex.DecodeString(v.Sk)
		wantSig, _ := hex.DecodeString(v.Sig)

		pub, priv, err := GenerateKey(mode, seed)
		if err != nil {
			t.Errorf("vector %d: GenerateKey: %v", i, err)
			continue
		}
		if string(pub.Bytes()) != string(wantPk) {
			t.Errorf("vector %d: public key mismatch", i)
			continue
		}
		if string(priv.Bytes()) != string(wantSk) {
			t.Errorf("vector %d: private key mismatch", i)
			continue
		}
		sig, err := Sign(priv, msg, nil)
		if err != nil {
			t.Errorf("vector %d: Sign: %v", i, err)
			continue
		}
		if string(sig) != string(wantSig) {
			t.Errorf("vector %d: signature mismatch", i)
			continue
		}
		if err := Open(pub, msg, sig, nil); err != nil {
			t.Errorf("vector %d: Open failed on vector signature: %v", i, err)
		}
	}
}

// TestStressRandomRoundTrips exercises many random (seed, message) pairs
// across all three modes, checking that every genuine signature verifies
// and that a tampered message is always rejected. This is the
// self-contained analogue of a cross-implementation stress run: it cannot
// catch a bug shared between signer and verifier, but it does exercise the
// rejection-sampling loop across enough random inputs to surface
// intermittent failures that small, fixed unit tests would miss.
func TestStressRandomRoundTrips(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stress run in -short mode")
	}

	const perMode = 40
	for _, mode := range allModes {
		for i := 0; i < perMode; i++ {
			seed := make([]byte, params.SeedBytes)
			if _, err := rand.Read(seed); err != nil {
				t.Fatalf("rand.Read seed: %v", err)
			}
			msgLen := 1 + i%97
			msg := make([]byte, msgLen)
			if _, err := rand.Read(msg); err != nil {
				t.Fatalf("rand.Read msg: %v", err)
			}

			pub, priv, err := GenerateKey(mode, seed)
			if err != nil {
				t.Fatalf("%v case %d: GenerateKey: %v", mode, i, err)
			}
			sig, err := Sign(priv, msg, nil)
			if err != nil {
				t.Fatalf("%v case %d: Sign: %v", mode, i, err)
			}
			if err := Open(pub, msg, sig, nil); err != nil {
				t.Fatalf("%v case %d: Open failed on genuine signature: %v", mode, i, err)
			}

			wrongMsg := append([]byte{}, msg...)
			wrongMsg[0] ^= 0xff
			if Verify(pub, wrongMsg, sig) {
				t.Fatalf("%v case %d: Verify accepted a tampered message", mode, i)
			}
		}
		t.Logf("%v: %d random round trips passed", mode, perMode)
	}
}
