package dilithium

import (
	"bytes"
	"crypto/rand"
	"testing"

	"zkdilithium-signer/pkg/params"
)

var allModes = []params.Mode{Mode2, Mode3, Mode5}

func genSeed(t *testing.T) []byte {
	t.Helper()
	seed := make([]byte, params.SeedBytes)
	if _, err := rand.Read(seed); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}
	return seed
}

func TestGenerateKeySizes(t *testing.T) {
	for _, mode := range allModes {
		p := params.For(mode)
		pub, priv, err := GenerateKey(mode, genSeed(t))
		if err != nil {
			t.Fatalf("%v: GenerateKey: %v", mode, err)
		}
		if got := len(pub.Bytes()); got != p.PublicKeyBytes {
			t.Errorf("%v: public key length = %d, want %d", mode, got, p.PublicKeyBytes)
		}
		if got := len(priv.Bytes()); got != p.PrivateKeyBytes {
			t.Errorf("%v: private key length = %d, want %d", mode, got, p.PrivateKeyBytes)
		}
	}
}

func TestGenerateKeyRejectsBadSeedLength(t *testing.T) {
	if _, _, err := GenerateKey(Mode2, make([]byte, 16)); err == nil {
		t.Fatal("expected error for short seed")
	}
}

func TestGenerateKeyDeterministic(t *testing.T) {
	seed := genSeed(t)
	pub1, priv1, err := GenerateKey(Mode2, seed)
	if err != nil {
		t.Fatal(err)
	}
	pub2, priv2, err := GenerateKey(Mode2, seed)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(pub1.Bytes(), pub2.Bytes()) {
		t.Error("GenerateKey not deterministic: public key differs")
	}
	if !bytes.Equal(priv1.Bytes(), priv2.Bytes()) {
		t.Error("GenerateKey not deterministic: private key differs")
	}
}

func TestSignVerifyRoundTrip(t *testing.T) {
	for _, mode := range allModes {
		pub, priv, err := GenerateKey(mode, genSeed(t))
		if err != nil {
			t.Fatalf("%v: GenerateKey: %v", mode, err)
		}
		msg := []byte("the quick brown fox jumps over the lazy dog")
		sig, err := Sign(priv, msg, nil)
		if err != nil {
			t.Fatalf("%v: Sign: %v", mode, err)
		}
		p := params.For(mode)
		if len(sig) != p.SignatureBytes {
			t.Errorf("%v: signature length = %d, want %d", mode, len(sig), p.SignatureBytes)
		}
		if err := Open(pub, msg, sig, nil); err != nil {
			t.Errorf("%v: Open failed on a genuine signature: %v", mode, err)
		}
	}
}

func TestSignVerifyEmptyMessage(t *testing.T) {
	pub, priv, err := GenerateKey(Mode2, genSeed(t))
	if err != nil {
		t.Fatal(err)
	}
	sig, err := Sign(priv, nil, nil)
	if err != nil {
		t.Fatalf("Sign(empty message): %v", err)
	}
	if err := Open(pub, nil, sig, nil); err != nil {
		t.Errorf("Open(empty message) failed: %v", err)
	}
}

func TestVerifyRejectsBitFlippedMessage(t *testing.T) {
	pub, priv, err := GenerateKey(Mode2, genSeed(t))
	if err != nil {
		t.Fatal(err)
	}
	msg := []byte("original message")
	sig, err := Sign(priv, msg, nil)
	if err != nil {
		t.Fatal(err)
	}
	tampered := append([]byte{}, msg...)
	tampered[0] ^= 0x01
	if Verify(pub, tampered, sig) {
		t.Error("Verify accepted a signature over a tampered message")
	}
}

func TestVerifyRejectsBitFlippedSignature(t *testing.T) {
	pub, priv, err := GenerateKey(Mode2, genSeed(t))
	if err != nil {
		t.Fatal(err)
	}
	msg := []byte("original message")
	sig, err := Sign(priv, msg, nil)
	if err != nil {
		t.Fatal(err)
	}
	tampered := append([]byte{}, sig...)
	tampered[10] ^= 0x01
	if Verify(pub, msg, tampered) {
		t.Error("Verify accepted a tampered signature")
	}
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	_, priv1, err := GenerateKey(Mode2, genSeed(t))
	if err != nil {
		t.Fatal(err)
	}
	pub2, _, err := GenerateKey(Mode2, genSeed(t))
	if err != nil {
		t.Fatal(err)
	}
	msg := []byte("cross-key test")
	sig, err := Sign(priv1, msg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if Verify(pub2, msg, sig) {
		t.Error("Verify accepted a signature under the wrong public key")
	}
}

func TestVerifyRejectsWrongLength(t *testing.T) {
	pub, priv, err := GenerateKey(Mode2, genSeed(t))
	if err != nil {
		t.Fatal(err)
	}
	msg := []byte("length test")
	sig, err := Sign(priv, msg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := Open(pub, msg, sig[:len(sig)-1], nil); err == nil {
		t.Error("Open accepted a truncated signature")
	}
}

func TestSignMessageOpenMessageRoundTrip(t *testing.T) {
	pub, priv, err := GenerateKey(Mode3, genSeed(t))
	if err != nil {
		t.Fatal(err)
	}
	msg := []byte("bundled signed message")
	sm, err := SignMessage(priv, msg, nil)
	if err != nil {
		t.Fatal(err)
	}
	got, err := OpenMessage(pub, sm, nil)
	if err != nil {
		t.Fatalf("OpenMessage: %v", err)
	}
	if !bytes.Equal(got, msg) {
		t.Errorf("OpenMessage returned %q, want %q", got, msg)
	}
}

func TestContextStringChangesSignature(t *testing.T) {
	pub, priv, err := GenerateKey(Mode2, genSeed(t))
	if err != nil {
		t.Fatal(err)
	}
	msg := []byte("context test")
	sigNoCtx, err := Sign(priv, msg, nil)
	if err != nil {
		t.Fatal(err)
	}
	sigCtx, err := Sign(priv, msg, &SignOptions{Context: []byte("app-v1")})
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(sigNoCtx, sigCtx) {
		t.Error("signatures with different context strings should not collide")
	}
	if err := Open(pub, msg, sigCtx, &SignOptions{Context: []byte("app-v1")}); err != nil {
		t.Errorf("Open with matching context failed: %v", err)
	}
	if err := Open(pub, msg, sigCtx, &SignOptions{Context: []byte("app-v2")}); err == nil {
		t.Error("Open accepted a signature under the wrong context")
	}
}

func TestRandomizedSigningVaries(t *testing.T) {
	_, priv, err := GenerateKey(Mode2, genSeed(t))
	if err != nil {
		t.Fatal(err)
	}
	msg := []byte("randomized signing test")
	sig1, err := Sign(priv, msg, &SignOptions{Randomized: true})
	if err != nil {
		t.Fatal(err)
	}
	sig2, err := Sign(priv, msg, &SignOptions{Randomized: true})
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(sig1, sig2) {
		t.Error("randomized signing produced identical signatures across calls")
	}
}

func TestPublicKeyEqual(t *testing.T) {
	seed := genSeed(t)
	pub1, _, err := GenerateKey(Mode2, seed)
	if err != nil {
		t.Fatal(err)
	}
	pub2, _, err := GenerateKey(Mode2, seed)
	if err != nil {
		t.Fatal(err)
	}
	if !pub1.Equal(pub2) {
		t.Error("public keys derived from the same seed should be Equal")
	}
	pub3, _, err := GenerateKey(Mode2, genSeed(t))
	if err != nil {
		t.Fatal(err)
	}
	if pub1.Equal(pub3) {
		t.Error("public keys from different seeds should not be Equal")
	}
}

func TestParsePublicKeyPrivateKeyRoundTrip(t *testing.T) {
	pub, priv, err := GenerateKey(Mode2, genSeed(t))
	if err != nil {
		t.Fatal(err)
	}
	pub2, err := ParsePublicKey(Mode2, pub.Bytes())
	if err != nil {
		t.Fatalf("ParsePublicKey: %v", err)
	}
	if !pub.Equal(pub2) {
		t.Error("parsed public key does not equal original")
	}

	priv2, err := ParsePrivateKey(Mode2, priv.Bytes())
	if err != nil {
		t.Fatalf("ParsePrivateKey: %v", err)
	}
	msg := []byte("round trip through parsed private key")
	sig, err := Sign(priv2, msg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := Open(pub, msg, sig, nil); err != nil {
		t.Errorf("signature from parsed private key failed to verify: %v", err)
	}
}

func TestCryptoSignerInterface(t *testing.T) {
	_, priv, err := GenerateKey(Mode2, genSeed(t))
	if err != nil {
		t.Fatal(err)
	}
	pub, ok := priv.Public().(*PublicKey)
	if !ok {
		t.Fatal("Public() did not return *PublicKey")
	}
	sig, err := priv.Sign(rand.Reader, []byte("crypto.Signer path"), nil)
	if err != nil {
		t.Fatalf("crypto.Signer.Sign: %v", err)
	}
	if err := Open(pub, []byte("crypto.Signer path"), sig, nil); err != nil {
		t.Errorf("signature produced via crypto.Signer failed to verify: %v", err)
	}
}
