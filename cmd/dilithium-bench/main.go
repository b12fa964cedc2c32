// Command dilithium-bench times key generation, signing, and verification
// for a chosen Dilithium mode, and checks on every verify iteration that the
// generated signature verifies under its own public key.
package main

import (
	"crypto/rand"
	"flag"
	"log"
	"time"

	"zkdilithium-signer/pkg/dilithium"
	"zkdilithium-signer/pkg/params"
)

func main() {
	var (
		modeFlag = flag.Int("mode", 2, "Dilithium mode: 2, 3, or 5")
		n        = flag.Int("n", 100, "number of iterations per operation")
		msgLen   = flag.Int("msglen", 64, "length in bytes of the signed message")
	)
	flag.Parse()

	mode, err := modeFromFlag(*modeFlag)
	if err != nil {
		log.Fatal(err)
	}

	msg := make([]byte, *msgLen)
	if _, err := rand.Read(msg); err != nil {
		log.Fatalf("rand.Read: %v", err)
	}

	log.Printf("benchmarking %v, %d iterations, %d-byte message", mode, *n, *msgLen)

	seed := make([]byte, params.SeedBytes)
	var pub *dilithium.PublicKey
	var priv *dilithium.PrivateKey

	start := time.Now()
	for i := 0; i < *n; i++ {
		if _, err := rand.Read(seed); err != nil {
			log.Fatalf("rand.Read: %v", err)
		}
		pub, priv, err = dilithium.GenerateKey(mode, seed)
		if err != nil {
			log.Fatalf("GenerateKey: %v", err)
		}
	}
	logRate("keygen", time.Since(start), *n)

	var sig []byte
	start = time.Now()
	for i := 0; i < *n; i++ {
		sig, err = dilithium.Sign(priv, msg, nil)
		if err != nil {
			log.Fatalf("Sign: %v", err)
		}
	}
	logRate("sign", time.Since(start), *n)

	start = time.Now()
	for i := 0; i < *n; i++ {
		if !dilithium.Verify(pub, msg, sig) {
			log.Fatal("verify: generated signature did not verify")
		}
	}
	logRate("verify", time.Since(start), *n)

	log.Printf("self-check: sign+verify round trip ok")
}

func modeFromFlag(m int) (params.Mode, error) {
	switch m {
	case 2:
		return dilithium.Mode2, nil
	case 3:
		return dilithium.Mode3, nil
	case 5:
		return dilithium.Mode5, nil
	default:
		return 0, errUnsupportedMode(m)
	}
}

type errUnsupportedMode int

func (m errUnsupportedMode) Error() string {
	return "dilithium-bench: unsupported -mode value (want 2, 3, or 5)"
}

func logRate(op string, elapsed time.Duration, n int) {
	log.Printf("%-8s %v total, %v/op", op, elapsed, elapsed/time.Duration(n))
}
