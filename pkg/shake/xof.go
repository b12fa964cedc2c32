// Package shake wraps golang.org/x/crypto/sha3's SHAKE128/SHAKE256 as the
// single source of randomness and hashing used throughout Dilithium: matrix
// expansion, secret/mask sampling, challenge derivation, and every
// fixed-length digest (tr, mu, rho', c~) in spec.md §4.G.
//
// There is no hidden global state: every XOF is explicit about the bytes it
// absorbed (spec.md §9, "No hidden state").
package shake

import (
	"golang.org/x/crypto/sha3"
)

// clonable is implemented by the concrete sha3 ShakeHash values, letting a
// seed-absorbed state be cloned cheaply instead of re-hashing the seed for
// every nonce (used by matrix expansion, which re-derives A[i][j] from rho
// for up to K*L distinct (i,j) nonces).
type clonable interface {
	Clone() sha3.ShakeHash
}

// Sum absorbs parts in order into a SHAKE-256 sponge and squeezes length
// bytes. Used for tr, mu, rho', and the c~ commitment hash.
func Sum(length int, parts ...[]byte) []byte {
	h := sha3.NewShake256()
	for _, p := range parts {
		h.Write(p)
	}
	out := make([]byte, length)
	h.Read(out)
	return out
}

// Sum128 is Sum using SHAKE-128, the one-shot counterpart to StreamingXOF128
// and SeedClonableXOF128 (matrix/uniform sampling's XOF).
func Sum128(length int, parts ...[]byte) []byte {
	h := sha3.NewShake128()
	for _, p := range parts {
		h.Write(p)
	}
	out := make([]byte, length)
	h.Read(out)
	return out
}

// StreamingXOF128 provides incremental SHAKE-128 output for rejection
// samplers that need bytes 3 at a time (uniform polynomial sampling reads 3
// bytes per 23-bit candidate coefficient, spec.md §4.E).
type StreamingXOF128 struct {
	h   sha3.ShakeHash
	buf [168]byte // SHAKE128 rate
	pos int
	end int
}

// NewStreamingXOF128 creates a streaming XOF over seed||nonce, nonce encoded
// little-endian as spec.md §4.E requires for matrix/mask expansion.
func NewStreamingXOF128(seed []byte, nonce uint16) *StreamingXOF128 {
	h := sha3.NewShake128()
	h.Write(seed)
	h.Write([]byte{byte(nonce), byte(nonce >> 8)})
	return &StreamingXOF128{h: h}
}

// Read3 returns the next 3 bytes from the XOF, refilling the internal rate
// buffer as needed.
func (x *StreamingXOF128) Read3() (b0, b1, b2 byte) {
	if x.pos+3 > x.end {
		leftover := x.end - x.pos
		if leftover > 0 {
			copy(x.buf[:leftover], x.buf[x.pos:x.end])
		}
		n, _ := x.h.Read(x.buf[leftover:])
		x.pos = 0
		x.end = leftover + n
	}
	b0, b1, b2 = x.buf[x.pos], x.buf[x.pos+1], x.buf[x.pos+2]
	x.pos += 3
	return
}

// Reset reinitializes the XOF for a new seed||nonce.
func (x *StreamingXOF128) Reset(seed []byte, nonce uint16) {
	x.h.Reset()
	x.h.Write(seed)
	x.h.Write([]byte{byte(nonce), byte(nonce >> 8)})
	x.pos = 0
	x.end = 0
}

// SeedClonableXOF128 absorbs a seed once and clones the post-absorption
// state for every subsequent nonce, avoiding K*L re-hashes of rho during
// matrix expansion.
type SeedClonableXOF128 struct {
	seedState sha3.ShakeHash
	h         sha3.ShakeHash
	buf       [168]byte
	pos       int
	end       int
}

// NewSeedClonableXOF128 creates an XOF with seed pre-absorbed.
func NewSeedClonableXOF128(seed []byte) *SeedClonableXOF128 {
	h := sha3.NewShake128()
	h.Write(seed)
	return &SeedClonableXOF128{
		seedState: h.(clonable).Clone(),
		h:         h,
	}
}

// SetNonce restores the seed-absorbed state and absorbs nonce, little-endian.
func (x *SeedClonableXOF128) SetNonce(nonce uint16) {
	x.h = x.seedState.(clonable).Clone()
	x.h.Write([]byte{byte(nonce), byte(nonce >> 8)})
	x.pos = 0
	x.end = 0
}

// Read3 returns the next 3 bytes from the XOF.
func (x *SeedClonableXOF128) Read3() (b0, b1, b2 byte) {
	if x.pos+3 > x.end {
		leftover := x.end - x.pos
		if leftover > 0 {
			copy(x.buf[:leftover], x.buf[x.pos:x.end])
		}
		n, _ := x.h.Read(x.buf[leftover:])
		x.pos = 0
		x.end = leftover + n
	}
	b0, b1, b2 = x.buf[x.pos], x.buf[x.pos+1], x.buf[x.pos+2]
	x.pos += 3
	return
}

// StreamingXOF256 provides incremental SHAKE-256 output for eta/mask
// rejection sampling (spec.md §4.E uses SHAKE256 for s1/s2/y).
type StreamingXOF256 struct {
	h   sha3.ShakeHash
	buf [136]byte // SHAKE256 rate
	pos int
	end int
}

// NewStreamingXOF256Seed creates a streaming XOF over seed alone, with no
// nonce appended — used to seed the challenge's SampleInBall stream
// directly from c~.
func NewStreamingXOF256Seed(seed []byte) *StreamingXOF256 {
	h := sha3.NewShake256()
	h.Write(seed)
	return &StreamingXOF256{h: h}
}

// NewStreamingXOF256 creates a streaming XOF over seed||nonce, nonce
// encoded little-endian over 2 bytes.
func NewStreamingXOF256(seed []byte, nonce uint16) *StreamingXOF256 {
	h := sha3.NewShake256()
	h.Write(seed)
	h.Write([]byte{byte(nonce), byte(nonce >> 8)})
	return &StreamingXOF256{h: h}
}

// Reset reinitializes the XOF for a new seed||nonce.
func (x *StreamingXOF256) Reset(seed []byte, nonce uint16) {
	x.h.Reset()
	x.h.Write(seed)
	x.h.Write([]byte{byte(nonce), byte(nonce >> 8)})
	x.pos = 0
	x.end = 0
}

// Read3 returns the next 3 bytes from the XOF.
func (x *StreamingXOF256) Read3() (b0, b1, b2 byte) {
	if x.pos+3 > x.end {
		leftover := x.end - x.pos
		if leftover > 0 {
			copy(x.buf[:leftover], x.buf[x.pos:x.end])
		}
		n, _ := x.h.Read(x.buf[leftover:])
		x.pos = 0
		x.end = leftover + n
	}
	b0, b1, b2 = x.buf[x.pos], x.buf[x.pos+1], x.buf[x.pos+2]
	x.pos += 3
	return
}

// ReadBytes fills buf directly from the XOF, bypassing the 3-byte rate
// buffer. Used by the challenge sampler (SampleInBall), which consumes a
// data-dependent number of single bytes rather than 3 bytes at a time.
func (x *StreamingXOF256) ReadBytes(buf []byte) {
	// Drain whatever is already buffered first.
	if x.pos < x.end {
		n := copy(buf, x.buf[x.pos:x.end])
		x.pos += n
		buf = buf[n:]
	}
	if len(buf) > 0 {
		x.h.Read(buf)
	}
}
