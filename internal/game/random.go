package game

import (
	"crypto/hmac"
	crand "crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"strconv"
	"sync"
)

// RandomSource supplies uniformly distributed 32-bit values, fresh per call.
type RandomSource interface {
	NextUint32() uint32
}

// CryptoSource draws from crypto/rand. Safe for concurrent use.
type CryptoSource struct{}

// NextUint32 reads four bytes from crypto/rand as a little-endian uint32.
func (CryptoSource) NextUint32() uint32 {
	var b [4]byte
	if _, err := crand.Read(b[:]); err != nil {
		panic("game: read random bytes: " + err.Error())
	}
	return binary.LittleEndian.Uint32(b[:])
}

// SaltedSource derives values from HMAC-SHA256(salt, draw number).
// The same salt always replays the same sequence. Safe for concurrent use.
type SaltedSource struct {
	mu    sync.Mutex
	salt  []byte
	draws uint64
}

// NewSaltedSource returns a deterministic source keyed by salt.
func NewSaltedSource(salt string) *SaltedSource {
	return &SaltedSource{salt: []byte(salt)}
}

// NextUint32 returns the first four bytes of the next digest, little-endian.
func (s *SaltedSource) NextUint32() uint32 {
	s.mu.Lock()
	n := s.draws
	s.draws++
	s.mu.Unlock()

	h := hmac.New(sha256.New, s.salt)
	h.Write([]byte(strconv.FormatUint(n, 10)))
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint32(sum[:4])
}

// SequenceSource replays a fixed list of values, cycling when exhausted.
// An empty sequence always yields zero. Not safe for concurrent use.
type SequenceSource struct {
	values []uint32
	next   int
}

// NewSequenceSource returns a scripted source over values.
func NewSequenceSource(values ...uint32) *SequenceSource {
	return &SequenceSource{values: values}
}

// NextUint32 returns the next scripted value.
func (s *SequenceSource) NextUint32() uint32 {
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}
