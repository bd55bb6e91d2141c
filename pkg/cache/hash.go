package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"hash"
)

// Hasher computes a content address by streaming data into SHA-256.
// Encoders can write into it directly, so a trace is hashed without being
// buffered first.
type Hasher struct {
	h hash.Hash
}

// NewHasher returns an empty Hasher.
func NewHasher() *Hasher {
	return &Hasher{h: sha256.New()}
}

// Write adds p to the hash. It never returns an error.
func (h *Hasher) Write(p []byte) (int, error) {
	return h.h.Write(p)
}

// Sum returns the 64-character hex digest of everything written so far.
func (h *Hasher) Sum() string {
	return hex.EncodeToString(h.h.Sum(nil))
}

// Hash returns the hex SHA-256 digest of data.
func Hash(data []byte) string {
	h := NewHasher()
	h.Write(data)
	return h.Sum()
}

// hashKey returns "prefix:<digest>" over the JSON encoding of parts. Struct
// option types encode with a fixed field order, so equal options give equal
// keys.
func hashKey(prefix string, parts ...any) string {
	h := NewHasher()
	_ = json.NewEncoder(h).Encode(parts)
	return prefix + ":" + h.Sum()
}
