package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"strings"
	"time"
)

// Kind separates cached exercises from cached reviews
type Kind string

const (
	KindExercise Kind = "exercise"
	KindReview   Kind = "review"
)

const keyPrefix = "gapfill:v1:"

// Cache stores rendered payloads by key
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key hashes its parts into a cache key of the given kind. Parts are
// length-prefixed so ("ab", "c") and ("a", "bc") never collide.
func Key(kind Kind, parts ...string) string {
	h := sha256.New()
	var size [8]byte
	for _, p := range parts {
		binary.LittleEndian.PutUint64(size[:], uint64(len(p)))
		h.Write(size[:])
		h.Write([]byte(p))
	}
	return keyPrefix + string(kind) + ":" + hex.EncodeToString(h.Sum(nil))
}

// KindOf returns the kind encoded in a key, or "" for foreign keys
func KindOf(key string) Kind {
	rest, ok := strings.CutPrefix(key, keyPrefix)
	if !ok {
		return ""
	}
	kind, _, ok := strings.Cut(rest, ":")
	if !ok {
		return ""
	}
	return Kind(kind)
}

// Stats counts lookups against a cache
type Stats struct {
	MemoryHits int64
	DiskHits   int64
	Misses     int64
}

// Hits is the total of memory and disk hits
func (s Stats) Hits() int64 {
	return s.MemoryHits + s.DiskHits
}

// HitRate is hits over lookups, 0 before the first lookup
func (s Stats) HitRate() float64 {
	total := s.Hits() + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits()) / float64(total)
}
