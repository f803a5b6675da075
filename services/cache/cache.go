package cache

import (
	"crypto/sha1"
	"encoding/hex"
	stderrors "errors"
	"strings"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// CacheService represents a generic cache service
type CacheService interface {
	// Get retrieves a value from the cache
	Get(key string) ([]byte, error)

	// Set stores a value in the cache with an expiration time
	Set(key string, value []byte, expiration time.Duration) error

	// Delete removes a value from the cache
	Delete(key string) error
}

// ErrMiss is returned by Get when the key is absent
var ErrMiss = memcache.ErrCacheMiss

// IsMiss reports whether err means the key was not cached
func IsMiss(err error) bool {
	return stderrors.Is(err, ErrMiss)
}

// maxKeyLen is memcache's key length limit
const maxKeyLen = 250

const keyPrefix = "campaignworker:"

// Key joins parts into a memcache-safe key. Keys that would be too long or
// contain whitespace or control characters are replaced by a hash.
func Key(parts ...string) string {
	key := keyPrefix + strings.Join(parts, ":")
	if len(key) <= maxKeyLen && !strings.ContainsFunc(key, func(r rune) bool { return r <= ' ' || r == 0x7f }) {
		return key
	}
	sum := sha1.Sum([]byte(key))
	return keyPrefix + parts[0] + ":" + hex.EncodeToString(sum[:])
}
