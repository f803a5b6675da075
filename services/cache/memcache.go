package cache

import (
	"strings"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// Snapshot items are large; gomemcache's default 500ms timeout is too short.
const memcacheTimeout = 2 * time.Second

// Relative expirations above this are read by memcached as unix timestamps.
const maxRelativeExpiration = 30 * 24 * time.Hour

// MemcacheService stores page snapshots and render cooldowns in memcached
type MemcacheService struct {
	client *memcache.Client
}

// NewMemcacheService accepts one address or a comma separated server list
func NewMemcacheService(addrs string) *MemcacheService {
	var servers []string
	for _, s := range strings.Split(addrs, ",") {
		if s = strings.TrimSpace(s); s != "" {
			servers = append(servers, s)
		}
	}
	client := memcache.New(servers...)
	client.Timeout = memcacheTimeout
	return &MemcacheService{client: client}
}

func (m *MemcacheService) Ping() error {
	return m.client.Ping()
}

func (m *MemcacheService) Get(key string) ([]byte, error) {
	item, err := m.client.Get(key)
	if err != nil {
		return nil, err
	}
	return item.Value, nil
}

func (m *MemcacheService) Set(key string, value []byte, ttl time.Duration) error {
	return m.client.Set(&memcache.Item{Key: key, Value: value, Expiration: expiration(ttl, time.Now())})
}

// Delete removes key. A missing key is not an error.
func (m *MemcacheService) Delete(key string) error {
	err := m.client.Delete(key)
	if IsMiss(err) {
		return nil
	}
	return err
}

func expiration(ttl time.Duration, now time.Time) int32 {
	if ttl <= 0 {
		return 0
	}
	if ttl > maxRelativeExpiration {
		return int32(now.Add(ttl).Unix())
	}
	secs := int32(ttl / time.Second)
	if secs == 0 {
		secs = 1
	}
	return secs
}
