package session

import (
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Provider hands out the credential store of one browser client.
type Provider interface {
	For(clientID string) Store
}

// MemoryProvider keeps one MemoryStore per client ID for the process lifetime.
type MemoryProvider struct {
	mu     sync.Mutex
	stores map[string]*MemoryStore
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{stores: make(map[string]*MemoryStore)}
}

func (p *MemoryProvider) For(clientID string) Store {
	return p.memory(clientID)
}

func (p *MemoryProvider) memory(clientID string) *MemoryStore {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.stores[clientID]
	if !ok {
		s = NewMemoryStore()
		p.stores[clientID] = s
	}
	return s
}

// Forget drops the store of clientID.
func (p *MemoryProvider) Forget(clientID string) {
	p.mu.Lock()
	delete(p.stores, clientID)
	p.mu.Unlock()
}

// RedisProvider maps each client ID to the hash "<prefix>:<clientID>".
type RedisProvider struct {
	redis   *redis.Client
	prefix  string
	ttl     time.Duration
	sliding bool
}

func NewRedisProvider(rdb *redis.Client, prefix string, ttl time.Duration, sliding bool) *RedisProvider {
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = "gg"
	}
	return &RedisProvider{
		redis:   rdb,
		prefix:  prefix,
		ttl:     ttl,
		sliding: sliding,
	}
}

func (p *RedisProvider) For(clientID string) Store {
	return NewRedisStore(p.redis, p.key(clientID), p.ttl, p.sliding)
}

func (p *RedisProvider) key(clientID string) string {
	return p.prefix + ":" + clientID
}
