package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/abhisek/studyscout/internal/llm"
)

// Memory keeps conversation messages keyed by conversation id.
type Memory interface {
	Append(ctx context.Context, id string, msgs ...llm.Message) error
	// Recent returns the last n messages, oldest first.
	Recent(ctx context.Context, id string, n int) ([]llm.Message, error)
	Clear(ctx context.Context, id string) error
}

// DefaultMemoryCap bounds how many messages a conversation keeps.
const DefaultMemoryCap = 200

// InMemory is a process-local Memory.
type InMemory struct {
	mu    sync.Mutex
	cap   int
	convs map[string][]llm.Message
}

func NewInMemory(capacity int) *InMemory {
	if capacity <= 0 {
		capacity = DefaultMemoryCap
	}
	return &InMemory{cap: capacity, convs: make(map[string][]llm.Message)}
}

func (m *InMemory) Append(_ context.Context, id string, msgs ...llm.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	conv := append(m.convs[id], msgs...)
	if len(conv) > m.cap {
		conv = append([]llm.Message(nil), conv[len(conv)-m.cap:]...)
	}
	m.convs[id] = conv
	return nil
}

func (m *InMemory) Recent(_ context.Context, id string, n int) ([]llm.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conv := m.convs[id]
	if n <= 0 {
		return nil, nil
	}
	if len(conv) > n {
		conv = conv[len(conv)-n:]
	}
	return append([]llm.Message(nil), conv...), nil
}

func (m *InMemory) Clear(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.convs, id)
	return nil
}

// RedisConfig locates the Redis server backing RedisMemory.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// RedisMemory stores each conversation as a Redis list of JSON messages.
type RedisMemory struct {
	rdb    *redis.Client
	prefix string
	cap    int
	ttl    time.Duration
}

// NewRedisMemory connects and pings the server.
func NewRedisMemory(ctx context.Context, cfg RedisConfig) (*RedisMemory, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisMemory{rdb: rdb, prefix: "studyscout:conv:", cap: DefaultMemoryCap, ttl: cfg.TTL}, nil
}

func (m *RedisMemory) key(id string) string { return m.prefix + id }

func (m *RedisMemory) Append(ctx context.Context, id string, msgs ...llm.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	vals := make([]any, len(msgs))
	for i, msg := range msgs {
		raw, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		vals[i] = raw
	}

	key := m.key(id)
	_, err := m.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.RPush(ctx, key, vals...)
		p.LTrim(ctx, key, int64(-m.cap), -1)
		if m.ttl > 0 {
			p.Expire(ctx, key, m.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis append %s: %w", key, err)
	}
	return nil
}

func (m *RedisMemory) Recent(ctx context.Context, id string, n int) ([]llm.Message, error) {
	if n <= 0 {
		return nil, nil
	}
	raws, err := m.rdb.LRange(ctx, m.key(id), int64(-n), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis read %s: %w", m.key(id), err)
	}
	out := make([]llm.Message, 0, len(raws))
	for _, raw := range raws {
		var msg llm.Message
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			return nil, fmt.Errorf("decode message: %w", err)
		}
		out = append(out, msg)
	}
	return out, nil
}

func (m *RedisMemory) Clear(ctx context.Context, id string) error {
	return m.rdb.Del(ctx, m.key(id)).Err()
}

func (m *RedisMemory) Close() error {
	return m.rdb.Close()
}
