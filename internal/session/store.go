package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"joyeria_admin/internal/models"
)

// Persisted est ce qui survit à un rechargement : le jeton et l'utilisateur
type Persisted struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// ErrNotFound : rien n'est persisté pour cet identifiant
var ErrNotFound = errors.New("session: nothing persisted")

type Store interface {
	Load(ctx context.Context, id string) (*Persisted, error)
	Save(ctx context.Context, id string, p Persisted) error
	Delete(ctx context.Context, id string) error
}

const DefaultTTL = 30 * 24 * time.Hour

// RedisStore persiste les sessions sous "admin:session:<id>"
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(id string) string {
	return "admin:session:" + id
}

func (s *RedisStore) Load(ctx context.Context, id string) (*Persisted, error) {
	data, err := s.client.Get(ctx, redisKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lecture session redis: %w", err)
	}
	var p Persisted
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("session redis corrompue: %w", err)
	}
	return &p, nil
}

func (s *RedisStore) Save(ctx context.Context, id string, p Persisted) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisKey(id), data, s.ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, redisKey(id)).Err()
}

// MemoryStore garde les sessions en mémoire (dev, tests)
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]Persisted
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]Persisted)}
}

func (s *MemoryStore) Load(_ context.Context, id string) (*Persisted, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.data[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemoryStore) Save(_ context.Context, id string, p Persisted) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[id] = p
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}
