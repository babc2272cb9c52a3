package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/bart-incident-bot/internal/persistence"
)

// ErrNoToken is returned when a user has not signed in.
var ErrNoToken = errors.New("no user token")

// TokenStore keeps the access token each Teams user signed in with, keyed by AAD object id.
type TokenStore interface {
	Save(ctx context.Context, userID, token string) error
	Get(ctx context.Context, userID string) (string, error)
	Delete(ctx context.Context, userID string) error
}

type redisTokenStore struct {
	client *redis.Client
	keys   persistence.Keyspace
	ttl    time.Duration
}

// NewRedisTokenStore stores tokens in Redis under keys/usertoken with the given TTL.
func NewRedisTokenStore(client *redis.Client, keys persistence.Keyspace, ttl time.Duration) TokenStore {
	return &redisTokenStore{client: client, keys: keys, ttl: ttl}
}

func (s *redisTokenStore) key(userID string) string {
	return s.keys.Key("usertoken", userID)
}

func (s *redisTokenStore) Save(ctx context.Context, userID, token string) error {
	return s.client.Set(ctx, s.key(userID), token, s.ttl).Err()
}

func (s *redisTokenStore) Get(ctx context.Context, userID string) (string, error) {
	token, err := s.client.Get(ctx, s.key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoToken
	}
	return token, err
}

func (s *redisTokenStore) Delete(ctx context.Context, userID string) error {
	return s.client.Del(ctx, s.key(userID)).Err()
}

type memoryTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

// NewMemoryTokenStore keeps tokens in process memory.
func NewMemoryTokenStore() TokenStore {
	return &memoryTokenStore{tokens: make(map[string]string)}
}

func (s *memoryTokenStore) Save(_ context.Context, userID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[userID] = token
	return nil
}

func (s *memoryTokenStore) Get(_ context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.tokens[userID]
	if !ok {
		return "", ErrNoToken
	}
	return token, nil
}

func (s *memoryTokenStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, userID)
	return nil
}
