package preference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/i20tominaga/resident-app/internal/building"
)

// ErrNotFound is returned when a user has no stored preferences yet.
// Callers typically fall back to DefaultPreferences.
var ErrNotFound = errors.New("preferences not found")

// Store defines the injected preference-store capability: durable get/set
// of settings keyed by user ID.
type Store interface {
	// Get retrieves a user's preferences. Returns ErrNotFound when the
	// user has never saved any.
	Get(ctx context.Context, userID string) (*Preferences, error)

	// Set persists a user's preferences, replacing any previous value.
	Set(ctx context.Context, prefs *Preferences) error
}

// redisKeyPrefix namespaces preference values in Redis.
const redisKeyPrefix = "prefs:"

// RedisStore implements Store on Redis, one JSON value per user.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed preference store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get retrieves a user's preferences from Redis.
func (s *RedisStore) Get(ctx context.Context, userID string) (*Preferences, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+userID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}

	var prefs Preferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return nil, fmt.Errorf("decode preferences: %w", err)
	}
	return &prefs, nil
}

// Set persists a user's preferences to Redis. Values have no TTL; settings
// live until overwritten.
func (s *RedisStore) Set(ctx context.Context, prefs *Preferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+prefs.UserID, data, 0).Err(); err != nil {
		return fmt.Errorf("set preferences: %w", err)
	}
	return nil
}

// InMemoryStore is an in-memory implementation of Store.
// Used for testing and development mode.
type InMemoryStore struct {
	mu    sync.RWMutex
	prefs map[string]*Preferences
}

// NewInMemoryStore creates a new in-memory preference store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{prefs: make(map[string]*Preferences)}
}

// Get retrieves a user's preferences.
func (s *InMemoryStore) Get(_ context.Context, userID string) (*Preferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.prefs[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return clonePreferences(p), nil
}

// Set persists a user's preferences.
func (s *InMemoryStore) Set(_ context.Context, prefs *Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prefs[prefs.UserID] = clonePreferences(prefs)
	return nil
}

func clonePreferences(p *Preferences) *Preferences {
	prefsCopy := *p
	prefsCopy.FacilitiesOfInterest = append([]string(nil), p.FacilitiesOfInterest...)
	prefsCopy.TimePreferences = append([]building.TimePreference(nil), p.TimePreferences...)
	return &prefsCopy
}
