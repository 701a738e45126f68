package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/fakhrymubarak/moonshine/internal/model"
	redisv9 "github.com/redis/go-redis/v9"
)

var ErrNoSnapshot = errors.New("no weather snapshot yet")

// SnapshotStore holds the latest snapshot. Each Save replaces the previous one.
type SnapshotStore interface {
	Save(ctx context.Context, snapshot *model.WeatherSnapshot) error
	Latest(ctx context.Context) (*model.WeatherSnapshot, error)
	Clear(ctx context.Context) error
}

type MemorySnapshotStore struct {
	mu       sync.RWMutex
	snapshot *model.WeatherSnapshot
}

func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{}
}

func (s *MemorySnapshotStore) Save(_ context.Context, snapshot *model.WeatherSnapshot) error {
	cp := *snapshot
	s.mu.Lock()
	s.snapshot = &cp
	s.mu.Unlock()
	return nil
}

func (s *MemorySnapshotStore) Latest(_ context.Context) (*model.WeatherSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil, ErrNoSnapshot
	}
	cp := *s.snapshot
	return &cp, nil
}

func (s *MemorySnapshotStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.snapshot = nil
	s.mu.Unlock()
	return nil
}

// redisClient is the subset of the go-redis client the store uses.
type redisClient interface {
	Get(ctx context.Context, key string) *redisv9.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redisv9.StatusCmd
	Del(ctx context.Context, keys ...string) *redisv9.IntCmd
}

// RedisSnapshotStore shares the latest snapshot between processes. Entries do not expire;
// Clear removes them when the screen closes.
type RedisSnapshotStore struct {
	client redisClient
	key    string
}

func NewRedisSnapshotStore(client redisClient, latitude, longitude float64) *RedisSnapshotStore {
	return &RedisSnapshotStore{client: client, key: SnapshotKey(latitude, longitude)}
}

// SnapshotKey is the Redis key for a location's snapshot.
func SnapshotKey(latitude, longitude float64) string {
	return "weather:snapshot:" + strconv.FormatFloat(latitude, 'f', -1, 64) + "," +
		strconv.FormatFloat(longitude, 'f', -1, 64)
}

func (s *RedisSnapshotStore) Save(ctx context.Context, snapshot *model.WeatherSnapshot) error {
	b, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, b, 0).Err(); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

func (s *RedisSnapshotStore) Latest(ctx context.Context) (*model.WeatherSnapshot, error) {
	val, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redisv9.Nil) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}
	var snapshot model.WeatherSnapshot
	if err := json.Unmarshal([]byte(val), &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (s *RedisSnapshotStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}
