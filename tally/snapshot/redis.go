package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisPrefix = "tally"

// RedisStore shares prefetched catalogs and banking history between
// processes.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore wraps client. Catalogs expire after ttl; zero keeps them.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// DialRedis connects to addr and checks the connection.
func DialRedis(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("snapshot: redis ping: %w", err)
	}
	return client, nil
}

func catalogKey(companyID string) string {
	return redisPrefix + ":catalog:" + companyID
}

func historyKey(companyID string) string {
	return redisPrefix + ":history:" + companyID
}

// LoadCatalog reads the catalog of companyID.
func (s *RedisStore) LoadCatalog(ctx context.Context, companyID string) (Snapshot, error) {
	payload, err := s.client.Get(ctx, catalogKey(companyID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, err
	}
	var snap Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("snapshot: decode catalog %s: %w", companyID, err)
	}
	return snap, nil
}

// SaveCatalog stores snap for companyID.
func (s *RedisStore) SaveCatalog(ctx context.Context, companyID string, snap Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, catalogKey(companyID), raw, s.ttl).Err()
}

// AppendHistory pushes e onto the history list of companyID.
func (s *RedisStore) AppendHistory(ctx context.Context, companyID string, e HistoryEntry) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.client.RPush(ctx, historyKey(companyID), raw).Err()
}

// History returns the history of companyID, oldest first.
func (s *RedisStore) History(ctx context.Context, companyID string) ([]HistoryEntry, error) {
	items, err := s.client.LRange(ctx, historyKey(companyID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]HistoryEntry, 0, len(items))
	for i, item := range items {
		var e HistoryEntry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, fmt.Errorf("snapshot: history entry %d: %w", i+1, err)
		}
		out = append(out, e)
	}
	return out, nil
}
