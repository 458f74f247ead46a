// Package session keeps short-lived reader state of played documents in Redis.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/proseplay/proseplay/util"
	"github.com/redis/go-redis/v9"
)

// Different key prefixes for different use cases
const (
	PlaySessionPrefix = "play:"
)

var ErrSessionNotFound = errors.New("play session not found or expired")

// PlaySession is everything needed to rebuild a document as the reader left it.
type PlaySession struct {
	ID     string `json:"id"`
	Source string `json:"source"`

	// Sample is the name of the sample the source was loaded from, if any.
	Sample string `json:"sample,omitempty"`

	CurrentIndexes []int     `json:"current_indexes"`
	Expanded       bool      `json:"expanded"`
	CreatedAt      time.Time `json:"created_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}

type Store interface {
	SaveSession(ctx context.Context, data PlaySession, ttl time.Duration) error
	GetSession(ctx context.Context, id string) (*PlaySession, error)
	DeleteSession(ctx context.Context, id string) error
}

type RedisStore struct {
	client *redis.Client
}

func NewStore(config *util.Config) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddress, //  default "localhost:6379"
		Password: "",                  // "" for no password, ok for now
		DB:       0,                   // 0 for default database
	})

	return &RedisStore{client: rdb}
}

func (store *RedisStore) Ping(ctx context.Context) error {
	return store.client.Ping(ctx).Err()
}

func (store *RedisStore) Close() error {
	return store.client.Close()
}

// SaveSession overwrites the session with the same id and resets its ttl.
func (store *RedisStore) SaveSession(ctx context.Context, data PlaySession, ttl time.Duration) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to serialize play session: %w", err)
	}

	key := PlaySessionPrefix + data.ID
	return store.client.Set(ctx, key, jsonData, ttl).Err()
}

// GetSession returns ErrSessionNotFound if the session is not found or expired.
func (store *RedisStore) GetSession(ctx context.Context, id string) (*PlaySession, error) {
	key := PlaySessionPrefix + id

	jsonData, err := store.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get play session: %w", err)
	}

	var session PlaySession
	if err := json.Unmarshal([]byte(jsonData), &session); err != nil {
		return nil, fmt.Errorf("failed to parse play session json: %w", err)
	}

	return &session, nil
}

// Deleting a missing session is not an error.
func (store *RedisStore) DeleteSession(ctx context.Context, id string) error {
	key := PlaySessionPrefix + id
	return store.client.Del(ctx, key).Err()
}
