package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"CoinSentinel/internal/model"

	goredis "github.com/go-redis/redis/v8"
)

// RedisConfig configures the Redis-backed store.
type RedisConfig struct {
	Addr     string // e.g. "localhost:6379"
	Password string
	DB       int
	Prefix   string // key prefix, default "coinsentinel"
}

// RedisStore keeps favorites as a list and alert configs as a hash of JSON values.
type RedisStore struct {
	client *goredis.Client
	prefix string
}

// NewRedisStore connects and pings the server.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "coinsentinel"
	}
	log.Printf("[INFO] redis state store connected to %s", cfg.Addr)
	return &RedisStore{client: client, prefix: prefix}, nil
}

func (s *RedisStore) favoritesKey() string { return s.prefix + ":favorites" }
func (s *RedisStore) alertsKey() string    { return s.prefix + ":alerts" }
func (s *RedisStore) updatedKey() string   { return s.prefix + ":updated_at" }

// Load reads favorites and alerts. Missing keys yield an empty state.
func (s *RedisStore) Load(ctx context.Context) (*model.UserState, error) {
	state := model.NewUserState()

	favs, err := s.client.LRange(ctx, s.favoritesKey(), 0, -1).Result()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return nil, fmt.Errorf("load favorites: %w", err)
	}
	state.Favorites = favs

	raw, err := s.client.HGetAll(ctx, s.alertsKey()).Result()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return nil, fmt.Errorf("load alerts: %w", err)
	}
	for id, v := range raw {
		var cfg model.AlertConfig
		if err := json.Unmarshal([]byte(v), &cfg); err != nil {
			log.Printf("[WARN] skipping malformed alert config for %s: %v", id, err)
			continue
		}
		state.Alerts[id] = &cfg
	}

	if ts, err := s.client.Get(ctx, s.updatedKey()).Time(); err == nil {
		state.UpdatedAt = ts
	}
	return state, nil
}

// Save replaces the stored state in a single MULTI/EXEC transaction.
func (s *RedisStore) Save(ctx context.Context, state *model.UserState) error {
	state.UpdatedAt = time.Now()

	alerts := make(map[string]interface{}, len(state.Alerts))
	for id, cfg := range state.Alerts {
		data, err := json.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("encode alert %s: %w", id, err)
		}
		alerts[id] = data
	}

	_, err := s.client.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Del(ctx, s.favoritesKey(), s.alertsKey())
		if len(state.Favorites) > 0 {
			favs := make([]interface{}, len(state.Favorites))
			for i, f := range state.Favorites {
				favs[i] = f
			}
			p.RPush(ctx, s.favoritesKey(), favs...)
		}
		if len(alerts) > 0 {
			p.HSet(ctx, s.alertsKey(), alerts)
		}
		p.Set(ctx, s.updatedKey(), state.UpdatedAt, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error { return s.client.Close() }
