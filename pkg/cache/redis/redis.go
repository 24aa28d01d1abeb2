// Package redis is a cache.Store on Redis, using rueidis.
package redis

import (
	"context"
	"fmt"
	"time"

	"bank-admin/pkg/cache"

	"github.com/redis/rueidis"
)

// RedisStore implements cache.Store on a Redis server, cluster or
// sentinel-managed master. Every key is stored under KeyPrefix.
type RedisStore struct {
	client rueidis.Client
	name   string
	config RedisStoreConfig
}

// RedisStoreConfig configures the Redis connection.
type RedisStoreConfig struct {
	Name string `toml:"name"`
	// Addr is the Redis server address for single node mode.
	// Examples: "localhost:6379", "redis.example.com:6379"
	Addr string `toml:"addr" env:"BANKADMIN_REDIS_ADDR"`
	// ClusterAddrs is a list of Redis cluster node addresses.
	// If set, cluster mode is enabled automatically.
	ClusterAddrs []string `toml:"cluster_addrs" env:"BANKADMIN_REDIS_CLUSTER_ADDRS" envSeparator:","`
	Username     string   `toml:"username" env:"BANKADMIN_REDIS_USERNAME"`
	Password     string   `toml:"password" env:"BANKADMIN_REDIS_PASSWORD"`
	// DB is the Redis database number (0-15).
	// Note: In cluster mode, only DB 0 is supported.
	DB           int           `toml:"db" env:"BANKADMIN_REDIS_DB" validate:"min=0,max=15"`
	KeyPrefix    string        `toml:"key_prefix" env:"BANKADMIN_REDIS_KEY_PREFIX"`
	DialTimeout  time.Duration `toml:"dial_timeout" validate:"min=0"`
	WriteTimeout time.Duration `toml:"write_timeout" validate:"min=0"`
	// SentinelMasterSet is the master set name for sentinel mode
	SentinelMasterSet string `toml:"sentinel_master_set"`
	// SentinelAddrs is a list of Redis Sentinel addresses.
	// If set, sentinel mode is enabled.
	SentinelAddrs []string `toml:"sentinel_addrs" envSeparator:","`

	// TTL bounds entry lifetimes
	TTL cache.TTLPolicy `toml:"-"`
}

// DefaultRedisStoreConfig returns a configuration for a local server.
func DefaultRedisStoreConfig() RedisStoreConfig {
	return RedisStoreConfig{
		Name:         "redis",
		Addr:         "localhost:6379",
		DB:           0,
		KeyPrefix:    "bank-admin:",
		DialTimeout:  5 * time.Second,
		WriteTimeout: 3 * time.Second,
		TTL:          cache.TTLPolicy{DefaultTTL: time.Minute},
	}
}

// ClusterStoreConfig returns a configuration for Redis Cluster mode.
func ClusterStoreConfig(clusterAddrs []string, password string) RedisStoreConfig {
	config := DefaultRedisStoreConfig()
	config.ClusterAddrs = clusterAddrs
	config.Password = password
	config.Addr = ""
	config.DB = 0 // Cluster only supports DB 0
	return config
}

// initAddress picks the addresses to dial based on the configured mode.
func (c RedisStoreConfig) initAddress() ([]string, error) {
	switch {
	case len(c.ClusterAddrs) > 0:
		return c.ClusterAddrs, nil
	case len(c.SentinelAddrs) > 0:
		return c.SentinelAddrs, nil
	case c.Addr != "":
		return []string{c.Addr}, nil
	}
	return nil, fmt.Errorf("redis: no addresses configured (set Addr, ClusterAddrs, or SentinelAddrs)")
}

// NewRedisStore connects to Redis and verifies the connection with PING.
func NewRedisStore(config RedisStoreConfig) (*RedisStore, error) {
	if config.Name == "" {
		config.Name = "redis"
	}
	if config.DialTimeout == 0 {
		config.DialTimeout = 5 * time.Second
	}
	if config.TTL.DefaultTTL == 0 {
		config.TTL.DefaultTTL = time.Minute
	}

	initAddress, err := config.initAddress()
	if err != nil {
		return nil, err
	}

	clientOpts := rueidis.ClientOption{
		InitAddress:      initAddress,
		Username:         config.Username,
		Password:         config.Password,
		SelectDB:         config.DB,
		ConnWriteTimeout: config.WriteTimeout,
		MaxFlushDelay:    100 * time.Microsecond,
		// Client-side caching needs RESP3 tracking; the mirror does its own TTLs
		DisableCache: true,
	}

	if len(config.SentinelAddrs) > 0 {
		clientOpts.Sentinel = rueidis.SentinelOption{
			MasterSet: config.SentinelMasterSet,
		}
	}

	client, err := rueidis.NewClient(clientOpts)
	if err != nil {
		return nil, fmt.Errorf("redis: failed to create client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.DialTimeout)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis: failed to ping server: %w", err)
	}

	return &RedisStore{
		client: client,
		name:   config.Name,
		config: config,
	}, nil
}

// Get implements cache.Store.
func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := cache.ValidateKey(key); err != nil {
		return nil, err
	}

	cmd := r.client.B().Get().Key(r.config.KeyPrefix + key).Build()
	resp := r.client.Do(ctx, cmd)

	if err := resp.Error(); err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, cache.ErrKeyNotFound
		}
		return nil, fmt.Errorf("redis get: %w: %v", cache.ErrUnavailable, err)
	}

	data, err := resp.AsBytes()
	if err != nil {
		return nil, fmt.Errorf("redis get: failed to read response: %w", err)
	}
	return data, nil
}

// Set implements cache.Store.
func (r *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := cache.ValidateKey(key); err != nil {
		return err
	}

	ttl = r.config.TTL.EffectiveTTL(ttl)
	cmd := r.client.B().Set().Key(r.config.KeyPrefix + key).Value(rueidis.BinaryString(value)).Px(ttl).Build()
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("redis set: %w: %v", cache.ErrUnavailable, err)
	}
	return nil
}

// Delete implements cache.Store.
func (r *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	fullKeys := make([]string, len(keys))
	for i, key := range keys {
		fullKeys[i] = r.config.KeyPrefix + key
	}

	// Cluster DEL must not span slots, so delete one key per command
	cmds := make(rueidis.Commands, 0, len(fullKeys))
	for _, key := range fullKeys {
		cmds = append(cmds, r.client.B().Del().Key(key).Build())
	}

	for _, resp := range r.client.DoMulti(ctx, cmds...) {
		if err := resp.Error(); err != nil {
			return fmt.Errorf("redis delete: %w: %v", cache.ErrUnavailable, err)
		}
	}
	return nil
}

// Name returns the store name.
func (r *RedisStore) Name() string {
	return r.name
}

// Close closes the connection pool.
func (r *RedisStore) Close() error {
	r.client.Close()
	return nil
}

// Ping checks the connection.
func (r *RedisStore) Ping(ctx context.Context) error {
	cmd := r.client.B().Ping().Build()
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// TTL returns the remaining lifetime of key.
func (r *RedisStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	cmd := r.client.B().Pttl().Key(r.config.KeyPrefix + key).Build()
	ms, err := r.client.Do(ctx, cmd).AsInt64()
	if err != nil {
		return 0, fmt.Errorf("redis ttl: %w", err)
	}

	switch ms {
	case -2:
		return 0, cache.ErrKeyNotFound
	case -1:
		return -1, nil
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// Clear removes every key under the configured prefix.
func (r *RedisStore) Clear(ctx context.Context) error {
	var cursor uint64
	for {
		cmd := r.client.B().Scan().Cursor(cursor).Match(r.config.KeyPrefix + "*").Count(100).Build()
		entry, err := r.client.Do(ctx, cmd).AsScanEntry()
		if err != nil {
			return fmt.Errorf("redis scan: %w", err)
		}

		if len(entry.Elements) > 0 {
			cmds := make(rueidis.Commands, 0, len(entry.Elements))
			for _, key := range entry.Elements {
				cmds = append(cmds, r.client.B().Del().Key(key).Build())
			}
			for _, resp := range r.client.DoMulti(ctx, cmds...) {
				if err := resp.Error(); err != nil {
					return fmt.Errorf("redis clear: %w", err)
				}
			}
		}

		cursor = entry.Cursor
		if cursor == 0 {
			return nil
		}
	}
}
