package redis

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/accounts"
)

// Key prefixes for namespacing in Redis
const (
	keyPrefixAccount     = "review:account:"
	keySchemaVersion     = "review:metadata:schema_version"
	currentSchemaVersion = "v1"

	// Key set for listing (Redis doesn't support prefix iteration natively)
	keySetAccounts = "review:accounts:index"
)

// RedisRepository is a Redis-backed account store, suitable when several
// review workers share one account set.
type RedisRepository struct {
	client    *redis.Client
	logger    *zap.Logger
	keyPrefix string
	mu        sync.RWMutex
	closed    bool
}

// RedisConfig holds the configuration for connecting to Redis
type RedisConfig struct {
	// Address is the Redis server address (host:port)
	Address string
	// Password is the optional Redis password
	Password string
	// DB is the Redis database number (0-15)
	DB int
	// KeyPrefix is an optional custom prefix for all keys, for
	// multi-tenant setups.
	KeyPrefix string
}

// NewRedisRepository creates a new Redis-backed account repository.
func NewRedisRepository(cfg *RedisConfig, logger *zap.Logger) (*RedisRepository, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address cannot be empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	rr := &RedisRepository{
		client:    client,
		logger:    logger,
		keyPrefix: cfg.KeyPrefix,
	}

	if err := rr.initSchema(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Sugar().Infow("Redis account repository initialized", "address", cfg.Address, "db", cfg.DB)

	return rr, nil
}

// prefixKey adds the custom key prefix (if configured) to a key
func (r *RedisRepository) prefixKey(key string) string {
	if r.keyPrefix == "" {
		return key
	}
	return r.keyPrefix + key
}

// initSchema initializes or validates the schema version
func (r *RedisRepository) initSchema(ctx context.Context) error {
	schemaKey := r.prefixKey(keySchemaVersion)

	existingVersion, err := r.client.Get(ctx, schemaKey).Result()
	if err == redis.Nil {
		return r.client.Set(ctx, schemaKey, currentSchemaVersion, 0).Err()
	}
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if existingVersion != currentSchemaVersion {
		return fmt.Errorf("unsupported schema version: %s (expected: %s)", existingVersion, currentSchemaVersion)
	}
	return nil
}

// SaveAccount persists an account
func (r *RedisRepository) SaveAccount(account *accounts.Account) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return fmt.Errorf("account repository is closed")
	}

	data, err := accounts.MarshalAccount(account)
	if err != nil {
		return fmt.Errorf("failed to marshal Account: %w", err)
	}

	ctx := context.Background()
	key := r.prefixKey(keyPrefixAccount + account.Address)

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.SAdd(ctx, r.prefixKey(keySetAccounts), account.Address)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save Account: %w", err)
	}
	return nil
}

// GetAccount retrieves an account by address
func (r *RedisRepository) GetAccount(address string) (*accounts.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, fmt.Errorf("account repository is closed")
	}

	ctx := context.Background()
	key := r.prefixKey(keyPrefixAccount + address)

	data, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil // Not found is not an error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load Account: %w", err)
	}

	account, err := accounts.UnmarshalAccount(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal Account: %w", err)
	}
	return account, nil
}

// ListAccounts returns all accounts sorted by address
func (r *RedisRepository) ListAccounts() ([]*accounts.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, fmt.Errorf("account repository is closed")
	}

	ctx := context.Background()

	addresses, err := r.client.SMembers(ctx, r.prefixKey(keySetAccounts)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list account index: %w", err)
	}
	sort.Strings(addresses)

	result := make([]*accounts.Account, 0, len(addresses))
	for _, address := range addresses {
		data, err := r.client.Get(ctx, r.prefixKey(keyPrefixAccount+address)).Bytes()
		if err == redis.Nil {
			// Index out of sync with the data, skip
			r.logger.Sugar().Warnw("Account in index but not in store, skipping", "address", address)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load Account %s: %w", address, err)
		}

		account, err := accounts.UnmarshalAccount(data)
		if err != nil {
			r.logger.Sugar().Warnw("Failed to unmarshal Account, skipping", "address", address, "error", err)
			continue
		}
		result = append(result, account)
	}

	return result, nil
}

// DeleteAccount removes an account
func (r *RedisRepository) DeleteAccount(address string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return fmt.Errorf("account repository is closed")
	}

	ctx := context.Background()

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.prefixKey(keyPrefixAccount+address))
	pipe.SRem(ctx, r.prefixKey(keySetAccounts), address)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete Account: %w", err)
	}
	return nil
}

// Close shuts down the repository
func (r *RedisRepository) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil // Already closed, idempotent
	}
	r.closed = true
	r.mu.Unlock()

	if err := r.client.Close(); err != nil {
		return fmt.Errorf("failed to close redis client: %w", err)
	}

	r.logger.Sugar().Info("Redis account repository closed")
	return nil
}

// HealthCheck verifies the repository is operational
func (r *RedisRepository) HealthCheck() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return fmt.Errorf("account repository is closed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return r.client.Ping(ctx).Err()
}
