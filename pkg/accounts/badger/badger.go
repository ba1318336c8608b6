package badger

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	badgerdb "github.com/dgraph-io/badger/v3"
	"go.uber.org/zap"

	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/accounts"
)

// Key prefixes for namespacing
const (
	keyPrefixAccount     = "account:"
	keySchemaVersion     = "metadata:schema_version"
	currentSchemaVersion = "v1"
)

// BadgerRepository is a durable, disk-based account store. Accounts carry
// signing keys, so SyncWrites stays enabled.
type BadgerRepository struct {
	db       *badgerdb.DB
	logger   *zap.Logger
	gcCancel context.CancelFunc
	gcWg     sync.WaitGroup
	mu       sync.RWMutex
	closed   bool
}

// NewBadgerRepository opens a Badger-backed account store at dataPath.
// A background goroutine is started for value log garbage collection.
func NewBadgerRepository(dataPath string, logger *zap.Logger) (*BadgerRepository, error) {
	absPath, err := filepath.Abs(dataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	opts := badgerdb.DefaultOptions(absPath)
	opts.Logger = &badgerLoggerAdapter{logger: logger}
	opts.SyncWrites = true
	opts.CompactL0OnClose = true
	opts.NumVersionsToKeep = 1

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database at %s: %w", absPath, err)
	}

	br := &BadgerRepository{
		db:     db,
		logger: logger,
	}

	if err := br.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	br.gcCancel = cancel
	br.gcWg.Add(1)
	go br.runGC(ctx)

	logger.Sugar().Infow("Badger account repository initialized", "path", absPath)

	return br, nil
}

// initSchema initializes or validates the schema version
func (b *BadgerRepository) initSchema() error {
	return b.db.Update(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(keySchemaVersion))
		if err == badgerdb.ErrKeyNotFound {
			return txn.Set([]byte(keySchemaVersion), []byte(currentSchemaVersion))
		}
		if err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}

		var existingVersion string
		err = item.Value(func(val []byte) error {
			existingVersion = string(val)
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to read schema version value: %w", err)
		}

		if existingVersion != currentSchemaVersion {
			return fmt.Errorf("unsupported schema version: %s (expected: %s)", existingVersion, currentSchemaVersion)
		}
		return nil
	})
}

// runGC runs periodic value log garbage collection
func (b *BadgerRepository) runGC(ctx context.Context) {
	defer b.gcWg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			err := b.db.RunValueLogGC(0.5)
			if err != nil && err != badgerdb.ErrNoRewrite {
				b.logger.Sugar().Warnw("Badger GC error", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// SaveAccount persists an account
func (b *BadgerRepository) SaveAccount(account *accounts.Account) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return fmt.Errorf("account repository is closed")
	}

	data, err := accounts.MarshalAccount(account)
	if err != nil {
		return fmt.Errorf("failed to marshal Account: %w", err)
	}

	key := keyPrefixAccount + account.Address
	return b.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// GetAccount retrieves an account by address
func (b *BadgerRepository) GetAccount(address string) (*accounts.Account, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, fmt.Errorf("account repository is closed")
	}

	key := keyPrefixAccount + address

	var data []byte
	err := b.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(key))
		if err == badgerdb.ErrKeyNotFound {
			return nil // Not found is not an error
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			data = append([]byte{}, val...) // Copy value
			return nil
		})
	})

	if err != nil {
		return nil, fmt.Errorf("failed to load Account: %w", err)
	}

	if data == nil {
		return nil, nil // Not found
	}

	account, err := accounts.UnmarshalAccount(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal Account: %w", err)
	}
	return account, nil
}

// ListAccounts returns all accounts sorted by address
func (b *BadgerRepository) ListAccounts() ([]*accounts.Account, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, fmt.Errorf("account repository is closed")
	}

	var result []*accounts.Account

	err := b.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefixAccount)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()

			var data []byte
			err := item.Value(func(val []byte) error {
				data = append([]byte{}, val...) // Copy value
				return nil
			})
			if err != nil {
				return fmt.Errorf("failed to read value: %w", err)
			}

			account, err := accounts.UnmarshalAccount(data)
			if err != nil {
				b.logger.Sugar().Warnw("Failed to unmarshal Account, skipping",
					"key", string(item.Key()), "error", err)
				continue
			}

			result = append(result, account)
		}
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list Accounts: %w", err)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Address < result[j].Address
	})

	return result, nil
}

// DeleteAccount removes an account
func (b *BadgerRepository) DeleteAccount(address string) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return fmt.Errorf("account repository is closed")
	}

	key := keyPrefixAccount + address
	return b.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// Close shuts down the repository
func (b *BadgerRepository) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil // Already closed, idempotent
	}
	b.closed = true
	b.mu.Unlock()

	if b.gcCancel != nil {
		b.gcCancel()
	}
	b.gcWg.Wait()

	if err := b.db.Close(); err != nil {
		return fmt.Errorf("failed to close badger database: %w", err)
	}

	b.logger.Sugar().Info("Badger account repository closed")
	return nil
}

// HealthCheck verifies the repository is operational
func (b *BadgerRepository) HealthCheck() error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return fmt.Errorf("account repository is closed")
	}

	return b.db.View(func(txn *badgerdb.Txn) error {
		_, err := txn.Get([]byte(keySchemaVersion))
		if err == badgerdb.ErrKeyNotFound {
			return fmt.Errorf("schema version not found - database may be corrupted")
		}
		return err
	})
}
