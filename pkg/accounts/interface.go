package accounts

// Repository defines the storage interface for locally known accounts.
// All implementations must be thread-safe; the review controller and the
// CLI may read concurrently.
//
// The interface supports:
// - Account management (save, load, list, delete)
// - Lifecycle management (close, health check)
type Repository interface {
	// SaveAccount persists an account, overwriting any existing entry for
	// the same address.
	SaveAccount(account *Account) error

	// GetAccount retrieves an account by address.
	// Returns nil if the account doesn't exist, error only on storage
	// failure.
	GetAccount(address string) (*Account, error)

	// ListAccounts returns all persisted accounts sorted by address.
	// Returns an empty slice if no accounts exist.
	ListAccounts() ([]*Account, error)

	// DeleteAccount removes an account by address.
	// Idempotent - returns nil if the account doesn't exist.
	DeleteAccount(address string) error

	// Close cleanly shuts down the repository.
	// Idempotent - safe to call multiple times.
	Close() error

	// HealthCheck verifies the repository is operational.
	// Should be called during startup to fail fast.
	HealthCheck() error
}
