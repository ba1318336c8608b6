package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/accounts"
)

// MemoryRepository is an in-memory implementation of accounts.Repository.
// All data is lost when the process exits, so it is only suitable for
// tests and one-shot CLI runs.
//
// Thread-safe using sync.RWMutex. Deep copies data to prevent external
// mutation.
type MemoryRepository struct {
	mu sync.RWMutex

	// address -> account
	byAddress map[string]*accounts.Account

	closed bool
}

// NewMemoryRepository creates a new in-memory account repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byAddress: make(map[string]*accounts.Account),
	}
}

// SaveAccount persists an account.
func (m *MemoryRepository) SaveAccount(account *accounts.Account) error {
	if account == nil {
		return fmt.Errorf("cannot save nil Account")
	}
	if account.Address == "" {
		return fmt.Errorf("cannot save Account without address")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("account repository is closed")
	}

	copied := *account
	m.byAddress[account.Address] = &copied
	return nil
}

// GetAccount retrieves an account by address.
func (m *MemoryRepository) GetAccount(address string) (*accounts.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, fmt.Errorf("account repository is closed")
	}

	account, exists := m.byAddress[address]
	if !exists {
		return nil, nil // Not found is not an error
	}

	copied := *account
	return &copied, nil
}

// ListAccounts returns all accounts sorted by address.
func (m *MemoryRepository) ListAccounts() ([]*accounts.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, fmt.Errorf("account repository is closed")
	}

	addresses := make([]string, 0, len(m.byAddress))
	for address := range m.byAddress {
		addresses = append(addresses, address)
	}
	sort.Strings(addresses)

	result := make([]*accounts.Account, 0, len(addresses))
	for _, address := range addresses {
		copied := *m.byAddress[address]
		result = append(result, &copied)
	}
	return result, nil
}

// DeleteAccount removes an account.
func (m *MemoryRepository) DeleteAccount(address string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("account repository is closed")
	}

	delete(m.byAddress, address)
	return nil
}

// Close shuts down the repository.
func (m *MemoryRepository) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return nil
}

// HealthCheck verifies the repository is operational.
func (m *MemoryRepository) HealthCheck() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return fmt.Errorf("account repository is closed")
	}
	return nil
}
