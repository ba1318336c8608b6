package accounts

import (
	"encoding/json"
	"fmt"
)

// MarshalAccount serializes an account for storage.
func MarshalAccount(account *Account) ([]byte, error) {
	if account == nil {
		return nil, fmt.Errorf("cannot marshal nil Account")
	}
	if account.Address == "" {
		return nil, fmt.Errorf("cannot marshal Account without address")
	}
	return json.Marshal(account)
}

// UnmarshalAccount deserializes a stored account.
func UnmarshalAccount(data []byte) (*Account, error) {
	var account Account
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, fmt.Errorf("failed to unmarshal Account: %w", err)
	}
	if account.Address == "" {
		return nil, fmt.Errorf("stored Account has no address")
	}
	return &account, nil
}
