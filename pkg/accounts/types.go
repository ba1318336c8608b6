package accounts

import "github.com/shopspring/decimal"

// AccessLevel describes what the local device can do with an account.
type AccessLevel string

const (
	AccessLevelFull     AccessLevel = "Full"
	AccessLevelReadonly AccessLevel = "Readonly"
)

// KeyType identifies the signing key algorithm.
type KeyType string

const (
	KeyTypeEd25519   KeyType = "ed25519"
	KeyTypeSecp256k1 KeyType = "secp256k1"
)

// Account is a locally known ledger account. Balance is in native units,
// not drops.
type Account struct {
	Address     string      `json:"address"`
	Label       string      `json:"label,omitempty"`
	Balance     string      `json:"balance,omitempty"`
	OwnerCount  uint32      `json:"owner_count,omitempty"`
	Flags       uint32      `json:"flags,omitempty"`
	AccessLevel AccessLevel `json:"access_level"`
	Hidden      bool        `json:"hidden,omitempty"`
	Default     bool        `json:"default,omitempty"`
	KeyType     KeyType     `json:"key_type,omitempty"`
	SigningKey  string      `json:"signing_key,omitempty"`
	RegularKey  string      `json:"regular_key,omitempty"`
}

// CanSign reports whether the account can produce signatures locally.
func (a *Account) CanSign() bool {
	return a.AccessLevel == AccessLevelFull && a.SigningKey != ""
}

// HasZeroBalance reports whether the account holds no native balance.
// Unparseable balances count as zero.
func (a *Account) HasZeroBalance() bool {
	if a.Balance == "" {
		return true
	}
	d, err := decimal.NewFromString(a.Balance)
	if err != nil {
		return true
	}
	return d.LessThanOrEqual(decimal.Zero)
}
