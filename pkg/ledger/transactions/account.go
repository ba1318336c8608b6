package transactions

import (
	"fmt"

	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/ledger"
)

// AccountSet modifies account settings.
type AccountSet struct {
	CommonFields

	SetFlag       *uint32 `json:"SetFlag,omitempty"`
	ClearFlag     *uint32 `json:"ClearFlag,omitempty"`
	Domain        string  `json:"Domain,omitempty"`
	EmailHash     string  `json:"EmailHash,omitempty"`
	MessageKey    string  `json:"MessageKey,omitempty"`
	TransferRate  *uint32 `json:"TransferRate,omitempty"`
	TickSize      *uint8  `json:"TickSize,omitempty"`
	NFTokenMinter string  `json:"NFTokenMinter,omitempty"`
}

func (a *AccountSet) EventsLabel() string {
	return "AccountSet"
}

func (a *AccountSet) Validate() error {
	if a.SetFlag != nil && a.ClearFlag != nil && *a.SetFlag == *a.ClearFlag {
		return fmt.Errorf("SetFlag and ClearFlag cannot both be %d", *a.SetFlag)
	}
	return nil
}

// DisablesMasterKey reports whether applying this transaction disables the
// account master key. The controller requires an explicit confirmation for
// these.
func (a *AccountSet) DisablesMasterKey() bool {
	return a.SetFlag != nil && *a.SetFlag == ledger.AsfDisableMaster
}

// AccountDelete removes an account from the ledger, sending its remaining
// balance to Destination.
type AccountDelete struct {
	CommonFields

	Destination    string  `json:"Destination"`
	DestinationTag *uint32 `json:"DestinationTag,omitempty"`
}

func (a *AccountDelete) EventsLabel() string {
	return "AccountDelete"
}

func (a *AccountDelete) Validate() error {
	if a.Destination == "" {
		return fmt.Errorf("account delete is missing Destination")
	}
	if a.Destination == a.Account {
		return fmt.Errorf("account delete destination cannot be the account itself")
	}
	return nil
}

// SetRegularKey assigns or removes the account regular key pair.
type SetRegularKey struct {
	CommonFields

	RegularKey string `json:"RegularKey,omitempty"`
}

func (s *SetRegularKey) EventsLabel() string {
	return "SetRegularKey"
}

func (s *SetRegularKey) Validate() error {
	return nil
}
