package transactions

import (
	"fmt"

	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/ledger"
)

// CheckCreate writes a deferred payment authorization to the ledger.
type CheckCreate struct {
	CommonFields

	Destination    string        `json:"Destination"`
	DestinationTag *uint32       `json:"DestinationTag,omitempty"`
	SendMax        ledger.Amount `json:"SendMax"`
	Expiration     *uint32       `json:"Expiration,omitempty"`
	InvoiceID      string        `json:"InvoiceID,omitempty"`
}

func (c *CheckCreate) EventsLabel() string {
	return "CheckCreate"
}

func (c *CheckCreate) Validate() error {
	if c.Destination == "" {
		return fmt.Errorf("check create is missing Destination")
	}
	if c.SendMax.Value == "" {
		return fmt.Errorf("check create is missing SendMax")
	}
	return nil
}

// CheckCash redeems a check. Only the check's Destination may sign it, so
// the review controller derives a forced signer from the referenced check
// object.
type CheckCash struct {
	CommonFields

	CheckID    string         `json:"CheckID"`
	Amount     *ledger.Amount `json:"Amount,omitempty"`
	DeliverMin *ledger.Amount `json:"DeliverMin,omitempty"`
}

func (c *CheckCash) EventsLabel() string {
	return "CheckCash"
}

func (c *CheckCash) Validate() error {
	if c.CheckID == "" {
		return fmt.Errorf("check cash is missing CheckID")
	}
	if (c.Amount == nil) == (c.DeliverMin == nil) {
		return fmt.Errorf("check cash requires exactly one of Amount or DeliverMin")
	}
	return nil
}

// CheckCancel voids a check.
type CheckCancel struct {
	CommonFields

	CheckID string `json:"CheckID"`
}

func (c *CheckCancel) EventsLabel() string {
	return "CheckCancel"
}

func (c *CheckCancel) Validate() error {
	if c.CheckID == "" {
		return fmt.Errorf("check cancel is missing CheckID")
	}
	return nil
}
