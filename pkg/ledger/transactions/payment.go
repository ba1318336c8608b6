package transactions

import (
	"fmt"

	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/ledger"
)

// Payment moves value between two accounts, optionally across currencies
// through paths.
type Payment struct {
	CommonFields

	Amount         ledger.Amount  `json:"Amount"`
	Destination    string         `json:"Destination"`
	DestinationTag *uint32        `json:"DestinationTag,omitempty"`
	InvoiceID      string         `json:"InvoiceID,omitempty"`
	Paths          ledger.PathSet `json:"Paths,omitempty"`
	SendMax        *ledger.Amount `json:"SendMax,omitempty"`
	DeliverMin     *ledger.Amount `json:"DeliverMin,omitempty"`
}

func (p *Payment) EventsLabel() string {
	return "Payment"
}

func (p *Payment) Validate() error {
	if p.Destination == "" {
		return fmt.Errorf("payment is missing Destination")
	}
	if p.Amount.Value == "" {
		return fmt.Errorf("payment is missing Amount")
	}
	if !p.Amount.IsNative() && p.Amount.Issuer == "" {
		return fmt.Errorf("issued-currency payment amount is missing issuer")
	}
	return nil
}

// IsCrossCurrency reports whether delivery and funding differ in asset,
// either through an explicit SendMax or an issued-currency Amount.
func (p *Payment) IsCrossCurrency() bool {
	if p.SendMax != nil {
		return p.SendMax.Key() != p.Amount.Key()
	}
	return false
}
