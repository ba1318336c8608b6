package transactions

import (
	"fmt"

	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/ledger"
)

// TrustSet creates or modifies a trust line.
type TrustSet struct {
	CommonFields

	LimitAmount ledger.Amount `json:"LimitAmount"`
	QualityIn   *uint32       `json:"QualityIn,omitempty"`
	QualityOut  *uint32       `json:"QualityOut,omitempty"`
}

func (t *TrustSet) EventsLabel() string {
	return "TrustSet"
}

func (t *TrustSet) Validate() error {
	if t.LimitAmount.Currency == "" || t.LimitAmount.IsNative() {
		return fmt.Errorf("trust line limit must be an issued currency")
	}
	if t.LimitAmount.Issuer == "" {
		return fmt.Errorf("trust line limit is missing issuer")
	}
	return nil
}

// Currency returns the trust line currency code.
func (t *TrustSet) Currency() string {
	return t.LimitAmount.Currency
}

// Issuer returns the trust line counterparty.
func (t *TrustSet) Issuer() string {
	return t.LimitAmount.Issuer
}
