package transactions

import (
	"encoding/json"
	"fmt"
)

// Transaction is the capability surface shared by all variants. The set of
// variants is closed: unknown transaction types are rejected at parse time
// instead of being passed through untyped.
type Transaction interface {
	// Common returns the shared mutable transaction fields.
	Common() *CommonFields

	// TxType returns the wire transaction type. Empty for pseudo
	// transactions.
	TxType() string

	// EventsLabel returns the human-readable label used in logs and
	// result reporting.
	EventsLabel() string

	// IsPseudo reports whether the transaction never reaches the ledger.
	IsPseudo() bool

	// Validate checks variant-specific required fields.
	Validate() error
}

// FromJSON parses a transaction JSON object into its concrete variant.
// A missing TransactionType produces the SignIn pseudo transaction; an
// unknown one is an error.
func FromJSON(raw []byte) (Transaction, error) {
	var probe struct {
		TransactionType string `json:"TransactionType"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse transaction json: %w", err)
	}

	var tx Transaction
	switch probe.TransactionType {
	case "":
		tx = &SignIn{}
	case "Payment":
		tx = &Payment{}
	case "TrustSet":
		tx = &TrustSet{}
	case "AccountSet":
		tx = &AccountSet{}
	case "AccountDelete":
		tx = &AccountDelete{}
	case "SetRegularKey":
		tx = &SetRegularKey{}
	case "SignerListSet":
		tx = &SignerListSet{}
	case "DepositPreauth":
		tx = &DepositPreauth{}
	case "TicketCreate":
		tx = &TicketCreate{}
	case "OfferCreate":
		tx = &OfferCreate{}
	case "OfferCancel":
		tx = &OfferCancel{}
	case "EscrowCreate":
		tx = &EscrowCreate{}
	case "EscrowFinish":
		tx = &EscrowFinish{}
	case "EscrowCancel":
		tx = &EscrowCancel{}
	case "CheckCreate":
		tx = &CheckCreate{}
	case "CheckCash":
		tx = &CheckCash{}
	case "CheckCancel":
		tx = &CheckCancel{}
	case "PaymentChannelCreate":
		tx = &PaymentChannelCreate{}
	case "PaymentChannelFund":
		tx = &PaymentChannelFund{}
	case "PaymentChannelClaim":
		tx = &PaymentChannelClaim{}
	default:
		return nil, fmt.Errorf("unsupported transaction type: %s", probe.TransactionType)
	}

	if err := json.Unmarshal(raw, tx); err != nil {
		return nil, fmt.Errorf("failed to parse %s transaction: %w", probe.TransactionType, err)
	}
	return tx, nil
}
