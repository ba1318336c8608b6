package transactions

import (
	"fmt"

	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/ledger"
)

// EscrowCreate sequesters an amount until a time or crypto-condition.
type EscrowCreate struct {
	CommonFields

	Amount         ledger.Amount `json:"Amount"`
	Destination    string        `json:"Destination"`
	DestinationTag *uint32       `json:"DestinationTag,omitempty"`
	CancelAfter    *uint32       `json:"CancelAfter,omitempty"`
	FinishAfter    *uint32       `json:"FinishAfter,omitempty"`
	Condition      string        `json:"Condition,omitempty"`
}

func (e *EscrowCreate) EventsLabel() string {
	return "EscrowCreate"
}

func (e *EscrowCreate) Validate() error {
	if e.Destination == "" {
		return fmt.Errorf("escrow create is missing Destination")
	}
	if e.Amount.Value == "" {
		return fmt.Errorf("escrow create is missing Amount")
	}
	if e.CancelAfter == nil && e.FinishAfter == nil {
		return fmt.Errorf("escrow create requires CancelAfter or FinishAfter")
	}
	return nil
}

// EscrowFinish delivers an escrowed amount.
type EscrowFinish struct {
	CommonFields

	Owner         string  `json:"Owner"`
	OfferSequence *uint32 `json:"OfferSequence,omitempty"`
	Condition     string  `json:"Condition,omitempty"`
	Fulfillment   string  `json:"Fulfillment,omitempty"`
}

func (e *EscrowFinish) EventsLabel() string {
	return "EscrowFinish"
}

func (e *EscrowFinish) Validate() error {
	if e.Owner == "" {
		return fmt.Errorf("escrow finish is missing Owner")
	}
	if e.OfferSequence == nil {
		return fmt.Errorf("escrow finish is missing OfferSequence")
	}
	return nil
}

// EscrowCancel returns an escrowed amount to its sender.
type EscrowCancel struct {
	CommonFields

	Owner         string  `json:"Owner"`
	OfferSequence *uint32 `json:"OfferSequence,omitempty"`
}

func (e *EscrowCancel) EventsLabel() string {
	return "EscrowCancel"
}

func (e *EscrowCancel) Validate() error {
	if e.Owner == "" {
		return fmt.Errorf("escrow cancel is missing Owner")
	}
	if e.OfferSequence == nil {
		return fmt.Errorf("escrow cancel is missing OfferSequence")
	}
	return nil
}
