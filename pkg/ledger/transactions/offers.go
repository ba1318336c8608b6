package transactions

import (
	"fmt"

	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/ledger"
)

// OfferCreate places an order on the decentralized exchange.
type OfferCreate struct {
	CommonFields

	TakerGets     ledger.Amount `json:"TakerGets"`
	TakerPays     ledger.Amount `json:"TakerPays"`
	Expiration    *uint32       `json:"Expiration,omitempty"`
	OfferSequence *uint32       `json:"OfferSequence,omitempty"`
}

func (o *OfferCreate) EventsLabel() string {
	return "OfferCreate"
}

func (o *OfferCreate) Validate() error {
	if o.TakerGets.Value == "" || o.TakerPays.Value == "" {
		return fmt.Errorf("offer requires both TakerGets and TakerPays")
	}
	if o.TakerGets.Key() == o.TakerPays.Key() {
		return fmt.Errorf("offer cannot trade an asset against itself")
	}
	return nil
}

// OfferCancel removes a previously placed order.
type OfferCancel struct {
	CommonFields

	OfferSequence *uint32 `json:"OfferSequence,omitempty"`
}

func (o *OfferCancel) EventsLabel() string {
	return "OfferCancel"
}

func (o *OfferCancel) Validate() error {
	if o.OfferSequence == nil {
		return fmt.Errorf("offer cancel is missing OfferSequence")
	}
	return nil
}
