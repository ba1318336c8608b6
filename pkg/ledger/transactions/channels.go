package transactions

import (
	"fmt"

	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/ledger"
)

// PaymentChannelCreate opens a unidirectional payment channel.
type PaymentChannelCreate struct {
	CommonFields

	Amount         ledger.Amount `json:"Amount"`
	Destination    string        `json:"Destination"`
	DestinationTag *uint32       `json:"DestinationTag,omitempty"`
	SettleDelay    uint32        `json:"SettleDelay"`
	PublicKey      string        `json:"PublicKey"`
	CancelAfter    *uint32       `json:"CancelAfter,omitempty"`
}

func (p *PaymentChannelCreate) EventsLabel() string {
	return "PaymentChannelCreate"
}

func (p *PaymentChannelCreate) Validate() error {
	if p.Destination == "" {
		return fmt.Errorf("payment channel create is missing Destination")
	}
	if p.Amount.Value == "" {
		return fmt.Errorf("payment channel create is missing Amount")
	}
	if p.PublicKey == "" {
		return fmt.Errorf("payment channel create is missing PublicKey")
	}
	return nil
}

// PaymentChannelFund adds value to an open channel.
type PaymentChannelFund struct {
	CommonFields

	Channel    string        `json:"Channel"`
	Amount     ledger.Amount `json:"Amount"`
	Expiration *uint32       `json:"Expiration,omitempty"`
}

func (p *PaymentChannelFund) EventsLabel() string {
	return "PaymentChannelFund"
}

func (p *PaymentChannelFund) Validate() error {
	if p.Channel == "" {
		return fmt.Errorf("payment channel fund is missing Channel")
	}
	if p.Amount.Value == "" {
		return fmt.Errorf("payment channel fund is missing Amount")
	}
	return nil
}

// PaymentChannelClaim redeems or closes a channel.
type PaymentChannelClaim struct {
	CommonFields

	Channel   string         `json:"Channel"`
	Balance   *ledger.Amount `json:"Balance,omitempty"`
	Amount    *ledger.Amount `json:"Amount,omitempty"`
	Signature string         `json:"Signature,omitempty"`
	PublicKey string         `json:"PublicKey,omitempty"`
}

func (p *PaymentChannelClaim) EventsLabel() string {
	return "PaymentChannelClaim"
}

func (p *PaymentChannelClaim) Validate() error {
	if p.Channel == "" {
		return fmt.Errorf("payment channel claim is missing Channel")
	}
	return nil
}
