package transactions

import "fmt"

// SignerListSet replaces the account's multi-signing signer list.
type SignerListSet struct {
	CommonFields

	SignerQuorum  uint32               `json:"SignerQuorum"`
	SignerEntries []SignerEntryWrapper `json:"SignerEntries,omitempty"`
}

func (s *SignerListSet) EventsLabel() string {
	return "SignerListSet"
}

func (s *SignerListSet) Validate() error {
	if s.SignerQuorum > 0 && len(s.SignerEntries) == 0 {
		return fmt.Errorf("signer list with non-zero quorum requires entries")
	}
	for _, entry := range s.SignerEntries {
		if entry.SignerEntry.Account == "" {
			return fmt.Errorf("signer entry is missing Account")
		}
		if entry.SignerEntry.Account == s.Account {
			return fmt.Errorf("account cannot be a member of its own signer list")
		}
	}
	return nil
}

// DepositPreauth preauthorizes (or revokes) a sender for deposit-authorized
// accounts.
type DepositPreauth struct {
	CommonFields

	Authorize   string `json:"Authorize,omitempty"`
	Unauthorize string `json:"Unauthorize,omitempty"`
}

func (d *DepositPreauth) EventsLabel() string {
	return "DepositPreauth"
}

func (d *DepositPreauth) Validate() error {
	if (d.Authorize == "") == (d.Unauthorize == "") {
		return fmt.Errorf("deposit preauth requires exactly one of Authorize or Unauthorize")
	}
	return nil
}

// TicketCreate reserves sequence numbers for out-of-order submission.
type TicketCreate struct {
	CommonFields

	TicketCount uint32 `json:"TicketCount"`
}

func (t *TicketCreate) EventsLabel() string {
	return "TicketCreate"
}

func (t *TicketCreate) Validate() error {
	if t.TicketCount < 1 || t.TicketCount > 250 {
		return fmt.Errorf("ticket count must be between 1 and 250, got %d", t.TicketCount)
	}
	return nil
}
