package transactions

// Memo is an arbitrary hex-encoded note attached to a transaction.
type Memo struct {
	MemoType   string `json:"MemoType,omitempty"`
	MemoData   string `json:"MemoData,omitempty"`
	MemoFormat string `json:"MemoFormat,omitempty"`
}

// MemoWrapper matches the ledger wire shape where each memo is nested under
// a "Memo" key.
type MemoWrapper struct {
	Memo Memo `json:"Memo"`
}

// SignerEntry is one entry of a signer list.
type SignerEntry struct {
	Account      string `json:"Account"`
	SignerWeight uint16 `json:"SignerWeight"`
}

// SignerEntryWrapper matches the ledger wire shape.
type SignerEntryWrapper struct {
	SignerEntry SignerEntry `json:"SignerEntry"`
}

// Signer is a signature attached by a multi-signing signer.
type Signer struct {
	Account       string `json:"Account"`
	SigningPubKey string `json:"SigningPubKey"`
	TxnSignature  string `json:"TxnSignature"`
}

// SignerWrapper matches the ledger wire shape.
type SignerWrapper struct {
	Signer Signer `json:"Signer"`
}

// CommonFields holds the fields shared by every transaction variant.
// Pointer fields distinguish "absent" from zero on the wire.
type CommonFields struct {
	Account            string          `json:"Account,omitempty"`
	TransactionType    string          `json:"TransactionType,omitempty"`
	Fee                string          `json:"Fee,omitempty"`
	Sequence           *uint32         `json:"Sequence,omitempty"`
	TicketSequence     *uint32         `json:"TicketSequence,omitempty"`
	LastLedgerSequence *uint32         `json:"LastLedgerSequence,omitempty"`
	AccountTxnID       string          `json:"AccountTxnID,omitempty"`
	NetworkID          *uint32         `json:"NetworkID,omitempty"`
	SourceTag          *uint32         `json:"SourceTag,omitempty"`
	Flags              *uint32         `json:"Flags,omitempty"`
	Memos              []MemoWrapper   `json:"Memos,omitempty"`
	SigningPubKey      string          `json:"SigningPubKey,omitempty"`
	TxnSignature       string          `json:"TxnSignature,omitempty"`
	Signers            []SignerWrapper `json:"Signers,omitempty"`
}

// Common returns the shared fields. Variants get this via embedding.
func (c *CommonFields) Common() *CommonFields {
	return c
}

// TxType returns the wire transaction type.
func (c *CommonFields) TxType() string {
	return c.TransactionType
}

// IsPseudo reports whether the transaction is a pseudo transaction that
// never reaches the ledger. Overridden by pseudo variants.
func (c *CommonFields) IsPseudo() bool {
	return false
}

// HasFlag reports whether a transaction flag is set.
func (c *CommonFields) HasFlag(flag uint32) bool {
	return c.Flags != nil && *c.Flags&flag != 0
}

// SetFlag sets a transaction flag.
func (c *CommonFields) SetFlag(flag uint32) {
	if c.Flags == nil {
		c.Flags = new(uint32)
	}
	*c.Flags |= flag
}

// ClearFlag clears a transaction flag. A Flags field left at zero is kept
// so a previously flagged transaction serializes deterministically.
func (c *CommonFields) ClearFlag(flag uint32) {
	if c.Flags == nil {
		return
	}
	*c.Flags &^= flag
}
