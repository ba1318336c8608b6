package payload

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/ledger/transactions"
)

// RejectInitiator identifies who aborted a payload.
type RejectInitiator string

const (
	RejectInitiatorUser RejectInitiator = "USER"
	RejectInitiatorApp  RejectInitiator = "APP"
)

// ReturnURL is where the user is sent after the payload resolves.
type ReturnURL struct {
	App string `json:"app,omitempty"`
	Web string `json:"web,omitempty"`
}

// Meta carries the origin's instructions for handling the request.
type Meta struct {
	UUID                string     `json:"uuid"`
	Submit              bool       `json:"submit"`
	MultiSign           bool       `json:"multisign"`
	Pathfinding         bool       `json:"pathfinding"`
	PathfindingFallback bool       `json:"pathfinding_fallback"`
	ForceNetwork        string     `json:"force_network,omitempty"`
	Signers             []string   `json:"signers,omitempty"`
	CustomInstruction   string     `json:"custom_instruction,omitempty"`
	ReturnURL           *ReturnURL `json:"return_url,omitempty"`

	// Generated marks payloads created locally. They have no origin to
	// patch or reject.
	Generated bool `json:"generated,omitempty"`
}

// Application identifies the origin application that issued the payload.
type Application struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	UUID        string `json:"uuidv4,omitempty"`
	IconURL     string `json:"icon_url,omitempty"`
}

// Payload is a signing request: a candidate transaction plus the meta that
// dictates how it must be signed and dispatched.
type Payload struct {
	Meta        Meta            `json:"meta"`
	Application Application     `json:"application"`
	TxJSON      json.RawMessage `json:"request_json"`

	tx transactions.Transaction
}

// FromJSON parses a payload and its embedded transaction. Unknown
// transaction types fail here, before any review state exists.
func FromJSON(raw []byte) (*Payload, error) {
	p := &Payload{}
	if err := json.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("failed to parse payload: %w", err)
	}
	if len(p.TxJSON) == 0 {
		return nil, fmt.Errorf("payload has no request_json")
	}

	tx, err := transactions.FromJSON(p.TxJSON)
	if err != nil {
		return nil, fmt.Errorf("payload %s: %w", p.Meta.UUID, err)
	}
	p.tx = tx

	if !p.Meta.Generated && p.Meta.UUID == "" {
		return nil, fmt.Errorf("payload from an origin is missing uuid")
	}
	return p, nil
}

// Generate builds a locally generated payload around a transaction. Local
// payloads never talk back to an origin.
func Generate(tx transactions.Transaction, submit bool) *Payload {
	raw, _ := json.Marshal(tx)
	return &Payload{
		Meta: Meta{
			UUID:      uuid.New().String(),
			Submit:    submit,
			Generated: true,
		},
		TxJSON: raw,
		tx:     tx,
	}
}

// Transaction returns the parsed transaction variant.
func (p *Payload) Transaction() transactions.Transaction {
	return p.tx
}

// IsSignIn reports whether the payload carries the sign-in pseudo
// transaction.
func (p *Payload) IsSignIn() bool {
	return p.tx != nil && p.tx.IsPseudo()
}

// IsMultiSign reports whether the payload asks for a multi-signature.
func (p *Payload) IsMultiSign() bool {
	return p.Meta.MultiSign
}

// IsPathFinding reports whether path options should be resolved for this
// payload. Only plain payments are routable.
func (p *Payload) IsPathFinding() bool {
	if !p.Meta.Pathfinding || p.IsMultiSign() {
		return false
	}
	_, ok := p.tx.(*transactions.Payment)
	return ok
}

// ShouldSubmit reports whether the signed blob must be dispatched to the
// ledger. Multi-sign payloads collect signatures only and pseudo
// transactions never submit.
func (p *Payload) ShouldSubmit() bool {
	return p.Meta.Submit && !p.IsMultiSign() && !p.IsSignIn()
}

// ForcedSigners returns the origin-forced signer addresses, if any.
func (p *Payload) ForcedSigners() []string {
	return p.Meta.Signers
}

// HasFixedFee reports whether the origin preset the transaction fee.
func (p *Payload) HasFixedFee() bool {
	return p.tx != nil && p.tx.Common().Fee != ""
}

// CanOverrideFee reports whether the reviewer may choose a fee tier. A
// preset fee and multi-sign requests both pin the fee.
func (p *Payload) CanOverrideFee() bool {
	return !p.HasFixedFee() && !p.IsMultiSign() && !p.IsSignIn()
}

// IsGenerated reports whether the payload was created locally.
func (p *Payload) IsGenerated() bool {
	return p.Meta.Generated
}

// Validate checks the payload and its transaction.
func (p *Payload) Validate() error {
	if p.tx == nil {
		return fmt.Errorf("payload has no transaction")
	}
	return p.tx.Validate()
}
