package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/accounts"
	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/backend"
	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/config"
	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/fees"
	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/ledger"
	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/ledger/transactions"
	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/pathfinding"
	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/payload"
	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/signing"
	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/submitter"
)

// State is the review session state. Error is not a state: a failed accept
// returns the session to Review with the error recorded.
type State string

const (
	StateReview     State = "Review"
	StateSubmitting State = "Submitting"
	StateVerifying  State = "Verifying"
	StateResult     State = "Result"
)

// Prompt identifies a confirmation the reviewer must answer before a
// dangerous transaction proceeds.
type Prompt string

const (
	PromptAccountDelete    Prompt = "AccountDelete"
	PromptDisableMasterKey Prompt = "DisableMasterKey"
	PromptNewTrustLine     Prompt = "NewTrustLine"
)

var (
	// ErrSessionClosed is returned once the session was declined or
	// finished.
	ErrSessionClosed = errors.New("review session is closed")

	// ErrAcceptInFlight guards against concurrent accepts of one session.
	ErrAcceptInFlight = errors.New("accept already in flight")

	// ErrNetworkUnreachable marks a submit attempt that never reached a
	// node. The session is back in Review and the signed blob is kept for
	// reuse.
	ErrNetworkUnreachable = errors.New("node unreachable")

	// ErrSignerNotImported means the payload can only be signed by
	// accounts this device does not hold.
	ErrSignerNotImported = errors.New("signer not imported")

	// ErrDeclinedPrompt means a required confirmation was not given.
	ErrDeclinedPrompt = errors.New("confirmation declined")
)

// FeeResolver resolves the current fee tiers.
type FeeResolver interface {
	Resolve(ctx context.Context) (*fees.Set, error)
}

// Signer produces signed objects.
type Signer interface {
	Sign(tx transactions.Transaction, key *signing.Key, opts signing.Options) (*signing.SignedObject, error)
}

// SubmitVerifier dispatches signed blobs and verifies their finality.
type SubmitVerifier interface {
	Submit(ctx context.Context, txBlob string) *submitter.SubmitResult
	Verify(ctx context.Context, txID string) (*submitter.VerifyResult, error)
}

// Origin reports outcomes back to the payload origin.
type Origin interface {
	PatchPayload(ctx context.Context, payloadUUID string, req *backend.PatchRequest) error
	RejectPayload(ctx context.Context, payloadUUID string, req *backend.RejectRequest) error
}

// Gateway is the node surface the session needs for preparation.
type Gateway interface {
	Request(ctx context.Context, command string, params map[string]interface{}) (json.RawMessage, error)
}

// PathResolver resolves funding options for routable payments and reports
// when resolved options go stale.
type PathResolver interface {
	Request(ctx context.Context, amount ledger.Amount, source, destination string) ([]pathfinding.Option, error)
	OnExpire(fn func())
}

// ConfirmFunc answers a confirmation prompt. A nil ConfirmFunc denies
// everything, so dangerous transactions fail closed.
type ConfirmFunc func(prompt Prompt, detail string) bool

// Dependencies wires a session to the rest of the pipeline. Origin may be
// nil when there is no origin to report to; Paths may be nil when no
// payload needs path finding.
type Dependencies struct {
	Accounts    accounts.Repository
	Fees        FeeResolver
	Signer      Signer
	Submitter   SubmitVerifier
	Origin      Origin
	Ledger      Gateway
	Paths       PathResolver
	Confirm     ConfirmFunc
	Environment backend.Environment
	NetworkID   config.NetworkID
	Logger      *zap.Logger
}

func (d *Dependencies) validate() error {
	if d.Accounts == nil {
		return fmt.Errorf("session requires an account repository")
	}
	if d.Fees == nil {
		return fmt.Errorf("session requires a fee resolver")
	}
	if d.Signer == nil {
		return fmt.Errorf("session requires a signer")
	}
	if d.Submitter == nil {
		return fmt.Errorf("session requires a submitter")
	}
	if d.Ledger == nil {
		return fmt.Errorf("session requires a ledger gateway")
	}
	if d.Logger == nil {
		return fmt.Errorf("session requires a logger")
	}
	return nil
}

// Outcome is the terminal product of an accepted session.
type Outcome struct {
	Signed   *signing.SignedObject   `json:"signed"`
	Submit   *submitter.SubmitResult `json:"submit,omitempty"`
	Verified *submitter.VerifyResult `json:"verified,omitempty"`

	// FinalResult is the engine result after verification had its say.
	// Empty for payloads that were signed but not submitted.
	FinalResult string `json:"final_result,omitempty"`
}

// Session drives one payload from review to finality.
type Session struct {
	deps    Dependencies
	payload *payload.Payload

	mu           sync.Mutex
	state        State
	available    []*accounts.Account
	source       *accounts.Account
	feeSet       *fees.Set
	selectedFee  *fees.Item
	selectedPath *pathfinding.Option
	signed       *signing.SignedObject
	outcome      *Outcome
	lastErr      error
	accepting    bool
	closed       bool
}

// NewSession validates the payload, resolves the eligible signing
// accounts and preselects a source. Payloads whose forced signers are not
// held locally fail here.
func NewSession(ctx context.Context, deps Dependencies, p *payload.Payload) (*Session, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("session requires a payload")
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid payload: %w", err)
	}

	s := &Session{
		deps:    deps,
		payload: p,
		state:   StateReview,
	}

	if err := s.resolveAccounts(ctx); err != nil {
		return nil, err
	}

	// Stale options must not survive as a selection
	if deps.Paths != nil {
		deps.Paths.OnExpire(s.ClearPathOption)
	}

	deps.Logger.Sugar().Infow("Review session opened",
		"uuid", p.Meta.UUID,
		"type", p.Transaction().EventsLabel(),
		"accounts", len(s.available))

	return s, nil
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the error recorded by the last failed accept.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Outcome returns the terminal outcome, nil until the session resolves.
func (s *Session) Outcome() *Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

// AvailableAccounts returns the accounts eligible to sign this payload.
func (s *Session) AvailableAccounts() []*accounts.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*accounts.Account(nil), s.available...)
}

// Source returns the currently selected signing account.
func (s *Session) Source() *accounts.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// SetSource switches the signing account. Only allowed while reviewing.
func (s *Session) SetSource(address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	if s.state != StateReview {
		return fmt.Errorf("cannot change source in state %s", s.state)
	}

	account := accounts.FindByAddress(s.available, address)
	if account == nil {
		return fmt.Errorf("account %s is not eligible for this payload", address)
	}
	s.source = account

	// A new signer invalidates any previous signing pass
	s.signed = nil
	return nil
}

// ResolveFees fetches and caches the selectable fee tiers. For payloads
// with a pinned fee it returns the read-only item instead.
func (s *Session) ResolveFees(ctx context.Context) (*fees.Set, error) {
	if !s.payload.CanOverrideFee() {
		fixed := fees.FixedItem(s.payload.Transaction().Common().Fee)
		return &fees.Set{
			Available: []fees.Item{fixed},
			Suggested: fees.TierUnknown,
		}, nil
	}

	set, err := s.deps.Fees.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.feeSet = set
	s.mu.Unlock()
	return set, nil
}

// SelectFee picks a fee tier resolved earlier.
func (s *Session) SelectFee(tier fees.Tier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	if !s.payload.CanOverrideFee() {
		return fmt.Errorf("fee for this payload cannot be changed")
	}
	if s.feeSet == nil {
		return fmt.Errorf("fees have not been resolved yet")
	}
	item, ok := s.feeSet.Get(tier)
	if !ok {
		return fmt.Errorf("unknown fee tier %s", tier)
	}
	s.selectedFee = &item
	return nil
}

// ResolvePathOptions asks the node for funding options of a routable
// payment. Options go stale on the resolver's clock; the expiry clears
// any selection made from them and recloses the accept gate.
func (s *Session) ResolvePathOptions(ctx context.Context) ([]pathfinding.Option, error) {
	if !s.payload.IsPathFinding() {
		return nil, fmt.Errorf("payload does not use path finding")
	}
	if s.deps.Paths == nil {
		return nil, fmt.Errorf("no path resolver configured")
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	source := s.source
	s.mu.Unlock()

	p := s.payload.Transaction().(*transactions.Payment)
	options, err := s.deps.Paths.Request(ctx, p.Amount, source.Address, p.Destination)
	if err != nil {
		return nil, fmt.Errorf("path finding failed: %w", err)
	}
	return options, nil
}

// SelectPathOption picks a resolved path option for a routable payment.
func (s *Session) SelectPathOption(opt pathfinding.Option) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	if !s.payload.IsPathFinding() {
		return fmt.Errorf("payload does not use path finding")
	}

	p := s.payload.Transaction().(*transactions.Payment)
	pathfinding.Apply(p, opt)
	s.selectedPath = &opt
	return nil
}

// ClearPathOption drops the active path selection, removing its SendMax
// and Paths mutations. Wired to the path finder's expiry callback.
func (s *Session) ClearPathOption() {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Once an accept passed its gate the pipeline owns the transaction;
	// an expiry firing now must not strip the path from under it
	if s.accepting || s.state != StateReview {
		return
	}

	if p, ok := s.payload.Transaction().(*transactions.Payment); ok {
		pathfinding.Clear(p)
	}
	s.selectedPath = nil
}

// Accept runs the pipeline: gates, preparation, signing, dispatch and
// verification. Only one accept can be in flight; a failure other than a
// user decline returns the session to Review with the error recorded.
func (s *Session) Accept(ctx context.Context) (*Outcome, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	if s.accepting {
		s.mu.Unlock()
		return nil, ErrAcceptInFlight
	}
	if s.state != StateReview {
		s.mu.Unlock()
		return nil, fmt.Errorf("cannot accept in state %s", s.state)
	}
	if s.source == nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("no source account selected")
	}
	s.accepting = true
	s.lastErr = nil
	source := s.source
	s.mu.Unlock()

	outcome, err := s.run(ctx, source)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.accepting = false

	if s.closed {
		// Declined while the pipeline was in flight: drop the late result
		s.deps.Logger.Sugar().Infow("Dropping late result for declined payload",
			"uuid", s.payload.Meta.UUID)
		return nil, ErrSessionClosed
	}

	if err != nil {
		s.state = StateReview
		s.lastErr = err
		return nil, err
	}

	s.state = StateResult
	s.outcome = outcome
	s.closed = true
	return outcome, nil
}

// Decline aborts the session. A decline during an in-flight accept wins:
// whatever the pipeline resolves afterwards is suppressed.
func (s *Session) Decline(ctx context.Context, reason string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil // Already terminal, idempotent
	}
	s.closed = true
	s.state = StateResult
	s.mu.Unlock()

	s.deps.Logger.Sugar().Infow("Payload declined", "uuid", s.payload.Meta.UUID, "reason", reason)

	if s.deps.Origin == nil || s.payload.IsGenerated() {
		return nil
	}
	return s.deps.Origin.RejectPayload(ctx, s.payload.Meta.UUID, &backend.RejectRequest{
		Initiator: string(payload.RejectInitiatorUser),
		Reason:    reason,
	})
}

// run executes the accept pipeline outside the session lock.
func (s *Session) run(ctx context.Context, source *accounts.Account) (*Outcome, error) {
	if err := s.runGates(ctx, source); err != nil {
		return nil, err
	}

	// Reuse the blob from an earlier attempt that failed in transport:
	// one session, one signature.
	s.mu.Lock()
	signed := s.signed
	s.mu.Unlock()

	if signed == nil {
		if err := s.prepare(ctx, source); err != nil {
			return nil, err
		}

		key, err := signing.ParseKey(source.SigningKey)
		if err != nil {
			return nil, fmt.Errorf("failed to load signing key for %s: %w", source.Address, err)
		}

		signed, err = s.deps.Signer.Sign(s.payload.Transaction(), key, signing.Options{
			MultiSign:     s.payload.IsMultiSign(),
			SignerAddress: source.Address,
		})
		if err != nil {
			return nil, fmt.Errorf("signing failed: %w", err)
		}

		s.mu.Lock()
		s.signed = signed
		s.mu.Unlock()

		s.patchSigned(ctx, signed)
	}

	outcome := &Outcome{Signed: signed}

	if !s.payload.ShouldSubmit() {
		return outcome, nil
	}

	s.setState(StateSubmitting)
	submitResult := s.deps.Submitter.Submit(ctx, signed.SignedBlob)
	outcome.Submit = submitResult

	if submitResult.NetworkError {
		return nil, fmt.Errorf("%w: %s", ErrNetworkUnreachable, submitResult.Message)
	}

	if !submitResult.Success {
		outcome.FinalResult = submitResult.EngineResult
		s.patchDispatched(ctx, outcome.FinalResult)
		return outcome, nil
	}

	s.setState(StateVerifying)
	verified, err := s.deps.Submitter.Verify(ctx, signed.TxID)
	if err != nil {
		return nil, fmt.Errorf("verification aborted: %w", err)
	}
	outcome.Verified = verified

	switch {
	case verified.Validated && verified.Success:
		// A provisional code becomes final success only here
		outcome.FinalResult = ledger.EngineResultSuccess
	case verified.Validated:
		outcome.FinalResult = verified.TransactionResult
		outcome.Submit.Success = false
	default:
		// Inconclusive: the submit-time result stands
		outcome.FinalResult = submitResult.EngineResult
	}

	s.patchDispatched(ctx, outcome.FinalResult)
	return outcome, nil
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.state = state
}

func (s *Session) patchSigned(ctx context.Context, signed *signing.SignedObject) {
	if s.deps.Origin == nil || s.payload.IsGenerated() || s.isClosed() {
		return
	}
	err := s.deps.Origin.PatchPayload(ctx, s.payload.Meta.UUID, &backend.PatchRequest{
		SignedBlob:  signed.SignedBlob,
		TxID:        signed.TxID,
		SignMethod:  signed.SignMethod,
		MultiSigned: signed.MultiSigned,
		Environment: &s.deps.Environment,
	})
	if err != nil {
		// The origin not hearing about the signature must not block the
		// user's transaction
		s.deps.Logger.Sugar().Warnw("Failed to patch signed payload",
			"uuid", s.payload.Meta.UUID, "error", err)
	}
}

func (s *Session) patchDispatched(ctx context.Context, result string) {
	if s.deps.Origin == nil || s.payload.IsGenerated() || s.isClosed() {
		return
	}
	err := s.deps.Origin.PatchPayload(ctx, s.payload.Meta.UUID, &backend.PatchRequest{
		Dispatched: &backend.DispatchedResult{
			To:       s.deps.Environment.NodeURI,
			NodeType: s.deps.Environment.NodeType,
			Result:   result,
		},
	})
	if err != nil {
		s.deps.Logger.Sugar().Warnw("Failed to patch dispatch result",
			"uuid", s.payload.Meta.UUID, "error", err)
	}
}
