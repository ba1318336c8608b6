package review

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/accounts"
	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/fees"
	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/ledger/transactions"
	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/pathfinding"
)

const (
	// lastLedgerOffset is how many ledgers past the last closed one a
	// submitted transaction stays valid by default.
	lastLedgerOffset = 20

	// relativeLedgerThreshold splits LastLedgerSequence values: anything
	// below it is an offset from the current ledger, not an absolute
	// index.
	relativeLedgerThreshold = 32570
)

// runGates checks everything that must hold before the payload may be
// accepted. Dangerous transactions require an explicit confirmation;
// a nil Confirm denies them.
func (s *Session) runGates(ctx context.Context, source *accounts.Account) error {
	if !s.payload.IsSignIn() && !s.payload.IsMultiSign() && source.HasZeroBalance() {
		return fmt.Errorf("account %s holds no funds and cannot submit transactions", source.Address)
	}

	s.mu.Lock()
	pathSelected := s.selectedPath != nil
	s.mu.Unlock()
	if s.payload.IsPathFinding() && !pathSelected && !s.payload.Meta.PathfindingFallback {
		return fmt.Errorf("a payment option must be selected before accepting")
	}

	switch tx := s.payload.Transaction().(type) {
	case *transactions.AccountDelete:
		if !s.confirm(PromptAccountDelete, fmt.Sprintf("remaining balance goes to %s", tx.Destination)) {
			return fmt.Errorf("%w: account deletion", ErrDeclinedPrompt)
		}

	case *transactions.AccountSet:
		if tx.DisablesMasterKey() {
			if !s.confirm(PromptDisableMasterKey, source.Address) {
				return fmt.Errorf("%w: disabling the master key", ErrDeclinedPrompt)
			}
		}

	case *transactions.TrustSet:
		lines, err := pathfinding.FetchTrustLines(ctx, s.deps.Ledger, source.Address)
		if err != nil {
			// Without line data the new-line warning cannot be shown,
			// treat the line as new
			s.deps.Logger.Sugar().Warnw("Could not load trust lines", "error", err)
		}
		if !hasLine(lines, tx.Currency(), tx.Issuer()) {
			detail := fmt.Sprintf("%s issued by %s", tx.Currency(), tx.Issuer())
			if !s.confirm(PromptNewTrustLine, detail) {
				return fmt.Errorf("%w: new trust line", ErrDeclinedPrompt)
			}
		}
	}

	return nil
}

func (s *Session) confirm(prompt Prompt, detail string) bool {
	if s.deps.Confirm == nil {
		return false
	}
	return s.deps.Confirm(prompt, detail)
}

func hasLine(lines []pathfinding.TrustLine, currency, issuer string) bool {
	for _, l := range lines {
		if l.Currency == currency && l.Issuer == issuer {
			return true
		}
	}
	return false
}

// prepare fills the transaction fields the origin left open: fee,
// sequence, expiry window and network binding. Multi-sign payloads are
// signed exactly as delivered, only the pinned fee is checked.
func (s *Session) prepare(ctx context.Context, source *accounts.Account) error {
	tx := s.payload.Transaction()
	common := tx.Common()

	if err := s.prepareFee(ctx, tx); err != nil {
		return err
	}

	if tx.IsPseudo() || s.payload.IsMultiSign() {
		return nil
	}

	if common.Account == "" {
		common.Account = source.Address
	}

	// Issued-currency payments that did not go through path finding still
	// need a funding decision before signing
	if payment, ok := tx.(*transactions.Payment); ok && !payment.Amount.IsNative() && !s.payload.IsPathFinding() {
		if err := s.preparePartialPayment(ctx, payment); err != nil {
			return err
		}
	}

	if common.Sequence == nil && common.TicketSequence == nil {
		sequence, err := s.accountSequence(ctx, common.Account)
		if err != nil {
			return err
		}
		common.Sequence = &sequence
	}

	if s.payload.ShouldSubmit() {
		if err := s.prepareLastLedgerSequence(ctx, common); err != nil {
			return err
		}
	}

	if s.deps.NetworkID.RequiresNetworkID() {
		id := uint32(s.deps.NetworkID)
		common.NetworkID = &id
	}

	return nil
}

func (s *Session) prepareFee(ctx context.Context, tx transactions.Transaction) error {
	if tx.IsPseudo() {
		return nil
	}

	if !s.payload.CanOverrideFee() {
		if tx.Common().Fee == "" {
			// Multi-sign payloads must arrive fully specified
			return fmt.Errorf("payload fee is pinned but missing")
		}
		return nil
	}

	s.mu.Lock()
	selected := s.selectedFee
	s.mu.Unlock()

	if selected == nil {
		set, err := s.deps.Fees.Resolve(ctx)
		if err != nil {
			return fmt.Errorf("failed to resolve fees: %w", err)
		}
		item := set.SuggestedItem()
		selected = &item
	}

	return fees.Apply(tx, *selected)
}

// preparePartialPayment decides how an issued payment gets funded: a
// covered trust line delivers directly, anything else is priced through
// the order book with the safety margin. An unsafe book blocks the accept.
func (s *Session) preparePartialPayment(ctx context.Context, p *transactions.Payment) error {
	lines, err := pathfinding.FetchTrustLines(ctx, s.deps.Ledger, p.Account)
	if err != nil {
		return fmt.Errorf("cannot load trust lines for %s: %w", p.Account, err)
	}

	checker, err := pathfinding.NewLiquidityChecker(s.deps.Ledger, s.deps.Logger)
	if err != nil {
		return err
	}

	if err := pathfinding.PreparePartialPayment(ctx, checker, p, lines); err != nil {
		return fmt.Errorf("cannot fund %s.%s payment: %w", p.Amount.Currency, p.Amount.Issuer, err)
	}
	return nil
}

// accountSequence reads the account's next sequence from the node.
func (s *Session) accountSequence(ctx context.Context, address string) (uint32, error) {
	raw, err := s.deps.Ledger.Request(ctx, "account_info", map[string]interface{}{
		"account":      address,
		"ledger_index": "current",
	})
	if err != nil {
		return 0, fmt.Errorf("failed to load sequence for %s: %w", address, err)
	}

	var result struct {
		AccountData struct {
			Sequence uint32 `json:"Sequence"`
		} `json:"account_data"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return 0, fmt.Errorf("unparseable account_info response: %w", err)
	}
	if result.AccountData.Sequence == 0 {
		return 0, fmt.Errorf("account %s not found on ledger", address)
	}
	return result.AccountData.Sequence, nil
}

// prepareLastLedgerSequence anchors the transaction's expiry window to the
// current ledger. Small preset values are offsets, stale absolute values
// get bumped back into the future.
func (s *Session) prepareLastLedgerSequence(ctx context.Context, common *transactions.CommonFields) error {
	current, err := s.currentLedgerIndex(ctx)
	if err != nil {
		return err
	}

	switch {
	case common.LastLedgerSequence == nil:
		lls := current + lastLedgerOffset
		common.LastLedgerSequence = &lls

	case *common.LastLedgerSequence < relativeLedgerThreshold:
		lls := current + *common.LastLedgerSequence
		common.LastLedgerSequence = &lls

	case *common.LastLedgerSequence < current:
		s.deps.Logger.Sugar().Warnw("Bumping stale LastLedgerSequence",
			"preset", *common.LastLedgerSequence, "current", current)
		lls := current + lastLedgerOffset
		common.LastLedgerSequence = &lls
	}

	return nil
}

func (s *Session) currentLedgerIndex(ctx context.Context) (uint32, error) {
	raw, err := s.deps.Ledger.Request(ctx, "ledger_current", nil)
	if err != nil {
		return 0, fmt.Errorf("failed to read current ledger index: %w", err)
	}

	var result struct {
		LedgerCurrentIndex uint32 `json:"ledger_current_index"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return 0, fmt.Errorf("unparseable ledger_current response: %w", err)
	}
	if result.LedgerCurrentIndex == 0 {
		return 0, fmt.Errorf("node returned no current ledger index")
	}
	return result.LedgerCurrentIndex, nil
}
