package review

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/accounts"
	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/ledger/transactions"
)

// rippleEpochOffset converts ledger timestamps (seconds since 2000-01-01
// UTC) to unix time.
const rippleEpochOffset = 946684800

// resolveAccounts builds the list of accounts eligible to sign the
// payload and preselects a source.
func (s *Session) resolveAccounts(ctx context.Context) error {
	all, err := s.deps.Accounts.ListAccounts()
	if err != nil {
		return fmt.Errorf("failed to list accounts: %w", err)
	}

	preferred := s.payload.Transaction().Common().Account

	var eligible []*accounts.Account
	if s.payload.IsMultiSign() || s.payload.IsSignIn() {
		// Signature collectors may use hidden and read-limited accounts
		eligible = accounts.Signable(all)
	} else {
		eligible = accounts.Spendable(all, false)
		// A payload naming a hidden account makes exactly that account
		// usable, not every hidden one
		if a := accounts.FindByAddress(all, preferred); a != nil && a.Hidden && a.CanSign() {
			eligible = append(eligible, a)
		}
	}

	forced, err := s.forcedSigners(ctx)
	if err != nil {
		return err
	}
	if len(forced) > 0 {
		var narrowed []*accounts.Account
		for _, a := range eligible {
			for _, addr := range forced {
				if a.Address == addr {
					narrowed = append(narrowed, a)
					break
				}
			}
		}
		if len(narrowed) == 0 {
			return fmt.Errorf("%w: payload requires one of %v", ErrSignerNotImported, forced)
		}
		eligible = narrowed
	}

	if len(eligible) == 0 {
		return fmt.Errorf("no account available to sign this payload")
	}

	s.available = eligible
	switch {
	case accounts.FindByAddress(eligible, preferred) != nil:
		s.source = accounts.FindByAddress(eligible, preferred)
	case accounts.FindDefault(eligible) != nil:
		s.source = accounts.FindDefault(eligible)
	default:
		s.source = eligible[0]
	}
	return nil
}

// forcedSigners returns the addresses that may sign this payload, beyond
// any the origin pinned. Check transactions are constrained by the ledger
// object they reference, so the check is dereferenced here; an
// unresolvable check makes the payload unreviewable.
func (s *Session) forcedSigners(ctx context.Context) ([]string, error) {
	forced := s.payload.ForcedSigners()

	switch tx := s.payload.Transaction().(type) {
	case *transactions.CheckCash:
		check, err := s.fetchCheck(ctx, tx.CheckID)
		if err != nil {
			return nil, err
		}
		// Only the beneficiary can cash a check
		forced = append(forced, check.Destination)

	case *transactions.CheckCancel:
		check, err := s.fetchCheck(ctx, tx.CheckID)
		if err != nil {
			return nil, err
		}
		if !check.expired(time.Now()) {
			// Before expiry, only the two parties may cancel
			forced = append(forced, check.Account, check.Destination)
		}
	}

	return forced, nil
}

type checkObject struct {
	Account     string  `json:"Account"`
	Destination string  `json:"Destination"`
	Expiration  *uint32 `json:"Expiration"`
}

func (c *checkObject) expired(now time.Time) bool {
	if c.Expiration == nil {
		return false
	}
	return int64(*c.Expiration)+rippleEpochOffset < now.Unix()
}

func (s *Session) fetchCheck(ctx context.Context, checkID string) (*checkObject, error) {
	raw, err := s.deps.Ledger.Request(ctx, "ledger_entry", map[string]interface{}{
		"check": checkID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve check %s: %w", checkID, err)
	}

	var result struct {
		Node checkObject `json:"node"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("unparseable ledger_entry response: %w", err)
	}
	if result.Node.Account == "" || result.Node.Destination == "" {
		return nil, fmt.Errorf("check %s not found on ledger", checkID)
	}
	return &result.Node, nil
}
