package fees

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/ledger/transactions"
)

// Tier names a fee level offered to the reviewer.
type Tier string

const (
	TierLow    Tier = "LOW"
	TierMedium Tier = "MEDIUM"
	TierHigh   Tier = "HIGH"

	// TierUnknown marks a fee the reviewer cannot change: preset by the
	// origin or pinned because the request is multi-signed.
	TierUnknown Tier = "unknown"
)

// minBaseFeeDrops is the floor applied to whatever base fee the node
// reports.
const minBaseFeeDrops = 12

// Item is one selectable fee value, in drops.
type Item struct {
	Type  Tier   `json:"type"`
	Value string `json:"value"`
}

// Set is the normalized outcome of a fee query.
type Set struct {
	Available []Item `json:"available_fees"`
	Suggested Tier   `json:"suggested"`
}

// Get returns the item for a tier.
func (s *Set) Get(tier Tier) (Item, bool) {
	for _, item := range s.Available {
		if item.Type == tier {
			return item, true
		}
	}
	return Item{}, false
}

// SuggestedItem returns the item of the suggested tier.
func (s *Set) SuggestedItem() Item {
	item, _ := s.Get(s.Suggested)
	return item
}

// FixedItem wraps an unchangeable fee value in the read-only tier.
func FixedItem(valueDrops string) Item {
	return Item{Type: TierUnknown, Value: valueDrops}
}

// NormalizeFeeDataSet turns a reported base fee into the three selectable
// tiers. The curve widens with the base fee: levels 0, 4 and 8 feed a
// multiplier of 100 + level^(2.1 - baseFee*0.000005), and values above the
// low tier are rounded up to half the base fee's magnitude.
func NormalizeFeeDataSet(baseFeeDrops string) (*Set, error) {
	reported, err := decimal.NewFromString(baseFeeDrops)
	if err != nil {
		return nil, fmt.Errorf("invalid base fee %q: %w", baseFeeDrops, err)
	}

	baseFee := decimal.Max(decimal.NewFromInt(minBaseFeeDrops), reported)

	return &Set{
		Available: []Item{
			{Type: TierLow, Value: feeCalc(baseFee, 0)},
			{Type: TierMedium, Value: feeCalc(baseFee, 4)},
			{Type: TierHigh, Value: feeCalc(baseFee, 8)},
		},
		Suggested: TierLow,
	}, nil
}

func feeCalc(baseFee decimal.Decimal, level int) string {
	nearest := decimal.NewFromInt(1)
	multiplier := decimal.NewFromInt(100)

	if level > 0 {
		digits := len(baseFee.Truncate(0).String())
		nearest = decimal.NewFromFloat(0.5).Mul(decimal.NewFromFloat(math.Pow10(digits - 1)))
		exponent := 2.1 - baseFee.InexactFloat64()*0.000005
		multiplier = decimal.NewFromInt(100).Add(decimal.NewFromFloat(math.Pow(float64(level), exponent)))
	}

	return baseFee.
		Div(decimal.NewFromInt(100)).
		Mul(multiplier).
		Div(nearest).
		Ceil().
		Mul(nearest).
		Ceil().
		String()
}

// Apply overwrites the transaction fee with the chosen item. Applying the
// same item again is a no-op, so re-selection before signing is safe.
func Apply(tx transactions.Transaction, item Item) error {
	if tx == nil {
		return fmt.Errorf("cannot apply fee to nil transaction")
	}
	if item.Value == "" {
		return fmt.Errorf("fee item has no value")
	}
	if _, err := decimal.NewFromString(item.Value); err != nil {
		return fmt.Errorf("invalid fee value %q: %w", item.Value, err)
	}
	tx.Common().Fee = item.Value
	return nil
}

// Gateway is the node surface the resolver needs.
type Gateway interface {
	Request(ctx context.Context, command string, params map[string]interface{}) (json.RawMessage, error)
}

// Resolver fetches the network fee and normalizes it into tiers.
type Resolver struct {
	gateway Gateway
	logger  *zap.Logger
}

// NewResolver creates a fee resolver.
func NewResolver(gateway Gateway, logger *zap.Logger) (*Resolver, error) {
	if gateway == nil {
		return nil, fmt.Errorf("fee resolver requires a gateway")
	}
	if logger == nil {
		return nil, fmt.Errorf("fee resolver requires a logger")
	}
	return &Resolver{gateway: gateway, logger: logger}, nil
}

// Resolve queries the node for the current open-ledger base fee. A node
// failure falls back to the minimum base fee rather than blocking review.
func (r *Resolver) Resolve(ctx context.Context) (*Set, error) {
	baseFee := fmt.Sprintf("%d", minBaseFeeDrops)

	raw, err := r.gateway.Request(ctx, "fee", nil)
	if err != nil {
		r.logger.Sugar().Warnw("Fee query failed, using minimum base fee", "error", err)
		return NormalizeFeeDataSet(baseFee)
	}

	var result struct {
		Drops struct {
			BaseFee string `json:"base_fee"`
		} `json:"drops"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		r.logger.Sugar().Warnw("Unparseable fee response, using minimum base fee", "error", err)
		return NormalizeFeeDataSet(baseFee)
	}
	if result.Drops.BaseFee != "" {
		baseFee = result.Drops.BaseFee
	}

	set, err := NormalizeFeeDataSet(baseFee)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize fee data: %w", err)
	}

	r.logger.Sugar().Debugw("Resolved network fees",
		"base_fee", baseFee, "suggested", set.Suggested)

	return set, nil
}
