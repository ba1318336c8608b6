package pathfinding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/ledger"
)

// ErrInsufficientLiquidity means the order book cannot safely fund the
// payment: too shallow, too wide, or moving too much.
var ErrInsufficientLiquidity = errors.New("insufficient liquidity")

const (
	liquidityTimeout   = 10 * time.Second
	maxSpreadPercent   = 4
	maxSlippagePercent = 3
	bookDepthLimit     = 50
)

// noTransferFee is the TransferRate value meaning the issuer charges
// nothing.
const noTransferFee = 1_000_000_000

// LiquidityChecker prices issued-currency purchases against the native
// order book.
type LiquidityChecker struct {
	gateway Requester
	logger  *zap.Logger
}

// NewLiquidityChecker creates a liquidity checker.
func NewLiquidityChecker(gateway Requester, logger *zap.Logger) (*LiquidityChecker, error) {
	if gateway == nil {
		return nil, fmt.Errorf("liquidity checker requires a gateway")
	}
	return &LiquidityChecker{gateway: gateway, logger: logger}, nil
}

type bookOffer struct {
	TakerGets ledger.Amount `json:"TakerGets"`
	TakerPays ledger.Amount `json:"TakerPays"`
}

// FundingRate returns the native cost per unit for buying amount units of
// currency/issuer through the order book. It fails with
// ErrInsufficientLiquidity when the book is missing, too shallow for the
// amount, spread between the two book sides exceeds 4%, or filling the
// amount slips more than 3% off the best offer.
func (l *LiquidityChecker) FundingRate(ctx context.Context, currency, issuer string, amount decimal.Decimal) (decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(ctx, liquidityTimeout)
	defer cancel()

	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("funding amount must be positive")
	}

	// Side where takers buy the issued currency with the native asset
	offers, err := l.bookOffers(ctx, map[string]interface{}{
		"currency": currency,
		"issuer":   issuer,
	}, map[string]interface{}{
		"currency": ledger.NativeAsset,
	})
	if err != nil {
		return decimal.Zero, err
	}
	if len(offers) == 0 {
		return decimal.Zero, fmt.Errorf("%w: no offers for %s.%s", ErrInsufficientLiquidity, currency, issuer)
	}

	bestRate, effectiveRate, filled, err := walkBook(offers, amount)
	if err != nil {
		return decimal.Zero, err
	}
	if filled.LessThan(amount) {
		return decimal.Zero, fmt.Errorf("%w: book depth %s below requested %s",
			ErrInsufficientLiquidity, filled, amount)
	}

	slippage := effectiveRate.Sub(bestRate).Div(bestRate).Mul(decimal.NewFromInt(100))
	if slippage.GreaterThan(decimal.NewFromInt(maxSlippagePercent)) {
		return decimal.Zero, fmt.Errorf("%w: slippage %s%% exceeds %d%%",
			ErrInsufficientLiquidity, slippage.StringFixed(2), maxSlippagePercent)
	}

	// Opposite side, for the spread check
	reverse, err := l.bookOffers(ctx, map[string]interface{}{
		"currency": ledger.NativeAsset,
	}, map[string]interface{}{
		"currency": currency,
		"issuer":   issuer,
	})
	if err == nil && len(reverse) > 0 {
		if bid, rateErr := offerRate(reverse[0], true); rateErr == nil && bid.IsPositive() {
			mid := bestRate.Add(bid).Div(decimal.NewFromInt(2))
			spread := bestRate.Sub(bid).Abs().Div(mid).Mul(decimal.NewFromInt(100))
			if spread.GreaterThan(decimal.NewFromInt(maxSpreadPercent)) {
				return decimal.Zero, fmt.Errorf("%w: spread %s%% exceeds %d%%",
					ErrInsufficientLiquidity, spread.StringFixed(2), maxSpreadPercent)
			}
		}
	}

	l.logger.Sugar().Debugw("Funding rate resolved",
		"currency", currency, "issuer", issuer,
		"rate", effectiveRate.String(), "slippage", slippage.StringFixed(2))

	return effectiveRate, nil
}

func (l *LiquidityChecker) bookOffers(ctx context.Context, takerGets, takerPays map[string]interface{}) ([]bookOffer, error) {
	raw, err := l.gateway.Request(ctx, "book_offers", map[string]interface{}{
		"taker_gets": takerGets,
		"taker_pays": takerPays,
		"limit":      bookDepthLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("book_offers failed: %w", err)
	}

	var result struct {
		Offers []bookOffer `json:"offers"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("unparseable book_offers response: %w", err)
	}
	return result.Offers, nil
}

// walkBook consumes offers until the requested amount is filled, returning
// the best rate, the depth-weighted effective rate, and the filled depth.
// Rates are native units per issued unit.
func walkBook(offers []bookOffer, amount decimal.Decimal) (best, effective, filled decimal.Decimal, err error) {
	remaining := amount
	cost := decimal.Zero

	for _, offer := range offers {
		gets, getsErr := offer.TakerGets.Decimal()
		rate, rateErr := offerRate(offer, false)
		if getsErr != nil || rateErr != nil || !gets.IsPositive() {
			continue
		}

		if best.IsZero() {
			best = rate
		}

		take := decimal.Min(gets, remaining)
		cost = cost.Add(take.Mul(rate))
		filled = filled.Add(take)
		remaining = remaining.Sub(take)

		if !remaining.IsPositive() {
			break
		}
	}

	if filled.IsZero() || best.IsZero() {
		return decimal.Zero, decimal.Zero, decimal.Zero,
			fmt.Errorf("%w: no usable offers", ErrInsufficientLiquidity)
	}
	return best, cost.Div(filled), filled, nil
}

// offerRate returns the native-per-issued price of one offer. With
// reversed=true the offer's sides are swapped (native on the TakerGets
// side).
func offerRate(offer bookOffer, reversed bool) (decimal.Decimal, error) {
	gets, err := offer.TakerGets.Decimal()
	if err != nil {
		return decimal.Zero, err
	}
	pays, err := offer.TakerPays.Decimal()
	if err != nil {
		return decimal.Zero, err
	}
	if reversed {
		if !pays.IsPositive() {
			return decimal.Zero, fmt.Errorf("empty offer")
		}
		return gets.Div(pays), nil
	}
	if !gets.IsPositive() {
		return decimal.Zero, fmt.Errorf("empty offer")
	}
	return pays.Div(gets), nil
}

// IssuerTransferRate returns the issuer's transfer fee multiplier as a
// decimal (1.0 means no fee).
func (l *LiquidityChecker) IssuerTransferRate(ctx context.Context, issuer string) (decimal.Decimal, error) {
	raw, err := l.gateway.Request(ctx, "account_info", map[string]interface{}{
		"account": issuer,
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("account_info for issuer failed: %w", err)
	}

	var result struct {
		AccountData struct {
			TransferRate uint32 `json:"TransferRate"`
		} `json:"account_data"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return decimal.Zero, fmt.Errorf("unparseable account_info response: %w", err)
	}

	rate := result.AccountData.TransferRate
	if rate == 0 {
		rate = noTransferFee
	}
	return decimal.NewFromInt(int64(rate)).Div(decimal.NewFromInt(noTransferFee)), nil
}
