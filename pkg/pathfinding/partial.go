package pathfinding

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/ledger"
	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/ledger/transactions"
)

// safetyMarginMultiplier pads the order-book rate when funding an issued
// payment with the native asset, absorbing book movement between pricing
// and validation.
var safetyMarginMultiplier = decimal.RequireFromString("1.04")

// sendMaxScale is the rounding scale applied before converting to drops.
const sendMaxScale = 8

// TrustLine is the sender's holding of one issued currency.
type TrustLine struct {
	Currency string
	Issuer   string
	Balance  decimal.Decimal
	Limit    decimal.Decimal
}

// FetchTrustLines loads an account's trust lines from the node.
func FetchTrustLines(ctx context.Context, gateway Requester, account string) ([]TrustLine, error) {
	raw, err := gateway.Request(ctx, "account_lines", map[string]interface{}{
		"account": account,
	})
	if err != nil {
		return nil, fmt.Errorf("account_lines failed: %w", err)
	}

	var result struct {
		Lines []struct {
			Account  string `json:"account"`
			Currency string `json:"currency"`
			Balance  string `json:"balance"`
			Limit    string `json:"limit"`
		} `json:"lines"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("unparseable account_lines response: %w", err)
	}

	lines := make([]TrustLine, 0, len(result.Lines))
	for _, l := range result.Lines {
		balance, err := decimal.NewFromString(l.Balance)
		if err != nil {
			continue
		}
		limit, err := decimal.NewFromString(l.Limit)
		if err != nil {
			continue
		}
		lines = append(lines, TrustLine{
			Currency: l.Currency,
			Issuer:   l.Account,
			Balance:  balance,
			Limit:    limit,
		})
	}
	return lines, nil
}

func findLine(lines []TrustLine, currency, issuer string) *TrustLine {
	for i := range lines {
		if lines[i].Currency == currency && lines[i].Issuer == issuer {
			return &lines[i]
		}
	}
	return nil
}

// PreparePartialPayment decides how an issued-currency payment gets
// funded and mutates the payment accordingly.
//
// If the sender's trust line covers the amount, any stale SendMax is
// dropped; the partial-payment flag is still set when the issuer charges
// a transfer fee and neither side of the payment is the issuer. If the
// line is missing or short, the payment is funded with the native asset
// through the order book: SendMax becomes the rated cost plus the safety
// margin and the partial-payment flag is set. Unsafe books surface
// ErrInsufficientLiquidity and leave the payment untouched.
func PreparePartialPayment(ctx context.Context, checker *LiquidityChecker, p *transactions.Payment, lines []TrustLine) error {
	amount := p.Amount
	if amount.IsNative() {
		return nil
	}

	// The issuer mints its own obligations, nothing to fund
	if p.Account == amount.Issuer {
		return nil
	}

	value, err := decimal.NewFromString(amount.Value)
	if err != nil {
		return fmt.Errorf("invalid payment amount %q: %w", amount.Value, err)
	}

	line := findLine(lines, amount.Currency, amount.Issuer)
	covered := line != nil &&
		(line.Limit.IsPositive() || line.Balance.IsPositive()) &&
		line.Balance.GreaterThanOrEqual(value)

	if covered {
		p.SendMax = nil

		rate, err := checker.IssuerTransferRate(ctx, amount.Issuer)
		if err == nil && rate.GreaterThan(decimal.NewFromInt(1)) && p.Destination != amount.Issuer {
			p.SetFlag(ledger.TfPartialPayment)
		}
		return nil
	}

	fundingRate, err := checker.FundingRate(ctx, amount.Currency, amount.Issuer, value)
	if err != nil {
		return err
	}

	sendMaxNative := value.
		Mul(fundingRate).
		Mul(safetyMarginMultiplier).
		Round(sendMaxScale)
	drops := sendMaxNative.Mul(decimal.NewFromInt(ledger.DropsPerNative)).Ceil()

	p.SendMax = &ledger.Amount{Value: drops.String()}
	p.SetFlag(ledger.TfPartialPayment)
	return nil
}
