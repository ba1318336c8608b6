package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// NativeAsset is the currency code used for drops-denominated amounts on
// XRPL-protocol networks.
const NativeAsset = "XRP"

// DropsPerNative is the number of drops in one unit of the native asset.
const DropsPerNative = 1_000_000

// Amount is a ledger amount. Native amounts carry only a drops value and
// serialize as a plain string; issued-currency amounts serialize as a
// {currency, issuer, value} object.
type Amount struct {
	Currency string `json:"currency,omitempty"`
	Issuer   string `json:"issuer,omitempty"`
	Value    string `json:"value,omitempty"`
}

// NewNativeAmount creates a native amount from a drops value.
func NewNativeAmount(drops string) Amount {
	return Amount{Value: drops}
}

// NewIssuedAmount creates an issued-currency amount.
func NewIssuedAmount(currency, issuer, value string) Amount {
	return Amount{Currency: currency, Issuer: issuer, Value: value}
}

// IsNative reports whether the amount is denominated in the native asset.
func (a Amount) IsNative() bool {
	return a.Currency == "" || a.Currency == NativeAsset
}

// IsZero reports whether the amount has no value set or a zero value.
func (a Amount) IsZero() bool {
	if a.Value == "" {
		return true
	}
	d, err := decimal.NewFromString(a.Value)
	if err != nil {
		return false
	}
	return d.IsZero()
}

// Decimal returns the amount value as a decimal. Native amounts are
// converted from drops to whole native units.
func (a Amount) Decimal() (decimal.Decimal, error) {
	if a.Value == "" {
		return decimal.Zero, fmt.Errorf("amount has no value")
	}
	d, err := decimal.NewFromString(a.Value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount value %q: %w", a.Value, err)
	}
	if a.IsNative() {
		return d.Div(decimal.NewFromInt(DropsPerNative)), nil
	}
	return d, nil
}

// issuedAmount is the wire object form, kept separate so Amount can
// round-trip both representations.
type issuedAmount struct {
	Currency string `json:"currency"`
	Issuer   string `json:"issuer,omitempty"`
	Value    string `json:"value"`
}

// MarshalJSON writes native amounts as drops strings and issued amounts as
// currency objects.
func (a Amount) MarshalJSON() ([]byte, error) {
	if a.IsNative() {
		return json.Marshal(a.Value)
	}
	return json.Marshal(issuedAmount{
		Currency: a.Currency,
		Issuer:   a.Issuer,
		Value:    a.Value,
	})
}

// UnmarshalJSON accepts either a drops string or a currency object.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var drops string
	if err := json.Unmarshal(data, &drops); err == nil {
		*a = Amount{Value: drops}
		return nil
	}

	var issued issuedAmount
	if err := json.Unmarshal(data, &issued); err != nil {
		return fmt.Errorf("amount is neither a drops string nor a currency object: %w", err)
	}
	if issued.Currency == "" {
		return fmt.Errorf("issued amount is missing currency")
	}
	*a = Amount{Currency: issued.Currency, Issuer: issued.Issuer, Value: issued.Value}
	return nil
}

// Key returns the map key used to group amounts by asset, matching the
// issuer:currency notation used for path options.
func (a Amount) Key() string {
	if a.IsNative() {
		return NativeAsset
	}
	return fmt.Sprintf("%s:%s", a.Issuer, a.Currency)
}
