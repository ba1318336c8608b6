package ledger

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_AmountJSON(t *testing.T) {
	t.Run("NativeMarshalsAsDropsString", func(t *testing.T) {
		raw, err := json.Marshal(NewNativeAmount("1000000"))
		require.NoError(t, err)
		assert.Equal(t, `"1000000"`, string(raw))
	})

	t.Run("IssuedMarshalsAsObject", func(t *testing.T) {
		raw, err := json.Marshal(NewIssuedAmount("USD", "rIssuer", "1.5"))
		require.NoError(t, err)
		assert.JSONEq(t, `{"currency":"USD","issuer":"rIssuer","value":"1.5"}`, string(raw))
	})

	t.Run("UnmarshalDropsString", func(t *testing.T) {
		var a Amount
		require.NoError(t, json.Unmarshal([]byte(`"42"`), &a))
		assert.True(t, a.IsNative())
		assert.Equal(t, "42", a.Value)
	})

	t.Run("UnmarshalIssuedObject", func(t *testing.T) {
		var a Amount
		require.NoError(t, json.Unmarshal([]byte(`{"currency":"EUR","issuer":"rIssuer","value":"10"}`), &a))
		assert.False(t, a.IsNative())
		assert.Equal(t, "EUR", a.Currency)
		assert.Equal(t, "rIssuer", a.Issuer)
		assert.Equal(t, "10", a.Value)
	})

	t.Run("UnmarshalObjectWithoutCurrencyFails", func(t *testing.T) {
		var a Amount
		err := json.Unmarshal([]byte(`{"value":"10"}`), &a)
		assert.Error(t, err)
	})

	t.Run("RoundTrip", func(t *testing.T) {
		for _, amount := range []Amount{
			NewNativeAmount("1"),
			NewIssuedAmount("USD", "rIssuer", "0.0001"),
		} {
			raw, err := json.Marshal(amount)
			require.NoError(t, err)
			var back Amount
			require.NoError(t, json.Unmarshal(raw, &back))
			assert.Equal(t, amount, back)
		}
	})
}

func Test_AmountDecimal(t *testing.T) {
	t.Run("NativeConvertsDropsToUnits", func(t *testing.T) {
		d, err := NewNativeAmount("1500000").Decimal()
		require.NoError(t, err)
		assert.Equal(t, "1.5", d.String())
	})

	t.Run("IssuedKeepsValue", func(t *testing.T) {
		d, err := NewIssuedAmount("USD", "rIssuer", "1500000").Decimal()
		require.NoError(t, err)
		assert.Equal(t, "1500000", d.String())
	})

	t.Run("EmptyValueFails", func(t *testing.T) {
		_, err := Amount{}.Decimal()
		assert.Error(t, err)
	})
}

func Test_AmountKey(t *testing.T) {
	assert.Equal(t, "XRP", NewNativeAmount("1").Key())
	assert.Equal(t, "rIssuer:USD", NewIssuedAmount("USD", "rIssuer", "1").Key())
}

func Test_AmountIsZero(t *testing.T) {
	assert.True(t, Amount{}.IsZero())
	assert.True(t, NewNativeAmount("0").IsZero())
	assert.True(t, NewIssuedAmount("USD", "rIssuer", "0.000").IsZero())
	assert.False(t, NewNativeAmount("1").IsZero())
}
