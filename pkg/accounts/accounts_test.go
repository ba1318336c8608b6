package accounts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func full(address string) *Account {
	return &Account{
		Address:     address,
		AccessLevel: AccessLevelFull,
		SigningKey:  "ED0000000000000000000000000000000000000000000000000000000000000001",
		Balance:     "100",
	}
}

func Test_CanSign(t *testing.T) {
	assert.True(t, full("rOne").CanSign())

	readonly := full("rTwo")
	readonly.AccessLevel = AccessLevelReadonly
	assert.False(t, readonly.CanSign())

	keyless := full("rThree")
	keyless.SigningKey = ""
	assert.False(t, keyless.CanSign())
}

func Test_HasZeroBalance(t *testing.T) {
	assert.False(t, full("rOne").HasZeroBalance())

	empty := full("rTwo")
	empty.Balance = ""
	assert.True(t, empty.HasZeroBalance())

	zero := full("rThree")
	zero.Balance = "0"
	assert.True(t, zero.HasZeroBalance())

	garbage := full("rFour")
	garbage.Balance = "not-a-number"
	assert.True(t, garbage.HasZeroBalance())
}

func Test_Filters(t *testing.T) {
	readonly := full("rReadonly")
	readonly.AccessLevel = AccessLevelReadonly

	hidden := full("rHidden")
	hidden.Hidden = true

	defaultAccount := full("rDefault")
	defaultAccount.Default = true

	list := []*Account{full("rPlain"), readonly, hidden, defaultAccount}

	t.Run("Signable", func(t *testing.T) {
		signable := Signable(list)
		require.Len(t, signable, 3)
		// Hidden accounts stay eligible for signature collection
		assert.NotNil(t, FindByAddress(signable, "rHidden"))
		assert.Nil(t, FindByAddress(signable, "rReadonly"))
	})

	t.Run("SpendableExcludesHidden", func(t *testing.T) {
		spendable := Spendable(list, false)
		require.Len(t, spendable, 2)
		assert.Nil(t, FindByAddress(spendable, "rHidden"))
	})

	t.Run("SpendableIncludeHidden", func(t *testing.T) {
		spendable := Spendable(list, true)
		assert.Len(t, spendable, 3)
	})

	t.Run("FindDefault", func(t *testing.T) {
		assert.Equal(t, "rDefault", FindDefault(list).Address)
		assert.Nil(t, FindDefault([]*Account{full("rPlain")}))
	})

	t.Run("FindByAddress", func(t *testing.T) {
		assert.Equal(t, "rPlain", FindByAddress(list, "rPlain").Address)
		assert.Nil(t, FindByAddress(list, "rUnknown"))
	})
}

func Test_Serialization(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		account := full("rOne")
		account.Label = "savings"
		account.KeyType = KeyTypeEd25519

		data, err := MarshalAccount(account)
		require.NoError(t, err)

		back, err := UnmarshalAccount(data)
		require.NoError(t, err)
		assert.Equal(t, account, back)
	})

	t.Run("RejectsNilAndAddressless", func(t *testing.T) {
		_, err := MarshalAccount(nil)
		assert.Error(t, err)

		_, err = MarshalAccount(&Account{})
		assert.Error(t, err)

		_, err = UnmarshalAccount([]byte(`{}`))
		assert.Error(t, err)

		_, err = UnmarshalAccount([]byte(`not json`))
		assert.Error(t, err)
	})
}
