package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/accounts"
)

func testAccount(address string) *accounts.Account {
	return &accounts.Account{
		Address:     address,
		AccessLevel: accounts.AccessLevelFull,
		SigningKey:  "ED0000000000000000000000000000000000000000000000000000000000000001",
	}
}

func Test_MemoryRepository(t *testing.T) {
	t.Run("SaveAndGet", func(t *testing.T) {
		repo := NewMemoryRepository()
		require.NoError(t, repo.SaveAccount(testAccount("rOne")))

		account, err := repo.GetAccount("rOne")
		require.NoError(t, err)
		require.NotNil(t, account)
		assert.Equal(t, "rOne", account.Address)
	})

	t.Run("GetMissingIsNotAnError", func(t *testing.T) {
		repo := NewMemoryRepository()
		account, err := repo.GetAccount("rMissing")
		require.NoError(t, err)
		assert.Nil(t, account)
	})

	t.Run("SaveOverwrites", func(t *testing.T) {
		repo := NewMemoryRepository()
		require.NoError(t, repo.SaveAccount(testAccount("rOne")))

		updated := testAccount("rOne")
		updated.Label = "updated"
		require.NoError(t, repo.SaveAccount(updated))

		account, err := repo.GetAccount("rOne")
		require.NoError(t, err)
		assert.Equal(t, "updated", account.Label)
	})

	t.Run("ListSortedByAddress", func(t *testing.T) {
		repo := NewMemoryRepository()
		for _, address := range []string{"rCharlie", "rAlice", "rBob"} {
			require.NoError(t, repo.SaveAccount(testAccount(address)))
		}

		list, err := repo.ListAccounts()
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, "rAlice", list[0].Address)
		assert.Equal(t, "rBob", list[1].Address)
		assert.Equal(t, "rCharlie", list[2].Address)
	})

	t.Run("ReturnsCopies", func(t *testing.T) {
		repo := NewMemoryRepository()
		require.NoError(t, repo.SaveAccount(testAccount("rOne")))

		account, err := repo.GetAccount("rOne")
		require.NoError(t, err)
		account.Label = "mutated"

		again, err := repo.GetAccount("rOne")
		require.NoError(t, err)
		assert.Empty(t, again.Label)
	})

	t.Run("DeleteIsIdempotent", func(t *testing.T) {
		repo := NewMemoryRepository()
		require.NoError(t, repo.SaveAccount(testAccount("rOne")))
		require.NoError(t, repo.DeleteAccount("rOne"))
		require.NoError(t, repo.DeleteAccount("rOne"))

		account, err := repo.GetAccount("rOne")
		require.NoError(t, err)
		assert.Nil(t, account)
	})

	t.Run("RejectsInvalidSave", func(t *testing.T) {
		repo := NewMemoryRepository()
		assert.Error(t, repo.SaveAccount(nil))
		assert.Error(t, repo.SaveAccount(&accounts.Account{}))
	})

	t.Run("ClosedRepositoryRefusesEverything", func(t *testing.T) {
		repo := NewMemoryRepository()
		require.NoError(t, repo.HealthCheck())
		require.NoError(t, repo.Close())
		require.NoError(t, repo.Close())

		assert.Error(t, repo.HealthCheck())
		assert.Error(t, repo.SaveAccount(testAccount("rOne")))
		_, err := repo.GetAccount("rOne")
		assert.Error(t, err)
		_, err = repo.ListAccounts()
		assert.Error(t, err)
		assert.Error(t, repo.DeleteAccount("rOne"))
	})
}
