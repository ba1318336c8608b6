package badger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/accounts"
)

func openRepository(t *testing.T, path string) *BadgerRepository {
	t.Helper()
	repo, err := NewBadgerRepository(path, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func testAccount(address string) *accounts.Account {
	return &accounts.Account{
		Address:     address,
		AccessLevel: accounts.AccessLevelFull,
		SigningKey:  "ED0000000000000000000000000000000000000000000000000000000000000001",
	}
}

func Test_BadgerRepository(t *testing.T) {
	t.Run("SaveGetDelete", func(t *testing.T) {
		repo := openRepository(t, t.TempDir())
		require.NoError(t, repo.SaveAccount(testAccount("rOne")))

		account, err := repo.GetAccount("rOne")
		require.NoError(t, err)
		require.NotNil(t, account)
		assert.Equal(t, "rOne", account.Address)

		require.NoError(t, repo.DeleteAccount("rOne"))
		account, err = repo.GetAccount("rOne")
		require.NoError(t, err)
		assert.Nil(t, account)
	})

	t.Run("GetMissingIsNotAnError", func(t *testing.T) {
		repo := openRepository(t, t.TempDir())
		account, err := repo.GetAccount("rMissing")
		require.NoError(t, err)
		assert.Nil(t, account)
	})

	t.Run("ListSortedByAddress", func(t *testing.T) {
		repo := openRepository(t, t.TempDir())
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

	t.Run("PersistsAcrossReopen", func(t *testing.T) {
		path := t.TempDir()

		repo, err := NewBadgerRepository(path, zap.NewNop())
		require.NoError(t, err)
		require.NoError(t, repo.SaveAccount(testAccount("rOne")))
		require.NoError(t, repo.Close())

		reopened := openRepository(t, path)
		require.NoError(t, reopened.HealthCheck())

		account, err := reopened.GetAccount("rOne")
		require.NoError(t, err)
		require.NotNil(t, account)
		assert.Equal(t, "rOne", account.Address)
	})

	t.Run("RejectsInvalidSave", func(t *testing.T) {
		repo := openRepository(t, t.TempDir())
		assert.Error(t, repo.SaveAccount(nil))
		assert.Error(t, repo.SaveAccount(&accounts.Account{}))
	})

	t.Run("ClosedRepositoryRefusesEverything", func(t *testing.T) {
		repo := openRepository(t, t.TempDir())
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
