package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Validate(t *testing.T) {
	t.Run("DefaultsToMainnet", func(t *testing.T) {
		cfg := &ReviewConfig{}
		require.NoError(t, cfg.Validate())

		assert.Equal(t, NetworkName_Mainnet, cfg.Network)
		assert.Equal(t, "wss://xrplcluster.com", cfg.NodeURL)
		assert.Equal(t, StoreTypeMemory, cfg.StoreType)
		require.NotNil(t, cfg.Preset)
		assert.Equal(t, NetworkID_Mainnet, cfg.Preset.ID)
	})

	t.Run("ExplicitNodeURLWins", func(t *testing.T) {
		cfg := &ReviewConfig{NodeURL: "wss://my-node.example.com"}
		require.NoError(t, cfg.Validate())
		assert.Equal(t, "wss://my-node.example.com", cfg.NodeURL)
	})

	t.Run("RejectsNonWebsocketURL", func(t *testing.T) {
		cfg := &ReviewConfig{NodeURL: "https://my-node.example.com"}
		assert.Error(t, cfg.Validate())
	})

	t.Run("RejectsUnknownNetwork", func(t *testing.T) {
		cfg := &ReviewConfig{Network: "moonnet"}
		assert.Error(t, cfg.Validate())
	})

	t.Run("BadgerRequiresPath", func(t *testing.T) {
		cfg := &ReviewConfig{StoreType: StoreTypeBadger}
		assert.Error(t, cfg.Validate())

		cfg = &ReviewConfig{StoreType: StoreTypeBadger, StorePath: "/tmp/accounts"}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("RedisRequiresAddress", func(t *testing.T) {
		cfg := &ReviewConfig{StoreType: StoreTypeRedis}
		assert.Error(t, cfg.Validate())

		cfg = &ReviewConfig{StoreType: StoreTypeRedis, RedisAddress: "localhost:6379"}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("BackendRequiresAccessToken", func(t *testing.T) {
		cfg := &ReviewConfig{BackendURL: "https://origin.example.com"}
		assert.Error(t, cfg.Validate())

		cfg = &ReviewConfig{BackendURL: "https://origin.example.com", AccessToken: "secret"}
		assert.NoError(t, cfg.Validate())
	})
}

func Test_RequiresNetworkID(t *testing.T) {
	assert.False(t, NetworkID_Mainnet.RequiresNetworkID())
	assert.False(t, NetworkID_Testnet.RequiresNetworkID())
	assert.False(t, NetworkID(1024).RequiresNetworkID())
	assert.True(t, NetworkID(1025).RequiresNetworkID())
	assert.True(t, NetworkID_Xahau.RequiresNetworkID())
}

func Test_GetNetworkPreset(t *testing.T) {
	xahau, err := GetNetworkPreset(NetworkName_Xahau)
	require.NoError(t, err)
	assert.Equal(t, "XAH", xahau.NativeAsset)
	assert.Equal(t, NetworkID(21337), xahau.ID)

	_, err = GetNetworkPreset("moonnet")
	assert.Error(t, err)
}
