package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// Round-trip behavior is covered by the shared repository contract in the
// memory and badger tests; connecting needs a live server, so only the
// construction rules are checked here.
func Test_NewRedisRepository(t *testing.T) {
	t.Run("RequiresConfig", func(t *testing.T) {
		_, err := NewRedisRepository(nil, zap.NewNop())
		assert.Error(t, err)
	})

	t.Run("RequiresAddress", func(t *testing.T) {
		_, err := NewRedisRepository(&RedisConfig{}, zap.NewNop())
		assert.Error(t, err)
	})
}
