package submitter

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/socket"
)

// scriptedGateway replays one response per request, in order.
type scriptedGateway struct {
	responses []json.RawMessage
	errs      []error
	calls     int
}

func (g *scriptedGateway) Request(_ context.Context, _ string, _ map[string]interface{}) (json.RawMessage, error) {
	i := g.calls
	g.calls++
	if i < len(g.errs) && g.errs[i] != nil {
		return nil, g.errs[i]
	}
	if i < len(g.responses) {
		return g.responses[i], nil
	}
	return nil, fmt.Errorf("no scripted response for call %d", i)
}

func newTestClient(t *testing.T, gateway Gateway) *Client {
	t.Helper()
	c, err := NewClient(gateway, zap.NewNop())
	require.NoError(t, err)
	c.verifyInterval = time.Millisecond
	return c
}

func Test_Submit(t *testing.T) {
	t.Run("ProvisionalAccept", func(t *testing.T) {
		for _, code := range []string{"tesSUCCESS", "terQUEUED", "telCAN_NOT_QUEUE"} {
			gateway := &scriptedGateway{responses: []json.RawMessage{
				json.RawMessage(fmt.Sprintf(`{"engine_result":"%s","engine_result_message":"ok"}`, code)),
			}}
			result := newTestClient(t, gateway).Submit(context.Background(), "DEADBEEF")

			assert.True(t, result.Success, code)
			assert.Equal(t, code, result.EngineResult)
			assert.False(t, result.NetworkError)
		}
	})

	t.Run("HardRejection", func(t *testing.T) {
		for _, code := range []string{"tecPATH_DRY", "temBAD_FEE", "tefPAST_SEQ"} {
			gateway := &scriptedGateway{responses: []json.RawMessage{
				json.RawMessage(fmt.Sprintf(`{"engine_result":"%s"}`, code)),
			}}
			result := newTestClient(t, gateway).Submit(context.Background(), "DEADBEEF")

			assert.False(t, result.Success, code)
			assert.Equal(t, code, result.EngineResult)
			assert.False(t, result.NetworkError, "ledger rejections are not retriable")
		}
	})

	t.Run("NodeRefusalIsNotNetworkError", func(t *testing.T) {
		gateway := &scriptedGateway{errs: []error{
			&socket.APIError{Code: "invalidTransaction", Message: "fails local checks"},
		}}
		result := newTestClient(t, gateway).Submit(context.Background(), "DEADBEEF")

		assert.False(t, result.Success)
		assert.False(t, result.NetworkError)
		assert.Equal(t, "telFAILED", result.EngineResult)
	})

	t.Run("TransportFailureIsNetworkError", func(t *testing.T) {
		gateway := &scriptedGateway{errs: []error{fmt.Errorf("connection reset")}}
		result := newTestClient(t, gateway).Submit(context.Background(), "DEADBEEF")

		assert.False(t, result.Success)
		assert.True(t, result.NetworkError)
		assert.Equal(t, "telFAILED", result.EngineResult)
	})
}

func Test_Verify(t *testing.T) {
	t.Run("ValidatedSuccess", func(t *testing.T) {
		gateway := &scriptedGateway{responses: []json.RawMessage{
			json.RawMessage(`{"validated":true,"meta":{"TransactionResult":"tesSUCCESS"}}`),
		}}
		result, err := newTestClient(t, gateway).Verify(context.Background(), "TXID")
		require.NoError(t, err)

		assert.True(t, result.Validated)
		assert.True(t, result.Success)
		assert.Equal(t, "tesSUCCESS", result.TransactionResult)
	})

	t.Run("ValidatedFailure", func(t *testing.T) {
		gateway := &scriptedGateway{responses: []json.RawMessage{
			json.RawMessage(`{"validated":true,"meta":{"TransactionResult":"tecUNFUNDED_PAYMENT"}}`),
		}}
		result, err := newTestClient(t, gateway).Verify(context.Background(), "TXID")
		require.NoError(t, err)

		assert.True(t, result.Validated)
		assert.False(t, result.Success)
		assert.Equal(t, "tecUNFUNDED_PAYMENT", result.TransactionResult)
	})

	t.Run("PollsThroughNotFound", func(t *testing.T) {
		gateway := &scriptedGateway{
			errs: []error{
				&socket.APIError{Code: "txnNotFound", Message: "not found"},
				&socket.APIError{Code: "txnNotFound", Message: "not found"},
			},
			responses: []json.RawMessage{
				nil, nil,
				json.RawMessage(`{"validated":true,"meta":{"TransactionResult":"tesSUCCESS"}}`),
			},
		}
		result, err := newTestClient(t, gateway).Verify(context.Background(), "TXID")
		require.NoError(t, err)

		assert.True(t, result.Validated)
		assert.Equal(t, 3, gateway.calls)
	})

	t.Run("PollsThroughUnvalidated", func(t *testing.T) {
		gateway := &scriptedGateway{responses: []json.RawMessage{
			json.RawMessage(`{"validated":false}`),
			json.RawMessage(`{"validated":true,"meta":{"TransactionResult":"tesSUCCESS"}}`),
		}}
		result, err := newTestClient(t, gateway).Verify(context.Background(), "TXID")
		require.NoError(t, err)
		assert.True(t, result.Validated)
	})

	t.Run("ExhaustedBudgetIsInconclusive", func(t *testing.T) {
		gateway := &scriptedGateway{}
		client := newTestClient(t, gateway)
		client.verifyAttempts = 3

		result, err := client.Verify(context.Background(), "TXID")
		require.NoError(t, err)

		assert.False(t, result.Validated)
		assert.False(t, result.Success)
		assert.Equal(t, 3, gateway.calls)
	})

	t.Run("ContextCancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		gateway := &scriptedGateway{errs: []error{
			&socket.APIError{Code: "txnNotFound", Message: "not found"},
		}}
		client := newTestClient(t, gateway)
		client.verifyInterval = time.Minute

		_, err := client.Verify(ctx, "TXID")
		assert.ErrorIs(t, err, context.Canceled)
	})
}
