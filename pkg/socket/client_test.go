package socket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// startNode runs an in-process websocket node that feeds every inbound
// message to handle. Whatever handle returns is written back verbatim;
// nil suppresses the reply.
func startNode(t *testing.T, handle func(msg map[string]interface{}) []json.RawMessage) (string, func()) {
	t.Helper()
	upgrader := websocket.Upgrader{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			var msg map[string]interface{}
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			for _, reply := range handle(msg) {
				if err := conn.WriteMessage(websocket.TextMessage, reply); err != nil {
					return
				}
			}
		}
	}))

	return "ws" + strings.TrimPrefix(server.URL, "http"), server.Close
}

func respondSuccess(id interface{}, result string) []json.RawMessage {
	return []json.RawMessage{[]byte(fmt.Sprintf(
		`{"id":%q,"type":"response","status":"success","result":%s}`, id, result))}
}

func Test_Request(t *testing.T) {
	t.Run("CorrelatesById", func(t *testing.T) {
		url, stop := startNode(t, func(msg map[string]interface{}) []json.RawMessage {
			if msg["command"] != "server_info" {
				return respondSuccess(msg["id"], `{"unexpected":true}`)
			}
			return respondSuccess(msg["id"], `{"build_version":"2.0.0"}`)
		})
		defer stop()

		client, err := Dial(context.Background(), url, zap.NewNop())
		require.NoError(t, err)
		defer client.Close()

		result, err := client.Request(context.Background(), "server_info", nil)
		require.NoError(t, err)
		assert.JSONEq(t, `{"build_version":"2.0.0"}`, string(result))
	})

	t.Run("PassesParams", func(t *testing.T) {
		var gotAccount interface{}
		url, stop := startNode(t, func(msg map[string]interface{}) []json.RawMessage {
			gotAccount = msg["account"]
			return respondSuccess(msg["id"], `{}`)
		})
		defer stop()

		client, err := Dial(context.Background(), url, zap.NewNop())
		require.NoError(t, err)
		defer client.Close()

		_, err = client.Request(context.Background(), "account_info", map[string]interface{}{
			"account": "rAccount",
		})
		require.NoError(t, err)
		assert.Equal(t, "rAccount", gotAccount)
	})

	t.Run("NodeRefusalIsAPIError", func(t *testing.T) {
		url, stop := startNode(t, func(msg map[string]interface{}) []json.RawMessage {
			return []json.RawMessage{[]byte(fmt.Sprintf(
				`{"id":%q,"status":"error","error":"actNotFound","error_message":"Account not found."}`,
				msg["id"]))}
		})
		defer stop()

		client, err := Dial(context.Background(), url, zap.NewNop())
		require.NoError(t, err)
		defer client.Close()

		_, err = client.Request(context.Background(), "account_info", nil)
		require.Error(t, err)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "actNotFound", apiErr.Code)
		assert.Contains(t, apiErr.Error(), "actNotFound")
		assert.Contains(t, apiErr.Error(), "Account not found.")
	})

	t.Run("CallerChosenId", func(t *testing.T) {
		url, stop := startNode(t, func(msg map[string]interface{}) []json.RawMessage {
			return respondSuccess(msg["id"], fmt.Sprintf(`{"echo":%q}`, msg["id"]))
		})
		defer stop()

		client, err := Dial(context.Background(), url, zap.NewNop())
		require.NoError(t, err)
		defer client.Close()

		result, err := client.RequestWithID(context.Background(), "my-id", "ping", nil)
		require.NoError(t, err)
		assert.JSONEq(t, `{"echo":"my-id"}`, string(result))
	})

	t.Run("ContextCancellation", func(t *testing.T) {
		url, stop := startNode(t, func(map[string]interface{}) []json.RawMessage {
			return nil // never answer
		})
		defer stop()

		client, err := Dial(context.Background(), url, zap.NewNop())
		require.NoError(t, err)
		defer client.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err = client.Request(ctx, "server_info", nil)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func Test_StreamDispatch(t *testing.T) {
	// A path_find reply is followed by an asynchronous stream push of the
	// same wire type
	url, stop := startNode(t, func(msg map[string]interface{}) []json.RawMessage {
		replies := respondSuccess(msg["id"], `{"alternatives":[]}`)
		return append(replies, json.RawMessage(`{"type":"path_find","full_reply":true}`))
	})
	defer stop()

	client, err := Dial(context.Background(), url, zap.NewNop())
	require.NoError(t, err)
	defer client.Close()

	received := make(chan json.RawMessage, 1)
	client.OnEvent("path", func(message json.RawMessage) {
		received <- message
	})

	_, err = client.Request(context.Background(), "path_find", nil)
	require.NoError(t, err)

	select {
	case msg := <-received:
		assert.Contains(t, string(msg), "full_reply")
	case <-time.After(time.Second):
		t.Fatal("stream message was not dispatched")
	}

	// Cleared handlers stay silent
	client.ClearEvent("path")
	_, err = client.Request(context.Background(), "path_find", nil)
	require.NoError(t, err)

	select {
	case <-received:
		t.Fatal("handler fired after ClearEvent")
	case <-time.After(50 * time.Millisecond):
	}
}

func Test_Close(t *testing.T) {
	url, stop := startNode(t, func(map[string]interface{}) []json.RawMessage {
		return nil // never answer
	})
	defer stop()

	client, err := Dial(context.Background(), url, zap.NewNop())
	require.NoError(t, err)

	// A pending request fails when the client shuts down underneath it
	pending := make(chan error, 1)
	go func() {
		_, reqErr := client.Request(context.Background(), "server_info", nil)
		pending <- reqErr
	}()
	time.Sleep(20 * time.Millisecond)

	client.Close()
	client.Close() // idempotent

	assert.ErrorIs(t, <-pending, ErrClosed)

	_, err = client.Request(context.Background(), "server_info", nil)
	assert.ErrorIs(t, err, ErrClosed)
}

func Test_StreamEventName(t *testing.T) {
	assert.Equal(t, "path", streamEventName("path_find"))
	assert.Equal(t, "ledger", streamEventName("ledgerClosed"))
	assert.Equal(t, "transaction", streamEventName("transaction"))
}
