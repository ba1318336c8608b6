package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fastClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := NewClient(url, "shared-secret", zap.NewNop())
	require.NoError(t, err)
	c.retryConfig = RetryConfig{
		MaxAttempts:     3,
		InitialBackoff:  time.Millisecond,
		MaxBackoff:      5 * time.Millisecond,
		BackoffMultiple: 2.0,
	}
	return c
}

func Test_PatchPayload(t *testing.T) {
	t.Run("SendsBodyAndBearerToken", func(t *testing.T) {
		var method, path, authorization string
		var body []byte

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			method = r.Method
			path = r.URL.Path
			authorization = r.Header.Get("Authorization")
			body, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := fastClient(t, server.URL)
		err := client.PatchPayload(context.Background(), "some-uuid", &PatchRequest{
			SignedBlob:  "DEADBEEF",
			TxID:        "ABCD",
			SignMethod:  "OTHER",
			MultiSigned: false,
			Environment: &Environment{NodeURI: "wss://node", NodeType: "Mainnet"},
		})
		require.NoError(t, err)

		assert.Equal(t, http.MethodPatch, method)
		assert.Equal(t, "/payload/some-uuid", path)
		require.True(t, strings.HasPrefix(authorization, "Bearer "))

		// The bearer token verifies against the shared secret and is scoped
		// to the payload
		token, err := jwt.Parse([]byte(strings.TrimPrefix(authorization, "Bearer ")),
			jwt.WithKey(jwa.HS256(), []byte("shared-secret")))
		require.NoError(t, err)
		subject, ok := token.Subject()
		require.True(t, ok)
		assert.Equal(t, "some-uuid", subject)

		var request PatchRequest
		require.NoError(t, json.Unmarshal(body, &request))
		assert.Equal(t, "DEADBEEF", request.SignedBlob)
		require.NotNil(t, request.Environment)
		assert.Equal(t, "wss://node", request.Environment.NodeURI)
	})

	t.Run("RetriesServerErrors", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		err := fastClient(t, server.URL).PatchPayload(context.Background(), "u", &PatchRequest{})
		require.NoError(t, err)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("DoesNotRetryClientErrors", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		err := fastClient(t, server.URL).PatchPayload(context.Background(), "u", &PatchRequest{})
		assert.Error(t, err)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("GivesUpAfterBudget", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		err := fastClient(t, server.URL).PatchPayload(context.Background(), "u", &PatchRequest{})
		assert.Error(t, err)
		assert.Equal(t, int32(3), calls.Load())
	})
}

func Test_RejectPayload(t *testing.T) {
	var method, path string
	var body []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	err := fastClient(t, server.URL).RejectPayload(context.Background(), "some-uuid", &RejectRequest{
		Initiator: "USER",
		Reason:    "declined on review",
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "/payload/some-uuid/reject", path)

	var request RejectRequest
	require.NoError(t, json.Unmarshal(body, &request))
	assert.Equal(t, "USER", request.Initiator)
}

func Test_NewClient(t *testing.T) {
	_, err := NewClient("", "token", zap.NewNop())
	assert.Error(t, err)
	_, err = NewClient("https://origin", "", zap.NewNop())
	assert.Error(t, err)
}
