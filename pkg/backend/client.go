package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// RetryConfig configures retry behavior
type RetryConfig struct {
	MaxAttempts     int
	InitialBackoff  time.Duration
	MaxBackoff      time.Duration
	BackoffMultiple float64
}

// DefaultRetryConfig provides default retry settings
var DefaultRetryConfig = RetryConfig{
	MaxAttempts:     5,
	InitialBackoff:  100 * time.Millisecond,
	MaxBackoff:      5 * time.Second,
	BackoffMultiple: 2.0,
}

// tokenIssuer identifies this client in the bearer tokens it mints.
const tokenIssuer = "payload-review"

// tokenTTL bounds how long a minted bearer token stays valid.
const tokenTTL = 2 * time.Minute

// Environment reports which node the payload was handled against.
type Environment struct {
	NodeURI  string `json:"nodeuri"`
	NodeType string `json:"nodetype"`
}

// DispatchedResult reports where and how the signed transaction was
// dispatched.
type DispatchedResult struct {
	To       string `json:"to"`
	NodeType string `json:"nodetype"`
	Result   string `json:"result"`
}

// PatchRequest carries the signing outcome back to the origin. The first
// patch has the signed blob; a follow-up patch adds the dispatched block
// once submission settles.
type PatchRequest struct {
	SignedBlob  string            `json:"signed_blob,omitempty"`
	TxID        string            `json:"tx_id,omitempty"`
	SignMethod  string            `json:"signmethod,omitempty"`
	MultiSigned bool              `json:"multisigned,omitempty"`
	Environment *Environment      `json:"environment,omitempty"`
	Dispatched  *DispatchedResult `json:"dispatched,omitempty"`
}

// RejectRequest tells the origin the payload was aborted and by whom.
type RejectRequest struct {
	Initiator string `json:"initiator"`
	Reason    string `json:"reason,omitempty"`
}

// Client talks to the payload origin API. Requests are authenticated with
// a short-lived JWT bound to the payload uuid and retried with exponential
// backoff.
type Client struct {
	baseURL     string
	accessToken []byte
	httpClient  *http.Client
	retryConfig RetryConfig
	logger      *zap.Logger
}

// NewClient creates an origin API client.
func NewClient(baseURL, accessToken string, logger *zap.Logger) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("backend client requires a base URL")
	}
	if accessToken == "" {
		return nil, fmt.Errorf("backend client requires an access token")
	}
	return &Client{
		baseURL:     baseURL,
		accessToken: []byte(accessToken),
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		retryConfig: DefaultRetryConfig,
		logger:      logger,
	}, nil
}

// PatchPayload reports the signing (and later dispatch) outcome for a
// payload.
func (c *Client) PatchPayload(ctx context.Context, payloadUUID string, req *PatchRequest) error {
	path := fmt.Sprintf("/payload/%s", payloadUUID)
	if err := c.send(ctx, http.MethodPatch, path, payloadUUID, req); err != nil {
		return errors.Wrapf(err, "failed to patch payload %s", payloadUUID)
	}
	c.logger.Sugar().Debugw("Payload patched", "uuid", payloadUUID, "dispatched", req.Dispatched != nil)
	return nil
}

// RejectPayload reports that the payload was aborted.
func (c *Client) RejectPayload(ctx context.Context, payloadUUID string, req *RejectRequest) error {
	path := fmt.Sprintf("/payload/%s/reject", payloadUUID)
	if err := c.send(ctx, http.MethodPost, path, payloadUUID, req); err != nil {
		return errors.Wrapf(err, "failed to reject payload %s", payloadUUID)
	}
	c.logger.Sugar().Debugw("Payload rejected", "uuid", payloadUUID)
	return nil
}

// bearerToken mints a JWT scoped to one payload.
func (c *Client) bearerToken(payloadUUID string) (string, error) {
	now := time.Now()
	token, err := jwt.NewBuilder().
		Issuer(tokenIssuer).
		Subject(payloadUUID).
		IssuedAt(now).
		Expiration(now.Add(tokenTTL)).
		Build()
	if err != nil {
		return "", fmt.Errorf("failed to build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), c.accessToken))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return string(signed), nil
}

func (c *Client) send(ctx context.Context, method, path, payloadUUID string, body interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	bearer, err := c.bearerToken(payloadUUID)
	if err != nil {
		return err
	}

	url := c.baseURL + path
	backoff := c.retryConfig.InitialBackoff

	var lastErr error
	for attempt := 0; attempt < c.retryConfig.MaxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+bearer)

		resp, err := c.httpClient.Do(req)
		if err == nil {
			status := resp.StatusCode
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()

			if status < 400 {
				return nil
			}
			if status < 500 {
				// The origin rejected the request, retrying won't help
				return fmt.Errorf("origin returned status %d", status)
			}
			lastErr = fmt.Errorf("origin returned status %d", status)
		} else {
			lastErr = err
		}

		if attempt < c.retryConfig.MaxAttempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff = time.Duration(float64(backoff) * c.retryConfig.BackoffMultiple)
			if backoff > c.retryConfig.MaxBackoff {
				backoff = c.retryConfig.MaxBackoff
			}
		}
	}

	return fmt.Errorf("request failed after %d attempts: %w", c.retryConfig.MaxAttempts, lastErr)
}
