package submitter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/ledger"
	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/socket"
)

// Verification polls roughly every ledger close until the budget runs out,
// about thirty seconds in total.
const (
	defaultVerifyAttempts = 10
	defaultVerifyInterval = 3 * time.Second
)

// Gateway is the node surface the client needs.
type Gateway interface {
	Request(ctx context.Context, command string, params map[string]interface{}) (json.RawMessage, error)
}

// SubmitResult is the normalized outcome of a submit attempt. Success
// means provisional acceptance only; verification settles the final
// result.
type SubmitResult struct {
	Success      bool   `json:"success"`
	EngineResult string `json:"engine_result"`
	Message      string `json:"message"`

	// NetworkError marks transport failures, where the transaction never
	// reached a node. These are retriable with the same signed blob; a
	// ledger rejection is not.
	NetworkError bool `json:"network_error,omitempty"`
}

// VerifyResult is the outcome of verification polling.
type VerifyResult struct {
	Success           bool   `json:"success"`
	Validated         bool   `json:"validated"`
	TransactionResult string `json:"transaction_result,omitempty"`
}

// Client submits signed blobs and verifies their inclusion in a validated
// ledger.
type Client struct {
	gateway        Gateway
	logger         *zap.Logger
	verifyAttempts int
	verifyInterval time.Duration
}

// NewClient creates a submission client.
func NewClient(gateway Gateway, logger *zap.Logger) (*Client, error) {
	if gateway == nil {
		return nil, fmt.Errorf("submitter requires a gateway")
	}
	return &Client{
		gateway:        gateway,
		logger:         logger,
		verifyAttempts: defaultVerifyAttempts,
		verifyInterval: defaultVerifyInterval,
	}, nil
}

// Submit dispatches a signed blob. Failures are folded into the result:
// node-level refusals and hard engine rejections come back with
// Success=false, transport failures additionally carry NetworkError so the
// caller can re-queue the same blob.
func (c *Client) Submit(ctx context.Context, txBlob string) *SubmitResult {
	raw, err := c.gateway.Request(ctx, "submit", map[string]interface{}{
		"tx_blob": txBlob,
	})
	if err != nil {
		var apiErr *socket.APIError
		if errors.As(err, &apiErr) {
			c.logger.Sugar().Warnw("Node refused submission", "error", apiErr)
			return &SubmitResult{
				Success:      false,
				EngineResult: ledger.EngineResultLocalFail,
				Message:      apiErr.Error(),
			}
		}

		c.logger.Sugar().Warnw("Submission failed to reach the node", "error", err)
		return &SubmitResult{
			Success:      false,
			EngineResult: ledger.EngineResultLocalFail,
			Message:      err.Error(),
			NetworkError: true,
		}
	}

	var result struct {
		EngineResult        string `json:"engine_result"`
		EngineResultMessage string `json:"engine_result_message"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return &SubmitResult{
			Success:      false,
			EngineResult: ledger.EngineResultLocalFail,
			Message:      fmt.Sprintf("unparseable submit response: %v", err),
			NetworkError: true,
		}
	}

	success := ledger.IsProvisionalAccept(result.EngineResult)

	c.logger.Sugar().Infow("Transaction submitted",
		"engine_result", result.EngineResult, "accepted", success)

	return &SubmitResult{
		Success:      success,
		EngineResult: result.EngineResult,
		Message:      result.EngineResultMessage,
	}
}

// Verify polls for the transaction until it appears in a validated ledger
// or the attempt budget runs out. An exhausted budget is inconclusive, not
// a failure: the submit-time engine result stands.
func (c *Client) Verify(ctx context.Context, txID string) (*VerifyResult, error) {
	for attempt := 0; attempt < c.verifyAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.verifyInterval):
			}
		}

		raw, err := c.gateway.Request(ctx, "tx", map[string]interface{}{
			"transaction": txID,
			"binary":      false,
		})
		if err != nil {
			var apiErr *socket.APIError
			if errors.As(err, &apiErr) && apiErr.Code == "txnNotFound" {
				// Not in a ledger yet, keep polling
				continue
			}
			c.logger.Sugar().Debugw("Verify attempt failed", "tx_id", txID, "error", err)
			continue
		}

		var result struct {
			Validated bool `json:"validated"`
			Meta      struct {
				TransactionResult string `json:"TransactionResult"`
			} `json:"meta"`
		}
		if err := json.Unmarshal(raw, &result); err != nil {
			c.logger.Sugar().Debugw("Unparseable tx response", "tx_id", txID, "error", err)
			continue
		}

		if !result.Validated {
			continue
		}

		verified := &VerifyResult{
			Success:           result.Meta.TransactionResult == ledger.EngineResultSuccess,
			Validated:         true,
			TransactionResult: result.Meta.TransactionResult,
		}
		c.logger.Sugar().Infow("Transaction verified",
			"tx_id", txID, "result", verified.TransactionResult)
		return verified, nil
	}

	c.logger.Sugar().Warnw("Verification inconclusive", "tx_id", txID, "attempts", c.verifyAttempts)
	return &VerifyResult{Success: false, Validated: false}, nil
}
