package socket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	// ErrClosed is returned for requests made after the client shut down.
	ErrClosed = errors.New("socket client is closed")
)

// APIError is a command-level error returned by the node. It is distinct
// from transport failures: the node was reached, but refused the command.
type APIError struct {
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("node error %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("node error %s", e.Code)
}

// Handler receives asynchronous stream messages.
type Handler func(message json.RawMessage)

// Requests above this rate are queued, keeping one misbehaving component
// from starving the shared connection.
const (
	requestsPerSecond = 10
	requestBurst      = 20
)

// envelope is the common shape of node responses and stream messages.
type envelope struct {
	ID           string          `json:"id,omitempty"`
	Type         string          `json:"type,omitempty"`
	Status       string          `json:"status,omitempty"`
	Result       json.RawMessage `json:"result,omitempty"`
	ErrorCode    string          `json:"error,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
}

type response struct {
	result json.RawMessage
	err    error
}

// Client is a websocket JSON-RPC client for a rippled-protocol node.
// Requests are correlated to responses by id; stream messages ("path",
// "ledgerClosed", ...) are fanned out to registered handlers.
type Client struct {
	url     string
	conn    *websocket.Conn
	logger  *zap.Logger
	limiter *rate.Limiter

	writeMu sync.Mutex

	mu       sync.Mutex
	pending  map[string]chan response
	handlers map[string][]Handler
	closed   bool

	done      chan struct{}
	closeOnce sync.Once
}

// Dial connects to a node and starts the read loop.
func Dial(ctx context.Context, url string, logger *zap.Logger) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to node %s: %w", url, err)
	}

	c := &Client{
		url:      url,
		conn:     conn,
		logger:   logger,
		limiter:  rate.NewLimiter(rate.Limit(requestsPerSecond), requestBurst),
		pending:  make(map[string]chan response),
		handlers: make(map[string][]Handler),
		done:     make(chan struct{}),
	}

	go c.readLoop()

	logger.Sugar().Infow("Connected to node", "url", url)
	return c, nil
}

// URL returns the node endpoint this client is connected to.
func (c *Client) URL() string {
	return c.url
}

// Request sends a command with a generated id and waits for the response.
// A node-level refusal comes back as *APIError; anything else is a
// transport failure.
func (c *Client) Request(ctx context.Context, command string, params map[string]interface{}) (json.RawMessage, error) {
	return c.RequestWithID(ctx, uuid.New().String(), command, params)
}

// RequestWithID sends a command with a caller-chosen id. Used by the path
// finder, which needs the id to match asynchronous path updates.
func (c *Client) RequestWithID(ctx context.Context, id, command string, params map[string]interface{}) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	msg := make(map[string]interface{}, len(params)+2)
	for k, v := range params {
		msg[k] = v
	}
	msg["id"] = id
	msg["command"] = command

	ch := make(chan response, 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	c.pending[id] = ch
	c.mu.Unlock()

	c.writeMu.Lock()
	err := c.conn.WriteJSON(msg)
	c.writeMu.Unlock()
	if err != nil {
		c.unregister(id)
		return nil, fmt.Errorf("failed to send %s command: %w", command, err)
	}

	select {
	case <-ctx.Done():
		c.unregister(id)
		return nil, ctx.Err()
	case <-c.done:
		return nil, ErrClosed
	case resp := <-ch:
		return resp.result, resp.err
	}
}

// OnEvent registers a handler for a stream message type. "path" receives
// asynchronous path_find updates.
func (c *Client) OnEvent(event string, handler Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[event] = append(c.handlers[event], handler)
}

// ClearEvent drops all handlers for a stream message type.
func (c *Client) ClearEvent(event string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.handlers, event)
}

func (c *Client) unregister(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *Client) readLoop() {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				c.logger.Sugar().Warnw("Node connection lost", "url", c.url, "error", err)
			}
			c.Close()
			return
		}

		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.logger.Sugar().Debugw("Dropping unparseable node message", "error", err)
			continue
		}

		switch {
		case env.Type == "response" || env.Status != "":
			c.deliver(env)
		case env.Type != "":
			c.dispatch(streamEventName(env.Type), data)
		}
	}
}

// streamEventName maps wire message types to handler event names.
func streamEventName(wireType string) string {
	switch wireType {
	case "path_find":
		return "path"
	case "ledgerClosed":
		return "ledger"
	default:
		return wireType
	}
}

func (c *Client) deliver(env envelope) {
	c.mu.Lock()
	ch, ok := c.pending[env.ID]
	if ok {
		delete(c.pending, env.ID)
	}
	c.mu.Unlock()

	if !ok {
		// Response for a request that was cancelled or never ours
		return
	}

	if env.Status == "error" {
		ch <- response{err: &APIError{Code: env.ErrorCode, Message: env.ErrorMessage}}
		return
	}
	ch <- response{result: env.Result}
}

func (c *Client) dispatch(event string, data json.RawMessage) {
	c.mu.Lock()
	handlers := append([]Handler(nil), c.handlers[event]...)
	c.mu.Unlock()

	for _, h := range handlers {
		h(data)
	}
}

// Close shuts the connection down and fails all pending requests.
// Idempotent.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()

		close(c.done)
		_ = c.conn.Close()
	})
}
