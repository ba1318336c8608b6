package pathfinding

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/ledger"
	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/socket"
)

// The node streams path updates after the initial reply, so the finder
// collects for a window before resolving. Resolved options go stale after
// a minute and must not be signed.
const (
	resolveAfter = 7 * time.Second
	expireAfter  = 60 * time.Second
)

// Option is one funding alternative for a cross-currency payment.
type Option struct {
	SourceAmount  ledger.Amount  `json:"source_amount"`
	PathsComputed ledger.PathSet `json:"paths_computed,omitempty"`
}

// Gateway is the node surface the finder needs.
type Gateway interface {
	Requester
	RequestWithID(ctx context.Context, id, command string, params map[string]interface{}) (json.RawMessage, error)
	OnEvent(event string, handler socket.Handler)
	ClearEvent(event string)
}

// Requester is the one-shot query surface of the node connection. Book
// and account queries need nothing more.
type Requester interface {
	Request(ctx context.Context, command string, params map[string]interface{}) (json.RawMessage, error)
}

// Finder runs synchronous path_find requests against a node. One request
// is active at a time; a new request supersedes the previous one.
type Finder struct {
	gateway      Gateway
	logger       *zap.Logger
	resolveAfter time.Duration
	expireAfter  time.Duration

	mu          sync.Mutex
	requestID   string
	options     map[string]Option
	expireTimer *time.Timer
	onExpire    func()
}

// NewFinder creates a path finder.
func NewFinder(gateway Gateway, logger *zap.Logger) (*Finder, error) {
	if gateway == nil {
		return nil, fmt.Errorf("path finder requires a gateway")
	}
	return &Finder{
		gateway:      gateway,
		logger:       logger,
		resolveAfter: resolveAfter,
		expireAfter:  expireAfter,
		options:      make(map[string]Option),
	}, nil
}

// OnExpire registers the callback fired when resolved options go stale.
// The controller uses it to clear the active selection and close the
// accept gate until a fresh resolve.
func (f *Finder) OnExpire(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onExpire = fn
}

// Request resolves funding options for delivering amount from source to
// destination. It blocks for the collection window, then closes the
// ledger-side request and starts the expiry clock.
func (f *Finder) Request(ctx context.Context, amount ledger.Amount, source, destination string) ([]Option, error) {
	id := uuid.New().String()

	f.mu.Lock()
	f.requestID = id
	f.options = make(map[string]Option)
	if f.expireTimer != nil {
		f.expireTimer.Stop()
		f.expireTimer = nil
	}
	f.mu.Unlock()

	f.gateway.OnEvent("path", f.handlePathEvent)
	defer f.gateway.ClearEvent("path")

	raw, err := f.gateway.RequestWithID(ctx, id, "path_find", map[string]interface{}{
		"subcommand":          "create",
		"source_account":      source,
		"destination_account": destination,
		"destination_amount":  amount,
	})
	if err != nil {
		return nil, fmt.Errorf("path_find create failed: %w", err)
	}

	var result struct {
		Alternatives []Option `json:"alternatives"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("unparseable path_find response: %w", err)
	}
	f.mergeOptions(id, result.Alternatives)

	// Let streamed updates accumulate before resolving
	select {
	case <-ctx.Done():
		f.closeRequest(id)
		return nil, ctx.Err()
	case <-time.After(f.resolveAfter):
	}

	f.closeRequest(id)

	f.mu.Lock()
	keys := make([]string, 0, len(f.options))
	for k := range f.options {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	resolved := make([]Option, 0, len(keys))
	for _, k := range keys {
		resolved = append(resolved, f.options[k])
	}

	f.expireTimer = time.AfterFunc(f.expireAfter, f.expire)
	f.mu.Unlock()

	f.logger.Sugar().Debugw("Path options resolved",
		"destination", destination, "options", len(resolved))

	return resolved, nil
}

func (f *Finder) handlePathEvent(message json.RawMessage) {
	var update struct {
		ID           string   `json:"id"`
		Alternatives []Option `json:"alternatives"`
	}
	if err := json.Unmarshal(message, &update); err != nil {
		return
	}
	if update.Alternatives == nil {
		return
	}
	f.mergeOptions(update.ID, update.Alternatives)
}

func (f *Finder) mergeOptions(id string, options []Option) {
	f.mu.Lock()
	defer f.mu.Unlock()

	// Ignore updates for a superseded request
	if id != f.requestID {
		return
	}
	for _, opt := range options {
		f.options[opt.SourceAmount.Key()] = opt
	}
}

func (f *Finder) closeRequest(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := f.gateway.RequestWithID(ctx, id, "path_find", map[string]interface{}{
		"subcommand": "close",
	})
	if err != nil {
		f.logger.Sugar().Debugw("path_find close failed", "error", err)
	}
}

func (f *Finder) expire() {
	f.mu.Lock()
	f.options = make(map[string]Option)
	fn := f.onExpire
	f.mu.Unlock()

	f.logger.Sugar().Debugw("Path options expired")

	if fn != nil {
		fn()
	}
}

// Close cancels any in-flight request state.
func (f *Finder) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.expireTimer != nil {
		f.expireTimer.Stop()
		f.expireTimer = nil
	}
	f.requestID = ""
	f.options = make(map[string]Option)
	f.gateway.ClearEvent("path")
}
