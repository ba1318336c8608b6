package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/accounts"
	badgerstore "github.com/XRPL-Labs/Xaman-App-sub000/pkg/accounts/badger"
	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/accounts/memory"
	redisstore "github.com/XRPL-Labs/Xaman-App-sub000/pkg/accounts/redis"
	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/backend"
	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/config"
	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/fees"
	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/logger"
	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/pathfinding"
	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/payload"
	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/review"
	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/signing"
	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/socket"
	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/submitter"
)

func main() {
	app := &cli.App{
		Name:  "payload-review",
		Usage: "Review, sign and submit ledger transaction payloads",
		Description: `Drives a payload through the full review pipeline:

- Resolves the eligible signing accounts from the local store
- Resolves fee tiers and payment paths from the connected node
- Signs the transaction and reports the blob to the payload origin
- Submits, verifies finality and reports the dispatched result`,
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "payload",
				Aliases: []string{"f"},
				Usage:   "Path to the payload JSON file, - for stdin",
				Value:   "-",
			},
			&cli.StringFlag{
				Name:    "node-url",
				Aliases: []string{"n"},
				Usage:   "WebSocket endpoint of the node, defaults to the network preset",
				EnvVars: []string{config.EnvReviewNodeURL},
			},
			&cli.StringFlag{
				Name:    "network",
				Usage:   fmt.Sprintf("Network to operate on: %s", config.GetSupportedNetworksString()),
				Value:   string(config.NetworkName_Mainnet),
				EnvVars: []string{config.EnvReviewNetwork},
			},
			&cli.StringFlag{
				Name:    "store",
				Usage:   "Account store backend: memory, badger or redis",
				Value:   string(config.StoreTypeMemory),
				EnvVars: []string{config.EnvReviewStoreType},
			},
			&cli.StringFlag{
				Name:    "store-path",
				Usage:   "Data directory for the badger store",
				EnvVars: []string{config.EnvReviewStorePath},
			},
			&cli.StringFlag{
				Name:    "redis-address",
				Usage:   "Address of the redis store",
				EnvVars: []string{config.EnvReviewRedisAddress},
			},
			&cli.StringFlag{
				Name:    "backend-url",
				Usage:   "Payload origin API base URL",
				EnvVars: []string{config.EnvReviewBackendURL},
			},
			&cli.StringFlag{
				Name:    "access-token",
				Usage:   "Shared secret for origin API bearer tokens",
				EnvVars: []string{config.EnvReviewAccessToken},
			},
			&cli.StringFlag{
				Name:    "account",
				Aliases: []string{"a"},
				Usage:   "Sign with this account instead of the preselected one",
			},
			&cli.StringFlag{
				Name:    "fee",
				Usage:   "Fee tier to apply: LOW, MEDIUM or HIGH",
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Answer yes to all confirmation prompts",
			},
			&cli.StringFlag{
				Name:  "reject",
				Usage: "Decline the payload with the given reason instead of accepting",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Usage:   "Enable verbose logging",
				EnvVars: []string{config.EnvReviewVerbose},
			},
		},
		Action: runReview,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func runReview(c *cli.Context) error {
	loggerConfig := &logger.LoggerConfig{
		Debug: c.Bool("verbose"),
	}
	l, err := logger.NewLogger(loggerConfig)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = l.Sync() }()

	reviewConfig := parseReviewConfig(c)
	if err := reviewConfig.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	l.Sugar().Infow("Using network",
		"name", reviewConfig.Network, "id", reviewConfig.Preset.ID, "node", reviewConfig.NodeURL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	raw, err := readPayload(c.String("payload"))
	if err != nil {
		return err
	}
	p, err := payload.FromJSON(raw)
	if err != nil {
		return err
	}

	store, err := openStore(reviewConfig, l)
	if err != nil {
		return fmt.Errorf("failed to open account store: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.HealthCheck(); err != nil {
		return fmt.Errorf("account store unhealthy: %w", err)
	}

	node, err := socket.Dial(ctx, reviewConfig.NodeURL, l)
	if err != nil {
		return err
	}
	defer node.Close()

	feeResolver, err := fees.NewResolver(node, l)
	if err != nil {
		return err
	}
	submitClient, err := submitter.NewClient(node, l)
	if err != nil {
		return err
	}

	var origin review.Origin
	if reviewConfig.BackendURL != "" {
		backendClient, err := backend.NewClient(reviewConfig.BackendURL, reviewConfig.AccessToken, l)
		if err != nil {
			return err
		}
		origin = backendClient
	}

	var paths review.PathResolver
	if p.IsPathFinding() {
		finder, err := pathfinding.NewFinder(node, l)
		if err != nil {
			return err
		}
		defer finder.Close()
		paths = finder
	}

	deps := review.Dependencies{
		Accounts:  store,
		Fees:      feeResolver,
		Signer:    signing.NewEngine(l),
		Submitter: submitClient,
		Origin:    origin,
		Ledger:    node,
		Paths:     paths,
		Confirm:   confirmFunc(c.Bool("yes"), l),
		Environment: backend.Environment{
			NodeURI:  reviewConfig.NodeURL,
			NodeType: string(reviewConfig.Preset.Type),
		},
		NetworkID: reviewConfig.Preset.ID,
		Logger:    l,
	}

	session, err := review.NewSession(ctx, deps, p)
	if err != nil {
		return err
	}

	if reason := c.String("reject"); reason != "" {
		return session.Decline(ctx, reason)
	}

	if address := c.String("account"); address != "" {
		if err := session.SetSource(address); err != nil {
			return err
		}
	}

	if tier := c.String("fee"); tier != "" && p.CanOverrideFee() {
		if _, err := session.ResolveFees(ctx); err != nil {
			return err
		}
		if err := session.SelectFee(fees.Tier(tier)); err != nil {
			return err
		}
	}

	if p.IsPathFinding() {
		if err := selectPaymentOption(ctx, session, p, l); err != nil {
			return err
		}
	}

	outcome, err := session.Accept(ctx)
	if err != nil {
		if errors.Is(err, review.ErrNetworkUnreachable) {
			l.Sugar().Warnw("Node unreachable, the session keeps the signed blob for retry",
				"uuid", p.Meta.UUID)
		}
		return err
	}

	out, err := json.MarshalIndent(outcome, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// selectPaymentOption resolves funding options from the node and picks
// the cheapest one. Without options the payload is only acceptable when
// it allows falling back to an unresolved payment.
func selectPaymentOption(ctx context.Context, session *review.Session, p *payload.Payload, l *zap.Logger) error {
	options, err := session.ResolvePathOptions(ctx)
	if err != nil || len(options) == 0 {
		if p.Meta.PathfindingFallback {
			l.Sugar().Warnw("No payment option resolved, falling back to unrouted payment",
				"uuid", p.Meta.UUID, "error", err)
			return nil
		}
		if err != nil {
			return err
		}
		return fmt.Errorf("no payment option available for this payload")
	}

	option := pickOption(options)
	if err := session.SelectPathOption(option); err != nil {
		return err
	}

	l.Sugar().Infow("Payment option selected",
		"source_amount", option.SourceAmount.Key(), "value", option.SourceAmount.Value)
	return nil
}

// pickOption prefers the cheapest native funding option, falling back to
// the first alternative.
func pickOption(options []pathfinding.Option) pathfinding.Option {
	best := options[0]
	bestCost, bestErr := best.SourceAmount.Decimal()

	for _, opt := range options[1:] {
		if !opt.SourceAmount.IsNative() {
			continue
		}
		cost, err := opt.SourceAmount.Decimal()
		if err != nil {
			continue
		}
		if bestErr != nil || !best.SourceAmount.IsNative() || cost.LessThan(bestCost) {
			best, bestCost, bestErr = opt, cost, nil
		}
	}
	return best
}

func parseReviewConfig(c *cli.Context) *config.ReviewConfig {
	return &config.ReviewConfig{
		NodeURL:      c.String("node-url"),
		Network:      config.NetworkName(c.String("network")),
		StoreType:    config.StoreType(c.String("store")),
		StorePath:    c.String("store-path"),
		RedisAddress: c.String("redis-address"),
		BackendURL:   c.String("backend-url"),
		AccessToken:  c.String("access-token"),
		Debug:        c.Bool("verbose"),
		Verbose:      c.Bool("verbose"),
	}
}

func readPayload(path string) ([]byte, error) {
	if path == "-" {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read payload from stdin: %w", err)
		}
		return raw, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read payload file: %w", err)
	}
	return raw, nil
}

func openStore(cfg *config.ReviewConfig, l *zap.Logger) (accounts.Repository, error) {
	switch cfg.StoreType {
	case config.StoreTypeMemory:
		return memory.NewMemoryRepository(), nil
	case config.StoreTypeBadger:
		return badgerstore.NewBadgerRepository(cfg.StorePath, l)
	case config.StoreTypeRedis:
		return redisstore.NewRedisRepository(&redisstore.RedisConfig{
			Address: cfg.RedisAddress,
		}, l)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", cfg.StoreType)
	}
}

// confirmFunc answers dangerous-transaction prompts on the terminal. With
// --yes everything is approved without asking.
func confirmFunc(autoYes bool, l *zap.Logger) review.ConfirmFunc {
	return func(prompt review.Prompt, detail string) bool {
		if autoYes {
			l.Sugar().Warnw("Auto-confirming", "prompt", prompt, "detail", detail)
			return true
		}

		fmt.Printf("Confirm %s (%s)? [y/N]: ", prompt, detail)
		reader := bufio.NewReader(os.Stdin)
		answer, err := reader.ReadString('\n')
		if err != nil {
			return false
		}
		answer = strings.ToLower(strings.TrimSpace(answer))
		return answer == "y" || answer == "yes"
	}
}
