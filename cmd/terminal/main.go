package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/varejolabs/pdv-terminal/api/controllers"
	"github.com/varejolabs/pdv-terminal/api/routes"
	"github.com/varejolabs/pdv-terminal/internal/engine"
	"github.com/varejolabs/pdv-terminal/internal/finalize"
	"github.com/varejolabs/pdv-terminal/internal/keymap"
	"github.com/varejolabs/pdv-terminal/internal/ledger"
	"github.com/varejolabs/pdv-terminal/internal/receipts"
	"github.com/varejolabs/pdv-terminal/pkg/auth"
	"github.com/varejolabs/pdv-terminal/pkg/config"
	"github.com/varejolabs/pdv-terminal/pkg/db"
	"github.com/varejolabs/pdv-terminal/pkg/db/models"
	"github.com/varejolabs/pdv-terminal/pkg/enums"
	"github.com/varejolabs/pdv-terminal/pkg/env"
	"github.com/varejolabs/pdv-terminal/pkg/logger"
	"github.com/varejolabs/pdv-terminal/pkg/metrics"
	"github.com/varejolabs/pdv-terminal/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "terminal"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "terminal",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.Journal, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap journal", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing journal", err)
		}
	}()

	if cfg.Journal.AutoMigrate {
		if err := dbClient.AutoMigrate(&models.SaleReceipt{}); err != nil {
			logg.Error(context.Background(), "failed to migrate journal", err)
			os.Exit(1)
		}
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	}

	tokens, err := newTokenSource(cfg)
	if err != nil {
		logg.Error(context.Background(), "failed to prepare operator token", err)
		os.Exit(1)
	}

	ledgerClient, err := ledger.NewClient(cfg.Ledger, tokens.Token)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	saleMetrics := metrics.NewSaleMetrics(registry)

	coordinatorParams := finalize.CoordinatorParams{
		Committer: ledgerClient,
		Register:  cfg.Register,
		Metrics:   saleMetrics,
		Logger:    logg,
	}
	if redisClient != nil {
		coordinatorParams.Idempotency = redisClient
	}
	coordinator, err := finalize.NewCoordinator(coordinatorParams)
	if err != nil {
		logg.Error(context.Background(), "failed to create finalization coordinator", err)
		os.Exit(1)
	}

	receiptService, err := receipts.NewService(receipts.ServiceParams{
		Repo: receipts.NewRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create receipt service", err)
		os.Exit(1)
	}

	terminal, err := engine.New(engine.Params{
		Register:  cfg.Register,
		Flags:     cfg.FeatureFlags,
		Search:    cfg.Search,
		Provider:  ledgerClient,
		Customers: ledgerClient,
		Finalizer: coordinator,
		Receipts:  receiptService,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create engine", err)
		os.Exit(1)
	}
	defer terminal.Close()

	if cfg.Diagnostics.Enabled {
		pingers := map[string]controllers.Pinger{"journal": dbClient}
		if redisClient != nil {
			pingers["redis"] = redisClient
		}
		server := &http.Server{
			Addr:    ":" + cfg.Diagnostics.Port,
			Handler: routes.NewRouter(cfg, logg, terminal, receiptService, pingers, registry),
		}
		go func() {
			ctx := logg.WithField(context.Background(), "addr", server.Addr)
			logg.Info(ctx, "starting diagnostics server")
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logg.Error(ctx, "diagnostics server stopped unexpectedly", err)
			}
		}()
	}

	ctx := logg.WithRegisterID(context.Background(), cfg.Register.LocalID)
	logg.Info(ctx, "terminal ready")

	runConsole(ctx, logg, terminal)
}

// runConsole is the headless front-end: one line per action. A desktop shell
// binds real key events to the same engine entry points.
func runConsole(ctx context.Context, logg *logger.Logger, terminal *engine.Engine) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit":
			return
		case strings.HasPrefix(line, "/key "):
			signals := terminal.HandleKey(ctx, keymap.Event{Key: strings.TrimPrefix(line, "/key ")})
			for _, signal := range signals {
				if signal == keymap.SignalFocusSearch {
					fmt.Println("> search focused")
				}
			}
		case strings.HasPrefix(line, "/pay "):
			handlePay(ctx, logg, terminal, strings.TrimPrefix(line, "/pay "))
		case strings.HasPrefix(line, "/discount "):
			handleDiscount(ctx, logg, terminal, strings.TrimPrefix(line, "/discount "))
		case line == "/totals":
			totals := terminal.Totals()
			fmt.Printf("> total %s, paid %s, remaining %s\n",
				totals.Total.StringFixed(2), totals.Paid.StringFixed(2), totals.Remaining.StringFixed(2))
		default:
			terminal.SetQuery(line)
			printResultsSoon(terminal)
		}
	}
}

func handlePay(ctx context.Context, logg *logger.Logger, terminal *engine.Engine, args string) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		fmt.Println("> usage: /pay <cash|credit|debit|pix> <amount>")
		return
	}
	method, err := enums.ParsePaymentMethod(fields[0])
	if err != nil {
		fmt.Printf("> %v\n", err)
		return
	}
	amount, err := decimal.NewFromString(fields[1])
	if err != nil {
		fmt.Printf("> invalid amount %q\n", fields[1])
		return
	}

	receipt, err := terminal.AddPayment(ctx, method, amount)
	if err != nil {
		logg.Warn(ctx, fmt.Sprintf("payment rejected: %v", err))
		fmt.Printf("> %v\n", err)
		return
	}
	if receipt != nil {
		fmt.Printf("> sale %s committed, total %s\n", receipt.SaleID, receipt.Total.StringFixed(2))
		return
	}
	totals := terminal.Totals()
	fmt.Printf("> remaining %s\n", totals.Remaining.StringFixed(2))
}

func handleDiscount(ctx context.Context, logg *logger.Logger, terminal *engine.Engine, args string) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		fmt.Println("> usage: /discount <fixed|percentage> <amount>")
		return
	}
	kind, err := enums.ParseDiscountKind(fields[0])
	if err != nil {
		fmt.Printf("> %v\n", err)
		return
	}
	amount, err := decimal.NewFromString(fields[1])
	if err != nil {
		fmt.Printf("> invalid amount %q\n", fields[1])
		return
	}
	if err := terminal.SetDiscount(kind, amount); err != nil {
		fmt.Printf("> %v\n", err)
	}
}

func printResultsSoon(terminal *engine.Engine) {
	go func() {
		time.Sleep(400 * time.Millisecond)
		results, cursor := terminal.Results()
		for i, product := range results {
			marker := "  "
			if i == cursor {
				marker = "> "
			}
			fmt.Printf("%s%s  %s  %s\n", marker, product.SKU, product.Name, product.SalePrice.StringFixed(2))
		}
	}()
}

// tokenSource mints the operator JWT the ledger client presents, reminting
// shortly before expiry.
type tokenSource struct {
	cfg        config.JWTConfig
	operatorID uuid.UUID
	register   string

	mu      sync.Mutex
	token   string
	expires time.Time
}

func newTokenSource(cfg *config.Config) (*tokenSource, error) {
	operatorID := uuid.New()
	if raw := env.Get("PDV_OPERATOR_ID", ""); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing PDV_OPERATOR_ID: %w", err)
		}
		operatorID = parsed
	}

	ts := &tokenSource{cfg: cfg.JWT, operatorID: operatorID, register: cfg.Register.LocalID}
	if _, err := ts.mint(); err != nil {
		return nil, err
	}
	return ts, nil
}

// Token returns a valid operator token, reminting when the cached one is
// within a minute of expiry.
func (t *tokenSource) Token() string {
	t.mu.Lock()
	token := t.token
	expires := t.expires
	t.mu.Unlock()

	if token != "" && time.Until(expires) > time.Minute {
		return token
	}
	minted, err := t.mint()
	if err != nil {
		return token
	}
	return minted
}

func (t *tokenSource) mint() (string, error) {
	now := time.Now()
	signed, err := auth.MintOperatorToken(t.cfg, now, auth.OperatorTokenPayload{
		OperatorID:      t.operatorID,
		RegisterLocalID: t.register,
	})
	if err != nil {
		return "", fmt.Errorf("minting operator token: %w", err)
	}

	t.mu.Lock()
	t.token = signed
	t.expires = now.Add(time.Duration(t.cfg.ExpirationMinutes) * time.Minute)
	t.mu.Unlock()
	return signed, nil
}
