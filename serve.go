package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	appOrder "github.com/Zhima-Mochi/minishop-payments/internal/application/order"
	appPayment "github.com/Zhima-Mochi/minishop-payments/internal/application/payment"
	appWebhook "github.com/Zhima-Mochi/minishop-payments/internal/application/webhook"
	"github.com/Zhima-Mochi/minishop-payments/internal/config"
	domorder "github.com/Zhima-Mochi/minishop-payments/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-payments/internal/domain/outbox"
	dompay "github.com/Zhima-Mochi/minishop-payments/internal/domain/payment"
	domproduct "github.com/Zhima-Mochi/minishop-payments/internal/domain/product"
	domuser "github.com/Zhima-Mochi/minishop-payments/internal/domain/user"
	"github.com/Zhima-Mochi/minishop-payments/internal/infrastructure/kafka"
	"github.com/Zhima-Mochi/minishop-payments/internal/infrastructure/memory"
	infraobs "github.com/Zhima-Mochi/minishop-payments/internal/infrastructure/observability"
	"github.com/Zhima-Mochi/minishop-payments/internal/infrastructure/observability/oteltrace"
	"github.com/Zhima-Mochi/minishop-payments/internal/infrastructure/observability/prometrics"
	"github.com/Zhima-Mochi/minishop-payments/internal/infrastructure/observability/zaplogger"
	"github.com/Zhima-Mochi/minishop-payments/internal/infrastructure/outbox"
	"github.com/Zhima-Mochi/minishop-payments/internal/infrastructure/postgres"
	"github.com/Zhima-Mochi/minishop-payments/internal/infrastructure/redisx"
	"github.com/Zhima-Mochi/minishop-payments/internal/infrastructure/stripepay"
	"github.com/Zhima-Mochi/minishop-payments/internal/pkg/logging"
	httppresentation "github.com/Zhima-Mochi/minishop-payments/internal/presentation/http"
	workerpresentation "github.com/Zhima-Mochi/minishop-payments/internal/presentation/worker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

type repositories struct {
	products domproduct.Repository
	users    domuser.Repository
	orders   domorder.Repository
	payments dompay.Repository
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	baseLogger, err := logging.NewLogger(logging.Options{
		Service: cfg.ServiceName,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
	})
	if err != nil {
		return err
	}
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)

	systemLogger := logging.WithTrace(baseLogger, logging.SystemTraceID, logging.SystemSpanID)
	logger := zaplogger.New(baseLogger)

	counters, histograms := prometrics.Standard(prometrics.New("", "", prometheus.DefaultRegisterer))
	tel := infraobs.New(oteltrace.New(cfg.ServiceName), logger, counters, histograms)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, closeRepos, err := openRepositories(ctx, cfg, systemLogger)
	if err != nil {
		return err
	}
	defer closeRepos()

	var ledger appWebhook.Ledger = memory.NewEventLedger(redisx.TTLDedup)
	if cfg.RedisAddr != "" {
		rdb, err := redisx.New(ctx, cfg.RedisAddr)
		if err != nil {
			return err
		}
		defer func() { _ = rdb.Close() }()
		ledger = redisx.NewEventLedger(rdb, redisx.TTLDedup)
		systemLogger.Info("webhook_ledger_redis", zap.String("addr", cfg.RedisAddr))
	}

	// In-process bus unless a broker is configured.
	var publisher domoutbox.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		kp := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.ServiceName)
		defer func() { _ = kp.Close() }()
		publisher = kp
		systemLogger.Info("event_publisher_kafka",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.KafkaTopic),
		)
	} else {
		bus := outbox.NewBus(logger)
		workerpresentation.LogEvents(bus, logger,
			domorder.OrderCreatedEvent{}.EventName(),
			domorder.OrderPaidEvent{}.EventName(),
			domorder.OrderCanceledEvent{}.EventName(),
		)
		publisher = bus
	}

	if cfg.StripeSecretKey == "" {
		systemLogger.Warn("stripe_secret_key_missing")
	}
	if cfg.StripeWebhookSecret == "" {
		systemLogger.Warn("stripe_webhook_secret_missing")
	}
	processor := stripepay.New(cfg.StripeSecretKey, cfg.StripeWebhookSecret)

	handler := httppresentation.NewHandler(httppresentation.Deps{
		CreateOrder:  appOrder.NewCreateOrderUseCase(repos.orders, repos.products, repos.users, publisher, tel),
		ListProducts: appOrder.NewListProductsUseCase(repos.products, tel),
		Payments: appPayment.NewCoordinator(repos.orders, repos.users, repos.payments, processor, appPayment.Config{
			FrontendURL: cfg.FrontendURL,
			SessionTTL:  cfg.CheckoutSessionTTL,
		}, tel),
		Reconciler:        appWebhook.NewReconciler(repos.orders, repos.payments, ledger, publisher, tel),
		Verifier:          processor,
		WebhookConfigured: processor.HasWebhookSecret(),
		Metrics:           promhttp.Handler(),
	}, logger, tel)

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler.Router(),
	}

	go func() {
		systemLogger.Info("http_server_start",
			zap.String("addr", server.Addr),
		)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			systemLogger.Error("http_server_error",
				zap.Error(err),
			)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		systemLogger.Error("http_server_shutdown_error",
			zap.Error(err),
		)
		return err
	}
	systemLogger.Info("http_server_stopped")
	return nil
}

func openRepositories(ctx context.Context, cfg config.Config, log *zap.Logger) (repositories, func(), error) {
	if cfg.DatabaseURL == "" {
		store := memory.NewStore()
		if cfg.SeedDemoData {
			for _, u := range demoUsers() {
				store.PutUser(u)
			}
			for _, p := range demoProducts() {
				store.PutProduct(p)
			}
		}
		log.Info("store_memory", zap.Bool("seeded", cfg.SeedDemoData))
		return repositories{
			products: store.Products(),
			users:    store.Users(),
			orders:   store.Orders(),
			payments: store.Payments(),
		}, func() {}, nil
	}

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return repositories{}, nil, err
	}
	store := postgres.NewStore(pool)
	if cfg.SeedDemoData {
		if err := store.Seed(ctx, demoUsers(), demoProducts()); err != nil {
			pool.Close()
			return repositories{}, nil, err
		}
	}
	log.Info("store_postgres", zap.Bool("seeded", cfg.SeedDemoData))
	return repositories{
		products: store.Products(),
		users:    store.Users(),
		orders:   store.Orders(),
		payments: store.Payments(),
	}, pool.Close, nil
}
