package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"sailhook/pkg/core"
	"sailhook/pkg/sailthru"
	"sailhook/pkg/storage"
	"sailhook/pkg/storage/deliveries"
	"sailhook/pkg/webhook"
	"sailhook/pkg/worker"
)

// RunConfig loads config from a path and starts the server with signal handling.
func RunConfig(configPath string) error {
	logger := core.NewLogger("server")
	config, err := core.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return Run(ctx, config, logger)
}

// Run starts the ingest server, and the bus consumer when one is configured,
// until the context is canceled.
func Run(ctx context.Context, config core.Config, logger *log.Logger) error {
	if logger == nil {
		logger = core.NewLogger("server")
	}

	ruleEngine, err := core.NewRuleEngine(core.RulesConfig{
		Rules:  config.Rules,
		Strict: config.RulesStrict,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("compile rules: %w", err)
	}

	var deliveryStore storage.DeliveryStore
	if config.Storage.Enabled() {
		store, err := deliveries.Open(deliveries.Config{
			Driver:      config.Storage.Driver,
			DSN:         config.Storage.DSN,
			Dialect:     config.Storage.Dialect,
			Table:       config.Storage.Table,
			AutoMigrate: config.Storage.AutoMigrate,
		})
		if err != nil {
			return fmt.Errorf("storage: %w", err)
		}
		deliveryStore = store
		defer store.Close()
		logger.Printf("storage enabled driver=%s dialect=%s", config.Storage.Driver, config.Storage.Dialect)
	} else {
		logger.Printf("storage disabled (missing storage.driver or storage.dsn)")
	}

	client, err := sailthru.NewClient(config.Sailthru, core.NewLogger("sailthru"))
	if err != nil {
		return fmt.Errorf("sailthru client: %w", err)
	}
	adapter := sailthru.New(config.Sailthru, client, core.NewLogger("adapter"))

	ingest := webhook.NewHandler(
		ruleEngine,
		adapter,
		deliveryStore,
		core.NewLogger("webhook"),
		config.Server.MaxBodyBytes,
		config.Server.DebugEvents,
	)

	mux := http.NewServeMux()
	mux.Handle("/v1/events", ingest)
	mux.Handle("/healthz", healthHandler())

	corsHandler := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowOriginFunc: func(_ string) bool { return true },
		AllowedHeaders:  []string{"*"},
		ExposedHeaders:  []string{"X-Request-Id"},
		MaxAge:          int(2 * time.Hour / time.Second),
	})
	appHandler := applyMiddlewares(mux, []Middleware{requestLogMiddleware(logger)})
	handler := h2c.NewHandler(corsHandler.Handler(appHandler), &http2.Server{})

	addr := ":" + strconv.Itoa(config.Server.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       time.Duration(config.Server.ReadTimeoutMS) * time.Millisecond,
		WriteTimeout:      time.Duration(config.Server.WriteTimeoutMS) * time.Millisecond,
		IdleTimeout:       time.Duration(config.Server.IdleTimeoutMS) * time.Millisecond,
		ReadHeaderTimeout: time.Duration(config.Server.ReadHeaderMS) * time.Millisecond,
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	if config.Watermill.Enabled() {
		consumer, err := worker.NewFromConfig(config.Watermill, adapter,
			worker.WithRuleEngine(ruleEngine),
			worker.WithStore(deliveryStore),
			worker.WithLogger(core.NewLogger("worker")),
		)
		if err != nil {
			return fmt.Errorf("subscriber: %w", err)
		}
		go func() {
			logger.Printf("consuming topic=%s driver=%s", config.Watermill.Topic, config.Watermill.Driver)
			if err := consumer.Run(runCtx); err != nil {
				errCh <- fmt.Errorf("worker: %w", err)
				return
			}
			errCh <- nil
		}()
	}

	go func() {
		logger.Printf("listening on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-runCtx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("shutdown: %v", err)
		}
		return nil
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	}
}
