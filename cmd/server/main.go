package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/splitr/internal/auth"
	"github.com/mmynk/splitr/internal/config"
	"github.com/mmynk/splitr/internal/httpapi"
	"github.com/mmynk/splitr/internal/interpreter"
	"github.com/mmynk/splitr/internal/middleware"
	"github.com/mmynk/splitr/internal/notify"
	"github.com/mmynk/splitr/internal/service"
	"github.com/mmynk/splitr/internal/storage/backend"
	"github.com/mmynk/splitr/pkg/api/apiconnect"
	"github.com/mmynk/splitr/pkg/logging"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := backend.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	slog.Info("Storage initialized", "driver", cfg.Database.Driver)

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authenticator := auth.NewPasswordAuthenticator(store)

	var notifier notify.Notifier = notify.Nop{}
	if cfg.Notify.ResendAPIKey != "" {
		notifier = notify.NewResend(cfg.Notify.ResendAPIKey, cfg.Notify.From)
		slog.Info("Email notifications enabled", "from", cfg.Notify.From)
	}

	interp, err := interpreter.NewOllamaClient(interpreter.Config{
		BaseURL: cfg.Interpreter.URL,
		Model:   cfg.Interpreter.Model,
		Timeout: cfg.Interpreter.Timeout,
	})
	if err != nil {
		return err
	}

	expenses := service.NewExpenseService(store, notifier, service.ExpenseOptions{
		AssignRemainderToPayer: cfg.Splits.AssignRemainderToPayer,
		Currency:               cfg.Splits.CurrencySymbol,
	})

	srv := httpapi.New(httpapi.Deps{
		Logger:      logger,
		Store:       store,
		Interpreter: interp,
		Commands:    expenses,
		JWT:         jwtManager,
		Currency:    cfg.Splits.CurrencySymbol,
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	interceptors := connect.WithInterceptors(
		middleware.MetricsInterceptor(),
		middleware.RequireAuth(jwtManager,
			apiconnect.AuthServiceRegisterProcedure,
			apiconnect.AuthServiceLoginProcedure,
		),
		middleware.LoggingInterceptor(),
	)

	// Register Connect services
	srv.Mount(apiconnect.NewAuthServiceHandler(service.NewAuthService(authenticator, jwtManager, store, logger), interceptors))
	srv.Mount(apiconnect.NewUserServiceHandler(service.NewUserService(store), interceptors))
	srv.Mount(apiconnect.NewGroupServiceHandler(service.NewGroupService(store), interceptors))
	srv.Mount(apiconnect.NewExpenseServiceHandler(expenses, interceptors))
	srv.Mount(apiconnect.NewSettlementServiceHandler(service.NewSettlementService(store), interceptors))
	srv.Mount(apiconnect.NewBalanceServiceHandler(service.NewBalanceService(store), interceptors))

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           h2c.NewHandler(srv.Handler(), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "address", httpServer.Addr, "env", cfg.Env)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
