package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/EventLink/server/internal/api"
	"github.com/EventLink/server/internal/api/handlers"
	"github.com/EventLink/server/internal/auth"
	"github.com/EventLink/server/internal/config"
	"github.com/EventLink/server/internal/domain/events"
	"github.com/EventLink/server/internal/domain/rsvps"
	"github.com/EventLink/server/internal/domain/users"
	"github.com/EventLink/server/internal/email"
	"github.com/EventLink/server/internal/metrics"
	"github.com/EventLink/server/internal/storage/postgres"
	"github.com/EventLink/server/internal/telemetry"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout   = 10 * time.Second
	dbCollectInterval = 15 * time.Second
)

type serveOptions struct {
	host string
	port int
}

func newServeCommand(flags *globalFlags) *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the EventLink HTTP server",
		Long: `Start the EventLink HTTP server and begin accepting API requests.

The server will:
- Load configuration from environment variables (or --config file if provided)
- Apply database migrations first when AUTO_MIGRATE=true
- Serve the JSON API, health probes and /metrics
- Handle graceful shutdown on SIGINT/SIGTERM

Examples:
  # Start with default configuration (from env vars)
  server serve

  # Start on a specific host and port
  server serve --host 127.0.0.1 --port 9090

  # Start with debug logging
  server serve --log-level debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, flags, opts)
		},
	}
	cmd.Flags().StringVar(&opts.host, "host", "", "server host address (default: 0.0.0.0)")
	cmd.Flags().IntVar(&opts.port, "port", 0, "server port (default: 8080)")
	return cmd
}

func runServer(ctx context.Context, flags *globalFlags, opts *serveOptions) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if opts.host != "" {
		cfg.Server.Host = opts.host
	}
	if opts.port != 0 {
		cfg.Server.Port = opts.port
	}

	logger := config.NewLogger(cfg.Logging)
	logger.Info().Str("version", Version).Str("environment", cfg.Environment).Msg("starting EventLink server")
	metrics.Init(Version, GitCommit, BuildDate)

	shutdownTracing, err := telemetry.InitTracing(ctx, cfg.Tracing, Version)
	if err != nil {
		return fmt.Errorf("tracing init: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error().Err(err).Msg("tracing shutdown error")
		}
	}()

	if cfg.Database.AutoMigrate {
		if err := postgres.MigrateUp(cfg.Database.URL); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		logger.Info().Msg("database migrations applied")
	}

	openCtx, cancelOpen := context.WithTimeout(ctx, 10*time.Second)
	pool, err := postgres.Open(openCtx, cfg.Database.URL, cfg.Database.MaxConnections)
	cancelOpen()
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer pool.Close()

	repo, err := postgres.NewRepository(pool)
	if err != nil {
		return err
	}

	handler, err := buildHandler(cfg, repo, logger)
	if err != nil {
		return err
	}

	srv := newHTTPServer(cfg.Server, handler)
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", srv.Addr, err)
	}

	collector := metrics.NewDBCollector(pool, dbCollectInterval)
	return serveUntilDone(ctx, srv, ln, logger, collector.Run)
}

// buildHandler wires services over repo into the API router.
func buildHandler(cfg config.Config, repo *postgres.Repository, logger zerolog.Logger) (http.Handler, error) {
	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.JWTIssuer)
	if err != nil {
		return nil, fmt.Errorf("token service: %w", err)
	}
	mailer, err := email.NewService(cfg.Email, cfg.Server.BaseURL, logger)
	if err != nil {
		return nil, fmt.Errorf("email service: %w", err)
	}

	usersService := users.NewService(repo.Users(), tokens, mailer, logger)
	eventsService := events.NewService(repo.Events())
	rsvpsService := rsvps.NewService(repo.RSVPs(), eventsService)

	return api.NewRouter(api.Deps{
		Users:        usersService,
		Events:       eventsService,
		RSVPs:        rsvpsService,
		Health:       handlers.NewHealthChecker(repo, Version, GitCommit),
		Logger:       logger,
		Build:        api.BuildInfo{Version: Version, GitCommit: GitCommit, BuildDate: BuildDate},
		RequireHTTPS: cfg.IsProduction(),
	}), nil
}

func newHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
}

// serveUntilDone serves on ln alongside the background tasks until ctx is
// cancelled or any of them fails, then shuts the server down gracefully.
func serveUntilDone(ctx context.Context, srv *http.Server, ln net.Listener, logger zerolog.Logger, background ...func(context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("addr", ln.Addr().String()).Msg("listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	for _, task := range background {
		g.Go(func() error { return task(gctx) })
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		logger.Info().Msg("server stopped")
		return nil
	})

	return g.Wait()
}
