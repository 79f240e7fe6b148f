package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/at-ishikawa/revisit/internal/auth"
	"github.com/at-ishikawa/revisit/internal/bootstrap"
	"github.com/at-ishikawa/revisit/internal/catalog"
	"github.com/at-ishikawa/revisit/internal/config"
	"github.com/at-ishikawa/revisit/internal/database"
	"github.com/at-ishikawa/revisit/internal/repetition"
	"github.com/at-ishikawa/revisit/internal/scheduler"
	"github.com/at-ishikawa/revisit/internal/server"
)

const readHeaderTimeout = 10 * time.Second

var configFile string

func main() {
	var debugMode bool
	rootCmd := &cobra.Command{
		Use:           "revisit-server",
		Short:         "Revisit review scheduling HTTP server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), newLogger(debugMode))
		},
	}
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug mode")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(debugMode bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if debugMode {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	return logger
}

func run(ctx context.Context, logger *slog.Logger) error {
	app := bootstrap.New(bootstrap.WithLogger(logger))

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loadConfig() > %w", err)
	}
	location, err := cfg.Schedule.Location()
	if err != nil {
		return err
	}
	cat, err := catalog.New(cfg.Catalog)
	if err != nil {
		return fmt.Errorf("catalog.New() > %w", err)
	}
	if closer, ok := cat.(io.Closer); ok {
		app.AddShutdownHook("catalog", func(context.Context) error {
			return closer.Close()
		})
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("database.Open() > %w", err)
	}
	app.AddShutdownHook("database", func(context.Context) error {
		return db.Close()
	})
	if err := database.Migrate(db); err != nil {
		_ = db.Close()
		return fmt.Errorf("database.Migrate() > %w", err)
	}

	service := scheduler.NewService(repetition.NewDBRepository(db), cat,
		scheduler.WithLocation(location),
		scheduler.WithLogger(logger),
	)
	handler, err := newHTTPHandler(cfg.Server, service, server.NewMetrics(), logger)
	if err != nil {
		_ = db.Close()
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	app.AddShutdownHook("http server", srv.Shutdown)

	return app.Run(ctx, func(ctx context.Context) error {
		logger.InfoContext(ctx, "starting server", "addr", srv.Addr, "driver", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
}

// newHTTPHandler mounts the schedule service and /metrics behind CORS and h2c.
func newHTTPHandler(cfg config.ServerConfig, service server.ScheduleService, metrics *server.Metrics, logger *slog.Logger) (http.Handler, error) {
	handler, err := server.NewScheduleHandler(service, metrics, logger)
	if err != nil {
		return nil, fmt.Errorf("server.NewScheduleHandler() > %w", err)
	}
	path, h := server.NewScheduleServiceHandler(handler,
		connect.WithInterceptors(metrics.Interceptor(), auth.NewInterceptor(cfg.UserHeader)),
	)

	mux := http.NewServeMux()
	mux.Handle(path, h)
	mux.Handle("/metrics", metrics.Handler())

	return corsMiddleware(h2c.NewHandler(mux, &http2.Server{}), cfg.CORS.AllowedOrigins, cfg.UserHeader), nil
}

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}

func corsMiddleware(next http.Handler, allowedOrigins []string, userHeader string) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	allowHeaders := strings.Join([]string{"Content-Type", "Connect-Protocol-Version", userHeader}, ", ")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", allowHeaders)
		w.Header().Set("Access-Control-Max-Age", "3600")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
