package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/leonidyasin/tablebot"
	"github.com/leonidyasin/tablebot/internal/config"
	"github.com/leonidyasin/tablebot/internal/logging"
	"github.com/leonidyasin/tablebot/pkg/adapters/memory"
	redisadapter "github.com/leonidyasin/tablebot/pkg/adapters/redis"
	"github.com/leonidyasin/tablebot/pkg/adapters/sqlite"
	"github.com/leonidyasin/tablebot/pkg/adapters/telegram"
	"github.com/leonidyasin/tablebot/pkg/geocode"
	"github.com/leonidyasin/tablebot/pkg/observability"
	"github.com/leonidyasin/tablebot/pkg/ports"
	"github.com/leonidyasin/tablebot/pkg/table"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the bot with long polling",
	Long: `Loads the rule table, connects to the chat platform and dispatches
inbound messages until interrupted. The table is reloaded automatically
when the file changes, unless watching is disabled in the config.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgPath, _ := cmd.Flags().GetString("config")
		tablePath, _ := cmd.Flags().GetString("table")
		token, _ := cmd.Flags().GetString("token")
		return runBot(cfgPath, tablePath, token)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("token", "", "Bot API token (overrides BOT_TOKEN and token files)")
}

func runBot(cfgPath, tableOverride, tokenOverride string) error {
	cfg := config.Default()
	if cfgPath != "" {
		var err error
		if cfg, err = config.Load(cfgPath); err != nil {
			return err
		}
	}
	if tableOverride != "" {
		cfg.Table = tableOverride
	}
	if tokenOverride != "" {
		cfg.Token = tokenOverride
	}

	logger := logging.New(parseLevel(cfg.LogLevel))

	token, err := config.ResolveToken(cfg.Token, filepath.Dir(cfg.Table))
	if err != nil {
		return err
	}

	source, err := table.New(cfg.Table, table.WithLogger(logger))
	if err != nil {
		return err
	}
	logger.Info("rule table loaded", "path", cfg.Table,
		"rules", len(source.Snapshot().Rules()), "states", len(source.Snapshot().States()))

	store, locker, cleanup, err := buildStore(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	transport, err := telegram.New(token, telegram.WithLogger(logger))
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	botOpts := []tablebot.Option{
		tablebot.WithLogger(logger),
		tablebot.WithCommandRegistry(transport),
		tablebot.WithHooks(metrics.Hooks()),
		tablebot.WithNotifyTimeout(cfg.NotifyTimeout),
		tablebot.WithGeocoder(buildGeocoder(cfg)),
	}
	if locker != nil {
		botOpts = append(botOpts, tablebot.WithLocker(locker))
	}
	bot := tablebot.New(source, store, transport, botOpts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bot.RegisterMenu(ctx); err != nil {
		logger.Warn("command menu registration failed", "err", err)
	}

	if cfg.Watch {
		ticks, err := source.Watch(ctx)
		if err != nil {
			return fmt.Errorf("watch rule table: %w", err)
		}
		go func() {
			for range ticks {
				if err := bot.RegisterMenu(ctx); err != nil {
					logger.Warn("command menu refresh failed", "err", err)
				}
			}
		}()
	}

	if cfg.Listen != "" {
		go serveHTTP(ctx, cfg.Listen, registry, logger)
	}

	logger.Info("bot started", "store", cfg.Store.Kind, "watch", cfg.Watch)
	if err := transport.Listen(ctx, bot.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("bot stopped")
	return nil
}

// buildStore selects the session store from config. The returned cleanup
// closes whatever the store opened.
func buildStore(cfg config.Config, logger *slog.Logger) (ports.SessionStore, ports.DistributedLocker, func(), error) {
	switch cfg.Store.Kind {
	case config.StoreMemory:
		return memory.NewStore(), nil, func() {}, nil

	case config.StoreRedis:
		client := backend.NewClient(&backend.Options{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
		})
		var opts []redisadapter.Option
		if cfg.Store.Redis.Prefix != "" {
			opts = append(opts, redisadapter.WithPrefix(cfg.Store.Redis.Prefix))
		}
		if cfg.Store.Redis.TTL > 0 {
			opts = append(opts, redisadapter.WithTTL(cfg.Store.Redis.TTL))
		}
		store := redisadapter.NewFromClient(client, opts...)
		locker := redisadapter.NewLocker(client, cfg.Store.Redis.Prefix)
		return store, locker, func() { _ = client.Close() }, nil

	case config.StoreSQLite:
		store, err := sqlite.Open(cfg.Store.SQLite.Path)
		if err != nil {
			return nil, nil, nil, err
		}
		return store, nil, func() { _ = store.Close() }, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown store kind %q", cfg.Store.Kind)
	}
}

func buildGeocoder(cfg config.Config) ports.Geocoder {
	var opts []geocode.Option
	if cfg.Geocoder.Endpoint != "" {
		opts = append(opts, geocode.WithEndpoint(cfg.Geocoder.Endpoint))
	}
	if cfg.Geocoder.Timeout > 0 {
		opts = append(opts, geocode.WithHTTPClient(&http.Client{Timeout: cfg.Geocoder.Timeout}))
	}
	return geocode.New(opts...)
}

// serveHTTP exposes Prometheus metrics and a liveness probe.
func serveHTTP(ctx context.Context, addr string, registry *prometheus.Registry, logger *slog.Logger) {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: addr, Handler: r}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("http listener started", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http listener failed", "err", err)
	}
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
