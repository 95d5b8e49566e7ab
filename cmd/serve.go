package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"CVForgeBot/config"
	"CVForgeBot/handler"
	"CVForgeBot/logging"
	"CVForgeBot/model"
	"CVForgeBot/render"
	"CVForgeBot/repo"
	"CVForgeBot/wizard"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Telegram bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		logger := logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		return serve(ctx, cfg, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	catalog, err := model.LoadCatalog(cfg.Catalog.Path)
	if err != nil {
		return err
	}
	logger.Info().Int("fields", catalog.Len()).Msg("loaded field catalog")

	answers, err := openAnswerStore(ctx, cfg, catalog, logger)
	if err != nil {
		return err
	}
	defer answers.Close()

	sessions, err := openSessionStore(ctx, cfg, catalog, logger)
	if err != nil {
		return err
	}
	defer sessions.Close()

	renderer, err := render.NewLaTeX(render.LaTeXOptions{
		TemplatePath: cfg.Render.TemplatePath,
		OutputDir:    cfg.Render.OutputDir,
		Binary:       cfg.Render.LaTeXBinary,
		Passes:       cfg.Render.Passes,
		Timeout:      cfg.Render.Timeout,
	}, catalog, logger)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := wizard.NewMetrics(reg)

	machine := wizard.NewMachine(catalog, answers, sessions, renderer,
		wizard.WithLogger(logger),
		wizard.WithMetrics(metrics),
	)

	// the sink needs the bot and the bot needs the handler; sink is set
	// before the bot starts polling
	var sink *handler.Sink
	dispatcher := wizard.NewDispatcher(ctx, machine, func(ctx context.Context, ev model.Event, resp model.Response) {
		sink.Deliver(ctx, ev, resp)
	}, metrics, logger)
	formBot := handler.NewFormBotHandler(dispatcher, logger)

	b, err := bot.New(cfg.Bot.Token,
		bot.WithDefaultHandler(formBot.Handler),
		bot.WithNotAsyncHandlers(),
		bot.WithErrorsHandler(func(err error) {
			logger.Error().Err(err).Str("component", "telegram").Msg("bot error")
		}),
	)
	if err != nil {
		return fmt.Errorf("error creating bot: %w", err)
	}
	sink = handler.NewSink(b, logger)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Msg("bot started")
		b.Start(ctx)
		logger.Info().Msg("bot stopped")
		return nil
	})

	if cfg.Metrics.Addr != "" {
		srv := &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           metricsMux(reg),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info().Str("addr", cfg.Metrics.Addr).Msg("serving metrics")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()
	dispatcher.Close()
	return err
}

func metricsMux(reg *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return mux
}

func openAnswerStore(ctx context.Context, cfg *config.Config, catalog *model.Catalog, logger zerolog.Logger) (repo.AnswerStore, error) {
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		return repo.NewSQLiteAnswerStore(ctx, cfg.Store.SQLitePath, catalog, logger)
	case config.DriverFirebase:
		return repo.NewFirebaseConnector(ctx, cfg.Firebase.CredentialsFile, cfg.Firebase.DatabaseURL, catalog, logger)
	case config.DriverMemory:
		logger.Warn().Msg("using in-memory answer store, answers are lost on restart")
		return repo.NewMemoryAnswerStore(catalog), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func openSessionStore(ctx context.Context, cfg *config.Config, catalog *model.Catalog, logger zerolog.Logger) (repo.SessionStore, error) {
	switch cfg.Session.Driver {
	case config.DriverRedis:
		return repo.NewRedisSessionStore(ctx, cfg.Session.RedisURL, cfg.Session.Prefix, cfg.Session.TTL, catalog, logger)
	case config.DriverMemory:
		return repo.NewMemorySessionStore(), nil
	default:
		return nil, fmt.Errorf("unknown session driver %q", cfg.Session.Driver)
	}
}
