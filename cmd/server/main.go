package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DoyleJ11/inwo-backend/internal/config"
	"github.com/DoyleJ11/inwo-backend/internal/decks"
	"github.com/DoyleJ11/inwo-backend/internal/eventbus"
	"github.com/DoyleJ11/inwo-backend/internal/httpapi"
	"github.com/DoyleJ11/inwo-backend/internal/hub"
	"github.com/DoyleJ11/inwo-backend/internal/logging"
	"github.com/DoyleJ11/inwo-backend/internal/registry"
	"github.com/DoyleJ11/inwo-backend/internal/ws"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const releaseVersion = "0.1.0"

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg := &config.Config{}
	cobra.CheckErr(newCmd(cfg).Execute())
}

func newCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "inwo-server",
		Short:   "Realtime table server for INWO games.",
		Args:    cobra.NoArgs,
		Version: releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()
	cfg.RegisterFlags(fs)
	cobra.CheckErr(config.ApplyEnv(fs))

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	return cmd
}

func run(parent context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	store, err := openDecks(cfg, log)
	if err != nil {
		return err
	}
	if c, ok := store.(io.Closer); ok {
		defer c.Close()
	}

	hubOpts := []hub.Option{
		hub.WithLogger(log.Named("hub")),
		hub.WithRegistry(registry.New(registry.WithCapacity(cfg.DefaultCapacity, cfg.MaxCapacity))),
	}
	if cfg.NATSURL != "" {
		ncfg := eventbus.DefaultNATSConfig(cfg.NATSURL)
		ncfg.SubjectPrefix = cfg.NATSSubjectPrefix
		bus, err := eventbus.ConnectNATS(ncfg, log.Named("eventbus"))
		if err != nil {
			return err
		}
		defer bus.Close()
		hubOpts = append(hubOpts, hub.WithPublisher(bus))
	}
	h := hub.NewHub(ctx, hubOpts...)

	wsOpts := ws.DefaultOptions()
	wsOpts.OriginPatterns = cfg.OriginPatterns()
	wsOpts.OutboxSize = cfg.OutboxSize
	wsOpts.PingInterval = cfg.PingInterval
	wsOpts.WriteTimeout = cfg.WriteTimeout
	wsOpts.MaxMessageBytes = cfg.MaxMessageBytes

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: httpapi.SetupRoutes(httpapi.Deps{
			Hub:            h,
			Decks:          store,
			Log:            log.Named("http"),
			WS:             wsOpts,
			AllowedOrigins: cfg.AllowedOrigins,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", srv.Addr), zap.String("version", releaseVersion))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		// stop the hub first so websocket handlers see their outboxes close
		_ = h.Send(sctx, hub.Shutdown{})
		return srv.Shutdown(sctx)
	})

	return g.Wait()
}

func openDecks(cfg *config.Config, log *zap.Logger) (decks.Store, error) {
	if cfg.DatabaseURL == "" {
		log.Info("deck storage in memory")
		return decks.NewMemoryStore(), nil
	}
	store, err := decks.OpenPostgres(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	log.Info("deck storage in postgres")
	return store, nil
}
