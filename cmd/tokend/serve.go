package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/tokend/internal/app"
	"github.com/dropDatabas3/tokend/internal/observability/logger"
)

func newServeCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Levanta el servidor HTTP del token endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load()
			if err != nil {
				return err
			}
			logger.Init(logger.Config{
				Env:         cfg.App.Env,
				Level:       cfg.App.LogLevel,
				ServiceName: cfg.App.ServiceName,
				Version:     version,
			})
			defer func() { _ = logger.Sync() }()
			log := logger.L()

			a, err := app.New(cfg, app.Options{Version: version})
			if err != nil {
				log.Error("startup failed", logger.Err(err))
				return err
			}
			defer func() { _ = a.Close() }()
			if a.Ephemeral {
				log.Warn("using an ephemeral signing key: tokens will not validate after a restart")
			}

			srv := &http.Server{
				Addr:              cfg.Server.Addr,
				Handler:           a.Handler,
				ReadHeaderTimeout: cfg.ReadHeaderTimeout(),
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				log.Info("listening",
					logger.String("addr", cfg.Server.Addr),
					logger.String("issuer", cfg.Token.Issuer),
					logger.Strings("grant_types", a.Endpoint.GrantTypes()),
				)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
				defer cancel()
				log.Info("shutting down")
				return srv.Shutdown(sctx)
			})
			return g.Wait()
		},
	}
}
