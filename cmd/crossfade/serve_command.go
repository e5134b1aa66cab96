package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/toinnnnn/avaliacao-bigdata/internal/adapters/rest"
	"github.com/toinnnnn/avaliacao-bigdata/internal/core/dashboard"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the persisted catalogs read-only over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger(cmd)
			if err != nil {
				return err
			}

			sigCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			store, err := ctx.openStore(sigCtx, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			addr := cfg.API.Bind
			if strings.TrimSpace(bind) != "" {
				addr = bind
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           rest.NewHandler(dashboard.NewCatalog(store, cfg.Tables()), logger),
				ReadHeaderTimeout: 15 * time.Second,
			}

			serverErr := make(chan error, 1)
			go func() {
				err := srv.ListenAndServe()
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
					return
				}
				serverErr <- nil
			}()
			logger.Info("dashboard api listening", "addr", addr)

			select {
			case err := <-serverErr:
				return err
			case <-sigCtx.Done():
				logger.Info("shutting down server")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (overrides api.bind)")
	return cmd
}
