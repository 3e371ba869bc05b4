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

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gitlab.com/testpaper/papergen/api"
	"gitlab.com/testpaper/papergen/internal/config"
	"gitlab.com/testpaper/papergen/internal/tracing"
)

const shutdownTimeout = 10 * time.Second

func NewServeCmd(open storeOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the subject REST API",
		Long:  `Starts the REST API on rest.port and serves it until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				port, _ := cmd.Flags().GetInt("port")
				if err := config.SetConfig("rest.port", port); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, open, config.GetConfig())
		},
	}

	cmd.Flags().IntP("port", "p", 0, "port to listen on (overrides rest.port)")

	return cmd
}

// serve runs the API until ctx is done, then drains in-flight requests.
func serve(ctx context.Context, open storeOpener, cfg *config.Config) error {
	shutdownTracer, err := tracing.InitTracer(ctx, cfg.Tracing)
	if err != nil {
		zlog.Warn("tracing disabled", zap.Error(err))
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			zlog.Warn("unable to flush traces", zap.Error(err))
		}
	}()

	store, err := open(ctx)
	if err != nil {
		return fmt.Errorf("unable to open store: %w", err)
	}
	defer store.Close()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Rest.Port),
		Handler:           api.SetupRouter(store.Subjects, cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("serving REST API", zap.String("addr", server.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("REST server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zlog.Info("shutting down REST API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
