package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nervecenter/nerve-center/internal/app"
	"github.com/nervecenter/nerve-center/internal/httpapi"
)

// NewServeCmd starts the HTTP API (job/lock/session/search routes plus the
// notepad websocket stream) over a long-lived Facade, the hosted-mode entry
// point multiple agent processes talk to concurrently.
func NewServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (jobs, locks, sessions, search, notepad stream)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			f, closeFacade, err := openFacade(ctx, cmd)
			if err != nil {
				return cmdErr(err)
			}
			defer closeFacade()

			env := app.LoadEnvConfig()
			if env.AppSessionSecret == "" {
				slog.Warn("APP_SESSION_SECRET is unset; JWT bearer tokens will all fail verification")
			}

			cfg := httpapi.DefaultConfig()
			if addr != "" {
				cfg.Addr = addr
			}
			cfg.AppSessionSecret = env.AppSessionSecret

			srv := httpapi.New(cfg, f, slog.Default())

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return cmdErr(err)
				}
				return nil
			case <-sigCh:
				slog.Info("shutting down httpapi")
				return cmdErr(srv.Shutdown(context.Background()))
			}
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default :8085)")
	return cmd
}
