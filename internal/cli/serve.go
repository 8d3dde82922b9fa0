package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/depo-mc/depo/internal/api"
	"github.com/depo-mc/depo/pkg/download"
	"github.com/depo-mc/depo/pkg/resolve"
)

const shutdownTimeout = 5 * time.Second

// newServeCmd creates the serve command: run one resolution pass and
// expose the report over a small HTTP API.
func newServeCmd(opts *rootOpts) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve resolution status over HTTP",
		Long: `Run a resolution pass and serve its report over HTTP.

Endpoints:
  GET  /healthz    liveness probe
  GET  /status     last pass report
  GET  /conflicts  unresolved dependencies with reasons
  GET  /log        install log entries
  POST /resolve    run a new pass (409 while one is running)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot(opts)
			if err != nil {
				return err
			}
			logger := loggerFromContext(cmd.Context())

			run := func(ctx context.Context) (*resolve.Report, error) {
				return newResolver(ctx, snap).Run(ctx)
			}
			srv := api.NewServer(logger, run, &download.InstallLog{Path: snap.InstallLogPath})

			report, err := run(cmd.Context())
			if err != nil {
				return err
			}
			srv.SetReport(report)

			httpSrv := &http.Server{Addr: addr, Handler: srv.Router()}
			errCh := make(chan error, 1)
			go func() {
				logger.Info("serving status API", "addr", addr)
				errCh <- httpSrv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				return err
			case <-cmd.Context().Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := httpSrv.Shutdown(shutdownCtx); err != nil {
					return err
				}
				if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8440", "listen address")
	return cmd
}
