package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/bisegni/rowfdw/pkg/mockserver"
)

var (
	ServeAddr   string
	ServeAPIKey string
)

var serveCmd = &cobra.Command{
	Use:   "serve <fixture>",
	Short: "Serve a fixture through the remote row API",
	Long: `Run a local stand-in for the remote row API, backed by a YAML fixture.
Point a server at it with api_url=http://<addr>.

Examples:
  rowfdw serve fixture.yaml
  rowfdw serve fixture.yaml --addr 127.0.0.1:9000 --api-key secret`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fixture, err := mockserver.LoadFixture(args[0])
		if err != nil {
			return err
		}

		srv := mockserver.New(fixture, mockserver.WithAPIKey(ServeAPIKey), mockserver.WithLogger(logger))
		httpServer := &http.Server{
			Addr:              ServeAddr,
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- httpServer.ListenAndServe()
		}()
		fmt.Fprintf(cmd.OutOrStdout(), "Serving %d table(s) on %s\n", len(fixture.Tables), ServeAddr)

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-cmd.Context().Done():
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		stats := srv.Stats()
		logger.Info("server stopped", "list_calls", stats.ListCalls, "fetch_calls", stats.FetchCalls)
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&ServeAddr, "addr", "127.0.0.1:8080", "Listen address")
	serveCmd.Flags().StringVar(&ServeAPIKey, "api-key", "", "Require this bearer token (empty accepts any)")
}
