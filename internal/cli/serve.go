package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/sprite-ai/revchat/internal/api"
	"github.com/sprite-ai/revchat/internal/format"
	"github.com/sprite-ai/revchat/internal/logger"
	"github.com/sprite-ai/revchat/internal/model"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP server exposing the revchat formatter and chat sessions.

Endpoints:
  GET  /health       Health check
  POST /api/format   Split content into text, code and annotation segments
  POST /api/analyze  Run the static review checks on code or a diff
  GET  /api/ws       WebSocket for interactive chat sessions`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("addr", "a", "", "address to listen on (default from server.addr)")
	serveCmd.Flags().IntP("port", "p", 0, "port to listen on (default from server.port)")
}

func runServe(cmd *cobra.Command, args []string) error {
	sc := cfg.Server
	if cmd.Flags().Changed("addr") {
		sc.Addr, _ = cmd.Flags().GetString("addr")
	}
	if cmd.Flags().Changed("port") {
		sc.Port, _ = cmd.Flags().GetInt("port")
	}

	mode, err := model.ParseAgentMode(cfg.UI.Mode)
	if err != nil {
		return err
	}
	review, err := newReviewBackend(cfg.Review)
	if err != nil {
		return err
	}

	srv := api.New(api.Options{
		Addr:         sc.ListenAddr(),
		ReadTimeout:  sc.ReadTimeout,
		WriteTimeout: sc.WriteTimeout,
		IdleTimeout:  sc.IdleTimeout,
		Mode:         mode,
		RateLimit: api.RateLimit{
			Enabled:           sc.RateLimit.Enabled,
			RequestsPerSecond: sc.RateLimit.RequestsPerSecond,
			Burst:             sc.RateLimit.Burst,
		},
	}, api.Backends{
		Chat:   newChatBackend(cfg.Chat),
		Review: review,
	}, format.NewCache(cfg.Format.CacheCapacity))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
