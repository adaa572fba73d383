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

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/abhisek/devquest/internal/logging"
	"github.com/abhisek/devquest/internal/mockserver"
)

var serveMockCmd = &cobra.Command{
	Use:   "serve-mock",
	Short: "Run a local learning service for offline practice",
	Long: "serve-mock starts an in-memory stand-in for the learning service with a small Go\n" +
		"question bank. Point the client at it with --api-url http://<addr>/api.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Mock.Addr = addr
		}

		lvl, err := logging.ParseLevel(cfg.Log.Level)
		if err != nil {
			return err
		}
		logger := logging.New(os.Stderr, lvl)
		gin.SetMode(gin.ReleaseMode)

		srv := &http.Server{
			Addr:              cfg.Mock.Addr,
			Handler:           mockserver.New(mockserver.WithLogger(logger)).Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() { errCh <- srv.ListenAndServe() }()
		fmt.Printf("Mock learning service listening on http://%s/api (version %s)\n", cfg.Mock.Addr, mockserver.APIVersion)

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("serve: %w", err)
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		fmt.Println("Stopped.")
		return nil
	},
}

func init() {
	serveMockCmd.Flags().String("addr", "", "Listen address (overrides config mock.addr)")
}
