package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"futureself/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func newServeCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP chat API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, l, err := loadConfig(root)
			if err != nil {
				return err
			}
			if err := cfg.ValidateServe(); err != nil {
				return err
			}
			if !cfg.Log.Development {
				gin.SetMode(gin.ReleaseMode)
			}

			a, err := newApp(cmd.Context(), cfg, l)
			if err != nil {
				return err
			}
			defer a.Close()

			handler := server.NewHandler(a.chat, a.resolver, l)
			httpServer := server.NewServer(cfg.Server.Port, server.NewRouter(handler, a.registry, l), l)

			errCh := make(chan error, 1)
			go func() {
				if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			select {
			case <-quit:
			case err := <-errCh:
				return err
			}

			l.Info("Shutting down HTTP server...")
			ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()

			if err := httpServer.Stop(ctx); err != nil {
				l.Errorw("Error during HTTP server shutdown", "error", err)
				return err
			}
			l.Info("Server stopped successfully")
			return nil
		},
	}
}
