package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/hedwig/internal/logging"
	"github.com/pdiddy/hedwig/internal/search"
	"github.com/pdiddy/hedwig/internal/server"
	"github.com/pdiddy/hedwig/pkg/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST API for the web frontend",
	Long: `Serve starts the HTTP server exposing the aggregated paper search:
POST and GET /api/search/papers run a search, /health reports liveness.
The server shuts down gracefully on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8000)")

	rootCmd.AddCommand(serveCmd)
}

// serverConfig assembles the server configuration from config file and env.
func serverConfig() types.ServerConfig {
	cfg := types.ServerConfig{
		Addr:            ":8000",
		AllowedOrigins:  []string{"http://localhost:3000", "http://localhost:5173"},
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    60 * time.Second,
		ShutdownTimeout: 15 * time.Second,
	}
	if addr := viper.GetString("server.addr"); addr != "" {
		cfg.Addr = addr
	}
	if origins := viper.GetStringSlice("server.allowed_origins"); len(origins) > 0 {
		cfg.AllowedOrigins = origins
	}
	if t := viper.GetDuration("server.read_timeout"); t > 0 {
		cfg.ReadTimeout = t
	}
	if t := viper.GetDuration("server.write_timeout"); t > 0 {
		cfg.WriteTimeout = t
	}
	if t := viper.GetDuration("server.shutdown_timeout"); t > 0 {
		cfg.ShutdownTimeout = t
	}
	return cfg
}

func runServe(cmd *cobra.Command, args []string) error {
	logger, err := logging.New(types.LogConfig{
		Level:  viper.GetString("log.level"),
		Format: viper.GetString("log.format"),
	})
	if err != nil {
		return err
	}
	defer logger.Sync()

	srvCfg := serverConfig()
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		srvCfg.Addr = addr
	}

	searchCfg := searchConfig()
	client := &http.Client{Timeout: searchCfg.Timeout}
	sources := search.NewSources(client, searchCfg, logger)

	handler := server.NewHandler(sources, searchCfg, logger)
	router := server.NewRouter(handler, srvCfg.AllowedOrigins, logger)

	srv := &http.Server{
		Addr:         srvCfg.Addr,
		Handler:      router,
		ReadTimeout:  srvCfg.ReadTimeout,
		WriteTimeout: srvCfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", srvCfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), srvCfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
