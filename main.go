package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tasks-api/config"
	"tasks-api/database"
	"tasks-api/handlers"
	"tasks-api/models"
	"tasks-api/utilities"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const readHeaderTimeout = 10 * time.Second

func main() {
	if err := newRootCmd(viper.New()).Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the server command; its flags are bound into v.
func newRootCmd(v *viper.Viper) *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:          "tasks-api",
		Short:        "JSON HTTP API for managing tasks stored in PostgreSQL",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.LoadEnvFile(envFile, os.Getenv("APP_ENV"))
			if err != nil {
				utilities.LogInfo("No .env file loaded (%v), continuing with the environment", err)
			} else if loaded {
				utilities.LogInfo("Loaded environment from %s", envFile)
			}

			cfg, err := config.Load(v)
			if err != nil {
				utilities.LogError(err, "Invalid configuration")
				return err
			}
			utilities.InitLogger(cfg.LogLevel)
			utilities.LogInfo("Environment: %s", cfg.AppEnv)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", ".env", "path of the .env file to load outside production")
	cmd.Flags().String("port", "", "port to listen on (overrides SERVER_PORT)")
	if err := v.BindPFlag("server_port", cmd.Flags().Lookup("port")); err != nil {
		panic(err)
	}

	return cmd
}

// run serves the API until ctx is cancelled, then shuts the server down.
func run(ctx context.Context, cfg *config.Config) error {
	db, err := database.ConnectPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	taskHandler := handlers.NewTaskHandler(models.NewTaskRepository(db))

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           LoadRoutes(cfg.Server, taskHandler),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		utilities.LogInfo("Server started on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	utilities.LogInfo("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}
