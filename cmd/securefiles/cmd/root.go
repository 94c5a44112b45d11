package cmd

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/templui/securefiles/internal/app"
	"github.com/templui/securefiles/internal/config"
	"github.com/templui/securefiles/internal/logger"
	"github.com/templui/securefiles/internal/service"
	"github.com/templui/securefiles/internal/tracing"
)

// Env is filled in before any subcommand runs and torn down by Close.
type Env struct {
	Version string

	Cfg *config.Config
	App *app.App

	shutdownTracing func(context.Context) error
}

func (e *Env) init(ctx context.Context, apiURL string, ephemeral bool) error {
	cfg := config.Load()
	if apiURL != "" {
		if cfg.SessionProfile == cfg.APIURL {
			cfg.SessionProfile = apiURL
		}
		cfg.APIURL = apiURL
	}
	if ephemeral {
		cfg.SessionDriver = "memory"
	}
	e.Cfg = cfg

	logger.Init(cfg.IsDevelopment(), cfg.LogLevel, cfg.SentryDSN)
	slog.Debug("config loaded", "config", cfg.Sanitized())

	shutdown, err := tracing.Init(ctx, cfg.AppName, e.Version, cfg.OTelEndpoint)
	if err != nil {
		slog.Warn("tracing disabled", "error", err)
	} else {
		e.shutdownTracing = shutdown
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	e.App = a
	return nil
}

// Close releases everything init acquired. Safe to call when init never ran.
func (e *Env) Close() {
	if e.App != nil {
		if err := e.App.Close(); err != nil {
			slog.Error("failed to close app", "error", err)
		}
	}
	if e.shutdownTracing != nil {
		if err := e.shutdownTracing(context.Background()); err != nil {
			slog.Error("failed to flush traces", "error", err)
		}
	}
	logger.Flush()
}

// requireSession restores the stored session or fails with ErrNotAuthenticated.
func (e *Env) requireSession(ctx context.Context) error {
	if !e.App.AuthService.Restore(ctx) {
		return service.ErrNotAuthenticated
	}
	return nil
}

func RootCmd(env *Env) *cobra.Command {
	var (
		apiURL    string
		ephemeral bool
	)

	rootCmd := &cobra.Command{
		Use:           "securefiles",
		Short:         "Store, list and share files on a Secure File Storage server",
		Version:       env.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return env.init(cmd.Context(), apiURL, ephemeral)
		},
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "API base URL (overrides API_URL)")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "keep the session in memory only")

	rootCmd.AddCommand(registerCmd(env))
	rootCmd.AddCommand(loginCmd(env))
	rootCmd.AddCommand(logoutCmd(env))
	rootCmd.AddCommand(whoamiCmd(env))
	rootCmd.AddCommand(refreshCmd(env))
	rootCmd.AddCommand(lsCmd(env))
	rootCmd.AddCommand(uploadCmd(env))
	rootCmd.AddCommand(downloadCmd(env))
	rootCmd.AddCommand(urlCmd(env))
	rootCmd.AddCommand(rmCmd(env))

	return rootCmd
}
