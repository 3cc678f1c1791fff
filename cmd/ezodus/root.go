package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/xhad/ezodus/internal/logging"
	cfgPkg "github.com/xhad/ezodus/pkg/config"
	"github.com/xhad/ezodus/pkg/service"
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ezodus",
		Short: "Brand voice analysis and social post generation",
		Long: `ezodus reads a brand's page, describes its voice with Gemini, and writes
illustrated social posts in that voice.

Credentials are read from the environment: GEMINI_API_KEY, or
GOOGLE_CLIENT_EMAIL and GOOGLE_PRIVATE_KEY for a service account.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringP("config", "c", "", "Path to config file")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewPostCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig reads and validates the config named by --config.
func loadConfig(cmd *cobra.Command) (*cfgPkg.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg, err := cfgPkg.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return nil, fmt.Errorf("invalid configuration:\n  %s", strings.Join(msgs, "\n  "))
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg *cfgPkg.Config, w io.Writer) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	return logging.New(w, level, cfg.Log.JSON), nil
}

// setup loads config, builds the logger and the service. CLI commands log
// warnings only unless --verbose is set, so that output stays readable.
func setup(cmd *cobra.Command, quiet bool) (*cfgPkg.Config, *slog.Logger, *service.Service, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	if quiet {
		if verbose, _ := cmd.Flags().GetBool("verbose"); !verbose {
			cfg.Log.Level = "warn"
		}
	}

	logger, err := newLogger(cmd, cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, nil, err
	}

	svc, err := service.NewFromConfig(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, svc, nil
}
