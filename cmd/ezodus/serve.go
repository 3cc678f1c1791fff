package main

import (
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xhad/ezodus/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve the brand voice and post endpoints:

  POST /api/brand-voice   (also /.netlify/functions/analyzeBrandVoice)
  POST /api/posts         (also /.netlify/functions/generatePost)
  GET  /health`,
		RunE: runServeCmd,
	}

	cmd.Flags().String("addr", "", "Listen address (overrides config and PORT)")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, logger, svc, err := setup(cmd, false)
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); !verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := server.New(server.Config{
		Addr:            cfg.Server.Addr,
		CORSOrigin:      cfg.Server.CORSOrigin,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, svc, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}
