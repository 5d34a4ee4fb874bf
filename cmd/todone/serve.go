package main

import (
	"context"
	"time"

	"github.com/ankitson/clankerhub/internal/logging"
	"github.com/ankitson/clankerhub/internal/mcpserver"
	"github.com/ankitson/clankerhub/internal/service"
	"github.com/ankitson/clankerhub/internal/web"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

const stopTimeout = 10 * time.Second

func serveCmd(c *cli) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web UI and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Web.Addr = addr
			}

			opts := []fx.Option{web.Module(cfg)}
			if !logging.DebugEnabled() {
				opts = append(opts, fx.NopLogger)
			}
			app := fx.New(opts...)
			if err := app.Start(cmd.Context()); err != nil {
				return err
			}
			select {
			case <-app.Done():
			case <-cmd.Context().Done():
			}
			stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
			defer cancel()
			return app.Stop(stopCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides web.addr)")
	return cmd
}

func mcpCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the task tools over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// stdout carries the protocol, so no activity printer here.
			return c.withRuntime(nil, func(rt *service.Runtime) error {
				log.Debug().Msg("mcp server ready")
				return mcpserver.New(rt.Service, version).Run(cmd.Context())
			})
		},
	}
}
