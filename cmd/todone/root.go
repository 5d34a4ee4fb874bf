package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/ankitson/clankerhub/internal/config"
	"github.com/ankitson/clankerhub/internal/logging"
	"github.com/ankitson/clankerhub/internal/render"
	"github.com/ankitson/clankerhub/internal/service"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// version is stamped at build time with -ldflags.
var version = "dev"

var defaultConfigPath = filepath.Join(config.DefaultDir, "config.yaml")

// cli holds the persistent flags shared by every command.
type cli struct {
	cfgFile string
	debug   bool
	quiet   bool
	noWait  bool
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "todone",
		Short:         "todone researches, plans and tracks your tasks",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logging.Init(c.debug)
			if err := config.LoadEnv("."); err != nil {
				log.Warn().Err(err).Msg("load .env")
			}
		},
	}
	root.PersistentFlags().StringVar(&c.cfgFile, "config", defaultConfigPath, "config file path")
	root.PersistentFlags().BoolVar(&c.debug, "debug", false, "enable debug logging")
	root.PersistentFlags().BoolVarP(&c.quiet, "quiet", "q", false, "do not print agent activity")
	root.PersistentFlags().BoolVar(&c.noWait, "no-wait", false, "fail instead of waiting when another todone holds the data directory")

	root.AddCommand(
		addCmd(c),
		listCmd(c),
		showCmd(c),
		deleteCmd(c),
		approveCmd(c),
		modifyCmd(c),
		answerCmd(c),
		completeCmd(c),
		executeCmd(c),
		addSubtaskCmd(c),
		blockCmd(c),
		metricCmd(c),
		progressCmd(c),
		skillsCmd(c),
		suggestCmd(c),
		eventsCmd(c),
		exportCmd(c),
		importCmd(c),
		serveCmd(c),
		mcpCmd(c),
	)
	return root
}

func (c *cli) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.cfgFile)
	if err != nil {
		return config.Config{}, err
	}
	log.Debug().Str("config", c.cfgFile).Str("provider", cfg.Agent.Provider).Msg("config loaded")
	return cfg, nil
}

// withRuntime opens the runtime, streams agent activity to out unless
// quiet and runs fn.
func (c *cli) withRuntime(out io.Writer, fn func(rt *service.Runtime) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	rt, err := service.Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			log.Warn().Err(err).Msg("close runtime")
		}
	}()
	rt.SetNoWait(c.noWait)
	if !c.quiet && out != nil {
		rt.Bus.Subscribe(render.NewPrinter(out).Handle)
	}
	return fn(rt)
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
