package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/recera/graphpanel/cmd/graphpanel/internal/config"
	"github.com/recera/graphpanel/internal/logger"
	"github.com/recera/graphpanel/pkg/renderservice"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

// skipConfig marks commands that run without loading graphpanel.yaml
const skipConfig = "skip-config"

// app carries what every command shares once configuration is loaded
type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	closer io.Closer
}

func main() {
	if err := newRootCommand(&app{}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand(a *app) *cobra.Command {
	var cfgFile, dir string
	var service, logLevel, logFormat string

	rootCmd := &cobra.Command{
		Use:   "graphpanel",
		Short: "graphpanel - render panel for a remote graph Render Service",
		Long: `graphpanel lists the graphs a Render Service knows, renders them as SVG
(synchronously or as polled background jobs), and shows the result in a
browser page or a terminal with pan and zoom.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipConfig] != "" {
				return nil
			}
			overrides := map[string]any{}
			if cmd.Flags().Changed("service") {
				overrides["service.base_url"] = service
			}
			if cmd.Flags().Changed("log-level") {
				overrides["log.level"] = logLevel
			}
			if cmd.Flags().Changed("log-format") {
				overrides["log.format"] = logFormat
			}
			cfg, err := config.Load(config.LoadOptions{File: cfgFile, Dir: dir, Overrides: overrides})
			if err != nil {
				return err
			}
			closer, err := logger.Init(cfg.Log)
			if err != nil {
				return err
			}
			a.cfg, a.log, a.closer = cfg, logger.Logger, closer
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.closer != nil {
				return a.closer.Close()
			}
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "Config file (default ./graphpanel.yaml)")
	flags.StringVar(&dir, "dir", ".", "Project directory holding graphpanel.yaml and .env")
	flags.StringVarP(&service, "service", "s", "", "Render Service base URL")
	flags.StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	flags.StringVar(&logFormat, "log-format", "", "Log format (console, json)")

	rootCmd.AddCommand(newServeCommand(a))
	rootCmd.AddCommand(newBuildCommand(a))
	rootCmd.AddCommand(newListCommand(a))
	rootCmd.AddCommand(newRenderCommand(a))
	rootCmd.AddCommand(newBrowseCommand(a))
	rootCmd.AddCommand(newInitCommand())

	return rootCmd
}

// client returns a Render Service client for the configured base URL
func (a *app) client() (*renderservice.Client, error) {
	return a.clientWith(a.log)
}

func (a *app) clientWith(log zerolog.Logger) (*renderservice.Client, error) {
	return renderservice.New(a.cfg.Service.BaseURL,
		renderservice.WithTimeout(a.cfg.Service.Timeout),
		renderservice.WithLogger(log),
	)
}
