package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/recera/graphpanel/cmd/graphpanel/internal/config"
	"github.com/recera/graphpanel/cmd/graphpanel/internal/ui"
)

func newInitCommand() *cobra.Command {
	var path, service string
	var force bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a default graphpanel.yaml",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if service != "" {
				cfg.Service.BaseURL = service
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := config.Save(cfg, path, force); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Success("✅ Wrote "+path))
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "output", "o", config.FileName, "Where to write the config")
	cmd.Flags().StringVar(&service, "service-url", "", "Render Service base URL to record")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	return cmd
}
