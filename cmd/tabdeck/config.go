package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/tabdeck/internal/config"
	"github.com/vango-dev/tabdeck/internal/errors"
)

func configCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage tabdeck.yaml",
	}
	cmd.AddCommand(configInitCmd(configPath), configShowCmd(configPath))
	return cmd
}

func configInitCmd(configPath *string) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with default values",
		Long: `Write a config file with default values.

Examples:
  tabdeck config init
  tabdeck config init --config ~/.config/tabdeck/tabdeck.yaml
  tabdeck config init --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := *configPath
			if _, err := os.Stat(path); err == nil && !force {
				return errors.Newf(errors.CategoryCLI, "%s already exists", path).
					WithSuggestion("Use --force to overwrite it")
			}
			if err := config.New().SaveTo(path); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Wrote %s", path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	return cmd
}

func configShowCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefault(*configPath)
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
