package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/TheMichaelB/seedrecover/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a configuration file with the defaults",
	Example: `  seedrecover config init
  seedrecover config init ~/.config/seedrecover/seedrecover.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		printJSON(cfg)
		return nil
	},
}

var configForce bool

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd)

	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false,
		"Overwrite an existing file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := "seedrecover.yaml"
	if len(args) == 1 {
		path = args[0]
	}

	if _, err := os.Stat(path); err == nil && !configForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := config.SaveExample(path); err != nil {
		return err
	}

	printSuccess("Configuration written to %s", path)
	return nil
}
