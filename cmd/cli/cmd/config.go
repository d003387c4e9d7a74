// Package cmd - config command
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"import-cost/internal/config"
)

var configFormat string

// configCmd manages configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration after the config file and IMPORT_COST_*
environment variables have been applied.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := config.Get().Marshal(configFormat)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		if configFormat != "yaml" {
			fmt.Fprintln(cmd.OutOrStdout())
		}
		return err
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultPath()
		if len(args) > 0 {
			path = args[0]
		}
		if err := config.Default().Save(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

func init() {
	configShowCmd.Flags().StringVar(&configFormat, "format", "yaml", "output format (yaml, json)")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
