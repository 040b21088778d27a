package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dgmtsproject/dgmts-sub001/internal/config"
)

var (
	configOut   string
	configForce bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and scaffold configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the built-in default configuration as YAML",
	Long: `Writes the built-in defaults to a YAML file. Add instruments to it and
pass it back with --config.

Example:
  dgmts config init --out dgmts.yaml`,
	RunE: runConfigInit,
}

func init() {
	configInitCmd.Flags().StringVarP(&configOut, "out", "o", "dgmts.yaml", "output path")
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if !configForce {
		if _, err := os.Stat(configOut); err == nil {
			return fmt.Errorf("%s already exists, use --force to overwrite", configOut)
		}
	}
	if err := config.Default().Save(configOut); err != nil {
		return err
	}
	logger.Info("wrote default config", zap.String("path", configOut))
	fmt.Fprintln(cmd.OutOrStdout(), configOut)
	return nil
}
