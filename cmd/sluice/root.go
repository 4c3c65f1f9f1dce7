package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/sluice/internal/cli"
)

var rootCmd = &cobra.Command{
	Use:   "sluice",
	Short: "Sluice is a path pipeline evaluation engine",
	Long: `Sluice evaluates slash-delimited paths as data pipelines: segments run
right to left, each one transforming the output of the one before it.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", cli.DefaultConfigPath, "Configuration file with backends and seeded definitions")
}
