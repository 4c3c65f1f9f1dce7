package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/sluice/internal/validator"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the registered definitions for consistency",
	Long: `Walks every alias chain and reports definitions that are certain to fail
at evaluation time: schema violations, alias cycles, content references that
are not stored, and unrecognized type extensions.`,
	Run: func(cmd *cobra.Command, args []string) {
		stack := getStack(cmd)
		defer stack.Close()

		err := validator.Check(cmd.Context(), stack.Units, stack.Aliases, stack.Variables, stack.Engine.Content())
		if err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Definitions are valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
