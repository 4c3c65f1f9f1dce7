package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/sluice/internal/cli"
)

// evalCmd represents the eval command
var evalCmd = &cobra.Command{
	Use:   "eval [path]",
	Short: "Evaluate a path, or start the interactive loop",
	Long: `Evaluates a single pipeline path and prints the result, or, without a
path, starts the interactive one-path-per-line loop.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		debug, _ := cmd.Flags().GetBool("debug")

		if len(args) > 0 {
			input, _ := cmd.Flags().GetString("input")
			format, _ := cmd.Flags().GetString("format")
			err := cli.EvalOnce(cli.EvalOptions{
				ConfigPath: configPath,
				Path:       args[0],
				Input:      input,
				Debug:      debug,
				Format:     format,
			})
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		}

		headless, _ := cmd.Flags().GetBool("headless")
		watchMode, _ := cmd.Flags().GetBool("watch")
		err := cli.Execute(cli.RunOptions{
			ConfigPath: configPath,
			Debug:      debug,
			Headless:   headless,
			Watch:      watchMode,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(evalCmd)

	evalCmd.Flags().StringP("input", "i", "", "Seed input for the rightmost stage")
	evalCmd.Flags().BoolP("debug", "d", false, "Record and print the per-stage trace")
	evalCmd.Flags().StringP("format", "f", "", "Trace format: json, yaml, markdown or mermaid (with --debug)")
	evalCmd.Flags().Bool("headless", false, "Run the loop without prompts or banners (strict IO)")
	evalCmd.Flags().BoolP("watch", "w", false, "Reload file-backed definitions on change")

	// Make 'eval' the default if no command is provided.
	rootCmd.Run = evalCmd.Run
}
