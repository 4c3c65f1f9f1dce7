package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/sluice/internal/cli"
	"github.com/aretw0/sluice/internal/logging"
	"github.com/aretw0/sluice/pkg/cas"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the content store",
	Long:  `Put, fetch and list payloads in the content-addressed store named by the config.`,
}

var storePutCmd = &cobra.Command{
	Use:   "put [text]",
	Short: "Store a payload and print its content ID",
	Long:  `Stores the argument, or Stdin when no argument is given, and prints the hex identifier a path can reference it by.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		data, err := payloadFrom(args)
		if err != nil {
			fmt.Printf("Error reading payload: %v\n", err)
			os.Exit(1)
		}

		stack := getStack(cmd)
		defer stack.Close()

		id, err := stack.Engine.Content().Put(cmd.Context(), data)
		if err != nil {
			fmt.Printf("Error storing payload: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(id)
	},
}

var storeGetCmd = &cobra.Command{
	Use:   "get <content-id>",
	Short: "Fetch a payload by content ID",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := cas.Normalize(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		stack := getStack(cmd)
		defer stack.Close()

		data, err := stack.Engine.Content().Resolve(cmd.Context(), id)
		if err != nil {
			fmt.Printf("Error fetching '%s': %v\n", args[0], err)
			os.Exit(1)
		}
		os.Stdout.Write(data)
	},
}

var storeHashCmd = &cobra.Command{
	Use:   "hash [text]",
	Short: "Print the content ID a payload would be stored under",
	Long:  `Hashes the argument, or Stdin when no argument is given, without storing anything.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		data, err := payloadFrom(args)
		if err != nil {
			fmt.Printf("Error reading payload: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(cas.Generate(data))
	},
}

var storeLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all stored content IDs",
	Run: func(cmd *cobra.Command, args []string) {
		stack := getStack(cmd)
		defer stack.Close()

		ids, err := stack.Engine.Content().List(cmd.Context())
		if err != nil {
			fmt.Printf("Error listing content: %v\n", err)
			os.Exit(1)
		}

		if len(ids) == 0 {
			fmt.Println("No content stored.")
			return
		}

		for _, id := range ids {
			fmt.Println(id)
		}
	},
}

func init() {
	rootCmd.AddCommand(storeCmd)
	storeCmd.AddCommand(storePutCmd)
	storeCmd.AddCommand(storeGetCmd)
	storeCmd.AddCommand(storeHashCmd)
	storeCmd.AddCommand(storeLsCmd)
}

// payloadFrom returns the single argument, or all of Stdin when there is none.
func payloadFrom(args []string) ([]byte, error) {
	if len(args) > 0 {
		return []byte(args[0]), nil
	}
	return io.ReadAll(os.Stdin)
}

// getStack builds the engine stack from the configured backends.
// The caller owns Close.
func getStack(cmd *cobra.Command) *cli.Stack {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := cli.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	stack, err := cli.BuildStack(cfg, logging.NewNop(), false)
	if err != nil {
		fmt.Printf("Error initializing engine: %v\n", err)
		os.Exit(1)
	}
	return stack
}
