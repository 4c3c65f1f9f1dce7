package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/sluice/internal/cli"
	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/ports"
	"github.com/aretw0/sluice/pkg/schema"
)

// toggleLockTTL bounds how long a crashed invocation can hold a unit toggle.
const toggleLockTTL = 5 * time.Second

var unitsCmd = &cobra.Command{
	Use:   "units",
	Short: "Manage executable units",
	Long:  `List, inspect, create and toggle the units stored in the configured registry backend.`,
}

var unitsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all registered units",
	Run: func(cmd *cobra.Command, args []string) {
		stack := getStack(cmd)
		defer stack.Close()

		names, err := stack.Units.Names(cmd.Context())
		if err != nil {
			fmt.Printf("Error listing units: %v\n", err)
			os.Exit(1)
		}

		if len(names) == 0 {
			fmt.Println("No units registered.")
			return
		}
		sort.Strings(names)

		fmt.Println("Registered Units:")
		for _, name := range names {
			u, err := stack.Units.Lookup(cmd.Context(), name)
			if err != nil {
				continue
			}
			line := fmt.Sprintf("- %s (%s)", u.Name, u.Language)
			if !u.Enabled {
				line += " [disabled]"
			}
			if u.Description != "" {
				line += ": " + u.Description
			}
			fmt.Println(line)
		}
	},
}

var unitsInspectCmd = &cobra.Command{
	Use:   "inspect <name>",
	Short: "Inspect a unit definition",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		stack := getStack(cmd)
		defer stack.Close()

		u, err := lookupUnit(cmd.Context(), stack, args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		// Pretty print JSON
		data, err := json.MarshalIndent(u, "", "  ")
		if err != nil {
			fmt.Printf("Error marshaling unit: %v\n", err)
			os.Exit(1)
		}

		fmt.Println(string(data))
	},
}

var unitsAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create or replace a unit definition",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := args[0]
		source, _ := cmd.Flags().GetString("source")
		sourceFile, _ := cmd.Flags().GetString("file")
		language, _ := cmd.Flags().GetString("language")
		description, _ := cmd.Flags().GetString("description")
		disabled, _ := cmd.Flags().GetBool("disabled")

		if sourceFile != "" {
			data, err := os.ReadFile(sourceFile)
			if err != nil {
				fmt.Printf("Error reading source file: %v\n", err)
				os.Exit(1)
			}
			source = string(data)
		}

		unit := domain.Unit{
			Name:        name,
			Source:      source,
			Language:    domain.Language(language),
			Enabled:     !disabled,
			Description: description,
		}
		if err := schema.ValidateUnit(unit); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		stack := getStack(cmd)
		defer stack.Close()

		admin, ok := stack.Units.(ports.UnitAdmin)
		if !ok {
			fmt.Println("Error: the configured registry backend is read-only.")
			os.Exit(1)
		}
		if err := admin.Save(cmd.Context(), unit); err != nil {
			fmt.Printf("Error saving unit '%s': %v\n", name, err)
			os.Exit(1)
		}
		fmt.Printf("Unit '%s' saved.\n", name)
	},
}

var unitsEnableCmd = &cobra.Command{
	Use:   "enable <name>",
	Short: "Enable a unit",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := toggleUnit(cmd, args[0], true); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Unit '%s' enabled.\n", args[0])
	},
}

var unitsDisableCmd = &cobra.Command{
	Use:   "disable <name>",
	Short: "Disable a unit without removing it",
	Long:  `A disabled unit keeps its definition but no longer matches path segments, so they fall through to the remaining classifications.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := toggleUnit(cmd, args[0], false); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Unit '%s' disabled.\n", args[0])
	},
}

var unitsRmCmd = &cobra.Command{
	Use:   "rm <name>...",
	Short: "Remove one or more units",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		stack := getStack(cmd)
		defer stack.Close()

		admin, ok := stack.Units.(ports.UnitAdmin)
		if !ok {
			fmt.Println("Error: the configured registry backend is read-only.")
			os.Exit(1)
		}

		hasError := false
		for _, name := range args {
			if err := admin.Delete(cmd.Context(), name); err != nil {
				fmt.Printf("Error removing '%s': %v\n", name, err)
				hasError = true
			} else {
				fmt.Printf("Removed unit '%s'\n", name)
			}
		}

		if hasError {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(unitsCmd)
	unitsCmd.AddCommand(unitsLsCmd)
	unitsCmd.AddCommand(unitsInspectCmd)
	unitsCmd.AddCommand(unitsAddCmd)
	unitsCmd.AddCommand(unitsEnableCmd)
	unitsCmd.AddCommand(unitsDisableCmd)
	unitsCmd.AddCommand(unitsRmCmd)

	unitsAddCmd.Flags().StringP("source", "s", "", "Program text for the unit")
	unitsAddCmd.Flags().String("file", "", "Read the program text from a file instead")
	unitsAddCmd.Flags().StringP("language", "l", "", "Unit language: python, javascript, shell or lua (defaults to python)")
	unitsAddCmd.Flags().String("description", "", "Human-readable description for listings and tool catalogs")
	unitsAddCmd.Flags().Bool("disabled", false, "Register the unit without enabling it")
}

// lookupUnit fetches a unit, offering a near-miss suggestion when the name
// matches nothing.
func lookupUnit(ctx context.Context, stack *cli.Stack, name string) (domain.Unit, error) {
	u, err := stack.Units.Lookup(ctx, name)
	if err == nil {
		return u, nil
	}
	if errors.Is(err, domain.ErrUnitNotFound) {
		if names, nerr := stack.Units.Names(ctx); nerr == nil {
			if hint := cli.Suggest(name, names); hint != "" {
				return domain.Unit{}, fmt.Errorf("unknown unit %q (did you mean %q?)", name, hint)
			}
		}
		return domain.Unit{}, fmt.Errorf("unknown unit %q", name)
	}
	return domain.Unit{}, err
}

// toggleUnit flips a unit's enabled state, serializing the read-modify-write
// through the distributed locker when one is configured, as the HTTP admin
// surface does.
func toggleUnit(cmd *cobra.Command, name string, enabled bool) error {
	stack := getStack(cmd)
	defer stack.Close()
	ctx := cmd.Context()

	admin, ok := stack.Units.(ports.UnitAdmin)
	if !ok {
		return fmt.Errorf("the configured registry backend is read-only")
	}

	if stack.Locker != nil {
		unlock, err := stack.Locker.Lock(ctx, "unit:"+name, toggleLockTTL)
		if err != nil {
			return fmt.Errorf("could not acquire the toggle lock: %w", err)
		}
		defer func() {
			// Unlock on a fresh context: the command context may be done.
			if err := unlock(context.Background()); err != nil {
				fmt.Printf("Warning: unlock failed: %v\n", err)
			}
		}()
	}

	u, err := lookupUnit(ctx, stack, name)
	if err != nil {
		return err
	}
	u.Enabled = enabled
	return admin.Save(ctx, u)
}
