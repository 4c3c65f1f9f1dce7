package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/sluice/pkg/adapters/file"
)

// Starter definitions. The unit is Lua so the workspace evaluates without
// any interpreter on PATH.
const (
	initConfig = `# Sluice workspace configuration.
backends:
  registry:
    driver: file
    root: .
  blobs:
    driver: file
    root: .sluice/blobs
`

	initUnit = `if input == "" then
  return "Hello, stranger!"
end
return "Hello, " .. input .. "!"
`

	initUnitMeta = `description: Greets whatever flows in from the right
`

	initAliases = `aliases:
  hello: greet/name
`

	initVariables = `variables:
  name: world
`
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Scaffold a file-backed workspace with a starter pipeline",
	Long: `Init writes a sluice.yaml plus a small set of definitions into the target
directory (current directory by default): a Lua greeting unit, an alias
and a variable, wired so the first evaluation works out of the box.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}

		fmt.Printf("Scaffolding workspace in: %s\n", dir)
		if err := scaffoldWorkspace(dir); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		// Load the result back through the real registry; a scaffold the
		// engine cannot read should fail here, not on first eval.
		reg, err := file.NewRegistry(dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: scaffold does not load: %v\n", err)
			os.Exit(1)
		}
		names, err := reg.Units().Names(cmd.Context())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Done. %d unit(s) ready.\n", len(names))
		if dir == "." {
			fmt.Println("Try: sluice eval /hello")
		} else {
			fmt.Printf("Try: cd %s && sluice eval /hello\n", dir)
		}
	},
}

func scaffoldWorkspace(dir string) error {
	if _, err := os.Stat(filepath.Join(dir, "sluice.yaml")); err == nil {
		return fmt.Errorf("%s already has a sluice.yaml", dir)
	}
	if err := os.MkdirAll(filepath.Join(dir, "units"), 0755); err != nil {
		return err
	}

	files := map[string]string{
		"sluice.yaml":  initConfig,
		"aliases.yaml": initAliases,
		"vars.yaml":    initVariables,

		filepath.Join("units", "greet.lua"):  initUnit,
		filepath.Join("units", "greet.yaml"): initUnitMeta,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(initCmd)
}
