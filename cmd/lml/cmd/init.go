package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init <name>",
	Short: "Scaffold a new lml project",
	Long: `Init creates a project directory containing a config.yml and a
stub entrypoint script, ready to run with "lml run".`,
	Args: cobra.ExactArgs(1),
	RunE: initProject,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

const defaultConfig = `entrypoint: main.lml
containers:
  node:
    runtime: nodejs
    packageManager: npm
`

const defaultEntrypoint = `str greeting = "hello from lml";

print(greeting);
`

func initProject(_ *cobra.Command, args []string) error {
	name := args[0]

	if err := os.MkdirAll(name, 0o755); err != nil {
		return fmt.Errorf("creating project directory: %w", err)
	}

	configPath := filepath.Join(name, "config.yml")
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("%s already exists", configPath)
	}
	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", configPath, err)
	}

	entryPath := filepath.Join(name, "main.lml")
	if err := os.WriteFile(entryPath, []byte(defaultEntrypoint), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", entryPath, err)
	}

	fmt.Printf("created %s\n", name)
	return nil
}
