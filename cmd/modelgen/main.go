package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openactive/models-lib/cmd/modelgen/commands"
	"github.com/openactive/models-lib/errors"
	"github.com/openactive/models-lib/logger"
)

var rootCmd = &cobra.Command{
	Use:   "modelgen",
	Short: "modelgen - OpenActive model library generator",
	Long: `modelgen - Generate model libraries from the OpenActive vocabulary.

modelgen loads the base data models, merges extension vocabularies such as
the OpenActive Beta Extension, resolves inheritance and field types, and
renders model classes for each configured target language.

Available commands:
  generate - Generate model libraries
  check    - Verify generated libraries are up to date
  dump     - Write the merged vocabulary as JSON
  config   - Show and initialize configuration
  version  - Show version information

Examples:
  modelgen generate                    # Generate every configured target
  modelgen generate -t go -o ./out     # Only Go, into ./out/go
  modelgen generate --watch            # Regenerate on vocabulary changes
  modelgen check                       # Exit non-zero if output is stale`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonOutput, _ := cmd.Flags().GetBool("json")
		if err := logger.Initialize(jsonOutput, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	rootCmd.PersistentFlags().Bool("json", false, "Emit logs and progress as JSON")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (default: modelgen.toml found from the working directory)")

	rootCmd.AddCommand(commands.GenerateCmd)
	rootCmd.AddCommand(commands.CheckCmd)
	rootCmd.AddCommand(commands.DumpCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintf(os.Stderr, "hint: %s\n", hint)
		}
		os.Exit(commands.ExitCode(err))
	}
}
