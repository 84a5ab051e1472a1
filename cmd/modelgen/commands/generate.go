package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/openactive/models-lib/generate"
	"github.com/openactive/models-lib/logger"
)

var (
	generateTargets []string
	generateOutput  string
	generateClean   bool
	generateWatch   bool
)

// GenerateCmd represents the generate command
var GenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate model libraries",
	Long: `Generate model libraries for each configured target.

Each target is written to <output dir>/<target>:
  typescript - type definitions and Joi schemas, including schema.org models
  dotnet     - C# classes deriving from Schema.NET
  go         - structs with JSON tags

Examples:
  modelgen generate                        # All targets from config
  modelgen generate -t typescript -t go    # Selected targets
  modelgen generate --clean                # Remove stale files first
  modelgen generate --watch                # Regenerate on change`,
	RunE: runGenerate,
}

func init() {
	GenerateCmd.Flags().StringSliceVarP(&generateTargets, "target", "t", nil, "Targets to generate (default: output.targets)")
	GenerateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "Output directory (default: output.dir)")
	GenerateCmd.Flags().BoolVar(&generateClean, "clean", false, "Remove each target directory before writing")
	GenerateCmd.Flags().BoolVarP(&generateWatch, "watch", "w", false, "Regenerate when the config or vocabulary changes")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, configPath, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts := generate.Options{
		Targets:  generateTargets,
		OutDir:   generateOutput,
		Clean:    generateClean,
		Progress: progressFor(cmd),
	}
	log := logger.ComponentLogger("generate")

	if generateWatch {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return explain(generate.Watch(ctx, cfg, configPath, opts, log))
	}

	_, err = generate.Run(cmd.Context(), cfg, opts, log)
	return explain(err)
}
