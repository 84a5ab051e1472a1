package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/openactive/models-lib/generate"
	"github.com/openactive/models-lib/logger"
)

var dumpFoundational bool

// DumpCmd represents the dump command
var DumpCmd = &cobra.Command{
	Use:   "dump <dir>",
	Short: "Write the merged vocabulary as JSON",
	Long: `Load the base vocabulary, merge every extension and write the result:

  namespaces.json  prefix table
  models.json      models with resolved parents and inheritance trees
  enums.json       enumerations
  all.json         everything above in one document

Examples:
  modelgen dump ./dump                  # Base vocabulary plus extensions
  modelgen dump ./dump --foundational   # Also merge schema.org`,
	Args: cobra.ExactArgs(1),
	RunE: runDump,
}

func init() {
	DumpCmd.Flags().BoolVar(&dumpFoundational, "foundational", false, "Merge the foundational vocabulary as an extension")
}

func runDump(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	vctx, err := generate.RunDump(cmd.Context(), cfg, args[0], generate.DumpOptions{
		Foundational: dumpFoundational,
	}, logger.ComponentLogger("dump"))
	if err != nil {
		return explain(err)
	}

	pterm.Printf("✅ Dumped %s models and %s enums to %s\n",
		pterm.Green(len(vctx.Models)), pterm.Green(len(vctx.Enums)), args[0])
	return nil
}
