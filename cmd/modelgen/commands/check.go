package commands

import (
	"github.com/spf13/cobra"

	"github.com/openactive/models-lib/errors"
	"github.com/openactive/models-lib/generate"
	"github.com/openactive/models-lib/logger"
)

// ErrOutOfDate is returned when generated output differs from a fresh run.
var ErrOutOfDate = errors.New("generated output is out of date")

var (
	checkTargets []string
	checkOutput  string
)

// CheckCmd represents the check command
var CheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify generated libraries are up to date",
	Long: `Generate every target in memory and compare it with the files on disk.

Source version header lines are ignored. Exits non-zero when any file is
changed, missing or extra, listing each one.

Examples:
  modelgen check             # Check all configured targets
  modelgen check -t dotnet   # Check one target`,
	RunE: runCheck,
}

func init() {
	CheckCmd.Flags().StringSliceVarP(&checkTargets, "target", "t", nil, "Targets to check (default: output.targets)")
	CheckCmd.Flags().StringVarP(&checkOutput, "output", "o", "", "Output directory (default: output.dir)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	result, err := generate.Run(cmd.Context(), cfg, generate.Options{
		Targets:  checkTargets,
		OutDir:   checkOutput,
		Check:    true,
		Progress: progressFor(cmd),
	}, logger.ComponentLogger("check"))
	if err != nil {
		return explain(err)
	}
	if !result.UpToDate() {
		return errors.WithHint(ErrOutOfDate, "run 'modelgen generate' and commit the result")
	}
	return nil
}
