package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/openactive/models-lib/config"
	"github.com/openactive/models-lib/errors"
	"github.com/openactive/models-lib/generate"
)

// Exit codes
const (
	ExitFailure = 1
	// ExitVocabulary means the vocabulary data itself is inconsistent
	ExitVocabulary = 2
)

// ExitCode maps a command error to the process exit status.
func ExitCode(err error) int {
	if errors.IsFatalVocabularyError(err) {
		return ExitVocabulary
	}
	return ExitFailure
}

// explain adds a hint to errors caused by the vocabulary data, so they are
// not mistaken for tool or environment failures.
func explain(err error) error {
	if errors.IsFatalVocabularyError(err) {
		return errors.WithHint(err, "the vocabulary data is inconsistent: fix the model or extension named above, then regenerate")
	}
	return err
}

// loadConfig loads the file named by --config, or the merged cascade.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		cfg, err := config.LoadFromFile(path)
		return cfg, path, err
	}
	cfg, err := config.Load()
	return cfg, config.ProjectConfig(), err
}

// progressFor picks the emitter matching the global output flags.
func progressFor(cmd *cobra.Command) generate.ProgressEmitter {
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return generate.NewJSONEmitter(os.Stdout)
	}
	verbosity, _ := cmd.Flags().GetCount("verbose")
	return generate.NewCLIEmitter(verbosity)
}
