package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/openactive/models-lib/config"
)

// ConfigCmd represents the config command
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and initialize configuration",
	Long: `Display and manage modelgen configuration.

Configuration sources (in order of precedence):
1. Command line flags
2. Environment variables (MODELGEN_* prefix, e.g. MODELGEN_OUTPUT_DIR)
3. Project config (modelgen.toml, searched upwards from the working directory)
4. User config (~/.modelgen/modelgen.toml)
5. Default values

Examples:
  modelgen config show                 # Show current configuration
  modelgen config show --format json   # Show configuration in JSON format
  modelgen config where                # Show which files are consulted
  modelgen config init                 # Write defaults to ./modelgen.toml`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where configuration is loaded from",
	RunE:  runConfigWhere,
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default configuration",
	Long:  "Write the default configuration to path (default ./modelgen.toml). An existing file is rotated to .back1.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigInit,
}

var configFormat string

func init() {
	configShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json, yaml")

	ConfigCmd.AddCommand(configShowCmd)
	ConfigCmd.AddCommand(configWhereCmd)
	ConfigCmd.AddCommand(configInitCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	switch configFormat {
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config to JSON: %w", err)
		}
		fmt.Println(string(data))
	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config to YAML: %w", err)
		}
		fmt.Printf("# modelgen configuration\n%s", string(data))
	case "toml":
		data, err := config.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Printf("# modelgen configuration\n%s", string(data))
	default:
		return fmt.Errorf("unsupported format: %s (supported: toml, json, yaml)", configFormat)
	}
	return nil
}

func runConfigWhere(cmd *cobra.Command, args []string) error {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		pterm.Printf("  %s %s (--config)\n", pterm.LightGreen("✓"), path)
		return nil
	}
	for _, source := range []struct {
		label string
		path  string
	}{
		{"user", config.UserConfig()},
		{"project", config.ProjectConfig()},
	} {
		if source.path == "" {
			pterm.Printf("  %s %s: none found\n", pterm.Gray("·"), source.label)
			continue
		}
		if _, err := os.Stat(source.path); err != nil {
			pterm.Printf("  %s %s: %s (missing)\n", pterm.Gray("·"), source.label, source.path)
			continue
		}
		pterm.Printf("  %s %s: %s\n", pterm.LightGreen("✓"), source.label, source.path)
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.DefaultFileName
	if len(args) == 1 {
		path = args[0]
	}

	defaults, err := config.Defaults()
	if err != nil {
		return err
	}
	if err := config.Save(defaults, path, nil); err != nil {
		return err
	}
	pterm.Success.Printf("Wrote %s\n", path)
	return nil
}
