package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conveydesk/convey-cli/internal/constants"
)

// Config names (YAML field paths)
const (
	ProjectSettingName = "project"

	OutputFormatTable = "table"
	OutputFormatJSON  = "json"
)

type Flag struct {
	Name  string
	Short string
}

type flagNames struct {
	ProjectRoot      Flag
	CliEnvFile       Flag
	Verbose          Flag
	Environment      Flag
	Output           Flag
	NonInteractive   Flag
	SkipConfirmation Flag
}

var Flags = flagNames{
	ProjectRoot:      Flag{"project-root", "R"},
	CliEnvFile:       Flag{"env", "e"},
	Verbose:          Flag{"verbose", "v"},
	Environment:      Flag{"environment", "E"},
	Output:           Flag{"output", "o"},
	NonInteractive:   Flag{"non-interactive", ""},
	SkipConfirmation: Flag{"yes", "y"},
}

// AddOutputFlag registers the shared --output flag on listing commands.
func AddOutputFlag(cmd *cobra.Command) {
	cmd.Flags().StringP(Flags.Output.Name, Flags.Output.Short, OutputFormatTable,
		fmt.Sprintf("Output format, one of %q or %q", OutputFormatTable, OutputFormatJSON))
}

// AddSkipConfirmation registers the shared --yes flag on destructive commands.
func AddSkipConfirmation(cmd *cobra.Command) {
	cmd.Flags().BoolP(Flags.SkipConfirmation.Name, Flags.SkipConfirmation.Short, false,
		"If set, the command will skip the confirmation prompt and proceed with the operation even if it is potentially destructive")
}

func mergeConfigToViper(v *viper.Viper, filePath string) error {
	v.SetConfigFile(filePath)
	err := v.MergeInConfig()
	if err != nil {
		return fmt.Errorf("error loading config file %s: %w", filePath, err)
	}
	return nil
}

// LoadSettingsIntoViper loads the project settings file (if found) and
// merges its values into Viper.
func LoadSettingsIntoViper(v *viper.Viper) error {
	projectSettingsPath, err := getProjectSettingsPath(v)
	if err != nil {
		return fmt.Errorf("failed to find project settings (%s): %w", constants.DefaultProjectSettingsFileName, err)
	}

	v.SetConfigType("yaml")
	if err := mergeConfigToViper(v, projectSettingsPath); err != nil {
		return fmt.Errorf("failed to load project settings: %w", err)
	}

	return nil
}

func getProjectSettingsPath(v *viper.Viper) (string, error) {
	if root := v.GetString(Flags.ProjectRoot.Name); root != "" {
		path := filepath.Join(root, constants.DefaultProjectSettingsFileName)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
		return "", fmt.Errorf("no %s in project root %s", constants.DefaultProjectSettingsFileName, root)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %w", err)
	}

	return findFileUpwards(cwd, constants.DefaultProjectSettingsFileName)
}
