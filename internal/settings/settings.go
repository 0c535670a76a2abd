package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/conveydesk/convey-cli/internal/constants"
	"github.com/conveydesk/convey-cli/internal/credentials"
)

// sensitive information (not in configuration file)
const (
	APIKeyEnvVar = credentials.APIKeyVar
	EnvEnvVar    = "CONVEY_CLI_ENV"
)

const loadEnvErrorMessage = "Not able to load configuration from .env file, skipping this optional step.\n" +
	"CLI tool will read and verify individual environment variables (they MUST be exported).\n" +
	"If you want to use a .env file, check that it exists in the current directory or a parent directory,\n" +
	"or point at it explicitly with the --env flag."

const bindEnvErrorMessage = "Not able to bind environment variables that represent sensitive data.\n" +
	"Without them some commands may not work. Export them manually or set them via a .env file."

// Settings holds user and project configuration merged from the project
// settings file, environment variables, and flags.
type Settings struct {
	User    UserSettings
	Project ProjectSettings
}

// UserSettings stores per-user values sourced from the environment.
type UserSettings struct {
	APIKey      string
	Environment string
}

// ProjectSettings mirrors the convey.project.yaml file found at the
// project root. All fields are optional defaults for property file
// commands.
type ProjectSettings struct {
	Name                string `mapstructure:"name" yaml:"name"`
	DefaultCity         string `mapstructure:"default-city" yaml:"default-city"`
	DefaultPropertyType string `mapstructure:"default-property-type" yaml:"default-property-type"`
	DefaultPageSize     int    `mapstructure:"default-page-size" yaml:"default-page-size"`
	OutputFormat        string `mapstructure:"output-format" yaml:"output-format"`
	SolicitorName       string `mapstructure:"solicitor-name" yaml:"solicitor-name"`
}

// New initializes and loads settings from the `.env` file or system environment.
func New(logger *zerolog.Logger, v *viper.Viper) (*Settings, error) {
	envPath := v.GetString(Flags.CliEnvFile.Name)

	// try to load the .env file (fetch sensitive info)
	if err := LoadEnv(envPath); err != nil {
		// .env file is optional, so we log it as a debug message
		logger.Debug().Msg(loadEnvErrorMessage)
	}

	if err := BindEnv(v); err != nil {
		logger.Debug().Err(err).Msg(bindEnvErrorMessage)
	}

	if err := LoadSettingsIntoViper(v); err != nil {
		// the project settings file is optional for account-level commands
		logger.Debug().Err(err).Msg("no project settings file loaded")
	}

	project, err := loadProjectSettings(logger, v)
	if err != nil {
		return nil, err
	}

	return &Settings{
		User: UserSettings{
			APIKey:      v.GetString(APIKeyEnvVar),
			Environment: v.GetString(EnvEnvVar),
		},
		Project: project,
	}, nil
}

func BindEnv(v *viper.Viper) error {
	envVars := []string{
		APIKeyEnvVar,
		EnvEnvVar,
	}

	for _, variable := range envVars {
		if err := v.BindEnv(variable); err != nil {
			return fmt.Errorf("failed to bind environment variable: %s", variable)
		}
	}

	v.AutomaticEnv() // Ensure variables are picked up
	return nil
}

func LoadEnv(envPath string) error {
	if envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return fmt.Errorf("error loading file from %s: %w", envPath, err)
			}
			return nil
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("error getting working directory: %w", err)
	}

	foundEnvPath, err := findFileUpwards(cwd, constants.DefaultEnvFileName)
	if err != nil {
		return fmt.Errorf("error loading environment: %w", err)
	}

	if err := godotenv.Load(foundEnvPath); err != nil {
		return fmt.Errorf("error loading file from %s: %w", foundEnvPath, err)
	}
	return nil
}

// findFileUpwards walks from startDir towards the filesystem root looking
// for fileName.
func findFileUpwards(startDir, fileName string) (string, error) {
	dir := startDir

	for {
		filePath := filepath.Join(dir, fileName)

		if info, err := os.Stat(filePath); err == nil && !info.IsDir() {
			return filePath, nil
		}

		parentDir := filepath.Dir(dir)
		if parentDir == dir {
			break // Reached the root directory.
		}
		dir = parentDir
	}
	return "", fmt.Errorf("file %s not found in any parent directory starting from %s", fileName, startDir)
}

func loadProjectSettings(logger *zerolog.Logger, v *viper.Viper) (ProjectSettings, error) {
	var project ProjectSettings
	if err := v.UnmarshalKey(ProjectSettingName, &project); err != nil {
		return ProjectSettings{}, fmt.Errorf("not possible to unmarshal project settings: %w", err)
	}

	if project.DefaultPageSize < 0 {
		return ProjectSettings{}, fmt.Errorf("default-page-size must not be negative, got %d", project.DefaultPageSize)
	}
	if project.DefaultPageSize > constants.MaxPaginationLimit {
		logger.Debug().Int("default-page-size", project.DefaultPageSize).
			Msgf("default-page-size exceeds the API maximum, clamping to %d", constants.MaxPaginationLimit)
		project.DefaultPageSize = constants.MaxPaginationLimit
	}

	switch project.OutputFormat {
	case "", OutputFormatTable, OutputFormatJSON:
	default:
		return ProjectSettings{}, fmt.Errorf("unknown output-format %q, expected %q or %q",
			project.OutputFormat, OutputFormatTable, OutputFormatJSON)
	}

	return project, nil
}
