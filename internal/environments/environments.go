package environments

import (
	"embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

const (
	EnvVarEnv = "CONVEY_CLI_ENV"

	EnvVarUIURL      = "CONVEY_CLI_UI_URL"
	EnvVarAuthBase   = "CONVEY_CLI_AUTH_URL"
	EnvVarClientID   = "CONVEY_CLI_CLIENT_ID"
	EnvVarGraphQLURL = "CONVEY_CLI_GRAPHQL_URL"
	EnvVarAPIBase    = "CONVEY_CLI_API_URL"

	DefaultEnv = "PRODUCTION"
)

//go:embed environments.yaml
var envFileContent embed.FS

// EnvironmentSet holds the endpoints for one named platform environment.
type EnvironmentSet struct {
	UIURL      string `yaml:"CONVEY_CLI_UI_URL"`
	AuthBase   string `yaml:"CONVEY_CLI_AUTH_URL"`
	ClientID   string `yaml:"CONVEY_CLI_CLIENT_ID"`
	GraphQLURL string `yaml:"CONVEY_CLI_GRAPHQL_URL"`
	APIBase    string `yaml:"CONVEY_CLI_API_URL"`
}

type fileFormat struct {
	Envs map[string]EnvironmentSet `yaml:"ENVIRONMENTS"`
}

func loadEmbeddedEnvironmentFile() (*fileFormat, error) {
	data, err := envFileContent.ReadFile("environments.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded environments file: %w", err)
	}
	var ff fileFormat
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("unmarshalling embedded environments file: %w", err)
	}
	return &ff, nil
}

// NewEnvironmentSet resolves the named environment and applies env var overrides.
func NewEnvironmentSet(ff *fileFormat, envName string) *EnvironmentSet {
	set, ok := ff.Envs[envName]
	if !ok {
		set = ff.Envs[DefaultEnv]
	}
	if v := os.Getenv(EnvVarUIURL); v != "" {
		set.UIURL = v
	}
	if v := os.Getenv(EnvVarAuthBase); v != "" {
		set.AuthBase = v
	}
	if v := os.Getenv(EnvVarClientID); v != "" {
		set.ClientID = v
	}
	if v := os.Getenv(EnvVarGraphQLURL); v != "" {
		set.GraphQLURL = v
	}
	if v := os.Getenv(EnvVarAPIBase); v != "" {
		set.APIBase = v
	}
	return &set
}

func New() (*EnvironmentSet, error) {
	ff, err := loadEmbeddedEnvironmentFile()
	if err != nil {
		return nil, err
	}
	envName := os.Getenv(EnvVarEnv)
	if envName == "" {
		envName = DefaultEnv
	}
	return NewEnvironmentSet(ff, envName), nil
}
