package settings_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conveydesk/convey-cli/internal/constants"
	"github.com/conveydesk/convey-cli/internal/settings"
	"github.com/conveydesk/convey-cli/internal/testutil"
)

const testProjectSettings = `project:
  name: riverside-sale
  default-city: Manchester
  default-property-type: terraced
  default-page-size: 25
  output-format: json
`

func writeProjectSettings(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, constants.DefaultProjectSettingsFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newTestViper(t *testing.T, dir string, envVars map[string]string) *viper.Viper {
	t.Helper()
	envFilePath := filepath.Join(dir, constants.DefaultEnvFileName)
	require.NoError(t, godotenv.Write(envVars, envFilePath))

	v := viper.New()
	v.Set(settings.Flags.CliEnvFile.Name, envFilePath)
	v.Set(settings.Flags.ProjectRoot.Name, dir)
	return v
}

func TestNew_LoadsProjectSettings(t *testing.T) {
	dir := t.TempDir()
	writeProjectSettings(t, dir, testProjectSettings)
	v := newTestViper(t, dir, map[string]string{})

	s, err := settings.New(testutil.NewTestLogger(), v)
	require.NoError(t, err)

	assert.Equal(t, "riverside-sale", s.Project.Name)
	assert.Equal(t, "Manchester", s.Project.DefaultCity)
	assert.Equal(t, "terraced", s.Project.DefaultPropertyType)
	assert.Equal(t, 25, s.Project.DefaultPageSize)
	assert.Equal(t, settings.OutputFormatJSON, s.Project.OutputFormat)
}

func TestNew_MissingProjectSettingsIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	v := newTestViper(t, dir, map[string]string{})

	s, err := settings.New(testutil.NewTestLogger(), v)
	require.NoError(t, err)
	assert.Empty(t, s.Project.Name)
}

func TestNew_APIKeyFromEnvFile(t *testing.T) {
	dir := t.TempDir()
	v := newTestViper(t, dir, map[string]string{
		settings.APIKeyEnvVar: "file-key",
	})

	s, err := settings.New(testutil.NewTestLogger(), v)
	require.NoError(t, err)
	assert.Equal(t, "file-key", s.User.APIKey)
}

func TestNew_PageSizeClampedToAPIMaximum(t *testing.T) {
	dir := t.TempDir()
	writeProjectSettings(t, dir, `project:
  default-page-size: 500
`)
	v := newTestViper(t, dir, map[string]string{})

	s, err := settings.New(testutil.NewTestLogger(), v)
	require.NoError(t, err)
	assert.Equal(t, constants.MaxPaginationLimit, s.Project.DefaultPageSize)
}

func TestNew_NegativePageSizeRejected(t *testing.T) {
	dir := t.TempDir()
	writeProjectSettings(t, dir, `project:
  default-page-size: -1
`)
	v := newTestViper(t, dir, map[string]string{})

	_, err := settings.New(testutil.NewTestLogger(), v)
	require.ErrorContains(t, err, "default-page-size must not be negative")
}

func TestNew_UnknownOutputFormatRejected(t *testing.T) {
	dir := t.TempDir()
	writeProjectSettings(t, dir, `project:
  output-format: csv
`)
	v := newTestViper(t, dir, map[string]string{})

	_, err := settings.New(testutil.NewTestLogger(), v)
	require.ErrorContains(t, err, "unknown output-format")
}

func TestLoadEnv_ExplicitPathPreferred(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, "custom.env")
	require.NoError(t, godotenv.Write(map[string]string{"CONVEY_TEST_SENTINEL": "explicit"}, envPath))

	require.NoError(t, settings.LoadEnv(envPath))
	assert.Equal(t, "explicit", os.Getenv("CONVEY_TEST_SENTINEL"))
	t.Cleanup(func() { os.Unsetenv("CONVEY_TEST_SENTINEL") })
}
