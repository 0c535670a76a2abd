package use

import (
	"bytes"
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"

	"github.com/conveydesk/convey-cli/internal/credentials"
	"github.com/conveydesk/convey-cli/internal/profiles"
	"github.com/conveydesk/convey-cli/internal/runtime"
	"github.com/conveydesk/convey-cli/internal/testutil"
)

func TestExecute_SwitchesActiveProfile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	log := testutil.NewTestLogger()
	mgr, err := profiles.New(log)
	require.NoError(t, err)
	require.NoError(t, mgr.SaveProfile(&profiles.Profile{
		Name:   "first",
		Tokens: &credentials.TokenSet{AccessToken: "tok-first"},
	}))
	require.NoError(t, mgr.SaveProfile(&profiles.Profile{
		Name:   "second",
		Email:  "amir@example.com",
		Tokens: &credentials.TokenSet{AccessToken: "tok-second"},
	}))

	out := &bytes.Buffer{}
	h := newHandler(runtime.NewContext(log, viper.New()), out)

	require.NoError(t, h.execute("second"))
	require.Contains(t, out.String(), "Switched to profile second")
	require.Contains(t, out.String(), "Signed in as amir@example.com")

	path, err := credentials.Path()
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var stored credentials.TokenSet
	require.NoError(t, yaml.Unmarshal(data, &stored))
	require.Equal(t, "tok-second", stored.AccessToken)
}

func TestExecute_UnknownProfile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	out := &bytes.Buffer{}
	h := newHandler(runtime.NewContext(testutil.NewTestLogger(), viper.New()), out)

	require.EqualError(t, h.execute("missing"), "profile 'missing' not found")
}
