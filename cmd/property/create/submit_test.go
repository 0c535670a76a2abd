package create

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/conveydesk/convey-cli/internal/access"
	"github.com/conveydesk/convey-cli/internal/client/propertyclient"
	"github.com/conveydesk/convey-cli/internal/credentials"
	"github.com/conveydesk/convey-cli/internal/environments"
	"github.com/conveydesk/convey-cli/internal/forms"
	"github.com/conveydesk/convey-cli/internal/runtime"
	"github.com/conveydesk/convey-cli/internal/settings"
	"github.com/conveydesk/convey-cli/internal/testutil"
)

func newSubmitHandler(t *testing.T, apiBase string) *handler {
	t.Helper()

	ctx := runtime.NewContext(testutil.NewTestLogger(), viper.New())
	ctx.Credentials = &credentials.Credentials{
		APIKey:   "test-key",
		AuthType: credentials.AuthTypeApiKey,
	}
	ctx.EnvironmentSet = &environments.EnvironmentSet{APIBase: apiBase}
	ctx.Settings = &settings.Settings{
		Project: settings.ProjectSettings{SolicitorName: "Hart & Brook LLP"},
	}
	ctx.Session.Begin(&access.User{ID: "acct-1", Role: access.RoleAgent}, nil)

	return newHandler(ctx)
}

func sampleRecord() forms.Values {
	return forms.Values{
		forms.FieldTitle:        "2 Rose Lane",
		forms.FieldAddressLine1: "2 Rose Lane",
		forms.FieldCity:         "Leeds",
		forms.FieldPostcode:     "LS1 4AP",
		forms.FieldPropertyType: "terraced",
		forms.FieldBedrooms:     int64(3),
		forms.FieldAskingPrice:  int64(275000),
		forms.FieldOwnerName:    "Priya Shah",
		forms.FieldOwnerEmail:   "priya@example.com",
	}
}

func TestSubmitPropertyFile_CreatesDraft(t *testing.T) {
	var posted propertyclient.PropertyFile
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&posted))
		posted.ID = "pf-1"
		posted.Reference = "PF-000201"
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(posted)
	}))
	t.Cleanup(ts.Close)

	h := newSubmitHandler(t, ts.URL)

	result, err := h.submitPropertyFile(context.Background(), sampleRecord())
	require.NoError(t, err)

	pf, ok := result.(*propertyclient.PropertyFile)
	require.True(t, ok)
	require.Equal(t, "PF-000201", pf.Reference)

	require.Equal(t, propertyclient.StatusDraft, posted.Status)
	require.Equal(t, "Priya Shah", posted.SellerName)
	require.Equal(t, 3, posted.Bedrooms)
	// No solicitor email entered, so the project solicitor is not attached.
	require.Empty(t, posted.SolicitorName)
}

func TestSubmitPropertyFile_AttachesProjectSolicitor(t *testing.T) {
	var posted propertyclient.PropertyFile
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&posted))
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(posted)
	}))
	t.Cleanup(ts.Close)

	h := newSubmitHandler(t, ts.URL)

	record := sampleRecord()
	record[forms.FieldSolicitorEmail] = "legal@hartbrook.example"

	_, err := h.submitPropertyFile(context.Background(), record)
	require.NoError(t, err)

	require.Equal(t, "legal@hartbrook.example", posted.SolicitorEmail)
	require.Equal(t, "Hart & Brook LLP", posted.SolicitorName)
}

func TestExecute_DeniedForBuyer(t *testing.T) {
	h := newSubmitHandler(t, "http://api.invalid")
	h.session.End()
	h.session.Begin(&access.User{ID: "acct-2", Role: access.RoleBuyer}, nil)

	err := h.execute(context.Background())
	require.EqualError(t, err, "permission denied: missing property:create")
}
