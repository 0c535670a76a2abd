package get

import (
	"bytes"
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
	"github.com/conveydesk/convey-cli/internal/runtime"
	"github.com/conveydesk/convey-cli/internal/testutil"
)

func newTestHandler(t *testing.T, apiBase string, out *bytes.Buffer) *handler {
	t.Helper()

	ctx := runtime.NewContext(testutil.NewTestLogger(), viper.New())
	ctx.Credentials = &credentials.Credentials{
		APIKey:   "test-key",
		AuthType: credentials.AuthTypeApiKey,
	}
	ctx.EnvironmentSet = &environments.EnvironmentSet{APIBase: apiBase}
	ctx.Session.Begin(&access.User{ID: "acct-1", Role: access.RoleBuyer}, nil)

	return newHandler(ctx, out)
}

func samplePropertyFile() map[string]any {
	return map[string]any{
		"id":           "pf-7",
		"reference":    "PF-000107",
		"title":        "2 Rose Lane",
		"addressLine1": "2 Rose Lane",
		"city":         "Leeds",
		"postcode":     "LS1 4AP",
		"propertyType": "terraced",
		"bedrooms":     3,
		"askingPrice":  275000,
		"sellerName":   "Priya Shah",
		"sellerEmail":  "priya@example.com",
		"status":       "listed",
		"createdAt":    "2026-07-01T12:00:00Z",
		"updatedAt":    "2026-08-01T12:00:00Z",
	}
}

func TestExecute_TableOutput(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/property-files/pf-7", r.URL.Path)
		_ = json.NewEncoder(w).Encode(samplePropertyFile())
	}))
	t.Cleanup(ts.Close)

	var out bytes.Buffer
	h := newTestHandler(t, ts.URL, &out)
	h.inputs = Inputs{ID: "pf-7", Output: "table"}

	require.NoError(t, h.Execute(context.Background()))

	s := out.String()
	require.Contains(t, s, "PF-000107")
	require.Contains(t, s, "2 Rose Lane")
	require.Contains(t, s, "£275000")
	require.Contains(t, s, "listed")
}

func TestExecute_JSONOutput(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(samplePropertyFile())
	}))
	t.Cleanup(ts.Close)

	var out bytes.Buffer
	h := newTestHandler(t, ts.URL, &out)
	h.inputs = Inputs{ID: "pf-7", Output: "json"}

	require.NoError(t, h.Execute(context.Background()))

	var pf propertyclient.PropertyFile
	require.NoError(t, json.Unmarshal(out.Bytes(), &pf))
	require.Equal(t, "PF-000107", pf.Reference)
}

func TestExecute_NotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "no such record"})
	}))
	t.Cleanup(ts.Close)

	var out bytes.Buffer
	h := newTestHandler(t, ts.URL, &out)
	h.inputs = Inputs{ID: "pf-missing", Output: "table"}

	err := h.Execute(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "property file not found")
}

func TestExecute_DeniedWhenLoggedOut(t *testing.T) {
	var out bytes.Buffer
	h := newTestHandler(t, "http://api.invalid", &out)
	h.session.End()
	h.inputs = Inputs{ID: "pf-7", Output: "table"}

	err := h.Execute(context.Background())
	require.EqualError(t, err, "permission denied: missing property:read")
}

func TestFormatDetails_SkipsEmptyFields(t *testing.T) {
	pf := &propertyclient.PropertyFile{
		Reference:    "PF-000001",
		Title:        "Plot 9",
		AddressLine1: "Mill Road",
		City:         "York",
		Postcode:     "YO1 7HH",
		PropertyType: "land",
		AskingPrice:  90000,
		SellerName:   "Ann Ward",
		SellerEmail:  "ann@example.com",
		Status:       "draft",
	}

	s := formatDetails(pf)
	require.Contains(t, s, "Plot 9")
	require.NotContains(t, s, "Solicitor")
	require.NotContains(t, s, "Notes")
}

func TestValidateInputs_RequiresID(t *testing.T) {
	var out bytes.Buffer
	h := newTestHandler(t, "http://api.invalid", &out)
	h.inputs = Inputs{ID: "", Output: "table"}

	err := h.ValidateInputs()
	require.Error(t, err)
	require.False(t, h.validated)
}
