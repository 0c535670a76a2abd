package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/conveydesk/convey-cli/internal/environments"
)

// NewGraphQLMockServerGetViewer starts an httptest.Server that responds to
// getViewer with a fixed account. It sets EnvVarGraphQLURL so CLI
// commands use this server. Caller must defer srv.Close().
func NewGraphQLMockServerGetViewer(t *testing.T, role string, grants []string) *httptest.Server {
	t.Helper()
	if grants == nil {
		grants = []string{}
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/graphql") && r.Method == http.MethodPost {
			var req struct {
				Query     string         `json:"query"`
				Variables map[string]any `json:"variables"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			w.Header().Set("Content-Type", "application/json")
			if strings.Contains(req.Query, "getViewer") {
				_ = json.NewEncoder(w).Encode(map[string]any{
					"data": map[string]any{
						"getViewer": map[string]any{
							"accountId":          "test-account-id",
							"emailAddress":       "test@example.com",
							"role":               role,
							"grantedPermissions": grants,
						},
					},
				})
				return
			}
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"errors": []map[string]string{{"message": "Unsupported GraphQL query"}},
			})
		}
	}))
	t.Setenv(environments.EnvVarGraphQLURL, srv.URL+"/graphql")
	return srv
}
