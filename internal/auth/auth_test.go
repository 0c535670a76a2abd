package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/conveydesk/convey-cli/internal/credentials"
	"github.com/conveydesk/convey-cli/internal/environments"
)

func makeJWT(t *testing.T, exp int64) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"RS256","typ":"JWT"}`))
	payload, err := json.Marshal(map[string]int64{"exp": exp})
	require.NoError(t, err)
	return fmt.Sprintf("%s.%s.signature", header, base64.RawURLEncoding.EncodeToString(payload))
}

func TestTokenNeedsRefresh(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	tests := []struct {
		name string
		exp  int64
		want bool
	}{
		{name: "expired", exp: now.Unix() - 10, want: true},
		{name: "within buffer", exp: now.Unix() + 30, want: true},
		{name: "exactly at buffer edge", exp: now.Unix() + 60, want: true},
		{name: "comfortably valid", exp: now.Unix() + 3600, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TokenNeedsRefresh(makeJWT(t, tt.exp), now)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestTokenNeedsRefresh_MalformedToken(t *testing.T) {
	_, err := TokenNeedsRefresh("not-a-jwt", time.Now())
	require.ErrorContains(t, err, "invalid JWT token format")

	_, err = TokenNeedsRefresh("a.!!!.c", time.Now())
	require.ErrorContains(t, err, "failed to decode JWT payload")
}

func TestRefreshToken_RotatesAndKeepsOldRefreshToken(t *testing.T) {
	var rotate bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/oauth2/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "refresh_token", r.Form.Get("grant_type"))
		require.Equal(t, "test-client", r.Form.Get("client_id"))
		require.Equal(t, "old-refresh", r.Form.Get("refresh_token"))

		resp := map[string]any{
			"access_token": "new-access",
			"expires_in":   3600,
			"token_type":   "Bearer",
		}
		if rotate {
			resp["refresh_token"] = "new-refresh"
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(srv.Close)

	svc := NewOAuthService(&environments.EnvironmentSet{AuthBase: srv.URL, ClientID: "test-client"})
	old := &credentials.TokenSet{AccessToken: "old-access", RefreshToken: "old-refresh"}

	// Server does not rotate the refresh token: keep the old one.
	got, err := svc.RefreshToken(context.Background(), old)
	require.NoError(t, err)
	require.Equal(t, "new-access", got.AccessToken)
	require.Equal(t, "old-refresh", got.RefreshToken)

	// Server rotates: adopt the new one.
	rotate = true
	got, err = svc.RefreshToken(context.Background(), old)
	require.NoError(t, err)
	require.Equal(t, "new-refresh", got.RefreshToken)
}

func TestRefreshToken_UnauthorizedMeansLoggedOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	svc := NewOAuthService(&environments.EnvironmentSet{AuthBase: srv.URL, ClientID: "test-client"})
	_, err := svc.RefreshToken(context.Background(), &credentials.TokenSet{RefreshToken: "old-refresh"})
	require.ErrorContains(t, err, "convey login")
}

func TestRefreshToken_NoRefreshToken(t *testing.T) {
	svc := NewOAuthService(&environments.EnvironmentSet{AuthBase: "http://auth.endpoint", ClientID: "test-client"})
	_, err := svc.RefreshToken(context.Background(), &credentials.TokenSet{AccessToken: "only-access"})
	require.ErrorContains(t, err, "no refresh token available")
}

func TestRevokeToken(t *testing.T) {
	var revoked string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/oauth2/revoke", r.URL.Path)
		require.NoError(t, r.ParseForm())
		revoked = r.Form.Get("token")
	}))
	t.Cleanup(srv.Close)

	svc := NewOAuthService(&environments.EnvironmentSet{AuthBase: srv.URL, ClientID: "test-client"})
	require.NoError(t, svc.RevokeToken(context.Background(), "doomed-token"))
	require.Equal(t, "doomed-token", revoked)
}
