package whoami_test

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/conveydesk/convey-cli/cmd/whoami"
	"github.com/conveydesk/convey-cli/internal/credentials"
	"github.com/conveydesk/convey-cli/internal/environments"
	"github.com/conveydesk/convey-cli/internal/runtime"
	"github.com/conveydesk/convey-cli/internal/testutil"
)

func TestHandlerExecute(t *testing.T) {
	tests := []struct {
		name         string
		role         string
		grants       []string
		wantSnips    []string
		wantErr      bool
		wantErrSnips []string
	}{
		{
			name:   "solicitor with grants",
			role:   "SOLICITOR",
			grants: []string{"user:manage"},
			wantSnips: []string{
				"Account Details",
				"test@example.com",
				"solicitor",
				"user:manage",
			},
		},
		{
			name:   "buyer without grants",
			role:   "BUYER",
			grants: nil,
			wantSnips: []string{
				"buyer",
				"(none)",
			},
		},
		{
			name:         "unrecognised role",
			role:         "WIZARD",
			wantErr:      true,
			wantErrSnips: []string{"failed to fetch account details"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := testutil.NewGraphQLMockServerGetViewer(t, tc.role, tc.grants)
			defer srv.Close()

			envSet, err := environments.New()
			if err != nil {
				t.Fatalf("failed to build environment set: %v", err)
			}

			rtCtx := &runtime.Context{
				Credentials:    &credentials.Credentials{APIKey: "test-api-key", AuthType: credentials.AuthTypeApiKey},
				Logger:         testutil.NewTestLogger(),
				EnvironmentSet: envSet,
			}

			// Capture stdout
			oldStdout := os.Stdout
			r, w, _ := os.Pipe()
			os.Stdout = w

			h := whoami.NewHandler(rtCtx)
			execErr := h.Execute(context.Background())

			w.Close()
			os.Stdout = oldStdout
			var output strings.Builder
			_, _ = io.Copy(&output, r)

			if tc.wantErr {
				if execErr == nil {
					t.Fatalf("expected error, got nil")
				}
				for _, snippet := range tc.wantErrSnips {
					if !strings.Contains(execErr.Error(), snippet) {
						t.Errorf("error missing %q, got %v", snippet, execErr)
					}
				}
				return
			}

			if execErr != nil {
				t.Fatalf("unexpected error: %v", execErr)
			}
			out := output.String()
			for _, snippet := range tc.wantSnips {
				if !strings.Contains(out, snippet) {
					t.Errorf("output missing %q; full output:\n%s", snippet, out)
				}
			}
		})
	}
}
