package login

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os/exec"
	rt "runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/conveydesk/convey-cli/internal/constants"
	"github.com/conveydesk/convey-cli/internal/credentials"
	"github.com/conveydesk/convey-cli/internal/environments"
	"github.com/conveydesk/convey-cli/internal/profiles"
	"github.com/conveydesk/convey-cli/internal/runtime"
	"github.com/conveydesk/convey-cli/internal/ui"
)

var httpClient = &http.Client{Timeout: 10 * time.Second}

const successPage = `<!DOCTYPE html>
<html>
<head><title>ConveyDesk</title></head>
<body style="font-family: sans-serif; text-align: center; margin-top: 4rem;">
<h1>Signed in</h1>
<p>You can close this tab and return to your terminal.</p>
</body>
</html>`

const errorPage = `<!DOCTYPE html>
<html>
<head><title>ConveyDesk</title></head>
<body style="font-family: sans-serif; text-align: center; margin-top: 4rem;">
<h1>Sign in failed</h1>
<p>Return to your terminal and run <code>convey login</code> again.</p>
</body>
</html>`

func New(runtimeCtx *runtime.Context) *cobra.Command {
	var profileName string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Start authentication flow",
		Long:  "Opens browser for user login and saves credentials.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h := newHandler(runtimeCtx, profileName)
			return h.execute()
		},
	}
	cmd.Flags().StringVar(&profileName, "profile", "", "Name to save this sign-in under (defaults to \"default\")")

	return cmd
}

type handler struct {
	environmentSet   *environments.EnvironmentSet
	log              *zerolog.Logger
	profileName      string
	lastPKCEVerifier string
	lastState        string
}

func newHandler(ctx *runtime.Context, profileName string) *handler {
	return &handler{
		log:            ctx.Logger,
		environmentSet: ctx.EnvironmentSet,
		profileName:    profileName,
	}
}

func (h *handler) execute() error {
	code, err := h.startAuthFlow()
	if err != nil {
		return err
	}

	tokenSet, err := h.exchangeCodeForTokens(context.Background(), code)
	if err != nil {
		h.log.Error().Err(err).Msg("code exchange failed")
		return err
	}

	if err := credentials.Save(tokenSet); err != nil {
		h.log.Error().Err(err).Msg("failed to save credentials")
		return err
	}

	h.saveProfile(tokenSet)

	fmt.Println()
	ui.Success("Login completed successfully!")
	fmt.Printf("To see who you are signed in as, run: %s\n", ui.RenderCommand("convey whoami"))
	fmt.Printf("To open a new property file, run: %s\n", ui.RenderCommand("convey property create"))
	return nil
}

// saveProfile records the sign-in as a named profile. The credentials
// file already holds the tokens, so a profile failure only costs the
// ability to switch accounts later.
func (h *handler) saveProfile(tokenSet *credentials.TokenSet) {
	profileMgr, err := profiles.New(h.log)
	if err != nil {
		h.log.Warn().Err(err).Msg("failed to load profiles")
		return
	}

	name := h.profileName
	if name == "" {
		name = profiles.DefaultProfileName
	}

	if err := profileMgr.SaveProfile(&profiles.Profile{
		Name:     name,
		Tokens:   tokenSet,
		AuthType: credentials.AuthTypeBearer,
	}); err != nil {
		h.log.Warn().Err(err).Msg("failed to save profile")
		return
	}
	if err := profileMgr.SetActiveProfile(name); err != nil {
		h.log.Warn().Err(err).Msg("failed to activate profile")
		return
	}
	h.log.Debug().Str("profile", name).Msg("saved sign-in profile")
}

func (h *handler) startAuthFlow() (string, error) {
	codeCh := make(chan string, 1)

	server, listener, err := h.setupServer(codeCh)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := server.Shutdown(context.Background()); err != nil {
			h.log.Warn().Err(err).Msg("error shutting down login callback server")
		}
	}()

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			h.log.Error().Err(err).Msg("server error")
		}
	}()

	verifier, challenge, err := generatePKCE()
	if err != nil {
		return "", err
	}
	h.lastPKCEVerifier = verifier
	h.lastState = randomState()

	authURL := h.buildAuthURL(challenge, h.lastState)
	fmt.Printf("Opening browser to %s\n", authURL)
	if err := openBrowser(authURL, rt.GOOS); err != nil {
		h.log.Warn().Err(err).Msg("could not open browser, please navigate manually")
	}

	select {
	case code := <-codeCh:
		return code, nil
	case <-time.After(500 * time.Second):
		return "", fmt.Errorf("timeout waiting for authorization code")
	}
}

func (h *handler) setupServer(codeCh chan string) (*http.Server, net.Listener, error) {
	mux := http.NewServeMux()
	mux.HandleFunc("/callback", h.callbackHandler(codeCh))

	listener, err := net.Listen("tcp", constants.AuthListenAddr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to listen on %s: %w", constants.AuthListenAddr, err)
	}

	return &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}, listener, nil
}

func (h *handler) callbackHandler(codeCh chan string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if st := r.URL.Query().Get("state"); st == "" || h.lastState == "" || st != h.lastState {
			h.log.Error().Msg("invalid state in response")
			serveHTML(w, errorPage, http.StatusBadRequest)
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			h.log.Error().Msg("no code in response")
			serveHTML(w, errorPage, http.StatusBadRequest)
			return
		}

		serveHTML(w, successPage, http.StatusOK)
		codeCh <- code
	}
}

func serveHTML(w http.ResponseWriter, page string, status int) {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(page))
}

func (h *handler) buildAuthURL(codeChallenge, state string) string {
	params := url.Values{}
	params.Set("client_id", h.environmentSet.ClientID)
	params.Set("redirect_uri", constants.AuthRedirectURI)
	params.Set("response_type", "code")
	params.Set("scope", "openid profile email offline_access")
	params.Set("code_challenge", codeChallenge)
	params.Set("code_challenge_method", "S256")
	params.Set("state", state)

	return h.environmentSet.AuthBase + constants.AuthAuthorizePath + "?" + params.Encode()
}

func (h *handler) exchangeCodeForTokens(ctx context.Context, code string) (*credentials.TokenSet, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", h.environmentSet.ClientID)
	form.Set("code", code)
	form.Set("redirect_uri", constants.AuthRedirectURI)
	form.Set("code_verifier", h.lastPKCEVerifier)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.environmentSet.AuthBase+constants.AuthTokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, body)
	}

	var tokenSet credentials.TokenSet
	if err := json.Unmarshal(body, &tokenSet); err != nil {
		return nil, fmt.Errorf("unmarshal token set: %w", err)
	}
	return &tokenSet, nil
}

func openBrowser(urlStr string, goos string) error {
	switch goos {
	case "darwin":
		return exec.Command("open", urlStr).Start()
	case "linux":
		return exec.Command("xdg-open", urlStr).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", urlStr).Start()
	default:
		return fmt.Errorf("unsupported OS: %s", goos)
	}
}

func generatePKCE() (verifier, challenge string, err error) {
	b := make([]byte, 32)
	if _, err = rand.Read(b); err != nil {
		return "", "", err
	}
	verifier = base64.RawURLEncoding.EncodeToString(b)
	sum := sha256.Sum256([]byte(verifier))
	challenge = base64.RawURLEncoding.EncodeToString(sum[:])
	return verifier, challenge, nil
}

func randomState() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
