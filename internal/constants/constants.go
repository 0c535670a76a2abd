package constants

import (
	"time"
)

const (
	// Limits
	MaxSearchTermLength               = 200
	MaxPaginationLimit                = 100
	DefaultPaginationLimit            = 20
	MaxPropertyTitleLength            = 120
	MaxOrganizationNameLength         = 100
	MaxAskingPrice             int64  = 100_000_000
	SubmitRedirectDelay               = 2 * time.Second

	// Default settings
	DefaultProjectSettingsFileName = "convey.project.yaml"
	DefaultEnvFileName             = ".env"

	AuthTokenPath     = "/oauth2/token"
	AuthRevokePath    = "/oauth2/revoke"
	AuthAuthorizePath = "/oauth2/authorize"
	AuthRedirectURI   = "http://localhost:53127/callback"
	AuthListenAddr    = "localhost:53127"

	PropertyFilesPath = "/v1/property-files"
	RegistrationsPath = "/v1/registrations"

	ReleaseManifestURL = "https://releases.conveydesk.io/convey-cli/latest.json"
)
