package telemetry

import (
	"context"
	"io"
	"time"

	"github.com/machinebox/graphql"
	"github.com/rs/zerolog"

	"github.com/conveydesk/convey-cli/internal/client/graphqlclient"
	"github.com/conveydesk/convey-cli/internal/credentials"
	"github.com/conveydesk/convey-cli/internal/environments"
)

const sendTimeout = 5 * time.Second

const reportUserEventMutation = `
mutation ReportUserEvent($event: UserEventInput!) {
  reportUserEvent(event: $event) {
    success
    message
  }
}
`

// SendEvent sends a user event to the GraphQL endpoint. All errors are
// silently swallowed unless debug logging is enabled.
func SendEvent(ctx context.Context, event UserEventInput, creds *credentials.Credentials, envSet *environments.EnvironmentSet, logger *zerolog.Logger) {
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			debugLog("sender panic: %v", r)
		}
	}()

	if creds == nil {
		debugLog("skipping telemetry: no credentials")
		return
	}
	if envSet == nil {
		debugLog("skipping telemetry: no environment set")
		return
	}

	var clientLogger *zerolog.Logger
	if isTelemetryDebugEnabled() && logger != nil {
		clientLogger = logger
	} else {
		silentLogger := zerolog.New(io.Discard)
		clientLogger = &silentLogger
	}

	client := graphqlclient.New(creds, envSet, clientLogger)

	req := graphql.NewRequest(reportUserEventMutation)
	req.Var("event", event)

	var resp ReportUserEventResponse
	if err := client.Execute(sendCtx, req, &resp); err != nil {
		debugLog("telemetry request failed: %v", err)
		return
	}
	debugLog("telemetry request succeeded: success=%v, message=%s",
		resp.ReportUserEvent.Success, resp.ReportUserEvent.Message)
}
