package telemetry

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/conveydesk/convey-cli/cmd/version"
	"github.com/conveydesk/convey-cli/internal/runtime"
)

const (
	// TelemetryDisabledEnvVar disables all event reporting when set to "true".
	TelemetryDisabledEnvVar = "CONVEY_TELEMETRY_DISABLED"

	// TelemetryDebugEnvVar enables debug logging for telemetry when set to "true".
	TelemetryDebugEnvVar = "CONVEY_TELEMETRY_DEBUG"

	// Maximum time the user waits for telemetry to complete.
	maxTelemetryWait = 1 * time.Second
)

// EmitCommandEvent reports one command execution. It never fails the
// command: errors and panics are swallowed, and the whole emit is bounded
// by maxTelemetryWait.
func EmitCommandEvent(cmd *cobra.Command, args []string, exitCode int, runtimeCtx *runtime.Context) {
	defer func() {
		if r := recover(); r != nil {
			debugLog("telemetry panic recovered: %v", r)
		}
	}()

	if isTelemetryDisabled() {
		debugLog("telemetry disabled via environment variable")
		return
	}

	if shouldExcludeCommand(cmd) {
		debugLog("command %s excluded from telemetry", cmd.Name())
		return
	}

	emitCtx, cancel := context.WithTimeout(context.Background(), maxTelemetryWait)
	defer cancel()

	event := buildUserEvent(cmd, args, exitCode)
	debugLog("emitting telemetry event: action=%s, subcommand=%s, exitCode=%d",
		event.Command.Action, event.Command.Subcommand, event.ExitCode)

	SendEvent(emitCtx, event, runtimeCtx.Credentials, runtimeCtx.EnvironmentSet, runtimeCtx.Logger)
}

func isTelemetryDisabled() bool {
	return os.Getenv(TelemetryDisabledEnvVar) == "true"
}

func isTelemetryDebugEnabled() bool {
	return os.Getenv(TelemetryDebugEnvVar) == "true"
}

func debugLog(format string, args ...any) {
	if isTelemetryDebugEnabled() {
		fmt.Fprintf(os.Stderr, "[TELEMETRY DEBUG] "+format+"\n", args...)
	}
}

func shouldExcludeCommand(cmd *cobra.Command) bool {
	if cmd == nil {
		return true
	}

	excludedCommands := map[string]bool{
		"version":    true,
		"help":       true,
		"bash":       true,
		"zsh":        true,
		"fish":       true,
		"powershell": true,
		"completion": true,
	}

	return excludedCommands[cmd.Name()]
}

func buildUserEvent(cmd *cobra.Command, args []string, exitCode int) UserEventInput {
	return UserEventInput{
		CliVersion: version.Version,
		ExitCode:   exitCode,
		Command:    CollectCommandInfo(cmd, args),
		Machine:    CollectMachineInfo(),
		Actor:      CollectActorInfo(),
	}
}
