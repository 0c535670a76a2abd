package telemetry

// UserEventInput is the payload for the reportUserEvent mutation.
type UserEventInput struct {
	CliVersion string      `json:"cliVersion"`
	ExitCode   int         `json:"exitCode"`
	Command    CommandInfo `json:"command"`
	Machine    MachineInfo `json:"machine"`
	Actor      *ActorInfo  `json:"actor,omitempty"`
}

// CommandInfo describes the executed command.
type CommandInfo struct {
	Action     string   `json:"action"`
	Subcommand string   `json:"subcommand,omitempty"`
	Args       []string `json:"args,omitempty"`
}

// MachineInfo describes the machine running the CLI.
type MachineInfo struct {
	OsName       string `json:"osName"`
	OsVersion    string `json:"osVersion"`
	Architecture string `json:"architecture"`
}

// ActorInfo carries the anonymous machine identifier. The server
// populates user and organization identity from the auth token.
type ActorInfo struct {
	MachineID string `json:"machineId"`
}

// ReportUserEventResponse is the response from the reportUserEvent mutation.
type ReportUserEventResponse struct {
	ReportUserEvent struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	} `json:"reportUserEvent"`
}
