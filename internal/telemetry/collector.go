package telemetry

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/denisbrodbeck/machineid"
	"github.com/spf13/cobra"
)

// CollectMachineInfo gathers information about the machine running the CLI.
func CollectMachineInfo() MachineInfo {
	return MachineInfo{
		OsName:       runtime.GOOS,
		OsVersion:    getOSVersion(),
		Architecture: runtime.GOARCH,
	}
}

// CollectActorInfo returns the anonymous actor identity. The machine ID
// is hashed per-application so it cannot be correlated across products.
func CollectActorInfo() *ActorInfo {
	id, err := machineid.ProtectedID("convey-cli")
	if err != nil {
		hostname, _ := os.Hostname()
		if hostname == "" {
			hostname = "unknown"
		}
		id = fmt.Sprintf("machine_%s_%s_%s", hostname, runtime.GOOS, runtime.GOARCH)
	}
	return &ActorInfo{MachineID: id}
}

// CollectCommandInfo extracts command information from a cobra command.
// Positional arguments are never recorded for property commands since
// they can contain record identifiers.
func CollectCommandInfo(cmd *cobra.Command, args []string) CommandInfo {
	info := CommandInfo{}

	if cmd.Parent() != nil && cmd.Parent().Name() != "" && cmd.Parent().Name() != "convey" {
		info.Action = cmd.Parent().Name()
		info.Subcommand = cmd.Name()
	} else if cmd.Name() != "convey" {
		info.Action = cmd.Name()
	}

	if info.Action != "property" {
		info.Args = args
	}

	return info
}

func getOSVersion() string {
	switch runtime.GOOS {
	case "darwin":
		if out, err := exec.Command("sw_vers", "-productVersion").Output(); err == nil && len(out) > 0 {
			return strings.TrimSpace(string(out))
		}
	case "linux":
		if data, err := os.ReadFile("/etc/os-release"); err == nil {
			for _, line := range strings.Split(string(data), "\n") {
				if strings.HasPrefix(line, "VERSION_ID=") {
					return strings.Trim(strings.TrimPrefix(line, "VERSION_ID="), "\"")
				}
			}
		}
		if out, err := exec.Command("uname", "-r").Output(); err == nil && len(out) > 0 {
			return strings.TrimSpace(string(out))
		}
	case "windows":
		if out, err := exec.Command("cmd", "/c", "ver").Output(); err == nil && len(out) > 0 {
			return strings.TrimSpace(string(out))
		}
	}
	return "unknown"
}
