package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/conveydesk/convey-cli/cmd/login"
	"github.com/conveydesk/convey-cli/cmd/logout"
	"github.com/conveydesk/convey-cli/cmd/profile"
	"github.com/conveydesk/convey-cli/cmd/property"
	"github.com/conveydesk/convey-cli/cmd/register"
	"github.com/conveydesk/convey-cli/cmd/update"
	"github.com/conveydesk/convey-cli/cmd/version"
	"github.com/conveydesk/convey-cli/cmd/whoami"
	"github.com/conveydesk/convey-cli/internal/constants"
	"github.com/conveydesk/convey-cli/internal/logger"
	conveyruntime "github.com/conveydesk/convey-cli/internal/runtime"
	"github.com/conveydesk/convey-cli/internal/settings"
	"github.com/conveydesk/convey-cli/internal/telemetry"
	updatecheck "github.com/conveydesk/convey-cli/update"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = newRootCommand()

func Execute() {
	err := RootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootLogger := createLogger()
	rootViper := createViper()
	runtimeContext := conveyruntime.NewContext(rootLogger, rootViper)

	// By defining a Run func, we force PersistentPreRunE to execute
	// even when 'convey' or 'convey property' is called with no
	// subcommand, which enables the update notice.
	helpRunE := func(cmd *cobra.Command, args []string) error {
		err := cmd.Help()
		if err != nil {
			return fmt.Errorf("fail to show help: %w", err)
		}
		return nil
	}

	rootCmd := &cobra.Command{
		Use:               "convey",
		Short:             "ConveyDesk CLI tool",
		Long:              `A command line tool for creating and managing ConveyDesk property files and conveyancing records.`,
		DisableAutoGenTag: true,
		RunE:              helpRunE,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log := runtimeContext.Logger
			v := runtimeContext.Viper

			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return fmt.Errorf("failed to bind flags: %w", err)
			}

			if verbose := v.GetBool(settings.Flags.Verbose.Name); verbose {
				newLogger := log.Level(zerolog.DebugLevel)
				runtimeContext.Logger = &newLogger
			}

			if isLoadEnvAndSettings(cmd) {
				err := runtimeContext.AttachSettings()
				if err != nil {
					return fmt.Errorf("%w", err)
				}
			}

			if isLoadCredentials(cmd) {
				err := runtimeContext.AttachCredentials()
				if err != nil {
					return fmt.Errorf("failed to attach credentials: %w", err)
				}
			}

			err := runtimeContext.AttachEnvironmentSet()
			if err != nil {
				return fmt.Errorf("failed to load environment details: %w", err)
			}

			if isAttachSession(cmd) {
				if err := runtimeContext.AttachSession(cmd.Context()); err != nil {
					return fmt.Errorf("failed to establish session: %w", err)
				}
			}

			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if isUpdateCheck(cmd) {
				updatecheck.CheckForUpdates(version.Version, runtimeContext.Logger)
			}

			telemetry.EmitCommandEvent(cmd, args, 0, runtimeContext)
		},
	}

	cobra.AddTemplateFunc("wrappedFlagUsages", func(fs *pflag.FlagSet) string {
		// 100 = wrap width
		return strings.TrimRight(fs.FlagUsagesWrapped(100), "\n")
	})

	cobra.AddTemplateFunc("hasUngrouped", func(c *cobra.Command) bool {
		for _, cmd := range c.Commands() {
			if cmd.IsAvailableCommand() && !cmd.Hidden && cmd.GroupID == "" {
				return true
			}
		}
		return false
	})

	rootCmd.SetHelpTemplate(`
{{- with (or .Long .Short)}}{{.}}{{end}}

Usage:
{{- if .Runnable}}
  {{.UseLine}}
{{- else if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]
{{- end}}

{{- /* ============================================ */}}
{{- /* Available Commands Section                 */}}
{{- /* ============================================ */}}
{{- if .HasAvailableSubCommands}}

Available Commands:
  {{- $groupsUsed := false -}}
  {{- $firstGroup := true -}}

  {{- range $grp := .Groups}}
    {{- $has := false -}}
    {{- range $.Commands}}
      {{- if (and (not .Hidden) (.IsAvailableCommand) (eq .GroupID $grp.ID))}}
        {{- $has = true}}
      {{- end}}
    {{- end}}

    {{- if $has}}
      {{- $groupsUsed = true -}}
      {{- if $firstGroup}}{{- $firstGroup = false -}}{{else}}

{{- end}}

  {{printf "%s:" $grp.Title}}
      {{- range $.Commands}}
        {{- if (and (not .Hidden) (.IsAvailableCommand) (eq .GroupID $grp.ID))}}
    {{rpad .Name .NamePadding}}  {{.Short}}
        {{- end}}
      {{- end}}
    {{- end}}
  {{- end}}

  {{- if $groupsUsed }}
    {{- /* Groups are in use; show ungrouped as "Other" if any */}}
    {{- if hasUngrouped .}}

  Other:
      {{- range .Commands}}
        {{- if (and (not .Hidden) (.IsAvailableCommand) (eq .GroupID ""))}}
    {{rpad .Name .NamePadding}}  {{.Short}}
        {{- end}}
      {{- end}}
    {{- end}}
  {{- else }}
    {{- /* No groups at this level; show a flat list with no "Other" header */}}
    {{- range .Commands}}
      {{- if (and (not .Hidden) (.IsAvailableCommand))}}
    {{rpad .Name .NamePadding}}  {{.Short}}
      {{- end}}
    {{- end}}
  {{- end }}
{{- end }}

{{- if .HasExample}}

Examples:
{{.Example}}
{{- end }}

{{- $local := (.LocalFlags.FlagUsagesWrapped 100 | trimTrailingWhitespaces) -}}
{{- if $local }}

Flags:
{{$local}}
{{- end }}

{{- $inherited := (.InheritedFlags.FlagUsagesWrapped 100 | trimTrailingWhitespaces) -}}
{{- if $inherited }}

Global Flags:
{{$inherited}}
{{- end }}

{{- if .HasAvailableSubCommands }}

Use "{{.CommandPath}} [command] --help" for more information about a command.
{{- end }}

💡 Tip: New here? Run:
  $ convey register
    to create your ConveyDesk account, then:
  $ convey login
    to sign in and start working with property files.

📘 Need more help?
  Visit https://docs.conveydesk.io
`)

	// Definition of global flags:
	// env file flag is present for every subcommand
	rootCmd.PersistentFlags().StringP(
		settings.Flags.CliEnvFile.Name,
		settings.Flags.CliEnvFile.Short,
		constants.DefaultEnvFileName,
		fmt.Sprintf("Path to %s file which contains sensitive info", constants.DefaultEnvFileName),
	)

	// project root path flag is present for every subcommand
	rootCmd.PersistentFlags().StringP(
		settings.Flags.ProjectRoot.Name,
		settings.Flags.ProjectRoot.Short,
		"",
		"Path to the project root",
	)

	// verbose flag is present in every subcommand
	rootCmd.PersistentFlags().BoolP(
		settings.Flags.Verbose.Name,
		settings.Flags.Verbose.Short,
		false,
		"Run command in VERBOSE mode",
	)

	// environment override is present in every subcommand
	rootCmd.PersistentFlags().StringP(
		settings.Flags.Environment.Name,
		settings.Flags.Environment.Short,
		"",
		"Use a named ConveyDesk environment (PRODUCTION, STAGING or LOCAL)",
	)
	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	versionCmd := version.New(runtimeContext)
	loginCmd := login.New(runtimeContext)
	logoutCmd := logout.New(runtimeContext)
	registerCmd := register.New(runtimeContext)
	whoamiCmd := whoami.New(runtimeContext)
	profileCmd := profile.New(runtimeContext)
	propertyCmd := property.New(runtimeContext)
	updateCmd := update.New(runtimeContext)

	propertyCmd.RunE = helpRunE

	// Define groups (order controls display order)
	rootCmd.AddGroup(&cobra.Group{ID: "getting-started", Title: "Getting Started"})
	rootCmd.AddGroup(&cobra.Group{ID: "account", Title: "Account"})
	rootCmd.AddGroup(&cobra.Group{ID: "property", Title: "Property Files"})

	registerCmd.GroupID = "getting-started"
	loginCmd.GroupID = "getting-started"

	logoutCmd.GroupID = "account"
	whoamiCmd.GroupID = "account"
	profileCmd.GroupID = "account"

	propertyCmd.GroupID = "property"

	rootCmd.AddCommand(
		registerCmd,
		loginCmd,
		logoutCmd,
		whoamiCmd,
		profileCmd,
		propertyCmd,
		versionCmd,
		updateCmd,
	)

	return rootCmd
}

func isLoadEnvAndSettings(cmd *cobra.Command) bool {
	// It is not expected to have the .env and the settings file when running the following commands
	var excludedCommands = map[string]struct{}{
		"convey":                       {},
		"convey version":               {},
		"convey login":                 {},
		"convey logout":                {},
		"convey register":              {},
		"convey update":                {},
		"convey help":                  {},
		"convey profile":               {},
		"convey profile list":          {},
		"convey profile use":           {},
		"convey profile delete":        {},
		"convey profile rename":        {},
		"convey completion":            {},
		"convey completion bash":       {},
		"convey completion zsh":        {},
		"convey completion fish":       {},
		"convey completion powershell": {},
	}

	_, exists := excludedCommands[cmd.CommandPath()]
	return !exists
}

func isLoadCredentials(cmd *cobra.Command) bool {
	// It is not expected to have the credentials loaded when running the following commands
	var excludedCommands = map[string]struct{}{
		"convey":                       {},
		"convey version":               {},
		"convey login":                 {},
		"convey register":              {},
		"convey update":                {},
		"convey help":                  {},
		"convey profile":               {},
		"convey profile list":          {},
		"convey profile use":           {},
		"convey profile delete":        {},
		"convey profile rename":        {},
		"convey completion":            {},
		"convey completion bash":       {},
		"convey completion zsh":        {},
		"convey completion fish":       {},
		"convey completion powershell": {},
	}

	_, exists := excludedCommands[cmd.CommandPath()]
	return !exists
}

// isAttachSession reports whether the command needs the authenticated
// account and its effective permissions resolved up front.
func isAttachSession(cmd *cobra.Command) bool {
	return strings.HasPrefix(cmd.CommandPath(), "convey property ")
}

func isUpdateCheck(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "bash", "zsh", "fish", "powershell", "help", "update":
		return false
	}
	return true
}

func createLogger() *zerolog.Logger {
	return logger.NewConsoleLogger()
}

func createViper() *viper.Viper {
	return viper.New() //nolint:forbidigo
}
