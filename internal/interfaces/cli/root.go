// Package cli wires the fv commands together.
package cli

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"     // Overridden by ldflags
	BuildTime = "unknown" // Overridden by ldflags
)

// NewRootCommand represents the base command when called without any subcommands
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fv",
		Short: "foxview - Firefox effective-configuration viewer",
		Long: `foxview resolves the preferences Firefox actually runs with by merging
built-in defaults (omni.ja), global defaults (greprefs.js), and the
profile's own prefs.js, with user values taking precedence.

It can also inspect a single profile, list profiles and installations,
and poke at omni.ja archives directly.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if debugFlag, _ := cmd.Flags().GetBool("debug"); debugFlag {
				log.SetLevel(log.DebugLevel)
			} else {
				log.SetLevel(log.WarnLevel)
			}
			return nil
		},
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf("{{.Name}} version {{.Version}}\nBuild time: %s\nGo version: %s\nPlatform: %s/%s\n",
		BuildTime, goVersion(), runtime.GOOS, runtime.GOARCH))

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	rootCmd.AddCommand(NewViewCommand())
	rootCmd.AddCommand(NewMergeCommand())
	rootCmd.AddCommand(NewProfilesCommand())
	rootCmd.AddCommand(NewInstallsCommand())
	rootCmd.AddCommand(NewArchiveCommand())
	rootCmd.AddCommand(NewBrowseCommand())

	return rootCmd
}

// goVersion returns the Go version used to build the binary
func goVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		return info.GoVersion
	}
	return "unknown"
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
