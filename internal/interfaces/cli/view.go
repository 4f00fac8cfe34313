package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"foxview.dev/cli/internal/core/prefs"
	"foxview.dev/cli/internal/core/query"
	"foxview.dev/cli/internal/infrastructure/profile"
)

// ProfileFlags selects which profile a command operates on.
type ProfileFlags struct {
	Profile    string
	ProfileDir string
}

func addProfileFlags(cmd *cobra.Command, flags *ProfileFlags) {
	cmd.Flags().StringVarP(&flags.Profile, "profile", "p", "", "Profile name from profiles.ini")
	cmd.Flags().StringVar(&flags.ProfileDir, "profile-dir", "", "Profile directory (bypasses profiles.ini)")
}

// resolveProfileDir turns the profile flags into a directory: an explicit
// directory wins, then a named profile, then the default profile from
// profiles.ini.
func resolveProfileDir(flags *ProfileFlags) (string, error) {
	if flags.ProfileDir != "" {
		return flags.ProfileDir, nil
	}

	profilesDir, err := profile.ProfilesDir()
	if err != nil {
		return "", err
	}
	if flags.Profile != "" {
		return profile.FindProfilePath(profilesDir, flags.Profile)
	}

	profiles, err := profile.ListProfiles(profilesDir)
	if err != nil {
		return "", fmt.Errorf("no profile specified and profiles.ini unreadable: %w", err)
	}
	for _, p := range profiles {
		if p.IsDefault {
			return p.Dir(profilesDir), nil
		}
	}
	return "", fmt.Errorf("no profile specified and no default profile in profiles.ini (use --profile or --profile-dir)")
}

// ViewFlags holds command-line flags for the view command
type ViewFlags struct {
	ProfileFlags
	Queries         []string
	Get             string
	Format          string
	UnexplainedOnly bool
	Stdin           bool
	MaxFileSize     int64
}

// NewViewCommand creates the view command
func NewViewCommand() *cobra.Command {
	flags := &ViewFlags{}

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Show the preferences set in a profile's prefs.js",
		Long: `Parse a profile's prefs.js and list the preferences it sets.

This reads only the user tier; use 'fv merge' for the full effective
configuration including built-in and global defaults.

Examples:
  fv view --profile default
  fv view --profile-dir ~/.mozilla/firefox/abc.default
  fv view -p default --query 'browser.*' --query 'network.*'
  fv view -p default --get browser.startup.homepage
  cat prefs.js | fv view --stdin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd, flags)
		},
	}

	addProfileFlags(cmd, &flags.ProfileFlags)
	cmd.Flags().StringArrayVarP(&flags.Queries, "query", "q", nil, "Glob pattern to filter keys (repeatable)")
	cmd.Flags().StringVar(&flags.Get, "get", "", "Print the raw value of a single key")
	cmd.Flags().StringVarP(&flags.Format, "format", "f", formatTable, "Output format (table or json)")
	cmd.Flags().BoolVar(&flags.UnexplainedOnly, "unexplained-only", false, "Show only keys without a built-in explanation")
	cmd.Flags().BoolVar(&flags.Stdin, "stdin", false, "Read prefs.js content from standard input instead of a profile")
	cmd.Flags().Int64Var(&flags.MaxFileSize, "max-file-size", 0, "Refuse prefs.js files larger than this many bytes (0 = no limit)")

	return cmd
}

func runView(cmd *cobra.Command, flags *ViewFlags) error {
	entries, err := loadViewEntries(cmd, flags)
	if err != nil {
		return err
	}

	if len(flags.Queries) > 0 {
		entries, err = query.Preferences(entries, flags.Queries)
		if err != nil {
			return err
		}
	}

	if flags.Get != "" {
		return printValue(cmd.OutOrStdout(), entries, flags.Get)
	}
	return printEntries(cmd.OutOrStdout(), entries, outputOptions{
		Format:          flags.Format,
		UnexplainedOnly: flags.UnexplainedOnly,
	})
}

// loadViewEntries parses preferences from stdin or from the selected
// profile's prefs.js, enforcing the optional size ceiling.
func loadViewEntries(cmd *cobra.Command, flags *ViewFlags) ([]prefs.PrefEntry, error) {
	if flags.Stdin {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return prefs.Parse(string(data))
	}

	profileDir, err := resolveProfileDir(&flags.ProfileFlags)
	if err != nil {
		return nil, err
	}

	path := profile.PrefsPath(profileDir)
	if flags.MaxFileSize > 0 {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if info.Size() > flags.MaxFileSize {
			return nil, fmt.Errorf("%s is %d bytes, exceeds --max-file-size %d", path, info.Size(), flags.MaxFileSize)
		}
	}
	return prefs.ParseFile(path)
}
