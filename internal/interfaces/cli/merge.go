package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"foxview.dev/cli/internal/application/merge"
	"foxview.dev/cli/internal/core/query"
)

// MergeFlags holds command-line flags for the merge command
type MergeFlags struct {
	ProfileFlags
	Queries         []string
	Get             string
	Format          string
	UnexplainedOnly bool

	NoBuiltins     bool
	NoGlobals      bool
	NoUser         bool
	Strict         bool
	InstallDir     string
	CacheDir       string
	MaxArchiveSize int64
	RefreshCache   bool
}

// NewMergeCommand creates the merge command
func NewMergeCommand() *cobra.Command {
	flags := &MergeFlags{}

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Show the effective configuration across all preference tiers",
		Long: `Merge built-in defaults (omni.ja), global defaults (greprefs.js), and the
profile's prefs.js into the configuration Firefox actually runs with.

User preferences override global defaults, which override built-ins. Each
entry reports which tier and file it came from. Tier-load failures are
warnings unless --strict is given.

Examples:
  fv merge --profile default
  fv merge -p default --query 'browser.*' --format json
  fv merge -p default --no-builtins --no-globals
  fv merge -p default --install-dir /opt/firefox --strict`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(cmd, flags)
		},
	}

	addProfileFlags(cmd, &flags.ProfileFlags)
	cmd.Flags().StringArrayVarP(&flags.Queries, "query", "q", nil, "Glob pattern to filter keys (repeatable)")
	cmd.Flags().StringVar(&flags.Get, "get", "", "Print the raw value of a single key")
	cmd.Flags().StringVarP(&flags.Format, "format", "f", formatTable, "Output format (table or json)")
	cmd.Flags().BoolVar(&flags.UnexplainedOnly, "unexplained-only", false, "Show only keys without a built-in explanation")

	cmd.Flags().BoolVar(&flags.NoBuiltins, "no-builtins", false, "Skip built-in defaults from omni.ja")
	cmd.Flags().BoolVar(&flags.NoGlobals, "no-globals", false, "Skip global defaults from greprefs.js")
	cmd.Flags().BoolVar(&flags.NoUser, "no-user", false, "Skip the profile's prefs.js")
	cmd.Flags().BoolVar(&flags.Strict, "strict", false, "Abort on the first tier that fails to load")
	cmd.Flags().StringVar(&flags.InstallDir, "install-dir", "", "Firefox installation directory (default: auto-detect)")
	cmd.Flags().StringVar(&flags.CacheDir, "cache-dir", os.Getenv("FV_CACHE_DIR"), "Extraction cache directory")
	cmd.Flags().Int64Var(&flags.MaxArchiveSize, "max-archive-size", 0, "Largest omni.ja to open, in bytes (default 100 MiB)")
	cmd.Flags().BoolVar(&flags.RefreshCache, "refresh-cache", false, "Re-extract omni.ja even if the cache is fresh")

	return cmd
}

func mergeConfig(flags *MergeFlags) merge.Config {
	cfg := merge.DefaultConfig()
	cfg.IncludeBuiltins = !flags.NoBuiltins
	cfg.IncludeGlobals = !flags.NoGlobals
	cfg.IncludeUser = !flags.NoUser
	cfg.ContinueOnError = !flags.Strict
	cfg.InstallDir = flags.InstallDir
	cfg.Extract.CacheDir = flags.CacheDir
	cfg.Extract.ForceRefresh = flags.RefreshCache
	if flags.MaxArchiveSize > 0 {
		cfg.Extract.MaxArchiveSize = flags.MaxArchiveSize
	}
	return cfg
}

func runMerge(cmd *cobra.Command, flags *MergeFlags) error {
	profileDir, err := resolveProfileDir(&flags.ProfileFlags)
	if err != nil {
		return err
	}

	merged, err := merge.AllPreferences(profileDir, mergeConfig(flags))
	if err != nil {
		return err
	}
	for _, warning := range merged.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", warning)
	}

	entries := merged.Entries
	if len(flags.Queries) > 0 {
		entries, err = query.Preferences(entries, flags.Queries)
		if err != nil {
			return err
		}
	}

	if flags.Get != "" {
		return printValue(cmd.OutOrStdout(), entries, flags.Get)
	}
	if flags.Format == formatJSON {
		merged.Entries = annotateExplanations(entries)
		if flags.UnexplainedOnly {
			merged.Entries = filterUnexplained(merged.Entries)
		}
		return printJSON(cmd.OutOrStdout(), merged)
	}
	return printEntries(cmd.OutOrStdout(), entries, outputOptions{
		Format:          flags.Format,
		UnexplainedOnly: flags.UnexplainedOnly,
		WithProvenance:  true,
	})
}
