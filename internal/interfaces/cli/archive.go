package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"foxview.dev/cli/internal/infrastructure/omni"
)

// NewArchiveCommand creates the archive command group
func NewArchiveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Inspect omni.ja archives directly",
	}
	cmd.AddCommand(newArchiveListCommand())
	cmd.AddCommand(newArchiveExtractCommand())
	return cmd
}

func newArchiveListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list PATH",
		Short: "List the .js entries in an omni.ja archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			extractor, err := omni.NewExtractor(args[0])
			if err != nil {
				return err
			}
			names, err := extractor.ListJSFiles()
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d .js entries\n", len(names))
			return nil
		},
	}
}

// ArchiveExtractFlags holds command-line flags for archive extract
type ArchiveExtractFlags struct {
	OutDir         string
	Targets        []string
	MaxArchiveSize int64
	RefreshCache   bool
}

func newArchiveExtractCommand() *cobra.Command {
	flags := &ArchiveExtractFlags{}

	cmd := &cobra.Command{
		Use:   "extract PATH",
		Short: "Extract preference files from an omni.ja archive",
		Long: `Extract .js preference files from an omni.ja archive into a directory.

Examples:
  fv archive extract /usr/lib/firefox/browser/omni.ja --out /tmp/omni
  fv archive extract omni.ja --target 'defaults/pref/*.js'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := omni.DefaultExtractConfig()
			cfg.CacheDir = flags.OutDir
			cfg.TargetFiles = flags.Targets
			cfg.ForceRefresh = flags.RefreshCache
			if flags.MaxArchiveSize > 0 {
				cfg.MaxArchiveSize = flags.MaxArchiveSize
			}

			extractor, err := omni.NewExtractorWithConfig(args[0], cfg)
			if err != nil {
				return err
			}
			files, err := extractor.ExtractPrefs()
			if err != nil {
				return err
			}
			for _, file := range files {
				fmt.Fprintln(cmd.OutOrStdout(), file)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d files extracted\n", len(files))
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.OutDir, "out", "o", "", "Output directory (default: temporary cache)")
	cmd.Flags().StringArrayVarP(&flags.Targets, "target", "t", nil, "Entry pattern to extract (repeatable; default: all .js)")
	cmd.Flags().Int64Var(&flags.MaxArchiveSize, "max-archive-size", 0, "Largest archive to open, in bytes (default 100 MiB)")
	cmd.Flags().BoolVar(&flags.RefreshCache, "refresh-cache", false, "Re-extract even if the cache is fresh")

	return cmd
}
