package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"foxview.dev/cli/internal/infrastructure/locate"
)

// NewInstallsCommand creates the installs command
func NewInstallsCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "installs",
		Short: "List Firefox installations found on this system",
		RunE: func(cmd *cobra.Command, args []string) error {
			installs := locate.FindAllInstallations()

			if format == formatJSON {
				return printJSON(cmd.OutOrStdout(), installs)
			}
			if len(installs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No Firefox installations found.")
				return nil
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				BorderStyle(tableBorderStyle).
				StyleFunc(func(row, _ int) lipgloss.Style {
					if row == table.HeaderRow {
						return tableHeaderStyle
					}
					return tableCellStyle
				}).
				Headers("PATH", "VERSION", "OMNI.JA", "GREPREFS.JS")
			for _, install := range installs {
				t.Row(install.Path, install.Version,
					yesNo(install.HasOmniJA), yesNo(install.HasGrePrefs))
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "Output format (table or json)")
	return cmd
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
