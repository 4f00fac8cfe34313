package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"foxview.dev/cli/internal/infrastructure/profile"
)

// NewProfilesCommand creates the profiles command
func NewProfilesCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List Firefox profiles from profiles.ini",
		RunE: func(cmd *cobra.Command, args []string) error {
			profilesDir, err := profile.ProfilesDir()
			if err != nil {
				return err
			}
			profiles, err := profile.ListProfiles(profilesDir)
			if err != nil {
				return err
			}

			if format == formatJSON {
				return printJSON(cmd.OutOrStdout(), profiles)
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
				Headers("NAME", "PATH", "DEFAULT", "LOCKED TO")
			for _, p := range profiles {
				isDefault := ""
				if p.IsDefault {
					isDefault = "yes"
				}
				t.Row(p.Name, p.Dir(profilesDir), isDefault, p.LockedToInstall)
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "Output format (table or json)")
	return cmd
}
