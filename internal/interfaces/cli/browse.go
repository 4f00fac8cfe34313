package cli

import (
	"fmt"
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"

	"foxview.dev/cli/internal/application/merge"
	"foxview.dev/cli/internal/core/prefs"
)

var (
	browseTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	browseFilterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	browseKeyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("81"))
	browseSourceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	browseHelpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// NewBrowseCommand creates the browse command
func NewBrowseCommand() *cobra.Command {
	flags := &MergeFlags{}

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Interactively browse the merged configuration",
		Long: `Open a scrolling browser over the merged preferences. Type to filter by
key substring, arrow keys or PgUp/PgDn to scroll, Esc to clear the
filter, Ctrl+C to quit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(flags)
		},
	}

	addProfileFlags(cmd, &flags.ProfileFlags)
	cmd.Flags().BoolVar(&flags.NoBuiltins, "no-builtins", false, "Skip built-in defaults from omni.ja")
	cmd.Flags().BoolVar(&flags.NoGlobals, "no-globals", false, "Skip global defaults from greprefs.js")
	cmd.Flags().BoolVar(&flags.NoUser, "no-user", false, "Skip the profile's prefs.js")
	cmd.Flags().StringVar(&flags.InstallDir, "install-dir", "", "Firefox installation directory (default: auto-detect)")
	cmd.Flags().StringVar(&flags.CacheDir, "cache-dir", "", "Extraction cache directory")

	return cmd
}

func runBrowse(flags *MergeFlags) error {
	profileDir, err := resolveProfileDir(&flags.ProfileFlags)
	if err != nil {
		return err
	}
	merged, err := merge.AllPreferences(profileDir, mergeConfig(flags))
	if err != nil {
		return err
	}

	model := newBrowseModel(annotateExplanations(merged.Entries))
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	return err
}

type browseModel struct {
	entries  []prefs.PrefEntry
	filtered []prefs.PrefEntry
	filter   string
	offset   int
	width    int
	height   int
}

func newBrowseModel(entries []prefs.PrefEntry) *browseModel {
	return &browseModel{entries: entries, filtered: entries, width: 80, height: 24}
}

func (m *browseModel) Init() tea.Cmd {
	return nil
}

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEsc:
			if m.filter == "" {
				return m, tea.Quit
			}
			m.filter = ""
			m.applyFilter()
		case tea.KeyBackspace:
			if m.filter != "" {
				_, size := utf8.DecodeLastRuneInString(m.filter)
				m.filter = m.filter[:len(m.filter)-size]
				m.applyFilter()
			}
		case tea.KeyUp:
			m.scroll(-1)
		case tea.KeyDown:
			m.scroll(1)
		case tea.KeyPgUp:
			m.scroll(-m.pageSize())
		case tea.KeyPgDown:
			m.scroll(m.pageSize())
		case tea.KeyHome:
			m.offset = 0
		case tea.KeyRunes:
			m.filter += string(msg.Runes)
			m.applyFilter()
		}
	}
	return m, nil
}

func (m *browseModel) View() string {
	var b strings.Builder

	title := fmt.Sprintf("foxview — %d preferences", len(m.filtered))
	b.WriteString(browseTitleStyle.Render(title))
	if m.filter != "" {
		b.WriteString("  ")
		b.WriteString(browseFilterStyle.Render("filter: " + m.filter))
	}
	b.WriteString("\n\n")

	end := m.offset + m.pageSize()
	if end > len(m.filtered) {
		end = len(m.filtered)
	}
	for _, e := range m.filtered[m.offset:end] {
		line := fmt.Sprintf("%s = %s  %s",
			browseKeyStyle.Render(e.Key),
			e.Value.String(),
			browseSourceStyle.Render(provenance(e)))
		b.WriteString(ansi.Truncate(line, m.width, "…"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(browseHelpStyle.Render("type to filter · ↑/↓ PgUp/PgDn scroll · Esc clear · Ctrl+C quit"))
	return b.String()
}

func (m *browseModel) applyFilter() {
	m.offset = 0
	if m.filter == "" {
		m.filtered = m.entries
		return
	}
	needle := strings.ToLower(m.filter)
	filtered := make([]prefs.PrefEntry, 0, len(m.entries))
	for _, e := range m.entries {
		if strings.Contains(strings.ToLower(e.Key), needle) {
			filtered = append(filtered, e)
		}
	}
	m.filtered = filtered
}

func (m *browseModel) pageSize() int {
	// Title, blank line, blank line, help line.
	size := m.height - 4
	if size < 1 {
		size = 1
	}
	return size
}

func (m *browseModel) scroll(delta int) {
	m.offset += delta
	max := len(m.filtered) - m.pageSize()
	if max < 0 {
		max = 0
	}
	if m.offset > max {
		m.offset = max
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func provenance(e prefs.PrefEntry) string {
	if e.Source == prefs.SourceUnset {
		return ""
	}
	if e.SourceFile != "" {
		return fmt.Sprintf("[%s %s]", e.Source, e.SourceFile)
	}
	return fmt.Sprintf("[%s]", e.Source)
}
