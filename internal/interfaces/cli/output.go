package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"foxview.dev/cli/internal/core/explain"
	"foxview.dev/cli/internal/core/prefs"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

var (
	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	tableCellStyle   = lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)
	tableBorderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// outputOptions controls how a preference listing is rendered.
type outputOptions struct {
	Format          string
	UnexplainedOnly bool
	// WithProvenance adds source and source-file columns (merge output).
	WithProvenance bool
}

// annotateExplanations fills in the Explanation field for keys the built-in
// explanation table knows about.
func annotateExplanations(entries []prefs.PrefEntry) []prefs.PrefEntry {
	for i := range entries {
		if text, ok := explain.Lookup(entries[i].Key); ok {
			entries[i].Explanation = text
		}
	}
	return entries
}

// filterUnexplained keeps only entries with no explanation, for spotting
// non-standard or unexpected keys.
func filterUnexplained(entries []prefs.PrefEntry) []prefs.PrefEntry {
	filtered := entries[:0:0]
	for _, e := range entries {
		if e.Explanation == "" {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// printEntries renders a preference listing as JSON or a table.
func printEntries(w io.Writer, entries []prefs.PrefEntry, opts outputOptions) error {
	entries = annotateExplanations(entries)
	if opts.UnexplainedOnly {
		entries = filterUnexplained(entries)
	}

	switch opts.Format {
	case formatJSON:
		return printJSON(w, entries)
	case formatTable, "":
		printTable(w, entries, opts.WithProvenance)
		return nil
	default:
		return fmt.Errorf("unknown format %q (expected %s or %s)", opts.Format, formatTable, formatJSON)
	}
}

// printValue writes the raw value of one key, suitable for shell capture.
func printValue(w io.Writer, entries []prefs.PrefEntry, key string) error {
	for _, e := range entries {
		if e.Key == key {
			fmt.Fprintln(w, e.Value.String())
			return nil
		}
	}
	return fmt.Errorf("preference %q not found", key)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printTable(w io.Writer, entries []prefs.PrefEntry, withProvenance bool) {
	headers := []string{"KEY", "VALUE", "TYPE"}
	if withProvenance {
		headers = append(headers, "SOURCE", "FILE")
	}
	headers = append(headers, "EXPLANATION")

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(tableBorderStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		}).
		Headers(headers...)

	for _, e := range entries {
		row := []string{e.Key, e.Value.String(), e.Type.String()}
		if withProvenance {
			source := ""
			if e.Source != prefs.SourceUnset {
				source = e.Source.String()
			}
			row = append(row, source, e.SourceFile)
		}
		row = append(row, e.Explanation)
		t.Row(row...)
	}

	fmt.Fprintln(w, t.Render())
	fmt.Fprintf(w, "%d preferences\n", len(entries))
}
