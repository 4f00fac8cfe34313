// Package query filters preference entries by glob patterns.
package query

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"

	"foxview.dev/cli/internal/core/prefs"
)

// InvalidGlobPatternError indicates a query pattern that does not compile.
type InvalidGlobPatternError struct {
	Pattern string
}

func (e *InvalidGlobPatternError) Error() string {
	return fmt.Sprintf("invalid glob pattern: %q", e.Pattern)
}

// Preferences returns the entries whose key matches at least one of the given
// glob patterns (OR semantics). All patterns are validated up front, so a
// single bad pattern fails the whole call before any filtering happens.
func Preferences(entries []prefs.PrefEntry, patterns []string) ([]prefs.PrefEntry, error) {
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, &InvalidGlobPatternError{Pattern: pattern}
		}
	}

	var matched []prefs.PrefEntry
	for _, entry := range entries {
		for _, pattern := range patterns {
			ok, err := doublestar.Match(pattern, entry.Key)
			if err != nil {
				return nil, &InvalidGlobPatternError{Pattern: pattern}
			}
			if ok {
				matched = append(matched, entry)
				break
			}
		}
	}
	return matched, nil
}
