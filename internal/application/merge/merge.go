// Package merge combines Firefox preferences from built-in defaults
// (omni.ja), global defaults (greprefs.js), and the profile's prefs.js into
// one effective view.
//
// Tiers load in fixed precedence order — BuiltIn, then GlobalDefault, then
// User — into a key-indexed map, so a later tier's entry overwrites an
// earlier tier's for the same key.
package merge

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/log"

	"foxview.dev/cli/internal/core/prefs"
	"foxview.dev/cli/internal/infrastructure/locate"
	"foxview.dev/cli/internal/infrastructure/omni"
)

// findInstallation resolves the Firefox installation when Config.InstallDir
// is empty. A variable so tests can exercise the discovery branch without a
// system-wide Firefox install.
var findInstallation = locate.FindInstallation

// Config selects which tiers participate and how failures are handled.
type Config struct {
	// IncludeBuiltins loads built-in defaults out of omni.ja.
	IncludeBuiltins bool
	// IncludeGlobals loads greprefs.js from the installation directory.
	IncludeGlobals bool
	// IncludeUser loads prefs.js from the profile directory.
	IncludeUser bool
	// ContinueOnError turns tier-load failures into warnings instead of
	// aborting the merge.
	ContinueOnError bool
	// InstallDir pins the Firefox installation; empty means auto-detect.
	InstallDir string
	// Extract configures the omni.ja extractor for the built-in tier.
	Extract omni.ExtractConfig
}

// DefaultConfig enables all three tiers with tolerant error handling.
func DefaultConfig() Config {
	return Config{
		IncludeBuiltins: true,
		IncludeGlobals:  true,
		IncludeUser:     true,
		ContinueOnError: true,
		Extract:         omni.DefaultExtractConfig(),
	}
}

// MergedPreferences is the result of one merge invocation.
type MergedPreferences struct {
	// Entries holds the effective preference per key, sorted by key.
	Entries []prefs.PrefEntry `json:"entries"`
	// InstallPath is the resolved installation directory, when one was
	// needed and found.
	InstallPath string `json:"install_path,omitempty"`
	// ProfilePath is the profile directory the user tier was read from.
	ProfilePath string `json:"profile_path"`
	// LoadedSources records each tier that contributed, in load order.
	LoadedSources []prefs.PrefSource `json:"loaded_sources"`
	// Warnings collects per-tier failures when ContinueOnError is set.
	Warnings []string `json:"warnings,omitempty"`
}

// AllPreferences merges every enabled tier for the given profile directory.
// With ContinueOnError set, a tier that fails to load is reported in
// Warnings and the merge proceeds; otherwise the first failure aborts.
func AllPreferences(profileDir string, cfg Config) (*MergedPreferences, error) {
	result := &MergedPreferences{ProfilePath: profileDir}
	prefMap := make(map[string]prefs.PrefEntry)

	installPath := cfg.InstallDir
	if installPath == "" && (cfg.IncludeBuiltins || cfg.IncludeGlobals) {
		install, err := findInstallation()
		if err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Firefox installation not found: %v", err))
		} else {
			log.Debug("found Firefox installation",
				"version", install.Version, "path", install.Path)
			// Discovery is recorded as a built-in source even before the
			// tier loads; a successful load records it again.
			result.LoadedSources = append(result.LoadedSources, prefs.SourceBuiltIn)
			installPath = install.Path
		}
	}
	result.InstallPath = installPath

	if cfg.IncludeBuiltins && installPath != "" {
		builtins, err := loadBuiltins(installPath, cfg.Extract, result)
		if err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("failed to load built-in preferences: %v", err))
			if !cfg.ContinueOnError {
				return nil, fmt.Errorf("failed to load built-in preferences: %w", err)
			}
		} else {
			log.Debug("loaded built-in preferences", "count", len(builtins))
			for _, entry := range builtins {
				prefMap[entry.Key] = entry
			}
			result.LoadedSources = append(result.LoadedSources, prefs.SourceBuiltIn)
		}
	}

	if cfg.IncludeGlobals && installPath != "" {
		globals, err := loadGlobals(installPath)
		if err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("failed to load global preferences: %v", err))
			if !cfg.ContinueOnError {
				return nil, fmt.Errorf("failed to load global preferences: %w", err)
			}
		} else {
			log.Debug("loaded global preferences", "count", len(globals))
			for _, entry := range globals {
				prefMap[entry.Key] = entry
			}
			result.LoadedSources = append(result.LoadedSources, prefs.SourceGlobalDefault)
		}
	}

	if cfg.IncludeUser {
		user, err := loadUser(profileDir)
		if err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("failed to load user preferences: %v", err))
			if !cfg.ContinueOnError {
				return nil, fmt.Errorf("failed to load user preferences: %w", err)
			}
		} else {
			log.Debug("loaded user preferences", "count", len(user))
			for _, entry := range user {
				prefMap[entry.Key] = entry
			}
			result.LoadedSources = append(result.LoadedSources, prefs.SourceUser)
		}
	}

	result.Entries = make([]prefs.PrefEntry, 0, len(prefMap))
	for _, entry := range prefMap {
		result.Entries = append(result.Entries, entry)
	}
	sort.Slice(result.Entries, func(i, j int) bool {
		return result.Entries[i].Key < result.Entries[j].Key
	})
	return result, nil
}

// EffectivePref returns the entry for key, or false if absent. Entries from
// AllPreferences already hold the highest-precedence value per key.
func EffectivePref(entries []prefs.PrefEntry, key string) (*prefs.PrefEntry, bool) {
	for i := range entries {
		if entries[i].Key == key {
			return &entries[i], true
		}
	}
	return nil, false
}

// loadBuiltins extracts preference files from the installation's omni.ja and
// parses each one. Files that fail to parse become warnings, not errors.
func loadBuiltins(installPath string, extractCfg omni.ExtractConfig, result *MergedPreferences) ([]prefs.PrefEntry, error) {
	omniPath, ok := findOmniArchive(installPath)
	if !ok {
		return nil, &prefs.FileNotFoundError{File: filepath.Join(installPath, "omni.ja")}
	}

	extractor, err := omni.NewExtractorWithConfig(omniPath, extractCfg)
	if err != nil {
		return nil, err
	}
	files, err := extractor.ExtractPrefs()
	if err != nil {
		return nil, err
	}
	cacheDir, err := extractor.CacheDir()
	if err != nil {
		return nil, err
	}

	var all []prefs.PrefEntry
	for _, file := range files {
		entries, err := prefs.ParseFile(file)
		if err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("failed to parse %s: %v", file, err))
			continue
		}
		sourceFile := "omni.ja"
		if rel, err := filepath.Rel(cacheDir, file); err == nil {
			sourceFile = "omni.ja:" + filepath.ToSlash(rel)
		}
		for i := range entries {
			entries[i].Source = prefs.SourceBuiltIn
			entries[i].SourceFile = sourceFile
		}
		all = append(all, entries...)
	}
	return all, nil
}

// loadGlobals parses the installation's greprefs.js.
func loadGlobals(installPath string) ([]prefs.PrefEntry, error) {
	grePath, ok := findGrePrefs(installPath)
	if !ok {
		return nil, &prefs.FileNotFoundError{File: filepath.Join(installPath, "greprefs.js")}
	}

	entries, err := prefs.ParseFile(grePath)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Source = prefs.SourceGlobalDefault
		entries[i].SourceFile = "greprefs.js"
	}
	return entries, nil
}

// loadUser parses the profile's prefs.js.
func loadUser(profileDir string) ([]prefs.PrefEntry, error) {
	prefsPath := filepath.Join(profileDir, "prefs.js")
	entries, err := prefs.ParseFile(prefsPath)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Source = prefs.SourceUser
		entries[i].SourceFile = "prefs.js"
	}
	return entries, nil
}

func findOmniArchive(installPath string) (string, bool) {
	for _, candidate := range []string{
		filepath.Join(installPath, "browser", "omni.ja"),
		filepath.Join(installPath, "omni.ja"),
	} {
		if fileExists(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func findGrePrefs(installPath string) (string, bool) {
	for _, candidate := range []string{
		filepath.Join(installPath, "greprefs.js"),
		filepath.Join(installPath, "browser", "greprefs.js"),
	} {
		if fileExists(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
