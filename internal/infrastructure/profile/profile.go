// Package profile resolves Firefox profile directories.
//
// The primary source is profiles.ini; when it is missing or does not name the
// requested profile, the profiles directory is scanned for standard
// "<salt>.<name>" directory names. The scan matters on setups (NixOS
// home-manager in particular) where the ini's Name does not match the
// directory.
package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-ini/ini"
)

// Profile is one [ProfileN] entry from profiles.ini.
type Profile struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	IsRelative bool   `json:"is_relative"`
	IsDefault  bool   `json:"is_default"`
	// LockedToInstall is the install hash whose [<hash>] section names this
	// profile as its default (Firefox 67+ dedicated-profile sections).
	LockedToInstall string `json:"locked_to_install,omitempty"`
}

// Dir returns the profile's absolute directory, resolving relative paths
// against the profiles directory.
func (p *Profile) Dir(profilesDir string) string {
	if p.IsRelative {
		return filepath.Join(profilesDir, filepath.FromSlash(p.Path))
	}
	return p.Path
}

// NotFoundError reports that no profile matched the requested name.
type NotFoundError struct {
	Name string
	Dir  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("profile %q not found in %s", e.Name, e.Dir)
}

// AmbiguousError reports that a directory scan matched more than one profile.
type AmbiguousError struct {
	Name    string
	Matches []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("multiple profiles match %q: %s (use the full directory name)",
		e.Name, strings.Join(e.Matches, ", "))
}

// ProfilesDir returns the platform's Firefox profiles base directory.
func ProfilesDir() (string, error) {
	return profilesDirFor(runtime.GOOS)
}

func profilesDirFor(goos string) (string, error) {
	switch goos {
	case "linux":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, ".mozilla", "firefox"), nil
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, "Library", "Application Support", "Firefox"), nil
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA environment variable not set")
		}
		return filepath.Join(appData, "Mozilla", "Firefox"), nil
	default:
		return "", fmt.Errorf("unsupported operating system %q", goos)
	}
}

// ListProfiles parses profiles.ini under profilesDir and returns every
// profile, annotated with the install hash it is locked to, if any.
func ListProfiles(profilesDir string) ([]Profile, error) {
	iniPath := filepath.Join(profilesDir, "profiles.ini")
	cfg, err := ini.Load(iniPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", iniPath, err)
	}

	profiles := parseProfileSections(cfg)
	installs := parseInstallSections(cfg)

	for i := range profiles {
		for hash, defaultPath := range installs {
			if defaultPath == profiles[i].Path {
				profiles[i].LockedToInstall = hash
				break
			}
		}
	}
	return profiles, nil
}

// FindProfilePath resolves a profile name to its directory. profiles.ini is
// consulted first; if it has no live entry for the name, the directory scan
// fallback runs.
func FindProfilePath(profilesDir, name string) (string, error) {
	iniPath := filepath.Join(profilesDir, "profiles.ini")
	if cfg, err := ini.Load(iniPath); err == nil {
		for _, p := range parseProfileSections(cfg) {
			if p.Name != name {
				continue
			}
			dir := p.Dir(profilesDir)
			if info, err := os.Stat(dir); err == nil && info.IsDir() {
				return dir, nil
			}
		}
	}
	return scanProfilesDir(profilesDir, name)
}

// PrefsPath returns the prefs.js path inside a profile directory.
func PrefsPath(profileDir string) string {
	return filepath.Join(profileDir, "prefs.js")
}

// parseProfileSections extracts the [ProfileN] sections. Entries missing a
// Name or Path are skipped. IsRelative defaults to 1 per Firefox behavior.
func parseProfileSections(cfg *ini.File) []Profile {
	var profiles []Profile
	for _, section := range cfg.Sections() {
		if !strings.HasPrefix(strings.ToLower(section.Name()), "profile") {
			continue
		}
		name := section.Key("Name").String()
		path := section.Key("Path").String()
		if name == "" || path == "" {
			continue
		}
		profiles = append(profiles, Profile{
			Name:       name,
			Path:       path,
			IsRelative: section.Key("IsRelative").MustInt(1) == 1,
			IsDefault:  section.Key("Default").MustInt(0) == 1,
		})
	}
	return profiles
}

// parseInstallSections extracts the hash-named install sections, mapping each
// install hash to its default profile path.
func parseInstallSections(cfg *ini.File) map[string]string {
	installs := make(map[string]string)
	for _, section := range cfg.Sections() {
		lower := strings.ToLower(section.Name())
		if strings.HasPrefix(lower, "profile") || lower == "general" ||
			section.Name() == ini.DefaultSection {
			continue
		}
		if section.HasKey("Default") {
			installs[section.Name()] = section.Key("Default").String()
		}
	}
	return installs
}

// scanProfilesDir matches a profile name against directory names: an exact
// match wins outright, and the Firefox "<salt>.<name>" pattern is collected.
// More than one pattern match is an error rather than a guess.
func scanProfilesDir(profilesDir, name string) (string, error) {
	entries, err := os.ReadDir(profilesDir)
	if err != nil {
		return "", fmt.Errorf("reading profiles directory %s: %w", profilesDir, err)
	}

	var matches []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dirName := entry.Name()
		if dirName == name {
			return filepath.Join(profilesDir, dirName), nil
		}
		if strings.HasSuffix(dirName, "."+name) {
			matches = append(matches, dirName)
		}
	}

	switch len(matches) {
	case 0:
		return "", &NotFoundError{Name: name, Dir: profilesDir}
	case 1:
		return filepath.Join(profilesDir, matches[0]), nil
	default:
		return "", &AmbiguousError{Name: name, Matches: matches}
	}
}
