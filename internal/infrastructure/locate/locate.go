// Package locate discovers Firefox installations on the local system.
//
// An installation directory is considered valid when it holds an omni.ja
// (root or browser/) or a greprefs.js. The version is read from
// application.ini, falling back to platform.ini; installs without either
// report "unknown".
package locate

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-ini/ini"
)

// Installation describes one discovered Firefox install.
type Installation struct {
	Path        string `json:"path"`
	Version     string `json:"version"`
	HasOmniJA   bool   `json:"has_omni_ja"`
	HasGrePrefs bool   `json:"has_greprefs"`
}

// OmniPath returns the archive path for this install, preferring
// browser/omni.ja, which carries the desktop-browser defaults.
func (i *Installation) OmniPath() (string, bool) {
	for _, candidate := range []string{
		filepath.Join(i.Path, "browser", "omni.ja"),
		filepath.Join(i.Path, "omni.ja"),
	} {
		if fileExists(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// NotFoundError reports that no directory in the platform search list held a
// Firefox installation.
type NotFoundError struct {
	Searched []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no Firefox installation found (searched: %s)", strings.Join(e.Searched, ", "))
}

// FindInstallation returns the first valid installation from the platform
// search paths.
func FindInstallation() (*Installation, error) {
	paths := searchPaths(runtime.GOOS)
	for _, path := range paths {
		if install, err := Validate(path); err == nil {
			return install, nil
		}
	}
	return nil, &NotFoundError{Searched: paths}
}

// FindAllInstallations returns every valid installation from the platform
// search paths. Invalid or missing directories are skipped silently.
func FindAllInstallations() []Installation {
	var installs []Installation
	for _, path := range searchPaths(runtime.GOOS) {
		if install, err := Validate(path); err == nil {
			installs = append(installs, *install)
		}
	}
	return installs
}

// Validate checks that path holds a Firefox installation and fills in its
// metadata. A directory qualifies when omni.ja or greprefs.js is present.
func Validate(path string) (*Installation, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &NotFoundError{Searched: []string{path}}
	}

	hasOmni := fileExists(filepath.Join(path, "browser", "omni.ja")) ||
		fileExists(filepath.Join(path, "omni.ja"))
	hasGrePrefs := fileExists(filepath.Join(path, "greprefs.js")) ||
		fileExists(filepath.Join(path, "browser", "greprefs.js"))

	if !hasOmni && !hasGrePrefs {
		return nil, &NotFoundError{Searched: []string{path}}
	}

	version, err := Version(path)
	if err != nil {
		version = "unknown"
	}

	return &Installation{
		Path:        path,
		Version:     version,
		HasOmniJA:   hasOmni,
		HasGrePrefs: hasGrePrefs,
	}, nil
}

// Version reads the install's version string from application.ini, or
// platform.ini when application.ini is absent.
func Version(installPath string) (string, error) {
	for _, name := range []string{"application.ini", "platform.ini"} {
		iniPath := filepath.Join(installPath, name)
		if !fileExists(iniPath) {
			continue
		}
		version, err := versionFromINI(iniPath)
		if err != nil {
			return "", err
		}
		return version, nil
	}
	return "", fmt.Errorf("no version info found under %s", installPath)
}

// versionFromINI finds a Version key in any section of the file. Firefox
// keeps it under [App] in application.ini, but distributions move it around.
func versionFromINI(path string) (string, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	for _, section := range cfg.Sections() {
		if section.HasKey("Version") {
			if v := strings.TrimSpace(section.Key("Version").String()); v != "" {
				return v, nil
			}
		}
	}
	return "", fmt.Errorf("no Version key in %s", path)
}

// searchPaths returns the installation directories to check for the given
// platform, in priority order.
func searchPaths(goos string) []string {
	switch goos {
	case "linux":
		paths := []string{
			"/usr/lib/firefox",
			"/usr/lib64/firefox",
			"/opt/firefox",
			"/usr/local/firefox",
			"/opt/firefox-beta",
			"/opt/firefox-esr",
		}
		return append(paths, nixStorePaths()...)
	case "darwin":
		return []string{
			"/Applications/Firefox.app/Contents/Resources",
			"/Applications/Firefox Beta.app/Contents/Resources",
			"/Applications/Firefox Developer Edition.app/Contents/Resources",
			"/Applications/Firefox ESR.app/Contents/Resources",
		}
	case "windows":
		return []string{
			`C:\Program Files\Mozilla Firefox`,
			`C:\Program Files\Firefox Beta`,
			`C:\Program Files\Firefox ESR`,
			`C:\Program Files\Mozilla Firefox ESR`,
			`C:\Program Files (x86)\Mozilla Firefox`,
			`C:\Program Files (x86)\Firefox Beta`,
			`C:\Program Files (x86)\Firefox ESR`,
			`C:\Program Files (x86)\Mozilla Firefox ESR`,
			`C:\Program Files\Mozilla Firefox Developer Edition`,
		}
	default:
		return nil
	}
}

// nixStorePaths resolves the NixOS firefox launcher symlinks to their store
// directories, since NixOS installs never land on the standard paths.
func nixStorePaths() []string {
	var paths []string
	for _, link := range []string{
		"/nix/var/nix/profiles/default/bin/firefox",
		"/run/current-system/sw/bin/firefox",
	} {
		target, err := os.Readlink(link)
		if err != nil {
			continue
		}
		paths = append(paths, filepath.Dir(target))
	}
	return paths
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
