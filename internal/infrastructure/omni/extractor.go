// Package omni extracts preference files from omni.ja resource bundles.
//
// omni.ja is a ZIP container, sometimes written with enough format quirks
// (notably on NixOS builds) to defeat a conforming reader, so extraction
// tries a native ZIP decoder first and falls back to the external unzip
// binary. Extracted files land in a cache directory owned by the Extractor
// instance; the cache has no cross-process locking, so concurrent processes
// sharing a cache directory must serialize access themselves.
package omni

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/zip"

	"foxview.dev/cli/internal/core/prefs"
)

// DefaultMaxArchiveSize is the default ceiling on the archive file itself.
const DefaultMaxArchiveSize = 100 * 1024 * 1024

// maxEntrySize caps the uncompressed size of any single extracted entry.
// An entry claiming more than this is treated as a decompression bomb and
// skipped. The guard runs after the pattern filter, so entries that never
// match a target are not measured at all.
const maxEntrySize = 10 * 1024 * 1024

// ExtractConfig controls what gets pulled out of an archive and where.
type ExtractConfig struct {
	// MaxArchiveSize is the largest archive the extractor will open.
	MaxArchiveSize int64
	// CacheDir overrides the extraction cache location. When empty, a
	// per-instance temporary directory is used.
	CacheDir string
	// TargetFiles lists glob-like patterns selecting entries to extract.
	// Empty means every .js entry. greprefs.js is always extracted.
	TargetFiles []string
	// ForceRefresh skips cache reuse and re-extracts unconditionally.
	ForceRefresh bool
}

// DefaultExtractConfig returns the configuration used by the merge pipeline.
func DefaultExtractConfig() ExtractConfig {
	return ExtractConfig{MaxArchiveSize: DefaultMaxArchiveSize}
}

// Extractor reads preference files out of one omni.ja archive.
type Extractor struct {
	archivePath string
	config      ExtractConfig
	// tempDir is the per-instance cache used when config.CacheDir is empty.
	tempDir string
}

// NewExtractor creates an extractor with the default configuration.
func NewExtractor(archivePath string) (*Extractor, error) {
	return NewExtractorWithConfig(archivePath, DefaultExtractConfig())
}

// NewExtractorWithConfig creates an extractor, validating that the archive
// exists and is within the size ceiling. Both checks happen here so a
// too-large archive fails before a single entry is read.
func NewExtractorWithConfig(archivePath string, config ExtractConfig) (*Extractor, error) {
	if config.MaxArchiveSize <= 0 {
		config.MaxArchiveSize = DefaultMaxArchiveSize
	}

	info, err := os.Stat(archivePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &prefs.FileNotFoundError{File: archivePath}
		}
		return nil, fmt.Errorf("stat %s: %w", archivePath, err)
	}
	if info.Size() > config.MaxArchiveSize {
		return nil, &ArchiveTooLargeError{Actual: info.Size(), Limit: config.MaxArchiveSize}
	}

	e := &Extractor{archivePath: archivePath, config: config}
	if config.CacheDir == "" {
		tempDir, err := os.MkdirTemp("", "foxview-omni-")
		if err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
		e.tempDir = tempDir
	}
	return e, nil
}

// ExtractPrefs extracts the matching preference files, reusing a valid cache
// unless ForceRefresh is set. It returns the absolute paths of the extracted
// files.
func (e *Extractor) ExtractPrefs() ([]string, error) {
	if !e.config.ForceRefresh {
		if cached, err := e.loadFromCache(); err == nil {
			return cached, nil
		}
	}

	files, err := e.extractWithZipReader()
	if err != nil {
		log.Warn("native zip reader failed, falling back to unzip",
			"archive", e.archivePath, "error", err)
		return e.extractWithUnzip()
	}
	return files, nil
}

// ListJSFiles returns the names of all .js entries in the archive without
// extracting them, using the same native-then-fallback strategy.
func (e *Extractor) ListJSFiles() ([]string, error) {
	names, err := e.listWithZipReader()
	if err != nil {
		return e.listWithUnzip()
	}
	return names, nil
}

// CacheDir returns the directory extracted files are written under. Paths
// returned by ExtractPrefs are relative to it the same way the archive
// entries were.
func (e *Extractor) CacheDir() (string, error) {
	return e.cachePath()
}

// ClearCache removes the cache directory and everything under it.
func (e *Extractor) ClearCache() error {
	cacheDir, err := e.cachePath()
	if err != nil {
		return err
	}
	return os.RemoveAll(cacheDir)
}

// shouldExtract decides whether an archive entry is wanted. greprefs.js is
// always wanted. With no configured targets, any .js entry matches. A target
// ending in "*.js" matches entries with that prefix and a .js suffix; any
// other target must match exactly.
func (e *Extractor) shouldExtract(name string) bool {
	if name == "greprefs.js" || strings.HasSuffix(name, "/greprefs.js") {
		return true
	}

	if len(e.config.TargetFiles) == 0 {
		return strings.HasSuffix(name, ".js")
	}

	for _, pattern := range e.config.TargetFiles {
		if strings.HasSuffix(pattern, "*.js") {
			prefix := pattern[:len(pattern)-len("*.js")]
			if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".js") {
				return true
			}
		} else if name == pattern {
			return true
		}
	}
	return false
}

// isUnsafeEntryName flags path-traversal attempts. Entries with parent
// references or absolute paths are never extracted, regardless of whether
// they would match a target pattern.
func isUnsafeEntryName(name string) bool {
	return strings.Contains(name, "..") ||
		strings.HasPrefix(name, "/") ||
		strings.HasPrefix(name, "\\")
}

// extractWithZipReader is the native extraction path.
func (e *Extractor) extractWithZipReader() ([]string, error) {
	reader, err := zip.OpenReader(e.archivePath)
	// The reader flags insecure entry names itself; those entries are
	// filtered below, so a usable reader with that error still proceeds.
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, &ExtractionError{Message: err.Error()}
	}
	defer reader.Close()

	cacheDir, err := e.cachePath()
	if err != nil {
		return nil, err
	}

	var extracted []string
	for _, entry := range reader.File {
		name := entry.Name
		if isUnsafeEntryName(name) {
			continue
		}
		if !e.shouldExtract(name) {
			continue
		}
		if entry.CompressedSize64 > 0 && entry.UncompressedSize64 > maxEntrySize {
			log.Warn("skipping oversized archive entry",
				"entry", name, "uncompressed", entry.UncompressedSize64)
			continue
		}

		outPath := filepath.Join(cacheDir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", filepath.Dir(outPath), err)
		}
		if err := copyEntry(entry, outPath); err != nil {
			return nil, &ExtractionError{Message: fmt.Sprintf("extracting %s: %v", name, err)}
		}
		extracted = append(extracted, outPath)
	}
	return extracted, nil
}

func copyEntry(entry *zip.File, outPath string) error {
	rc, err := entry.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	// Limit the copy in case the entry header lies about its size.
	_, err = io.Copy(out, io.LimitReader(rc, maxEntrySize+1))
	return err
}

// extractWithUnzip shells out to the unzip binary, extracts everything into
// the cache directory, then walks the result applying the same filter and
// deleting entries that fail it. unzip's non-zero exit statuses often mean
// warnings (extra bytes, odd headers), so they are tolerated as long as at
// least one target file was produced.
func (e *Extractor) extractWithUnzip() ([]string, error) {
	cacheDir, err := e.cachePath()
	if err != nil {
		return nil, err
	}

	cmd := exec.Command("unzip", "-q", "-o", e.archivePath, "-d", cacheDir)
	output, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, &ExtractionError{Message: fmt.Sprintf("unzip command failed: %v", err)}
		}
		log.Warn("unzip exited with warnings",
			"archive", e.archivePath, "status", exitErr.ExitCode(),
			"output", strings.TrimSpace(string(output)))
	}

	var extracted []string
	walkErr := filepath.WalkDir(cacheDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) != ".js" {
			return err
		}
		rel, err := filepath.Rel(cacheDir, path)
		if err != nil {
			return err
		}
		if e.shouldExtract(filepath.ToSlash(rel)) {
			extracted = append(extracted, path)
		} else {
			// Not a target; unzip wrote it, so clean it up.
			_ = os.Remove(path)
		}
		return nil
	})
	if walkErr != nil {
		return nil, &ExtractionError{Message: fmt.Sprintf("walking extracted files: %v", walkErr)}
	}
	if len(extracted) == 0 {
		return nil, &ExtractionError{Message: "no .js files were extracted from archive"}
	}
	return extracted, nil
}

func (e *Extractor) listWithZipReader() ([]string, error) {
	reader, err := zip.OpenReader(e.archivePath)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, &ExtractionError{Message: err.Error()}
	}
	defer reader.Close()

	var names []string
	for _, entry := range reader.File {
		if strings.HasSuffix(entry.Name, ".js") {
			names = append(names, entry.Name)
		}
	}
	return names, nil
}

// listWithUnzip parses `unzip -l` output: "  length  date  time  name".
func (e *Extractor) listWithUnzip() ([]string, error) {
	output, err := exec.Command("unzip", "-l", e.archivePath).Output()
	if err != nil {
		return nil, &ExtractionError{Message: fmt.Sprintf("unzip command failed: %v", err)}
	}

	var names []string
	for _, line := range strings.Split(string(output), "\n") {
		if strings.Contains(line, "Length") || strings.Contains(line, "---") || strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Fields(line)
		name := fields[len(fields)-1]
		if strings.HasSuffix(name, ".js") {
			names = append(names, name)
		}
	}
	return names, nil
}

// loadFromCache returns the cached extraction if the cache directory exists,
// is not older than the archive, and holds at least one .js file.
func (e *Extractor) loadFromCache() ([]string, error) {
	cacheDir, err := e.cachePath()
	if err != nil {
		return nil, err
	}

	cacheInfo, err := os.Stat(cacheDir)
	if err != nil {
		return nil, &ExtractionError{Message: "cache not found"}
	}
	archiveInfo, err := os.Stat(e.archivePath)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", e.archivePath, err)
	}
	if cacheInfo.ModTime().Before(archiveInfo.ModTime()) {
		return nil, &ExtractionError{Message: "cache is stale"}
	}

	var cached []string
	walkErr := filepath.WalkDir(cacheDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if filepath.Ext(path) == ".js" {
			cached = append(cached, path)
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walking cache: %w", walkErr)
	}
	if len(cached) == 0 {
		return nil, &ExtractionError{Message: "no cached files"}
	}
	return cached, nil
}

// cachePath resolves the cache directory: an explicit config dir wins, then
// the per-instance temp dir, then a system-temp path keyed by archive name
// and timestamp.
func (e *Extractor) cachePath() (string, error) {
	if e.config.CacheDir != "" {
		return e.config.CacheDir, nil
	}
	if e.tempDir != "" {
		return e.tempDir, nil
	}
	dir := filepath.Join(os.TempDir(), "foxview", "omni",
		fmt.Sprintf("%s_%d", filepath.Base(e.archivePath), time.Now().Unix()))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating cache directory: %w", err)
	}
	return dir, nil
}
