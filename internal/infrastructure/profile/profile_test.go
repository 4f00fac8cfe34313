package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleProfilesINI = `[General]
StartWithLastProfile=1
Version=2

[Profile0]
Name=default
IsRelative=1
Path=Profiles/abcdefgh.default
Default=1

[Profile1]
Name=work
IsRelative=1
Path=Profiles/work.profile

[Profile2]
Name=external
IsRelative=0
Path=/srv/firefox/external-profile

[308046B0AF4A39CB]
Default=Profiles/abcdefgh.default
Locked=1
`

func writeProfilesINI(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "profiles.ini"), []byte(content), 0o644))
}

func TestListProfiles(t *testing.T) {
	dir := t.TempDir()
	writeProfilesINI(t, dir, sampleProfilesINI)

	profiles, err := ListProfiles(dir)
	require.NoError(t, err)
	require.Len(t, profiles, 3)

	assert.Equal(t, "default", profiles[0].Name)
	assert.Equal(t, "Profiles/abcdefgh.default", profiles[0].Path)
	assert.True(t, profiles[0].IsRelative)
	assert.True(t, profiles[0].IsDefault)
	assert.Equal(t, "308046B0AF4A39CB", profiles[0].LockedToInstall)

	assert.Equal(t, "work", profiles[1].Name)
	assert.False(t, profiles[1].IsDefault)
	assert.Empty(t, profiles[1].LockedToInstall)

	assert.Equal(t, "external", profiles[2].Name)
	assert.False(t, profiles[2].IsRelative)
}

func TestListProfiles_MissingINI(t *testing.T) {
	_, err := ListProfiles(t.TempDir())
	require.Error(t, err)
}

func TestListProfiles_SkipsIncompleteSections(t *testing.T) {
	dir := t.TempDir()
	writeProfilesINI(t, dir, "[Profile0]\nName=nameless\n\n[Profile1]\nPath=pathonly\n")

	profiles, err := ListProfiles(dir)
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestProfileDir(t *testing.T) {
	relative := Profile{Path: "Profiles/abc.default", IsRelative: true}
	assert.Equal(t,
		filepath.Join("/base", "Profiles", "abc.default"),
		relative.Dir("/base"))

	absolute := Profile{Path: "/srv/firefox/external-profile", IsRelative: false}
	assert.Equal(t, "/srv/firefox/external-profile", absolute.Dir("/base"))
}

func TestFindProfilePath_FromINI(t *testing.T) {
	dir := t.TempDir()
	writeProfilesINI(t, dir, sampleProfilesINI)
	profileDir := filepath.Join(dir, "Profiles", "abcdefgh.default")
	require.NoError(t, os.MkdirAll(profileDir, 0o755))

	found, err := FindProfilePath(dir, "default")
	require.NoError(t, err)
	assert.Equal(t, profileDir, found)
}

func TestFindProfilePath_ScanFallback(t *testing.T) {
	t.Run("ini_names_missing_directory", func(t *testing.T) {
		dir := t.TempDir()
		writeProfilesINI(t, dir, sampleProfilesINI)
		// The ini's path does not exist; a salted directory does.
		salted := filepath.Join(dir, "xyz12345.default")
		require.NoError(t, os.MkdirAll(salted, 0o755))

		found, err := FindProfilePath(dir, "default")
		require.NoError(t, err)
		assert.Equal(t, salted, found)
	})

	t.Run("exact_directory_name", func(t *testing.T) {
		dir := t.TempDir()
		exact := filepath.Join(dir, "myprofile")
		require.NoError(t, os.MkdirAll(exact, 0o755))

		found, err := FindProfilePath(dir, "myprofile")
		require.NoError(t, err)
		assert.Equal(t, exact, found)
	})

	t.Run("ambiguous", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "aaa.dev"), 0o755))
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "bbb.dev"), 0o755))

		_, err := FindProfilePath(dir, "dev")
		var ambiguous *AmbiguousError
		require.ErrorAs(t, err, &ambiguous)
		assert.Len(t, ambiguous.Matches, 2)
	})

	t.Run("not_found", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "unrelated"), 0o755))

		_, err := FindProfilePath(dir, "ghost")
		var notFound *NotFoundError
		require.ErrorAs(t, err, &notFound)
	})
}

func TestPrefsPath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("/p", "dir", "prefs.js"),
		PrefsPath(filepath.Join("/p", "dir")))
}

func TestProfilesDirFor(t *testing.T) {
	t.Run("windows_requires_appdata", func(t *testing.T) {
		t.Setenv("APPDATA", `C:\Users\test\AppData\Roaming`)
		dir, err := profilesDirFor("windows")
		require.NoError(t, err)
		assert.Contains(t, dir, "Mozilla")
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := profilesDirFor("plan9")
		require.Error(t, err)
	})
}
