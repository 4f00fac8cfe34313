package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foxview.dev/cli/internal/core/prefs"
)

func testEntries() []prefs.PrefEntry {
	return []prefs.PrefEntry{
		{Key: "network.proxy.type", Value: prefs.IntValue(1), Type: prefs.PrefTypeUser},
		{Key: "network.cookie.cookieBehavior", Value: prefs.IntValue(0), Type: prefs.PrefTypeUser},
		{Key: "browser.startup.homepage", Value: prefs.StringValue("https://example.com"), Type: prefs.PrefTypeUser},
		{Key: "browser.search.region", Value: prefs.StringValue("US"), Type: prefs.PrefTypeUser},
		{Key: "javascript.enabled", Value: prefs.BoolValue(true), Type: prefs.PrefTypeDefault},
	}
}

func TestPreferences_SinglePattern(t *testing.T) {
	matched, err := Preferences(testEntries(), []string{"network.*"})
	require.NoError(t, err)
	require.Len(t, matched, 2)
	assert.Equal(t, "network.proxy.type", matched[0].Key)
	assert.Equal(t, "network.cookie.cookieBehavior", matched[1].Key)
}

func TestPreferences_MultiplePatternsOrSemantics(t *testing.T) {
	matched, err := Preferences(testEntries(), []string{"network.*", "javascript.enabled"})
	require.NoError(t, err)
	assert.Len(t, matched, 3)
}

func TestPreferences_ExactMatch(t *testing.T) {
	matched, err := Preferences(testEntries(), []string{"javascript.enabled"})
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "javascript.enabled", matched[0].Key)
}

func TestPreferences_NoMatches(t *testing.T) {
	matched, err := Preferences(testEntries(), []string{"nonexistent.*"})
	require.NoError(t, err)
	assert.Empty(t, matched)
}

func TestPreferences_InvalidPatternFailsFast(t *testing.T) {
	_, err := Preferences(testEntries(), []string{"network.*", "[invalid"})
	require.Error(t, err)
	var globErr *InvalidGlobPatternError
	require.ErrorAs(t, err, &globErr)
	assert.Equal(t, "[invalid", globErr.Pattern)
}

func TestPreferences_NoPatterns(t *testing.T) {
	matched, err := Preferences(testEntries(), nil)
	require.NoError(t, err)
	assert.Empty(t, matched)
}
