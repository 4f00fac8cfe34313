// Package explain holds a static table of human-readable descriptions for
// well-known preference keys. It is consulted by the output layer only; the
// parser and merger never look at it.
package explain

import "sync"

var initOnce sync.Once
var explanations map[string]string

// buildTable is called once on first lookup. Add new entries here; keep them
// short, describe what the preference controls and what the values mean.
func buildTable() {
	explanations = map[string]string{
		"javascript.enabled": "Master switch for JavaScript execution. When true, " +
			"scripts run in web pages; when false, JavaScript is disabled entirely, " +
			"which breaks most modern sites.",
		"privacy.trackingprotection.enabled": "Enables built-in tracking protection. " +
			"When true, known tracking scripts and third-party tracking cookies are " +
			"blocked; when false, trackers can follow activity across sites.",
		"browser.startup.homepage": "The page (or pipe-separated pages) opened by the " +
			"Home button and, depending on browser.startup.page, at startup.",
		"network.proxy.type": "Proxy configuration mode: 0 means direct connection, " +
			"1 manual proxy settings, 2 proxy auto-config URL, 4 auto-detect, " +
			"5 use system proxy settings.",
		"network.cookie.cookieBehavior": "Cookie acceptance policy: 0 accepts all " +
			"cookies, 1 blocks third-party cookies, 2 blocks all cookies, 3 blocks " +
			"cookies from unvisited sites, 4 blocks known trackers, 5 isolates " +
			"cross-site cookies.",
		"browser.cache.disk.enable": "Controls the on-disk HTTP cache. When false, " +
			"pages are only cached in memory and nothing is written to the cache " +
			"directory.",
		"dom.webnotifications.enabled": "Controls the Web Notifications API. When " +
			"false, sites cannot request or show desktop notifications.",
		"toolkit.telemetry.enabled": "Controls whether telemetry data about browser " +
			"usage and performance is collected and submitted.",
	}
}

// Lookup returns the explanation text for a preference key, if one exists.
func Lookup(key string) (string, bool) {
	initOnce.Do(buildTable)
	text, ok := explanations[key]
	return text, ok
}
