// internal/fetch/detect.go
package fetch

import (
	"regexp"
	"strings"
)

var (
	scriptTagRe = regexp.MustCompile(`(?i)<script\b`)
	divTagRe    = regexp.MustCompile(`(?i)<div\b`)
)

// spaMarkers are mount points and bootstrap globals left by client-side frameworks.
var spaMarkers = []string{
	`id="root"`,
	`id="app"`,
	`id="__next"`,
	`id="___gatsby"`,
	`data-reactroot`,
	`ng-app`,
	`ng-version`,
	`data-v-app`,
	`window.__nuxt__`,
	`window.__initial_state__`,
	`wix-thunderbolt`,
}

// DetectFramework returns the client-side framework a page appears to use, or "".
func DetectFramework(raw string) string {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "data-reactroot") || strings.Contains(lower, `id="__next"`) || strings.Contains(lower, "react-dom"):
		return "react"
	case strings.Contains(lower, "data-v-app") || strings.Contains(lower, "window.__nuxt__") || strings.Contains(lower, "vue.runtime"):
		return "vue"
	case strings.Contains(lower, "ng-version") || strings.Contains(lower, "ng-app"):
		return "angular"
	case strings.Contains(lower, "wix-thunderbolt") || strings.Contains(lower, "static.parastorage.com"):
		return "wix"
	}
	return ""
}

// NeedsJavaScript reports whether the raw markup looks like a shell that only
// renders its content client-side. sanitizedText is the visible text left after
// sanitizing.
func NeedsJavaScript(raw, sanitizedText string) bool {
	lower := strings.ToLower(raw)
	scripts := len(scriptTagRe.FindAllStringIndex(lower, -1))
	visible := len(strings.Fields(sanitizedText))

	if scripts == 0 {
		return false
	}
	if visible < 20 {
		return true
	}

	for _, marker := range spaMarkers {
		if strings.Contains(lower, marker) && visible < 100 {
			return true
		}
	}

	return len(divTagRe.FindAllStringIndex(lower, -1)) < 3 && scripts > 5
}
