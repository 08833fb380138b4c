// Package interpret cleans analyst responses before they reach the
// session store.
//
// The markup filter is a heuristic against a backend that sometimes
// echoes presentation markup instead of prose. It is best-effort: any
// legitimate answer containing a brace is dropped too.
package interpret

import (
	"strings"

	"github.com/DachengChen/paiAnalyst/session"
)

// markupSignatures are matched against the lower-cased, trimmed body.
var markupSignatures = []string{
	"background-color:",
	"border-radius:",
	"<style",
	"<script",
	"padding:",
	"font-size:",
	"{",
	"}",
}

// IsMarkupLeak reports whether body looks like leaked styling or script
// rather than natural language.
func IsMarkupLeak(body string) bool {
	b := strings.ToLower(strings.TrimSpace(body))
	for _, sig := range markupSignatures {
		if strings.Contains(b, sig) {
			return true
		}
	}
	return false
}

// Filter drops markup-leaking text fragments and trims the
// rest. Suggestions and SQL pass through unchanged. Applying Filter to
// its own output returns the same fragments.
func Filter(frags []session.Fragment) []session.Fragment {
	kept, _ := Split(frags)
	return kept
}

// Split is Filter that also returns what was removed, so callers can
// log it.
func Split(frags []session.Fragment) (kept, dropped []session.Fragment) {
	kept = make([]session.Fragment, 0, len(frags))
	for _, f := range frags {
		switch f := f.(type) {
		case session.Text:
			body := strings.TrimSpace(f.Body)
			if IsMarkupLeak(body) {
				dropped = append(dropped, f)
				continue
			}
			kept = append(kept, session.Text{Body: body})
		case session.Suggestions, session.SQL:
			kept = append(kept, f)
		}
	}
	return kept, dropped
}
