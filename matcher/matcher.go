// Package matcher decides whether a Spotify search result is an acceptable
// hit for a free-text song query.
package matcher

import (
	"fmt"
	"strings"

	"github.com/hbollon/go-edlib"
)

const DefaultThreshold = 0.4

// Matcher compares a query against a candidate track using an LCS-based
// similarity ratio. It has no side effects and no external dependencies,
// so tests can construct one directly.
type Matcher struct {
	Threshold float64
}

func New(threshold float64) *Matcher {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Matcher{Threshold: threshold}
}

// Validate reports whether the candidate (primary artist + title) is close
// enough to the query. The returned string is the comparison string; on
// rejection the ratio is appended for diagnostics.
func (m *Matcher) Validate(query, artist, title string) (bool, string, float64) {
	found := strings.ToLower(fmt.Sprintf("%s %s", artist, title))
	ratio := m.ratio(normalizeQuery(query), found)

	if m.accepts(ratio) {
		return true, found, ratio
	}
	return false, fmt.Sprintf("%s (%.2f)", found, ratio), ratio
}

// accepts applies the threshold; a ratio exactly at the threshold passes.
func (m *Matcher) accepts(ratio float64) bool {
	return ratio >= m.Threshold
}

// ratio is the classic LCS similarity: 2*LCS(a,b) / (len(a)+len(b)).
func (m *Matcher) ratio(a, b string) float64 {
	total := len([]rune(a)) + len([]rune(b))
	if total == 0 {
		return 1
	}
	common := edlib.LCS(a, b)
	return 2 * float64(common) / float64(total)
}

// normalizeQuery strips literal search field prefixes users paste in from
// Spotify's advanced search syntax, then case-folds.
func normalizeQuery(query string) string {
	clean := strings.ToLower(query)
	clean = strings.ReplaceAll(clean, "track:", "")
	clean = strings.ReplaceAll(clean, "artist:", "")
	return clean
}
