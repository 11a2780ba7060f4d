package matcher

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Candidate is one raw download option for a requested title.
type Candidate struct {
	Name           string
	DownloadLink   string
	TimesCompleted int64
}

// Options tune candidate selection.
type Options struct {
	// SimilarityThreshold is the minimum Jaro-Winkler score between the
	// requested title and a candidate name. Defaults to 0.7, loose enough
	// to absorb release-group tags and punctuation noise.
	SimilarityThreshold float64
	// MultiMarker is the token a usable release name must contain,
	// case-insensitive. Defaults to "multi".
	MultiMarker string
}

func (o Options) withDefaults() Options {
	if o.SimilarityThreshold <= 0 {
		o.SimilarityThreshold = 0.7
	}
	if strings.TrimSpace(o.MultiMarker) == "" {
		o.MultiMarker = "multi"
	}
	return o
}

// Select picks the download link for the healthiest candidate that both
// resembles the requested title and carries the multi-language marker.
// Among survivors the highest completion count wins; on equal counts the
// first maximum encountered is kept, which is deliberately left unspecified
// rather than promised as a stable ordering. Returns ok=false when no
// candidate survives.
func Select(title string, candidates []Candidate, opts Options) (string, bool) {
	opts = opts.withDefaults()
	wanted := normalizeName(title)
	marker := strings.ToLower(strings.TrimSpace(opts.MultiMarker))

	var (
		best     Candidate
		bestSeen bool
	)
	for _, candidate := range candidates {
		name := normalizeName(candidate.Name)
		if JaroWinkler(name, wanted) < opts.SimilarityThreshold {
			continue
		}
		// Hard filter, not a score: a release without the marker is
		// unusable no matter how well the name matches.
		if !strings.Contains(name, marker) {
			continue
		}
		if !bestSeen || candidate.TimesCompleted > best.TimesCompleted {
			best = candidate
			bestSeen = true
		}
	}
	if !bestSeen {
		return "", false
	}
	return best.DownloadLink, true
}

func normalizeName(value string) string {
	return norm.NFC.String(strings.ToLower(strings.TrimSpace(value)))
}
