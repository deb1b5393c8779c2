package match

import (
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/hollydays/wishlist-backend/pkg/db/models"
)

// The two duplicate-detection call sites intentionally use different
// strictness. Adding an item to a list tolerates looser matches and falls
// back to word overlap; converting a proxy list at registration merges in
// bulk, so it demands a higher name ratio and skips the fallback entirely.
const (
	AddFlowThreshold    = 0.75
	ConversionThreshold = 0.9
)

const (
	wordOverlapMinJaccard = 0.4
	wordOverlapMinShared  = 3
	wordMinLen            = 4
)

// Profile selects threshold and fallback behavior for one call site.
type Profile struct {
	NameRatioThreshold float64
	UseWordOverlap     bool
}

func AddFlowProfile() Profile {
	return Profile{NameRatioThreshold: AddFlowThreshold, UseWordOverlap: true}
}

func ConversionProfile() Profile {
	return Profile{NameRatioThreshold: ConversionThreshold, UseWordOverlap: false}
}

var nameMetric = metrics.NewSorensenDice()

// Similar reports whether two items on the same list describe the same
// real-world product. Signals are checked strongest first and short-circuit:
// identical normalized URLs always match, then the case-insensitive name
// ratio against the profile threshold, then (when the profile allows it) the
// word-overlap fallback.
func Similar(a, b models.GiftItem, profile Profile) bool {
	if urlsMatch(a.URL, b.URL) {
		return true
	}

	nameA := strings.ToLower(strings.TrimSpace(a.Name))
	nameB := strings.ToLower(strings.TrimSpace(b.Name))
	if nameA == "" || nameB == "" {
		return false
	}

	if strutil.Similarity(nameA, nameB, nameMetric) >= profile.NameRatioThreshold {
		return true
	}

	if profile.UseWordOverlap {
		return wordOverlapMatch(nameA, nameB)
	}
	return false
}

func urlsMatch(a, b *string) bool {
	na, okA := normalizeURL(a)
	nb, okB := normalizeURL(b)
	return okA && okB && na == nb
}

func normalizeURL(raw *string) (string, bool) {
	if raw == nil {
		return "", false
	}
	u := strings.ToLower(strings.TrimSpace(*raw))
	if u == "" {
		return "", false
	}
	u = strings.TrimSuffix(u, "/")
	return u, true
}

// wordOverlapMatch compares the sets of significant words in two names. Both
// conditions are required: a high Jaccard over one or two shared words is not
// evidence of a duplicate.
func wordOverlapMatch(nameA, nameB string) bool {
	setA := significantWords(nameA)
	setB := significantWords(nameB)
	if len(setA) == 0 || len(setB) == 0 {
		return false
	}

	shared := 0
	union := len(setB)
	for w := range setA {
		if _, ok := setB[w]; ok {
			shared++
		} else {
			union++
		}
	}
	if union == 0 {
		return false
	}

	jaccard := float64(shared) / float64(union)
	return jaccard >= wordOverlapMinJaccard && shared >= wordOverlapMinShared
}

func significantWords(name string) map[string]struct{} {
	words := strings.FieldsFunc(name, func(r rune) bool {
		switch r {
		case ',', '-', '–':
			return true
		}
		return r == ' ' || r == '\t' || r == '\n'
	})

	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if len([]rune(w)) >= wordMinLen {
			set[w] = struct{}{}
		}
	}
	return set
}
