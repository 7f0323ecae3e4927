package reconcile

import (
	"sort"

	"rosterlink/internal/identity"
	"rosterlink/lib/textutil"

	"github.com/antzucaro/matchr"
)

// DefaultSuggestThreshold is the minimum Jaro-Winkler similarity for a suggestion.
const DefaultSuggestThreshold = 0.9

// Suggestion is the closest index nickname to an unmatched nickname. It is
// meant for manual follow-up and never feeds back into a Result.
type Suggestion struct {
	Nickname   string
	Candidate  string
	Identifier string
	Similarity float64
}

// Suggest finds, for each distinct unmatched nickname, the most similar index
// key whose similarity reaches threshold.
func Suggest(unmatched []string, index identity.Index, threshold float64) []Suggestion {
	candidates := index.Nicknames()
	// stable tie-breaking between equally similar candidates
	sort.Strings(candidates)

	normalized := make([]string, len(candidates))
	for i, c := range candidates {
		normalized[i] = textutil.NormalizeName(c)
	}

	var out []Suggestion
	seen := make(map[string]struct{})
	for _, nickname := range unmatched {
		if _, dup := seen[nickname]; dup {
			continue
		}
		seen[nickname] = struct{}{}

		key := textutil.NormalizeName(nickname)
		if key == "" {
			continue
		}

		best := -1
		var bestScore float64
		for i, candidate := range normalized {
			score := matchr.JaroWinkler(key, candidate, false)
			if score > bestScore {
				bestScore = score
				best = i
			}
		}
		if best < 0 || bestScore < threshold {
			continue
		}

		out = append(out, Suggestion{
			Nickname:   nickname,
			Candidate:  candidates[best],
			Identifier: index[candidates[best]],
			Similarity: bestScore,
		})
	}
	return out
}
