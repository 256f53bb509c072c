// Package match scores active needs against active learnings and produces the
// ranked expert suggestions shown to founders. The token-overlap heuristic is
// part of the observable contract (scores and reason strings are displayed and
// compared downstream), so the tokenizer, stop words, and reason wording must
// not drift.
package match

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"matchfoundry/pkg/types"
)

const (
	// categoryBonus is added when need and learning share a category. The
	// candidate filter already guarantees equality, so every scored pair
	// receives it.
	categoryBonus = 0.3

	// scoreThreshold discards noise matches; a pair must score strictly
	// above it to survive.
	scoreThreshold = 0.2

	// maxSuggestionsPerNeed caps the kept suggestions per need.
	maxSuggestionsPerNeed = 3

	// maxReasonKeywords caps the keywords quoted in the reason string.
	maxReasonKeywords = 3

	reasonSeparator = " • "
)

var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "to": {}, "of": {},
	"for": {}, "with": {}, "in": {}, "on": {}, "my": {}, "our": {}, "we": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "this": {}, "that": {}, "it": {},
}

// Tokenize lowercases the label, maps every character outside [a-z0-9\s] to a
// space, splits on whitespace, and drops stop words. Duplicates are kept; set
// collapsing happens at scoring time.
func Tokenize(text string) []string {
	var b strings.Builder
	b.Grow(len(text))

	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	var tokens []string
	for _, w := range strings.Fields(b.String()) {
		if _, stop := stopwords[w]; stop {
			continue
		}
		tokens = append(tokens, w)
	}

	return tokens
}

// tokenSet collapses an ordered token list to its unique members, preserving
// first-occurrence order.
func tokenSet(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	set := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		set = append(set, t)
	}
	return set
}

func contains(tokens []string, t string) bool {
	for _, v := range tokens {
		if v == t {
			return true
		}
	}
	return false
}

// similarity computes the overlap score for one need/learning pair. Empty
// token sets never match.
func similarity(needTokens, learnTokens []string) float64 {
	if len(needTokens) == 0 || len(learnTokens) == 0 {
		return 0
	}

	needSet := tokenSet(needTokens)
	learnSet := tokenSet(learnTokens)

	common := 0
	for _, t := range needSet {
		if contains(learnSet, t) {
			common++
		}
	}

	overlap := float64(common) / float64(max(len(needSet), len(learnSet)))

	return math.Min(1, overlap+categoryBonus)
}

// reason builds the user-facing justification. Keywords come from the need
// token list in encounter order, matching what the label actually says.
func reason(category types.Category, needTokens, learnTokens []string, score float64) string {
	parts := []string{"Both focus on " + string(category)}

	var keywords []string
	for _, t := range needTokens {
		if contains(learnTokens, t) {
			keywords = append(keywords, t)
		}
	}

	if len(keywords) > 0 {
		if len(keywords) > maxReasonKeywords {
			keywords = keywords[:maxReasonKeywords]
		}
		quoted := make([]string, len(keywords))
		for i, k := range keywords {
			quoted[i] = `"` + k + `"`
		}
		parts = append(parts, "Related keywords: "+strings.Join(quoted, ", "))
	}

	percent := int(math.Round(score * 100))
	parts = append(parts, strconv.Itoa(percent)+"% match confidence")

	return strings.Join(parts, reasonSeparator)
}

// Compute produces the fresh suggestion batch for the given active sets. Pure
// and deterministic: identical inputs yield byte-identical suggestions, with
// candidate encounter order breaking exact score ties.
func Compute(needs []*types.Need, learnings []*types.Learning) []*types.MatchSuggestion {
	suggestions := make([]*types.MatchSuggestion, 0)

	for _, need := range needs {
		needTokens := Tokenize(need.Label)

		var scored []*types.MatchSuggestion
		for _, learning := range learnings {
			if learning.UserID == need.UserID {
				continue
			}
			if learning.Category != need.Category {
				continue
			}

			learnTokens := Tokenize(learning.Label)
			score := similarity(needTokens, learnTokens)
			if score <= scoreThreshold {
				continue
			}

			scored = append(scored, &types.MatchSuggestion{
				NeedID:       need.ID,
				ExpertUserID: learning.UserID,
				Score:        score,
				Reason:       reason(need.Category, needTokens, learnTokens, score),
				Status:       types.SuggestionStatusSuggested,
			})
		}

		sort.SliceStable(scored, func(i, j int) bool {
			return scored[i].Score > scored[j].Score
		})

		if len(scored) > maxSuggestionsPerNeed {
			scored = scored[:maxSuggestionsPerNeed]
		}

		suggestions = append(suggestions, scored...)
	}

	return suggestions
}
