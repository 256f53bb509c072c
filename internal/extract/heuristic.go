package extract

import (
	"context"
	"fmt"
	"strings"

	"matchfoundry/pkg/types"
)

// categoryKeywords is checked in order; the first entry with a matching
// keyword wins.
var categoryKeywords = []struct {
	category types.Category
	keywords []string
}{
	{types.CategorySales, []string{"sales", "closing", "outreach", "pipeline", "crm"}},
	{types.CategoryFundraising, []string{"fundraising", "investor", "vc", "pitch", "deck", "term sheet"}},
	{types.CategoryProduct, []string{"mvp", "product", "feature", "roadmap", "prototype"}},
	{types.CategoryUX, []string{"ux", "user interview", "usability", "design", "onboarding"}},
	{types.CategoryMarketing, []string{"marketing", "ads", "campaign", "content", "seo", "social"}},
	{types.CategoryBranding, []string{"brand", "branding", "positioning", "story"}},
	{types.CategoryTech, []string{"backend", "frontend", "infra", "database", "deployment", "architecture"}},
	{types.CategoryOps, []string{"operations", "ops", "process", "legal", "finance", "hiring", "recruiting"}},
}

// needSignals mark a sentence as a request for help rather than an offer.
var needSignals = []string{"need", "help", "stuck", "blocker"}

// Heuristic is the offline extractor: sentence-split the update, bucket each
// sentence by need signals, and infer a category from keyword lookups.
type Heuristic struct{}

func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

func (h *Heuristic) Extract(_ context.Context, text string) (*Result, error) {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return nil, fmt.Errorf("%w: text is required", types.ErrInvalidInput)
	}

	sentences := splitSentences(raw)

	var needs, learnings []types.CheckinItem
	for _, sentence := range sentences {
		lower := strings.ToLower(sentence)
		item := types.CheckinItem{
			Label:    sentence,
			Category: string(inferCategory(sentence)),
		}

		if containsAny(lower, needSignals) {
			needs = append(needs, item)
		} else {
			learnings = append(learnings, item)
		}
	}

	// Every update yields at least one need, and a learning when there is a
	// second sentence to spare.
	if len(needs) == 0 && len(sentences) > 0 {
		needs = append(needs, types.CheckinItem{
			Label:    sentences[0],
			Category: string(inferCategory(sentences[0])),
		})
	}
	if len(learnings) == 0 && len(sentences) > 1 {
		learnings = append(learnings, types.CheckinItem{
			Label:    sentences[1],
			Category: string(inferCategory(sentences[1])),
		})
	}

	return &Result{
		Needs:     capItems(needs),
		Learnings: capItems(learnings),
	}, nil
}

func splitSentences(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '.' || r == '\n' || r == '\r'
	})

	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			sentences = append(sentences, trimmed)
		}
	}
	return sentences
}

func inferCategory(sentence string) types.Category {
	lower := strings.ToLower(sentence)
	for _, entry := range categoryKeywords {
		if containsAny(lower, entry.keywords) {
			return entry.category
		}
	}
	return types.CategoryOther
}

func containsAny(lower string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
