package extract

import (
	"context"
	"errors"
	"testing"

	"matchfoundry/pkg/types"
)

func TestHeuristicExtractEmptyText(t *testing.T) {
	h := NewHeuristic()

	for _, input := range []string{"", "   ", "\n\t"} {
		if _, err := h.Extract(context.Background(), input); !errors.Is(err, types.ErrInvalidInput) {
			t.Errorf("Extract(%q): err = %v, want ErrInvalidInput", input, err)
		}
	}
}

func TestHeuristicExtractBucketsSentences(t *testing.T) {
	h := NewHeuristic()

	text := "We need help closing our first enterprise deals. Shipped our MVP to ten beta users last week."
	result, err := h.Extract(context.Background(), text)
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Needs) != 1 {
		t.Fatalf("needs = %d, want 1", len(result.Needs))
	}
	if result.Needs[0].Label != "We need help closing our first enterprise deals" {
		t.Errorf("need label = %q", result.Needs[0].Label)
	}
	if result.Needs[0].Category != string(types.CategorySales) {
		t.Errorf("need category = %s, want sales", result.Needs[0].Category)
	}

	if len(result.Learnings) != 1 {
		t.Fatalf("learnings = %d, want 1", len(result.Learnings))
	}
	if result.Learnings[0].Category != string(types.CategoryProduct) {
		t.Errorf("learning category = %s, want product", result.Learnings[0].Category)
	}
}

func TestHeuristicExtractNeedSignals(t *testing.T) {
	h := NewHeuristic()

	cases := []struct {
		sentence string
		isNeed   bool
	}{
		{"I am stuck on our deployment pipeline", true},
		{"Biggest blocker is finding a designer", true},
		{"Ran a great content campaign this month", false},
	}

	for _, tc := range cases {
		result, err := h.Extract(context.Background(), tc.sentence)
		if err != nil {
			t.Fatal(err)
		}
		gotNeed := len(result.Needs) == 1 && result.Needs[0].Label == tc.sentence
		// A single non-need sentence still backfills one need.
		if tc.isNeed && !gotNeed {
			t.Errorf("%q: expected a need", tc.sentence)
		}
		if !tc.isNeed && len(result.Learnings) != 0 {
			// Single sentence: it is consumed as a learning, then the need
			// backfill copies it. Verify both buckets reference it.
			if result.Learnings[0].Label != tc.sentence {
				t.Errorf("%q: learning label = %q", tc.sentence, result.Learnings[0].Label)
			}
		}
	}
}

func TestHeuristicExtractBackfill(t *testing.T) {
	h := NewHeuristic()

	// Two sentences, neither a need: the first backfills needs, learnings
	// keep both.
	text := "Closed two design partners. Hired our first engineer."
	result, err := h.Extract(context.Background(), text)
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Needs) != 1 || result.Needs[0].Label != "Closed two design partners" {
		t.Errorf("needs = %+v, want backfilled first sentence", result.Needs)
	}
	if len(result.Learnings) != 2 {
		t.Errorf("learnings = %d, want 2", len(result.Learnings))
	}
}

func TestHeuristicExtractCapsAtThree(t *testing.T) {
	h := NewHeuristic()

	text := "Need help with sales. Need help with fundraising. Need help with marketing. Need help with hiring. Need help with pricing."
	result, err := h.Extract(context.Background(), text)
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Needs) != 3 {
		t.Errorf("needs = %d, want capped at 3", len(result.Needs))
	}
}

func TestInferCategoryOrderAndFallback(t *testing.T) {
	cases := []struct {
		sentence string
		want     types.Category
	}{
		// "pitch" (fundraising) appears before branding's "story" in table
		// order, and sales keywords win over everything listed later.
		{"polishing our investor pitch story", types.CategoryFundraising},
		{"reworking the sales pipeline and our brand", types.CategorySales},
		{"thinking about the company", types.CategoryOther},
		{"migrating the backend database", types.CategoryTech},
		{"usability testing with new users", types.CategoryUX},
	}

	for _, tc := range cases {
		if got := inferCategory(tc.sentence); got != tc.want {
			t.Errorf("inferCategory(%q) = %s, want %s", tc.sentence, got, tc.want)
		}
	}
}
