package match

import (
	"reflect"
	"testing"

	"matchfoundry/pkg/types"
)

func TestTokenize(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "lowercases and strips punctuation",
			input: "Need help with go-to-market messaging!",
			want:  []string{"need", "help", "go", "market", "messaging"},
		},
		{
			name:  "drops stop words",
			input: "we are stuck on the pricing of our product",
			want:  []string{"stuck", "pricing", "product"},
		},
		{
			name:  "keeps digits",
			input: "B2B sales for SOC2 compliance",
			want:  []string{"b2b", "sales", "soc2", "compliance"},
		},
		{
			name:  "keeps duplicates",
			input: "sales sales pipeline",
			want:  []string{"sales", "sales", "pipeline"},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
		{
			name:  "only stop words",
			input: "this is it",
			want:  nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Tokenize(tc.input)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func need(id, userID, label string, cat types.Category) *types.Need {
	return &types.Need{ID: id, UserID: userID, Label: label, Category: cat, IsActive: true}
}

func learning(id, userID, label string, cat types.Category) *types.Learning {
	return &types.Learning{ID: id, UserID: userID, Label: label, Category: cat, IsActive: true}
}

func TestComputeGoToMarketScenario(t *testing.T) {
	needs := []*types.Need{
		need("n1", "alice", "Need help with go-to-market messaging", types.CategoryMarketing),
	}
	learnings := []*types.Learning{
		learning("l1", "bob", "Helped three startups with go-to-market strategy", types.CategoryMarketing),
	}

	got := Compute(needs, learnings)
	if len(got) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(got))
	}

	s := got[0]
	if s.NeedID != "n1" || s.ExpertUserID != "bob" {
		t.Errorf("unexpected pairing: need=%s expert=%s", s.NeedID, s.ExpertUserID)
	}

	// needSet {need help go market messaging}, learnSet {helped three
	// startups go market strategy}: 2 common over max(5,6), plus the
	// category bonus.
	wantScore := 2.0/6.0 + 0.3
	if diff := s.Score - wantScore; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("score = %v, want %v", s.Score, wantScore)
	}
	if s.Score <= 0.2 {
		t.Errorf("score %v should clear the threshold", s.Score)
	}

	wantReason := `Both focus on marketing • Related keywords: "go", "market" • 63% match confidence`
	if s.Reason != wantReason {
		t.Errorf("reason = %q, want %q", s.Reason, wantReason)
	}
}

func TestComputeCategoryHardGate(t *testing.T) {
	needs := []*types.Need{
		need("n1", "alice", "investor intro pitch deck", types.CategoryFundraising),
	}
	learnings := []*types.Learning{
		// Identical label, wrong category: never a match.
		learning("l1", "bob", "investor intro pitch deck", types.CategorySales),
	}

	if got := Compute(needs, learnings); len(got) != 0 {
		t.Fatalf("expected no suggestions across categories, got %d", len(got))
	}
}

func TestComputeNoSelfMatch(t *testing.T) {
	needs := []*types.Need{
		need("n1", "alice", "scaling outbound sales", types.CategorySales),
	}
	learnings := []*types.Learning{
		learning("l1", "alice", "scaling outbound sales", types.CategorySales),
		learning("l2", "bob", "scaling outbound sales", types.CategorySales),
	}

	got := Compute(needs, learnings)
	if len(got) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(got))
	}
	if got[0].ExpertUserID == "alice" {
		t.Error("suggestion pairs a need with its own user")
	}
}

func TestComputeEmptyLabelNeverMatches(t *testing.T) {
	needs := []*types.Need{
		need("n1", "alice", "!!!", types.CategoryTech),
	}
	learnings := []*types.Learning{
		learning("l1", "bob", "kubernetes deployments", types.CategoryTech),
	}

	if got := Compute(needs, learnings); len(got) != 0 {
		t.Fatalf("empty need token set must score 0, got %d suggestions", len(got))
	}
}

func TestComputeCategoryBonusAloneClearsThreshold(t *testing.T) {
	// No token overlap at all: the 0.3 bonus is still above the 0.2 cutoff.
	needs := []*types.Need{
		need("n1", "alice", "hiring engineers", types.CategoryOps),
	}
	learnings := []*types.Learning{
		learning("l1", "bob", "vendor contract negotiation", types.CategoryOps),
	}

	got := Compute(needs, learnings)
	if len(got) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(got))
	}
	if diff := got[0].Score - 0.3; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("score = %v, want 0.3", got[0].Score)
	}
	wantReason := "Both focus on ops • 30% match confidence"
	if got[0].Reason != wantReason {
		t.Errorf("reason = %q, want %q", got[0].Reason, wantReason)
	}
}

func TestComputeTopThreeDescending(t *testing.T) {
	needs := []*types.Need{
		need("n1", "alice", "growth marketing funnel", types.CategoryMarketing),
	}
	learnings := []*types.Learning{
		learning("l1", "u1", "growth", types.CategoryMarketing),
		learning("l2", "u2", "growth marketing", types.CategoryMarketing),
		learning("l3", "u3", "growth marketing funnel", types.CategoryMarketing),
		learning("l4", "u4", "pricing", types.CategoryMarketing),
	}

	got := Compute(needs, learnings)
	if len(got) != 3 {
		t.Fatalf("expected top 3 suggestions, got %d", len(got))
	}

	wantOrder := []string{"u3", "u2", "u1"}
	for i, expert := range wantOrder {
		if got[i].ExpertUserID != expert {
			t.Errorf("position %d: expert = %s, want %s", i, got[i].ExpertUserID, expert)
		}
	}

	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Errorf("suggestions not sorted descending at %d", i)
		}
	}

	for _, s := range got {
		if s.Score <= 0.2 || s.Score > 1 {
			t.Errorf("score %v outside (0.2, 1]", s.Score)
		}
	}
}

func TestComputeStableTieBreak(t *testing.T) {
	needs := []*types.Need{
		need("n1", "alice", "improve onboarding flow", types.CategoryUX),
	}
	// Identical labels score identically; encounter order must hold.
	learnings := []*types.Learning{
		learning("l1", "first", "onboarding flow redesign", types.CategoryUX),
		learning("l2", "second", "onboarding flow redesign", types.CategoryUX),
	}

	got := Compute(needs, learnings)
	if len(got) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(got))
	}
	if got[0].ExpertUserID != "first" || got[1].ExpertUserID != "second" {
		t.Errorf("tie-break broke encounter order: %s, %s", got[0].ExpertUserID, got[1].ExpertUserID)
	}
}

func TestComputeKeywordsPreserveNeedOrderAndDuplicates(t *testing.T) {
	needs := []*types.Need{
		need("n1", "alice", "sales sales pipeline", types.CategorySales),
	}
	learnings := []*types.Learning{
		learning("l1", "bob", "sales pipeline review", types.CategorySales),
	}

	got := Compute(needs, learnings)
	if len(got) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(got))
	}

	// Keywords mirror the need token list, duplicates included.
	wantReason := `Both focus on sales • Related keywords: "sales", "sales", "pipeline" • 97% match confidence`
	if got[0].Reason != wantReason {
		t.Errorf("reason = %q, want %q", got[0].Reason, wantReason)
	}
}

func TestComputeDeterministic(t *testing.T) {
	needs := []*types.Need{
		need("n1", "alice", "Need help with go-to-market messaging", types.CategoryMarketing),
		need("n2", "bob", "raising a seed round", types.CategoryFundraising),
	}
	learnings := []*types.Learning{
		learning("l1", "carla", "go to market playbooks", types.CategoryMarketing),
		learning("l2", "dave", "closed our seed round last year", types.CategoryFundraising),
		learning("l3", "erin", "seed round term sheets", types.CategoryFundraising),
	}

	first := Compute(needs, learnings)
	second := Compute(needs, learnings)

	if !reflect.DeepEqual(first, second) {
		t.Error("Compute is not deterministic for identical input")
	}
}

func TestSimilarityMonotonicInOverlap(t *testing.T) {
	needTokens := Tokenize("growth marketing funnel experiments")

	labels := []string{
		"pricing",
		"growth",
		"growth marketing",
		"growth marketing funnel",
		"growth marketing funnel experiments",
	}

	prev := -1.0
	for _, label := range labels {
		score := similarity(needTokens, Tokenize(label))
		if score < prev {
			t.Errorf("score decreased for larger overlap: %q -> %v (prev %v)", label, score, prev)
		}
		if score < 0 || score > 1 {
			t.Errorf("score %v outside [0,1] for %q", score, label)
		}
		prev = score
	}
}
