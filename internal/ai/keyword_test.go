package ai

import (
	"context"
	"testing"
)

func TestKeywordAnalyze_LexiconAndCity(t *testing.T) {
	a := KeywordAnalyzer{}
	q, err := a.Analyze(context.Background(), "Looking for a nose job in Mumbai under 80k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(q.ProcedureTerms) != 1 || q.ProcedureTerms[0] != "rhinoplasty" {
		t.Fatalf("expected rhinoplasty, got %v", q.ProcedureTerms)
	}
	if q.City != "mumbai" {
		t.Fatalf("expected mumbai, got %q", q.City)
	}
	if q.BudgetINR != 80000 {
		t.Fatalf("expected budget 80000, got %d", q.BudgetINR)
	}
}

func TestKeywordAnalyze_LakhBudgetAndIntent(t *testing.T) {
	a := KeywordAnalyzer{}
	q, err := a.Analyze(context.Background(), "compare hair transplant prices, budget of 1.5 lakh")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.BudgetINR != 150000 {
		t.Fatalf("expected budget 150000, got %d", q.BudgetINR)
	}
	if q.Intent != "compare" {
		t.Fatalf("expected compare intent, got %q", q.Intent)
	}
}

func TestKeywordAnalyze_BookIntentWinsOverCompare(t *testing.T) {
	a := KeywordAnalyzer{}
	q, _ := a.Analyze(context.Background(), "book a consult for liposuction cost")
	if q.Intent != "book" {
		t.Fatalf("expected book intent, got %q", q.Intent)
	}
}

func TestKeywordAnalyze_BengaluruNormalized(t *testing.T) {
	a := KeywordAnalyzer{}
	q, _ := a.Analyze(context.Background(), "botox clinics in bengaluru")
	if q.City != "bangalore" {
		t.Fatalf("expected bangalore, got %q", q.City)
	}
}

func TestKeywordAnalyze_FallsBackToRawWords(t *testing.T) {
	a := KeywordAnalyzer{}
	q, _ := a.Analyze(context.Background(), "otoplasty options")
	if len(q.ProcedureTerms) == 0 {
		t.Fatal("expected raw-word terms for unknown procedure")
	}
	for _, term := range q.ProcedureTerms {
		if term == "otoplasty" {
			return
		}
	}
	t.Fatalf("expected otoplasty among terms, got %v", q.ProcedureTerms)
}

func TestKeywordAnalyze_Concerns(t *testing.T) {
	a := KeywordAnalyzer{}
	q, _ := a.Analyze(context.Background(), "tummy tuck with minimal scarring and short downtime")
	found := map[string]bool{}
	for _, c := range q.Concerns {
		found[c] = true
	}
	if !found["scar"] || !found["downtime"] {
		t.Fatalf("expected scar and downtime concerns, got %v", q.Concerns)
	}
}

func TestExtractBudget_IgnoresSmallNumbers(t *testing.T) {
	if got := extractBudget("show top 3 clinics"); got != 0 {
		t.Fatalf("expected 0 for non-budget number, got %d", got)
	}
	if got := extractBudget("under rs. 40,000"); got != 40000 {
		t.Fatalf("expected 40000, got %d", got)
	}
	if got := extractBudget("around 50k"); got != 50000 {
		t.Fatalf("expected 50000, got %d", got)
	}
}

func TestParseAnalyzedQuery_FencedJSON(t *testing.T) {
	raw := "```json\n{\"procedure_terms\":[\"rhinoplasty\"],\"city\":\"delhi\",\"budget_inr\":60000,\"intent\":\"compare\",\"concerns\":[]}\n```"
	q, err := parseAnalyzedQuery(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.City != "delhi" || q.BudgetINR != 60000 {
		t.Fatalf("unexpected analysis: %+v", q)
	}
}

func TestParseAnalyzedQuery_EmptyTermsRejected(t *testing.T) {
	if _, err := parseAnalyzedQuery(`{"procedure_terms":[],"city":"","budget_inr":0,"intent":"explore"}`); err == nil {
		t.Fatal("expected error for empty procedure terms")
	}
}
