package ai

import "context"

// AnalyzedQuery is the structured form of a patient's free-text query. Both
// the Gemini backend and the keyword fallback produce this shape.
type AnalyzedQuery struct {
	ProcedureTerms []string `json:"procedure_terms"` // Search terms for procedures/packages (lowercase)
	City           string   `json:"city"`            // City mentioned in the query, empty if none
	BudgetINR      int64    `json:"budget_inr"`      // Upper budget in INR, 0 if none stated
	Intent         string   `json:"intent"`          // explore, compare or book
	Concerns       []string `json:"concerns"`        // Patient concerns (scarring, downtime, cost)
}

// Analyzer turns a free-text query into an AnalyzedQuery
type Analyzer interface {
	Analyze(ctx context.Context, query string) (*AnalyzedQuery, error)
	Backend() string
}
