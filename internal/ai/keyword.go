package ai

import (
	"context"
	"regexp"
	"strconv"
	"strings"
)

// procedureLexicon maps a canonical procedure term to the lay phrases
// patients actually type
var procedureLexicon = map[string][]string{
	"rhinoplasty":      {"nose job", "nose surgery", "nose reshaping"},
	"hair transplant":  {"hair restoration", "hairline", "baldness", "fue", "fut"},
	"liposuction":      {"fat removal", "lipo", "body contouring"},
	"breast augmentation": {"breast implant", "breast enlargement"},
	"gynecomastia":     {"male breast", "man boobs", "chest fat"},
	"tummy tuck":       {"abdominoplasty", "belly fat surgery"},
	"blepharoplasty":   {"eyelid surgery", "eye bag"},
	"facelift":         {"face lift", "skin tightening", "anti aging surgery"},
	"lip fillers":      {"lip filler", "lip enhancement", "lip job"},
	"botox":            {"wrinkle injection", "anti wrinkle"},
}

var knownCities = []string{
	"mumbai", "delhi", "bangalore", "bengaluru", "hyderabad", "chennai",
	"kolkata", "pune", "ahmedabad", "jaipur", "gurgaon", "noida", "kochi",
}

var budgetPattern = regexp.MustCompile(`(?:under|below|within|upto|up to|budget of|around)?\s*(?:rs\.?|inr|₹)?\s*(\d+(?:,\d{3})*(?:\.\d+)?)\s*(lakh|lakhs|lac|k|thousand)?`)

var bookWords = []string{"book", "appointment", "consult", "schedule"}
var compareWords = []string{"compare", "cheapest", "best price", "price", "cost"}
var concernWords = []string{"scar", "downtime", "recovery", "pain", "safe", "safety", "cost", "emi"}

// KeywordAnalyzer is the deterministic fallback used when Gemini is not
// configured or errors out. Same output shape, lexicon-driven.
type KeywordAnalyzer struct{}

func (KeywordAnalyzer) Backend() string { return "keyword" }

func (KeywordAnalyzer) Analyze(_ context.Context, query string) (*AnalyzedQuery, error) {
	q := strings.ToLower(query)
	out := &AnalyzedQuery{Intent: "explore"}

	for canonical, synonyms := range procedureLexicon {
		if strings.Contains(q, canonical) {
			out.ProcedureTerms = append(out.ProcedureTerms, canonical)
			continue
		}
		for _, s := range synonyms {
			if strings.Contains(q, s) {
				out.ProcedureTerms = append(out.ProcedureTerms, canonical)
				break
			}
		}
	}
	// No lexicon hit: fall back to the raw words so ILIKE still has something
	if len(out.ProcedureTerms) == 0 {
		for _, w := range strings.Fields(q) {
			if len(w) > 3 {
				out.ProcedureTerms = append(out.ProcedureTerms, w)
			}
		}
	}

	for _, city := range knownCities {
		if strings.Contains(q, city) {
			out.City = city
			break
		}
	}
	if out.City == "bengaluru" {
		out.City = "bangalore"
	}

	out.BudgetINR = extractBudget(q)

	for _, w := range bookWords {
		if strings.Contains(q, w) {
			out.Intent = "book"
			break
		}
	}
	if out.Intent == "explore" {
		for _, w := range compareWords {
			if strings.Contains(q, w) {
				out.Intent = "compare"
				break
			}
		}
	}

	for _, w := range concernWords {
		if strings.Contains(q, w) {
			out.Concerns = append(out.Concerns, w)
		}
	}
	return out, nil
}

// extractBudget pulls an INR budget out of phrases like "under 50k",
// "budget of 1.5 lakh" or "₹40,000". Returns 0 when nothing plausible matches.
func extractBudget(q string) int64 {
	m := budgetPattern.FindStringSubmatch(q)
	if m == nil {
		return 0
	}
	raw := strings.ReplaceAll(m[1], ",", "")
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	switch m[2] {
	case "lakh", "lakhs", "lac":
		val *= 100000
	case "k", "thousand":
		val *= 1000
	}
	// Bare small numbers ("top 3 clinics") are not budgets
	if val < 1000 {
		return 0
	}
	return int64(val)
}
