package ai

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const analyzeSystemPrompt = `You are a query analyst for an Indian cosmetic-surgery marketplace. Return ONLY valid JSON with this schema:
{
  "procedure_terms": string[] (1-5 lowercase procedure names or synonyms the user is asking about),
  "city": string (Indian city mentioned, empty string if none),
  "budget_inr": number (upper budget in INR, 0 if not stated),
  "intent": string (one of: explore, compare, book),
  "concerns": string[] (0-4 patient concerns such as scarring, downtime, cost, safety)
}
All terms must be lowercase. Interpret lakh as 100000 and k as 1000. Do not include medical advice.`

// GeminiAnalyzer analyzes queries with the Gemini API
type GeminiAnalyzer struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiAnalyzer builds a Gemini-backed analyzer
func NewGeminiAnalyzer(ctx context.Context, apiKey string) (*GeminiAnalyzer, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	model := client.GenerativeModel("gemini-1.5-flash")
	model.ResponseMIMEType = "application/json"
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(analyzeSystemPrompt)},
	}
	return &GeminiAnalyzer{client: client, model: model}, nil
}

func (g *GeminiAnalyzer) Backend() string { return "gemini" }

// Close releases the underlying API client
func (g *GeminiAnalyzer) Close() error { return g.client.Close() }

// Analyze sends the query to Gemini and parses the structured JSON reply
func (g *GeminiAnalyzer) Analyze(ctx context.Context, query string) (*AnalyzedQuery, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text("Patient query: "+query))
	if err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errors.New("empty gemini response")
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return parseAnalyzedQuery(sb.String())
}

// parseAnalyzedQuery decodes the model output, tolerating markdown fencing
func parseAnalyzedQuery(raw string) (*AnalyzedQuery, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	var q AnalyzedQuery
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &q); err != nil {
		return nil, err
	}
	if len(q.ProcedureTerms) == 0 {
		return nil, errors.New("analysis returned no procedure terms")
	}
	return &q, nil
}
