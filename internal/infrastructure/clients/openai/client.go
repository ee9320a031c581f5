package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/clintables/codefinder/internal/domain/entities"
	"github.com/clintables/codefinder/pkg/config"
	apperrors "github.com/clintables/codefinder/pkg/errors"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client implements the generative capabilities (classification, term
// refinement, query expansion, summarization) over the OpenAI API. Every
// method returns a capability error on failure; callers own the fallback.
type Client struct {
	apiKey     string
	model      string
	expModel   string
	baseURL    string
	httpClient *http.Client
	limiter    *tokenBucket
}

// NewClient creates a new OpenAI client.
func NewClient(cfg *config.OpenAIConfig) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, apperrors.NewConfigurationError("openai api key is required")
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o"
	}
	expModel := cfg.ExpansionModel
	if expModel == "" {
		expModel = model
	}

	return &Client{
		apiKey:   cfg.APIKey,
		model:    model,
		expModel: expModel,
		baseURL:  defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		limiter: newTokenBucket(cfg.RateLimitRPM, cfg.RateLimitBurst),
	}, nil
}

// ClassifyIntent scores the query against the fixed intent categories.
func (c *Client) ClassifyIntent(ctx context.Context, query string) (entities.IntentScores, error) {
	text, err := c.complete(ctx, c.model, classifySystemPrompt, query, 0)
	if err != nil {
		return entities.IntentScores{}, err
	}

	var scores entities.IntentScores
	if err := json.Unmarshal([]byte(StripFences(text)), &scores); err != nil {
		return entities.IntentScores{}, apperrors.NewCapabilityError("parsing classification response", err)
	}
	return scores, nil
}

// RefineTerms suggests up to three refined search terms for the given
// strategy, based on a summary of the results so far.
func (c *Client) RefineTerms(ctx context.Context, query string, systems []string, resultSummary, strategy string) ([]string, error) {
	system := fmt.Sprintf(refineSystemPrompt, query, strings.Join(systems, ", "), resultSummary, strategy)
	text, err := c.complete(ctx, c.model, system, "Suggest refined search terms.", 0.3)
	if err != nil {
		return nil, err
	}

	var terms []string
	if err := json.Unmarshal([]byte(StripFences(text)), &terms); err != nil {
		return nil, apperrors.NewCapabilityError("parsing refinement response", err)
	}
	if len(terms) > 3 {
		terms = terms[:3]
	}
	return terms, nil
}

// Expand suggests clinically related terms grouped by category.
func (c *Client) Expand(ctx context.Context, query string, systems []string, maxPerCategory int) (entities.Expansion, error) {
	user := fmt.Sprintf("Query: %s\nTarget systems: %s\n\nSuggest related clinical terms:", query, strings.Join(systems, ", "))
	text, err := c.complete(ctx, c.expModel, expandSystemPrompt, user, 0.3)
	if err != nil {
		return entities.Expansion{}, err
	}

	var expansion entities.Expansion
	if err := json.Unmarshal([]byte(StripFences(text)), &expansion); err != nil {
		return entities.Expansion{}, apperrors.NewCapabilityError("parsing expansion response", err)
	}

	queryLower := strings.ToLower(query)
	expansion.Diagnoses = limitTerms(expansion.Diagnoses, queryLower, maxPerCategory)
	expansion.Labs = limitTerms(expansion.Labs, queryLower, maxPerCategory)
	expansion.Medications = limitTerms(expansion.Medications, queryLower, maxPerCategory)
	return expansion, nil
}

// Summarize generates a short plain-English summary of the ranked results.
func (c *Client) Summarize(ctx context.Context, query string, results []entities.CodeResult) (string, error) {
	system := fmt.Sprintf(summarySystemPrompt, query, formatResultsForSummary(results))
	text, err := c.complete(ctx, c.model, system, "Generate the summary.", 0.3)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

type responseContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type responseOutput struct {
	Content []responseContent `json:"content"`
}

type responseEnvelope struct {
	Output []responseOutput `json:"output"`
}

func (c *Client) complete(ctx context.Context, model, systemPrompt, userPrompt string, temperature float64) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", apperrors.NewCapabilityError("rate limiter wait", err)
		}
	}

	payload := map[string]any{
		"model": model,
		"input": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userPrompt},
		},
		"temperature":       temperature,
		"max_output_tokens": 600,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", apperrors.NewCapabilityError("encoding request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/responses", bytes.NewReader(body))
	if err != nil {
		return "", apperrors.NewCapabilityError("building request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		recordRequestMetric(ctx, model, 0, time.Since(start), err)
		return "", apperrors.NewCapabilityError("openai request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := fmt.Errorf("status %d", resp.StatusCode)
		recordRequestMetric(ctx, model, resp.StatusCode, time.Since(start), statusErr)
		return "", apperrors.NewCapabilityError("openai request failed", statusErr)
	}

	var envelope responseEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		recordRequestMetric(ctx, model, resp.StatusCode, time.Since(start), err)
		return "", apperrors.NewCapabilityError("decoding openai response", err)
	}

	var text string
	for _, out := range envelope.Output {
		for _, content := range out.Content {
			if content.Type == "output_text" && content.Text != "" {
				text = content.Text
				break
			}
		}
		if text != "" {
			break
		}
	}

	if text == "" {
		missingErr := errors.New("missing output text")
		recordRequestMetric(ctx, model, resp.StatusCode, time.Since(start), missingErr)
		return "", apperrors.NewCapabilityError("openai response missing output text", nil)
	}

	recordRequestMetric(ctx, model, resp.StatusCode, time.Since(start), nil)
	return text, nil
}

// StripFences removes a surrounding markdown code fence from generative
// output before JSON parsing.
func StripFences(text string) string {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimPrefix(cleaned, "json")
		cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	}
	return strings.TrimSpace(cleaned)
}

func limitTerms(terms []string, queryLower string, max int) []string {
	if max <= 0 {
		max = 5
	}
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" || strings.ToLower(t) == queryLower {
			continue
		}
		out = append(out, t)
		if len(out) == max {
			break
		}
	}
	return out
}

// formatResultsForSummary renders ranked results grouped by system for the
// summary prompt, top 3 per system.
func formatResultsForSummary(results []entities.CodeResult) string {
	if len(results) == 0 {
		return "No results found"
	}

	order := []string{}
	bySystem := map[string][]entities.CodeResult{}
	for _, r := range results {
		if _, ok := bySystem[r.System]; !ok {
			order = append(order, r.System)
		}
		bySystem[r.System] = append(bySystem[r.System], r)
	}

	var b strings.Builder
	for _, system := range order {
		systemResults := bySystem[system]
		fmt.Fprintf(&b, "\n%s:", system)
		for i, r := range systemResults {
			if i == 3 {
				fmt.Fprintf(&b, "\n  ... and %d more", len(systemResults)-3)
				break
			}
			label := "low"
			if r.Confidence > 0.6 {
				label = "high"
			} else if r.Confidence > 0.3 {
				label = "medium"
			}
			fmt.Fprintf(&b, "\n  - %s: %s (confidence: %s)", r.Code, r.Display, label)
		}
	}
	return strings.TrimPrefix(b.String(), "\n")
}
