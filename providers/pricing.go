package providers

import (
	"strings"
	"time"

	"model-eval/models"
)

// charsPerToken is the fixed ratio used when a vendor reports no usage.
const charsPerToken = 4

// EstimateTokens approximates a token count as ceil(chars/4).
func EstimateTokens(text string) int64 {
	n := int64(len([]rune(text)))
	return (n + charsPerToken - 1) / charsPerToken
}

// PriceRule prices a model family in USD per token.
type PriceRule struct {
	Match  string
	Input  float64
	Output float64
}

// PriceTable is a per-provider cost policy. Rules are matched by substring in
// order. ZeroWhenUnmatched selects between cost 0 and no cost at all for
// models no rule matches.
type PriceTable struct {
	Rules             []PriceRule
	ZeroWhenUnmatched bool
}

func (t PriceTable) Cost(model string, promptTokens, completionTokens int64) *float64 {
	for _, r := range t.Rules {
		if strings.Contains(model, r.Match) {
			c := float64(promptTokens)*r.Input + float64(completionTokens)*r.Output
			return &c
		}
	}
	if t.ZeroWhenUnmatched {
		zero := 0.0
		return &zero
	}
	return nil
}

var (
	OpenAIPrices = PriceTable{
		Rules: []PriceRule{
			{Match: "gpt-4", Input: 0.00003, Output: 0.00006},
			{Match: "gpt-3.5", Input: 0.0000015, Output: 0.000002},
		},
		ZeroWhenUnmatched: true,
	}
	AnthropicPrices = PriceTable{
		Rules: []PriceRule{
			{Match: "claude-3-opus", Input: 0.00003, Output: 0.00015},
			{Match: "claude-3-sonnet", Input: 0.000003, Output: 0.000015},
			{Match: "claude-3-haiku", Input: 0.00000025, Output: 0.00000125},
		},
		ZeroWhenUnmatched: true,
	}
	GooglePrices = PriceTable{
		Rules: []PriceRule{
			{Match: "gemini", Input: 0.000000125, Output: 0.000000375},
		},
	}
)

// usage is the vendor-reported token count, if any.
type usage struct {
	prompt     int64
	completion int64
	total      int64
}

// buildMetrics fills metrics from vendor usage when present and from the
// character estimate otherwise.
func buildMetrics(latency time.Duration, prompt, completion string, u *usage, model string, prices PriceTable) models.EvaluationMetrics {
	m := models.EvaluationMetrics{LatencyMs: latency.Milliseconds()}
	if m.LatencyMs < 0 {
		m.LatencyMs = 0
	}

	if u != nil && (u.prompt > 0 || u.completion > 0) {
		m.PromptTokens = u.prompt
		m.CompletionTokens = u.completion
		m.TotalTokens = u.total
		if m.TotalTokens == 0 {
			m.TotalTokens = u.prompt + u.completion
		}
	} else {
		m.PromptTokens = EstimateTokens(prompt)
		m.CompletionTokens = EstimateTokens(completion)
		m.TotalTokens = m.PromptTokens + m.CompletionTokens
	}

	m.CostUSD = prices.Cost(model, m.PromptTokens, m.CompletionTokens)
	return m
}
