package providers

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"model-eval/httpclient"
	"model-eval/models"
)

const (
	anthropicDefaultModel     = "claude-3-sonnet-20240229"
	anthropicDefaultMaxTokens = 1024
)

type AnthropicAdapter struct {
	client       anthropic.Client
	defaultModel string
}

// anthropicErrorBody is the Messages API error envelope.
type anthropicErrorBody struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func NewAnthropicAdapter(cfg Config) (*AnthropicAdapter, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("anthropic api key is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = httpclient.New(httpclient.Config{Timeout: cfg.Timeout})
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &AnthropicAdapter{
		client:       anthropic.NewClient(opts...),
		defaultModel: modelOrDefault(cfg.DefaultModel, anthropicDefaultModel),
	}, nil
}

func (a *AnthropicAdapter) Provider() models.Provider { return models.ProviderAnthropic }

func (a *AnthropicAdapter) Generate(ctx context.Context, prompt string, opts Options) (*Result, error) {
	model := modelOrDefault(opts.Model, a.defaultModel)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: anthropicDefaultMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if opts.MaxTokens != nil && *opts.MaxTokens > 0 {
		params.MaxTokens = int64(*opts.MaxTokens)
	}
	if opts.Temperature != nil {
		params.Temperature = anthropic.Float(*opts.Temperature)
	}
	if opts.TopP != nil {
		params.TopP = anthropic.Float(*opts.TopP)
	}

	start := time.Now()
	msg, err := a.client.Messages.New(ctx, params)
	latency := time.Since(start)
	if err != nil {
		perr := anthropicError(err)
		logCall(ctx, a.Provider(), model, latency, perr)
		return nil, perr
	}
	logCall(ctx, a.Provider(), model, latency, nil)

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}
	u := &usage{prompt: msg.Usage.InputTokens, completion: msg.Usage.OutputTokens}

	return &Result{
		Model:    model,
		Response: text,
		Metrics:  buildMetrics(latency, prompt, text, u, model, AnthropicPrices),
	}, nil
}

// anthropicError prefers the "type: message" pair from the error envelope
// over the SDK's full error string.
func anthropicError(err error) *Error {
	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		return newError(models.ProviderAnthropic, 0, "", err)
	}

	msg := ""
	var eb anthropicErrorBody
	if json.Unmarshal([]byte(apiErr.RawJSON()), &eb) == nil && eb.Error.Message != "" {
		msg = eb.Error.Message
		if eb.Error.Type != "" {
			msg = eb.Error.Type + ": " + msg
		}
	}
	if msg == "" {
		msg = apiErr.Error()
	}
	return newError(models.ProviderAnthropic, apiErr.StatusCode, msg, err)
}
