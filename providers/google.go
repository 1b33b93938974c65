package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"model-eval/httpclient"
	"model-eval/models"
)

const (
	googleDefaultModel       = "gemini-pro"
	googleDefaultTemperature = 0.7
	googleDefaultTopP        = 0.95
)

type GoogleAdapter struct {
	client       *genai.Client
	defaultModel string
}

func NewGoogleAdapter(ctx context.Context, cfg Config) (*GoogleAdapter, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("google api key is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = httpclient.New(httpclient.Config{Timeout: cfg.Timeout})
	}

	cc := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GoogleAdapter{
		client:       client,
		defaultModel: modelOrDefault(cfg.DefaultModel, googleDefaultModel),
	}, nil
}

func (a *GoogleAdapter) Provider() models.Provider { return models.ProviderGoogle }

func (a *GoogleAdapter) Generate(ctx context.Context, prompt string, opts Options) (*Result, error) {
	model := modelOrDefault(opts.Model, a.defaultModel)

	start := time.Now()
	resp, err := a.client.Models.GenerateContent(ctx, model, genai.Text(prompt), googleConfig(opts))
	latency := time.Since(start)
	if err != nil {
		perr := googleError(err)
		logCall(ctx, a.Provider(), model, latency, perr)
		return nil, perr
	}
	logCall(ctx, a.Provider(), model, latency, nil)

	text := resp.Text()
	var u *usage
	if md := resp.UsageMetadata; md != nil {
		u = &usage{
			prompt:     int64(md.PromptTokenCount),
			completion: int64(md.CandidatesTokenCount),
			total:      int64(md.TotalTokenCount),
		}
	}

	return &Result{
		Model:    model,
		Response: text,
		Metrics:  buildMetrics(latency, prompt, text, u, model, GooglePrices),
	}, nil
}

func googleConfig(opts Options) *genai.GenerateContentConfig {
	temperature := float32(googleDefaultTemperature)
	if opts.Temperature != nil {
		temperature = float32(*opts.Temperature)
	}
	topP := float32(googleDefaultTopP)
	if opts.TopP != nil {
		topP = float32(*opts.TopP)
	}

	gc := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temperature),
		TopP:        genai.Ptr(topP),
	}
	if opts.MaxTokens != nil {
		gc.MaxOutputTokens = int32(*opts.MaxTokens)
	}
	if opts.FrequencyPenalty != nil {
		gc.FrequencyPenalty = genai.Ptr(float32(*opts.FrequencyPenalty))
	}
	if opts.PresencePenalty != nil {
		gc.PresencePenalty = genai.Ptr(float32(*opts.PresencePenalty))
	}
	return gc
}

func googleError(err error) *Error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return newError(models.ProviderGoogle, apiErr.Code, googleMessage(apiErr), err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return newError(models.ProviderGoogle, apiErrPtr.Code, googleMessage(*apiErrPtr), err)
	}
	return newError(models.ProviderGoogle, 0, "", err)
}

func googleMessage(e genai.APIError) string {
	if e.Status != "" {
		return e.Status + ": " + e.Message
	}
	return e.Message
}
