package providers

import (
	"context"
	"errors"
	"strings"
	"time"

	osdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"model-eval/httpclient"
	"model-eval/models"
)

const (
	openAIDefaultModel       = "gpt-3.5-turbo"
	openAIDefaultTemperature = 0.7
)

type OpenAIAdapter struct {
	client       osdk.Client
	defaultModel string
}

func NewOpenAIAdapter(cfg Config) (*OpenAIAdapter, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
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
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &OpenAIAdapter{
		client:       osdk.NewClient(opts...),
		defaultModel: modelOrDefault(cfg.DefaultModel, openAIDefaultModel),
	}, nil
}

func (a *OpenAIAdapter) Provider() models.Provider { return models.ProviderOpenAI }

func (a *OpenAIAdapter) Generate(ctx context.Context, prompt string, opts Options) (*Result, error) {
	model := modelOrDefault(opts.Model, a.defaultModel)

	params := osdk.ChatCompletionNewParams{
		Model: osdk.ChatModel(model),
		Messages: []osdk.ChatCompletionMessageParamUnion{
			osdk.UserMessage(prompt),
		},
		Temperature: osdk.Float(openAIDefaultTemperature),
	}
	if opts.Temperature != nil {
		params.Temperature = osdk.Float(*opts.Temperature)
	}
	if opts.MaxTokens != nil {
		params.MaxTokens = osdk.Int(int64(*opts.MaxTokens))
	}
	if opts.TopP != nil {
		params.TopP = osdk.Float(*opts.TopP)
	}
	if opts.FrequencyPenalty != nil {
		params.FrequencyPenalty = osdk.Float(*opts.FrequencyPenalty)
	}
	if opts.PresencePenalty != nil {
		params.PresencePenalty = osdk.Float(*opts.PresencePenalty)
	}

	start := time.Now()
	resp, err := a.client.Chat.Completions.New(ctx, params)
	latency := time.Since(start)
	if err != nil {
		perr := openAIError(err)
		logCall(ctx, a.Provider(), model, latency, perr)
		return nil, perr
	}
	logCall(ctx, a.Provider(), model, latency, nil)

	var text string
	if len(resp.Choices) > 0 {
		text = resp.Choices[0].Message.Content
	}
	u := &usage{
		prompt:     resp.Usage.PromptTokens,
		completion: resp.Usage.CompletionTokens,
		total:      resp.Usage.TotalTokens,
	}

	return &Result{
		Model:    model,
		Response: text,
		Metrics:  buildMetrics(latency, prompt, text, u, model, OpenAIPrices),
	}, nil
}

func openAIError(err error) *Error {
	var apiErr *osdk.Error
	if errors.As(err, &apiErr) {
		return newError(models.ProviderOpenAI, apiErr.StatusCode, apiErr.Message, err)
	}
	return newError(models.ProviderOpenAI, 0, "", err)
}
