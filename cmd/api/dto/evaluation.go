package dto

import "model-eval/models"

type CreateEvaluationRequestDTO struct {
	PromptID         string   `json:"promptId" example:"665f1c2e9b1d4a0012345678"`
	Provider         string   `json:"provider" example:"openai"`
	Model            string   `json:"model" example:"gpt-4"`
	Temperature      *float64 `json:"temperature,omitempty"`
	MaxTokens        *int     `json:"maxTokens,omitempty"`
	TopP             *float64 `json:"topP,omitempty"`
	FrequencyPenalty *float64 `json:"frequencyPenalty,omitempty"`
	PresencePenalty  *float64 `json:"presencePenalty,omitempty"`
}

func (r CreateEvaluationRequestDTO) ProviderConfig() models.ProviderConfig {
	return models.ProviderConfig{
		Provider:         r.Provider,
		Model:            r.Model,
		Temperature:      r.Temperature,
		MaxTokens:        r.MaxTokens,
		TopP:             r.TopP,
		FrequencyPenalty: r.FrequencyPenalty,
		PresencePenalty:  r.PresencePenalty,
	}
}

type MultiEvaluationRequestDTO struct {
	PromptID  string                  `json:"promptId" example:"665f1c2e9b1d4a0012345678"`
	Providers []models.ProviderConfig `json:"providers"`
}

type MultiEvaluationResponseDTO struct {
	RunID      string                    `json:"runId"`
	Successful []models.Evaluation       `json:"successful"`
	Failed     []models.FailedEvaluation `json:"failed"`
}
