package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EvaluationMetrics nested info in Evaluation
// CostUSD is nil when no price is known for the model.
type EvaluationMetrics struct {
	LatencyMs        int64    `bson:"latency_ms" json:"latencyMs"`
	PromptTokens     int64    `bson:"prompt_tokens" json:"promptTokens"`
	CompletionTokens int64    `bson:"completion_tokens" json:"completionTokens"`
	TotalTokens      int64    `bson:"total_tokens" json:"totalTokens"`
	CostUSD          *float64 `bson:"cost_usd,omitempty" json:"costUsd,omitempty"`
	ModelConfidence  *float64 `bson:"model_confidence,omitempty" json:"modelConfidence,omitempty"`
}

// Evaluation is the immutable record of one prompt execution against one provider
// Collection: evaluations
type Evaluation struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	PromptID  primitive.ObjectID `bson:"prompt_id" json:"promptId"`
	UserID    string             `bson:"user_id" json:"userId"`
	RunID     string             `bson:"run_id" json:"runId"`
	Provider  Provider           `bson:"provider" json:"provider"`
	Model     string             `bson:"model" json:"model"`
	Response  string             `bson:"response" json:"response"`
	Metrics   EvaluationMetrics  `bson:"metrics" json:"metrics"`
}

// ProviderConfig is one entry of a multi-provider run request.
type ProviderConfig struct {
	Provider         string   `json:"provider"`
	Model            string   `json:"model"`
	Temperature      *float64 `json:"temperature,omitempty"`
	MaxTokens        *int     `json:"maxTokens,omitempty"`
	TopP             *float64 `json:"topP,omitempty"`
	FrequencyPenalty *float64 `json:"frequencyPenalty,omitempty"`
	PresencePenalty  *float64 `json:"presencePenalty,omitempty"`
}

// FailedEvaluation describes a config that produced no record.
type FailedEvaluation struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Error    string `json:"error"`
}

// EvaluationSummary aggregates all evaluations of one prompt.
type EvaluationSummary struct {
	AverageLatency float64      `json:"averageLatency"`
	TotalTokens    int64        `json:"totalTokens"`
	AverageTokens  float64      `json:"averageTokens"`
	TotalCostUSD   float64      `json:"totalCostUsd"`
	Results        []Evaluation `json:"results"`
}
