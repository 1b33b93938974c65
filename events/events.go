package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType 이벤트 타입 정의
type EventType string

const (
	EvaluationRunCompleted EventType = "evaluation.run_completed"
	EvaluationDeleted      EventType = "evaluation.deleted"
	PromptDeleted          EventType = "prompt.deleted"
)

const (
	SourceAPI      = "api"
	CurrentVersion = "1.0"
)

// BaseEvent 모든 이벤트의 기본 구조
type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
}

func NewBaseEvent(id string, t EventType) BaseEvent {
	return BaseEvent{
		ID:        id,
		Type:      t,
		Timestamp: time.Now().UTC(),
		Source:    SourceAPI,
		Version:   CurrentVersion,
	}
}

// EvaluationRef 실행 결과로 저장된 평가 한 건
type EvaluationRef struct {
	EvaluationID string   `json:"evaluation_id"`
	Provider     string   `json:"provider"`
	Model        string   `json:"model"`
	LatencyMs    int64    `json:"latency_ms"`
	TotalTokens  int64    `json:"total_tokens"`
	CostUSD      *float64 `json:"cost_usd,omitempty"`
}

// FailedRef 실행 중 실패한 provider 설정
type FailedRef struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Error    string `json:"error"`
}

// EvaluationRunCompletedEvent 평가 실행(단건 또는 다중 provider) 커밋 완료 이벤트
type EvaluationRunCompletedEvent struct {
	BaseEvent
	RunID      string          `json:"run_id"`
	UserID     string          `json:"user_id"`
	PromptID   string          `json:"prompt_id"`
	Successful []EvaluationRef `json:"successful"`
	Failed     []FailedRef     `json:"failed"`
}

// EvaluationDeletedEvent 평가 삭제 이벤트
type EvaluationDeletedEvent struct {
	BaseEvent
	EvaluationID string `json:"evaluation_id"`
	UserID       string `json:"user_id"`
}

// PromptDeletedEvent 프롬프트 삭제 이벤트. 평가는 함께 삭제되지 않는다.
type PromptDeletedEvent struct {
	BaseEvent
	PromptID string `json:"prompt_id"`
	UserID   string `json:"user_id"`
}

// SerializeEvent 이벤트를 JSON으로 직렬화하고 타입 정보 반환
func SerializeEvent(event interface{}) ([]byte, EventType, error) {
	var eventType EventType

	switch e := event.(type) {
	case EvaluationRunCompletedEvent:
		eventType = e.Type
	case EvaluationDeletedEvent:
		eventType = e.Type
	case PromptDeletedEvent:
		eventType = e.Type
	default:
		return nil, "", fmt.Errorf("unknown event type: %T", event)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal event: %w", err)
	}

	return data, eventType, nil
}
