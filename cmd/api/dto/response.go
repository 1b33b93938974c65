package dto

import "model-eval/models"

// ErrorResponseDTO는 공통 에러 응답 형식을 통일하기 위한 DTO이다.
type ErrorResponseDTO struct {
	Error string `json:"error" example:"Prompt not found"`
}

// ProviderErrorResponseDTO는 provider 호출 실패 응답이다. kind 로 원인을 구분한다.
type ProviderErrorResponseDTO struct {
	Error string `json:"error" example:"openai rate_limited (status 429): Rate limit reached"`
	Kind  string `json:"kind" example:"rate_limited"`
}

// AllFailedResponseDTO는 다중 평가에서 모든 provider 가 실패했을 때의 응답이다.
type AllFailedResponseDTO struct {
	Message string                    `json:"message" example:"All evaluations failed"`
	Errors  []models.FailedEvaluation `json:"errors"`
}

// MessageResponseDTO는 단순 메시지 응답 형식을 통일하기 위한 DTO이다.
type MessageResponseDTO struct {
	Message string `json:"message" example:"Prompt removed"`
}

type HealthResponseDTO struct {
	Status  string `json:"status" example:"ok"`
	Storage string `json:"storage,omitempty" example:"up"`
}
