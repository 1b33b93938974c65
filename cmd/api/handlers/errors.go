package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"model-eval/cmd/api/dto"
	"model-eval/internal/logger"
	"model-eval/providers"
	"model-eval/services"
	"model-eval/trace"
)

// respondError 는 서비스 에러를 HTTP 상태 코드와 응답 바디로 변환한다.
func respondError(c *gin.Context, err error) {
	var (
		verr    *services.ValidationError
		allErr  *services.AllProvidersFailedError
		perr    *providers.Error
		importE *services.ImportError
	)

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: verr.Message})
	case errors.Is(err, services.ErrInvalidProvider):
		c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: "Invalid provider"})
	case errors.Is(err, services.ErrProviderNotConfigured):
		c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: err.Error()})
	case errors.Is(err, services.ErrPromptNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponseDTO{Error: "Prompt not found"})
	case errors.Is(err, services.ErrEvaluationNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponseDTO{Error: "Evaluation not found"})
	case errors.Is(err, services.ErrNoEvaluations):
		c.JSON(http.StatusNotFound, dto.ErrorResponseDTO{Error: "No evaluations found for this prompt"})
	case errors.As(err, &allErr):
		c.JSON(http.StatusInternalServerError, dto.AllFailedResponseDTO{
			Message: "All evaluations failed",
			Errors:  allErr.Failed,
		})
	case errors.As(err, &perr):
		logFailure(c, err)
		c.JSON(http.StatusInternalServerError, dto.ProviderErrorResponseDTO{Error: perr.Error(), Kind: string(perr.Kind)})
	case errors.As(err, &importE):
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponseDTO{Error: importE.Error()})
	default:
		logFailure(c, err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponseDTO{Error: err.Error()})
	}
}

func logFailure(c *gin.Context, err error) {
	_ = c.Error(err)
	fields := logger.Fields(trace.Fields(c.Request.Context()))
	fields["path"] = c.Request.URL.Path
	fields["error"] = err.Error()
	logger.ErrorWithFields("request failed", fields)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: msg})
}
