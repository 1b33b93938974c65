package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"model-eval/cmd/api/auth"
	"model-eval/cmd/api/dto"
	"model-eval/services"
)

// ListEvaluationsHandler godoc
// @Summary      List evaluations
// @Description  List the caller's evaluations newest first, each with its prompt when it still exists
// @Tags         evaluations
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   services.EvaluationDetail
// @Router       /evaluations [get]
func ListEvaluationsHandler(svc *services.EvaluationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := svc.ListAll(c.Request.Context(), auth.UserID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// GetEvaluationHandler godoc
// @Summary      Get evaluation by id
// @Tags         evaluations
// @Security     BearerAuth
// @Param        id   path   string  true  "ObjectID"
// @Produce      json
// @Success      200  {object}  services.EvaluationDetail
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /evaluations/{id} [get]
func GetEvaluationHandler(svc *services.EvaluationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ev, err := svc.Get(c.Request.Context(), auth.UserID(c), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, ev)
	}
}

// ListPromptEvaluationsHandler godoc
// @Summary      List evaluations of a prompt
// @Tags         evaluations
// @Security     BearerAuth
// @Param        promptId  path  string  true  "Prompt ObjectID"
// @Produce      json
// @Success      200  {array}   models.Evaluation
// @Router       /evaluations/prompt/{promptId} [get]
func ListPromptEvaluationsHandler(svc *services.EvaluationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := svc.ListByPrompt(c.Request.Context(), auth.UserID(c), c.Param("promptId"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// PromptSummaryHandler godoc
// @Summary      Summarize evaluations of a prompt
// @Description  Average latency, token totals and total cost over all evaluations of the prompt
// @Tags         evaluations
// @Security     BearerAuth
// @Param        promptId  path  string  true  "Prompt ObjectID"
// @Produce      json
// @Success      200  {object}  models.EvaluationSummary
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /evaluations/prompt/{promptId}/summary [get]
func PromptSummaryHandler(svc *services.EvaluationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sum, err := svc.Summary(c.Request.Context(), auth.UserID(c), c.Param("promptId"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, sum)
	}
}

// CreateEvaluationHandler godoc
// @Summary      Evaluate a prompt with one provider
// @Tags         evaluations
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateEvaluationRequestDTO  true  "Evaluation request"
// @Success      201   {object}  models.Evaluation
// @Failure      400   {object}  dto.ErrorResponseDTO
// @Failure      404   {object}  dto.ErrorResponseDTO
// @Failure      429   {object}  dto.ErrorResponseDTO
// @Failure      500   {object}  dto.ProviderErrorResponseDTO
// @Router       /evaluations [post]
func CreateEvaluationHandler(svc *services.EvaluationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.CreateEvaluationRequestDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		ev, err := svc.Evaluate(c.Request.Context(), auth.UserID(c), req.PromptID, req.ProviderConfig())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, ev)
	}
}

// CreateMultiEvaluationHandler godoc
// @Summary      Evaluate a prompt with several providers
// @Description  Providers are called one after another. Successful results are stored together.
// @Description  207 when some configs failed, 201 when none failed, 500 when all failed.
// @Tags         evaluations
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.MultiEvaluationRequestDTO  true  "Provider configs"
// @Success      201   {object}  dto.MultiEvaluationResponseDTO
// @Success      207   {object}  dto.MultiEvaluationResponseDTO
// @Failure      400   {object}  dto.ErrorResponseDTO
// @Failure      404   {object}  dto.ErrorResponseDTO
// @Failure      500   {object}  dto.AllFailedResponseDTO
// @Router       /evaluations/multi [post]
func CreateMultiEvaluationHandler(svc *services.EvaluationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.MultiEvaluationRequestDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		res, err := svc.EvaluateMany(c.Request.Context(), auth.UserID(c), req.PromptID, req.Providers)
		if err != nil {
			respondError(c, err)
			return
		}

		status := http.StatusCreated
		if len(res.Failed) > 0 {
			status = http.StatusMultiStatus
		}
		c.JSON(status, dto.MultiEvaluationResponseDTO{
			RunID:      res.RunID,
			Successful: res.Successful,
			Failed:     res.Failed,
		})
	}
}

// DeleteEvaluationHandler godoc
// @Summary      Delete evaluation
// @Tags         evaluations
// @Security     BearerAuth
// @Param        id   path   string  true  "ObjectID"
// @Produce      json
// @Success      200  {object}  dto.MessageResponseDTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /evaluations/{id} [delete]
func DeleteEvaluationHandler(svc *services.EvaluationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), auth.UserID(c), c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.MessageResponseDTO{Message: "Evaluation removed"})
	}
}
