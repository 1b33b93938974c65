package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"model-eval/cmd/api/auth"
	"model-eval/cmd/api/dto"
	_ "model-eval/models"
	"model-eval/services"
)

// ListPromptsHandler godoc
// @Summary      List prompts
// @Description  List the caller's prompts, newest first
// @Tags         prompts
// @Security     BearerAuth
// @Param        tag  query  string  false  "Only prompts carrying this tag"
// @Produce      json
// @Success      200  {array}   models.Prompt
// @Failure      401  {object}  dto.ErrorResponseDTO
// @Router       /prompts [get]
func ListPromptsHandler(svc *services.PromptService) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := svc.List(c.Request.Context(), auth.UserID(c), c.Query("tag"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// GetPromptHandler godoc
// @Summary      Get prompt by id
// @Tags         prompts
// @Security     BearerAuth
// @Param        id   path   string  true  "ObjectID"
// @Produce      json
// @Success      200  {object}  models.Prompt
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /prompts/{id} [get]
func GetPromptHandler(svc *services.PromptService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := svc.Get(c.Request.Context(), auth.UserID(c), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// CreatePromptHandler godoc
// @Summary      Create prompt
// @Tags         prompts
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreatePromptRequestDTO  true  "Prompt"
// @Success      201   {object}  models.Prompt
// @Failure      400   {object}  dto.ErrorResponseDTO
// @Router       /prompts [post]
func CreatePromptHandler(svc *services.PromptService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.CreatePromptRequestDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		p, err := svc.Create(c.Request.Context(), auth.UserID(c), services.CreatePromptInput{
			Title:   req.Title,
			Content: req.Content,
			Tags:    req.Tags,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

// ImportPromptHandler godoc
// @Summary      Import prompt from a web page
// @Description  Fetch the page, extract its main text and store it as a new prompt
// @Tags         prompts
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.ImportPromptRequestDTO  true  "Source page"
// @Success      201   {object}  models.Prompt
// @Failure      400   {object}  dto.ErrorResponseDTO
// @Failure      422   {object}  dto.ErrorResponseDTO
// @Router       /prompts/import [post]
func ImportPromptHandler(svc *services.PromptService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.ImportPromptRequestDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		p, err := svc.Import(c.Request.Context(), auth.UserID(c), services.ImportPromptInput{
			URL:   req.URL,
			Title: req.Title,
			Tags:  req.Tags,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

// UpdatePromptHandler godoc
// @Summary      Update prompt
// @Description  Only the supplied fields are changed
// @Tags         prompts
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string                      true  "ObjectID"
// @Param        body  body      dto.UpdatePromptRequestDTO  true  "Fields to change"
// @Success      200   {object}  models.Prompt
// @Failure      400   {object}  dto.ErrorResponseDTO
// @Failure      404   {object}  dto.ErrorResponseDTO
// @Router       /prompts/{id} [put]
func UpdatePromptHandler(svc *services.PromptService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.UpdatePromptRequestDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		p, err := svc.Update(c.Request.Context(), auth.UserID(c), c.Param("id"), services.UpdatePromptInput{
			Title:   req.Title,
			Content: req.Content,
			Tags:    req.Tags,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// DeletePromptHandler godoc
// @Summary      Delete prompt
// @Description  Evaluations of the prompt are kept
// @Tags         prompts
// @Security     BearerAuth
// @Param        id   path   string  true  "ObjectID"
// @Produce      json
// @Success      200  {object}  dto.MessageResponseDTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /prompts/{id} [delete]
func DeletePromptHandler(svc *services.PromptService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), auth.UserID(c), c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.MessageResponseDTO{Message: "Prompt removed"})
	}
}
