package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"model-eval/services"
)

// ListProvidersHandler godoc
// @Summary      List providers
// @Description  Model catalog of every provider and whether an API key is configured. Keys are never returned.
// @Tags         providers
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  map[string]services.ProviderInfo
// @Router       /providers [get]
func ListProvidersHandler(svc *services.ProviderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.List())
	}
}

// ProviderModelsHandler godoc
// @Summary      List models of a provider
// @Tags         providers
// @Security     BearerAuth
// @Param        provider  path  string  true  "openai, anthropic or google"
// @Produce      json
// @Success      200  {object}  services.ProviderInfo
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Router       /providers/{provider}/models [get]
func ProviderModelsHandler(svc *services.ProviderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, err := svc.Models(c.Param("provider"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, info)
	}
}
