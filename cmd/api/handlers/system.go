package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"model-eval/cmd/api/auth"
	"model-eval/cmd/api/dto"
)

// Pinger reports whether a backing store is reachable.
type Pinger func(ctx context.Context) error

// HealthHandler godoc
// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  dto.HealthResponseDTO
// @Failure      503  {object}  dto.HealthResponseDTO
// @Router       /health [get]
func HealthHandler(ping Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ping == nil {
			c.JSON(http.StatusOK, dto.HealthResponseDTO{Status: "ok"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		if err := ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, dto.HealthResponseDTO{Status: "degraded", Storage: "down"})
			return
		}
		c.JSON(http.StatusOK, dto.HealthResponseDTO{Status: "ok", Storage: "up"})
	}
}

// ValidateTokenHandler godoc
// @Summary      Validate bearer token
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  dto.ValidateTokenResponseDTO
// @Failure      401  {object}  dto.ErrorResponseDTO
// @Router       /auth/validate [get]
func ValidateTokenHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.ValidateTokenResponseDTO{
			Valid: true,
			User:  dto.UserDTO{ID: auth.UserID(c)},
		})
	}
}
