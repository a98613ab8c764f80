package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/VrajDobariya82/Text-to-image-convertor-server/internal/generator"
	"github.com/VrajDobariya82/Text-to-image-convertor-server/internal/middleware"
)

type generateRequest struct {
	Prompt string `json:"prompt"`
}

// POST /api/images/generate-image
func (api *API) generateImage(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized - Invalid token"})
		return
	}

	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Prompt is required"})
		return
	}

	result, err := api.generator.Generate(c.Request.Context(), userID, req.Prompt)
	if err != nil {
		var creditErr *generator.InsufficientCreditsError
		var sizeErr *generator.PayloadTooLargeError
		switch {
		case errors.Is(err, generator.ErrEmptyPrompt):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Prompt is required"})
		case errors.Is(err, generator.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		case errors.As(err, &creditErr):
			c.JSON(http.StatusForbidden, gin.H{
				"message":     "Insufficient credits",
				"creditIssue": true,
				"credits":     creditErr.Credits,
			})
		case errors.As(err, &sizeErr):
			// The credit was already spent, so the cached balance is stale
			api.invalidateUser(c, userID)
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"message": "Generated image is too large to process. Please try a different prompt.",
				"size":    fmt.Sprintf("%.2fMB", sizeErr.SizeMB),
			})
		default:
			api.logger.ErrorWithErr("Image generation failed", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error during image generation"})
		}
		return
	}

	api.cacheUserView(c, result.User)

	c.JSON(http.StatusOK, gin.H{
		"imageUrl": result.ImageURL,
		"message":  result.Message,
		"user":     result.User,
	})
}
