package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/VrajDobariya82/Text-to-image-convertor-server/internal/collections"
	"github.com/VrajDobariya82/Text-to-image-convertor-server/internal/middleware"
)

type collectionItemRequest struct {
	ImageURL string `json:"imageUrl"`
	Prompt   string `json:"prompt"`
}

// POST /api/users/favorites
func (api *API) addFavorite(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized - Invalid token"})
		return
	}

	var req collectionItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Image URL and prompt are required"})
		return
	}

	fav, created, err := api.collections.AddFavorite(c.Request.Context(), userID, req.ImageURL, req.Prompt)
	if err != nil {
		if errors.Is(err, collections.ErrMissingFields) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Image URL and prompt are required"})
			return
		}
		api.logger.ErrorWithErr("Failed to add favorite", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	if !created {
		c.JSON(http.StatusOK, gin.H{"message": "Image already in favorites"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Added to favorites",
		"favorite": fav,
	})
}

// GET /api/users/favorites
func (api *API) getFavorites(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized - Invalid token"})
		return
	}

	favorites, err := api.collections.ListFavorites(c.Request.Context(), userID)
	if err != nil {
		api.logger.ErrorWithErr("Failed to list favorites", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"favorites": favorites})
}

// DELETE /api/users/favorites/:id
func (api *API) removeFavorite(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized - Invalid token"})
		return
	}

	err := api.collections.RemoveFavorite(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, collections.ErrFavoriteNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "Favorite not found"})
		case errors.Is(err, collections.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"message": "Unauthorized"})
		default:
			api.logger.ErrorWithErr("Failed to remove favorite", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Removed from favorites"})
}

// POST /api/users/history
func (api *API) addHistory(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized - Invalid token"})
		return
	}

	var req collectionItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Image URL and prompt are required"})
		return
	}

	entry, err := api.collections.AddHistory(c.Request.Context(), userID, req.ImageURL, req.Prompt)
	if err != nil {
		if errors.Is(err, collections.ErrMissingFields) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Image URL and prompt are required"})
			return
		}
		api.logger.ErrorWithErr("Failed to add history entry", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Added to history",
		"historyItem": entry,
	})
}

// GET /api/users/history
func (api *API) getHistory(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized - Invalid token"})
		return
	}

	history, err := api.collections.ListHistory(c.Request.Context(), userID)
	if err != nil {
		api.logger.ErrorWithErr("Failed to list history", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": history})
}
