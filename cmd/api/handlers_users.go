package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/VrajDobariya82/Text-to-image-convertor-server/internal/account"
	"github.com/VrajDobariya82/Text-to-image-convertor-server/internal/metrics"
	"github.com/VrajDobariya82/Text-to-image-convertor-server/internal/middleware"
	"github.com/VrajDobariya82/Text-to-image-convertor-server/pkg/models"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/users/register
func (api *API) registerUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing details. Name, email and password are required"})
		return
	}

	session, err := api.accounts.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		var verr *account.ValidationError
		switch {
		case errors.As(err, &verr):
			c.JSON(http.StatusBadRequest, gin.H{"message": verr.Message})
		case errors.Is(err, account.ErrEmailExists):
			c.JSON(http.StatusConflict, gin.H{"message": "User with this email already exists"})
		default:
			api.logger.ErrorWithErr("Registration failed", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		}
		return
	}

	metrics.RegistrationsTotal.Inc()
	api.cacheUserView(c, session.User)

	c.JSON(http.StatusCreated, gin.H{
		"token": session.Token,
		"user":  session.User,
	})
}

// POST /api/users/login
func (api *API) loginUser(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required"})
		return
	}

	session, err := api.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		var verr *account.ValidationError
		switch {
		case errors.As(err, &verr):
			c.JSON(http.StatusBadRequest, gin.H{"message": verr.Message})
		case errors.Is(err, account.ErrInvalidCredentials):
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		default:
			api.logger.ErrorWithErr("Login failed", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		}
		return
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	api.cacheUserView(c, session.User)

	c.JSON(http.StatusOK, gin.H{
		"token": session.Token,
		"user":  session.User,
	})
}

// GET /api/users/verify
func (api *API) verifySession(c *gin.Context) {
	view, ok := api.resolveUserView(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": view})
}

// GET /api/users/profile
func (api *API) getUserProfile(c *gin.Context) {
	view, ok := api.resolveUserView(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": view})
}

// GET /api/users/credits
func (api *API) getUserCredits(c *gin.Context) {
	view, ok := api.resolveUserView(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"credits": view.Credits})
}

// resolveUserView loads the authenticated user's view, consulting the cache
// first. On failure it writes the error response and returns ok=false.
func (api *API) resolveUserView(c *gin.Context) (models.UserView, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized - Invalid token"})
		return models.UserView{}, false
	}

	if api.userCache != nil {
		if cached, err := api.userCache.GetUserView(c.Request.Context(), userID); err == nil && cached != nil {
			return *cached, true
		}
	}

	view, err := api.accounts.Profile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, account.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		} else {
			api.logger.ErrorWithErr("Failed to load user", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		}
		return models.UserView{}, false
	}

	api.cacheUserView(c, view)
	return view, true
}

func (api *API) cacheUserView(c *gin.Context, view models.UserView) {
	if api.userCache == nil {
		return
	}
	if err := api.userCache.SetUserView(c.Request.Context(), view, api.cacheTTL); err != nil {
		api.logger.WithError(err).Warn("Failed to cache user view")
	}
}

func (api *API) invalidateUser(c *gin.Context, userID string) {
	if api.userCache == nil {
		return
	}
	if err := api.userCache.InvalidateUser(c.Request.Context(), userID); err != nil {
		api.logger.WithError(err).Warn("Failed to invalidate cached user")
	}
}
