package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clipshare/clipshare-backend/internal/platform/apierr"
	"github.com/clipshare/clipshare-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (ah *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierr.Schema([]apierr.FieldError{
			{Field: "body", Message: "email, username and a password of at least 8 characters are required"},
		}))
		return
	}
	user, err := ah.authService.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req services.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierr.Schema([]apierr.FieldError{
			{Field: "body", Message: "email and password are required"},
		}))
		return
	}
	user, token, err := ah.authService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}
