package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/clipshare/clipshare-backend/internal/platform/apierr"
	"github.com/clipshare/clipshare-backend/internal/services"
)

type ThemeHandler struct {
	themeService services.ThemeService
}

func NewThemeHandler(themeService services.ThemeService) *ThemeHandler {
	return &ThemeHandler{themeService: themeService}
}

func (th *ThemeHandler) List(c *gin.Context) {
	themes, err := th.themeService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"themes": themes})
}

func (th *ThemeHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, apierr.NotFound("theme"))
		return
	}
	theme, err := th.themeService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme": theme})
}
