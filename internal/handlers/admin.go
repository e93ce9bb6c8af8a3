package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/clipshare/clipshare-backend/internal/middleware"
	"github.com/clipshare/clipshare-backend/internal/platform/apierr"
	"github.com/clipshare/clipshare-backend/internal/services"
)

type AdminHandler struct {
	adminService services.AdminService
}

func NewAdminHandler(adminService services.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

func (ah *AdminHandler) ListUsers(c *gin.Context) {
	users, err := ah.adminService.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (ah *AdminHandler) UpdateUserRole(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || userID <= 0 {
		respondError(c, apierr.NotFound("user"))
		return
	}
	var req struct {
		RoleID int `json:"role_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierr.Schema([]apierr.FieldError{
			{Field: "role_id", Message: "role_id is required"},
		}))
		return
	}
	actor := middleware.ActorFrom(c)
	user, err := ah.adminService.UpdateUserRole(c.Request.Context(), actor, userID, req.RoleID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (ah *AdminHandler) DeleteVideo(c *gin.Context) {
	record, err := ah.adminService.DeleteVideo(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"video": record})
}
