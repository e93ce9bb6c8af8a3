package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/clipshare/clipshare-backend/internal/middleware"
	"github.com/clipshare/clipshare-backend/internal/platform/apierr"
	"github.com/clipshare/clipshare-backend/internal/repos"
	"github.com/clipshare/clipshare-backend/internal/services"
	"github.com/clipshare/clipshare-backend/internal/types"
)

type VideoHandler struct {
	videoService services.VideoService
}

func NewVideoHandler(videoService services.VideoService) *VideoHandler {
	return &VideoHandler{videoService: videoService}
}

// Create ingests a multipart upload: a "video" file part plus title and
// theme_id form fields.
func (vh *VideoHandler) Create(c *gin.Context) {
	file, err := c.FormFile("video")
	if err != nil {
		respondError(c, apierr.MissingFile())
		return
	}
	actor := middleware.ActorFrom(c)
	userID := actor.UserID

	record, err := vh.videoService.Create(c.Request.Context(), services.CreateVideoInput{
		Title:   c.PostForm("title"),
		ThemeID: c.PostForm("theme_id"),
		UserID:  &userID,
		File:    file,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"video": record})
}

func (vh *VideoHandler) Get(c *gin.Context) {
	record, err := vh.videoService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"video": record})
}

func (vh *VideoHandler) List(c *gin.Context) {
	filter := repos.VideoListFilter{
		SortBy: c.Query("sort_by"),
		Order:  c.Query("order"),
	}
	if raw := c.Query("theme_id"); raw != "" {
		if themeID, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.ThemeID = themeID
		}
	}
	if raw := c.Query("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil {
			filter.Page = page
		}
	}
	if raw := c.Query("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			filter.Limit = limit
		}
	}

	records, err := vh.videoService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 10
	}
	c.JSON(http.StatusOK, gin.H{"videos": records, "page": page, "limit": limit})
}

// Update accepts any subset of title, theme_id and a replacement file. Only
// the owner or an admin may touch a video.
func (vh *VideoHandler) Update(c *gin.Context) {
	actor := middleware.ActorFrom(c)

	existing, err := vh.videoService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !ownsVideo(existing, actor) {
		respondError(c, apierr.Forbidden("only the owner or an admin may modify this video"))
		return
	}

	file, err := c.FormFile("video")
	if err != nil {
		file = nil
	}
	record, err := vh.videoService.Update(c.Request.Context(), c.Param("id"), services.UpdateVideoInput{
		Title:   c.PostForm("title"),
		ThemeID: c.PostForm("theme_id"),
		File:    file,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"video": record})
}

func (vh *VideoHandler) Delete(c *gin.Context) {
	actor := middleware.ActorFrom(c)

	existing, err := vh.videoService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !ownsVideo(existing, actor) {
		respondError(c, apierr.Forbidden("only the owner or an admin may delete this video"))
		return
	}

	record, err := vh.videoService.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"video": record})
}

func ownsVideo(record *types.VideoRecord, actor services.TokenClaims) bool {
	if actor.RoleID >= types.RoleAdmin {
		return true
	}
	return record.UserID != nil && *record.UserID == actor.UserID
}
