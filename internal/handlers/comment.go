package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/clipshare/clipshare-backend/internal/middleware"
	"github.com/clipshare/clipshare-backend/internal/platform/apierr"
	"github.com/clipshare/clipshare-backend/internal/services"
)

type CommentHandler struct {
	commentService services.CommentService
	ratingService  services.RatingService
}

func NewCommentHandler(commentService services.CommentService, ratingService services.RatingService) *CommentHandler {
	return &CommentHandler{commentService: commentService, ratingService: ratingService}
}

func (ch *CommentHandler) Create(c *gin.Context) {
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierr.Schema([]apierr.FieldError{
			{Field: "content", Message: "content is required"},
		}))
		return
	}
	actor := middleware.ActorFrom(c)
	comment, err := ch.commentService.Create(c.Request.Context(), c.Param("id"), actor.UserID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

func (ch *CommentHandler) ListForVideo(c *gin.Context) {
	comments, err := ch.commentService.ListForVideo(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

func (ch *CommentHandler) Update(c *gin.Context) {
	commentID, err := strconv.ParseInt(c.Param("commentId"), 10, 64)
	if err != nil || commentID <= 0 {
		respondError(c, apierr.NotFound("comment"))
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierr.Schema([]apierr.FieldError{
			{Field: "content", Message: "content is required"},
		}))
		return
	}
	actor := middleware.ActorFrom(c)
	comment, err := ch.commentService.Update(c.Request.Context(), commentID, actor, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comment": comment})
}

func (ch *CommentHandler) Delete(c *gin.Context) {
	commentID, err := strconv.ParseInt(c.Param("commentId"), 10, 64)
	if err != nil || commentID <= 0 {
		respondError(c, apierr.NotFound("comment"))
		return
	}
	actor := middleware.ActorFrom(c)
	if err := ch.commentService.Delete(c.Request.Context(), commentID, actor); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Rate lives next to comments because both hang off a video id route.
func (ch *CommentHandler) Rate(c *gin.Context) {
	var req struct {
		Score int `json:"score"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierr.Schema([]apierr.FieldError{
			{Field: "score", Message: "score is required"},
		}))
		return
	}
	actor := middleware.ActorFrom(c)
	summary, err := ch.ratingService.Rate(c.Request.Context(), c.Param("id"), actor.UserID, req.Score)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rating": summary})
}

func (ch *CommentHandler) RatingSummary(c *gin.Context) {
	summary, err := ch.ratingService.SummaryForVideo(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rating": summary})
}
