package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/clipshare/clipshare-backend/internal/platform/apierr"
	"github.com/clipshare/clipshare-backend/internal/platform/logger"
	"github.com/clipshare/clipshare-backend/internal/repos"
	"github.com/clipshare/clipshare-backend/internal/types"
)

const commentMaxLength = 1000

type CommentService interface {
	Create(ctx context.Context, rawVideoID string, userID int64, content string) (*types.Comment, error)
	ListForVideo(ctx context.Context, rawVideoID string) ([]*types.Comment, error)
	Update(ctx context.Context, commentID int64, actor TokenClaims, content string) (*types.Comment, error)
	Delete(ctx context.Context, commentID int64, actor TokenClaims) error
}

type commentService struct {
	log      *logger.Logger
	comments repos.CommentRepo
	videos   VideoService
}

func NewCommentService(comments repos.CommentRepo, videos VideoService, baseLog *logger.Logger) CommentService {
	serviceLog := baseLog.With("service", "CommentService")
	return &commentService{log: serviceLog, comments: comments, videos: videos}
}

func (s *commentService) Create(ctx context.Context, rawVideoID string, userID int64, content string) (*types.Comment, error) {
	clean, err := checkCommentContent(content)
	if err != nil {
		return nil, err
	}
	videoID, err := s.videos.ResolveID(ctx, rawVideoID)
	if err != nil {
		return nil, err
	}

	comment, err := s.comments.Create(ctx, nil, &types.Comment{
		VideoID: videoID.String(),
		UserID:  userID,
		Content: clean,
	})
	if err != nil {
		return nil, apierr.Storage(err)
	}
	return comment, nil
}

func (s *commentService) ListForVideo(ctx context.Context, rawVideoID string) ([]*types.Comment, error) {
	videoID, err := s.videos.ResolveID(ctx, rawVideoID)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByVideoID(ctx, nil, videoID.String())
	if err != nil {
		return nil, apierr.Storage(err)
	}
	return comments, nil
}

func (s *commentService) Update(ctx context.Context, commentID int64, actor TokenClaims, content string) (*types.Comment, error) {
	clean, err := checkCommentContent(content)
	if err != nil {
		return nil, err
	}
	comment, err := s.authorize(ctx, commentID, actor)
	if err != nil {
		return nil, err
	}

	if err := s.comments.UpdateContent(ctx, nil, comment.ID, clean); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("comment")
		}
		return nil, apierr.Storage(err)
	}
	comment.Content = clean
	return comment, nil
}

func (s *commentService) Delete(ctx context.Context, commentID int64, actor TokenClaims) error {
	comment, err := s.authorize(ctx, commentID, actor)
	if err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, nil, comment.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierr.NotFound("comment")
		}
		return apierr.Storage(err)
	}
	return nil
}

// authorize loads the comment and enforces the author-or-admin rule.
func (s *commentService) authorize(ctx context.Context, commentID int64, actor TokenClaims) (*types.Comment, error) {
	comment, err := s.comments.GetByID(ctx, nil, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("comment")
		}
		return nil, apierr.Storage(err)
	}
	if comment.UserID != actor.UserID && actor.RoleID < types.RoleAdmin {
		return nil, apierr.Forbidden("only the author or an admin may modify this comment")
	}
	return comment, nil
}

func checkCommentContent(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", apierr.Schema([]apierr.FieldError{
			{Field: "content", Message: "content is required"},
		})
	}
	if len(trimmed) > commentMaxLength {
		return "", apierr.Schema([]apierr.FieldError{
			{Field: "content", Message: fmt.Sprintf("content must be at most %d characters", commentMaxLength)},
		})
	}
	return trimmed, nil
}
