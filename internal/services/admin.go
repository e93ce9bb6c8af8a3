package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/clipshare/clipshare-backend/internal/platform/apierr"
	"github.com/clipshare/clipshare-backend/internal/platform/logger"
	"github.com/clipshare/clipshare-backend/internal/repos"
	"github.com/clipshare/clipshare-backend/internal/types"
)

type AdminService interface {
	ListUsers(ctx context.Context) ([]*types.User, error)
	UpdateUserRole(ctx context.Context, actor TokenClaims, userID int64, roleID int) (*types.User, error)
	DeleteVideo(ctx context.Context, rawVideoID string) (*types.VideoRecord, error)
}

type adminService struct {
	log    *logger.Logger
	users  repos.UserRepo
	videos VideoService
}

func NewAdminService(users repos.UserRepo, videos VideoService, baseLog *logger.Logger) AdminService {
	serviceLog := baseLog.With("service", "AdminService")
	return &adminService{log: serviceLog, users: users, videos: videos}
}

func (s *adminService) ListUsers(ctx context.Context) ([]*types.User, error) {
	users, err := s.users.List(ctx, nil)
	if err != nil {
		return nil, apierr.Storage(err)
	}
	return users, nil
}

// UpdateUserRole changes another user's role. Admins cannot change their own
// role; that keeps a deployment from locking out its last admin by accident.
func (s *adminService) UpdateUserRole(ctx context.Context, actor TokenClaims, userID int64, roleID int) (*types.User, error) {
	if !types.ValidRole(roleID) {
		return nil, apierr.Schema([]apierr.FieldError{
			{Field: "role_id", Message: "role_id must be 1, 2 or 3"},
		})
	}
	if userID == actor.UserID {
		return nil, apierr.Forbidden("you cannot change your own role")
	}

	if err := s.users.UpdateRole(ctx, nil, userID, roleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("user")
		}
		return nil, apierr.Storage(err)
	}

	user, err := s.users.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, apierr.Storage(err)
	}
	s.log.Info("user role updated", "user_id", userID, "role_id", roleID, "actor_id", actor.UserID)
	return user, nil
}

// DeleteVideo reuses the ingestion service's delete path so the file and the
// dependent comment and rating rows go through the same cleanup.
func (s *adminService) DeleteVideo(ctx context.Context, rawVideoID string) (*types.VideoRecord, error) {
	return s.videos.Delete(ctx, rawVideoID)
}
