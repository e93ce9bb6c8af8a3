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

// ThemeService is read-only; the theme catalog is seeded at startup.
type ThemeService interface {
	List(ctx context.Context) ([]*types.Theme, error)
	Get(ctx context.Context, id int64) (*types.Theme, error)
}

type themeService struct {
	log    *logger.Logger
	themes repos.ThemeRepo
}

func NewThemeService(themes repos.ThemeRepo, baseLog *logger.Logger) ThemeService {
	serviceLog := baseLog.With("service", "ThemeService")
	return &themeService{log: serviceLog, themes: themes}
}

func (s *themeService) List(ctx context.Context) ([]*types.Theme, error) {
	themes, err := s.themes.List(ctx, nil)
	if err != nil {
		return nil, apierr.Storage(err)
	}
	return themes, nil
}

func (s *themeService) Get(ctx context.Context, id int64) (*types.Theme, error) {
	theme, err := s.themes.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("theme")
		}
		return nil, apierr.Storage(err)
	}
	return theme, nil
}
