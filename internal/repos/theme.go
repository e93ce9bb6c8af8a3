package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/clipshare/clipshare-backend/internal/platform/logger"
	"github.com/clipshare/clipshare-backend/internal/types"
)

type ThemeRepo interface {
	List(ctx context.Context, tx *gorm.DB) ([]*types.Theme, error)
	GetByID(ctx context.Context, tx *gorm.DB, id int64) (*types.Theme, error)
}

type themeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewThemeRepo(db *gorm.DB, baseLog *logger.Logger) ThemeRepo {
	repoLog := baseLog.With("repo", "ThemeRepo")
	return &themeRepo{db: db, log: repoLog}
}

func (r *themeRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Theme, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var themes []*types.Theme
	if err := transaction.WithContext(ctx).Order("name ASC").Find(&themes).Error; err != nil {
		return nil, err
	}
	return themes, nil
}

func (r *themeRepo) GetByID(ctx context.Context, tx *gorm.DB, id int64) (*types.Theme, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var theme types.Theme
	if err := transaction.WithContext(ctx).Where("id = ?", id).Take(&theme).Error; err != nil {
		return nil, err
	}
	return &theme, nil
}
