package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/clipshare/clipshare-backend/internal/platform/logger"
	"github.com/clipshare/clipshare-backend/internal/types"
)

type CommentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, comment *types.Comment) (*types.Comment, error)
	GetByID(ctx context.Context, tx *gorm.DB, id int64) (*types.Comment, error)
	ListByVideoID(ctx context.Context, tx *gorm.DB, videoID string) ([]*types.Comment, error)
	UpdateContent(ctx context.Context, tx *gorm.DB, id int64, content string) error
	Delete(ctx context.Context, tx *gorm.DB, id int64) error
	DeleteByVideoID(ctx context.Context, tx *gorm.DB, videoID string) error
}

type commentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCommentRepo(db *gorm.DB, baseLog *logger.Logger) CommentRepo {
	repoLog := baseLog.With("repo", "CommentRepo")
	return &commentRepo{db: db, log: repoLog}
}

func (r *commentRepo) Create(ctx context.Context, tx *gorm.DB, comment *types.Comment) (*types.Comment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

func (r *commentRepo) GetByID(ctx context.Context, tx *gorm.DB, id int64) (*types.Comment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var comment types.Comment
	if err := transaction.WithContext(ctx).Where("id = ?", id).Take(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepo) ListByVideoID(ctx context.Context, tx *gorm.DB, videoID string) ([]*types.Comment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var comments []*types.Comment
	if err := transaction.WithContext(ctx).
		Where("video_id = ?", videoID).
		Order("created_at DESC").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *commentRepo) UpdateContent(ctx context.Context, tx *gorm.DB, id int64, content string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	res := transaction.WithContext(ctx).Model(&types.Comment{}).Where("id = ?", id).Update("content", content)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *commentRepo) Delete(ctx context.Context, tx *gorm.DB, id int64) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	res := transaction.WithContext(ctx).Where("id = ?", id).Delete(&types.Comment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *commentRepo) DeleteByVideoID(ctx context.Context, tx *gorm.DB, videoID string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).Where("video_id = ?", videoID).Delete(&types.Comment{}).Error
}
