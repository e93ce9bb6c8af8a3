package repos

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/clipshare/clipshare-backend/internal/platform/logger"
	"github.com/clipshare/clipshare-backend/internal/types"
)

type RatingRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, rating *types.Rating) error
	AggregateForVideo(ctx context.Context, tx *gorm.DB, videoID string) (*types.RatingSummary, error)
	DeleteByVideoID(ctx context.Context, tx *gorm.DB, videoID string) error
}

type ratingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRatingRepo(db *gorm.DB, baseLog *logger.Logger) RatingRepo {
	repoLog := baseLog.With("repo", "RatingRepo")
	return &ratingRepo{db: db, log: repoLog}
}

// Upsert keeps one row per (user, video); a re-rating overwrites the score.
func (r *ratingRepo) Upsert(ctx context.Context, tx *gorm.DB, rating *types.Rating) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "video_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"score", "updated_at"}),
	}).Create(rating).Error
}

func (r *ratingRepo) AggregateForVideo(ctx context.Context, tx *gorm.DB, videoID string) (*types.RatingSummary, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row struct {
		Average *float64
		Count   int64
	}
	if err := transaction.WithContext(ctx).
		Model(&types.Rating{}).
		Select("AVG(score) AS average, COUNT(*) AS count").
		Where("video_id = ?", videoID).
		Take(&row).Error; err != nil {
		return nil, err
	}
	summary := &types.RatingSummary{Count: row.Count}
	if row.Average != nil {
		summary.Average = *row.Average
	}
	return summary, nil
}

func (r *ratingRepo) DeleteByVideoID(ctx context.Context, tx *gorm.DB, videoID string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).Where("video_id = ?", videoID).Delete(&types.Rating{}).Error
}
