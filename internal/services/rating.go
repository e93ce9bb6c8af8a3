package services

import (
	"context"
	"fmt"

	"github.com/clipshare/clipshare-backend/internal/platform/apierr"
	"github.com/clipshare/clipshare-backend/internal/platform/logger"
	"github.com/clipshare/clipshare-backend/internal/repos"
	"github.com/clipshare/clipshare-backend/internal/types"
)

const (
	ratingMinScore = 1
	ratingMaxScore = 5
)

type RatingService interface {
	Rate(ctx context.Context, rawVideoID string, userID int64, score int) (*types.RatingSummary, error)
	SummaryForVideo(ctx context.Context, rawVideoID string) (*types.RatingSummary, error)
}

type ratingService struct {
	log     *logger.Logger
	ratings repos.RatingRepo
	videos  VideoService
}

func NewRatingService(ratings repos.RatingRepo, videos VideoService, baseLog *logger.Logger) RatingService {
	serviceLog := baseLog.With("service", "RatingService")
	return &ratingService{log: serviceLog, ratings: ratings, videos: videos}
}

// Rate records or overwrites the caller's score and returns the fresh
// aggregate for the video.
func (s *ratingService) Rate(ctx context.Context, rawVideoID string, userID int64, score int) (*types.RatingSummary, error) {
	if score < ratingMinScore || score > ratingMaxScore {
		return nil, apierr.Schema([]apierr.FieldError{
			{Field: "score", Message: fmt.Sprintf("score must be between %d and %d", ratingMinScore, ratingMaxScore)},
		})
	}
	videoID, err := s.videos.ResolveID(ctx, rawVideoID)
	if err != nil {
		return nil, err
	}

	if err := s.ratings.Upsert(ctx, nil, &types.Rating{
		VideoID: videoID.String(),
		UserID:  userID,
		Score:   score,
	}); err != nil {
		return nil, apierr.Storage(err)
	}

	summary, err := s.ratings.AggregateForVideo(ctx, nil, videoID.String())
	if err != nil {
		return nil, apierr.Storage(err)
	}
	return summary, nil
}

func (s *ratingService) SummaryForVideo(ctx context.Context, rawVideoID string) (*types.RatingSummary, error) {
	videoID, err := s.videos.ResolveID(ctx, rawVideoID)
	if err != nil {
		return nil, err
	}
	summary, err := s.ratings.AggregateForVideo(ctx, nil, videoID.String())
	if err != nil {
		return nil, apierr.Storage(err)
	}
	return summary, nil
}
