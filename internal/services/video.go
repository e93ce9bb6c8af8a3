package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/clipshare/clipshare-backend/internal/platform/apierr"
	"github.com/clipshare/clipshare-backend/internal/platform/logger"
	"github.com/clipshare/clipshare-backend/internal/repos"
	"github.com/clipshare/clipshare-backend/internal/types"
)

type CreateVideoInput struct {
	Title   string
	ThemeID string
	UserID  *int64
	File    *multipart.FileHeader
}

type UpdateVideoInput struct {
	Title   string
	ThemeID string
	File    *multipart.FileHeader
}

// VideoService runs the full ingestion pipeline: field validation, staging,
// media analysis, the duration window, and the record store. Its cleanup
// contract is that a staged file never survives a failed request, and an
// update never destroys the previous file until the new row is committed.
type VideoService interface {
	Create(ctx context.Context, input CreateVideoInput) (*types.VideoRecord, error)
	Get(ctx context.Context, rawID string) (*types.VideoRecord, error)
	List(ctx context.Context, filter repos.VideoListFilter) ([]*types.VideoRecord, error)
	Update(ctx context.Context, rawID string, input UpdateVideoInput) (*types.VideoRecord, error)
	Delete(ctx context.Context, rawID string) (*types.VideoRecord, error)
	ResolveID(ctx context.Context, rawID string) (types.VideoID, error)
}

type videoService struct {
	db         *gorm.DB
	log        *logger.Logger
	profile    UploadProfile
	validation ValidationService
	uploads    UploadService
	prober     MediaProbeService
	videos     repos.VideoRepo
	themes     repos.ThemeRepo
	comments   repos.CommentRepo
	ratings    repos.RatingRepo
}

func NewVideoService(
	db *gorm.DB,
	baseLog *logger.Logger,
	profile UploadProfile,
	validation ValidationService,
	uploads UploadService,
	prober MediaProbeService,
	videos repos.VideoRepo,
	themes repos.ThemeRepo,
	comments repos.CommentRepo,
	ratings repos.RatingRepo,
) VideoService {
	serviceLog := baseLog.With("service", "VideoService")
	return &videoService{
		db:         db,
		log:        serviceLog,
		profile:    profile,
		validation: validation,
		uploads:    uploads,
		prober:     prober,
		videos:     videos,
		themes:     themes,
		comments:   comments,
		ratings:    ratings,
	}
}

func (s *videoService) Create(ctx context.Context, input CreateVideoInput) (*types.VideoRecord, error) {
	fields, err := s.validation.ValidateCreate(input.Title, input.ThemeID)
	if err != nil {
		return nil, err
	}
	if input.File == nil {
		return nil, apierr.MissingFile()
	}
	if err := s.checkThemeExists(ctx, fields.ThemeID); err != nil {
		return nil, err
	}

	stored, err := s.uploads.Receive(ctx, input.File)
	if err != nil {
		return nil, err
	}
	// Any failure past this point must take the staged file with it.
	probe, err := s.analyze(ctx, stored.Path)
	if err != nil {
		s.discard(ctx, stored.URL)
		return nil, err
	}
	probeJSON, err := json.Marshal(probe)
	if err != nil {
		s.discard(ctx, stored.URL)
		return nil, apierr.Storage(fmt.Errorf("encode probe result: %w", err))
	}

	record, err := s.videos.Create(ctx, nil, &types.VideoFields{
		Title:     fields.Title,
		ThemeID:   fields.ThemeID,
		UserID:    input.UserID,
		VideoURL:  stored.URL,
		Duration:  probe.Duration,
		SizeMB:    float64(stored.SizeBytes) / 1024 / 1024,
		ProbeInfo: datatypes.JSON(probeJSON),
	})
	if err != nil {
		s.discard(ctx, stored.URL)
		return nil, apierr.Storage(err)
	}

	s.log.Info("video created", "video_id", record.ID.String(), "duration", record.Duration)
	return record, nil
}

func (s *videoService) Get(ctx context.Context, rawID string) (*types.VideoRecord, error) {
	id, err := s.parseID(rawID)
	if err != nil {
		return nil, err
	}
	record, err := s.videos.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("video")
		}
		return nil, apierr.Storage(err)
	}
	s.attachRatings(ctx, record)
	return record, nil
}

func (s *videoService) List(ctx context.Context, filter repos.VideoListFilter) ([]*types.VideoRecord, error) {
	records, err := s.videos.List(ctx, nil, filter)
	if err != nil {
		return nil, apierr.Storage(err)
	}
	return records, nil
}

func (s *videoService) Update(ctx context.Context, rawID string, input UpdateVideoInput) (*types.VideoRecord, error) {
	id, err := s.parseID(rawID)
	if err != nil {
		return nil, err
	}
	fields, err := s.validation.ValidateUpdate(input.Title, input.ThemeID, input.File != nil)
	if err != nil {
		return nil, err
	}

	existing, err := s.videos.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("video")
		}
		return nil, apierr.Storage(err)
	}

	updates := map[string]interface{}{}
	if fields.Title != nil {
		updates["title"] = *fields.Title
	}
	if fields.ThemeID != nil {
		if err := s.checkThemeExists(ctx, *fields.ThemeID); err != nil {
			return nil, err
		}
		updates["theme_id"] = *fields.ThemeID
	}

	var stored *StoredFile
	if input.File != nil {
		stored, err = s.uploads.Receive(ctx, input.File)
		if err != nil {
			return nil, err
		}
		probe, err := s.analyze(ctx, stored.Path)
		if err != nil {
			s.discard(ctx, stored.URL)
			return nil, err
		}
		probeJSON, err := json.Marshal(probe)
		if err != nil {
			s.discard(ctx, stored.URL)
			return nil, apierr.Storage(fmt.Errorf("encode probe result: %w", err))
		}
		updates["video_url"] = stored.URL
		updates["duration"] = probe.Duration
		updates["size_mb"] = float64(stored.SizeBytes) / 1024 / 1024
		updates["probe_info"] = datatypes.JSON(probeJSON)
	}

	record, err := s.videos.Update(ctx, nil, id, updates)
	if err != nil {
		if stored != nil {
			s.discard(ctx, stored.URL)
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("video")
		}
		return nil, apierr.Storage(err)
	}

	// The old file goes only after the row holds the new URL.
	if stored != nil && existing.VideoURL != record.VideoURL {
		s.discard(ctx, existing.VideoURL)
	}

	s.log.Info("video updated", "video_id", record.ID.String())
	s.attachRatings(ctx, record)
	return record, nil
}

func (s *videoService) Delete(ctx context.Context, rawID string) (*types.VideoRecord, error) {
	id, err := s.parseID(rawID)
	if err != nil {
		return nil, err
	}

	var record *types.VideoRecord
	err = s.db.Transaction(func(tx *gorm.DB) error {
		deleted, err := s.videos.Delete(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := s.comments.DeleteByVideoID(ctx, tx, id.String()); err != nil {
			return err
		}
		if err := s.ratings.DeleteByVideoID(ctx, tx, id.String()); err != nil {
			return err
		}
		record = deleted
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("video")
		}
		return nil, apierr.Storage(err)
	}

	// The row is gone; file removal is best-effort and only logged.
	s.discard(ctx, record.VideoURL)
	s.log.Info("video deleted", "video_id", record.ID.String())
	return record, nil
}

func (s *videoService) ResolveID(ctx context.Context, rawID string) (types.VideoID, error) {
	id, err := s.parseID(rawID)
	if err != nil {
		return types.VideoID{}, err
	}
	if _, err := s.videos.GetByID(ctx, nil, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.VideoID{}, apierr.NotFound("video")
		}
		return types.VideoID{}, apierr.Storage(err)
	}
	return id, nil
}

func (s *videoService) parseID(rawID string) (types.VideoID, error) {
	id, err := s.videos.ParseID(rawID)
	if err != nil {
		return types.VideoID{}, apierr.NotFound("video")
	}
	return id, nil
}

// analyze probes the staged file and applies the duration window.
func (s *videoService) analyze(ctx context.Context, path string) (*ProbeResult, error) {
	probe, err := s.prober.Probe(ctx, path)
	if err != nil {
		return nil, apierr.Analysis(err)
	}
	if probe.Duration < s.profile.MinDurationSeconds {
		return nil, apierr.TooShort(probe.Duration, s.profile.MinDurationSeconds)
	}
	if probe.Duration > s.profile.MaxDurationSeconds {
		return nil, apierr.TooLong(probe.Duration, s.profile.MaxDurationSeconds)
	}
	return probe, nil
}

func (s *videoService) checkThemeExists(ctx context.Context, themeID int64) error {
	if _, err := s.themes.GetByID(ctx, nil, themeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierr.Schema([]apierr.FieldError{
				{Field: "theme_id", Message: fmt.Sprintf("theme %d does not exist", themeID)},
			})
		}
		return apierr.Storage(err)
	}
	return nil
}

func (s *videoService) attachRatings(ctx context.Context, record *types.VideoRecord) {
	summary, err := s.ratings.AggregateForVideo(ctx, nil, record.ID.String())
	if err != nil {
		s.log.Warn("rating aggregate failed", "video_id", record.ID.String(), "error", err)
		return
	}
	record.RatingAverage = summary.Average
	record.RatingCount = summary.Count
}

func (s *videoService) discard(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.uploads.Remove(ctx, url); err != nil {
		s.log.Warn("file cleanup failed", "url", url, "error", err)
	}
}
