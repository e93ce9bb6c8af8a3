package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/clipshare/clipshare-backend/internal/platform/apierr"
	"github.com/clipshare/clipshare-backend/internal/platform/logger"
)

// Characters that never belong in a title. The set targets markup and
// injection vectors rather than trying to allowlist every script.
var titleDenylist = regexp.MustCompile("[<>\"'`;\\\\{}]")

// CreateFields is the validated metadata for a new video.
type CreateFields struct {
	Title   string
	ThemeID int64
}

// UpdateFields carries only the fields the client actually sent. Nil means
// "leave it alone".
type UpdateFields struct {
	Title   *string
	ThemeID *int64
}

// ValidationService checks user-supplied metadata before anything touches
// the prober or the database. Failures come back as a schema error listing
// every offending field at once.
type ValidationService interface {
	ValidateCreate(title, themeID string) (*CreateFields, error)
	ValidateUpdate(title, themeID string, hasFile bool) (*UpdateFields, error)
}

type validationService struct {
	log     *logger.Logger
	profile UploadProfile
}

func NewValidationService(profile UploadProfile, baseLog *logger.Logger) ValidationService {
	serviceLog := baseLog.With("service", "ValidationService")
	return &validationService{log: serviceLog, profile: profile}
}

func (s *validationService) ValidateCreate(title, themeID string) (*CreateFields, error) {
	var fieldErrs []apierr.FieldError

	cleanTitle, err := s.checkTitle(title)
	if err != nil {
		fieldErrs = append(fieldErrs, apierr.FieldError{Field: "title", Message: err.Error()})
	}
	theme, err := s.checkThemeID(themeID)
	if err != nil {
		fieldErrs = append(fieldErrs, apierr.FieldError{Field: "theme_id", Message: err.Error()})
	}

	if len(fieldErrs) > 0 {
		return nil, apierr.Schema(fieldErrs)
	}
	return &CreateFields{Title: cleanTitle, ThemeID: theme}, nil
}

func (s *validationService) ValidateUpdate(title, themeID string, hasFile bool) (*UpdateFields, error) {
	var fieldErrs []apierr.FieldError
	fields := &UpdateFields{}

	if title != "" {
		cleanTitle, err := s.checkTitle(title)
		if err != nil {
			fieldErrs = append(fieldErrs, apierr.FieldError{Field: "title", Message: err.Error()})
		} else {
			fields.Title = &cleanTitle
		}
	}
	if themeID != "" {
		theme, err := s.checkThemeID(themeID)
		if err != nil {
			fieldErrs = append(fieldErrs, apierr.FieldError{Field: "theme_id", Message: err.Error()})
		} else {
			fields.ThemeID = &theme
		}
	}

	if len(fieldErrs) > 0 {
		return nil, apierr.Schema(fieldErrs)
	}
	if fields.Title == nil && fields.ThemeID == nil && !hasFile {
		return nil, apierr.Schema([]apierr.FieldError{
			{Field: "body", Message: "at least one of title, theme_id or file is required"},
		})
	}
	return fields, nil
}

func (s *validationService) checkTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", fmt.Errorf("title is required")
	}
	// The bound is in characters, not bytes; multibyte titles count per rune.
	if utf8.RuneCountInString(trimmed) > s.profile.TitleMaxLength {
		return "", fmt.Errorf("title must be at most %d characters", s.profile.TitleMaxLength)
	}
	if titleDenylist.MatchString(trimmed) {
		return "", fmt.Errorf("title contains forbidden characters")
	}
	return trimmed, nil
}

func (s *validationService) checkThemeID(themeID string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(themeID), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("theme_id must be a positive integer")
	}
	return id, nil
}
