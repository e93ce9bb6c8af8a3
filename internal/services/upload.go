package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clipshare/clipshare-backend/internal/platform/apierr"
	"github.com/clipshare/clipshare-backend/internal/platform/logger"
)

// StoredFile describes a staged upload on local disk. URL is the public
// path the file is served under, Path is the filesystem location.
type StoredFile struct {
	Path      string
	URL       string
	SizeBytes int64
}

// UploadService stages incoming multipart files under the upload directory.
// It enforces the type and size rules before any bytes land on disk, and
// never trusts the client-supplied filename for anything but its extension.
type UploadService interface {
	Receive(ctx context.Context, header *multipart.FileHeader) (*StoredFile, error)
	Remove(ctx context.Context, url string) error
	PathFor(url string) (string, error)
}

type uploadService struct {
	log     *logger.Logger
	dir     string
	profile UploadProfile
}

func NewUploadService(dir string, profile UploadProfile, baseLog *logger.Logger) (UploadService, error) {
	serviceLog := baseLog.With("service", "UploadService")
	if dir == "" {
		return nil, fmt.Errorf("upload directory is required")
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve upload directory: %w", err)
	}
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &uploadService{log: serviceLog, dir: absDir, profile: profile}, nil
}

func (s *uploadService) Receive(ctx context.Context, header *multipart.FileHeader) (*StoredFile, error) {
	if header == nil {
		return nil, apierr.MissingFile()
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !s.profile.extensionAllowed(ext) {
		return nil, apierr.UnsupportedType(fmt.Sprintf("extension %q is not allowed", ext))
	}
	mimeType := strings.ToLower(strings.TrimSpace(header.Header.Get("Content-Type")))
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if !s.profile.mimeMatchesExtension(ext, mimeType) {
		return nil, apierr.UnsupportedType(fmt.Sprintf("content type %q does not match extension %q", mimeType, ext))
	}
	if header.Size > s.profile.MaxSizeBytes {
		return nil, apierr.FileTooLarge(s.profile.MaxSizeBytes)
	}

	src, err := header.Open()
	if err != nil {
		return nil, apierr.Storage(fmt.Errorf("open upload: %w", err))
	}
	defer src.Close()

	name := fmt.Sprintf("video-%d-%s%s", time.Now().UnixNano(), uuid.NewString()[:8], ext)
	path := filepath.Join(s.dir, name)

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, apierr.Storage(fmt.Errorf("create staged file: %w", err))
	}
	written, err := io.Copy(dst, src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return nil, apierr.Storage(fmt.Errorf("write staged file: %w", err))
	}
	if written > s.profile.MaxSizeBytes {
		os.Remove(path)
		return nil, apierr.FileTooLarge(s.profile.MaxSizeBytes)
	}

	s.log.Info("staged upload", "file", name, "size_bytes", written)
	return &StoredFile{
		Path:      path,
		URL:       "/uploads/" + name,
		SizeBytes: written,
	}, nil
}

func (s *uploadService) Remove(ctx context.Context, url string) error {
	path, err := s.PathFor(url)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("remove staged file: %w", err)
	}
	return nil
}

// PathFor maps a public /uploads/ URL back to its filesystem path. Anything
// that would escape the upload directory is rejected.
func (s *uploadService) PathFor(url string) (string, error) {
	const prefix = "/uploads/"
	if !strings.HasPrefix(url, prefix) {
		return "", fmt.Errorf("not an upload URL: %q", url)
	}
	name := strings.TrimPrefix(url, prefix)
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("invalid upload name: %q", name)
	}
	return filepath.Join(s.dir, name), nil
}
