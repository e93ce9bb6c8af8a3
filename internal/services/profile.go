package services

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// UploadProfile is the single configuration object every validation rule
// reads from: both the create and the update flow enforce exactly these
// limits. A deployment can override the defaults with a YAML file.
type UploadProfile struct {
	MinDurationSeconds float64  `yaml:"min_duration_seconds"`
	MaxDurationSeconds float64  `yaml:"max_duration_seconds"`
	MaxSizeBytes       int64    `yaml:"max_size_bytes"`
	AllowedExtensions  []string `yaml:"allowed_extensions"`
	TitleMaxLength     int      `yaml:"title_max_length"`
}

// MIME types a given extension may legitimately arrive with. Extension and
// MIME must both be allowed and must agree; a spoofed pairing is rejected.
var extensionMimeTypes = map[string][]string{
	".mp4":  {"video/mp4"},
	".avi":  {"video/x-msvideo", "video/avi"},
	".mov":  {"video/quicktime"},
	".wmv":  {"video/x-ms-wmv"},
	".flv":  {"video/x-flv"},
	".mkv":  {"video/x-matroska"},
	".webm": {"video/webm"},
}

func DefaultUploadProfile() UploadProfile {
	return UploadProfile{
		MinDurationSeconds: 10,
		MaxDurationSeconds: 60,
		MaxSizeBytes:       45 * 1024 * 1024,
		AllowedExtensions:  []string{".mp4", ".avi", ".mov", ".wmv", ".flv", ".mkv"},
		TitleMaxLength:     200,
	}
}

// LoadUploadProfile reads a profile from a YAML file, filling gaps with the
// defaults. An empty path returns the defaults untouched.
func LoadUploadProfile(path string) (UploadProfile, error) {
	profile := DefaultUploadProfile()
	if path == "" {
		return profile, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return profile, fmt.Errorf("read upload profile: %w", err)
	}
	var overrides UploadProfile
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return profile, fmt.Errorf("parse upload profile: %w", err)
	}
	if overrides.MinDurationSeconds > 0 {
		profile.MinDurationSeconds = overrides.MinDurationSeconds
	}
	if overrides.MaxDurationSeconds > 0 {
		profile.MaxDurationSeconds = overrides.MaxDurationSeconds
	}
	if overrides.MaxSizeBytes > 0 {
		profile.MaxSizeBytes = overrides.MaxSizeBytes
	}
	if len(overrides.AllowedExtensions) > 0 {
		profile.AllowedExtensions = overrides.AllowedExtensions
	}
	if overrides.TitleMaxLength > 0 {
		profile.TitleMaxLength = overrides.TitleMaxLength
	}
	for i, ext := range profile.AllowedExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, known := extensionMimeTypes[ext]; !known {
			return profile, fmt.Errorf("upload profile allows unknown extension %q", ext)
		}
		profile.AllowedExtensions[i] = ext
	}
	return profile, nil
}

func (p UploadProfile) extensionAllowed(ext string) bool {
	for _, allowed := range p.AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

func (p UploadProfile) mimeMatchesExtension(ext, mimeType string) bool {
	for _, allowed := range extensionMimeTypes[ext] {
		if mimeType == allowed {
			return true
		}
	}
	return false
}
