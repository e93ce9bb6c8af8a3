package services

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadUploadProfileDefaults(t *testing.T) {
	profile, err := LoadUploadProfile("")
	if err != nil {
		t.Fatalf("LoadUploadProfile: %v", err)
	}
	if profile.MinDurationSeconds != 10 || profile.MaxDurationSeconds != 60 {
		t.Fatalf("default duration window: got %+v", profile)
	}
	if profile.MaxSizeBytes != 45*1024*1024 {
		t.Fatalf("default size ceiling: got %d", profile.MaxSizeBytes)
	}
	if !profile.extensionAllowed(".mp4") || profile.extensionAllowed(".webm") {
		t.Fatalf("default extensions: got %v", profile.AllowedExtensions)
	}
}

func TestLoadUploadProfileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	content := []byte("max_duration_seconds: 120\nallowed_extensions: [mp4, webm]\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write profile: %v", err)
	}

	profile, err := LoadUploadProfile(path)
	if err != nil {
		t.Fatalf("LoadUploadProfile: %v", err)
	}
	if profile.MaxDurationSeconds != 120 {
		t.Fatalf("override max duration: got %v", profile.MaxDurationSeconds)
	}
	if profile.MinDurationSeconds != 10 {
		t.Fatalf("min duration must keep its default: got %v", profile.MinDurationSeconds)
	}
	if !profile.extensionAllowed(".webm") || profile.extensionAllowed(".avi") {
		t.Fatalf("overridden extensions: got %v", profile.AllowedExtensions)
	}
}

func TestLoadUploadProfileUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	if err := os.WriteFile(path, []byte("allowed_extensions: [exe]\n"), 0o644); err != nil {
		t.Fatalf("write profile: %v", err)
	}
	if _, err := LoadUploadProfile(path); err == nil {
		t.Fatalf("unknown extension must be rejected")
	}
}

func TestMimeMatchesExtension(t *testing.T) {
	profile := DefaultUploadProfile()

	cases := []struct {
		ext  string
		mime string
		want bool
	}{
		{ext: ".mp4", mime: "video/mp4", want: true},
		{ext: ".avi", mime: "video/x-msvideo", want: true},
		{ext: ".avi", mime: "video/avi", want: true},
		{ext: ".mp4", mime: "video/x-msvideo", want: false},
		{ext: ".mp4", mime: "application/octet-stream", want: false},
		{ext: ".exe", mime: "video/mp4", want: false},
	}
	for _, tc := range cases {
		if got := profile.mimeMatchesExtension(tc.ext, tc.mime); got != tc.want {
			t.Fatalf("%s + %s: want=%v got=%v", tc.ext, tc.mime, tc.want, got)
		}
	}
}
