package repos

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/clipshare/clipshare-backend/internal/platform/logger"
	"github.com/clipshare/clipshare-backend/internal/types"
)

func newVideoRepo(t *testing.T, strategy types.IdentityStrategy) VideoRepo {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "repo.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	models := []interface{}{&types.User{}, &types.Theme{}}
	if strategy == types.IdentityGenerated {
		models = append(models, &types.KeyedVideo{})
	} else {
		models = append(models, &types.Video{})
	}
	if err := gdb.AutoMigrate(models...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := gdb.Create(&types.Theme{Name: "Music"}).Error; err != nil {
		t.Fatalf("seed theme: %v", err)
	}
	return NewVideoRepo(gdb, log, strategy)
}

func videoFields(title string) *types.VideoFields {
	return &types.VideoFields{
		Title:    title,
		ThemeID:  1,
		VideoURL: "/uploads/" + title + ".mp4",
		Duration: 30,
		SizeMB:   1.5,
	}
}

func TestSerialIdentityAssignsIncreasingIDs(t *testing.T) {
	repo := newVideoRepo(t, types.IdentitySerial)
	ctx := context.Background()

	var last int64
	for i := 0; i < 100; i++ {
		record, err := repo.Create(ctx, nil, videoFields("clip"))
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		if record.ID.Serial <= last {
			t.Fatalf("serial ids must strictly increase: previous=%d got=%d", last, record.ID.Serial)
		}
		last = record.ID.Serial
	}
}

func TestGeneratedIdentityAssignsUniqueKeys(t *testing.T) {
	repo := newVideoRepo(t, types.IdentityGenerated)
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		record, err := repo.Create(ctx, nil, videoFields("clip"))
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		key := record.ID.Key
		if !strings.HasPrefix(key, "video-") {
			t.Fatalf("generated key shape: got %q", key)
		}
		if seen[key] {
			t.Fatalf("duplicate generated key %q", key)
		}
		seen[key] = true
	}
}

func TestParseIDPerStrategy(t *testing.T) {
	serial := newVideoRepo(t, types.IdentitySerial)
	if _, err := serial.ParseID("42"); err != nil {
		t.Fatalf("serial ParseID(42): %v", err)
	}
	for _, raw := range []string{"", "abc", "-1", "0", "1.5"} {
		if _, err := serial.ParseID(raw); err == nil {
			t.Fatalf("serial ParseID(%q): expected error", raw)
		}
	}

	generated := newVideoRepo(t, types.IdentityGenerated)
	id, err := generated.ParseID("video-123-abcd1234")
	if err != nil {
		t.Fatalf("generated ParseID: %v", err)
	}
	if id.Key != "video-123-abcd1234" {
		t.Fatalf("generated ParseID: got %+v", id)
	}
	if _, err := generated.ParseID("  "); err == nil {
		t.Fatalf("generated ParseID(blank): expected error")
	}
}

func TestVerifySchemaMatchesStrategy(t *testing.T) {
	ctx := context.Background()
	if err := newVideoRepo(t, types.IdentitySerial).VerifySchema(ctx); err != nil {
		t.Fatalf("serial schema check: %v", err)
	}
	if err := newVideoRepo(t, types.IdentityGenerated).VerifySchema(ctx); err != nil {
		t.Fatalf("generated schema check: %v", err)
	}
}

func TestUpdateRejectsUnknownColumns(t *testing.T) {
	repo := newVideoRepo(t, types.IdentitySerial)
	ctx := context.Background()

	record, err := repo.Create(ctx, nil, videoFields("clip"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.Update(ctx, nil, record.ID, map[string]interface{}{"user_id": 99}); err == nil {
		t.Fatalf("update of non-whitelisted column must fail")
	}
	if _, err := repo.Update(ctx, nil, record.ID, map[string]interface{}{}); err == nil {
		t.Fatalf("empty update must fail")
	}
	updated, err := repo.Update(ctx, nil, record.ID, map[string]interface{}{"title": "renamed"})
	if err != nil {
		t.Fatalf("whitelisted update: %v", err)
	}
	if updated.Title != "renamed" {
		t.Fatalf("update result: want=%q got=%q", "renamed", updated.Title)
	}
}

func TestUpdateRollsBackWhenReadbackFails(t *testing.T) {
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "rollback.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(&types.User{}, &types.Theme{}, &types.Video{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := gdb.Create(&types.Theme{Name: "Music"}).Error; err != nil {
		t.Fatalf("seed theme: %v", err)
	}
	repo := NewVideoRepo(gdb, log, types.IdentitySerial)
	ctx := context.Background()

	record, err := repo.Create(ctx, nil, videoFields("stable"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Break the joined readback only: the UPDATE statement touches just the
	// videos table and would still succeed on its own.
	if err := gdb.Migrator().DropTable(&types.User{}); err != nil {
		t.Fatalf("drop users: %v", err)
	}
	if _, err := repo.Update(ctx, nil, record.ID, map[string]interface{}{"title": "changed"}); err == nil {
		t.Fatalf("update with a broken readback must fail")
	}

	var title string
	if err := gdb.Table("videos").Select("title").Where("id = ?", record.ID.Serial).Take(&title).Error; err != nil {
		t.Fatalf("raw readback: %v", err)
	}
	if title != "stable" {
		t.Fatalf("failed update must leave the row unchanged: got title=%q", title)
	}
}

func TestUpdateMissingRow(t *testing.T) {
	repo := newVideoRepo(t, types.IdentitySerial)
	_, err := repo.Update(context.Background(), nil, types.SerialID(999), map[string]interface{}{"title": "x"})
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("update of missing row: want ErrRecordNotFound, got %v", err)
	}
}

func TestDeleteMissingRow(t *testing.T) {
	repo := newVideoRepo(t, types.IdentitySerial)
	_, err := repo.Delete(context.Background(), nil, types.SerialID(999))
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("delete of missing row: want ErrRecordNotFound, got %v", err)
	}
}

func TestListFilterAndSort(t *testing.T) {
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "list.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(&types.User{}, &types.Theme{}, &types.Video{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	for _, name := range []string{"Music", "Gaming"} {
		if err := gdb.Create(&types.Theme{Name: name}).Error; err != nil {
			t.Fatalf("seed theme: %v", err)
		}
	}
	repo := NewVideoRepo(gdb, log, types.IdentitySerial)
	ctx := context.Background()

	seed := []struct {
		title    string
		themeID  int64
		duration float64
	}{
		{title: "alpha", themeID: 1, duration: 20},
		{title: "bravo", themeID: 2, duration: 50},
		{title: "charlie", themeID: 1, duration: 35},
	}
	for _, s := range seed {
		fields := videoFields(s.title)
		fields.ThemeID = s.themeID
		fields.Duration = s.duration
		if _, err := repo.Create(ctx, nil, fields); err != nil {
			t.Fatalf("create %q: %v", s.title, err)
		}
	}

	byTheme, err := repo.List(ctx, nil, VideoListFilter{ThemeID: 1})
	if err != nil {
		t.Fatalf("list by theme: %v", err)
	}
	if len(byTheme) != 2 {
		t.Fatalf("theme filter: want 2 rows, got %d", len(byTheme))
	}
	for _, record := range byTheme {
		if record.ThemeID != 1 {
			t.Fatalf("theme filter leaked theme %d", record.ThemeID)
		}
	}

	byDuration, err := repo.List(ctx, nil, VideoListFilter{SortBy: "duration", Order: "asc"})
	if err != nil {
		t.Fatalf("list by duration: %v", err)
	}
	if len(byDuration) != 3 {
		t.Fatalf("unfiltered list: want 3 rows, got %d", len(byDuration))
	}
	for i := 1; i < len(byDuration); i++ {
		if byDuration[i].Duration < byDuration[i-1].Duration {
			t.Fatalf("ascending duration sort violated at %d: %v < %v", i, byDuration[i].Duration, byDuration[i-1].Duration)
		}
	}

	// Unknown sort column falls back to created_at instead of erroring.
	if _, err := repo.List(ctx, nil, VideoListFilter{SortBy: "password"}); err != nil {
		t.Fatalf("unknown sort column: %v", err)
	}

	paged, err := repo.List(ctx, nil, VideoListFilter{Page: 2, Limit: 2, SortBy: "title", Order: "asc"})
	if err != nil {
		t.Fatalf("paged list: %v", err)
	}
	if len(paged) != 1 || paged[0].Title != "charlie" {
		t.Fatalf("page 2 of 2: want [charlie], got %+v", paged)
	}
}
