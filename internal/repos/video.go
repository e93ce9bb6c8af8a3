package repos

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clipshare/clipshare-backend/internal/platform/logger"
	"github.com/clipshare/clipshare-backend/internal/types"
)

// Columns the store will accept in an update; anything else in the map is a
// programming error and gets rejected.
var videoUpdateColumns = map[string]bool{
	"title":      true,
	"theme_id":   true,
	"video_url":  true,
	"duration":   true,
	"size_mb":    true,
	"probe_info": true,
}

type VideoListFilter struct {
	ThemeID int64
	Page    int
	Limit   int
	SortBy  string
	Order   string
}

var videoSortColumns = map[string]bool{
	"created_at": true,
	"title":      true,
	"duration":   true,
	"size_mb":    true,
}

type VideoRepo interface {
	Strategy() types.IdentityStrategy
	ParseID(raw string) (types.VideoID, error)
	VerifySchema(ctx context.Context) error
	Create(ctx context.Context, tx *gorm.DB, fields *types.VideoFields) (*types.VideoRecord, error)
	GetByID(ctx context.Context, tx *gorm.DB, id types.VideoID) (*types.VideoRecord, error)
	Update(ctx context.Context, tx *gorm.DB, id types.VideoID, updates map[string]interface{}) (*types.VideoRecord, error)
	Delete(ctx context.Context, tx *gorm.DB, id types.VideoID) (*types.VideoRecord, error)
	List(ctx context.Context, tx *gorm.DB, filter VideoListFilter) ([]*types.VideoRecord, error)
}

type videoRepo struct {
	db       *gorm.DB
	log      *logger.Logger
	strategy types.IdentityStrategy
}

func NewVideoRepo(db *gorm.DB, baseLog *logger.Logger, strategy types.IdentityStrategy) VideoRepo {
	repoLog := baseLog.With("repo", "VideoRepo", "id_strategy", string(strategy))
	return &videoRepo{db: db, log: repoLog, strategy: strategy}
}

func (r *videoRepo) Strategy() types.IdentityStrategy { return r.strategy }

func (r *videoRepo) ParseID(raw string) (types.VideoID, error) {
	raw = strings.TrimSpace(raw)
	if r.strategy == types.IdentitySerial {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			return types.VideoID{}, fmt.Errorf("invalid video id %q: want a positive integer", raw)
		}
		return types.SerialID(n), nil
	}
	if raw == "" {
		return types.VideoID{}, fmt.Errorf("invalid video id: empty")
	}
	return types.KeyedID(raw), nil
}

// NewGeneratedVideoID produces a key of the form video-<ms timestamp>-<random>.
// Timestamp plus random fragment keeps concurrent creates collision-free.
func NewGeneratedVideoID() string {
	return fmt.Sprintf("video-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

// VerifySchema is a startup-time consistency check: it compares the actual id
// column type against the configured strategy. Introspection failure is
// logged and tolerated; a detected mismatch is fatal.
func (r *videoRepo) VerifySchema(ctx context.Context) error {
	var model interface{} = &types.Video{}
	if r.strategy == types.IdentityGenerated {
		model = &types.KeyedVideo{}
	}
	cols, err := r.db.WithContext(ctx).Migrator().ColumnTypes(model)
	if err != nil {
		r.log.Warn("Schema introspection failed, trusting configured identity strategy", "error", err)
		return nil
	}
	for _, col := range cols {
		if col.Name() != "id" {
			continue
		}
		dbType := strings.ToLower(col.DatabaseTypeName())
		isInteger := strings.Contains(dbType, "int") || strings.Contains(dbType, "serial")
		if r.strategy == types.IdentitySerial && !isInteger {
			return fmt.Errorf("videos.id has type %q but the configured identity strategy is %q", dbType, r.strategy)
		}
		if r.strategy == types.IdentityGenerated && isInteger {
			return fmt.Errorf("videos.id has type %q but the configured identity strategy is %q", dbType, r.strategy)
		}
		return nil
	}
	r.log.Warn("Schema introspection returned no id column, trusting configured identity strategy")
	return nil
}

func (r *videoRepo) Create(ctx context.Context, tx *gorm.DB, fields *types.VideoFields) (*types.VideoRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var id types.VideoID
	if r.strategy == types.IdentityGenerated {
		row := &types.KeyedVideo{ID: NewGeneratedVideoID(), VideoFields: *fields}
		if err := transaction.WithContext(ctx).Create(row).Error; err != nil {
			return nil, err
		}
		id = types.KeyedID(row.ID)
	} else {
		row := &types.Video{VideoFields: *fields}
		if err := transaction.WithContext(ctx).Create(row).Error; err != nil {
			return nil, err
		}
		id = types.SerialID(row.ID)
	}
	return r.GetByID(ctx, tx, id)
}

func (r *videoRepo) GetByID(ctx context.Context, tx *gorm.DB, id types.VideoID) (*types.VideoRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	query := r.joined(transaction.WithContext(ctx)).Where("videos.id = ?", r.idValue(id))
	if r.strategy == types.IdentityGenerated {
		var row keyedVideoRow
		if err := query.Take(&row).Error; err != nil {
			return nil, err
		}
		return row.record(), nil
	}
	var row serialVideoRow
	if err := query.Take(&row).Error; err != nil {
		return nil, err
	}
	return row.record(), nil
}

// Update writes the columns and reads the joined record back inside one
// transaction. A readback failure rolls the write back, so an error from
// Update always means the row is unchanged and the caller may discard any
// file it staged for it.
func (r *videoRepo) Update(ctx context.Context, tx *gorm.DB, id types.VideoID, updates map[string]interface{}) (*types.VideoRecord, error) {
	if len(updates) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}
	for col := range updates {
		if !videoUpdateColumns[col] {
			return nil, fmt.Errorf("column %q is not updatable", col)
		}
	}
	updates["updated_at"] = time.Now()

	if tx != nil {
		return r.updateIn(ctx, tx, id, updates)
	}
	var record *types.VideoRecord
	err := r.db.Transaction(func(transaction *gorm.DB) error {
		var err error
		record, err = r.updateIn(ctx, transaction, id, updates)
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *videoRepo) updateIn(ctx context.Context, tx *gorm.DB, id types.VideoID, updates map[string]interface{}) (*types.VideoRecord, error) {
	res := tx.WithContext(ctx).Table("videos").Where("id = ?", r.idValue(id)).Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetByID(ctx, tx, id)
}

// Delete reads the record first so the caller gets the video_url it needs to
// remove the backing file, then removes the row.
func (r *videoRepo) Delete(ctx context.Context, tx *gorm.DB, id types.VideoID) (*types.VideoRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	record, err := r.GetByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	var res *gorm.DB
	if r.strategy == types.IdentityGenerated {
		res = transaction.WithContext(ctx).Where("id = ?", id.Key).Delete(&types.KeyedVideo{})
	} else {
		res = transaction.WithContext(ctx).Where("id = ?", id.Serial).Delete(&types.Video{})
	}
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return record, nil
}

func (r *videoRepo) List(ctx context.Context, tx *gorm.DB, filter VideoListFilter) ([]*types.VideoRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	sortBy := filter.SortBy
	if !videoSortColumns[sortBy] {
		sortBy = "created_at"
	}
	order := strings.ToLower(filter.Order)
	if order != "asc" {
		order = "desc"
	}

	query := r.joined(transaction.WithContext(ctx))
	if filter.ThemeID > 0 {
		query = query.Where("videos.theme_id = ?", filter.ThemeID)
	}
	query = query.
		Order(fmt.Sprintf("videos.%s %s", sortBy, order)).
		Limit(limit).
		Offset((page - 1) * limit)

	if r.strategy == types.IdentityGenerated {
		var rows []keyedVideoRow
		if err := query.Find(&rows).Error; err != nil {
			return nil, err
		}
		records := make([]*types.VideoRecord, 0, len(rows))
		for i := range rows {
			records = append(records, rows[i].record())
		}
		return records, nil
	}
	var rows []serialVideoRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	records := make([]*types.VideoRecord, 0, len(rows))
	for i := range rows {
		records = append(records, rows[i].record())
	}
	return records, nil
}

func (r *videoRepo) joined(db *gorm.DB) *gorm.DB {
	return db.Table("videos").
		Select("videos.*, themes.name AS theme_name, users.username AS username, users.email AS user_email").
		Joins("LEFT JOIN themes ON themes.id = videos.theme_id").
		Joins("LEFT JOIN users ON users.id = videos.user_id")
}

func (r *videoRepo) idValue(id types.VideoID) interface{} {
	if r.strategy == types.IdentityGenerated {
		return id.Key
	}
	return id.Serial
}

type serialVideoRow struct {
	ID int64
	types.VideoFields
	ThemeName *string
	Username  *string
	UserEmail *string
}

func (row *serialVideoRow) record() *types.VideoRecord {
	return buildRecord(types.SerialID(row.ID), row.VideoFields, row.ThemeName, row.Username, row.UserEmail)
}

type keyedVideoRow struct {
	ID string
	types.VideoFields
	ThemeName *string
	Username  *string
	UserEmail *string
}

func (row *keyedVideoRow) record() *types.VideoRecord {
	return buildRecord(types.KeyedID(row.ID), row.VideoFields, row.ThemeName, row.Username, row.UserEmail)
}

func buildRecord(id types.VideoID, fields types.VideoFields, themeName, username, userEmail *string) *types.VideoRecord {
	record := &types.VideoRecord{ID: id, VideoFields: fields}
	if themeName != nil {
		record.ThemeName = *themeName
	}
	if username != nil {
		record.Username = *username
	}
	if userEmail != nil {
		record.UserEmail = *userEmail
	}
	return record
}
