package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// IdentityStrategy decides how a new video row gets its primary key. It is
// fixed per deployment at configuration time; the two strategies correspond
// to an integer BIGSERIAL-style column versus an application-generated
// string key column.
type IdentityStrategy string

const (
	IdentitySerial    IdentityStrategy = "serial"
	IdentityGenerated IdentityStrategy = "generated"
)

func ParseIdentityStrategy(raw string) (IdentityStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(IdentitySerial):
		return IdentitySerial, nil
	case string(IdentityGenerated):
		return IdentityGenerated, nil
	default:
		return "", fmt.Errorf("unknown video id strategy %q (want %q or %q)", raw, IdentitySerial, IdentityGenerated)
	}
}

// VideoID carries either a database-assigned integer or a generated string
// key, depending on the deployment's identity strategy. It marshals as a
// JSON number in the serial case and as a string in the generated case, so
// the wire shape matches the underlying schema.
type VideoID struct {
	Serial int64
	Key    string
}

func SerialID(n int64) VideoID { return VideoID{Serial: n} }
func KeyedID(key string) VideoID { return VideoID{Key: key} }

func (id VideoID) IsZero() bool { return id.Serial == 0 && id.Key == "" }

func (id VideoID) String() string {
	if id.Key != "" {
		return id.Key
	}
	return strconv.FormatInt(id.Serial, 10)
}

func (id VideoID) MarshalJSON() ([]byte, error) {
	if id.Key != "" {
		return json.Marshal(id.Key)
	}
	return json.Marshal(id.Serial)
}

func (id *VideoID) UnmarshalJSON(data []byte) error {
	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		*id = SerialID(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*id = KeyedID(s)
	return nil
}

// VideoFields holds everything but the primary key, shared by both identity
// strategies. The table shape is identical either way; only the id column
// type differs.
type VideoFields struct {
	Title     string         `gorm:"size:200;not null;column:title" json:"title"`
	ThemeID   int64          `gorm:"not null;index;column:theme_id" json:"theme_id"`
	UserID    *int64         `gorm:"index;column:user_id" json:"user_id,omitempty"`
	VideoURL  string         `gorm:"not null;column:video_url" json:"video_url"`
	Duration  float64        `gorm:"not null;column:duration" json:"duration"`
	SizeMB    float64        `gorm:"not null;column:size_mb" json:"size_mb"`
	ProbeInfo datatypes.JSON `gorm:"column:probe_info;type:jsonb" json:"probe_info,omitempty"`
	CreatedAt time.Time      `gorm:"not null;column:created_at" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;column:updated_at" json:"updated_at"`
}

// Video is the serial-identity row shape.
type Video struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	VideoFields
}

func (Video) TableName() string { return "videos" }

// KeyedVideo is the generated-identity row shape, mapped onto the same
// table. A deployment migrates exactly one of the two.
type KeyedVideo struct {
	ID string `gorm:"primaryKey;size:64" json:"id"`
	VideoFields
}

func (KeyedVideo) TableName() string { return "videos" }

// VideoRecord is the joined read model returned by the record store: the row
// plus theme and owner display columns (left-joined, so either may be empty)
// and the rating aggregate attached on detail reads.
type VideoRecord struct {
	ID VideoID `json:"id"`
	VideoFields
	ThemeName     string  `json:"theme_name,omitempty"`
	Username      string  `json:"username,omitempty"`
	UserEmail     string  `json:"user_email,omitempty"`
	RatingAverage float64 `json:"rating_average"`
	RatingCount   int64   `json:"rating_count"`
}
