package domain

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Album positions are zero-based list indexes. Creation appends at the current
// album count; deletion leaves a gap until the next reorder.
type Album struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID        uuid.UUID `json:"-" gorm:"type:uuid;not null;index"`
	Title         string    `json:"title" gorm:"size:200;not null"`
	Artist        string    `json:"artist" gorm:"size:200;not null"`
	Year          *int      `json:"year"`
	CoverURL      *string   `json:"cover_url"`
	SpotifyURL    *string   `json:"spotify_url"`
	AppleMusicURL *string   `json:"apple_music_url"`
	TidalURL      *string   `json:"tidal_url"`
	Position      int       `json:"position" gorm:"not null;default:0"`
	CreatedAt     time.Time `json:"created_at"`
}

type AlbumInput struct {
	Title         string  `json:"title" validate:"required,max=200"`
	Artist        string  `json:"artist" validate:"required,max=200"`
	Year          *int    `json:"year" validate:"omitempty,gte=0,lte=9999"`
	CoverURL      *string `json:"cover_url"`
	SpotifyURL    *string `json:"spotify_url"`
	AppleMusicURL *string `json:"apple_music_url"`
	TidalURL      *string `json:"tidal_url"`
}

// Validate expects Title and Artist already trimmed.
func (in AlbumInput) Validate() error {
	return Validate(in)
}

// Optional distinguishes a field the caller left out from one explicitly set,
// including an explicit JSON null.
type Optional[T any] struct {
	Set   bool
	Value *T
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// AlbumPatch carries a partial update. Only fields with Set are written.
type AlbumPatch struct {
	Title         Optional[string] `json:"title"`
	Artist        Optional[string] `json:"artist"`
	Year          Optional[int]    `json:"year"`
	CoverURL      Optional[string] `json:"cover_url"`
	SpotifyURL    Optional[string] `json:"spotify_url"`
	AppleMusicURL Optional[string] `json:"apple_music_url"`
	TidalURL      Optional[string] `json:"tidal_url"`
}

// Validate applies the AlbumInput rules to the fields present. Title and
// Artist may not be cleared; the other fields accept an explicit null.
func (p AlbumPatch) Validate() error {
	if err := validateText("Title", p.Title); err != nil {
		return err
	}
	if err := validateText("Artist", p.Artist); err != nil {
		return err
	}
	if p.Year.Set && p.Year.Value != nil {
		return validateValue("Year", *p.Year.Value, "gte=0,lte=9999")
	}
	return nil
}

func validateText(field string, o Optional[string]) error {
	if !o.Set {
		return nil
	}
	value := ""
	if o.Value != nil {
		value = strings.TrimSpace(*o.Value)
	}
	return validateValue(field, value, "required,max=200")
}

// Columns returns the column updates for the fields present in the patch.
func (p AlbumPatch) Columns() map[string]any {
	cols := make(map[string]any)
	setColumn(cols, "title", p.Title)
	setColumn(cols, "artist", p.Artist)
	setColumn(cols, "year", p.Year)
	setColumn(cols, "cover_url", p.CoverURL)
	setColumn(cols, "spotify_url", p.SpotifyURL)
	setColumn(cols, "apple_music_url", p.AppleMusicURL)
	setColumn(cols, "tidal_url", p.TidalURL)
	return cols
}

// Apply copies the present fields onto album.
func (p AlbumPatch) Apply(album *Album) {
	if p.Title.Set {
		album.Title = *p.Title.Value
	}
	if p.Artist.Set {
		album.Artist = *p.Artist.Value
	}
	if p.Year.Set {
		album.Year = p.Year.Value
	}
	if p.CoverURL.Set {
		album.CoverURL = p.CoverURL.Value
	}
	if p.SpotifyURL.Set {
		album.SpotifyURL = p.SpotifyURL.Value
	}
	if p.AppleMusicURL.Set {
		album.AppleMusicURL = p.AppleMusicURL.Value
	}
	if p.TidalURL.Set {
		album.TidalURL = p.TidalURL.Value
	}
}

func setColumn[T any](cols map[string]any, column string, o Optional[T]) {
	if !o.Set {
		return
	}
	if o.Value == nil {
		cols[column] = nil
		return
	}
	cols[column] = *o.Value
}

type ChangeKind string

const (
	ChangeCreated   ChangeKind = "created"
	ChangeUpdated   ChangeKind = "updated"
	ChangeDeleted   ChangeKind = "deleted"
	ChangeReordered ChangeKind = "reordered"
)

// CollectionChange describes a committed mutation of a user's album list.
type CollectionChange struct {
	Kind    ChangeKind `json:"kind"`
	AlbumID *uuid.UUID `json:"album_id,omitempty"`
}
