package storage

import (
	"context"
	"time"

	"curator/internal/asset"
)

// Storage persists assets and hands back string identifiers. Identifiers are
// decimal, start at 1, grow monotonically, and are never reused, so callers
// can rely on them as stable references even across removals.
type Storage interface {
	Add(ctx context.Context, a *asset.Asset) (string, error)
	Remove(ctx context.Context, a *asset.Asset) error
	Contains(ctx context.Context, a *asset.Asset) (bool, error)
	Assets(ctx context.Context) ([]*asset.Asset, error)
}

// Filter selects assets by attribute equality. Zero fields are ignored;
// every set field must match.
type Filter struct {
	MIMEType string
	Width    int
	Height   int
	Duration time.Duration
	Artist   string
	Title    string
	Album    string
}

func (f Filter) matches(attrs asset.Attributes) bool {
	if f.MIMEType != "" && attrs.MIMEType != f.MIMEType {
		return false
	}
	if f.Width != 0 && attrs.Width != f.Width {
		return false
	}
	if f.Height != 0 && attrs.Height != f.Height {
		return false
	}
	if f.Duration != 0 && attrs.Duration != f.Duration {
		return false
	}
	if f.Artist != "" && attrs.Artist != f.Artist {
		return false
	}
	if f.Title != "" && attrs.Title != f.Title {
		return false
	}
	if f.Album != "" && attrs.Album != f.Album {
		return false
	}
	return true
}

// Entry summarizes a stored asset for listings.
type Entry struct {
	ID        string
	MIMEType  string
	Size      int64
	CreatedAt time.Time
}
