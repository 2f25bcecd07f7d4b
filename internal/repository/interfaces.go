package repository

import (
	"context"
	"time"

	"bgg-mirror-api/internal/model"
)

// GameRepository defines collection game data access methods.
type GameRepository interface {
	// Upsert inserts or fully replaces a game keyed by its BGG id.
	Upsert(ctx context.Context, g *model.Game) error

	// Touch advances last_synced_at without rewriting any other field.
	Touch(ctx context.Context, bggID int64, syncedAt time.Time) error

	// List returns persisted games ordered by title.
	List(ctx context.Context, limit, offset int) ([]model.Game, error)

	// IDs returns all persisted BGG ids.
	IDs(ctx context.Context) ([]int64, error)

	// PlayedIDs returns the BGG ids of games with at least one logged play.
	PlayedIDs(ctx context.Context) ([]int64, error)

	// Stats returns the row count and the most recent last_synced_at.
	Stats(ctx context.Context) (int64, *time.Time, error)
}

// AccessoryRepository defines accessory data access methods.
type AccessoryRepository interface {
	Upsert(ctx context.Context, a *model.Accessory) error
	Touch(ctx context.Context, bggID int64, syncedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]model.Accessory, error)
	Stats(ctx context.Context) (int64, *time.Time, error)
}

// HotGameRepository defines Hotness game data access methods.
type HotGameRepository interface {
	Upsert(ctx context.Context, h *model.HotGame) error
	Touch(ctx context.Context, bggID int64, syncedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]model.HotGame, error)
	Stats(ctx context.Context) (int64, *time.Time, error)
}

// HotPersonRepository defines Hotness person data access methods.
type HotPersonRepository interface {
	Upsert(ctx context.Context, h *model.HotPerson) error
	Touch(ctx context.Context, bggID int64, syncedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]model.HotPerson, error)
	Stats(ctx context.Context) (int64, *time.Time, error)
}

// PlayRepository defines play data access methods.
type PlayRepository interface {
	Upsert(ctx context.Context, p *model.Play) error
	List(ctx context.Context, limit, offset int) ([]model.Play, error)
	Stats(ctx context.Context) (int64, *time.Time, error)
}
