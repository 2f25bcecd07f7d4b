package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bgg-mirror-api/internal/model"
)

var hotGameColumns = []string{
	"bgg_id", "hot_rank", "name", "year_published", "thumbnail", "bgg_url",
	"description", "game_type", "mechanics", "designers", "artists",
	"min_players", "max_players", "min_playtime", "max_playtime", "play_time",
	"min_age", "weight", "average_rating", "bgg_rank", "last_synced_at",
}

var hotPersonColumns = []string{
	"bgg_id", "hot_rank", "name", "thumbnail", "bgg_url", "last_synced_at",
}

// SQLHotGameRepository implements HotGameRepository over the shared durable
// store.
type SQLHotGameRepository struct {
	db *DB
}

// NewHotGameRepository creates a new Hotness game repository.
func NewHotGameRepository(db *DB) *SQLHotGameRepository {
	return &SQLHotGameRepository{db: db}
}

// Upsert inserts or fully replaces a Hotness game keyed by its BGG id.
func (r *SQLHotGameRepository) Upsert(ctx context.Context, h *model.HotGame) error {
	query := upsertQuery(r.db.dialect, "bgg_hot_games", hotGameColumns)

	_, err := r.db.ExecContext(ctx, query,
		h.BGGID, h.Rank, h.Name, h.YearPublished, h.Thumbnail, h.BGGURL,
		h.Description, h.Type, marshalList(h.Mechanics), marshalList(h.Designers),
		marshalList(h.Artists), h.MinPlayers, h.MaxPlayers, h.MinPlaytime,
		h.MaxPlaytime, h.PlayTime, h.MinAge, floatArg(h.Weight),
		floatArg(h.AverageRating), intArg(h.BGGRank), h.LastSyncedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert hot game %d: %w", h.BGGID, err)
	}
	return nil
}

// Touch advances last_synced_at without rewriting any other field.
func (r *SQLHotGameRepository) Touch(ctx context.Context, bggID int64, syncedAt time.Time) error {
	query := r.db.dialect.rebind("UPDATE bgg_hot_games SET last_synced_at = ? WHERE bgg_id = ?")
	if _, err := r.db.ExecContext(ctx, query, syncedAt, bggID); err != nil {
		return fmt.Errorf("failed to touch hot game %d: %w", bggID, err)
	}
	return nil
}

// List returns persisted Hotness games ordered by rank.
func (r *SQLHotGameRepository) List(ctx context.Context, limit, offset int) ([]model.HotGame, error) {
	query := r.db.dialect.rebind(
		"SELECT " + joinColumns(hotGameColumns) + " FROM bgg_hot_games ORDER BY hot_rank LIMIT ? OFFSET ?")

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list hot games: %w", err)
	}
	defer rows.Close()

	var hotGames []model.HotGame
	for rows.Next() {
		var (
			h                             model.HotGame
			thumb, bggURL, desc, gameType sql.NullString
			mechanics, designers, artists sql.NullString
			weight, avgRating             sql.NullFloat64
			bggRank                       sql.NullInt64
		)
		err := rows.Scan(
			&h.BGGID, &h.Rank, &h.Name, &h.YearPublished, &thumb, &bggURL,
			&desc, &gameType, &mechanics, &designers, &artists,
			&h.MinPlayers, &h.MaxPlayers, &h.MinPlaytime, &h.MaxPlaytime,
			&h.PlayTime, &h.MinAge, &weight, &avgRating, &bggRank, &h.LastSyncedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan hot game: %w", err)
		}
		h.Thumbnail = thumb.String
		h.BGGURL = bggURL.String
		h.Description = desc.String
		h.Type = gameType.String
		h.Mechanics = unmarshalList(mechanics.String)
		h.Designers = unmarshalList(designers.String)
		h.Artists = unmarshalList(artists.String)
		h.Weight = nullFloat(weight)
		h.AverageRating = nullFloat(avgRating)
		h.BGGRank = nullInt(bggRank)
		hotGames = append(hotGames, h)
	}
	return hotGames, rows.Err()
}

// Stats returns the row count and the most recent last_synced_at.
func (r *SQLHotGameRepository) Stats(ctx context.Context) (int64, *time.Time, error) {
	return statsQuery(ctx, r.db, "bgg_hot_games")
}

// SQLHotPersonRepository implements HotPersonRepository over the shared
// durable store.
type SQLHotPersonRepository struct {
	db *DB
}

// NewHotPersonRepository creates a new Hotness person repository.
func NewHotPersonRepository(db *DB) *SQLHotPersonRepository {
	return &SQLHotPersonRepository{db: db}
}

// Upsert inserts or fully replaces a Hotness person keyed by its BGG id.
func (r *SQLHotPersonRepository) Upsert(ctx context.Context, h *model.HotPerson) error {
	query := upsertQuery(r.db.dialect, "bgg_hot_persons", hotPersonColumns)

	_, err := r.db.ExecContext(ctx, query,
		h.BGGID, h.Rank, h.Name, h.Thumbnail, h.BGGURL, h.LastSyncedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert hot person %d: %w", h.BGGID, err)
	}
	return nil
}

// Touch advances last_synced_at without rewriting any other field.
func (r *SQLHotPersonRepository) Touch(ctx context.Context, bggID int64, syncedAt time.Time) error {
	query := r.db.dialect.rebind("UPDATE bgg_hot_persons SET last_synced_at = ? WHERE bgg_id = ?")
	if _, err := r.db.ExecContext(ctx, query, syncedAt, bggID); err != nil {
		return fmt.Errorf("failed to touch hot person %d: %w", bggID, err)
	}
	return nil
}

// List returns persisted Hotness persons ordered by rank.
func (r *SQLHotPersonRepository) List(ctx context.Context, limit, offset int) ([]model.HotPerson, error) {
	query := r.db.dialect.rebind(
		"SELECT " + joinColumns(hotPersonColumns) + " FROM bgg_hot_persons ORDER BY hot_rank LIMIT ? OFFSET ?")

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list hot persons: %w", err)
	}
	defer rows.Close()

	var persons []model.HotPerson
	for rows.Next() {
		var (
			h             model.HotPerson
			thumb, bggURL sql.NullString
		)
		err := rows.Scan(&h.BGGID, &h.Rank, &h.Name, &thumb, &bggURL, &h.LastSyncedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan hot person: %w", err)
		}
		h.Thumbnail = thumb.String
		h.BGGURL = bggURL.String
		persons = append(persons, h)
	}
	return persons, rows.Err()
}

// Stats returns the row count and the most recent last_synced_at.
func (r *SQLHotPersonRepository) Stats(ctx context.Context) (int64, *time.Time, error) {
	return statsQuery(ctx, r.db, "bgg_hot_persons")
}

// Ensure repositories implement their interfaces
var (
	_ HotGameRepository   = (*SQLHotGameRepository)(nil)
	_ HotPersonRepository = (*SQLHotPersonRepository)(nil)
)
