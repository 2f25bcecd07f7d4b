package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bgg-mirror-api/internal/model"
)

var playColumns = []string{
	"play_id", "object_id", "user_id", "object_type", "game_name", "play_date",
	"tstamp", "quantity", "play_length", "location", "num_players", "comments",
	"incomplete", "now_in_stats", "win_state", "online", "last_synced_at",
}

// SQLPlayRepository implements PlayRepository over the shared durable store.
type SQLPlayRepository struct {
	db *DB
}

// NewPlayRepository creates a new play repository.
func NewPlayRepository(db *DB) *SQLPlayRepository {
	return &SQLPlayRepository{db: db}
}

// Upsert inserts or fully replaces a play keyed by its play id.
func (r *SQLPlayRepository) Upsert(ctx context.Context, p *model.Play) error {
	query := upsertQuery(r.db.dialect, "bgg_plays", playColumns)

	_, err := r.db.ExecContext(ctx, query,
		p.PlayID, p.ObjectID, p.UserID, p.ObjectType, p.GameName, p.PlayDate,
		p.Timestamp, p.Quantity, p.Length, p.Location, p.NumPlayers, p.Comments,
		p.Incomplete, p.NowInStats, p.WinState, p.Online, p.LastSyncedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert play %d: %w", p.PlayID, err)
	}
	return nil
}

// List returns persisted plays, newest play date first.
func (r *SQLPlayRepository) List(ctx context.Context, limit, offset int) ([]model.Play, error) {
	query := r.db.dialect.rebind(
		"SELECT " + joinColumns(playColumns) + " FROM bgg_plays ORDER BY play_date DESC, play_id DESC LIMIT ? OFFSET ?")

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list plays: %w", err)
	}
	defer rows.Close()

	var plays []model.Play
	for rows.Next() {
		var (
			p                          model.Play
			objectType, gameName       sql.NullString
			playDate, tstamp, location sql.NullString
			comments, winState         sql.NullString
		)
		err := rows.Scan(
			&p.PlayID, &p.ObjectID, &p.UserID, &objectType, &gameName, &playDate,
			&tstamp, &p.Quantity, &p.Length, &location, &p.NumPlayers, &comments,
			&p.Incomplete, &p.NowInStats, &winState, &p.Online, &p.LastSyncedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan play: %w", err)
		}
		p.ObjectType = objectType.String
		p.GameName = gameName.String
		p.PlayDate = playDate.String
		p.Timestamp = tstamp.String
		p.Location = location.String
		p.Comments = comments.String
		p.WinState = winState.String
		plays = append(plays, p)
	}
	return plays, rows.Err()
}

// Stats returns the row count and the most recent last_synced_at.
func (r *SQLPlayRepository) Stats(ctx context.Context) (int64, *time.Time, error) {
	return statsQuery(ctx, r.db, "bgg_plays")
}

// Ensure SQLPlayRepository implements PlayRepository
var _ PlayRepository = (*SQLPlayRepository)(nil)
