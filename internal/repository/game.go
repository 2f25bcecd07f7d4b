package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bgg-mirror-api/internal/model"
)

var gameColumns = []string{
	"bgg_id", "title", "original_title", "year_published", "image", "thumbnail",
	"description", "game_type", "num_plays", "my_rating", "average_rating",
	"bgg_rank", "status_owned", "status_preordered", "status_wishlist",
	"status_fortrade", "status_prevowned", "status_wanttoplay",
	"status_wanttobuy", "status_wishlist_priority", "mechanics", "designers",
	"artists", "min_players", "max_players", "min_playtime", "max_playtime",
	"play_time", "min_age", "weight", "last_synced_at",
}

// SQLGameRepository implements GameRepository over the shared durable store.
type SQLGameRepository struct {
	db *DB
}

// NewGameRepository creates a new game repository.
func NewGameRepository(db *DB) *SQLGameRepository {
	return &SQLGameRepository{db: db}
}

// Upsert inserts or fully replaces a game keyed by its BGG id.
func (r *SQLGameRepository) Upsert(ctx context.Context, g *model.Game) error {
	query := upsertQuery(r.db.dialect, "bgg_games", gameColumns)

	_, err := r.db.ExecContext(ctx, query,
		g.BGGID, g.Title, g.OriginalTitle, g.YearPublished, g.Image, g.Thumbnail,
		g.Description, g.Type, g.NumPlays, floatArg(g.MyRating), floatArg(g.AverageRating),
		intArg(g.BGGRank), g.StatusOwned, g.StatusPreordered, g.StatusWishlist,
		g.StatusForTrade, g.StatusPrevOwned, g.StatusWantToPlay,
		g.StatusWantToBuy, g.StatusWishlistPriority, marshalList(g.Mechanics),
		marshalList(g.Designers), marshalList(g.Artists), g.MinPlayers, g.MaxPlayers,
		g.MinPlaytime, g.MaxPlaytime, g.PlayTime, g.MinAge, floatArg(g.Weight),
		g.LastSyncedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert game %d: %w", g.BGGID, err)
	}
	return nil
}

// Touch advances last_synced_at without rewriting any other field.
func (r *SQLGameRepository) Touch(ctx context.Context, bggID int64, syncedAt time.Time) error {
	query := r.db.dialect.rebind("UPDATE bgg_games SET last_synced_at = ? WHERE bgg_id = ?")
	if _, err := r.db.ExecContext(ctx, query, syncedAt, bggID); err != nil {
		return fmt.Errorf("failed to touch game %d: %w", bggID, err)
	}
	return nil
}

// List returns persisted games ordered by title.
func (r *SQLGameRepository) List(ctx context.Context, limit, offset int) ([]model.Game, error) {
	query := r.db.dialect.rebind(
		"SELECT " + joinColumns(gameColumns) + " FROM bgg_games ORDER BY title LIMIT ? OFFSET ?")

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	var games []model.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, *g)
	}
	return games, rows.Err()
}

// IDs returns all persisted BGG ids.
func (r *SQLGameRepository) IDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT bgg_id FROM bgg_games ORDER BY bgg_id")
	if err != nil {
		return nil, fmt.Errorf("failed to list game ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// PlayedIDs returns the BGG ids of games with at least one logged play.
func (r *SQLGameRepository) PlayedIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT bgg_id FROM bgg_games WHERE num_plays > 0 ORDER BY bgg_id")
	if err != nil {
		return nil, fmt.Errorf("failed to list played game ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Stats returns the row count and the most recent last_synced_at.
func (r *SQLGameRepository) Stats(ctx context.Context) (int64, *time.Time, error) {
	return statsQuery(ctx, r.db, "bgg_games")
}

func scanGame(rows *sql.Rows) (*model.Game, error) {
	var (
		g                             model.Game
		origTitle, image, thumb       sql.NullString
		desc, gameType                sql.NullString
		myRating, avgRating, weight   sql.NullFloat64
		bggRank                       sql.NullInt64
		mechanics, designers, artists sql.NullString
	)

	err := rows.Scan(
		&g.BGGID, &g.Title, &origTitle, &g.YearPublished, &image, &thumb,
		&desc, &gameType, &g.NumPlays, &myRating, &avgRating,
		&bggRank, &g.StatusOwned, &g.StatusPreordered, &g.StatusWishlist,
		&g.StatusForTrade, &g.StatusPrevOwned, &g.StatusWantToPlay,
		&g.StatusWantToBuy, &g.StatusWishlistPriority, &mechanics,
		&designers, &artists, &g.MinPlayers, &g.MaxPlayers, &g.MinPlaytime,
		&g.MaxPlaytime, &g.PlayTime, &g.MinAge, &weight, &g.LastSyncedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan game: %w", err)
	}

	g.OriginalTitle = origTitle.String
	g.Image = image.String
	g.Thumbnail = thumb.String
	g.Description = desc.String
	g.Type = gameType.String
	g.MyRating = nullFloat(myRating)
	g.AverageRating = nullFloat(avgRating)
	g.Weight = nullFloat(weight)
	g.BGGRank = nullInt(bggRank)
	g.Mechanics = unmarshalList(mechanics.String)
	g.Designers = unmarshalList(designers.String)
	g.Artists = unmarshalList(artists.String)
	return &g, nil
}

// Ensure SQLGameRepository implements GameRepository
var _ GameRepository = (*SQLGameRepository)(nil)
