package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bgg-mirror-api/internal/model"
)

var accessoryColumns = []string{
	"bgg_id", "name", "year_published", "image", "description", "publisher",
	"num_plays", "my_rating", "average_rating", "bgg_rank", "owned",
	"preordered", "wishlist", "want_to_buy", "want_to_play", "want",
	"for_trade", "previously_owned", "last_modified", "last_synced_at",
}

// SQLAccessoryRepository implements AccessoryRepository over the shared
// durable store.
type SQLAccessoryRepository struct {
	db *DB
}

// NewAccessoryRepository creates a new accessory repository.
func NewAccessoryRepository(db *DB) *SQLAccessoryRepository {
	return &SQLAccessoryRepository{db: db}
}

// Upsert inserts or fully replaces an accessory keyed by its BGG id.
func (r *SQLAccessoryRepository) Upsert(ctx context.Context, a *model.Accessory) error {
	query := upsertQuery(r.db.dialect, "bgg_accessories", accessoryColumns)

	_, err := r.db.ExecContext(ctx, query,
		a.BGGID, a.Name, a.YearPublished, a.Image, a.Description, a.Publisher,
		a.NumPlays, floatArg(a.MyRating), floatArg(a.AverageRating), intArg(a.BGGRank),
		a.Owned, a.Preordered, a.Wishlist, a.WantToBuy, a.WantToPlay, a.Want,
		a.ForTrade, a.PreviouslyOwned, a.LastModified, a.LastSyncedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert accessory %d: %w", a.BGGID, err)
	}
	return nil
}

// Touch advances last_synced_at without rewriting any other field.
func (r *SQLAccessoryRepository) Touch(ctx context.Context, bggID int64, syncedAt time.Time) error {
	query := r.db.dialect.rebind("UPDATE bgg_accessories SET last_synced_at = ? WHERE bgg_id = ?")
	if _, err := r.db.ExecContext(ctx, query, syncedAt, bggID); err != nil {
		return fmt.Errorf("failed to touch accessory %d: %w", bggID, err)
	}
	return nil
}

// List returns persisted accessories ordered by name.
func (r *SQLAccessoryRepository) List(ctx context.Context, limit, offset int) ([]model.Accessory, error) {
	query := r.db.dialect.rebind(
		"SELECT " + joinColumns(accessoryColumns) + " FROM bgg_accessories ORDER BY name LIMIT ? OFFSET ?")

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list accessories: %w", err)
	}
	defer rows.Close()

	var accessories []model.Accessory
	for rows.Next() {
		var (
			a                   model.Accessory
			image, desc, pub    sql.NullString
			lastMod             sql.NullString
			myRating, avgRating sql.NullFloat64
			bggRank             sql.NullInt64
		)
		err := rows.Scan(
			&a.BGGID, &a.Name, &a.YearPublished, &image, &desc, &pub,
			&a.NumPlays, &myRating, &avgRating, &bggRank, &a.Owned,
			&a.Preordered, &a.Wishlist, &a.WantToBuy, &a.WantToPlay, &a.Want,
			&a.ForTrade, &a.PreviouslyOwned, &lastMod, &a.LastSyncedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan accessory: %w", err)
		}
		a.Image = image.String
		a.Description = desc.String
		a.Publisher = pub.String
		a.LastModified = lastMod.String
		a.MyRating = nullFloat(myRating)
		a.AverageRating = nullFloat(avgRating)
		a.BGGRank = nullInt(bggRank)
		accessories = append(accessories, a)
	}
	return accessories, rows.Err()
}

// Stats returns the row count and the most recent last_synced_at.
func (r *SQLAccessoryRepository) Stats(ctx context.Context) (int64, *time.Time, error) {
	return statsQuery(ctx, r.db, "bgg_accessories")
}

// Ensure SQLAccessoryRepository implements AccessoryRepository
var _ AccessoryRepository = (*SQLAccessoryRepository)(nil)
