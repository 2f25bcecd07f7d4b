package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"bgg-mirror-api/internal/config"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/lib/pq"              // PostgreSQL driver
	_ "modernc.org/sqlite"             // Pure Go SQLite driver - no CGO required
)

// dialect selects placeholder style and upsert syntax per backend.
type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
	dialectMySQL
)

// DB is the durable store handle shared by all repositories.
type DB struct {
	*sql.DB
	dialect dialect
}

// Open connects to the durable store selected by cfg.Type, applies pool
// settings, and creates the schema if needed.
func Open(cfg config.DatabaseConfig) (*DB, error) {
	var (
		db  *sql.DB
		d   dialect
		err error
	)

	switch cfg.Type {
	case "postgres", "postgresql":
		d = dialectPostgres
		db, err = sql.Open("postgres", cfg.PostgresDSN())
		if err == nil {
			db.SetMaxOpenConns(25)
			db.SetMaxIdleConns(10)
			db.SetConnMaxLifetime(5 * time.Minute)
		}
	case "mysql":
		d = dialectMySQL
		db, err = sql.Open("mysql", cfg.MySQLDSN())
		if err == nil {
			db.SetMaxOpenConns(10)
			db.SetMaxIdleConns(5)
			db.SetConnMaxLifetime(5 * time.Minute)
		}
	default: // sqlite
		d = dialectSQLite
		dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", cfg.Path)
		db, err = sql.Open("sqlite", dsn)
		if err == nil {
			db.SetMaxOpenConns(1) // SQLite only supports 1 writer
			db.SetMaxIdleConns(1)
			db.SetConnMaxLifetime(0)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	wrapped := &DB{DB: db, dialect: d}
	if err := wrapped.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[Repository] Initialized %s durable store", cfg.Type)
	return wrapped, nil
}

// tsType returns the timestamp column type for the dialect.
func (d dialect) tsType() string {
	switch d {
	case dialectPostgres:
		return "TIMESTAMPTZ"
	case dialectMySQL:
		return "DATETIME"
	default:
		return "DATETIME"
	}
}

// createTables creates one table per entity kind.
func (db *DB) createTables() error {
	ts := db.dialect.tsType()

	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS bgg_games (
			bgg_id BIGINT PRIMARY KEY,
			title TEXT NOT NULL,
			original_title TEXT,
			year_published INTEGER NOT NULL DEFAULT 0,
			image TEXT,
			thumbnail TEXT,
			description TEXT,
			game_type TEXT,
			num_plays INTEGER NOT NULL DEFAULT 0,
			my_rating REAL,
			average_rating REAL,
			bgg_rank INTEGER,
			status_owned BOOLEAN NOT NULL DEFAULT FALSE,
			status_preordered BOOLEAN NOT NULL DEFAULT FALSE,
			status_wishlist BOOLEAN NOT NULL DEFAULT FALSE,
			status_fortrade BOOLEAN NOT NULL DEFAULT FALSE,
			status_prevowned BOOLEAN NOT NULL DEFAULT FALSE,
			status_wanttoplay BOOLEAN NOT NULL DEFAULT FALSE,
			status_wanttobuy BOOLEAN NOT NULL DEFAULT FALSE,
			status_wishlist_priority INTEGER NOT NULL DEFAULT 0,
			mechanics TEXT,
			designers TEXT,
			artists TEXT,
			min_players INTEGER NOT NULL DEFAULT 0,
			max_players INTEGER NOT NULL DEFAULT 0,
			min_playtime INTEGER NOT NULL DEFAULT 0,
			max_playtime INTEGER NOT NULL DEFAULT 0,
			play_time INTEGER NOT NULL DEFAULT 0,
			min_age INTEGER NOT NULL DEFAULT 0,
			weight REAL,
			last_synced_at %s NOT NULL
		)`, ts),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS bgg_accessories (
			bgg_id BIGINT PRIMARY KEY,
			name TEXT NOT NULL,
			year_published INTEGER NOT NULL DEFAULT 0,
			image TEXT,
			description TEXT,
			publisher TEXT,
			num_plays INTEGER NOT NULL DEFAULT 0,
			my_rating REAL,
			average_rating REAL,
			bgg_rank INTEGER,
			owned BOOLEAN NOT NULL DEFAULT FALSE,
			preordered BOOLEAN NOT NULL DEFAULT FALSE,
			wishlist BOOLEAN NOT NULL DEFAULT FALSE,
			want_to_buy BOOLEAN NOT NULL DEFAULT FALSE,
			want_to_play BOOLEAN NOT NULL DEFAULT FALSE,
			want BOOLEAN NOT NULL DEFAULT FALSE,
			for_trade BOOLEAN NOT NULL DEFAULT FALSE,
			previously_owned BOOLEAN NOT NULL DEFAULT FALSE,
			last_modified TEXT,
			last_synced_at %s NOT NULL
		)`, ts),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS bgg_hot_games (
			bgg_id BIGINT PRIMARY KEY,
			hot_rank INTEGER NOT NULL DEFAULT 0,
			name TEXT NOT NULL,
			year_published INTEGER NOT NULL DEFAULT 0,
			thumbnail TEXT,
			bgg_url TEXT,
			description TEXT,
			game_type TEXT,
			mechanics TEXT,
			designers TEXT,
			artists TEXT,
			min_players INTEGER NOT NULL DEFAULT 0,
			max_players INTEGER NOT NULL DEFAULT 0,
			min_playtime INTEGER NOT NULL DEFAULT 0,
			max_playtime INTEGER NOT NULL DEFAULT 0,
			play_time INTEGER NOT NULL DEFAULT 0,
			min_age INTEGER NOT NULL DEFAULT 0,
			weight REAL,
			average_rating REAL,
			bgg_rank INTEGER,
			last_synced_at %s NOT NULL
		)`, ts),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS bgg_hot_persons (
			bgg_id BIGINT PRIMARY KEY,
			hot_rank INTEGER NOT NULL DEFAULT 0,
			name TEXT NOT NULL,
			thumbnail TEXT,
			bgg_url TEXT,
			last_synced_at %s NOT NULL
		)`, ts),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS bgg_plays (
			play_id BIGINT PRIMARY KEY,
			object_id BIGINT NOT NULL,
			user_id BIGINT NOT NULL DEFAULT 0,
			object_type TEXT,
			game_name TEXT,
			play_date TEXT,
			tstamp TEXT,
			quantity INTEGER NOT NULL DEFAULT 0,
			play_length INTEGER NOT NULL DEFAULT 0,
			location TEXT,
			num_players INTEGER NOT NULL DEFAULT 0,
			comments TEXT,
			incomplete BOOLEAN NOT NULL DEFAULT FALSE,
			now_in_stats BOOLEAN NOT NULL DEFAULT FALSE,
			win_state TEXT,
			online BOOLEAN NOT NULL DEFAULT FALSE,
			last_synced_at %s NOT NULL
		)`, ts),
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// rebind converts ?-style placeholders to the dialect's style.
func (d dialect) rebind(query string) string {
	if d != dialectPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// upsertQuery builds an insert-or-replace statement for the dialect. cols
// must start with the primary key column; every other column is rewritten
// on conflict.
func upsertQuery(d dialect, table string, cols []string) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), placeholders)

	updates := make([]string, 0, len(cols)-1)
	switch d {
	case dialectMySQL:
		for _, col := range cols[1:] {
			updates = append(updates, fmt.Sprintf("%s = VALUES(%s)", col, col))
		}
		return d.rebind(fmt.Sprintf("%s ON DUPLICATE KEY UPDATE %s", insert, strings.Join(updates, ", ")))
	default:
		for _, col := range cols[1:] {
			updates = append(updates, fmt.Sprintf("%s = excluded.%s", col, col))
		}
		return d.rebind(fmt.Sprintf("%s ON CONFLICT (%s) DO UPDATE SET %s", insert, cols[0], strings.Join(updates, ", ")))
	}
}

// joinColumns renders a column list for SELECT statements.
func joinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}

// marshalList encodes a string list for a TEXT column.
func marshalList(v []string) string {
	if len(v) == 0 {
		return "[]"
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// unmarshalList decodes a TEXT column back into a string list.
func unmarshalList(s string) []string {
	if s == "" || s == "[]" {
		return nil
	}
	var v []string
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil
	}
	return v
}

// nullFloat converts a nullable column value to the model's pointer form.
func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// nullInt converts a nullable column value to the model's pointer form.
func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

// floatArg converts a model pointer to a bindable nullable value.
func floatArg(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

// intArg converts a model pointer to a bindable nullable value.
func intArg(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

// statsQuery reads the row count and newest sync timestamp of a table.
func statsQuery(ctx context.Context, db *DB, table string) (int64, *time.Time, error) {
	var count int64
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
		return 0, nil, fmt.Errorf("failed to count %s: %w", table, err)
	}

	var last sql.NullTime
	if err := db.QueryRowContext(ctx, "SELECT MAX(last_synced_at) FROM "+table).Scan(&last); err != nil {
		return count, nil, nil
	}
	if !last.Valid {
		return count, nil, nil
	}
	t := last.Time
	return count, &t, nil
}
