package model

import "time"

// HotGame is one entry of the BGG Hotness board game ranking.
type HotGame struct {
	BGGID         int64  `json:"bgg_id"`
	Rank          int    `json:"rank"`
	Name          string `json:"name"`
	YearPublished int    `json:"year_published"`
	Thumbnail     string `json:"thumbnail,omitempty"`
	BGGURL        string `json:"bgg_url"`

	Description string   `json:"description,omitempty"`
	Type        string   `json:"type,omitempty"`
	Mechanics   []string `json:"mechanics,omitempty"`
	Designers   []string `json:"designers,omitempty"`
	Artists     []string `json:"artists,omitempty"`

	MinPlayers  int      `json:"min_players"`
	MaxPlayers  int      `json:"max_players"`
	MinPlaytime int      `json:"min_playtime"`
	MaxPlaytime int      `json:"max_playtime"`
	PlayTime    int      `json:"play_time"`
	MinAge      int      `json:"min_age"`
	Weight      *float64 `json:"weight,omitempty"`

	AverageRating *float64 `json:"average_rating,omitempty"`
	BGGRank       *int     `json:"bgg_rank,omitempty"`

	LastSyncedAt time.Time `json:"last_synced_at"`
}

// HotPerson is one entry of the BGG Hotness person ranking. The hot list is
// the only upstream source for persons, so there are no detail fields.
type HotPerson struct {
	BGGID     int64  `json:"bgg_id"`
	Rank      int    `json:"rank"`
	Name      string `json:"name"`
	Thumbnail string `json:"thumbnail,omitempty"`
	BGGURL    string `json:"bgg_url"`

	LastSyncedAt time.Time `json:"last_synced_at"`
}
