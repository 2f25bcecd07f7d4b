package model

import "time"

// Game is one board game from the user's BGG collection, combining
// collection-level status fields with detail fields from the thing endpoint.
type Game struct {
	BGGID         int64   `json:"bgg_id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title,omitempty"`
	YearPublished int     `json:"year_published"`
	Image         string  `json:"image,omitempty"`
	Thumbnail     string  `json:"thumbnail,omitempty"`
	Description   string  `json:"description,omitempty"`
	Type          string  `json:"type,omitempty"`

	NumPlays      int      `json:"num_plays"`
	MyRating      *float64 `json:"my_rating,omitempty"`
	AverageRating *float64 `json:"average_rating,omitempty"`
	BGGRank       *int     `json:"bgg_rank,omitempty"`

	StatusOwned            bool `json:"status_owned"`
	StatusPreordered       bool `json:"status_preordered"`
	StatusWishlist         bool `json:"status_wishlist"`
	StatusForTrade         bool `json:"status_fortrade"`
	StatusPrevOwned        bool `json:"status_prevowned"`
	StatusWantToPlay       bool `json:"status_wanttoplay"`
	StatusWantToBuy        bool `json:"status_wanttobuy"`
	StatusWishlistPriority int  `json:"status_wishlist_priority"`

	Mechanics []string `json:"mechanics,omitempty"`
	Designers []string `json:"designers,omitempty"`
	Artists   []string `json:"artists,omitempty"`

	MinPlayers  int      `json:"min_players"`
	MaxPlayers  int      `json:"max_players"`
	MinPlaytime int      `json:"min_playtime"`
	MaxPlaytime int      `json:"max_playtime"`
	PlayTime    int      `json:"play_time"`
	MinAge      int      `json:"min_age"`
	Weight      *float64 `json:"weight,omitempty"`

	LastSyncedAt time.Time `json:"last_synced_at"`
}
