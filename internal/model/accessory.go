package model

import "time"

// Accessory is one board game accessory from the user's BGG collection.
type Accessory struct {
	BGGID         int64  `json:"bgg_id"`
	Name          string `json:"name"`
	YearPublished int    `json:"year_published"`
	Image         string `json:"image,omitempty"`
	Description   string `json:"description,omitempty"`
	Publisher     string `json:"publisher,omitempty"`

	NumPlays      int      `json:"num_plays"`
	MyRating      *float64 `json:"my_rating,omitempty"`
	AverageRating *float64 `json:"average_rating,omitempty"`
	BGGRank       *int     `json:"bgg_rank,omitempty"`

	Owned           bool `json:"owned"`
	Preordered      bool `json:"preordered"`
	Wishlist        bool `json:"wishlist"`
	WantToBuy       bool `json:"want_to_buy"`
	WantToPlay      bool `json:"want_to_play"`
	Want            bool `json:"want"`
	ForTrade        bool `json:"for_trade"`
	PreviouslyOwned bool `json:"previously_owned"`

	// LastModified is the collection-level change marker BGG reports
	// for the item's status block.
	LastModified string `json:"last_modified,omitempty"`

	LastSyncedAt time.Time `json:"last_synced_at"`
}
