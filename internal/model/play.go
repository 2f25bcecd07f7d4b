package model

import "time"

// Play is one logged play from the user's BGG play history. Plays come from
// the authenticated geekplay endpoint and are keyed by their own play id,
// not by the game id.
type Play struct {
	PlayID     int64  `json:"play_id"`
	ObjectID   int64  `json:"object_id"`
	UserID     int64  `json:"user_id"`
	ObjectType string `json:"object_type,omitempty"`
	GameName   string `json:"game_name,omitempty"`

	PlayDate   string `json:"play_date,omitempty"`
	Timestamp  string `json:"tstamp,omitempty"`
	Quantity   int    `json:"quantity"`
	Length     int    `json:"length"`
	Location   string `json:"location,omitempty"`
	NumPlayers int    `json:"num_players"`

	Comments   string `json:"comments,omitempty"`
	Incomplete bool   `json:"incomplete"`
	NowInStats bool   `json:"now_in_stats"`
	WinState   string `json:"win_state,omitempty"`
	Online     bool   `json:"online"`

	LastSyncedAt time.Time `json:"last_synced_at"`
}
