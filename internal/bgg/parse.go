package bgg

import (
	"encoding/json"
	"encoding/xml"
	"fmt"

	"bgg-mirror-api/pkg/convert"
)

// CollectionItem is one normalized entry of a collection listing. Its
// fields are exactly the list-level data BGG exposes, and MetaFields feeds
// the metadata fingerprint.
type CollectionItem struct {
	BGGID         int64
	Name          string
	YearPublished int
	Image         string
	Thumbnail     string
	NumPlays      int

	MyRating      *float64
	AverageRating *float64
	BGGRank       *int

	Own              bool
	Preordered       bool
	Wishlist         bool
	ForTrade         bool
	PrevOwned        bool
	WantToPlay       bool
	WantToBuy        bool
	Want             bool
	WishlistPriority int

	// LastModified is BGG's own change marker for the status block.
	LastModified string
}

// MetaFields returns the normalized map the metadata fingerprint is
// computed over.
func (i *CollectionItem) MetaFields() map[string]any {
	return map[string]any{
		"name":              i.Name,
		"year_published":    i.YearPublished,
		"image":             i.Image,
		"thumbnail":         i.Thumbnail,
		"num_plays":         i.NumPlays,
		"my_rating":         i.MyRating,
		"average_rating":    i.AverageRating,
		"bgg_rank":          i.BGGRank,
		"own":               i.Own,
		"preordered":        i.Preordered,
		"wishlist":          i.Wishlist,
		"for_trade":         i.ForTrade,
		"prev_owned":        i.PrevOwned,
		"want_to_play":      i.WantToPlay,
		"want_to_buy":       i.WantToBuy,
		"want":              i.Want,
		"wishlist_priority": i.WishlistPriority,
		"last_modified":     i.LastModified,
	}
}

// ThingDetail is the normalized detail payload of one thing (game or
// accessory). DetailFields feeds the detail fingerprint.
type ThingDetail struct {
	BGGID       int64
	Type        string
	PrimaryName string
	Description string

	Mechanics  []string
	Designers  []string
	Artists    []string
	Publishers []string

	MinPlayers  int
	MaxPlayers  int
	MinPlaytime int
	MaxPlaytime int
	PlayTime    int
	MinAge      int

	Weight        *float64
	AverageRating *float64
	BGGRank       *int
}

// DetailFields returns the normalized map the detail fingerprint is
// computed over.
func (d *ThingDetail) DetailFields() map[string]any {
	return map[string]any{
		"type":           d.Type,
		"primary_name":   d.PrimaryName,
		"description":    d.Description,
		"mechanics":      d.Mechanics,
		"designers":      d.Designers,
		"artists":        d.Artists,
		"publishers":     d.Publishers,
		"min_players":    d.MinPlayers,
		"max_players":    d.MaxPlayers,
		"min_playtime":   d.MinPlaytime,
		"max_playtime":   d.MaxPlaytime,
		"play_time":      d.PlayTime,
		"min_age":        d.MinAge,
		"weight":         d.Weight,
		"average_rating": d.AverageRating,
		"bgg_rank":       d.BGGRank,
	}
}

// HotItem is one normalized entry of a Hotness ranking (game or person).
type HotItem struct {
	BGGID         int64
	Rank          int
	Name          string
	YearPublished int
	Thumbnail     string
}

// MetaFields returns the normalized map the metadata fingerprint is
// computed over.
func (h *HotItem) MetaFields() map[string]any {
	return map[string]any{
		"rank":           h.Rank,
		"name":           h.Name,
		"year_published": h.YearPublished,
		"thumbnail":      h.Thumbnail,
	}
}

// PlayEntry is one logged play from the geekplay JSON endpoint. BGG ships
// every number as a string here.
type PlayEntry struct {
	PlayID     string          `json:"playid"`
	UserID     string          `json:"userid"`
	ObjectType string          `json:"objecttype"`
	ObjectID   string          `json:"objectid"`
	Timestamp  string          `json:"tstamp"`
	PlayDate   string          `json:"playdate"`
	Quantity   string          `json:"quantity"`
	Length     string          `json:"length"`
	Location   string          `json:"location"`
	NumPlayers string          `json:"numplayers"`
	Incomplete string          `json:"incomplete"`
	NowInStats string          `json:"nowinstats"`
	WinState   string          `json:"winstate"`
	Online     string          `json:"online"`
	Name       string          `json:"name"`
	Comments   json.RawMessage `json:"comments"`
}

// CommentText extracts the play comment, which BGG delivers either as a
// plain string or as a {"value","rendered"} object.
func (p *PlayEntry) CommentText() string {
	if len(p.Comments) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(p.Comments, &s); err == nil {
		return s
	}
	var obj struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(p.Comments, &obj); err == nil {
		return obj.Value
	}
	return ""
}

// MetaFields returns the normalized map the metadata fingerprint is
// computed over. Plays have no detail payload, so this covers everything.
func (p *PlayEntry) MetaFields() map[string]any {
	return map[string]any{
		"userid":     p.UserID,
		"objecttype": p.ObjectType,
		"objectid":   p.ObjectID,
		"tstamp":     p.Timestamp,
		"playdate":   p.PlayDate,
		"quantity":   p.Quantity,
		"length":     p.Length,
		"location":   p.Location,
		"numplayers": p.NumPlayers,
		"incomplete": p.Incomplete,
		"nowinstats": p.NowInStats,
		"winstate":   p.WinState,
		"online":     p.Online,
		"name":       p.Name,
		"comments":   p.CommentText(),
	}
}

// PlaysPage is one page of the geekplay listing.
type PlaysPage struct {
	Plays []PlayEntry `json:"plays"`
}

// ---------------------------------------------------------------------------
// XML wire types. The collection endpoint puts values in element text, the
// thing and hot endpoints in value attributes.
// ---------------------------------------------------------------------------

type collectionXML struct {
	Items []collectionItemXML `xml:"item"`
}

type collectionItemXML struct {
	ObjectID      string `xml:"objectid,attr"`
	Name          string `xml:"name"`
	YearPublished string `xml:"yearpublished"`
	Image         string `xml:"image"`
	Thumbnail     string `xml:"thumbnail"`
	NumPlays      string `xml:"numplays"`
	Stats         struct {
		Rating struct {
			Value   string `xml:"value,attr"`
			Average struct {
				Value string `xml:"value,attr"`
			} `xml:"average"`
			Ranks struct {
				Rank []struct {
					Name  string `xml:"name,attr"`
					Value string `xml:"value,attr"`
				} `xml:"rank"`
			} `xml:"ranks"`
		} `xml:"rating"`
	} `xml:"stats"`
	Status struct {
		Own              string `xml:"own,attr"`
		Preordered       string `xml:"preordered,attr"`
		Wishlist         string `xml:"wishlist,attr"`
		ForTrade         string `xml:"fortrade,attr"`
		PrevOwned        string `xml:"prevowned,attr"`
		WantToPlay       string `xml:"wanttoplay,attr"`
		WantToBuy        string `xml:"wanttobuy,attr"`
		Want             string `xml:"want,attr"`
		WishlistPriority string `xml:"wishlistpriority,attr"`
		LastModified     string `xml:"lastmodified,attr"`
	} `xml:"status"`
}

type thingXML struct {
	Items []thingItemXML `xml:"item"`
}

type thingItemXML struct {
	ID          string `xml:"id,attr"`
	Type        string `xml:"type,attr"`
	Description string `xml:"description"`
	Names       []struct {
		Type  string `xml:"type,attr"`
		Value string `xml:"value,attr"`
	} `xml:"name"`
	Links []struct {
		Type  string `xml:"type,attr"`
		Value string `xml:"value,attr"`
	} `xml:"link"`
	MinPlayers  valueAttr `xml:"minplayers"`
	MaxPlayers  valueAttr `xml:"maxplayers"`
	MinPlaytime valueAttr `xml:"minplaytime"`
	MaxPlaytime valueAttr `xml:"maxplaytime"`
	PlayingTime valueAttr `xml:"playingtime"`
	MinAge      valueAttr `xml:"minage"`
	Statistics  struct {
		Ratings struct {
			Average       valueAttr `xml:"average"`
			AverageWeight valueAttr `xml:"averageweight"`
			Ranks         struct {
				Rank []struct {
					Name  string `xml:"name,attr"`
					Value string `xml:"value,attr"`
				} `xml:"rank"`
			} `xml:"ranks"`
		} `xml:"ratings"`
	} `xml:"statistics"`
}

type hotXML struct {
	Items []hotItemXML `xml:"item"`
}

type hotItemXML struct {
	ID            string    `xml:"id,attr"`
	Rank          string    `xml:"rank,attr"`
	Name          valueAttr `xml:"name"`
	YearPublished valueAttr `xml:"yearpublished"`
	Thumbnail     valueAttr `xml:"thumbnail"`
}

type valueAttr struct {
	Value string `xml:"value,attr"`
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

func parseCollection(data []byte) ([]CollectionItem, error) {
	var doc collectionXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, &PermanentError{Err: fmt.Errorf("malformed collection XML: %w", err)}
	}

	items := make([]CollectionItem, 0, len(doc.Items))
	for _, raw := range doc.Items {
		id, ok := convert.ToInt(raw.ObjectID)
		if !ok {
			continue
		}

		item := CollectionItem{
			BGGID:        int64(id),
			Name:         raw.Name,
			Image:        raw.Image,
			Thumbnail:    raw.Thumbnail,
			Own:          convert.ToBool(raw.Status.Own),
			Preordered:   convert.ToBool(raw.Status.Preordered),
			Wishlist:     convert.ToBool(raw.Status.Wishlist),
			ForTrade:     convert.ToBool(raw.Status.ForTrade),
			PrevOwned:    convert.ToBool(raw.Status.PrevOwned),
			WantToPlay:   convert.ToBool(raw.Status.WantToPlay),
			WantToBuy:    convert.ToBool(raw.Status.WantToBuy),
			Want:         convert.ToBool(raw.Status.Want),
			LastModified: raw.Status.LastModified,
		}
		item.YearPublished, _ = convert.ToInt(raw.YearPublished)
		item.NumPlays, _ = convert.ToInt(raw.NumPlays)
		item.WishlistPriority, _ = convert.ToInt(raw.Status.WishlistPriority)

		if v, ok := convert.ToFloat(raw.Stats.Rating.Value); ok {
			item.MyRating = &v
		}
		if v, ok := convert.ToFloat(raw.Stats.Rating.Average.Value); ok {
			item.AverageRating = &v
		}
		for _, rank := range raw.Stats.Rating.Ranks.Rank {
			if rank.Name != "boardgame" {
				continue
			}
			if v, ok := convert.ToInt(rank.Value); ok {
				item.BGGRank = &v
			}
			break
		}

		items = append(items, item)
	}
	return items, nil
}

func parseThing(data []byte) (*ThingDetail, error) {
	var doc thingXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, &PermanentError{Err: fmt.Errorf("malformed thing XML: %w", err)}
	}
	if len(doc.Items) == 0 {
		return nil, &PermanentError{Err: ErrNotFound}
	}

	raw := doc.Items[0]
	detail := &ThingDetail{
		Type:        raw.Type,
		Description: raw.Description,
	}
	if id, ok := convert.ToInt(raw.ID); ok {
		detail.BGGID = int64(id)
	}
	for _, name := range raw.Names {
		if name.Type == "primary" {
			detail.PrimaryName = name.Value
			break
		}
	}
	for _, link := range raw.Links {
		switch link.Type {
		case "boardgamemechanic":
			detail.Mechanics = append(detail.Mechanics, link.Value)
		case "boardgamedesigner":
			detail.Designers = append(detail.Designers, link.Value)
		case "boardgameartist":
			detail.Artists = append(detail.Artists, link.Value)
		case "boardgamepublisher":
			detail.Publishers = append(detail.Publishers, link.Value)
		}
	}

	detail.MinPlayers, _ = convert.ToInt(raw.MinPlayers.Value)
	detail.MaxPlayers, _ = convert.ToInt(raw.MaxPlayers.Value)
	detail.MinPlaytime, _ = convert.ToInt(raw.MinPlaytime.Value)
	detail.MaxPlaytime, _ = convert.ToInt(raw.MaxPlaytime.Value)
	detail.PlayTime, _ = convert.ToInt(raw.PlayingTime.Value)
	detail.MinAge, _ = convert.ToInt(raw.MinAge.Value)

	if v, ok := convert.ToFloat(raw.Statistics.Ratings.AverageWeight.Value); ok {
		detail.Weight = &v
	}
	if v, ok := convert.ToFloat(raw.Statistics.Ratings.Average.Value); ok {
		detail.AverageRating = &v
	}
	for _, rank := range raw.Statistics.Ratings.Ranks.Rank {
		if rank.Name != "boardgame" {
			continue
		}
		if v, ok := convert.ToInt(rank.Value); ok {
			detail.BGGRank = &v
		}
		break
	}

	return detail, nil
}

func parseHotness(data []byte) ([]HotItem, error) {
	var doc hotXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, &PermanentError{Err: fmt.Errorf("malformed hotness XML: %w", err)}
	}

	items := make([]HotItem, 0, len(doc.Items))
	for _, raw := range doc.Items {
		id, ok := convert.ToInt(raw.ID)
		if !ok {
			continue
		}
		item := HotItem{
			BGGID:     int64(id),
			Name:      raw.Name.Value,
			Thumbnail: raw.Thumbnail.Value,
		}
		item.Rank, _ = convert.ToInt(raw.Rank)
		item.YearPublished, _ = convert.ToInt(raw.YearPublished.Value)
		items = append(items, item)
	}
	return items, nil
}
