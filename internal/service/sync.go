package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"bgg-mirror-api/internal/bgg"
	"bgg-mirror-api/internal/cache"
	"bgg-mirror-api/internal/model"
	"bgg-mirror-api/internal/notify"
	"bgg-mirror-api/internal/repository"
	"bgg-mirror-api/pkg/convert"
)

// ErrSyncRunning is returned when a sync is requested for a kind that is
// already being synchronized.
var ErrSyncRunning = errors.New("sync already running for this kind")

// Upstream is the slice of the BGG client the orchestrator needs. Narrowed
// to an interface so sync runs can be tested against a fake upstream.
type Upstream interface {
	FetchCollection(ctx context.Context, username, subtype string) ([]bgg.CollectionItem, error)
	FetchThing(ctx context.Context, id int64) (*bgg.ThingDetail, error)
	FetchHotness(ctx context.Context, hotType string) ([]bgg.HotItem, error)
	FetchPlaysPage(ctx context.Context, gameID int64, page int) (*bgg.PlaysPage, error)
}

// Repositories bundles the per-kind durable stores the orchestrator writes to.
type Repositories struct {
	Games       repository.GameRepository
	Accessories repository.AccessoryRepository
	HotGames    repository.HotGameRepository
	HotPersons  repository.HotPersonRepository
	Plays       repository.PlayRepository
}

// SyncOrchestrator runs the per-kind synchronization pipelines: list the
// remote state, diff it against stored fingerprints, fetch details only for
// changed items, and commit changed rows before recording new fingerprints.
//
// At most one run per kind is active at a time; overlapping requests are
// refused with ErrSyncRunning. Runs for different kinds may overlap.
type SyncOrchestrator struct {
	upstream     Upstream
	fingerprints *cache.FingerprintStore
	repos        Repositories
	notifier     notify.Notifier
	username     string

	mu          sync.Mutex
	running     map[model.Kind]bool
	lastReports map[model.Kind]*model.SyncReport
}

// NewSyncOrchestrator creates a sync orchestrator. notifier may be nil.
func NewSyncOrchestrator(upstream Upstream, fingerprints *cache.FingerprintStore, repos Repositories, notifier notify.Notifier, username string) *SyncOrchestrator {
	if notifier == nil {
		notifier = notify.NopNotifier{}
	}
	return &SyncOrchestrator{
		upstream:     upstream,
		fingerprints: fingerprints,
		repos:        repos,
		notifier:     notifier,
		username:     username,
		running:      make(map[model.Kind]bool),
		lastReports:  make(map[model.Kind]*model.SyncReport),
	}
}

// TrySync runs one synchronization for the given kind. It returns
// ErrSyncRunning without doing any work when a run for that kind is already
// active.
func (o *SyncOrchestrator) TrySync(ctx context.Context, kind model.Kind) (*model.SyncReport, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown kind %q", kind)
	}
	if !o.begin(kind) {
		return nil, ErrSyncRunning
	}
	defer o.end(kind)

	report := &model.SyncReport{
		RunID:     uuid.New().String(),
		Kind:      kind,
		StartedAt: time.Now(),
	}
	log.Printf("[Sync] Run %s started for %s", report.RunID, kind)

	var err error
	switch kind {
	case model.KindGame:
		err = o.syncGames(ctx, report)
	case model.KindAccessory:
		err = o.syncAccessories(ctx, report)
	case model.KindHotGame:
		err = o.syncHotGames(ctx, report)
	case model.KindHotPerson:
		err = o.syncHotPersons(ctx, report)
	case model.KindPlay:
		err = o.syncPlays(ctx, report)
	}

	report.FinishedAt = time.Now()
	report.Duration = report.FinishedAt.Sub(report.StartedAt)
	if err != nil {
		report.Err = err.Error()
		log.Printf("[Sync] Run %s for %s failed after %v: %v", report.RunID, kind, report.Duration, err)
	} else {
		log.Printf("[Sync] Run %s for %s finished in %v: listed=%d skipped=%d fetched=%d updated=%d touched=%d failed=%d missing=%d",
			report.RunID, kind, report.Duration, report.Listed, report.Skipped,
			report.Fetched, report.Updated, report.Touched, report.Failed, report.Missing)
	}

	o.record(kind, report)
	o.notifier.SyncCompleted(ctx, report)
	return report, err
}

// Running reports whether a run for the given kind is active.
func (o *SyncOrchestrator) Running(kind model.Kind) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.running[kind]
}

// LastReport returns the most recent finished report for the kind, or nil.
func (o *SyncOrchestrator) LastReport(kind model.Kind) *model.SyncReport {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastReports[kind]
}

// KindStats returns the row count, newest sync timestamp and running flag
// for one kind.
func (o *SyncOrchestrator) KindStats(ctx context.Context, kind model.Kind) (model.Stats, error) {
	var (
		count int64
		last  *time.Time
		err   error
	)
	switch kind {
	case model.KindGame:
		count, last, err = o.repos.Games.Stats(ctx)
	case model.KindAccessory:
		count, last, err = o.repos.Accessories.Stats(ctx)
	case model.KindHotGame:
		count, last, err = o.repos.HotGames.Stats(ctx)
	case model.KindHotPerson:
		count, last, err = o.repos.HotPersons.Stats(ctx)
	case model.KindPlay:
		count, last, err = o.repos.Plays.Stats(ctx)
	default:
		return model.Stats{}, fmt.Errorf("unknown kind %q", kind)
	}
	if err != nil {
		return model.Stats{}, err
	}
	return model.Stats{
		Kind:       kind,
		Count:      count,
		LastSynced: last,
		Running:    o.Running(kind),
	}, nil
}

// Stats returns KindStats for every kind.
func (o *SyncOrchestrator) Stats(ctx context.Context) ([]model.Stats, error) {
	stats := make([]model.Stats, 0, len(model.AllKinds))
	for _, kind := range model.AllKinds {
		s, err := o.KindStats(ctx, kind)
		if err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, nil
}

func (o *SyncOrchestrator) begin(kind model.Kind) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running[kind] {
		return false
	}
	o.running[kind] = true
	return true
}

func (o *SyncOrchestrator) end(kind model.Kind) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.running[kind] = false
}

func (o *SyncOrchestrator) record(kind model.Kind, report *model.SyncReport) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lastReports[kind] = report
}

// syncGames synchronizes the board game collection. Items whose metadata
// fingerprint is unchanged keep their stored detail and only get their sync
// timestamp advanced; everything else gets a fresh detail fetch.
func (o *SyncOrchestrator) syncGames(ctx context.Context, report *model.SyncReport) error {
	items, err := o.upstream.FetchCollection(ctx, o.username, "")
	if err != nil {
		return fmt.Errorf("failed to list collection: %w", err)
	}
	report.Listed = len(items)

	listed := make(map[int64]bool, len(items))
	now := time.Now()

	for _, item := range items {
		listed[item.BGGID] = true

		metaHash := cache.Hash(item.MetaFields())
		stored, found := o.fingerprints.Get(ctx, model.KindGame, item.BGGID)

		if found && stored.Meta == metaHash && stored.Detail != "" {
			if err := o.repos.Games.Touch(ctx, item.BGGID, now); err != nil {
				return err
			}
			report.Skipped++
			continue
		}

		detail, err := o.upstream.FetchThing(ctx, item.BGGID)
		if err != nil {
			if bgg.IsPermanent(err) {
				log.Printf("[Sync] Skipping game %d: %v", item.BGGID, err)
				report.Failed++
				continue
			}
			return fmt.Errorf("failed to fetch game %d: %w", item.BGGID, err)
		}
		report.Fetched++
		detailHash := cache.Hash(detail.DetailFields())

		game := buildGame(&item, detail, now)
		if err := o.repos.Games.Upsert(ctx, game); err != nil {
			return err
		}
		report.Updated++

		fp := cache.Fingerprint{Meta: metaHash, Detail: detailHash}
		if err := o.fingerprints.Set(ctx, model.KindGame, item.BGGID, fp); err != nil {
			log.Printf("[Sync] %v", err)
		}
	}

	// Items that fell out of the collection stay persisted; they are only
	// counted so the drift is visible.
	ids, err := o.repos.Games.IDs(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if !listed[id] {
			report.Missing++
		}
	}
	return nil
}

// syncAccessories synchronizes the accessory collection, same pipeline as
// games but against the accessory subtype.
func (o *SyncOrchestrator) syncAccessories(ctx context.Context, report *model.SyncReport) error {
	items, err := o.upstream.FetchCollection(ctx, o.username, bgg.SubtypeAccessory)
	if err != nil {
		return fmt.Errorf("failed to list accessories: %w", err)
	}
	report.Listed = len(items)
	now := time.Now()

	for _, item := range items {
		metaHash := cache.Hash(item.MetaFields())
		stored, found := o.fingerprints.Get(ctx, model.KindAccessory, item.BGGID)

		if found && stored.Meta == metaHash && stored.Detail != "" {
			if err := o.repos.Accessories.Touch(ctx, item.BGGID, now); err != nil {
				return err
			}
			report.Skipped++
			continue
		}

		detail, err := o.upstream.FetchThing(ctx, item.BGGID)
		if err != nil {
			if bgg.IsPermanent(err) {
				log.Printf("[Sync] Skipping accessory %d: %v", item.BGGID, err)
				report.Failed++
				continue
			}
			return fmt.Errorf("failed to fetch accessory %d: %w", item.BGGID, err)
		}
		report.Fetched++
		detailHash := cache.Hash(detail.DetailFields())

		accessory := buildAccessory(&item, detail, now)
		if err := o.repos.Accessories.Upsert(ctx, accessory); err != nil {
			return err
		}
		report.Updated++

		fp := cache.Fingerprint{Meta: metaHash, Detail: detailHash}
		if err := o.fingerprints.Set(ctx, model.KindAccessory, item.BGGID, fp); err != nil {
			log.Printf("[Sync] %v", err)
		}
	}
	return nil
}

// syncHotGames synchronizes the Hotness board game ranking, enriching each
// entry with thing details the same way the collection sync does.
func (o *SyncOrchestrator) syncHotGames(ctx context.Context, report *model.SyncReport) error {
	items, err := o.upstream.FetchHotness(ctx, bgg.HotTypeBoardgame)
	if err != nil {
		return fmt.Errorf("failed to list hot games: %w", err)
	}
	report.Listed = len(items)
	now := time.Now()

	for _, item := range items {
		metaHash := cache.Hash(item.MetaFields())
		stored, found := o.fingerprints.Get(ctx, model.KindHotGame, item.BGGID)

		if found && stored.Meta == metaHash && stored.Detail != "" {
			if err := o.repos.HotGames.Touch(ctx, item.BGGID, now); err != nil {
				return err
			}
			report.Skipped++
			continue
		}

		detail, err := o.upstream.FetchThing(ctx, item.BGGID)
		if err != nil {
			if bgg.IsPermanent(err) {
				log.Printf("[Sync] Skipping hot game %d: %v", item.BGGID, err)
				report.Failed++
				continue
			}
			return fmt.Errorf("failed to fetch hot game %d: %w", item.BGGID, err)
		}
		report.Fetched++
		detailHash := cache.Hash(detail.DetailFields())

		hotGame := buildHotGame(&item, detail, now)
		if err := o.repos.HotGames.Upsert(ctx, hotGame); err != nil {
			return err
		}
		report.Updated++

		fp := cache.Fingerprint{Meta: metaHash, Detail: detailHash}
		if err := o.fingerprints.Set(ctx, model.KindHotGame, item.BGGID, fp); err != nil {
			log.Printf("[Sync] %v", err)
		}
	}
	return nil
}

// syncHotPersons synchronizes the Hotness person ranking. The hot list is the
// only source for persons, so there is no detail fetch: an unchanged
// metadata fingerprint means the row only gets its sync timestamp advanced.
func (o *SyncOrchestrator) syncHotPersons(ctx context.Context, report *model.SyncReport) error {
	items, err := o.upstream.FetchHotness(ctx, bgg.HotTypePerson)
	if err != nil {
		return fmt.Errorf("failed to list hot persons: %w", err)
	}
	report.Listed = len(items)
	now := time.Now()

	for _, item := range items {
		metaHash := cache.Hash(item.MetaFields())
		stored, found := o.fingerprints.Get(ctx, model.KindHotPerson, item.BGGID)

		if found && stored.Meta == metaHash {
			if err := o.repos.HotPersons.Touch(ctx, item.BGGID, now); err != nil {
				return err
			}
			report.Touched++
			continue
		}

		person := &model.HotPerson{
			BGGID:        item.BGGID,
			Rank:         item.Rank,
			Name:         item.Name,
			Thumbnail:    item.Thumbnail,
			BGGURL:       fmt.Sprintf("https://boardgamegeek.com/boardgameperson/%d", item.BGGID),
			LastSyncedAt: now,
		}
		if err := o.repos.HotPersons.Upsert(ctx, person); err != nil {
			return err
		}
		report.Updated++

		if err := o.fingerprints.Set(ctx, model.KindHotPerson, item.BGGID, cache.Fingerprint{Meta: metaHash}); err != nil {
			log.Printf("[Sync] %v", err)
		}
	}
	return nil
}

// syncPlays pages through the authenticated play history of every game with
// logged plays. Plays have no detail payload, so an unchanged fingerprint
// skips the row entirely.
func (o *SyncOrchestrator) syncPlays(ctx context.Context, report *model.SyncReport) error {
	gameIDs, err := o.repos.Games.PlayedIDs(ctx)
	if err != nil {
		return err
	}
	now := time.Now()

	for _, gameID := range gameIDs {
		for page := 1; ; page++ {
			pageData, err := o.upstream.FetchPlaysPage(ctx, gameID, page)
			if err != nil {
				if bgg.IsPermanent(err) {
					log.Printf("[Sync] Skipping plays for game %d: %v", gameID, err)
					report.Failed++
					break
				}
				return fmt.Errorf("failed to fetch plays for game %d: %w", gameID, err)
			}

			for _, entry := range pageData.Plays {
				playID, ok := convert.ToInt(entry.PlayID)
				if !ok {
					continue
				}
				report.Listed++

				metaHash := cache.Hash(entry.MetaFields())
				stored, found := o.fingerprints.Get(ctx, model.KindPlay, int64(playID))
				if found && stored.Meta == metaHash {
					report.Skipped++
					continue
				}

				play := buildPlay(&entry, int64(playID), now)
				if err := o.repos.Plays.Upsert(ctx, play); err != nil {
					return err
				}
				report.Updated++

				if err := o.fingerprints.Set(ctx, model.KindPlay, int64(playID), cache.Fingerprint{Meta: metaHash}); err != nil {
					log.Printf("[Sync] %v", err)
				}
			}

			if !bgg.PlaysPageFull(pageData) {
				break
			}
		}
	}
	return nil
}

// buildGame merges one collection item with its detail payload.
func buildGame(item *bgg.CollectionItem, detail *bgg.ThingDetail, now time.Time) *model.Game {
	title := item.Name
	if title == "" {
		title = detail.PrimaryName
	}

	return &model.Game{
		BGGID:         item.BGGID,
		Title:         title,
		OriginalTitle: detail.PrimaryName,
		YearPublished: item.YearPublished,
		Image:         item.Image,
		Thumbnail:     item.Thumbnail,
		Description:   detail.Description,
		Type:          detail.Type,

		NumPlays:      item.NumPlays,
		MyRating:      item.MyRating,
		AverageRating: firstFloat(item.AverageRating, detail.AverageRating),
		BGGRank:       firstInt(item.BGGRank, detail.BGGRank),

		StatusOwned:            item.Own,
		StatusPreordered:       item.Preordered,
		StatusWishlist:         item.Wishlist,
		StatusForTrade:         item.ForTrade,
		StatusPrevOwned:        item.PrevOwned,
		StatusWantToPlay:       item.WantToPlay,
		StatusWantToBuy:        item.WantToBuy,
		StatusWishlistPriority: item.WishlistPriority,

		Mechanics: detail.Mechanics,
		Designers: detail.Designers,
		Artists:   detail.Artists,

		MinPlayers:  detail.MinPlayers,
		MaxPlayers:  detail.MaxPlayers,
		MinPlaytime: detail.MinPlaytime,
		MaxPlaytime: detail.MaxPlaytime,
		PlayTime:    detail.PlayTime,
		MinAge:      detail.MinAge,
		Weight:      detail.Weight,

		LastSyncedAt: now,
	}
}

// buildAccessory merges one collection item with its detail payload.
func buildAccessory(item *bgg.CollectionItem, detail *bgg.ThingDetail, now time.Time) *model.Accessory {
	name := item.Name
	if name == "" {
		name = detail.PrimaryName
	}

	publisher := ""
	if len(detail.Publishers) > 0 {
		publisher = detail.Publishers[0]
	}

	return &model.Accessory{
		BGGID:         item.BGGID,
		Name:          name,
		YearPublished: item.YearPublished,
		Image:         item.Image,
		Description:   detail.Description,
		Publisher:     publisher,

		NumPlays:      item.NumPlays,
		MyRating:      item.MyRating,
		AverageRating: firstFloat(item.AverageRating, detail.AverageRating),
		BGGRank:       firstInt(item.BGGRank, detail.BGGRank),

		Owned:           item.Own,
		Preordered:      item.Preordered,
		Wishlist:        item.Wishlist,
		WantToBuy:       item.WantToBuy,
		WantToPlay:      item.WantToPlay,
		Want:            item.Want,
		ForTrade:        item.ForTrade,
		PreviouslyOwned: item.PrevOwned,

		LastModified: item.LastModified,
		LastSyncedAt: now,
	}
}

// buildHotGame merges one hot list entry with its detail payload.
func buildHotGame(item *bgg.HotItem, detail *bgg.ThingDetail, now time.Time) *model.HotGame {
	name := item.Name
	if name == "" {
		name = detail.PrimaryName
	}

	return &model.HotGame{
		BGGID:         item.BGGID,
		Rank:          item.Rank,
		Name:          name,
		YearPublished: item.YearPublished,
		Thumbnail:     item.Thumbnail,
		BGGURL:        fmt.Sprintf("https://boardgamegeek.com/boardgame/%d", item.BGGID),

		Description: detail.Description,
		Type:        detail.Type,
		Mechanics:   detail.Mechanics,
		Designers:   detail.Designers,
		Artists:     detail.Artists,

		MinPlayers:  detail.MinPlayers,
		MaxPlayers:  detail.MaxPlayers,
		MinPlaytime: detail.MinPlaytime,
		MaxPlaytime: detail.MaxPlaytime,
		PlayTime:    detail.PlayTime,
		MinAge:      detail.MinAge,
		Weight:      detail.Weight,

		AverageRating: detail.AverageRating,
		BGGRank:       detail.BGGRank,

		LastSyncedAt: now,
	}
}

// buildPlay converts one geekplay entry, where every number arrives as a
// string.
func buildPlay(entry *bgg.PlayEntry, playID int64, now time.Time) *model.Play {
	p := &model.Play{
		PlayID:     playID,
		ObjectType: entry.ObjectType,
		GameName:   entry.Name,
		PlayDate:   entry.PlayDate,
		Timestamp:  entry.Timestamp,
		Location:   entry.Location,
		Comments:   entry.CommentText(),
		WinState:   entry.WinState,
		Incomplete: convert.ToBool(entry.Incomplete),
		NowInStats: convert.ToBool(entry.NowInStats),
		Online:     convert.ToBool(entry.Online),

		LastSyncedAt: now,
	}
	if v, ok := convert.ToInt(entry.ObjectID); ok {
		p.ObjectID = int64(v)
	}
	if v, ok := convert.ToInt(entry.UserID); ok {
		p.UserID = int64(v)
	}
	p.Quantity, _ = convert.ToInt(entry.Quantity)
	p.Length, _ = convert.ToInt(entry.Length)
	p.NumPlayers, _ = convert.ToInt(entry.NumPlayers)
	return p
}

func firstFloat(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstInt(values ...*int) *int {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
