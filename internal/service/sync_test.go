package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bgg-mirror-api/internal/bgg"
	"bgg-mirror-api/internal/cache"
	"bgg-mirror-api/internal/model"
)

// fakeUpstream is an in-memory Upstream with call counting.
type fakeUpstream struct {
	mu sync.Mutex

	collection map[string][]bgg.CollectionItem
	things     map[int64]*bgg.ThingDetail
	hot        map[string][]bgg.HotItem
	plays      map[int64][]bgg.PlayEntry

	thingErr      map[int64]error
	collectionErr error

	collectionCalls int
	thingCalls      int

	// blockCollection, when set, makes FetchCollection wait until released.
	blockCollection chan struct{}
}

func (f *fakeUpstream) FetchCollection(ctx context.Context, username, subtype string) ([]bgg.CollectionItem, error) {
	f.mu.Lock()
	f.collectionCalls++
	block := f.blockCollection
	err := f.collectionErr
	items := f.collection[subtype]
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (f *fakeUpstream) FetchThing(ctx context.Context, id int64) (*bgg.ThingDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.thingCalls++
	if err := f.thingErr[id]; err != nil {
		return nil, err
	}
	detail, ok := f.things[id]
	if !ok {
		return nil, &bgg.PermanentError{Err: bgg.ErrNotFound}
	}
	return detail, nil
}

func (f *fakeUpstream) FetchHotness(ctx context.Context, hotType string) ([]bgg.HotItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hot[hotType], nil
}

func (f *fakeUpstream) FetchPlaysPage(ctx context.Context, gameID int64, page int) (*bgg.PlaysPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	// A single short page per game is enough for the pipeline tests.
	if page > 1 {
		return &bgg.PlaysPage{}, nil
	}
	return &bgg.PlaysPage{Plays: f.plays[gameID]}, nil
}

func (f *fakeUpstream) thingCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.thingCalls
}

// fakeGameRepo is an in-memory GameRepository.
type fakeGameRepo struct {
	mu        sync.Mutex
	rows      map[int64]*model.Game
	touches   int
	upserts   int
	upsertErr error
}

func newFakeGameRepo() *fakeGameRepo {
	return &fakeGameRepo{rows: make(map[int64]*model.Game)}
}

func (r *fakeGameRepo) Upsert(ctx context.Context, g *model.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.upserts++
	copied := *g
	r.rows[g.BGGID] = &copied
	return nil
}

func (r *fakeGameRepo) Touch(ctx context.Context, bggID int64, syncedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touches++
	if row, ok := r.rows[bggID]; ok {
		row.LastSyncedAt = syncedAt
	}
	return nil
}

func (r *fakeGameRepo) List(ctx context.Context, limit, offset int) ([]model.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	games := make([]model.Game, 0, len(r.rows))
	for _, g := range r.rows {
		games = append(games, *g)
	}
	return games, nil
}

func (r *fakeGameRepo) IDs(ctx context.Context) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int64, 0, len(r.rows))
	for id := range r.rows {
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *fakeGameRepo) PlayedIDs(ctx context.Context) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []int64
	for id, g := range r.rows {
		if g.NumPlays > 0 {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *fakeGameRepo) Stats(ctx context.Context) (int64, *time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.rows)), nil, nil
}

// fakeAccessoryRepo is an in-memory AccessoryRepository.
type fakeAccessoryRepo struct {
	mu      sync.Mutex
	rows    map[int64]*model.Accessory
	touches int
}

func newFakeAccessoryRepo() *fakeAccessoryRepo {
	return &fakeAccessoryRepo{rows: make(map[int64]*model.Accessory)}
}

func (r *fakeAccessoryRepo) Upsert(ctx context.Context, a *model.Accessory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *a
	r.rows[a.BGGID] = &copied
	return nil
}

func (r *fakeAccessoryRepo) Touch(ctx context.Context, bggID int64, syncedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touches++
	return nil
}

func (r *fakeAccessoryRepo) List(ctx context.Context, limit, offset int) ([]model.Accessory, error) {
	return nil, nil
}

func (r *fakeAccessoryRepo) Stats(ctx context.Context) (int64, *time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.rows)), nil, nil
}

// fakeHotGameRepo is an in-memory HotGameRepository.
type fakeHotGameRepo struct {
	mu   sync.Mutex
	rows map[int64]*model.HotGame
}

func newFakeHotGameRepo() *fakeHotGameRepo {
	return &fakeHotGameRepo{rows: make(map[int64]*model.HotGame)}
}

func (r *fakeHotGameRepo) Upsert(ctx context.Context, h *model.HotGame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *h
	r.rows[h.BGGID] = &copied
	return nil
}

func (r *fakeHotGameRepo) Touch(ctx context.Context, bggID int64, syncedAt time.Time) error {
	return nil
}

func (r *fakeHotGameRepo) List(ctx context.Context, limit, offset int) ([]model.HotGame, error) {
	return nil, nil
}

func (r *fakeHotGameRepo) Stats(ctx context.Context) (int64, *time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.rows)), nil, nil
}

// fakeHotPersonRepo is an in-memory HotPersonRepository.
type fakeHotPersonRepo struct {
	mu      sync.Mutex
	rows    map[int64]*model.HotPerson
	touches int
	upserts int
}

func newFakeHotPersonRepo() *fakeHotPersonRepo {
	return &fakeHotPersonRepo{rows: make(map[int64]*model.HotPerson)}
}

func (r *fakeHotPersonRepo) Upsert(ctx context.Context, h *model.HotPerson) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	copied := *h
	r.rows[h.BGGID] = &copied
	return nil
}

func (r *fakeHotPersonRepo) Touch(ctx context.Context, bggID int64, syncedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touches++
	return nil
}

func (r *fakeHotPersonRepo) List(ctx context.Context, limit, offset int) ([]model.HotPerson, error) {
	return nil, nil
}

func (r *fakeHotPersonRepo) Stats(ctx context.Context) (int64, *time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.rows)), nil, nil
}

// fakePlayRepo is an in-memory PlayRepository.
type fakePlayRepo struct {
	mu      sync.Mutex
	rows    map[int64]*model.Play
	upserts int
}

func newFakePlayRepo() *fakePlayRepo {
	return &fakePlayRepo{rows: make(map[int64]*model.Play)}
}

func (r *fakePlayRepo) Upsert(ctx context.Context, p *model.Play) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	copied := *p
	r.rows[p.PlayID] = &copied
	return nil
}

func (r *fakePlayRepo) List(ctx context.Context, limit, offset int) ([]model.Play, error) {
	return nil, nil
}

func (r *fakePlayRepo) Stats(ctx context.Context) (int64, *time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.rows)), nil, nil
}

type fixture struct {
	upstream     *fakeUpstream
	fingerprints *cache.FingerprintStore
	games        *fakeGameRepo
	accessories  *fakeAccessoryRepo
	hotGames     *fakeHotGameRepo
	hotPersons   *fakeHotPersonRepo
	plays        *fakePlayRepo
	orchestrator *SyncOrchestrator
}

func newFixture(upstream *fakeUpstream) *fixture {
	f := &fixture{
		upstream:     upstream,
		fingerprints: cache.NewFingerprintStore(cache.NewMemoryCache()),
		games:        newFakeGameRepo(),
		accessories:  newFakeAccessoryRepo(),
		hotGames:     newFakeHotGameRepo(),
		hotPersons:   newFakeHotPersonRepo(),
		plays:        newFakePlayRepo(),
	}
	f.orchestrator = NewSyncOrchestrator(upstream, f.fingerprints, Repositories{
		Games:       f.games,
		Accessories: f.accessories,
		HotGames:    f.hotGames,
		HotPersons:  f.hotPersons,
		Plays:       f.plays,
	}, nil, "tester")
	return f
}

func collectionItem(id int64, name string, numPlays int) bgg.CollectionItem {
	return bgg.CollectionItem{
		BGGID:    id,
		Name:     name,
		NumPlays: numPlays,
		Own:      true,
	}
}

func thingDetail(id int64, name string) *bgg.ThingDetail {
	return &bgg.ThingDetail{
		BGGID:       id,
		Type:        "boardgame",
		PrimaryName: name,
		Description: "a game",
		MinPlayers:  2,
		MaxPlayers:  4,
	}
}

func TestSyncGames(t *testing.T) {
	ctx := context.Background()

	t.Run("first run fetches details and upserts everything", func(t *testing.T) {
		f := newFixture(&fakeUpstream{
			collection: map[string][]bgg.CollectionItem{
				"": {collectionItem(822, "Carcassonne", 3), collectionItem(13, "Catan", 0)},
			},
			things: map[int64]*bgg.ThingDetail{
				822: thingDetail(822, "Carcassonne"),
				13:  thingDetail(13, "Catan"),
			},
		})

		report, err := f.orchestrator.TrySync(ctx, model.KindGame)
		if err != nil {
			t.Fatalf("TrySync failed: %v", err)
		}
		if report.Listed != 2 || report.Fetched != 2 || report.Updated != 2 || report.Skipped != 0 {
			t.Errorf("report = %+v", report)
		}
		if f.games.upserts != 2 {
			t.Errorf("expected 2 upserts, got %d", f.games.upserts)
		}
		if game := f.games.rows[822]; game == nil || game.Title != "Carcassonne" || game.Description != "a game" {
			t.Errorf("row 822 = %+v", f.games.rows[822])
		}
	})

	t.Run("unchanged items skip the detail fetch", func(t *testing.T) {
		f := newFixture(&fakeUpstream{
			collection: map[string][]bgg.CollectionItem{
				"": {collectionItem(822, "Carcassonne", 3)},
			},
			things: map[int64]*bgg.ThingDetail{822: thingDetail(822, "Carcassonne")},
		})

		if _, err := f.orchestrator.TrySync(ctx, model.KindGame); err != nil {
			t.Fatalf("first run failed: %v", err)
		}
		callsAfterFirst := f.upstream.thingCallCount()

		report, err := f.orchestrator.TrySync(ctx, model.KindGame)
		if err != nil {
			t.Fatalf("second run failed: %v", err)
		}
		if report.Skipped != 1 || report.Fetched != 0 || report.Updated != 0 {
			t.Errorf("report = %+v", report)
		}
		if got := f.upstream.thingCallCount(); got != callsAfterFirst {
			t.Errorf("expected no extra detail fetches, got %d -> %d", callsAfterFirst, got)
		}
		if f.games.touches != 1 {
			t.Errorf("expected 1 touch, got %d", f.games.touches)
		}
	})

	t.Run("metadata change triggers a refetch", func(t *testing.T) {
		up := &fakeUpstream{
			collection: map[string][]bgg.CollectionItem{
				"": {collectionItem(822, "Carcassonne", 3)},
			},
			things: map[int64]*bgg.ThingDetail{822: thingDetail(822, "Carcassonne")},
		}
		f := newFixture(up)

		if _, err := f.orchestrator.TrySync(ctx, model.KindGame); err != nil {
			t.Fatalf("first run failed: %v", err)
		}

		// A new play shows up in the listing.
		up.mu.Lock()
		up.collection[""] = []bgg.CollectionItem{collectionItem(822, "Carcassonne", 4)}
		up.mu.Unlock()

		report, err := f.orchestrator.TrySync(ctx, model.KindGame)
		if err != nil {
			t.Fatalf("second run failed: %v", err)
		}
		if report.Fetched != 1 || report.Updated != 1 || report.Skipped != 0 {
			t.Errorf("report = %+v", report)
		}
		if game := f.games.rows[822]; game.NumPlays != 4 {
			t.Errorf("num plays = %d", game.NumPlays)
		}
	})

	t.Run("permanent detail failure skips the item only", func(t *testing.T) {
		f := newFixture(&fakeUpstream{
			collection: map[string][]bgg.CollectionItem{
				"": {collectionItem(822, "Carcassonne", 3), collectionItem(404, "Ghost", 0)},
			},
			things: map[int64]*bgg.ThingDetail{822: thingDetail(822, "Carcassonne")},
		})

		report, err := f.orchestrator.TrySync(ctx, model.KindGame)
		if err != nil {
			t.Fatalf("TrySync failed: %v", err)
		}
		if report.Failed != 1 || report.Updated != 1 {
			t.Errorf("report = %+v", report)
		}
		if _, found := f.fingerprints.Get(ctx, model.KindGame, 404); found {
			t.Error("failed item must not get a fingerprint")
		}
	})

	t.Run("transient detail failure aborts the run", func(t *testing.T) {
		f := newFixture(&fakeUpstream{
			collection: map[string][]bgg.CollectionItem{
				"": {collectionItem(822, "Carcassonne", 3)},
			},
			things:   map[int64]*bgg.ThingDetail{822: thingDetail(822, "Carcassonne")},
			thingErr: map[int64]error{822: &bgg.TransientError{Err: errors.New("HTTP 503")}},
		})

		report, err := f.orchestrator.TrySync(ctx, model.KindGame)
		if err == nil {
			t.Fatal("expected the run to fail")
		}
		if report.Err == "" {
			t.Error("expected report.Err to be set")
		}
	})

	t.Run("repository failure leaves no fingerprint behind", func(t *testing.T) {
		f := newFixture(&fakeUpstream{
			collection: map[string][]bgg.CollectionItem{
				"": {collectionItem(822, "Carcassonne", 3)},
			},
			things: map[int64]*bgg.ThingDetail{822: thingDetail(822, "Carcassonne")},
		})
		f.games.upsertErr = errors.New("disk full")

		if _, err := f.orchestrator.TrySync(ctx, model.KindGame); err == nil {
			t.Fatal("expected the run to fail")
		}
		if _, found := f.fingerprints.Get(ctx, model.KindGame, 822); found {
			t.Error("fingerprint must only be written after the durable write commits")
		}

		// The next run retries the same item.
		f.games.upsertErr = nil
		report, err := f.orchestrator.TrySync(ctx, model.KindGame)
		if err != nil {
			t.Fatalf("retry run failed: %v", err)
		}
		if report.Updated != 1 {
			t.Errorf("report = %+v", report)
		}
	})

	t.Run("rows missing from the listing are counted, not deleted", func(t *testing.T) {
		f := newFixture(&fakeUpstream{
			collection: map[string][]bgg.CollectionItem{
				"": {collectionItem(822, "Carcassonne", 3)},
			},
			things: map[int64]*bgg.ThingDetail{822: thingDetail(822, "Carcassonne")},
		})
		f.games.rows[999] = &model.Game{BGGID: 999, Title: "Sold Game"}

		report, err := f.orchestrator.TrySync(ctx, model.KindGame)
		if err != nil {
			t.Fatalf("TrySync failed: %v", err)
		}
		if report.Missing != 1 {
			t.Errorf("missing = %d", report.Missing)
		}
		if _, ok := f.games.rows[999]; !ok {
			t.Error("missing row must stay persisted")
		}
	})

	t.Run("concurrent runs for one kind are refused", func(t *testing.T) {
		block := make(chan struct{})
		f := newFixture(&fakeUpstream{
			collection:      map[string][]bgg.CollectionItem{"": {}},
			blockCollection: block,
		})

		done := make(chan error, 1)
		go func() {
			_, err := f.orchestrator.TrySync(ctx, model.KindGame)
			done <- err
		}()

		// Wait for the first run to take the slot.
		deadline := time.After(2 * time.Second)
		for !f.orchestrator.Running(model.KindGame) {
			select {
			case <-deadline:
				t.Fatal("first run never started")
			default:
				time.Sleep(5 * time.Millisecond)
			}
		}

		if _, err := f.orchestrator.TrySync(ctx, model.KindGame); !errors.Is(err, ErrSyncRunning) {
			t.Errorf("expected ErrSyncRunning, got %v", err)
		}

		close(block)
		if err := <-done; err != nil {
			t.Errorf("first run failed: %v", err)
		}

		// The slot is free again.
		if _, err := f.orchestrator.TrySync(ctx, model.KindGame); err != nil {
			t.Errorf("follow-up run failed: %v", err)
		}
	})

	t.Run("different kinds run independently", func(t *testing.T) {
		block := make(chan struct{})
		f := newFixture(&fakeUpstream{
			collection:      map[string][]bgg.CollectionItem{"": {}, bgg.SubtypeAccessory: {}},
			blockCollection: block,
		})

		done := make(chan error, 1)
		go func() {
			_, err := f.orchestrator.TrySync(ctx, model.KindGame)
			done <- err
		}()

		deadline := time.After(2 * time.Second)
		for !f.orchestrator.Running(model.KindGame) {
			select {
			case <-deadline:
				t.Fatal("game run never started")
			default:
				time.Sleep(5 * time.Millisecond)
			}
		}

		hotDone := make(chan error, 1)
		go func() {
			_, err := f.orchestrator.TrySync(ctx, model.KindHotPerson)
			hotDone <- err
		}()
		if err := <-hotDone; err != nil {
			t.Errorf("hot person run should not be blocked by the game run: %v", err)
		}

		close(block)
		<-done
	})
}

func TestSyncHotPersons(t *testing.T) {
	ctx := context.Background()

	up := &fakeUpstream{
		hot: map[string][]bgg.HotItem{
			bgg.HotTypePerson: {{BGGID: 42, Rank: 1, Name: "Uwe Rosenberg"}},
		},
	}
	f := newFixture(up)

	report, err := f.orchestrator.TrySync(ctx, model.KindHotPerson)
	if err != nil {
		t.Fatalf("TrySync failed: %v", err)
	}
	if report.Updated != 1 {
		t.Errorf("report = %+v", report)
	}
	person := f.hotPersons.rows[42]
	if person == nil || person.BGGURL != "https://boardgamegeek.com/boardgameperson/42" {
		t.Errorf("row = %+v", person)
	}

	// Unchanged entry only advances the timestamp.
	report, err = f.orchestrator.TrySync(ctx, model.KindHotPerson)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if report.Touched != 1 || report.Updated != 0 {
		t.Errorf("report = %+v", report)
	}
	if f.hotPersons.touches != 1 {
		t.Errorf("touches = %d", f.hotPersons.touches)
	}

	// A rank shuffle rewrites the row.
	up.mu.Lock()
	up.hot[bgg.HotTypePerson] = []bgg.HotItem{{BGGID: 42, Rank: 3, Name: "Uwe Rosenberg"}}
	up.mu.Unlock()

	report, err = f.orchestrator.TrySync(ctx, model.KindHotPerson)
	if err != nil {
		t.Fatalf("third run failed: %v", err)
	}
	if report.Updated != 1 {
		t.Errorf("report = %+v", report)
	}
	if f.hotPersons.rows[42].Rank != 3 {
		t.Errorf("rank = %d", f.hotPersons.rows[42].Rank)
	}
}

func TestSyncHotGames(t *testing.T) {
	ctx := context.Background()

	f := newFixture(&fakeUpstream{
		hot: map[string][]bgg.HotItem{
			bgg.HotTypeBoardgame: {{BGGID: 342942, Rank: 1, Name: "Ark Nova", YearPublished: 2021}},
		},
		things: map[int64]*bgg.ThingDetail{342942: thingDetail(342942, "Ark Nova")},
	})

	report, err := f.orchestrator.TrySync(ctx, model.KindHotGame)
	if err != nil {
		t.Fatalf("TrySync failed: %v", err)
	}
	if report.Fetched != 1 || report.Updated != 1 {
		t.Errorf("report = %+v", report)
	}
	row := f.hotGames.rows[342942]
	if row == nil || row.Rank != 1 || row.Description != "a game" {
		t.Errorf("row = %+v", row)
	}
	if row.BGGURL != "https://boardgamegeek.com/boardgame/342942" {
		t.Errorf("url = %q", row.BGGURL)
	}
}

func TestSyncAccessories(t *testing.T) {
	ctx := context.Background()

	detail := thingDetail(3005, "Carcassonne: Tile Tower")
	detail.Type = "boardgameaccessory"
	detail.Publishers = []string{"Hans im Glück", "Z-Man Games"}

	f := newFixture(&fakeUpstream{
		collection: map[string][]bgg.CollectionItem{
			bgg.SubtypeAccessory: {collectionItem(3005, "Carcassonne: Tile Tower", 0)},
		},
		things: map[int64]*bgg.ThingDetail{3005: detail},
	})

	report, err := f.orchestrator.TrySync(ctx, model.KindAccessory)
	if err != nil {
		t.Fatalf("TrySync failed: %v", err)
	}
	if report.Updated != 1 {
		t.Errorf("report = %+v", report)
	}
	row := f.accessories.rows[3005]
	if row == nil || row.Publisher != "Hans im Glück" || !row.Owned {
		t.Errorf("row = %+v", row)
	}

	report, err = f.orchestrator.TrySync(ctx, model.KindAccessory)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if report.Skipped != 1 {
		t.Errorf("report = %+v", report)
	}
}

func TestSyncPlays(t *testing.T) {
	ctx := context.Background()

	playEntry := func(playID string, quantity string) bgg.PlayEntry {
		return bgg.PlayEntry{
			PlayID:     playID,
			UserID:     "5",
			ObjectType: "thing",
			ObjectID:   "822",
			PlayDate:   "2025-08-01",
			Quantity:   quantity,
			Length:     "45",
			NumPlayers: "3",
			NowInStats: "1",
			Name:       "Carcassonne",
		}
	}

	up := &fakeUpstream{
		plays: map[int64][]bgg.PlayEntry{822: {playEntry("101", "1")}},
	}
	f := newFixture(up)
	f.games.rows[822] = &model.Game{BGGID: 822, Title: "Carcassonne", NumPlays: 3}
	f.games.rows[13] = &model.Game{BGGID: 13, Title: "Catan"} // never played

	report, err := f.orchestrator.TrySync(ctx, model.KindPlay)
	if err != nil {
		t.Fatalf("TrySync failed: %v", err)
	}
	if report.Listed != 1 || report.Updated != 1 {
		t.Errorf("report = %+v", report)
	}
	row := f.plays.rows[101]
	if row == nil || row.ObjectID != 822 || row.Length != 45 || !row.NowInStats {
		t.Errorf("row = %+v", row)
	}

	// Unchanged plays are skipped entirely on the next run.
	report, err = f.orchestrator.TrySync(ctx, model.KindPlay)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if report.Skipped != 1 || report.Updated != 0 {
		t.Errorf("report = %+v", report)
	}

	// An edited play is rewritten.
	up.mu.Lock()
	up.plays[822] = []bgg.PlayEntry{playEntry("101", "2")}
	up.mu.Unlock()

	report, err = f.orchestrator.TrySync(ctx, model.KindPlay)
	if err != nil {
		t.Fatalf("third run failed: %v", err)
	}
	if report.Updated != 1 {
		t.Errorf("report = %+v", report)
	}
	if f.plays.rows[101].Quantity != 2 {
		t.Errorf("quantity = %d", f.plays.rows[101].Quantity)
	}
}

func TestOrchestratorStats(t *testing.T) {
	ctx := context.Background()

	f := newFixture(&fakeUpstream{
		collection: map[string][]bgg.CollectionItem{
			"": {collectionItem(822, "Carcassonne", 3)},
		},
		things: map[int64]*bgg.ThingDetail{822: thingDetail(822, "Carcassonne")},
	})

	if _, err := f.orchestrator.TrySync(ctx, model.KindGame); err != nil {
		t.Fatalf("TrySync failed: %v", err)
	}

	stats, err := f.orchestrator.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if len(stats) != len(model.AllKinds) {
		t.Fatalf("expected %d entries, got %d", len(model.AllKinds), len(stats))
	}
	byKind := make(map[model.Kind]model.Stats, len(stats))
	for _, s := range stats {
		byKind[s.Kind] = s
	}
	if byKind[model.KindGame].Count != 1 {
		t.Errorf("game count = %d", byKind[model.KindGame].Count)
	}
	if byKind[model.KindPlay].Count != 0 {
		t.Errorf("play count = %d", byKind[model.KindPlay].Count)
	}
}

func TestTrySyncRejectsUnknownKind(t *testing.T) {
	f := newFixture(&fakeUpstream{})
	if _, err := f.orchestrator.TrySync(context.Background(), model.Kind("widget")); err == nil {
		t.Error("expected an error for an unknown kind")
	}
}
