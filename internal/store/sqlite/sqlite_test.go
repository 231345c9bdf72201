package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/unsentapp/unsent-server/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := New(dbPath)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestCreateAndGetStar(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	created, err := st.CreateStar(ctx, &store.Star{
		ID:           "star-1",
		Text:         "i never said goodbye",
		Emotion:      "grief",
		EmotionScore: -0.8,
		Lat:          12.5,
		Lng:          -45.25,
	})
	if err != nil {
		t.Fatalf("create star: %v", err)
	}
	if created.ID != "star-1" || created.Emotion != "grief" {
		t.Fatalf("unexpected created star: %+v", created)
	}
	if created.CreatedAt.IsZero() {
		t.Fatal("created_at not set")
	}

	got, err := st.GetStar(ctx, "star-1")
	if err != nil {
		t.Fatalf("get star: %v", err)
	}
	if got.Text != "i never said goodbye" || got.Lat != 12.5 || got.Lng != -45.25 {
		t.Fatalf("unexpected star: %+v", got)
	}
}

func TestGetStarNotFound(t *testing.T) {
	st := newTestStore(t)

	_, err := st.GetStar(context.Background(), "ghost")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListStarsNewestFirst(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i, id := range []string{"old", "mid", "new"} {
		_, err := st.CreateStar(ctx, &store.Star{
			ID:        id,
			Text:      id,
			Emotion:   "hope",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("create star %s: %v", id, err)
		}
	}

	stars, err := st.ListStars(ctx)
	if err != nil {
		t.Fatalf("list stars: %v", err)
	}
	if len(stars) != 3 {
		t.Fatalf("expected 3 stars, got %d", len(stars))
	}
	if stars[0].ID != "new" || stars[2].ID != "old" {
		t.Fatalf("unexpected order: %s, %s, %s", stars[0].ID, stars[1].ID, stars[2].ID)
	}
}

func TestListStarsByEmotionAndConstellation(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	seed := []store.Star{
		{ID: "r1", Text: "i am sorry", Emotion: "regret", ConstellationID: "c-1"},
		{ID: "r2", Text: "my mistake", Emotion: "regret", ConstellationID: "c-1"},
		{ID: "h1", Text: "maybe someday", Emotion: "hope", ConstellationID: "c-2"},
	}
	for i := range seed {
		if _, err := st.CreateStar(ctx, &seed[i]); err != nil {
			t.Fatalf("create star %s: %v", seed[i].ID, err)
		}
	}

	regrets, err := st.ListStarsByEmotion(ctx, "regret")
	if err != nil {
		t.Fatalf("list by emotion: %v", err)
	}
	if len(regrets) != 2 {
		t.Fatalf("expected 2 regret stars, got %d", len(regrets))
	}

	grouped, err := st.ListStarsByConstellation(ctx, "c-1")
	if err != nil {
		t.Fatalf("list by constellation: %v", err)
	}
	if len(grouped) != 2 {
		t.Fatalf("expected 2 grouped stars, got %d", len(grouped))
	}
	for _, s := range grouped {
		if s.ConstellationID != "c-1" {
			t.Fatalf("wrong constellation: %+v", s)
		}
	}

	none, err := st.ListStarsByConstellation(ctx, "ghost")
	if err != nil {
		t.Fatalf("list by unknown constellation: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no stars, got %d", len(none))
	}
}

func TestDeleteStarsBefore(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	_, err := st.CreateStar(ctx, &store.Star{
		ID: "stale", Text: "old", Emotion: "regret", CreatedAt: now.Add(-48 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create stale star: %v", err)
	}
	_, err = st.CreateStar(ctx, &store.Star{
		ID: "fresh", Text: "new", Emotion: "love", CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("create fresh star: %v", err)
	}

	deleted, err := st.DeleteStarsBefore(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("delete stars: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deleted, got %d", deleted)
	}

	if _, err := st.GetStar(ctx, "stale"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("stale star should be gone, got %v", err)
	}
	if _, err := st.GetStar(ctx, "fresh"); err != nil {
		t.Fatalf("fresh star should remain: %v", err)
	}
}
