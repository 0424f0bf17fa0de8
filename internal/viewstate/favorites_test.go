package viewstate

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/matchcenter/internal/domain/fixture"
	"github.com/riskibarqy/matchcenter/internal/infrastructure/repository/memory"
)

func TestFavorites_TogglePersists(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.NewPreferenceStore()
	h := NewFavorites(ctx, store, nil)

	if !h.Toggle(ctx, "ars") || !h.Toggle(ctx, "che") {
		t.Fatalf("expected first toggles to add")
	}
	if h.Toggle(ctx, "ars") {
		t.Fatalf("expected second toggle to remove")
	}

	restored := NewFavorites(ctx, store, nil)
	if got := restored.IDs(); len(got) != 1 || got[0] != "che" {
		t.Fatalf("unexpected restored favourites: %v", got)
	}
	if !restored.IsFavorite("che") || restored.IsFavorite("ars") {
		t.Fatalf("unexpected favourite flags")
	}
}

func TestFavorites_Upcoming(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := NewFavorites(ctx, nil, nil)
	h.Toggle(ctx, "ars")

	at := func(f fixture.Fixture, d time.Duration) fixture.Fixture {
		f.DateTime = testNow.Add(d)
		return f
	}
	fixtures := []fixture.Fixture{
		at(makeFixture("late", fixture.StatusScheduled, "ars", "che"), 72*time.Hour),
		at(makeFixture("soon", fixture.StatusScheduled, "liv", "ars"), 2*time.Hour),
		at(makeFixture("other", fixture.StatusScheduled, "liv", "che"), time.Hour),
		at(makeFixture("past", fixture.StatusScheduled, "ars", "liv"), -time.Hour),
		at(makeFixture("far", fixture.StatusScheduled, "ars", "liv"), 10*24*time.Hour),
		at(makeFixture("playing", fixture.StatusLive, "ars", "liv"), time.Hour),
	}

	got := h.Upcoming(fixtures, testNow, 7)
	if len(got) != 2 || got[0].ID != "soon" || got[1].ID != "late" {
		t.Fatalf("unexpected upcoming fixtures: %+v", got)
	}
	if all := h.FavoriteFixtures(fixtures); len(all) != 5 {
		t.Fatalf("expected 5 favourite fixtures, got %d", len(all))
	}
}

func TestRecordFor(t *testing.T) {
	t.Parallel()

	scored := func(id, status, home, away string, hs, as int) fixture.Fixture {
		f := makeFixture(id, status, home, away)
		f.HomeScore, f.AwayScore = intPtr(hs), intPtr(as)
		return f
	}
	fixtures := []fixture.Fixture{
		scored("w1", fixture.StatusFinished, "ars", "che", 2, 0),
		scored("w2", fixture.StatusFinished, "liv", "ars", 1, 3),
		scored("d1", fixture.StatusFinished, "ars", "tot", 1, 1),
		scored("l1", fixture.StatusFinished, "mci", "ars", 2, 1),
		scored("live", fixture.StatusLive, "ars", "new", 0, 5),
		makeFixture("unscored", fixture.StatusFinished, "ars", "bha"),
	}

	rec := RecordFor(fixtures, "ars")
	want := TeamRecord{TeamID: "ars", Played: 4, Wins: 2, Draws: 1, Losses: 1, WinRate: 50}
	if rec != want {
		t.Fatalf("unexpected record: got %+v want %+v", rec, want)
	}

	if rec := RecordFor(fixtures[:3], "che"); rec.Played != 1 || rec.Losses != 1 || rec.WinRate != 0 {
		t.Fatalf("unexpected record for che: %+v", rec)
	}

	rec = RecordFor([]fixture.Fixture{
		scored("a", fixture.StatusFinished, "x", "y", 1, 0),
		scored("b", fixture.StatusFinished, "x", "y", 0, 0),
		scored("c", fixture.StatusFinished, "x", "y", 0, 0),
	}, "x")
	if rec.WinRate != 33.3 {
		t.Fatalf("expected one decimal win rate, got %v", rec.WinRate)
	}
}
