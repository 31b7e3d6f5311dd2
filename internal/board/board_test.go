package board

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/playmoney-sportsbook/internal/domain"
)

var t0 = time.Date(2026, 10, 15, 18, 0, 0, 0, time.UTC)

func TestBoardReplaceAndSnapshot(t *testing.T) {
	b := New()
	b.Replace([]domain.Game{
		{ID: "late", StartTime: t0.Add(2 * time.Hour)},
		{ID: "early", StartTime: t0},
	})

	snap := b.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "early", snap[0].ID)

	b.Replace([]domain.Game{{ID: "other", StartTime: t0}})
	_, ok := b.Get("early")
	assert.False(t, ok, "replace is wholesale, not a merge")
	assert.Equal(t, 1, b.Len())
}

func TestBoardMutateIsVisibleAndSnapshotsAreCopies(t *testing.T) {
	b := New()
	b.Replace([]domain.Game{{ID: "g1", HomeOdds: 2.0, HomeScore: domain.Int(0)}})

	snap := b.Snapshot()
	*snap[0].HomeScore = 7

	b.Mutate(func(games map[string]*domain.Game) {
		games["g1"].HomeOdds = 2.1
	})

	g, ok := b.Get("g1")
	require.True(t, ok)
	assert.Equal(t, 2.1, g.HomeOdds)
	assert.Equal(t, 0, *g.HomeScore)
}

type stubFetcher struct{ games []domain.Game }

func (s stubFetcher) FetchAllGames(context.Context) []domain.Game { return s.games }

type recordingCache struct{ got []domain.Game }

func (c *recordingCache) SetGames(_ context.Context, games []domain.Game) error {
	c.got = games
	return nil
}

func TestRefreshOnce(t *testing.T) {
	b := New()
	cache := &recordingCache{}
	var hooked int
	r := &Refresher{
		Board:   b,
		Fetcher: stubFetcher{games: []domain.Game{{ID: "g1"}, {ID: "g2"}}},
		Cache:   cache,
		Log:     zap.NewNop(),
		OnRefresh: func(_ context.Context, games []domain.Game) {
			hooked = len(games)
		},
	}

	r.RefreshOnce(context.Background())

	assert.Equal(t, 2, b.Len())
	assert.Len(t, cache.got, 2)
	assert.Equal(t, 2, hooked)
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Refresher{
		Board:    New(),
		Fetcher:  stubFetcher{games: []domain.Game{{ID: "g1"}}},
		Interval: time.Hour,
		Log:      zap.NewNop(),
	}

	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return r.Board.Len() == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("refresher did not stop")
	}
}
