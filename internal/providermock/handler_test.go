package providermock

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/playmoney-sportsbook/internal/domain"
	"github.com/radieske/playmoney-sportsbook/internal/oddsfeed"
)

var boot = time.Date(2026, 10, 15, 20, 0, 0, 0, time.UTC)

func TestCatalogLifecycle(t *testing.T) {
	c := NewCatalog(boot, 1, 5)

	odds := c.Odds("basketball_nba", boot)
	assert.Len(t, odds, 4, "the game that started 4h ago is over")

	scores := c.Scores("basketball_nba", boot)
	require.Len(t, scores, 2, "finished and live games")
	var completed int
	for _, s := range scores {
		if s.Completed {
			completed++
		}
		require.Len(t, s.Scores, 2)
	}
	assert.Equal(t, 1, completed)

	later := c.Scores("basketball_nba", boot.Add(48*time.Hour))
	assert.Len(t, later, 5)
	for _, s := range later {
		assert.True(t, s.Completed)
	}
}

func TestNoTiesWithoutDraw(t *testing.T) {
	c := NewCatalog(boot, 99, 20)
	for _, sport := range []string{"basketball_nba", "icehockey_nhl", "baseball_mlb"} {
		for _, f := range c.bySport[sport] {
			assert.NotEqual(t, f.finalHome, f.finalAway, f.id)
			assert.Zero(t, f.drawPrice)
		}
	}
	for _, f := range c.bySport["soccer_epl"] {
		assert.NotZero(t, f.drawPrice)
	}
}

func TestRouterRejects(t *testing.T) {
	s := NewServer(NewCatalog(boot, 1, 5), "secret", zap.NewNop())
	h := s.Router()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v4/sports/basketball_nba/odds?apiKey=nope", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v4/sports/cricket_ipl/odds?apiKey=secret", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// o feed real consegue consumir o mock de ponta a ponta
func TestFeedReadsMock(t *testing.T) {
	s := NewServer(NewCatalog(boot, 1, 5), "", zap.NewNop())
	s.now = func() time.Time { return boot }
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	feed := oddsfeed.New(oddsfeed.Options{BaseURL: srv.URL, APIKey: "k", Sports: Sports(), Timeout: time.Second}, zap.NewNop())

	games := feed.FetchAllGames(context.Background())
	assert.Len(t, games, 4*len(Sports()))
	for _, g := range games {
		assert.GreaterOrEqual(t, g.HomeOdds, 1.0)
		assert.NotNil(t, g.Spread)
		assert.NotNil(t, g.Total)
		if g.Sport == domain.SportSoccer {
			assert.NotNil(t, g.DrawOdds)
		}
	}

	done := feed.FetchAllCompletedGames(context.Background())
	assert.Len(t, done, len(Sports()))
	for _, g := range done {
		assert.True(t, g.HasFinalScore())
		assert.Equal(t, domain.StatusFinal, g.Status)
	}
}
