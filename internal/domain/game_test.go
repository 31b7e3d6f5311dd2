package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsLive(t *testing.T) {
	now := time.Date(2026, 10, 15, 20, 0, 0, 0, time.UTC)

	assert.True(t, IsLive(true, now.Add(24*time.Hour), now), "provider flag wins")
	assert.True(t, IsLive(false, now.Add(-time.Hour), now))
	assert.False(t, IsLive(false, now.Add(-3*time.Hour), now), "window is exclusive")
	assert.False(t, IsLive(false, now.Add(time.Minute), now))
}

func TestCloneDoesNotShareScores(t *testing.T) {
	g := Game{ID: "g1", HomeScore: Int(3), AwayScore: Int(1), DrawOdds: Float(3.1)}

	c := g.Clone()
	*c.HomeScore = 9
	*c.DrawOdds = 4

	assert.Equal(t, 3, *g.HomeScore)
	assert.Equal(t, 3.1, *g.DrawOdds)
	assert.True(t, c.HasFinalScore())
}

func TestMarket(t *testing.T) {
	assert.True(t, MarketSpreadAway.Valid())
	assert.False(t, Market("draw").Valid())
	assert.True(t, MarketUnder.NeedsLine())
	assert.False(t, MarketHome.NeedsLine())
}

func TestSelection(t *testing.T) {
	g := Game{HomeOdds: 1.8, AwayOdds: 2.1, Total: &Total{Line: 221.5, OverOdds: 1.95, UnderOdds: 1.87}}

	odds, line, ok := g.Selection(MarketAway)
	assert.True(t, ok)
	assert.Equal(t, 2.1, odds)
	assert.Nil(t, line)

	odds, line, ok = g.Selection(MarketUnder)
	assert.True(t, ok)
	assert.Equal(t, 1.87, odds)
	assert.Equal(t, 221.5, *line)

	_, _, ok = g.Selection(MarketSpreadHome)
	assert.False(t, ok, "no spread offered")
}
