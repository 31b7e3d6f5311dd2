package settlement

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/playmoney-sportsbook/internal/bets"
	"github.com/radieske/playmoney-sportsbook/internal/domain"
	"github.com/radieske/playmoney-sportsbook/internal/store"
	"github.com/radieske/playmoney-sportsbook/internal/wallet"
	"github.com/radieske/playmoney-sportsbook/pkg/contracts/events"
)

func TestEvaluate(t *testing.T) {
	line := func(v float64) *float64 { return &v }
	cases := []struct {
		name       string
		market     domain.Market
		line       *float64
		home, away int
		won, ok    bool
	}{
		{"home wins", domain.MarketHome, nil, 101, 99, true, true},
		{"home tie loses", domain.MarketHome, nil, 1, 1, false, true},
		{"away wins", domain.MarketAway, nil, 0, 2, true, true},
		{"spread home covers", domain.MarketSpreadHome, line(3.5), 10, 12, true, true},
		{"spread home favourite fails", domain.MarketSpreadHome, line(-3.5), 10, 7, false, true},
		{"spread away covers", domain.MarketSpreadAway, line(-1.5), 1, 3, true, true},
		{"over wins", domain.MarketOver, line(44.5), 20, 25, true, true},
		{"over exact tie loses", domain.MarketOver, line(45), 20, 25, false, true},
		{"under exact tie loses", domain.MarketUnder, line(45), 20, 25, false, true},
		{"under wins", domain.MarketUnder, line(45.5), 20, 25, true, true},
		{"missing line", domain.MarketOver, nil, 20, 25, false, false},
		{"unknown market", domain.Market("parlay"), line(1), 1, 0, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			won, ok := Evaluate(domain.BetSlipItem{Market: tc.market, Line: tc.line}, tc.home, tc.away)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.won, won)
		})
	}
}

func TestPayout(t *testing.T) {
	assert.True(t, Payout(decimal.RequireFromString("10"), 1.91).Equal(decimal.RequireFromString("19.1")))
	assert.True(t, Payout(decimal.RequireFromString("3.33"), 2.5).Equal(decimal.RequireFromString("8.33")))
}

type fakeGames struct {
	games map[string]domain.Game
	panic bool
	calls int
}

func (f *fakeGames) FetchAllCompletedGames(context.Context) map[string]domain.Game {
	f.calls++
	if f.panic {
		panic("provider exploded")
	}
	return f.games
}

type settledRecorder struct{ got []events.BetSettled }

func (r *settledRecorder) PublishBetSettled(_ context.Context, e events.BetSettled) error {
	r.got = append(r.got, e)
	return nil
}

type env struct {
	engine *Engine
	games  *fakeGames
	bets   *bets.Store
	ledger *wallet.Ledger
	kv     *store.Memory
	pub    *settledRecorder
}

func final(id string, home, away int) domain.Game {
	return domain.Game{ID: id, Status: domain.StatusFinal, HomeScore: domain.Int(home), AwayScore: domain.Int(away)}
}

func newEnv(t *testing.T, placed ...domain.PlacedBet) env {
	t.Helper()
	ctx := context.Background()
	kv := store.NewMemory()
	ledger, err := wallet.Open(ctx, kv, zap.NewNop(), decimal.NewFromInt(100))
	require.NoError(t, err)
	bs, err := bets.Open(ctx, kv, zap.NewNop())
	require.NoError(t, err)
	if len(placed) > 0 {
		require.NoError(t, bs.Append(ctx, placed...))
	}

	games := &fakeGames{games: map[string]domain.Game{}}
	pub := &settledRecorder{}
	e := New(games, bs, ledger, pub, time.Minute, zap.NewNop())
	return env{engine: e, games: games, bets: bs, ledger: ledger, kv: kv, pub: pub}
}

func bet(id, gameID string, market domain.Market, line *float64, stake string, odds float64) domain.PlacedBet {
	return domain.PlacedBet{
		BetSlipItem: domain.BetSlipItem{GameID: gameID, Market: market, Line: line, Odds: odds, Stake: decimal.RequireFromString(stake)},
		ID:          id,
		UserID:      "ana",
		Status:      domain.BetPending,
	}
}

func TestRunOnceSettles(t *testing.T) {
	e := newEnv(t,
		bet("b1", "g1", domain.MarketSpreadHome, domain.Float(3.5), "10", 1.91),
		bet("b2", "g2", domain.MarketOver, domain.Float(45), "5", 1.9),
		bet("b3", "g3", domain.MarketHome, nil, "5", 2),
		bet("b4", "g4", domain.MarketHome, nil, "5", 2),
	)
	e.games.games["g1"] = final("g1", 10, 12)
	e.games.games["g2"] = final("g2", 20, 25)
	e.games.games["g4"] = domain.Game{ID: "g4", Status: domain.StatusFinal, HomeScore: domain.Int(3)}
	savesBefore := e.kv.Saves()

	res, err := e.engine.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Pending: 2, Won: 1, Lost: 1}, res)

	b1, _ := e.bets.Get("b1")
	assert.Equal(t, domain.BetWon, b1.Status)
	require.NotNil(t, b1.Payout)
	assert.True(t, b1.Payout.Equal(decimal.RequireFromString("19.1")))
	require.NotNil(t, b1.SettledAt)

	b2, _ := e.bets.Get("b2")
	assert.Equal(t, domain.BetLost, b2.Status)
	assert.Nil(t, b2.Payout)

	for _, id := range []string{"b3", "b4"} {
		b, _ := e.bets.Get(id)
		assert.Equal(t, domain.BetPending, b.Status, "no game or no score stays pending")
	}

	assert.True(t, e.ledger.Balance().Equal(decimal.RequireFromString("119.1")))
	txs := e.ledger.Transactions()
	require.Len(t, txs, 1, "losses do not touch the wallet")
	assert.Equal(t, domain.TxBetWon, txs[0].Kind)

	require.Len(t, e.pub.got, 2)
	assert.Greater(t, e.kv.Saves(), savesBefore)

	// bets liquidadas não são graduadas de novo
	again, err := e.engine.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Pending: 2}, again)
	assert.True(t, e.ledger.Balance().Equal(decimal.RequireFromString("119.1")))
}

func TestRunOnceWithoutChangesDoesNotWrite(t *testing.T) {
	e := newEnv(t, bet("b1", "g1", domain.MarketHome, nil, "10", 2))
	saves := e.kv.Saves()

	res, err := e.engine.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Pending: 1}, res)
	assert.Equal(t, saves, e.kv.Saves())
}

func TestRunOnceSkipsFetchWithNoPendingBets(t *testing.T) {
	e := newEnv(t)
	_, err := e.engine.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, e.games.calls)
}

func TestRunOnceRecoversPanic(t *testing.T) {
	e := newEnv(t, bet("b1", "g1", domain.MarketHome, nil, "10", 2))
	e.games.panic = true

	_, err := e.engine.RunOnce(context.Background())
	assert.ErrorContains(t, err, "provider exploded")

	b, _ := e.bets.Get("b1")
	assert.Equal(t, domain.BetPending, b.Status)
}

func TestStartRunsEagerlyAndStops(t *testing.T) {
	e := newEnv(t, bet("b1", "g1", domain.MarketAway, nil, "10", 2))
	e.games.games["g1"] = final("g1", 1, 2)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.engine.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		b, _ := e.bets.Get("b1")
		return b.Status == domain.BetWon
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("engine did not stop")
	}
}
