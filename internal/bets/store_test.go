package bets

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/playmoney-sportsbook/internal/domain"
	"github.com/radieske/playmoney-sportsbook/internal/store"
)

func placed(id, user string) domain.PlacedBet {
	return domain.PlacedBet{
		BetSlipItem: domain.BetSlipItem{GameID: "g-" + id, Market: domain.MarketHome, Odds: 2, Stake: decimal.NewFromInt(5)},
		ID:          id,
		UserID:      user,
		PlacedAt:    time.Now(),
		Status:      domain.BetPending,
	}
}

func TestStoreFiltersByUser(t *testing.T) {
	s, err := Open(context.Background(), store.NewMemory(), zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, s.Append(context.Background(), placed("1", "ana"), placed("2", "bob")))
	require.NoError(t, s.Append(context.Background(), placed("3", "ana")))

	got := s.ForUser("ana")
	require.Len(t, got, 2)
	assert.Equal(t, "3", got[0].ID, "newest first")
	assert.Equal(t, "1", got[1].ID)
	assert.Empty(t, s.ForUser("carol"))
	assert.Len(t, s.Pending(), 3)
}

func TestResolveIsSingleTransition(t *testing.T) {
	s, err := Open(context.Background(), store.NewMemory(), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, s.Append(context.Background(), placed("1", "ana")))

	payout := decimal.NewFromInt(10)
	require.NoError(t, s.Resolve("1", domain.BetWon, &payout, time.Now()))
	assert.ErrorIs(t, s.Resolve("1", domain.BetLost, nil, time.Now()), ErrAlreadySettled)
	assert.ErrorIs(t, s.Resolve("nope", domain.BetLost, nil, time.Now()), ErrNotFound)
	assert.ErrorIs(t, s.Resolve("1", domain.BetPending, nil, time.Now()), ErrInvalidStatus)

	b, err := s.Get("1")
	require.NoError(t, err)
	assert.Equal(t, domain.BetWon, b.Status)
	assert.True(t, b.Payout.Equal(payout))
	assert.Empty(t, s.Pending())
}

func TestStoreReloads(t *testing.T) {
	kv := store.NewMemory()
	s, err := Open(context.Background(), kv, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, s.Append(context.Background(), placed("1", "ana")))
	require.NoError(t, s.Resolve("1", domain.BetLost, nil, time.Now()))
	require.NoError(t, s.Save(context.Background()))

	again, err := Open(context.Background(), kv, zap.NewNop())
	require.NoError(t, err)
	b, err := again.Get("1")
	require.NoError(t, err)
	assert.Equal(t, domain.BetLost, b.Status)
	assert.True(t, b.Stake.Equal(decimal.NewFromInt(5)))
}
