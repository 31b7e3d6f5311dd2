package wallet

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/playmoney-sportsbook/internal/domain"
	"github.com/radieske/playmoney-sportsbook/internal/store"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newLedger(t *testing.T, starting string) (*Ledger, *store.Memory) {
	t.Helper()
	st := store.NewMemory()
	l, err := Open(context.Background(), st, zap.NewNop(), d(starting))
	require.NoError(t, err)
	return l, st
}

func TestPlaceBetInsufficientFunds(t *testing.T) {
	l, _ := newLedger(t, "100")

	ok := l.PlaceBet(context.Background(), d("100.01"), "too much")

	assert.False(t, ok)
	assert.True(t, l.Balance().Equal(d("100")))
	assert.Empty(t, l.Transactions())
}

func TestPlaceBetDebits(t *testing.T) {
	l, _ := newLedger(t, "100")

	ok := l.PlaceBet(context.Background(), d("40"), "Lakers @ Celtics")

	require.True(t, ok)
	assert.True(t, l.Balance().Equal(d("60")))
	txs := l.Transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, domain.TxBetPlaced, txs[0].Kind)
	assert.True(t, txs[0].Amount.Equal(d("-40")))
	assert.True(t, txs[0].Balance.Equal(l.Balance()))
}

func TestPlaceBetWholeBalance(t *testing.T) {
	l, _ := newLedger(t, "25")

	assert.True(t, l.PlaceBet(context.Background(), d("25"), "all in"))
	assert.True(t, l.Balance().IsZero())
}

func TestPlaceBetsIsAllOrNothing(t *testing.T) {
	l, _ := newLedger(t, "50")

	ok := l.PlaceBets(context.Background(), []Debit{
		{Amount: d("30"), Description: "a"},
		{Amount: d("30"), Description: "b"},
	})

	assert.False(t, ok)
	assert.True(t, l.Balance().Equal(d("50")))
	assert.Empty(t, l.Transactions())

	ok = l.PlaceBets(context.Background(), []Debit{
		{Amount: d("20"), Description: "a"},
		{Amount: d("30"), Description: "b"},
	})
	require.True(t, ok)
	assert.Len(t, l.Transactions(), 2)
	assert.True(t, l.Balance().IsZero())
}

func TestSettleBet(t *testing.T) {
	l, _ := newLedger(t, "100")
	ctx := context.Background()
	require.True(t, l.PlaceBet(ctx, d("10"), "bet"))

	won := l.SettleBet(ctx, d("25.5"), true, "won")
	assert.Equal(t, domain.TxBetWon, won.Kind)
	assert.True(t, l.Balance().Equal(d("115.5")))

	lost := l.SettleBet(ctx, d("10"), false, "lost")
	assert.Equal(t, domain.TxBetLost, lost.Kind)
	assert.True(t, lost.Amount.IsZero())
	assert.True(t, lost.Balance.Equal(d("115.5")))
	assert.True(t, l.Balance().Equal(d("115.5")))
}

func TestAddFunds(t *testing.T) {
	l, _ := newLedger(t, "0")

	_, err := l.AddFunds(context.Background(), d("0"))
	assert.ErrorIs(t, err, ErrInvalidAmount)

	tx, err := l.AddFunds(context.Background(), d("75"))
	require.NoError(t, err)
	assert.Equal(t, domain.TxDeposit, tx.Kind)
	assert.True(t, tx.Balance.Equal(d("75")))
}

func TestAuditTrailReplays(t *testing.T) {
	l, _ := newLedger(t, "100")
	ctx := context.Background()

	_, err := l.AddFunds(ctx, d("50"))
	require.NoError(t, err)
	require.True(t, l.PlaceBet(ctx, d("30"), "a"))
	l.SettleBet(ctx, d("57"), true, "a won")
	require.True(t, l.PlaceBet(ctx, d("20"), "b"))
	l.SettleBet(ctx, d("20"), false, "b lost")

	require.NoError(t, l.Verify())

	txs := l.Transactions()
	require.Len(t, txs, 5)
	assert.Equal(t, domain.TxBetLost, txs[0].Kind, "newest first")
	assert.Equal(t, domain.TxDeposit, txs[4].Kind)

	s := l.State()
	s.Transactions[2].Balance = d("1")
	assert.ErrorIs(t, Verify(s), ErrAuditMismatch)
}

func TestStateSurvivesReopen(t *testing.T) {
	l, st := newLedger(t, "100")
	require.True(t, l.PlaceBet(context.Background(), d("12.34"), "x"))

	reopened, err := Open(context.Background(), st, zap.NewNop(), d("999"))
	require.NoError(t, err)

	assert.True(t, reopened.Balance().Equal(d("87.66")))
	assert.Len(t, reopened.Transactions(), 1)
	assert.NoError(t, reopened.Verify())
}
