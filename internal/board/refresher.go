package board

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/playmoney-sportsbook/internal/domain"
)

// GamesFetcher busca a lista atual de jogos
type GamesFetcher interface {
	FetchAllGames(ctx context.Context) []domain.Game
}

// SnapshotCache recebe a lista após cada refresh (ex.: Redis)
type SnapshotCache interface {
	SetGames(ctx context.Context, games []domain.Game) error
}

// Refresher recarrega o board periodicamente a partir do provedor
type Refresher struct {
	Board    *Board
	Fetcher  GamesFetcher
	Cache    SnapshotCache // opcional
	Interval time.Duration
	Log      *zap.Logger

	// OnRefresh é chamado após cada substituição (ex.: religar o simulador)
	OnRefresh func(ctx context.Context, games []domain.Game)
}

// Run faz um refresh imediato e depois um a cada Interval, até o ctx ser cancelado
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	r.RefreshOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			r.Log.Info("game refresher stopped")
			return
		case <-ticker.C:
			r.RefreshOnce(ctx)
		}
	}
}

// RefreshOnce busca e substitui os jogos
func (r *Refresher) RefreshOnce(ctx context.Context) {
	games := r.Fetcher.FetchAllGames(ctx)
	if ctx.Err() != nil {
		return
	}
	r.Board.Replace(games)
	r.Log.Info("games refreshed", zap.Int("count", len(games)))

	if r.Cache != nil {
		if err := r.Cache.SetGames(ctx, games); err != nil {
			r.Log.Warn("games cache set failed", zap.Error(err))
		}
	}
	if r.OnRefresh != nil {
		r.OnRefresh(ctx, games)
	}
}
