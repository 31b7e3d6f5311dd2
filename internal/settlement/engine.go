package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/playmoney-sportsbook/internal/domain"
	"github.com/radieske/playmoney-sportsbook/pkg/contracts/events"
)

// BetsSettled conta apostas liquidadas por resultado
var BetsSettled = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "settlement_bets_settled_total",
	Help: "Apostas liquidadas, por resultado",
}, []string{"result"})

// CompletedFetcher busca jogos finalizados por id. Falhas de rede já chegam como mapa vazio.
type CompletedFetcher interface {
	FetchAllCompletedGames(ctx context.Context) map[string]domain.Game
}

type BetStore interface {
	Pending() []domain.PlacedBet
	Resolve(id string, status domain.BetStatus, payout *decimal.Decimal, at time.Time) error
	Save(ctx context.Context) error
}

type Wallet interface {
	SettleBet(ctx context.Context, amount decimal.Decimal, won bool, description string) domain.Transaction
}

type EventPublisher interface {
	PublishBetSettled(ctx context.Context, e events.BetSettled) error
}

// Result resume uma rodada
type Result struct {
	Pending int
	Won     int
	Lost    int
}

// Engine gradua apostas pendentes contra placares finais
type Engine struct {
	games    CompletedFetcher
	bets     BetStore
	wallet   Wallet
	pub      EventPublisher
	interval time.Duration
	log      *zap.Logger
	now      func() time.Time
}

func New(games CompletedFetcher, bets BetStore, w Wallet, pub EventPublisher, interval time.Duration, log *zap.Logger) *Engine {
	return &Engine{
		games:    games,
		bets:     bets,
		wallet:   w,
		pub:      pub,
		interval: interval,
		log:      log,
		now:      time.Now,
	}
}

// Start roda uma vez na hora e depois a cada intervalo, até o ctx acabar
func (e *Engine) Start(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	e.run(ctx)

	for {
		select {
		case <-ticker.C:
			e.run(ctx)
		case <-ctx.Done():
			e.log.Info("settlement engine stopped")
			return
		}
	}
}

func (e *Engine) run(ctx context.Context) {
	res, err := e.RunOnce(ctx)
	if err != nil {
		e.log.Error("settlement cycle failed", zap.Error(err))
		return
	}
	if res.Won+res.Lost > 0 {
		e.log.Info("settlement cycle done",
			zap.Int("pending", res.Pending),
			zap.Int("won", res.Won),
			zap.Int("lost", res.Lost),
		)
	}
}

// RunOnce executa um ciclo. Nenhum panic escapa; apostas sem jogo ou placar ficam pendentes.
func (e *Engine) RunOnce(ctx context.Context) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in settlement cycle: %v", r)
		}
	}()

	pending := e.bets.Pending()
	res.Pending = len(pending)
	if len(pending) == 0 {
		return res, nil
	}

	completed := e.games.FetchAllCompletedGames(ctx)
	if ctx.Err() != nil {
		return res, ctx.Err()
	}
	if len(completed) == 0 {
		return res, nil
	}

	at := e.now()
	for _, bet := range pending {
		g, ok := completed[bet.GameID]
		if !ok || !g.HasFinalScore() {
			continue
		}
		won, ok := Evaluate(bet.BetSlipItem, *g.HomeScore, *g.AwayScore)
		if !ok {
			e.log.Warn("bet left pending, market cannot be graded",
				zap.String("bet_id", bet.ID), zap.String("market", string(bet.Market)))
			continue
		}

		var payout *decimal.Decimal
		status := domain.BetLost
		if won {
			p := Payout(bet.Stake, bet.Odds)
			payout, status = &p, domain.BetWon
		}
		if err := e.bets.Resolve(bet.ID, status, payout, at); err != nil {
			e.log.Warn("bet resolve skipped", zap.String("bet_id", bet.ID), zap.Error(err))
			continue
		}
		if won {
			e.wallet.SettleBet(ctx, *payout, true, "Won: "+bet.Description())
			res.Won++
		} else {
			res.Lost++
		}
		BetsSettled.WithLabelValues(string(status)).Inc()
		e.publish(ctx, bet, status, payout, g, at)
	}
	res.Pending -= res.Won + res.Lost

	if res.Won+res.Lost > 0 {
		if err := e.bets.Save(ctx); err != nil {
			return res, fmt.Errorf("save settled bets: %w", err)
		}
	}
	return res, nil
}

func (e *Engine) publish(ctx context.Context, bet domain.PlacedBet, status domain.BetStatus, payout *decimal.Decimal, g domain.Game, at time.Time) {
	ev := events.BetSettled{
		BetID:     bet.ID,
		UserID:    bet.UserID,
		GameID:    bet.GameID,
		Status:    string(status),
		HomeScore: *g.HomeScore,
		AwayScore: *g.AwayScore,
		Ts:        at,
	}
	if payout != nil {
		ev.Payout = payout.StringFixed(2)
	}
	if err := e.pub.PublishBetSettled(ctx, ev); err != nil {
		e.log.Warn("bet_settled publish failed", zap.String("bet_id", bet.ID), zap.Error(err))
	}
}

// Evaluate decide se a seleção venceu. ok=false quando o mercado não pode ser graduado.
// Empate exato no total perde tanto no over quanto no under.
func Evaluate(item domain.BetSlipItem, home, away int) (won, ok bool) {
	h, a := float64(home), float64(away)
	switch item.Market {
	case domain.MarketHome:
		return home > away, true
	case domain.MarketAway:
		return away > home, true
	}

	if item.Line == nil {
		return false, false
	}
	line := *item.Line
	switch item.Market {
	case domain.MarketSpreadHome:
		return h+line > a, true
	case domain.MarketSpreadAway:
		return a+line > h, true
	case domain.MarketOver:
		return h+a > line, true
	case domain.MarketUnder:
		return h+a < line, true
	}
	return false, false
}

// Payout é stake × odds decimais, em centavos
func Payout(stake decimal.Decimal, odds float64) decimal.Decimal {
	return stake.Mul(decimal.NewFromFloat(odds)).Round(2)
}
