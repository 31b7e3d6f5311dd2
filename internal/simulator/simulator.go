package simulator

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/playmoney-sportsbook/internal/board"
	"github.com/radieske/playmoney-sportsbook/internal/domain"
	"github.com/radieske/playmoney-sportsbook/pkg/contracts/events"
	"github.com/radieske/playmoney-sportsbook/pkg/oddsmath"
)

const (
	MinOdds = 1.20
	MaxOdds = 5.00

	touchChance = 0.6
	scoreChance = 0.3
	minDelta    = 0.05
	maxDelta    = 0.15
)

// ActiveChanges mostra quantas marcações de mudança estão visíveis agora
var ActiveChanges = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "simulator_active_changes",
	Help: "Mudanças de odds dentro da janela de destaque",
})

// Broadcaster recebe cada tick com mudanças (Redis Pub/Sub, hub WebSocket)
type Broadcaster interface {
	BroadcastTick(ctx context.Context, tick events.OddsTick) error
}

// Options controla o ritmo do simulador; zero usa os padrões
type Options struct {
	MinInterval    time.Duration // 5s
	MaxInterval    time.Duration // 8s
	ClearAfter     time.Duration // 2s
	ImminentWindow time.Duration // 2h
	Seed           int64
}

func (o Options) withDefaults() Options {
	if o.MinInterval <= 0 {
		o.MinInterval = 5 * time.Second
	}
	if o.MaxInterval < o.MinInterval {
		o.MaxInterval = o.MinInterval + 3*time.Second
	}
	if o.ClearAfter <= 0 {
		o.ClearAfter = 2 * time.Second
	}
	if o.ImminentWindow <= 0 {
		o.ImminentWindow = 2 * time.Hour
	}
	if o.Seed == 0 {
		o.Seed = time.Now().UnixNano()
	}
	return o
}

// Simulator perturba odds e placares dos jogos ao vivo ou próximos, direto no board.
type Simulator struct {
	board *board.Board
	out   []Broadcaster
	log   *zap.Logger
	opts  Options
	now   func() time.Time

	mu         sync.Mutex
	rnd        *rand.Rand
	changes    map[string]events.OddsChange
	version    int
	clearTimer *time.Timer
	cancel     context.CancelFunc
	done       chan struct{}
}

func New(b *board.Board, log *zap.Logger, opts Options, out ...Broadcaster) *Simulator {
	opts = opts.withDefaults()
	return &Simulator{
		board:   b,
		out:     out,
		log:     log,
		opts:    opts,
		now:     time.Now,
		rnd:     rand.New(rand.NewSource(opts.Seed)),
		changes: make(map[string]events.OddsChange),
	}
}

// Start liga o loop. Com o board vazio não agenda nada e retorna.
// Chamar de novo com o loop rodando não tem efeito.
func (s *Simulator) Start(ctx context.Context) {
	if s.board.Len() == 0 {
		s.log.Debug("simulator not started, no games")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.loop(ctx, s.done)
	s.log.Info("odds simulator started")
}

// Stop cancela o timer e espera o loop terminar
func (s *Simulator) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done

	s.mu.Lock()
	if s.clearTimer != nil {
		s.clearTimer.Stop()
	}
	s.mu.Unlock()
	s.clearChanges()
}

// Running indica se o loop está agendado
func (s *Simulator) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

func (s *Simulator) loop(ctx context.Context, done chan struct{}) {
	defer func() {
		s.mu.Lock()
		if s.done == done {
			s.cancel, s.done = nil, nil
		}
		s.mu.Unlock()
		close(done)
	}()

	// timer rearmado a cada rodada, nunca um ticker fixo
	timer := time.NewTimer(s.nextInterval())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("odds simulator stopped")
			return
		case <-timer.C:
			if !s.Tick(ctx) {
				s.log.Info("odds simulator idle, board is empty")
				return
			}
			timer.Reset(s.nextInterval())
		}
	}
}

func (s *Simulator) nextInterval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	span := int64(s.opts.MaxInterval - s.opts.MinInterval)
	if span <= 0 {
		return s.opts.MinInterval
	}
	return s.opts.MinInterval + time.Duration(s.rnd.Int63n(span+1))
}

// Tick aplica uma rodada de perturbações. Retorna false se o board estiver vazio.
func (s *Simulator) Tick(ctx context.Context) bool {
	now := s.now()
	var (
		empty   bool
		changes []events.OddsChange
		scores  []events.ScoreBump
	)

	s.mu.Lock()
	s.board.Mutate(func(games map[string]*domain.Game) {
		if len(games) == 0 {
			empty = true
			return
		}
		for _, g := range games {
			if !s.eligible(g, now) {
				continue
			}
			changes = append(changes, s.perturb(g, now)...)
			if g.Live {
				if bump, ok := s.bumpScore(g); ok {
					scores = append(scores, bump)
				}
			}
		}
	})
	if empty {
		s.mu.Unlock()
		return false
	}
	for _, c := range changes {
		s.changes[c.Key] = c
	}
	s.version++
	version := s.version
	active := len(s.changes)
	s.armClearLocked()
	s.mu.Unlock()

	ActiveChanges.Set(float64(active))

	if len(changes) == 0 && len(scores) == 0 {
		return true
	}
	tick := events.OddsTick{Changes: changes, Scores: scores, Version: version, UpdatedAt: now.UTC()}
	for _, b := range s.out {
		if err := b.BroadcastTick(ctx, tick); err != nil {
			s.log.Warn("odds tick broadcast failed", zap.Int("version", version), zap.Error(err))
		}
	}
	s.log.Debug("odds tick", zap.Int("changes", len(changes)), zap.Int("scores", len(scores)))
	return true
}

// eligible: ao vivo ou começando dentro da janela
func (s *Simulator) eligible(g *domain.Game, now time.Time) bool {
	if g.Live {
		return true
	}
	until := g.StartTime.Sub(now)
	return until >= 0 && until <= s.opts.ImminentWindow
}

func (s *Simulator) perturb(g *domain.Game, now time.Time) []events.OddsChange {
	var out []events.OddsChange
	touch := func(field string, v *float64) {
		if s.rnd.Float64() >= touchChance {
			return
		}
		delta := minDelta + s.rnd.Float64()*(maxDelta-minDelta)
		if s.rnd.Intn(2) == 0 {
			delta = -delta
		}
		old := *v
		*v = oddsmath.Round2(oddsmath.Clamp(old+delta, MinOdds, MaxOdds))
		out = append(out, events.OddsChange{
			Key:       g.ID + "-" + field,
			GameID:    g.ID,
			Field:     field,
			Direction: direction(old, *v),
			OldValue:  old,
			NewValue:  *v,
			At:        now,
		})
	}

	touch("home", &g.HomeOdds)
	touch("away", &g.AwayOdds)
	if g.DrawOdds != nil {
		touch("draw", g.DrawOdds)
	}
	return out
}

func (s *Simulator) bumpScore(g *domain.Game) (events.ScoreBump, bool) {
	var bumped bool
	if s.rnd.Float64() < scoreChance {
		g.HomeScore = domain.Int(score(g.HomeScore) + 1)
		bumped = true
	}
	if s.rnd.Float64() < scoreChance {
		g.AwayScore = domain.Int(score(g.AwayScore) + 1)
		bumped = true
	}
	if !bumped {
		return events.ScoreBump{}, false
	}
	return events.ScoreBump{GameID: g.ID, HomeScore: score(g.HomeScore), AwayScore: score(g.AwayScore)}, true
}

func score(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func direction(old, cur float64) string {
	switch {
	case cur > old:
		return events.DirectionUp
	case cur < old:
		return events.DirectionDown
	}
	return events.DirectionNone
}

// armClearLocked agenda a limpeza das marcações; a janela recomeça a cada tick
func (s *Simulator) armClearLocked() {
	if s.clearTimer != nil {
		s.clearTimer.Stop()
	}
	s.clearTimer = time.AfterFunc(s.opts.ClearAfter, s.clearChanges)
}

func (s *Simulator) clearChanges() {
	s.mu.Lock()
	s.changes = make(map[string]events.OddsChange)
	s.mu.Unlock()
	ActiveChanges.Set(0)
}

// Changes retorna as marcações ainda visíveis, por chave {gameId}-{campo}
func (s *Simulator) Changes() map[string]events.OddsChange {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]events.OddsChange, len(s.changes))
	for k, v := range s.changes {
		out[k] = v
	}
	return out
}
