package oddsfeed

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/playmoney-sportsbook/internal/board"
	"github.com/radieske/playmoney-sportsbook/internal/domain"
	"github.com/radieske/playmoney-sportsbook/pkg/oddsmath"
)

// FetchErrors conta falhas por esporte e endpoint; registrado pelo main
var FetchErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "oddsfeed_fetch_errors_total",
	Help: "falhas ao buscar o provedor de odds",
}, []string{"sport", "endpoint"})

// Options configura o cliente do provedor
type Options struct {
	BaseURL string
	APIKey  string
	Sports  []string
	Timeout time.Duration
}

// Feed busca jogos, odds e placares finais no provedor externo.
// Cada esporte é buscado de forma independente: a falha de um vira lista vazia só para ele.
type Feed struct {
	client *resty.Client
	apiKey string
	sports []string
	log    *zap.Logger
	now    func() time.Time

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func New(opts Options, log *zap.Logger) *Feed {
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(opts.BaseURL, "/")).
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json")

	return &Feed{
		client: client,
		apiKey: opts.APIKey,
		sports: opts.Sports,
		log:    log,
		now:    time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Sports retorna as chaves de esporte configuradas
func (f *Feed) Sports() []string { return append([]string(nil), f.sports...) }

// FetchAllGames junta os jogos de todos os esportes, ordenados por início
func (f *Feed) FetchAllGames(ctx context.Context) []domain.Game {
	perSport := fanOut(f.sports, func(sport string) []domain.Game {
		return f.fetchGames(ctx, sport)
	})

	var all []domain.Game
	for _, games := range perSport {
		all = append(all, games...)
	}
	board.SortByStart(all)
	return all
}

// FetchAllCompletedGames retorna só os jogos finalizados com os dois placares, por id
func (f *Feed) FetchAllCompletedGames(ctx context.Context) map[string]domain.Game {
	perSport := fanOut(f.sports, func(sport string) []domain.Game {
		return f.fetchCompleted(ctx, sport)
	})

	out := make(map[string]domain.Game)
	for _, games := range perSport {
		for _, g := range games {
			out[g.ID] = g
		}
	}
	return out
}

// fanOut executa fn por esporte em paralelo e devolve os resultados na ordem dos esportes
func fanOut(sports []string, fn func(sport string) []domain.Game) [][]domain.Game {
	results := make([][]domain.Game, len(sports))
	var wg sync.WaitGroup
	for i, sport := range sports {
		wg.Add(1)
		go func(i int, sport string) {
			defer wg.Done()
			results[i] = fn(sport)
		}(i, sport)
	}
	wg.Wait()
	return results
}

func (f *Feed) fetchGames(ctx context.Context, sport string) []domain.Game {
	var events []oddsEvent
	resp, err := f.client.R().
		SetContext(ctx).
		SetPathParam("sport", sport).
		SetQueryParams(map[string]string{
			"apiKey":     f.apiKey,
			"regions":    "us",
			"markets":    "h2h,spreads,totals",
			"oddsFormat": "american",
		}).
		SetResult(&events).
		Get("/v4/sports/{sport}/odds")
	if err = checkResponse(resp, err); err != nil {
		f.fail(sport, "odds", err)
		return nil
	}

	now := f.now()
	games := make([]domain.Game, 0, len(events))
	for _, ev := range events {
		g, err := normalizeGame(ev, now)
		if err != nil {
			f.log.Debug("skipping game", zap.String("sport", sport), zap.String("game_id", ev.ID), zap.Error(err))
			continue
		}
		games = append(games, g)
	}
	return games
}

func (f *Feed) fetchCompleted(ctx context.Context, sport string) []domain.Game {
	var events []scoreEvent
	resp, err := f.client.R().
		SetContext(ctx).
		SetPathParam("sport", sport).
		SetQueryParams(map[string]string{
			"apiKey":   f.apiKey,
			"daysFrom": "3",
		}).
		SetResult(&events).
		Get("/v4/sports/{sport}/scores")
	if err = checkResponse(resp, err); err != nil {
		f.fail(sport, "scores", err)
		return nil
	}

	var games []domain.Game
	for _, ev := range events {
		if !ev.Completed {
			continue
		}
		home, away, ok := finalScores(ev)
		if !ok {
			continue
		}
		completedAt := f.now()
		if ev.LastUpdate != nil {
			completedAt = *ev.LastUpdate
		}
		sp := Classify(ev.SportKey)
		games = append(games, domain.Game{
			ID:          ev.ID,
			SportKey:    ev.SportKey,
			Sport:       sp,
			HomeTeam:    ev.HomeTeam,
			AwayTeam:    ev.AwayTeam,
			StartTime:   ev.CommenceTime,
			Status:      domain.StatusFinal,
			HomeScore:   domain.Int(home),
			AwayScore:   domain.Int(away),
			CompletedAt: &completedAt,
			Periods:     f.breakdown(sp, home, away),
		})
	}
	return games
}

func checkResponse(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("provider returned %d", resp.StatusCode())
	}
	return nil
}

func (f *Feed) fail(sport, endpoint string, err error) {
	FetchErrors.WithLabelValues(sport, endpoint).Inc()
	f.log.Warn("odds provider fetch failed",
		zap.String("sport", sport),
		zap.String("endpoint", endpoint),
		zap.Error(err),
	)
}

// finalScores extrai os placares de casa e visitante; ok=false se faltar algum
func finalScores(ev scoreEvent) (home, away int, ok bool) {
	var gotHome, gotAway bool
	for _, s := range ev.Scores {
		v, err := strconv.Atoi(strings.TrimSpace(s.Score))
		if err != nil {
			continue
		}
		switch s.Name {
		case ev.HomeTeam:
			home, gotHome = v, true
		case ev.AwayTeam:
			away, gotAway = v, true
		}
	}
	return home, away, gotHome && gotAway
}

// normalizeGame converte um evento do provedor usando o primeiro bookmaker com moneyline
func normalizeGame(ev oddsEvent, now time.Time) (domain.Game, error) {
	g := domain.Game{
		ID:        ev.ID,
		SportKey:  ev.SportKey,
		Sport:     Classify(ev.SportKey),
		HomeTeam:  ev.HomeTeam,
		AwayTeam:  ev.AwayTeam,
		StartTime: ev.CommenceTime,
		Live:      domain.IsLive(ev.Live, ev.CommenceTime, now),
		Status:    domain.StatusScheduled,
	}
	if g.Live {
		g.Status = domain.StatusInProgress
	}

	var found bool
	for _, bm := range ev.Bookmakers {
		if applyMarkets(&g, ev, bm.Markets) {
			found = true
			break
		}
	}
	if !found {
		return domain.Game{}, fmt.Errorf("no moneyline for game %s", ev.ID)
	}
	return g, nil
}

// applyMarkets preenche as odds; retorna false se o bookmaker não tiver h2h válido
func applyMarkets(g *domain.Game, ev oddsEvent, markets []market) bool {
	var hasH2H bool
	for _, m := range markets {
		switch m.Key {
		case "h2h":
			for _, o := range m.Outcomes {
				dec, err := toDecimal(o.Price)
				if err != nil {
					continue
				}
				switch o.Name {
				case ev.HomeTeam:
					g.HomeOdds = dec
				case ev.AwayTeam:
					g.AwayOdds = dec
				case "Draw":
					g.DrawOdds = domain.Float(dec)
				}
			}
			hasH2H = g.HomeOdds > 0 && g.AwayOdds > 0
		case "spreads":
			var s domain.Spread
			for _, o := range m.Outcomes {
				dec, err := toDecimal(o.Price)
				if err != nil || o.Point == nil {
					continue
				}
				switch o.Name {
				case ev.HomeTeam:
					s.HomeLine, s.HomeOdds = *o.Point, dec
				case ev.AwayTeam:
					s.AwayLine, s.AwayOdds = *o.Point, dec
				}
			}
			if s.HomeOdds > 0 && s.AwayOdds > 0 {
				g.Spread = &s
			}
		case "totals":
			var t domain.Total
			for _, o := range m.Outcomes {
				dec, err := toDecimal(o.Price)
				if err != nil || o.Point == nil {
					continue
				}
				switch o.Name {
				case "Over":
					t.Line, t.OverOdds = *o.Point, dec
				case "Under":
					t.Line, t.UnderOdds = *o.Point, dec
				}
			}
			if t.OverOdds > 0 && t.UnderOdds > 0 {
				g.Total = &t
			}
		}
	}
	if !hasH2H {
		g.HomeOdds, g.AwayOdds, g.DrawOdds, g.Spread, g.Total = 0, 0, nil, nil, nil
	}
	return hasH2H
}

func toDecimal(price float64) (float64, error) {
	dec, err := oddsmath.AmericanToDecimal(int(math.Round(price)))
	if err != nil {
		return 0, err
	}
	return oddsmath.Round2(dec), nil
}

// Classify deriva o esporte do prefixo da chave do provedor
func Classify(sportKey string) domain.Sport {
	switch {
	case strings.HasPrefix(sportKey, "basketball"):
		return domain.SportBasketball
	case strings.HasPrefix(sportKey, "americanfootball"):
		return domain.SportFootball
	case strings.HasPrefix(sportKey, "baseball"):
		return domain.SportBaseball
	case strings.HasPrefix(sportKey, "icehockey"):
		return domain.SportHockey
	case strings.HasPrefix(sportKey, "soccer"):
		return domain.SportSoccer
	}
	return domain.SportOther
}

// Periods retorna quantos períodos o placar por período deve ter
func Periods(s domain.Sport) int {
	switch s {
	case domain.SportBasketball, domain.SportFootball:
		return 4
	case domain.SportHockey:
		return 3
	case domain.SportBaseball:
		return 9
	case domain.SportSoccer:
		return 2
	}
	return 4
}

// breakdown inventa um placar por período que soma o placar final (só cosmético)
func (f *Feed) breakdown(s domain.Sport, home, away int) []domain.PeriodScore {
	n := Periods(s)
	f.rndMu.Lock()
	hs := split(f.rnd, home, n)
	as := split(f.rnd, away, n)
	f.rndMu.Unlock()

	out := make([]domain.PeriodScore, n)
	for i := range out {
		out[i] = domain.PeriodScore{Period: i + 1, Home: hs[i], Away: as[i]}
	}
	return out
}

// split distribui total em n partes não negativas com soma exata
func split(rnd *rand.Rand, total, n int) []int {
	parts := make([]int, n)
	remaining := total
	for i := 0; i < n-1; i++ {
		left := n - i
		hi := remaining * 2 / left
		if hi > remaining {
			hi = remaining
		}
		p := rnd.Intn(hi + 1)
		parts[i] = p
		remaining -= p
	}
	parts[n-1] = remaining
	return parts
}
