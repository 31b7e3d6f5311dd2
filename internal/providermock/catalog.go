package providermock

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"time"

	"github.com/radieske/playmoney-sportsbook/pkg/oddsmath"
)

type profile struct {
	teams    []string
	duration time.Duration
	lo, hi   int // faixa do placar final por time
	draw     bool
	runLine  float64 // linha fixa (hóquei, beisebol, futebol); 0 = linha calculada
}

var profiles = map[string]profile{
	"basketball_nba": {
		teams:    []string{"Boston Celtics", "Los Angeles Lakers", "Miami Heat", "Chicago Bulls", "Denver Nuggets", "Golden State Warriors", "New York Knicks", "Phoenix Suns"},
		duration: 2*time.Hour + 30*time.Minute,
		lo:       90,
		hi:       130,
	},
	"americanfootball_nfl": {
		teams:    []string{"Kansas City Chiefs", "Buffalo Bills", "Dallas Cowboys", "Green Bay Packers", "San Francisco 49ers", "Philadelphia Eagles"},
		duration: 3*time.Hour + 15*time.Minute,
		lo:       3,
		hi:       38,
	},
	"baseball_mlb": {
		teams:    []string{"New York Yankees", "Los Angeles Dodgers", "Boston Red Sox", "Chicago Cubs", "Houston Astros", "Atlanta Braves"},
		duration: 3 * time.Hour,
		lo:       0,
		hi:       10,
		runLine:  1.5,
	},
	"icehockey_nhl": {
		teams:    []string{"Toronto Maple Leafs", "Montreal Canadiens", "Boston Bruins", "Edmonton Oilers", "Vegas Golden Knights", "New York Rangers"},
		duration: 2*time.Hour + 30*time.Minute,
		lo:       0,
		hi:       6,
		runLine:  1.5,
	},
	"soccer_epl": {
		teams:    []string{"Arsenal", "Chelsea", "Liverpool", "Manchester City", "Manchester United", "Tottenham Hotspur", "Newcastle United", "Aston Villa"},
		duration: 2 * time.Hour,
		lo:       0,
		hi:       4,
		draw:     true,
		runLine:  1.5,
	},
}

// Sports lista as chaves de esporte servidas pelo mock
func Sports() []string {
	return []string{"basketball_nba", "americanfootball_nfl", "baseball_mlb", "icehockey_nhl", "soccer_epl"}
}

// deslocamentos do início em relação ao boot: finalizado, ao vivo, iminente, mais tarde, amanhã
var offsets = []time.Duration{-4 * time.Hour, -time.Hour, 30 * time.Minute, 3 * time.Hour, 26 * time.Hour}

type fixture struct {
	id        string
	sport     string
	home      string
	away      string
	commence  time.Time
	duration  time.Duration
	homePrice int
	awayPrice int
	drawPrice int // 0 = sem empate
	spread    float64
	total     float64
	finalHome int
	finalAway int
}

func (f fixture) completedAt() time.Time { return f.commence.Add(f.duration) }

// Catalog é o conjunto fixo de jogos gerado no boot; imutável depois de criado
type Catalog struct {
	bySport map[string][]fixture
}

// NewCatalog gera perSport jogos por esporte com inícios relativos a start
func NewCatalog(start time.Time, seed int64, perSport int) *Catalog {
	rnd := rand.New(rand.NewSource(seed))
	c := &Catalog{bySport: make(map[string][]fixture)}

	for _, sport := range Sports() {
		p := profiles[sport]
		teams := append([]string(nil), p.teams...)
		rnd.Shuffle(len(teams), func(i, j int) { teams[i], teams[j] = teams[j], teams[i] })

		for i := 0; i < perSport; i++ {
			home := teams[(2*i)%len(teams)]
			away := teams[(2*i+1)%len(teams)]
			commence := start.Add(offsets[i%len(offsets)] + time.Duration(i/len(offsets))*24*time.Hour).Truncate(time.Minute)
			c.bySport[sport] = append(c.bySport[sport], newFixture(rnd, sport, p, i, home, away, commence))
		}
	}
	return c
}

func newFixture(rnd *rand.Rand, sport string, p profile, i int, home, away string, commence time.Time) fixture {
	// probabilidade do mandante vencer
	pHome := 0.3 + rnd.Float64()*0.4
	f := fixture{
		id:       fmt.Sprintf("%s-%03d", sport, i+1),
		sport:    sport,
		home:     home,
		away:     away,
		commence: commence,
		duration: p.duration,
	}

	pAway := 1 - pHome
	if p.draw {
		pDraw := 0.22 + rnd.Float64()*0.08
		pHome, pAway = pHome*(1-pDraw), pAway*(1-pDraw)
		f.drawPrice = price(pDraw)
	}
	f.homePrice, f.awayPrice = price(pHome), price(pAway)

	if p.runLine > 0 {
		f.spread = p.runLine
		if pHome > pAway {
			f.spread = -p.runLine
		}
	} else {
		f.spread = math.Round((pAway-pHome)*30) / 2
		if f.spread == math.Trunc(f.spread) {
			f.spread += 0.5
		}
	}
	f.total = float64(p.lo+p.hi) + 0.5

	f.finalHome = p.lo + rnd.Intn(p.hi-p.lo+1)
	f.finalAway = p.lo + rnd.Intn(p.hi-p.lo+1)
	if f.finalHome == f.finalAway && !p.draw {
		if rnd.Float64() < pHome {
			f.finalHome++
		} else {
			f.finalAway++
		}
	}
	return f
}

// price converte uma probabilidade em odd americana com margem da casa
func price(prob float64) int {
	dec := oddsmath.Clamp(0.95/prob, 1.05, 15)
	am, err := oddsmath.DecimalToAmerican(dec)
	if err != nil || am == 0 {
		return 100
	}
	return am
}

// Known indica se o esporte é servido
func (c *Catalog) Known(sport string) bool {
	_, ok := c.bySport[sport]
	return ok
}

// Odds lista os jogos ainda não finalizados em now
func (c *Catalog) Odds(sport string, now time.Time) []OddsEvent {
	out := make([]OddsEvent, 0)
	for _, f := range c.bySport[sport] {
		if !now.Before(f.completedAt()) {
			continue
		}
		out = append(out, f.oddsEvent(now))
	}
	return out
}

func (f fixture) oddsEvent(now time.Time) OddsEvent {
	h2h := []Outcome{
		{Name: f.home, Price: f.homePrice},
		{Name: f.away, Price: f.awayPrice},
	}
	if f.drawPrice != 0 {
		h2h = append(h2h, Outcome{Name: "Draw", Price: f.drawPrice})
	}
	homeLine, awayLine := f.spread, -f.spread
	total := f.total

	return OddsEvent{
		ID:           f.id,
		SportKey:     f.sport,
		CommenceTime: f.commence,
		HomeTeam:     f.home,
		AwayTeam:     f.away,
		Bookmakers: []Bookmaker{{
			Key:        "mockbook",
			Title:      "Mock Book",
			LastUpdate: now.UTC().Truncate(time.Second),
			Markets: []Market{
				{Key: "h2h", Outcomes: h2h},
				{Key: "spreads", Outcomes: []Outcome{
					{Name: f.home, Price: -110, Point: &homeLine},
					{Name: f.away, Price: -110, Point: &awayLine},
				}},
				{Key: "totals", Outcomes: []Outcome{
					{Name: "Over", Price: -110, Point: &total},
					{Name: "Under", Price: -110, Point: &total},
				}},
			},
		}},
	}
}

// Scores lista os jogos já iniciados; placares parciais proporcionais ao tempo até o fim
func (c *Catalog) Scores(sport string, now time.Time) []ScoreEvent {
	out := make([]ScoreEvent, 0)
	for _, f := range c.bySport[sport] {
		if now.Before(f.commence) {
			continue
		}
		ev := ScoreEvent{
			ID:           f.id,
			SportKey:     f.sport,
			CommenceTime: f.commence,
			HomeTeam:     f.home,
			AwayTeam:     f.away,
		}
		home, away := f.finalHome, f.finalAway
		last := f.completedAt()
		if now.Before(last) {
			frac := float64(now.Sub(f.commence)) / float64(f.duration)
			home, away = int(float64(home)*frac), int(float64(away)*frac)
			last = now
		} else {
			ev.Completed = true
		}
		last = last.UTC().Truncate(time.Second)
		ev.LastUpdate = &last
		ev.Scores = []TeamScore{
			{Name: f.home, Score: strconv.Itoa(home)},
			{Name: f.away, Score: strconv.Itoa(away)},
		}
		out = append(out, ev)
	}
	return out
}
