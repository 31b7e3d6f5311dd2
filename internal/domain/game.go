package domain

import "time"

// Sport classifica o jogo pela chave do provedor
type Sport string

const (
	SportBasketball Sport = "basketball"
	SportFootball   Sport = "football"
	SportBaseball   Sport = "baseball"
	SportHockey     Sport = "hockey"
	SportSoccer     Sport = "soccer"
	SportOther      Sport = "other"
)

// GameStatus representa o ciclo de vida de um jogo
type GameStatus string

const (
	StatusScheduled  GameStatus = "scheduled"
	StatusInProgress GameStatus = "in_progress"
	StatusFinal      GameStatus = "final"
	StatusPostponed  GameStatus = "postponed"
	StatusCancelled  GameStatus = "cancelled"
)

// LiveWindow é quanto tempo após o início um jogo ainda é considerado ao vivo
const LiveWindow = 3 * time.Hour

// Spread guarda a linha de handicap de cada lado e suas odds decimais
type Spread struct {
	HomeLine float64 `json:"homeLine"`
	HomeOdds float64 `json:"homeOdds"`
	AwayLine float64 `json:"awayLine"`
	AwayOdds float64 `json:"awayOdds"`
}

// Total guarda a linha de over/under e suas odds decimais
type Total struct {
	Line      float64 `json:"line"`
	OverOdds  float64 `json:"overOdds"`
	UnderOdds float64 `json:"underOdds"`
}

// PeriodScore é o placar de um período (quarto, tempo, entrada...)
type PeriodScore struct {
	Period int `json:"period"`
	Home   int `json:"home"`
	Away   int `json:"away"`
}

// Game é a forma canônica de um jogo exibido e apostável
type Game struct {
	ID          string        `json:"id"`
	SportKey    string        `json:"sportKey"`
	Sport       Sport         `json:"sport"`
	HomeTeam    string        `json:"homeTeam"`
	AwayTeam    string        `json:"awayTeam"`
	HomeOdds    float64       `json:"homeOdds"`
	AwayOdds    float64       `json:"awayOdds"`
	DrawOdds    *float64      `json:"drawOdds,omitempty"`
	Spread      *Spread       `json:"spread,omitempty"`
	Total       *Total        `json:"total,omitempty"`
	StartTime   time.Time     `json:"startTime"`
	Live        bool          `json:"live"`
	Status      GameStatus    `json:"status"`
	HomeScore   *int          `json:"homeScore,omitempty"`
	AwayScore   *int          `json:"awayScore,omitempty"`
	CompletedAt *time.Time    `json:"completedAt,omitempty"`
	Periods     []PeriodScore `json:"periods,omitempty"`
}

// IsLive retorna true se o provedor marcou como ao vivo, ou se o jogo começou há menos de LiveWindow
func IsLive(flagged bool, start, now time.Time) bool {
	if flagged {
		return true
	}
	return start.Before(now) && now.Sub(start) < LiveWindow
}

// HasFinalScore indica se ambos os placares estão definidos
func (g Game) HasFinalScore() bool {
	return g.HomeScore != nil && g.AwayScore != nil
}

// Clone devolve uma cópia profunda, para que leitores não compartilhem ponteiros com o board
func (g Game) Clone() Game {
	c := g
	if g.DrawOdds != nil {
		v := *g.DrawOdds
		c.DrawOdds = &v
	}
	if g.Spread != nil {
		v := *g.Spread
		c.Spread = &v
	}
	if g.Total != nil {
		v := *g.Total
		c.Total = &v
	}
	if g.HomeScore != nil {
		v := *g.HomeScore
		c.HomeScore = &v
	}
	if g.AwayScore != nil {
		v := *g.AwayScore
		c.AwayScore = &v
	}
	if g.CompletedAt != nil {
		v := *g.CompletedAt
		c.CompletedAt = &v
	}
	if g.Periods != nil {
		c.Periods = append([]PeriodScore(nil), g.Periods...)
	}
	return c
}

// Float ajuda a montar campos opcionais
func Float(v float64) *float64 { return &v }

// Int ajuda a montar campos opcionais
func Int(v int) *int { return &v }
