package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Market é a seleção feita pelo usuário num jogo
type Market string

const (
	MarketHome       Market = "home"
	MarketAway       Market = "away"
	MarketSpreadHome Market = "spread-home"
	MarketSpreadAway Market = "spread-away"
	MarketOver       Market = "over"
	MarketUnder      Market = "under"
)

// Valid indica se o mercado é conhecido
func (m Market) Valid() bool {
	switch m {
	case MarketHome, MarketAway, MarketSpreadHome, MarketSpreadAway, MarketOver, MarketUnder:
		return true
	}
	return false
}

// NeedsLine indica mercados que dependem de linha (spread/total)
func (m Market) NeedsLine() bool {
	switch m {
	case MarketSpreadHome, MarketSpreadAway, MarketOver, MarketUnder:
		return true
	}
	return false
}

// BetStatus é o estado de uma aposta colocada: pending → won | lost
type BetStatus string

const (
	BetPending BetStatus = "pending"
	BetWon     BetStatus = "won"
	BetLost    BetStatus = "lost"
)

// BetSlipItem é uma seleção ainda não apostada
type BetSlipItem struct {
	GameID   string          `json:"gameId"`
	Sport    Sport           `json:"sport"`
	HomeTeam string          `json:"homeTeam"`
	AwayTeam string          `json:"awayTeam"`
	Market   Market          `json:"market"`
	Odds     float64         `json:"odds"`
	Stake    decimal.Decimal `json:"stake"`
	Line     *float64        `json:"line,omitempty"`
}

// Description monta o texto usado no ledger
func (i BetSlipItem) Description() string {
	sel := string(i.Market)
	if i.Line != nil {
		sel = fmt.Sprintf("%s %+g", sel, *i.Line)
	}
	return fmt.Sprintf("%s @ %s (%s) @ %.2f", i.AwayTeam, i.HomeTeam, sel, i.Odds)
}

// PlacedBet é um item do slip promovido a aposta
type PlacedBet struct {
	BetSlipItem
	ID        string           `json:"id"`
	UserID    string           `json:"userId"`
	PlacedAt  time.Time        `json:"placedAt"`
	Status    BetStatus        `json:"status"`
	Payout    *decimal.Decimal `json:"payout,omitempty"`
	SettledAt *time.Time       `json:"settledAt,omitempty"`
}

// Selection retorna as odds atuais e a linha do mercado no jogo; ok=false se o jogo não oferece o mercado
func (g Game) Selection(m Market) (odds float64, line *float64, ok bool) {
	switch m {
	case MarketHome:
		return g.HomeOdds, nil, g.HomeOdds > 0
	case MarketAway:
		return g.AwayOdds, nil, g.AwayOdds > 0
	case MarketSpreadHome:
		if g.Spread == nil {
			return 0, nil, false
		}
		return g.Spread.HomeOdds, Float(g.Spread.HomeLine), true
	case MarketSpreadAway:
		if g.Spread == nil {
			return 0, nil, false
		}
		return g.Spread.AwayOdds, Float(g.Spread.AwayLine), true
	case MarketOver:
		if g.Total == nil {
			return 0, nil, false
		}
		return g.Total.OverOdds, Float(g.Total.Line), true
	case MarketUnder:
		if g.Total == nil {
			return 0, nil, false
		}
		return g.Total.UnderOdds, Float(g.Total.Line), true
	}
	return 0, nil, false
}
