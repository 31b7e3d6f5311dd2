package api

import (
	"github.com/shopspring/decimal"

	"github.com/radieske/playmoney-sportsbook/internal/domain"
)

type SignInRequest struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// AddSelectionRequest escolhe um mercado; odds e linha vêm do board no momento da seleção
type AddSelectionRequest struct {
	GameID string        `json:"gameId"`
	Market domain.Market `json:"market"`
}

type StakeRequest struct {
	Stake decimal.Decimal `json:"stake"`
}

type DepositRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type SlipResponse struct {
	Items           []domain.BetSlipItem `json:"items"`
	TotalStake      decimal.Decimal      `json:"totalStake"`
	PotentialPayout decimal.Decimal      `json:"potentialPayout"`
	RecentlyPlaced  []domain.PlacedBet   `json:"recentlyPlaced"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
