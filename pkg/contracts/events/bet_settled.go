package events

import "time"

// Evento emitido pela liquidação após graduar uma aposta.
type BetSettled struct {
	BetID     string    `json:"betId"`
	UserID    string    `json:"userId"`
	GameID    string    `json:"gameId"`
	Status    string    `json:"status"` // "won" | "lost"
	Payout    string    `json:"payout,omitempty"`
	HomeScore int       `json:"homeScore"`
	AwayScore int       `json:"awayScore"`
	Ts        time.Time `json:"ts"`
}
