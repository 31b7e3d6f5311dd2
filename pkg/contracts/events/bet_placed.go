package events

// Evento publicado no tópico "bet_placed" para cada aposta do slip
type BetPlaced struct {
	BetID    string  `json:"bet_id"`
	UserID   string  `json:"user_id"`
	GameID   string  `json:"game_id"`
	Market   string  `json:"market"`
	Stake    string  `json:"stake"` // decimal serializado
	OddValue float64 `json:"odd_value"`
	Line     float64 `json:"line,omitempty"`
	TsUnixMs int64   `json:"ts_unix_ms"`
}
