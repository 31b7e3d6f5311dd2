package events

import "time"

// Direção de uma variação de odd
const (
	DirectionUp   = "up"
	DirectionDown = "down"
	DirectionNone = "none"
)

// OddsChange é emitido pelo simulador para cada campo alterado
// Key segue o formato "{gameId}-{home|away|draw}"
type OddsChange struct {
	Key       string    `json:"key"`
	GameID    string    `json:"game_id"`
	Field     string    `json:"field"` // "home" | "away" | "draw"
	Direction string    `json:"direction"`
	OldValue  float64   `json:"old_value"`
	NewValue  float64   `json:"new_value"`
	At        time.Time `json:"at"`
}

// OddsTick agrupa as mudanças de um ciclo do simulador
type OddsTick struct {
	Changes   []OddsChange `json:"changes"`
	Scores    []ScoreBump  `json:"scores,omitempty"`
	Version   int          `json:"version"` // incrementado a cada tick
	UpdatedAt time.Time    `json:"updated_at"`
}

// ScoreBump registra um incremento de placar simulado em jogo ao vivo
type ScoreBump struct {
	GameID    string `json:"game_id"`
	HomeScore int    `json:"home_score"`
	AwayScore int    `json:"away_score"`
}
