package oddsfeed

import "time"

// Formato do endpoint /v4/sports/{sport}/odds
type oddsEvent struct {
	ID           string      `json:"id"`
	SportKey     string      `json:"sport_key"`
	CommenceTime time.Time   `json:"commence_time"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	Live         bool        `json:"live,omitempty"`
	Bookmakers   []bookmaker `json:"bookmakers"`
}

type bookmaker struct {
	Key     string   `json:"key"`
	Markets []market `json:"markets"`
}

type market struct {
	Key      string    `json:"key"` // h2h | spreads | totals
	Outcomes []outcome `json:"outcomes"`
}

type outcome struct {
	Name  string   `json:"name"`
	Price float64  `json:"price"` // americana
	Point *float64 `json:"point,omitempty"`
}

// Formato do endpoint /v4/sports/{sport}/scores
type scoreEvent struct {
	ID           string      `json:"id"`
	SportKey     string      `json:"sport_key"`
	CommenceTime time.Time   `json:"commence_time"`
	Completed    bool        `json:"completed"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	Scores       []teamScore `json:"scores"`
	LastUpdate   *time.Time  `json:"last_update,omitempty"`
}

type teamScore struct {
	Name  string `json:"name"`
	Score string `json:"score"`
}
