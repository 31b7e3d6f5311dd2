package topics

const (
	// Bets
	BetPlaced  = "bet_placed"
	BetSettled = "bet_settled"

	// Redis Pub/Sub
	OddsChangesBroadcast = "odds_changes_broadcast"
)
