package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SERVICE_NAME", "sportsbook")

	cfg := Load()

	assert.Equal(t, "sportsbook", cfg.ServiceName)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "9095", cfg.MetricsPort)
	assert.Equal(t, 60*time.Second, cfg.SettlementInterval)
	assert.True(t, cfg.StartingBalance.Equal(decimal.NewFromInt(1000)))
	assert.Contains(t, cfg.OddsSports, "basketball_nba")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVICE_NAME", "odds-provider-mock")
	t.Setenv("ODDS_SPORTS", " soccer_epl , ,icehockey_nhl")
	t.Setenv("SETTLEMENT_INTERVAL", "30")
	t.Setenv("REFRESH_INTERVAL", "2m")
	t.Setenv("STARTING_BALANCE", "250.50")

	cfg := Load()

	assert.Equal(t, "8081", cfg.HTTPPort)
	assert.Equal(t, []string{"soccer_epl", "icehockey_nhl"}, cfg.OddsSports)
	assert.Equal(t, 30*time.Second, cfg.SettlementInterval)
	assert.Equal(t, 2*time.Minute, cfg.RefreshInterval)
	assert.Equal(t, "250.5", cfg.StartingBalance.String())
}

func TestLoadIgnoresInvalidValues(t *testing.T) {
	t.Setenv("SETTLEMENT_INTERVAL", "soon")
	t.Setenv("STARTING_BALANCE", "-5")

	cfg := Load()

	assert.Equal(t, 60*time.Second, cfg.SettlementInterval)
	assert.True(t, cfg.StartingBalance.Equal(decimal.NewFromInt(1000)))
}
