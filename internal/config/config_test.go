package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "America/Sao_Paulo", cfg.ShopTimezone)
	assert.Equal(t, int64(1000), cfg.SecondCutPriceCents)
	assert.Equal(t, int64(3000), cfg.OneOffPriceCents)
	assert.Equal(t, int64(10), cfg.BookingPointCost)
	assert.Equal(t, 10, cfg.SecondCutWindowDays)
	assert.Equal(t, 30, cfg.SlotMinutes)
	assert.Equal(t, 120, cfg.MinAdvanceMinutes)
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SECOND_CUT_PRICE_CENTS", "1500")
	t.Setenv("SECOND_CUT_WINDOW_DAYS", "14")
	t.Setenv("SHOP_TIMEZONE", "America/Bahia")

	cfg := Load()

	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, int64(1500), cfg.SecondCutPriceCents)
	assert.Equal(t, 14, cfg.SecondCutWindowDays)
	assert.Equal(t, "America/Bahia", cfg.ShopTimezone)
}

func TestLoad_IgnoresGarbageNumbers(t *testing.T) {
	t.Setenv("SLOT_MINUTES", "thirty")

	cfg := Load()
	assert.Equal(t, 30, cfg.SlotMinutes)
}
