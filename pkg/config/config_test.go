package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bodega-api/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	t.Setenv("LEDGER_STORE", "")
	t.Chdir(t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.StorePostgres, cfg.Ledger.Store)
	assert.Equal(t, 10, cfg.Ledger.DefaultPageSize)
	assert.Equal(t, 100, cfg.Ledger.MaxPageSize)
	assert.Equal(t, 10000, cfg.Ledger.ExportMaxRows)
	assert.Equal(t, 24*time.Hour, cfg.Ledger.IdempotencyTTL)
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoad_VariablesDeEntorno(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LEDGER_STORE", "MEMORY")
	t.Setenv("LEDGER_EXPORT_MAX_ROWS", "500")
	t.Setenv("LEDGER_TIMEZONE", "UTC")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.StoreMemory, cfg.Ledger.Store)
	assert.Equal(t, 500, cfg.Ledger.ExportMaxRows)
	assert.Equal(t, time.UTC, cfg.Ledger.Location())
	assert.True(t, cfg.Redis.Enabled())
}

func TestLoad_StoreInvalido(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LEDGER_STORE", "mongo")

	_, err := config.Load()
	assert.ErrorContains(t, err, "LEDGER_STORE")
}

func TestLoad_TamanosDePaginaInvalidos(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LEDGER_STORE", "memory")
	t.Setenv("LEDGER_DEFAULT_PAGE_SIZE", "50")
	t.Setenv("LEDGER_MAX_PAGE_SIZE", "20")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLedgerConfig_ZonaInvalidaCaeEnUTC(t *testing.T) {
	assert.Equal(t, time.UTC, config.LedgerConfig{TimeZone: "Marte/Olympus"}.Location())
}

func TestDBConfig_ConnectionString(t *testing.T) {
	db := config.DBConfig{Host: "db", Port: 5432, User: "bodega", Password: "p@ss", DBName: "bodega", SSLMode: "disable"}
	assert.Equal(t, "postgres://bodega:p%40ss@db:5432/bodega?sslmode=disable", db.ConnectionString())

	db.DatabaseURL = "postgres://otro"
	assert.Equal(t, "postgres://otro", db.ConnectionString())
}
