package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "CLAUDE_API_KEY", "GEMINI_API_KEY",
		"XAI_API_KEY", "OLLAMA_HOST", "ANALYST_HOST", "ANALYST_TOKEN",
		"WAREHOUSE_DSN", "PAIANALYST_ADDR",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Analyst.Timeout())
	assert.Equal(t, 4, cfg.Retrieval.TopK)
	assert.Equal(t, "file-index", cfg.Retrieval.Collection)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadFileThenEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"analyst": {"host": "acct.example.com", "database": "DB", "schema": "S", "stage": "ST", "file": "m.yaml", "timeout_ms": 1500},
		"warehouse": {"driver": "sqlite", "database": "w.db"}
	}`), 0600))
	t.Setenv("CLAUDE_API_KEY", "claude-key")
	t.Setenv("ANALYST_TOKEN", "tok")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://acct.example.com/api/v2/cortex/analyst/message", cfg.Analyst.Endpoint())
	assert.Equal(t, "@DB.S.ST/m.yaml", cfg.Analyst.SemanticModelFile())
	assert.Equal(t, 1500*time.Millisecond, cfg.Analyst.Timeout())
	assert.Equal(t, "tok", cfg.Analyst.Token)
	assert.Equal(t, "claude-key", cfg.AI.Anthropic.APIKey)
	assert.Equal(t, "w.db", cfg.Warehouse.DSN())
	// untouched sections keep defaults
	assert.Equal(t, "gpt-4o", cfg.AI.OpenAI.Model)
}

func TestLoadRejectsBadJSON(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{`), 0600))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "sub", "config.json")
	cfg := Default()
	cfg.Server.Addr = ":9999"
	require.NoError(t, Save(path, cfg))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", got.Server.Addr)
}

func TestWarehouseDSN(t *testing.T) {
	pg := WarehouseConfig{Driver: DriverPgx, Host: "db", Port: 5432, User: "u", Password: "p@ss", Database: "d", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss@db:5432/d?sslmode=disable", pg.DSN())

	my := WarehouseConfig{Driver: DriverMySQL, Host: "db", Port: 3306, User: "u", Password: "p", Database: "d"}
	assert.Equal(t, "u:p@tcp(db:3306)/d?parseTime=true", my.DSN())

	assert.Equal(t, ":memory:", WarehouseConfig{Driver: DriverSQLite}.DSN())
	assert.Equal(t, "custom", WarehouseConfig{DSNValue: "custom"}.DSN())
}
