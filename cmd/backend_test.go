package cmd

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DachengChen/paiAnalyst/applog"
	"github.com/DachengChen/paiAnalyst/chat"
	"github.com/DachengChen/paiAnalyst/config"
	"github.com/DachengChen/paiAnalyst/session"
)

func TestMain(m *testing.M) {
	applog.SetOutput(nil)
	m.Run()
}

func TestBackendWithoutServices(t *testing.T) {
	cfg := config.Default()
	cfg.AI = config.AIConfig{}
	cfg.Warehouse = config.WarehouseConfig{}

	b := newBackend(context.Background(), cfg)
	defer b.Close()

	assert.Nil(t, b.warehouse)
	assert.Nil(t, b.gateway)
	assert.Nil(t, b.index)
	assert.Nil(t, b.multi)
	assert.Equal(t, "not connected", b.warehouse.String())

	ctl := b.newController()
	out, err := ctl.Submit(context.Background(), "total revenue?")
	require.NoError(t, err)
	require.Len(t, out.Analyst, 1)
	assert.Equal(t, chat.NoticeNoAnalyst, out.Analyst[0].Content[0].(session.Text).Body)

	ctl.SetMode(session.ModeUnstructured)
	out, err = ctl.Submit(context.Background(), "what is in the docs?")
	require.NoError(t, err)
	require.Len(t, out.Analyst, 1)
	assert.Equal(t, chat.NoticeNoRetriever, out.Analyst[0].Content[0].(session.Text).Body)
}

func TestBackendConnectsSQLiteWarehouse(t *testing.T) {
	cfg := config.Default()
	cfg.AI = config.AIConfig{}
	cfg.Warehouse = config.WarehouseConfig{
		Driver:   config.DriverSQLite,
		Database: filepath.Join(t.TempDir(), "wh.db"),
	}

	b := newBackend(context.Background(), cfg)
	defer b.Close()

	require.NotNil(t, b.warehouse)
	assert.Equal(t, "warehouse: sqlite", b.warehouse.String())

	tbl, err := b.warehouse.Execute(context.Background(), "SELECT 1 AS one")
	require.NoError(t, err)
	assert.Len(t, tbl.Rows, 1)
}

func TestControllersAreIndependent(t *testing.T) {
	cfg := config.Default()
	cfg.AI = config.AIConfig{}
	cfg.Warehouse = config.WarehouseConfig{}
	b := newBackend(context.Background(), cfg)

	a, c := b.newController(), b.newController()
	_, err := a.Submit(context.Background(), "hello")
	require.NoError(t, err)
	assert.NotEmpty(t, a.Store().All())
	assert.Empty(t, c.Store().All())
}

func TestOpenIndexNeedsOpenAIKey(t *testing.T) {
	cfg := config.Default()
	cfg.AI.OpenAI.APIKey = ""
	_, err := openIndex(cfg)
	assert.Error(t, err)
}
