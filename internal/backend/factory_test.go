package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/config"
)

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	assert.Error(t, err)

	_, err = FromAppConfig(&config.Config{DataBackend: "postgres"})
	assert.ErrorContains(t, err, "(valid: sqlite, memory)")

	cfg, err := FromAppConfig(&config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db", AMQPURL: "amqp://localhost"})
	require.NoError(t, err)
	assert.Equal(t, SQLiteBackend, cfg.Type)
	assert.Equal(t, "x.db", cfg.SQLiteDBPath)
	assert.Equal(t, "amqp://localhost", cfg.AMQPURL)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, Config{Type: MemoryBackend}.Validate())
	assert.Error(t, Config{Type: MemoryBackend, AMQPURL: "amqp://x"}.Validate())
	assert.Error(t, Config{Type: SQLiteBackend}.Validate())
	assert.ErrorContains(t, Config{Type: "nope"}.Validate(), "invalid backend type: nope (valid: sqlite, memory)")
	assert.Equal(t, []string{"sqlite", "memory"}, GetBackendTypeStrings())
}

func TestCreateBackend(t *testing.T) {
	f := NewFactory(nil)
	ctx := context.Background()

	mem, err := f.CreateBackend(ctx, Config{Type: MemoryBackend})
	require.NoError(t, err)
	assert.Nil(t, mem.VerificationQueue())
	require.NoError(t, mem.Store.Ping(ctx))
	require.NoError(t, mem.Cleanup())

	sq, err := f.CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "ledger.db")})
	require.NoError(t, err)
	assert.Nil(t, sq.Queue)
	assert.Nil(t, sq.VerificationQueue())
	require.NoError(t, sq.Store.Ping(ctx))
	require.NoError(t, sq.Cleanup())
}
