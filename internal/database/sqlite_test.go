package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/factchecker/misinfo-detector/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSettings_PutGetUpsert(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	missing, err := store.GetSetting(ctx, "theme")
	require.NoError(t, err)
	assert.Nil(t, missing)

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, store.PutSetting(ctx, &models.Setting{Key: "theme", Value: "light", UpdatedAt: now}))
	require.NoError(t, store.PutSetting(ctx, &models.Setting{Key: "theme", Value: "dark", UpdatedAt: now.Add(time.Minute)}))
	require.NoError(t, store.PutSetting(ctx, &models.Setting{Key: "welcome_seen", Value: "true", UpdatedAt: now}))

	got, err := store.GetSetting(ctx, "theme")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "dark", got.Value)

	all, err := store.ListSettings(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "theme", all[0].Key)
	assert.Equal(t, "welcome_seen", all[1].Key)
}

func TestAuditLogs_NewestFirst(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	base := time.Now().UTC()
	for i, path := range []string{"/api/v1/health", "/api/v1/analyze", "/api/v1/languages"} {
		require.NoError(t, store.LogRequest(ctx, &models.AuditLog{
			ID:           uuid.New().String(),
			RequestID:    uuid.New().String(),
			Endpoint:     path,
			Method:       "GET",
			ResponseCode: 200,
			DurationMs:   int64(i),
			Timestamp:    base.Add(time.Duration(i) * time.Second),
		}))
	}

	logs, err := store.GetAuditLogs(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "/api/v1/languages", logs[0].Endpoint)
	assert.Equal(t, "/api/v1/analyze", logs[1].Endpoint)

	logs, err = store.GetAuditLogs(ctx, 10, 2)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "/api/v1/health", logs[0].Endpoint)
}
