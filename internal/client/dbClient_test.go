package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"storefront-payments/internal/config"
	"storefront-payments/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestGormLoggerWritesThroughSlog(t *testing.T) {
	var buf bytes.Buffer
	l := newGormLogger(slog.New(slog.NewJSONHandler(&buf, nil)))
	query := func() (string, int64) { return "SELECT * FROM clothes WHERE id = ?", 0 }

	l.Trace(context.Background(), time.Now(), query, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String(), "record not found must stay silent")

	l.Trace(context.Background(), time.Now(), query, errors.New("disk I/O error"))
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	trace, ok := entry["trace"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "disk I/O error", trace["error"])
}

func TestInitDBClient(t *testing.T) {
	path := filepath.Join(t.TempDir(), "init.db")
	db, err := InitDBClient(&config.Database{Driver: "sqlite", URL: path})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	assert.True(t, db.Migrator().HasTable(&model.Purchase{}))
	assert.True(t, db.Migrator().HasTable(&model.WebhookEvent{}))

	_, err = InitDBClient(&config.Database{Driver: "oracle", URL: "x"})
	assert.Error(t, err)
}
