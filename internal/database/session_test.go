package database_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xbt573/flup/internal/database"
	"gorm.io/gorm"
)

func openSQLite(t *testing.T) *gorm.DB {
	db, err := database.Open(database.SQLite, filepath.Join(t.TempDir(), "flup.db"), false)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}

func inUse(t *testing.T, db *gorm.DB) int {
	sqlDB, err := db.DB()
	require.NoError(t, err)
	return sqlDB.Stats().InUse
}

func TestOpenUnknownType(t *testing.T) {
	_, err := database.Open(database.Type("oracle"), "whatever", false)
	assert.Error(t, err)
}

func TestSession(t *testing.T) {
	t.Run("connection is acquired on first use", func(t *testing.T) {
		db := openSQLite(t)
		s := database.NewSession(context.Background(), db)
		defer s.Close()

		assert.False(t, s.Acquired())
		assert.Equal(t, 0, inUse(t, db))

		conn, err := s.DB()
		require.NoError(t, err)
		assert.True(t, s.Acquired())
		assert.Equal(t, 1, inUse(t, db))

		again, err := s.DB()
		require.NoError(t, err)
		assert.Same(t, conn, again)
		assert.Equal(t, 1, inUse(t, db))
	})
	t.Run("queries run on the pinned connection", func(t *testing.T) {
		db := openSQLite(t)
		s := database.NewSession(context.Background(), db)
		defer s.Close()

		conn, err := s.DB()
		require.NoError(t, err)

		var n int
		require.NoError(t, conn.Raw("SELECT 1").Scan(&n).Error)
		assert.Equal(t, 1, n)
		assert.Equal(t, 1, inUse(t, db))
	})
	t.Run("close releases the connection", func(t *testing.T) {
		db := openSQLite(t)
		s := database.NewSession(context.Background(), db)

		_, err := s.DB()
		require.NoError(t, err)
		require.NoError(t, s.Close())

		assert.False(t, s.Acquired())
		assert.Equal(t, 0, inUse(t, db))
		assert.NoError(t, s.Close())
	})
	t.Run("close without use is a no-op", func(t *testing.T) {
		db := openSQLite(t)
		s := database.NewSession(context.Background(), db)
		assert.NoError(t, s.Close())
		assert.Equal(t, 0, inUse(t, db))
	})
}

func TestSessionContext(t *testing.T) {
	assert.Nil(t, database.FromContext(context.Background()))

	s := database.NewSession(context.Background(), nil)
	ctx := database.WithSession(context.Background(), s)
	assert.Same(t, s, database.FromContext(ctx))
}
