package entry_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/boltdb/bolt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xbt573/flup/internal/database"
	"github.com/xbt573/flup/internal/models"
	"github.com/xbt573/flup/internal/repository/entry"
)

func TestRepositoryImplementations(t *testing.T) {
	testCases := []struct {
		name  string
		setup func(*testing.T) (entry.Repository, context.Context)
	}{
		{
			name: "gorm on sqlite",
			setup: func(t *testing.T) (entry.Repository, context.Context) {
				db, err := database.Open(database.SQLite, filepath.Join(t.TempDir(), "flup.db"), false)
				require.NoError(t, err)
				t.Cleanup(func() {
					_ = database.Close(db)
				})
				return entry.New(db), context.Background()
			},
		},
		{
			name: "gorm on sqlite through a request session",
			setup: func(t *testing.T) (entry.Repository, context.Context) {
				db, err := database.Open(database.SQLite, filepath.Join(t.TempDir(), "flup.db"), false)
				require.NoError(t, err)
				s := database.NewSession(context.Background(), db)
				t.Cleanup(func() {
					_ = s.Close()
					_ = database.Close(db)
				})
				return entry.New(db), database.WithSession(context.Background(), s)
			},
		},
		{
			name: "bolt",
			setup: func(t *testing.T) (entry.Repository, context.Context) {
				db, err := bolt.Open(filepath.Join(t.TempDir(), "flup.bolt"), 0600, nil)
				require.NoError(t, err)
				t.Cleanup(func() {
					_ = db.Close()
				})
				return entry.NewBolt(db), context.Background()
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo, ctx := tc.setup(t)
			testRepository(t, ctx, repo)
		})
	}
}

func testRepository(t *testing.T, ctx context.Context, repo entry.Repository) {
	t.Run("operations fail before initialize", func(t *testing.T) {
		_, err := repo.GetByName(ctx, "abc")
		assert.Error(t, err)
		assert.False(t, errors.Is(err, entry.ErrNotFound))
	})

	require.NoError(t, repo.Initialize(ctx))

	t.Run("initialize twice fails", func(t *testing.T) {
		assert.Error(t, repo.Initialize(ctx))
	})
	t.Run("what you put is what you get", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, models.Entry{Name: "aaaaaa", Content: "hello"}))
		e, err := repo.GetByName(ctx, "aaaaaa")
		require.NoError(t, err)
		assert.Equal(t, models.Entry{Name: "aaaaaa", Content: "hello"}, e)
	})
	t.Run("content is stored verbatim", func(t *testing.T) {
		content := "zażółć gęślą jaźń\r\n\ttabs and 🦀\n"
		require.NoError(t, repo.Create(ctx, models.Entry{Name: "bbbbbb", Content: content}))
		e, err := repo.GetByName(ctx, "bbbbbb")
		require.NoError(t, err)
		assert.Equal(t, content, e.Content)
	})
	t.Run("can put empty content", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, models.Entry{Name: "cccccc", Content: ""}))
		e, err := repo.GetByName(ctx, "cccccc")
		require.NoError(t, err)
		assert.Equal(t, "", e.Content)
	})
	t.Run("error on not existing name", func(t *testing.T) {
		_, err := repo.GetByName(ctx, "doesnotexist123")
		assert.True(t, errors.Is(err, entry.ErrNotFound))
	})
	t.Run("names are matched exactly", func(t *testing.T) {
		_, err := repo.GetByName(ctx, "AAAAAA")
		assert.True(t, errors.Is(err, entry.ErrNotFound))
		_, err = repo.GetByName(ctx, "aaaaa")
		assert.True(t, errors.Is(err, entry.ErrNotFound))
	})
	t.Run("existing entries are never overwritten", func(t *testing.T) {
		err := repo.Create(ctx, models.Entry{Name: "aaaaaa", Content: "other"})
		assert.True(t, errors.Is(err, entry.ErrExists))
		e, err := repo.GetByName(ctx, "aaaaaa")
		require.NoError(t, err)
		assert.Equal(t, "hello", e.Content)
	})
	t.Run("count", func(t *testing.T) {
		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})
}
