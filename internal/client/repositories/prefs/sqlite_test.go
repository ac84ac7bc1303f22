package prefs

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:prefs?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS prefs (
  key   TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
`)
	require.NoError(t, err)
	_, err = db.Exec(`DELETE FROM prefs`)
	require.NoError(t, err)
	return db
}

func TestGet_MissingKeyReturnsEmpty(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	v, err := r.Get(context.Background(), KeyToken)
	require.NoError(t, err)
	require.Empty(t, v)
}

func TestSet_ThenGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, KeyToken, "T1"))
	v, err := r.Get(ctx, KeyToken)
	require.NoError(t, err)
	require.Equal(t, "T1", v)
}

func TestSet_Upserts(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, KeyLanguage, "en"))
	require.NoError(t, r.Set(ctx, KeyLanguage, "fr"))

	v, err := r.Get(ctx, KeyLanguage)
	require.NoError(t, err)
	require.Equal(t, "fr", v)
}

func TestSetMany_AllOrNothingUpsert(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, KeyToken, "stale"))
	require.NoError(t, r.SetMany(ctx, map[string]string{
		KeyToken:    "T1",
		KeyUserID:   "7",
		KeyUsername: "ann",
	}))

	for key, want := range map[string]string{KeyToken: "T1", KeyUserID: "7", KeyUsername: "ann"} {
		v, err := r.Get(ctx, key)
		require.NoError(t, err)
		require.Equal(t, want, v)
	}
}

func TestDelete_Idempotent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, KeyToken, "T1"))
	require.NoError(t, r.Delete(ctx, KeyToken))
	require.NoError(t, r.Delete(ctx, KeyToken))

	v, err := r.Get(ctx, KeyToken)
	require.NoError(t, err)
	require.Empty(t, v)
}

func TestClear_RemovesEverything(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, KeyToken, "T1"))
	require.NoError(t, r.Set(ctx, KeyLanguage, "en"))
	require.NoError(t, r.Clear(ctx))

	var n int
	db := setupDB(t)
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM prefs`).Scan(&n))
	require.Equal(t, 0, n)
}
