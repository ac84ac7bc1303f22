package localstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesSchema(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "client.db")

	db, err := Open(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`INSERT INTO prefs (key, value) VALUES ('token', 'T1')`)
	require.NoError(t, err)
}

func TestOpen_Idempotent(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "client.db")
	ctx := context.Background()

	db, err := Open(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}
