package store

import (
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

// newTestStore opens a throwaway badger db with a deterministic advancing
// clock so every record gets a distinct, ordered timestamp.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	base := time.Unix(1700000000, 0)
	tick := 0
	return NewWithClock(db, slog.Default(), func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Millisecond)
	})
}
