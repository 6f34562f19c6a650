package chat

import (
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"github.com/Dipeshkhadgi/hamrospace/internal/model"
	"github.com/Dipeshkhadgi/hamrospace/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	base := time.Unix(1700000000, 0)
	tick := 0
	return store.NewWithClock(db, slog.Default(), func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Millisecond)
	})
}

// recorder captures emitted events for assertions.
type recorder struct {
	events []recorded
}

type recorded struct {
	name    string
	members []string
	payload any
}

func (r *recorder) Emit(name string, members []string, payload any) {
	r.events = append(r.events, recorded{name: name, members: members, payload: payload})
}

func (r *recorder) named(name string) []recorded {
	var out []recorded
	for _, e := range r.events {
		if e.name == name {
			out = append(out, e)
		}
	}
	return out
}

// fakeBlobs is an in-memory blob.Store.
type fakeBlobs struct {
	saved   int
	deleted []string
	failSav bool
}

func (f *fakeBlobs) Save(name string, r io.Reader) (model.Attachment, error) {
	if f.failSav {
		return model.Attachment{}, fmt.Errorf("save failed")
	}
	f.saved++
	id := fmt.Sprintf("blob-%d", f.saved)
	_, _ = io.Copy(io.Discard, r)
	return model.Attachment{ID: id, URL: "/uploads/" + id}, nil
}

func (f *fakeBlobs) Delete(ids []string) error {
	f.deleted = append(f.deleted, ids...)
	return nil
}

func newTestManager(t *testing.T) (*Manager, *recorder, *fakeBlobs) {
	t.Helper()
	rec := &recorder{}
	blobs := &fakeBlobs{}
	m := &Manager{Store: newTestStore(t), Events: rec, Blobs: blobs, Log: slog.Default()}
	return m, rec, blobs
}
