// Package blob abstracts attachment binary storage. The production system
// keeps blobs in an external object store; the chat core only needs save
// and best-effort release.
package blob

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/Dipeshkhadgi/hamrospace/internal/model"
)

type Store interface {
	// Save stores the content and returns the attachment reference the
	// message record carries.
	Save(name string, r io.Reader) (model.Attachment, error)
	// Delete releases the blobs with the given ids. Missing blobs are not
	// an error; the delete cascade treats release as best-effort.
	Delete(ids []string) error
}

// DiskStore keeps blobs as flat files under a directory, addressed by id.
type DiskStore struct {
	Dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &DiskStore{Dir: dir}, nil
}

func (d *DiskStore) Save(name string, r io.Reader) (model.Attachment, error) {
	id := uuid.NewString() + filepath.Ext(name)
	path := filepath.Join(d.Dir, id)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return model.Attachment{}, err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return model.Attachment{}, err
	}
	if err := f.Close(); err != nil {
		return model.Attachment{}, err
	}

	return model.Attachment{ID: id, URL: fmt.Sprintf("/uploads/%s", id)}, nil
}

func (d *DiskStore) Delete(ids []string) error {
	var firstErr error
	for _, id := range ids {
		// Ignore path traversal attempts baked into stored ids.
		if filepath.Base(id) != id {
			continue
		}
		if err := os.Remove(filepath.Join(d.Dir, id)); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
