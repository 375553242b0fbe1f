package repository

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/noah-isme/fet-timetable-api/pkg/storage"
)

// UploadRepository archives the raw XML documents of each session so a
// restarted process can rebuild snapshots.
type UploadRepository struct {
	store *storage.LocalStorage
}

// NewUploadRepository constructs the archive.
func NewUploadRepository(store *storage.LocalStorage) *UploadRepository {
	return &UploadRepository{store: store}
}

func uploadName(sessionID, doc string) string {
	return path.Join(sessionID, doc+".xml")
}

// Save stores one document for a session.
func (r *UploadRepository) Save(sessionID, doc string, data []byte) error {
	if _, err := r.store.Save(uploadName(sessionID, doc), data); err != nil {
		return fmt.Errorf("archive %s for %s: %w", doc, sessionID, err)
	}
	return nil
}

// Load returns the documents archived for a session, keyed by document name.
// Missing documents are omitted.
func (r *UploadRepository) Load(sessionID string, docs ...string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(docs))
	for _, doc := range docs {
		data, err := r.store.Read(uploadName(sessionID, doc))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("load %s for %s: %w", doc, sessionID, err)
		}
		out[doc] = data
	}
	return out, nil
}

// Sessions lists every session directory present on disk.
func (r *UploadRepository) Sessions() ([]string, error) {
	dirs, err := r.store.Dirs()
	if err != nil {
		return nil, fmt.Errorf("list archived sessions: %w", err)
	}
	sort.Strings(dirs)
	return dirs, nil
}

// Delete removes the session's archive directory.
func (r *UploadRepository) Delete(sessionID string) error {
	return r.store.Delete(sessionID)
}
