// Package mirror keeps a best-effort local snapshot of the last known
// attendance document. The snapshot is only read when a network load
// fails; it is never authoritative when the network succeeds.
package mirror

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/rollcallhq/rollcall/core/attendance"
)

const snapshotFile = "attendance-backup.json"

type FileMirror struct {
	path string
}

var _ attendance.Mirror = (*FileMirror)(nil) // interface compliance check

// NewFileMirror stores snapshots under dir, creating it if needed.
func NewFileMirror(dir string) (*FileMirror, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "creating mirror dir")
	}
	return &FileMirror{path: filepath.Join(dir, snapshotFile)}, nil
}

// WriteSnapshot replaces the snapshot atomically (temp file + rename).
func (m *FileMirror) WriteSnapshot(doc attendance.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "marshalling snapshot")
	}

	tmp, err := ioutil.TempFile(filepath.Dir(m.path), snapshotFile+".*")
	if err != nil {
		return errors.Wrap(err, "creating snapshot temp file")
	}
	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return errors.Wrap(err, "writing snapshot")
	}
	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return errors.Wrap(err, "closing snapshot")
	}
	if err = os.Rename(tmp.Name(), m.path); err != nil {
		_ = os.Remove(tmp.Name())
		return errors.Wrap(err, "replacing snapshot")
	}
	return nil
}

// ReadSnapshot loads the last snapshot; ok is false when none exists.
func (m *FileMirror) ReadSnapshot() (attendance.Document, bool, error) {
	data, err := ioutil.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return attendance.Document{}, false, nil
		}
		return attendance.Document{}, false, errors.Wrap(err, "reading snapshot")
	}

	var doc attendance.Document
	if err = json.Unmarshal(data, &doc); err != nil {
		return attendance.Document{}, false, errors.Wrap(err, "unmarshalling snapshot")
	}
	doc.Normalize()
	return doc, true, nil
}
