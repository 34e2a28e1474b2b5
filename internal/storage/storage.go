package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/andresuchdata/stockcast/internal/domain"
)

// ObjectInfo represents metadata for a remote file/object.
type ObjectInfo struct {
	Key  string
	Size int64
}

// ObjectStorage captures the minimal S3-compatible operations the archive needs.
type ObjectStorage interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	UploadObject(ctx context.Context, key string, data []byte) error
}

// Archiver writes prediction runs to object storage as JSON documents.
type Archiver struct {
	store  ObjectStorage
	prefix string
}

func NewArchiver(store ObjectStorage, prefix string) *Archiver {
	return &Archiver{store: store, prefix: prefix}
}

// Archive uploads records under <prefix>/YYYY/MM/predictions-<timestamp>.json
// and returns the object key.
func (a *Archiver) Archive(ctx context.Context, ref time.Time, records []domain.PredictionRecord) (string, error) {
	if records == nil {
		records = []domain.PredictionRecord{}
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(records); err != nil {
		return "", fmt.Errorf("encode predictions: %w", err)
	}

	key := ArchiveKey(a.prefix, ref)
	if err := a.store.UploadObject(ctx, key, buf.Bytes()); err != nil {
		return "", fmt.Errorf("archive predictions to %s: %w", key, err)
	}
	return key, nil
}

// ArchiveKey is the object key of the run at ref.
func ArchiveKey(prefix string, ref time.Time) string {
	ref = ref.UTC()
	return path.Join(prefix, ref.Format("2006"), ref.Format("01"),
		fmt.Sprintf("predictions-%s.json", ref.Format("20060102T150405Z")))
}

// List returns every archived run under the archive prefix.
func (a *Archiver) List(ctx context.Context) ([]ObjectInfo, error) {
	objects, err := a.store.ListObjects(ctx, a.prefix)
	if err != nil {
		return nil, fmt.Errorf("list archived predictions: %w", err)
	}
	return objects, nil
}
