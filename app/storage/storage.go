// Package storage keeps uploaded post images.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"postboard/app/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNotFound is returned when no object is stored under a key.
var ErrNotFound = errors.New("media not found")

// Upload is a validated image ready to be stored.
type Upload struct {
	Filename    string
	ContentType string
	Extension   string // including the dot, e.g. ".png"
	Data        []byte
}

// Object is a stored media file.
type Object struct {
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// MediaStore persists uploads and serves them back by key.
type MediaStore interface {
	// Save stores the upload and returns its key, e.g. posts/6f1c...png.
	Save(ctx context.Context, upload *Upload) (string, error)
	Open(ctx context.Context, key string) (*Object, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

// New builds the media store selected by cfg.Backend.
func New(ctx context.Context, cfg config.MediaConfig, logger *zap.Logger) (MediaStore, error) {
	switch cfg.Backend {
	case "badger":
		s, err := NewBadgerMediaStore(cfg.BadgerDir)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "s3":
		s, err := NewS3MediaStore(&cfg.S3, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported media backend %q", cfg.Backend)
	}
}

// newKey names a new object under posts/.
func newKey(upload *Upload) string {
	ext := strings.ToLower(upload.Extension)
	if ext == "" {
		ext = strings.ToLower(path.Ext(upload.Filename))
	}
	return "posts/" + uuid.NewString() + ext
}

// ValidKey rejects keys that could not have been produced by Save.
func ValidKey(key string) bool {
	return strings.HasPrefix(key, "posts/") && !strings.Contains(key, "..") && path.Clean(key) == key
}

// marshalEntity marshals an entity to JSON
func marshalEntity(entity interface{}) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %v", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, entity interface{}) error {
	if err := json.Unmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %v", err)
	}
	return nil
}
