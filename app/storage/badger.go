package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dgraph-io/badger/v4"
)

// MediaKeyPrefix namespaces media entries in the badger store.
const MediaKeyPrefix = "media:"

// BadgerMediaStore keeps uploads in an embedded badger database.
type BadgerMediaStore struct {
	db *badger.DB
}

// NewBadgerMediaStore opens the store at dir, or in memory when dir is empty.
func NewBadgerMediaStore(dir string) (*BadgerMediaStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open media store: %w", err)
	}
	return &BadgerMediaStore{db: db}, nil
}

func (s *BadgerMediaStore) Save(ctx context.Context, upload *Upload) (string, error) {
	key := newKey(upload)
	data, err := marshalEntity(&Object{ContentType: upload.ContentType, Data: upload.Data})
	if err != nil {
		return "", err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(MediaKeyPrefix+key), data)
	})
	if err != nil {
		return "", fmt.Errorf("failed to store media: %w", err)
	}
	return key, nil
}

func (s *BadgerMediaStore) Open(ctx context.Context, key string) (*Object, error) {
	var obj Object
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(MediaKeyPrefix + key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return unmarshalEntity(val, &obj)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &obj, nil
}

func (s *BadgerMediaStore) Delete(ctx context.Context, key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(MediaKeyPrefix + key))
	})
}

func (s *BadgerMediaStore) Close() error {
	return s.db.Close()
}

// Backup writes a full dump of the store to w.
func (s *BadgerMediaStore) Backup(w io.Writer) error {
	if _, err := s.db.Backup(w, 0); err != nil {
		return fmt.Errorf("failed to back up media store: %w", err)
	}
	return nil
}

// Restore loads a dump produced by Backup. Existing keys are overwritten.
func (s *BadgerMediaStore) Restore(r io.Reader) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic occurred during restore: %v", p)
		}
	}()
	if err := s.db.Load(r, 4); err != nil {
		return fmt.Errorf("failed to restore media store: %w", err)
	}
	return nil
}
