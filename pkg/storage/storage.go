// Package storage holds the blob store backing a review diff's two-sided
// archive: the tar.gz of the original and patched file trees addressed by
// the review ID (see pkg/reviewdiff). It never looks inside the archive —
// that's pkg/reviewdiff's job — it just stores and retrieves bytes by key.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"go.etcd.io/bbolt"
)

// ErrNotFound is returned by Get when id does not exist in the store.
var ErrNotFound = errors.New("storage: not found")

// Storage stores review-diff archives by ID. Archives are expected to be
// small — a handful of source files — so Storage deals in whole []byte
// blobs rather than io.Reader/Writer streams.
//
// Storage must never delete an object on its own initiative.
type Storage interface {
	// Get returns ErrNotFound if id does not exist.
	Get(ctx context.Context, id string) ([]byte, error)
	// Put overwrites any existing object stored at id.
	Put(ctx context.Context, id string, data []byte) error
	// Del returns nil if id does not exist.
	Del(ctx context.Context, id string) error
}

// ListStorage is a Storage that can also enumerate its contents, needed to
// warm a Cache's in-memory index on startup.
type ListStorage interface {
	Storage
	// List invokes cb once per stored object. Callers must not retain b
	// past the callback; copy it if needed.
	List(ctx context.Context, cb func(id string, b []byte) error) error
}

// MinioStorage stores objects in an S3-compatible bucket via minio-go. It is
// the permanent store used when a deployment configures an S3 endpoint
// instead of relying solely on the embedded database.
type MinioStorage struct {
	cl         *minio.Client
	bucketName string
}

var _ Storage = (*MinioStorage)(nil)

// NewMinioStorage wraps an already-configured minio client for bucketName.
// It does not verify the bucket exists; callers are expected to provision it
// out of band, same as any other S3 deployment concern.
func NewMinioStorage(cl *minio.Client, bucketName string) *MinioStorage {
	return &MinioStorage{cl: cl, bucketName: bucketName}
}

func (m *MinioStorage) Get(ctx context.Context, id string) ([]byte, error) {
	obj, err := m.cl.GetObject(ctx, m.bucketName, id, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (m *MinioStorage) Put(ctx context.Context, id string, data []byte) error {
	_, err := m.cl.PutObject(ctx, m.bucketName, id,
		bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
	return err
}

func (m *MinioStorage) Del(ctx context.Context, id string) error {
	return m.cl.RemoveObject(ctx, m.bucketName, id, minio.RemoveObjectOptions{})
}

// DBStorage stores objects in a bbolt bucket. It is the default permanent
// store, and also the usual backing store for a Cache sitting in front of a
// MinioStorage.
type DBStorage struct {
	db         *bbolt.DB
	bucketName []byte
}

var _ ListStorage = (*DBStorage)(nil)

// NewDBStorage opens (creating if necessary) bucketName in db.
//
// It panics if the bucket cannot be created, same as the bbolt.DB handed to
// it is generally assumed to already be open and writable at startup.
func NewDBStorage(db *bbolt.DB, bucketName []byte) *DBStorage {
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		panic(fmt.Errorf("storage: creating bucket %q: %w", bucketName, err))
	}
	return &DBStorage{db: db, bucketName: bucketName}
}

func (m *DBStorage) Get(ctx context.Context, id string) ([]byte, error) {
	var val []byte
	err := m.db.View(func(tx *bbolt.Tx) error {
		val = append(val, tx.Bucket(m.bucketName).Get([]byte(id))...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(val) == 0 {
		return nil, ErrNotFound
	}
	return val, nil
}

func (m *DBStorage) Put(ctx context.Context, id string, data []byte) error {
	return m.db.Batch(func(tx *bbolt.Tx) error {
		return tx.Bucket(m.bucketName).Put([]byte(id), data)
	})
}

func (m *DBStorage) Del(ctx context.Context, id string) error {
	return m.db.Batch(func(tx *bbolt.Tx) error {
		return tx.Bucket(m.bucketName).Delete([]byte(id))
	})
}

func (m *DBStorage) List(ctx context.Context, cb func(id string, b []byte) error) error {
	return m.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(m.bucketName).ForEach(func(k, v []byte) error {
			return cb(string(k), v)
		})
	})
}
