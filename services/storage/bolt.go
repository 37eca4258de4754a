package storage

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

// Bolt implementation of Interface.
// Records are stored as JSON values keyed by ID inside a single bucket.
type Bolt struct {
	db     *bolt.DB
	bucket []byte
}

func NewBolt(db *bolt.DB, bucket string) *Bolt {
	return &Bolt{
		db:     db,
		bucket: []byte(bucket),
	}
}

func (b *Bolt) get(tx *bolt.Tx, id string) (*Record, error) {
	bucket := tx.Bucket(b.bucket)
	if bucket == nil {
		return nil, ErrNoRecordExists
	}
	val := bucket.Get([]byte(id))
	if val == nil {
		return nil, ErrNoRecordExists
	}
	r := new(Record)
	if err := json.Unmarshal(val, r); err != nil {
		return nil, errors.Wrapf(err, "malformed record %q", id)
	}
	r.ID = id
	return r, nil
}

func (b *Bolt) put(tx *bolt.Tx, r *Record) error {
	bucket, err := tx.CreateBucketIfNotExists(b.bucket)
	if err != nil {
		return err
	}
	value, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return bucket.Put([]byte(r.ID), value)
}

func (b *Bolt) Get(_ context.Context, id string) (r *Record, err error) {
	err = b.db.View(func(tx *bolt.Tx) error {
		r, err = b.get(tx, id)
		return err
	})
	return
}

func (b *Bolt) Put(_ context.Context, r *Record) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return b.put(tx, r)
	})
}

// Increment reads and writes the record inside one bolt write transaction.
// Bolt allows a single writer at a time, which makes the update atomic.
func (b *Bolt) Increment(_ context.Context, id string, delta int64) (count int64, err error) {
	err = b.db.Update(func(tx *bolt.Tx) error {
		r, err := b.get(tx, id)
		if err == ErrNoRecordExists {
			r = &Record{ID: id}
		} else if err != nil {
			return err
		}
		r.Count += delta
		if err := b.put(tx, r); err != nil {
			return err
		}
		count = r.Count
		return nil
	})
	return
}
