package storage

import (
	"context"
	"os"
	"path"
	"sync"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

type Diagnostic interface {
	OpenedStore(backend, location string)
}

type Service struct {
	c Config

	mu     sync.Mutex
	boltdb *bolt.DB
	store  Interface

	dynamo DynamoDBProvider
	diag   Diagnostic
}

// NewService creates an unopened storage service.
// The DynamoDB provider is only used by the dynamodb backend and may be nil otherwise.
func NewService(c Config, dynamo DynamoDBProvider, d Diagnostic) *Service {
	return &Service{
		c:      c,
		dynamo: dynamo,
		diag:   d,
	}
}

func (s *Service) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.c.Backend {
	case BackendDynamoDB:
		if s.dynamo == nil {
			return errors.New("dynamodb backend requires an aws client")
		}
		s.store = NewDynamoDB(s.c.TableName, s.dynamo)
		s.diag.OpenedStore(s.c.Backend, s.c.TableName)
	case BackendBolt:
		err := os.MkdirAll(path.Dir(s.c.BoltDBPath), 0755)
		if err != nil {
			return errors.Wrapf(err, "mkdir dirs %q", s.c.BoltDBPath)
		}
		db, err := bolt.Open(s.c.BoltDBPath, 0600, &bolt.Options{Timeout: time.Second})
		if err != nil {
			return errors.Wrapf(err, "open boltdb @ %q", s.c.BoltDBPath)
		}
		s.boltdb = db
		s.store = NewBolt(db, s.c.TableName)
		s.diag.OpenedStore(s.c.Backend, s.c.BoltDBPath)
	case BackendMemory:
		s.store = NewMemStore(s.c.TableName)
		s.diag.OpenedStore(s.c.Backend, s.c.TableName)
	default:
		return errors.Errorf("unknown storage backend %q", s.c.Backend)
	}
	return nil
}

func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store = nil
	if s.boltdb != nil {
		err := s.boltdb.Close()
		s.boltdb = nil
		return err
	}
	return nil
}

// Store returns the opened counter table.
func (s *Service) Store() Interface {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store
}

var errNotOpen = errors.New("storage service is not open")

func (s *Service) Get(ctx context.Context, id string) (*Record, error) {
	store := s.Store()
	if store == nil {
		return nil, errNotOpen
	}
	return store.Get(ctx, id)
}

func (s *Service) Put(ctx context.Context, r *Record) error {
	store := s.Store()
	if store == nil {
		return errNotOpen
	}
	return store.Put(ctx, r)
}

func (s *Service) Increment(ctx context.Context, id string, delta int64) (int64, error) {
	store := s.Store()
	if store == nil {
		return 0, errNotOpen
	}
	return store.Increment(ctx, id, delta)
}
