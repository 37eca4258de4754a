package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/nesq/resumecount/services/storage"
	"github.com/stretchr/testify/require"
)

type diag struct {
	opened []string
}

func (d *diag) OpenedStore(backend, location string) {
	d.opened = append(d.opened, backend+":"+location)
}

func TestService_Bolt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "counterd.db")
	c := storage.NewConfig()
	c.Backend = storage.BackendBolt
	c.BoltDBPath = path
	require.NoError(t, c.Validate())

	d := &diag{}
	s := storage.NewService(c, nil, d)
	require.NoError(t, s.Open())
	require.Equal(t, []string{"bolt:" + path}, d.opened)

	ctx := context.Background()
	count, err := s.Increment(ctx, "visitor_count", 1)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
	require.NoError(t, s.Close())

	// The count survives a reopen.
	s = storage.NewService(c, nil, d)
	require.NoError(t, s.Open())
	defer s.Close()
	r, err := s.Get(ctx, "visitor_count")
	require.NoError(t, err)
	require.Equal(t, int64(1), r.Count)
}

func TestService_Memory(t *testing.T) {
	c := storage.NewConfig()
	c.Backend = storage.BackendMemory
	s := storage.NewService(c, nil, &diag{})
	require.NoError(t, s.Open())
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Put(ctx, &storage.Record{ID: "visitor_count", Count: 41}))
	count, err := s.Increment(ctx, "visitor_count", 1)
	require.NoError(t, err)
	require.Equal(t, int64(42), count)
}

func TestService_NotOpen(t *testing.T) {
	c := storage.NewConfig()
	c.Backend = storage.BackendMemory
	s := storage.NewService(c, nil, &diag{})

	_, err := s.Get(context.Background(), "visitor_count")
	require.Error(t, err)
	_, err = s.Increment(context.Background(), "visitor_count", 1)
	require.Error(t, err)
	require.Nil(t, s.Store())
}

func TestService_DynamoDBRequiresClient(t *testing.T) {
	s := storage.NewService(storage.NewConfig(), nil, &diag{})
	require.Error(t, s.Open())
}

func TestConfig_Validate(t *testing.T) {
	testCases := map[string]struct {
		modify func(c *storage.Config)
		valid  bool
	}{
		"defaults":     {modify: func(c *storage.Config) {}, valid: true},
		"no table":     {modify: func(c *storage.Config) { c.TableName = "" }},
		"bolt no path": {modify: func(c *storage.Config) { c.Backend = storage.BackendBolt; c.BoltDBPath = "" }},
		"bad backend":  {modify: func(c *storage.Config) { c.Backend = "redis" }},
		"memory":       {modify: func(c *storage.Config) { c.Backend = storage.BackendMemory }, valid: true},
	}
	for name, tc := range testCases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			c := storage.NewConfig()
			tc.modify(&c)
			err := c.Validate()
			if tc.valid {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}
