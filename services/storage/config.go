package storage

import (
	"fmt"
)

const (
	BackendDynamoDB = "dynamodb"
	BackendBolt     = "bolt"
	BackendMemory   = "memory"

	DefaultTableName = "VisitorCounterDB"
)

type Config struct {
	// Which backend holds the counter table: dynamodb, bolt or memory.
	Backend string `toml:"backend" envconfig:"STORAGE_BACKEND"`
	// Name of the DynamoDB table, also used as the bolt bucket name.
	TableName string `toml:"table-name" envconfig:"TABLE_NAME"`
	// Path to a boltdb database file.
	BoltDBPath string `toml:"boltdb" envconfig:"BOLTDB_PATH"`
}

func NewConfig() Config {
	return Config{
		Backend:    BackendDynamoDB,
		TableName:  DefaultTableName,
		BoltDBPath: "./counterd.db",
	}
}

func (c Config) Validate() error {
	if c.TableName == "" {
		return fmt.Errorf("must specify storage 'table-name'")
	}
	switch c.Backend {
	case BackendDynamoDB, BackendMemory:
	case BackendBolt:
		if c.BoltDBPath == "" {
			return fmt.Errorf("must specify storage 'boltdb' path")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Backend)
	}
	return nil
}
