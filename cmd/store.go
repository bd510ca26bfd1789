package cmd

import (
	"fmt"
	"time"

	"github.com/boltdb/bolt"
	"github.com/xbt573/flup/internal/database"
	"github.com/xbt573/flup/internal/repository/entry"
	"gorm.io/gorm"
)

type store struct {
	repository entry.Repository

	// db is nil for backends without SQL connections.
	db *gorm.DB

	close func() error
}

func openStore(config Database, debug bool) (*store, error) {
	if config.Type == database.Bolt {
		db, err := bolt.Open(config.URI, 0600, &bolt.Options{Timeout: time.Second})
		if err != nil {
			return nil, fmt.Errorf("could not open bolt database %q: %w", config.URI, err)
		}

		return &store{repository: entry.NewBolt(db), close: db.Close}, nil
	}

	db, err := database.Open(config.Type, config.URI, debug)
	if err != nil {
		return nil, err
	}

	return &store{
		repository: entry.New(db),
		db:         db,
		close:      func() error { return database.Close(db) },
	}, nil
}
