package database

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Type string

const (
	PostgreSQL Type = "postgresql"
	SQLite     Type = "sqlite"
	Bolt       Type = "bolt"
)

// Open connects gorm to a SQL backend. Idle connections are not kept, so a
// connection released by a Session is really closed.
func Open(typ Type, uri string, debug bool) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch typ {
	case SQLite:
		dialector = sqlite.Open(uri)
	case PostgreSQL:
		dialector = postgres.Open(uri)
	default:
		return nil, fmt.Errorf("unknown sql database type: %v", typ)
	}

	level := logger.Silent
	if debug {
		level = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: logger.New(log.StandardLogger(), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("could not open %v database %q: %w", typ, uri, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(0)

	return db, nil
}

// Close releases every connection held by db.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}
