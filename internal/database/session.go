package database

import (
	"context"
	"database/sql"
	"fmt"

	"gorm.io/gorm"
)

// Session holds at most one connection for the lifetime of a request. The
// connection is taken from the pool on the first call to DB and given back by
// Close. A Session must not be shared between goroutines.
type Session struct {
	ctx  context.Context
	root *gorm.DB

	conn *sql.Conn
	db   *gorm.DB
}

func NewSession(ctx context.Context, root *gorm.DB) *Session {
	return &Session{ctx: ctx, root: root}
}

// DB returns a gorm handle pinned to the session's connection, acquiring it
// if this is the first use.
func (s *Session) DB() (*gorm.DB, error) {
	if s.db != nil {
		return s.db, nil
	}

	sqlDB, err := s.root.DB()
	if err != nil {
		return nil, err
	}

	conn, err := sqlDB.Conn(s.ctx)
	if err != nil {
		return nil, fmt.Errorf("could not acquire connection: %w", err)
	}

	db := s.root.Session(&gorm.Session{NewDB: true, Context: s.ctx})
	db.Statement.ConnPool = conn

	s.conn, s.db = conn, db
	return db, nil
}

// Acquired reports whether DB has opened a connection that Close has not yet
// released.
func (s *Session) Acquired() bool {
	return s.conn != nil
}

// Close releases the connection, if any. It is safe to call more than once.
func (s *Session) Close() error {
	if s.conn == nil {
		return nil
	}

	err := s.conn.Close()
	s.conn, s.db = nil, nil

	return err
}

type sessionKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext returns the session attached by WithSession, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey{}).(*Session)
	return s
}
