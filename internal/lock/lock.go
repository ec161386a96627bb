// Package lock provides a distributed, named mutex backed by MySQL
// advisory locks (GET_LOCK / RELEASE_LOCK).  Because the lock lives in
// the database it serializes critical sections across every process and
// node sharing that database, which is what the horizontally scaled
// serving tier requires.  A process-local sync.Mutex would not survive
// a second replica.
package lock

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"
)

// ErrTimeout is returned by Acquire when the lock could not be obtained
// within the requested timeout.  The system state is untouched in that
// case; callers simply report the failure.
var ErrTimeout = errors.New("lock acquisition timed out")

// NameForEvent derives the advisory lock name for an event.  Bookings for
// different events use different names and therefore never contend.
func NameForEvent(eventID uint64) string {
	return fmt.Sprintf("event:%d", eventID)
}

// Handle represents a held lock.  Release must be called on every exit
// path of the critical section; callers are expected to defer it
// immediately after a successful Acquire.
type Handle interface {
	Release(ctx context.Context) error
}

// Manager acquires named advisory locks.  MySQL scopes GET_LOCK to the
// connection that took it, so the manager checks a connection out of the
// pool for each acquisition and pins it until the lock is released.
type Manager struct {
	db *sql.DB
}

// NewManager returns a Manager bound to the given database.
func NewManager(db *sql.DB) *Manager { return &Manager{db: db} }

// Acquire blocks until the named lock is obtained or the timeout elapses.
// On timeout it returns ErrTimeout.  The returned Handle owns a pinned
// database connection; Release returns the connection to the pool.
func (m *Manager) Acquire(ctx context.Context, name string, timeout time.Duration) (Handle, error) {
	conn, err := m.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	secs := int(timeout / time.Second)
	if secs < 1 {
		secs = 1
	}
	var got sql.NullInt64
	if err := conn.QueryRowContext(ctx, `SELECT GET_LOCK(?, ?)`, name, secs).Scan(&got); err != nil {
		_ = conn.Close()
		return nil, err
	}
	// GET_LOCK returns 1 when acquired, 0 on timeout and NULL on error.
	if !got.Valid {
		_ = conn.Close()
		return nil, fmt.Errorf("GET_LOCK(%q) failed", name)
	}
	if got.Int64 != 1 {
		_ = conn.Close()
		return nil, ErrTimeout
	}
	return &mysqlLock{conn: conn, name: name}, nil
}

// mysqlLock pins the connection holding a named lock until released.
type mysqlLock struct {
	conn *sql.Conn
	name string
}

// Release frees the advisory lock and returns the pinned connection to
// the pool.  When RELEASE_LOCK cannot be executed (cancelled context,
// broken connection) the session is discarded instead of pooled: the
// server drops a session's locks when the session dies, and a pooled
// connection still holding the lock would block every later admission
// for this event.
func (l *mysqlLock) Release(ctx context.Context) error {
	var released sql.NullInt64
	err := l.conn.QueryRowContext(ctx, `SELECT RELEASE_LOCK(?)`, l.name).Scan(&released)
	if err != nil {
		// ErrBadConn from Raw marks the connection broken, forcing the
		// pool to close the underlying session rather than reuse it.
		_ = l.conn.Raw(func(interface{}) error { return driver.ErrBadConn })
		_ = l.conn.Close()
		return err
	}
	return l.conn.Close()
}
