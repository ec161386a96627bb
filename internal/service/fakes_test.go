package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/xaibot/event-ticketing/internal/lock"
	"github.com/xaibot/event-ticketing/internal/model"
	"github.com/xaibot/event-ticketing/internal/repository"
)

// memStore is a shared in-memory backend for the event and booking
// store fakes.  A single mutex guards both tables so the booking
// fake's counter bump plus insert is atomic, matching the transactional
// guarantee of the real repository.
type memStore struct {
	mu            sync.Mutex
	events        map[uint64]model.Event
	bookings      []model.Booking
	nextEventID   uint64
	nextBookingID uint64
}

func newMemStore() *memStore {
	return &memStore{events: make(map[uint64]model.Event)}
}

func (s *memStore) addEvent(maxTickets, booked uint32) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextEventID++
	now := time.Now().UTC()
	s.events[s.nextEventID] = model.Event{
		ID:            s.nextEventID,
		UserID:        1,
		Name:          fmt.Sprintf("Event %d", s.nextEventID),
		Description:   "test event",
		Address:       "1 Test Street",
		StartsAt:      now.Add(24 * time.Hour),
		MaxTickets:    maxTickets,
		BookedTickets: booked,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return s.nextEventID
}

func (s *memStore) bookedTickets(eventID uint64) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events[eventID].BookedTickets
}

func (s *memStore) bookingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}

// ----- EventStore fake -----

type memEventStore struct{ s *memStore }

func (m *memEventStore) Create(_ context.Context, e *model.Event) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.nextEventID++
	e.ID = m.s.nextEventID
	now := time.Now().UTC()
	e.CreatedAt, e.UpdatedAt = now, now
	m.s.events[e.ID] = *e
	return nil
}

func (m *memEventStore) GetByID(_ context.Context, id uint64) (*model.Event, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	e, ok := m.s.events[id]
	if !ok {
		return nil, repository.ErrEventNotFound
	}
	cp := e
	return &cp, nil
}

func (m *memEventStore) List(_ context.Context, limit, offset uint64) ([]model.Event, error) {
	return m.page(0, limit, offset), nil
}

func (m *memEventStore) ListByOwner(_ context.Context, ownerID, limit, offset uint64) ([]model.Event, error) {
	return m.page(ownerID, limit, offset), nil
}

func (m *memEventStore) Version(_ context.Context, limit, offset uint64) (string, error) {
	return pageVersion(eventsMeta(m.page(0, limit, offset))), nil
}

func (m *memEventStore) VersionByOwner(_ context.Context, ownerID, limit, offset uint64) (string, error) {
	return pageVersion(eventsMeta(m.page(ownerID, limit, offset))), nil
}

func (m *memEventStore) page(ownerID, limit, offset uint64) []model.Event {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	all := make([]model.Event, 0, len(m.s.events))
	for _, e := range m.s.events {
		if ownerID == 0 || e.UserID == ownerID {
			all = append(all, e)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	if offset >= uint64(len(all)) {
		return nil
	}
	all = all[offset:]
	if limit < uint64(len(all)) {
		all = all[:limit]
	}
	return all
}

// ----- BookingStore fake -----

type memBookingStore struct{ s *memStore }

func (m *memBookingStore) Create(_ context.Context, b *model.Booking) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	e, ok := m.s.events[b.EventID]
	if !ok {
		return repository.ErrEventNotFound
	}
	now := time.Now().UTC()
	e.BookedTickets += b.BookedTickets
	e.UpdatedAt = now
	m.s.events[b.EventID] = e

	m.s.nextBookingID++
	b.ID = m.s.nextBookingID
	b.CreatedAt, b.UpdatedAt = now, now
	m.s.bookings = append(m.s.bookings, *b)
	return nil
}

func (m *memBookingStore) ListByUser(_ context.Context, userID, limit, offset uint64) ([]model.Booking, error) {
	return m.page(userID, limit, offset), nil
}

func (m *memBookingStore) VersionByUser(_ context.Context, userID, limit, offset uint64) (string, error) {
	return pageVersion(bookingsMeta(m.page(userID, limit, offset))), nil
}

func (m *memBookingStore) page(userID, limit, offset uint64) []model.Booking {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	all := make([]model.Booking, 0)
	for _, b := range m.s.bookings {
		if b.UserID == userID {
			all = append(all, b)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	if offset >= uint64(len(all)) {
		return nil
	}
	all = all[offset:]
	if limit < uint64(len(all)) {
		all = all[:limit]
	}
	return all
}

// pageVersion mirrors the fingerprint shape the repositories produce:
// row count plus the newest updated_at in the page.
func pageVersion(count int, latest time.Time) string {
	if count == 0 {
		return "0"
	}
	return fmt.Sprintf("%d-%d", count, latest.UnixNano())
}

func eventsMeta(page []model.Event) (int, time.Time) {
	var latest time.Time
	for _, e := range page {
		if e.UpdatedAt.After(latest) {
			latest = e.UpdatedAt
		}
	}
	return len(page), latest
}

func bookingsMeta(page []model.Booking) (int, time.Time) {
	var latest time.Time
	for _, b := range page {
		if b.UpdatedAt.After(latest) {
			latest = b.UpdatedAt
		}
	}
	return len(page), latest
}

// ----- Locker fakes -----

// memLocker provides real mutual exclusion per lock name, so the
// concurrency tests exercise the same serialization the MySQL lock
// gives in production.
type memLocker struct {
	mu   sync.Mutex
	busy map[string]bool
}

func newMemLocker() *memLocker { return &memLocker{busy: make(map[string]bool)} }

func (l *memLocker) Acquire(ctx context.Context, name string, timeout time.Duration) (lock.Handle, error) {
	deadline := time.Now().Add(timeout)
	for {
		l.mu.Lock()
		if !l.busy[name] {
			l.busy[name] = true
			l.mu.Unlock()
			return &memLockHandle{l: l, name: name}, nil
		}
		l.mu.Unlock()
		if time.Now().After(deadline) {
			return nil, lock.ErrTimeout
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Millisecond):
		}
	}
}

type memLockHandle struct {
	l    *memLocker
	name string
}

func (h *memLockHandle) Release(context.Context) error {
	h.l.mu.Lock()
	h.l.busy[h.name] = false
	h.l.mu.Unlock()
	return nil
}

// stuckLocker simulates a lock that is never granted.
type stuckLocker struct{}

func (stuckLocker) Acquire(context.Context, string, time.Duration) (lock.Handle, error) {
	return nil, lock.ErrTimeout
}

// ----- ListCache fake -----

// memCache memoizes pages under name|version keys like the Redis query
// cache, and counts loader invocations so tests can assert hits versus
// misses.
type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	loads   int
}

func newMemCache() *memCache { return &memCache{entries: make(map[string][]byte)} }

func (c *memCache) Fetch(ctx context.Context, name, version string, out interface{}, load func(ctx context.Context) (interface{}, error)) error {
	key := name + "|" + version
	c.mu.Lock()
	cached, ok := c.entries[key]
	c.mu.Unlock()
	if ok {
		return json.Unmarshal(cached, out)
	}

	v, err := load(ctx)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.entries[key] = payload
	c.loads++
	c.mu.Unlock()
	return json.Unmarshal(payload, out)
}

func (c *memCache) loadCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loads
}

// ----- shared helpers -----

func strPtr(s string) *string { return &s }
func i64(n int64) *int64      { return &n }
