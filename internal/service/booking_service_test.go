package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBookingFixture(t *testing.T) (*BookingService, *memStore, *memCache) {
	t.Helper()
	s := newMemStore()
	cache := newMemCache()
	svc := NewBookingService(&memEventStore{s: s}, &memBookingStore{s: s}, newMemLocker(), cache, time.Second)
	return svc, s, cache
}

func TestCreateBookingAdmitsWithinCapacity(t *testing.T) {
	svc, store, _ := newBookingFixture(t)
	eventID := store.addEvent(10, 0)

	b, err := svc.CreateBooking(context.Background(), CreateBookingParams{
		EventID:       i64(int64(eventID)),
		UserID:        7,
		TicketsToBook: i64(7),
	})
	require.NoError(t, err)
	require.NotNil(t, b)

	assert.NotZero(t, b.ID)
	assert.Equal(t, eventID, b.EventID)
	assert.Equal(t, uint64(7), b.UserID)
	assert.Equal(t, uint32(7), b.BookedTickets)
	assert.Equal(t, uint32(7), store.bookedTickets(eventID))
}

func TestCreateBookingAdmitsExactRemainder(t *testing.T) {
	svc, store, _ := newBookingFixture(t)
	eventID := store.addEvent(10, 7)

	b, err := svc.CreateBooking(context.Background(), CreateBookingParams{
		EventID:       i64(int64(eventID)),
		UserID:        7,
		TicketsToBook: i64(3),
	})
	require.NoError(t, err)
	assert.Equal(t, uint32(3), b.BookedTickets)
	assert.Equal(t, uint32(10), store.bookedTickets(eventID))
}

func TestCreateBookingRejectsOverCapacity(t *testing.T) {
	svc, store, _ := newBookingFixture(t)
	eventID := store.addEvent(10, 7)

	b, err := svc.CreateBooking(context.Background(), CreateBookingParams{
		EventID:       i64(int64(eventID)),
		UserID:        7,
		TicketsToBook: i64(4),
	})
	require.ErrorIs(t, err, ErrNotEnoughTickets)
	assert.Nil(t, b)
	assert.EqualError(t, err, "Not enough tickets available")

	// The rejected admission must leave no trace.
	assert.Equal(t, uint32(7), store.bookedTickets(eventID))
	assert.Zero(t, store.bookingCount())
}

func TestCreateBookingUnknownEvent(t *testing.T) {
	svc, _, _ := newBookingFixture(t)

	_, err := svc.CreateBooking(context.Background(), CreateBookingParams{
		EventID:       i64(42),
		UserID:        7,
		TicketsToBook: i64(1),
	})
	var nf *EventNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.EqualError(t, err, "Could not find event with id 42")
	assert.True(t, IsClientError(err))
}

func TestCreateBookingValidation(t *testing.T) {
	svc, store, _ := newBookingFixture(t)
	eventID := int64(store.addEvent(10, 0))

	cases := []struct {
		name    string
		params  CreateBookingParams
		message string
	}{
		{
			name:    "missing event id",
			params:  CreateBookingParams{UserID: 7, TicketsToBook: i64(1)},
			message: "Event is required",
		},
		{
			name:    "non-positive event id",
			params:  CreateBookingParams{EventID: i64(0), UserID: 7, TicketsToBook: i64(1)},
			message: "Event must be greater than 0",
		},
		{
			name:    "missing tickets",
			params:  CreateBookingParams{EventID: i64(eventID), UserID: 7},
			message: "Tickets to book is required",
		},
		{
			name:    "zero tickets",
			params:  CreateBookingParams{EventID: i64(eventID), UserID: 7, TicketsToBook: i64(0)},
			message: "Tickets to book must be greater than 0",
		},
		{
			name:    "negative tickets",
			params:  CreateBookingParams{EventID: i64(eventID), UserID: 7, TicketsToBook: i64(-5)},
			message: "Tickets to book must be greater than 0",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateBooking(context.Background(), tc.params)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.EqualError(t, err, tc.message)
		})
	}

	// No validation failure may touch the database.
	assert.Equal(t, uint32(0), store.bookedTickets(uint64(eventID)))
	assert.Zero(t, store.bookingCount())
}

func TestCreateBookingLockTimeout(t *testing.T) {
	s := newMemStore()
	eventID := s.addEvent(10, 0)
	svc := NewBookingService(&memEventStore{s: s}, &memBookingStore{s: s}, stuckLocker{}, newMemCache(), 10*time.Millisecond)

	_, err := svc.CreateBooking(context.Background(), CreateBookingParams{
		EventID:       i64(int64(eventID)),
		UserID:        7,
		TicketsToBook: i64(1),
	})
	require.ErrorIs(t, err, ErrCouldNotBook)
	assert.EqualError(t, err, "Could not book the tickets")
	assert.Equal(t, uint32(0), s.bookedTickets(eventID))
}

func TestConcurrentAdmissionsForLastRemainingCapacity(t *testing.T) {
	svc, store, _ := newBookingFixture(t)
	eventID := store.addEvent(10, 0)

	// Two admissions race for 6 of 10 tickets; together they exceed
	// capacity, so exactly one may win.
	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.CreateBooking(context.Background(), CreateBookingParams{
				EventID:       i64(int64(eventID)),
				UserID:        uint64(i + 1),
				TicketsToBook: i64(6),
			})
		}(i)
	}
	wg.Wait()

	var wins, rejections int
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrNotEnoughTickets):
			rejections++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, rejections)
	assert.Equal(t, uint32(6), store.bookedTickets(eventID))
	assert.Equal(t, 1, store.bookingCount())
}

func TestConcurrentAdmissionsNeverOversell(t *testing.T) {
	svc, store, _ := newBookingFixture(t)
	const maxTickets = 50
	eventID := store.addEvent(maxTickets, 0)

	// 20 workers requesting 5 tickets each ask for double the capacity.
	const workers, perBooking = 20, 5
	var wg sync.WaitGroup
	results := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.CreateBooking(context.Background(), CreateBookingParams{
				EventID:       i64(int64(eventID)),
				UserID:        uint64(i + 1),
				TicketsToBook: i64(perBooking),
			})
		}(i)
	}
	wg.Wait()

	var admitted int
	for _, err := range results {
		if err == nil {
			admitted++
		} else if !errors.Is(err, ErrNotEnoughTickets) {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	booked := store.bookedTickets(eventID)
	assert.LessOrEqual(t, booked, uint32(maxTickets))
	// Every successful admission is accounted for in the counter.
	assert.Equal(t, uint32(admitted*perBooking), booked)
	assert.Equal(t, maxTickets/perBooking, admitted)
	assert.Equal(t, admitted, store.bookingCount())
}

func TestListMineValidation(t *testing.T) {
	svc, _, _ := newBookingFixture(t)

	cases := []struct {
		name    string
		params  ListBookingsParams
		message string
	}{
		{"missing limit", ListBookingsParams{UserID: 7, Offset: i64(0)}, "Limit is required"},
		{"missing offset", ListBookingsParams{UserID: 7, Limit: i64(10)}, "Offset is required"},
		{"zero limit", ListBookingsParams{UserID: 7, Limit: i64(0), Offset: i64(0)}, "Limit must be greater than 0"},
		{"limit over cap", ListBookingsParams{UserID: 7, Limit: i64(101), Offset: i64(0)}, "Limit must be less than or equal to 100"},
		{"negative offset", ListBookingsParams{UserID: 7, Limit: i64(10), Offset: i64(-1)}, "Offset must be greater than or equal to 0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ListMine(context.Background(), tc.params)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.EqualError(t, err, tc.message)
		})
	}
}

func TestListMineServesFromCacheUntilFingerprintMoves(t *testing.T) {
	svc, store, cache := newBookingFixture(t)
	eventID := store.addEvent(100, 0)

	book := func(tickets int64) {
		t.Helper()
		_, err := svc.CreateBooking(context.Background(), CreateBookingParams{
			EventID:       i64(int64(eventID)),
			UserID:        7,
			TicketsToBook: i64(tickets),
		})
		require.NoError(t, err)
	}
	listMine := func() []uint32 {
		t.Helper()
		bookings, err := svc.ListMine(context.Background(), ListBookingsParams{
			UserID: 7, Limit: i64(10), Offset: i64(0),
		})
		require.NoError(t, err)
		counts := make([]uint32, 0, len(bookings))
		for _, b := range bookings {
			counts = append(counts, b.BookedTickets)
		}
		return counts
	}

	book(2)
	book(3)
	assert.Equal(t, []uint32{2, 3}, listMine())
	assert.Equal(t, 1, cache.loadCount())

	// Unchanged fingerprint: served from cache, no second load.
	assert.Equal(t, []uint32{2, 3}, listMine())
	assert.Equal(t, 1, cache.loadCount())

	// A new booking moves the fingerprint and bypasses the stale entry.
	book(4)
	assert.Equal(t, []uint32{2, 3, 4}, listMine())
	assert.Equal(t, 2, cache.loadCount())
}

func TestListMineScopedToUser(t *testing.T) {
	svc, store, _ := newBookingFixture(t)
	eventID := store.addEvent(100, 0)

	for userID, tickets := range map[uint64]int64{1: 2, 2: 9} {
		_, err := svc.CreateBooking(context.Background(), CreateBookingParams{
			EventID:       i64(int64(eventID)),
			UserID:        userID,
			TicketsToBook: i64(tickets),
		})
		require.NoError(t, err)
	}

	bookings, err := svc.ListMine(context.Background(), ListBookingsParams{
		UserID: 1, Limit: i64(10), Offset: i64(0),
	})
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, uint64(1), bookings[0].UserID)
	assert.Equal(t, uint32(2), bookings[0].BookedTickets)
}
