package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xaibot/event-ticketing/internal/config"
)

type row struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

func testConfig() config.QueryCacheConfig {
	return config.QueryCacheConfig{Enabled: true, TTL: 24 * time.Hour, Prefix: "query"}
}

func TestFetchMissLoadsAndStores(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	c := New(rdb, testConfig())

	rows := []row{{ID: 3, Name: "a"}, {ID: 4, Name: "b"}}
	payload, err := json.Marshal(rows)
	require.NoError(t, err)

	key := c.key("events:limit=2:offset=0", "2-20250101120000")
	mock.ExpectGet(key).RedisNil()
	mock.ExpectSetEx(key, payload, 24*time.Hour).SetVal("OK")

	loads := 0
	var got []row
	err = c.Fetch(context.Background(), "events:limit=2:offset=0", "2-20250101120000", &got,
		func(ctx context.Context) (interface{}, error) {
			loads++
			return rows, nil
		})
	require.NoError(t, err)
	assert.Equal(t, 1, loads)
	assert.Equal(t, rows, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchHitSkipsLoader(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	c := New(rdb, testConfig())

	rows := []row{{ID: 9, Name: "cached"}}
	payload, err := json.Marshal(rows)
	require.NoError(t, err)

	key := c.key("bookings:user=5:limit=4:offset=2", "10-20250101120000")
	mock.ExpectGet(key).SetVal(string(payload))

	var got []row
	err = c.Fetch(context.Background(), "bookings:user=5:limit=4:offset=2", "10-20250101120000", &got,
		func(ctx context.Context) (interface{}, error) {
			t.Fatal("loader must not run on a cache hit")
			return nil, nil
		})
	require.NoError(t, err)
	assert.Equal(t, rows, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchLoaderErrorIsReturned(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	c := New(rdb, testConfig())

	key := c.key("events:limit=1:offset=0", "0")
	mock.ExpectGet(key).RedisNil()

	var got []row
	err := c.Fetch(context.Background(), "events:limit=1:offset=0", "0", &got,
		func(ctx context.Context) (interface{}, error) {
			return nil, errors.New("db down")
		})
	assert.EqualError(t, err, "db down")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNilClientFallsThrough(t *testing.T) {
	c := New(nil, testConfig())

	loads := 0
	var got []row
	err := c.Fetch(context.Background(), "events:limit=1:offset=0", "1-x", &got,
		func(ctx context.Context) (interface{}, error) {
			loads++
			return []row{{ID: 1, Name: "direct"}}, nil
		})
	require.NoError(t, err)
	assert.Equal(t, 1, loads)
	assert.Equal(t, []row{{ID: 1, Name: "direct"}}, got)
}

func TestKeysAreIndependentPerQueryAndVersion(t *testing.T) {
	c := New(nil, testConfig())

	// Different pages, filters and fingerprints must never share an entry.
	assert.NotEqual(t, c.key("events:limit=4:offset=0", "5-a"), c.key("events:limit=4:offset=4", "5-a"))
	assert.NotEqual(t, c.key("events:limit=4:offset=0", "5-a"), c.key("events:limit=4:offset=0", "6-b"))
	assert.NotEqual(t, c.key("bookings:user=1:limit=4:offset=0", "5-a"), c.key("bookings:user=2:limit=4:offset=0", "5-a"))
	// Same query and fingerprint must address the same entry.
	assert.Equal(t, c.key("events:limit=4:offset=0", "5-a"), c.key("events:limit=4:offset=0", "5-a"))
}
