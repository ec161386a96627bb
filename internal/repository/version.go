package repository

import (
	"database/sql"
	"fmt"
)

// collectionVersion formats the fingerprint of a query result set from
// its row count and most recent modification time.  Any insert, update
// or delete touching the result set changes at least one of the two, so
// the fingerprint changes with it.  Timestamps are rendered at
// microsecond precision to match the DATETIME(6) columns; without the
// sub-second digits two writes in the same second would be
// indistinguishable.
func collectionVersion(count uint64, latest sql.NullTime) string {
	if !latest.Valid {
		return fmt.Sprintf("%d", count)
	}
	return fmt.Sprintf("%d-%s", count, latest.Time.UTC().Format("20060102150405.000000"))
}
