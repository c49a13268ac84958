package sqlite

import (
	"database/sql"
	"time"
)

// splitTimestamp returns the two integer columns a timestamp is stored in,
// Unix seconds and the nanosecond within that second. Ordering by (sec, nsec)
// is time order for every instant whose Unix seconds fit in an int64, whatever
// its year.
func splitTimestamp(t time.Time) (sec, nsec int64) {
	return t.Unix(), int64(t.Nanosecond())
}

// splitNullTimestamp stores the zero time as NULL.
func splitNullTimestamp(t time.Time) (sql.NullInt64, sql.NullInt64) {
	if t.IsZero() {
		return sql.NullInt64{}, sql.NullInt64{}
	}
	sec, nsec := splitTimestamp(t)
	return sql.NullInt64{Int64: sec, Valid: true}, sql.NullInt64{Int64: nsec, Valid: true}
}

func joinTimestamp(sec, nsec int64) time.Time {
	return time.Unix(sec, nsec).UTC()
}
