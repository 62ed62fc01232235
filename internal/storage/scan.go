package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// UTC returns a scan destination that stores timestamps in UTC, whatever the
// session TimeZone of the connection is.
func UTC(t *time.Time) sql.Scanner {
	return utcTime{t: t}
}

type utcTime struct {
	t *time.Time
}

func (u utcTime) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*u.t = v.UTC()
	case nil:
		*u.t = time.Time{}
	default:
		return fmt.Errorf("cannot scan %T into time.Time", src)
	}
	return nil
}
