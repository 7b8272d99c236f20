package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"net"

	"github.com/lib/pq"
)

// retryRead runs a read query, retrying it once when the first failure is
// transient. Writes never go through here.
func (s *Store) retryRead(ctx context.Context, op string, fn func() error) error {
	err := fn()
	if err != nil && isTransient(err) && ctx.Err() == nil {
		s.log.WithContext(ctx).WithError(err).WithField("op", op).Warn("transient database error, retrying once")
		err = fn()
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		s.log.LogDBError(ctx, op, err)
	}
	return err
}

// isTransient reports whether err is a failure a second attempt can fix:
// dropped connections, server shutdown and serialization conflicts.
func isTransient(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code.Class() == "08":
			return true
		case pqErr.Code == "57P01", pqErr.Code == "40001", pqErr.Code == "40P01":
			return true
		}
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
