// Package sqlxrepos implements the core repositories on PostgreSQL.
package sqlxrepos

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"net"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/tkabange/uangalizi/core"
)

const (
	uniqueViolation = "23505"

	// pg error classes that clear up on their own
	connectionException   = "08"
	operatorIntervention  = "57"
	insufficientResources = "53"
)

func isUniqueViolation(err error) bool {
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok {
		return pqErr.Code == uniqueViolation
	}
	return false
}

// isRetryable reports whether err is a connection-level or timeout
// failure rather than a statement error.
func isRetryable(err error) bool {
	cause := errors.Cause(err)
	switch cause {
	case driver.ErrBadConn, context.DeadlineExceeded, sql.ErrConnDone:
		return true
	}
	if netErr, ok := cause.(net.Error); ok {
		return netErr.Timeout()
	}
	if pqErr, ok := cause.(*pq.Error); ok {
		switch pqErr.Code.Class() {
		case connectionException, operatorIntervention, insufficientResources:
			return true
		}
	}
	return false
}

// wrapErr wraps a driver error with msg, surfacing connection-level and
// timeout failures as core.TransientError so callers can retry with
// backoff.
func wrapErr(err error, msg string) error {
	if isRetryable(err) {
		return core.NewTransientError(errors.Wrap(err, msg))
	}
	return errors.Wrap(err, msg)
}

// inTx runs fn inside a transaction, committing on nil and rolling back
// otherwise.
func inTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return wrapErr(err, "beginning transaction")
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err = tx.Commit(); err != nil {
		return wrapErr(err, "committing transaction")
	}
	return nil
}

func isNoRows(err error) bool {
	return errors.Cause(err) == sql.ErrNoRows
}

func dollar(n int) string {
	return "$" + strconv.Itoa(n)
}

// orderClause renders an ORDER BY body from the requested sort keys,
// keeping only whitelisted column names. Returns fallback when nothing
// usable was requested.
func orderClause(orderings []core.DBOrdering, allowed map[string]bool, fallback string) string {
	var parts []string
	for _, ord := range orderings {
		if !allowed[ord.Field] {
			continue
		}
		parts = append(parts, ord.String())
	}
	if len(parts) == 0 {
		return fallback
	}
	return strings.Join(parts, ", ")
}
