package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

var (
	ErrNotFound       = errors.New("database: record not found")
	ErrDuplicateKey   = errors.New("database: duplicate key")
	ErrCheckViolation = errors.New("database: check constraint violation")
	ErrBusy           = errors.New("database: resource busy")
	ErrTimeout        = errors.New("database: query timeout")
)

func IsNotFound(err error) bool       { return errors.Is(err, ErrNotFound) }
func IsDuplicateKey(err error) bool   { return errors.Is(err, ErrDuplicateKey) }
func IsCheckViolation(err error) bool { return errors.Is(err, ErrCheckViolation) }

// Error pairs a sentinel with the original driver error.
type Error struct {
	Sentinel error
	Cause    error
	// Constraint is the violated constraint or column, when the driver reports it.
	Constraint string
}

func (e *Error) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("%s on %s (cause: %v)", e.Sentinel, e.Constraint, e.Cause)
	}
	return fmt.Sprintf("%s (cause: %v)", e.Sentinel, e.Cause)
}

func (e *Error) Is(target error) bool { return errors.Is(e.Sentinel, target) }
func (e *Error) Unwrap() error        { return e.Cause }

// ErrorMapper translates raw driver errors into the package sentinels.
type ErrorMapper interface {
	Map(err error) error
}

// ErrorMapperFunc adapts a function to ErrorMapper.
type ErrorMapperFunc func(error) error

func (f ErrorMapperFunc) Map(err error) error { return f(err) }

// DefaultErrorMapper handles lib/pq and mattn/go-sqlite3 errors.
func DefaultErrorMapper() ErrorMapper {
	return ErrorMapperFunc(defaultMap)
}

func defaultMap(err error) error {
	if err == nil {
		return nil
	}

	var mapped *Error
	if errors.As(err, &mapped) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &Error{Sentinel: ErrNotFound, Cause: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Sentinel: ErrTimeout, Cause: err}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return mapPQError(pqErr, err)
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return mapSQLiteError(liteErr, err)
	}
	return err
}

// SQLSTATE codes: https://www.postgresql.org/docs/current/errcodes-appendix.html
func mapPQError(pqErr *pq.Error, cause error) error {
	switch string(pqErr.Code) {
	case "23505": // unique_violation
		return &Error{Sentinel: ErrDuplicateKey, Cause: cause, Constraint: pqErr.Constraint}
	case "23514": // check_violation
		return &Error{Sentinel: ErrCheckViolation, Cause: cause, Constraint: pqErr.Constraint}
	case "40001", "40P01", "55P03": // serialization_failure, deadlock_detected, lock_not_available
		return &Error{Sentinel: ErrBusy, Cause: cause}
	case "57014": // query_canceled
		return &Error{Sentinel: ErrTimeout, Cause: cause}
	}
	return cause
}

func mapSQLiteError(liteErr sqlite3.Error, cause error) error {
	switch liteErr.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return &Error{Sentinel: ErrDuplicateKey, Cause: cause}
	case sqlite3.ErrConstraintCheck:
		return &Error{Sentinel: ErrCheckViolation, Cause: cause}
	}
	switch liteErr.Code {
	case sqlite3.ErrBusy, sqlite3.ErrLocked:
		return &Error{Sentinel: ErrBusy, Cause: cause}
	}
	return cause
}
