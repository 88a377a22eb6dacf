package store

import (
	"errors"
	"fmt"
)

var (
	// ErrDatabase is matched by every *DatabaseError.
	ErrDatabase = errors.New("database operation failed")

	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrInvalidOperator   = errors.New("invalid filter operator")
	ErrNonUniformRecords = errors.New("records do not share the same columns")
	ErrUnknownDialect    = errors.New("unknown dialect")
)

// DatabaseError wraps any failure reported by the driver while executing a
// statement. Callers only need to know the operation failed; the driver
// message is kept.
type DatabaseError struct {
	Op    string
	Table string
	Err   error
}

func (e *DatabaseError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("database %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("database %s on %s failed: %v", e.Op, e.Table, e.Err)
}

func (e *DatabaseError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrDatabase) match any DatabaseError.
func (e *DatabaseError) Is(target error) bool { return target == ErrDatabase }
