package errdefs

import (
	"errors"
	"fmt"
)

// Sentinel categories. Callers classify with the Is* predicates and map
// categories to transport status codes at the edge.
var (
	// ErrNotFound indicates the requested entity does not exist (e.g. a
	// query issued before any data has been ingested).
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument indicates a malformed logical argument, such as a
	// wrong run name or an end index below the begin index.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrOutOfRange indicates a numeric index or range outside the
	// currently known bounds.
	ErrOutOfRange = errors.New("out of range")

	// ErrNotSupported indicates a deliberately unimplemented operation.
	ErrNotSupported = errors.New("not supported")
)

// NotFoundf returns an error that matches ErrNotFound.
func NotFoundf(format string, args ...any) error {
	return wrapf(ErrNotFound, format, args...)
}

// InvalidArgumentf returns an error that matches ErrInvalidArgument.
func InvalidArgumentf(format string, args ...any) error {
	return wrapf(ErrInvalidArgument, format, args...)
}

// OutOfRangef returns an error that matches ErrOutOfRange.
func OutOfRangef(format string, args ...any) error {
	return wrapf(ErrOutOfRange, format, args...)
}

// NotSupportedf returns an error that matches ErrNotSupported.
func NotSupportedf(format string, args ...any) error {
	return wrapf(ErrNotSupported, format, args...)
}

// IsNotFound reports whether err matches ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsInvalidArgument reports whether err matches ErrInvalidArgument.
func IsInvalidArgument(err error) bool { return errors.Is(err, ErrInvalidArgument) }

// IsOutOfRange reports whether err matches ErrOutOfRange.
func IsOutOfRange(err error) bool { return errors.Is(err, ErrOutOfRange) }

// IsNotSupported reports whether err matches ErrNotSupported.
func IsNotSupported(err error) bool { return errors.Is(err, ErrNotSupported) }

// categorized carries a category sentinel while keeping the formatted
// message as the visible text (no "invalid argument:" prefix leaks into
// API error bodies).
type categorized struct {
	category error
	msg      string
}

func (e *categorized) Error() string { return e.msg }

func (e *categorized) Is(target error) bool { return target == e.category }

func wrapf(category error, format string, args ...any) error {
	return &categorized{category: category, msg: fmt.Sprintf(format, args...)}
}
