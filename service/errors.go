package service

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

var (
	// ErrNotFound marks an expected, user-triggerable absence such as
	// removing a channel that was never added
	ErrNotFound = errors.New("not found")

	// ErrQuery wraps any failed or timed out store statement
	ErrQuery = errors.New("store query failed")

	// ErrInvalidArgument marks input rejected before reaching the store
	ErrInvalidArgument = errors.New("invalid argument")
)

// queryError logs a store failure with its context and wraps it as ErrQuery
func queryError(op string, fields log.Fields, err error) error {
	log.WithFields(fields).WithError(err).Errorf("%s failed", op)
	return fmt.Errorf("%w: %s: %w", ErrQuery, op, err)
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
