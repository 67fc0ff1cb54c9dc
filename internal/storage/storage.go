// Package storage defines the persisted key-value slot that holds serialized
// cart and order state, plus the backends-agnostic helpers around it.
package storage

import (
	"context"

	"github.com/go-faster/errors"
)

// Well-known keys. A user-partitioned deployment suffixes them with
// ":<userID>" (see UserKey).
const (
	CartKey   = "swift_grocers_cart"
	OrdersKey = "swift_grocers_orders"
	SavedKey  = "swift_grocers_saved"
)

// ErrUnavailable marks failures of the underlying store: disabled storage,
// lost connections, quota or disk errors. Backends wrap their transport
// errors with it so callers can recognise the class with errors.Is.
var ErrUnavailable = errors.New("store unavailable")

// Store is a durable key-value slot.
//
// Read returns (nil, nil) when the key has never been written.
type Store interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, value []byte) error
}

// UserKey scopes a base key to a single user. An empty userID returns the
// base key unchanged, which is the device-scoped layout.
func UserKey(base, userID string) string {
	if userID == "" {
		return base
	}
	return base + ":" + userID
}

// Unavailable wraps err so that errors.Is(err, ErrUnavailable) holds while
// the original cause stays reachable through errors.Unwrap chains.
func Unavailable(err error, op string) error {
	if err == nil {
		return nil
	}
	return &unavailableError{op: op, err: err}
}

type unavailableError struct {
	op  string
	err error
}

func (e *unavailableError) Error() string {
	return e.op + ": " + ErrUnavailable.Error() + ": " + e.err.Error()
}

func (e *unavailableError) Unwrap() error { return e.err }

func (e *unavailableError) Is(target error) bool { return target == ErrUnavailable }
