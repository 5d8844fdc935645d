// Package storage persists mind maps and the clipboard slot.
//
// Persistence is split in two layers:
//
//   - [KV]: a byte-level key-value backend. Implementations cover memory,
//     files, SQLite, Redis and MongoDB, plus a circuit-breaker wrapper for
//     the remote ones.
//   - [Gateway]: the mind-map store built on top of a KV. All documents
//     live under a single namespace key ("mindmaps") as a JSON object
//     mapping document name to document; the clipboard slot lives under
//     "mindmap-copied-node".
//
// The layout is identical on every backend, so a store written through
// the file backend can be copied into Redis byte for byte.
//
// # Failure Policy
//
// Gateway methods never return errors. Backend failures and unparsable
// content are logged and reported as a neutral result (false, nil or an
// empty list); callers treat "did not happen" as a normal outcome.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/matzehuels/mindcanvas/pkg/observability"
)

// KV is a byte-level key-value store.
type KV interface {
	// Get returns the value for key. A missing key is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key, replacing any previous value.
	Set(ctx context.Context, key string, data []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Backend names.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Sentinel errors for storage operations.
var (
	// ErrClosed is returned by operations on a closed backend.
	ErrClosed = errors.New("storage closed")

	// ErrUnknownBackend is returned by Open for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown storage backend")
)

// RetryableError wraps an error to indicate it should trigger a retry.
type RetryableError struct{ Err error }

// Retryable wraps an error as a RetryableError.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// Error returns the error message of the wrapped error.
func (e *RetryableError) Error() string { return e.Err.Error() }

// Unwrap returns the wrapped error.
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable checks if an error is wrapped with RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// retryDelay is the first backoff delay of RetryWithBackoff.
var retryDelay = 100 * time.Millisecond

// RetryWithBackoff retries fn up to 3 times with exponential backoff.
// Only errors wrapped with Retryable will trigger retries.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	const attempts = 3
	delay := retryDelay
	var lastErr error

	for i := 0; i < attempts; i++ {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

// =============================================================================
// Instrumentation
// =============================================================================

// instrumented reports every KV call of a backend to the storage hooks.
type instrumented struct {
	KV
	backend string
}

// Instrument wraps kv so that its operations are reported to
// observability.Storage under the given backend name.
func Instrument(kv KV, backend string) KV {
	return &instrumented{KV: kv, backend: backend}
}

func (i *instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()
	data, ok, err := i.KV.Get(ctx, key)
	observability.Storage().OnRead(ctx, i.backend, ok, time.Since(start), err)
	return data, ok, err
}

func (i *instrumented) Set(ctx context.Context, key string, data []byte) error {
	start := time.Now()
	err := i.KV.Set(ctx, key, data)
	observability.Storage().OnWrite(ctx, i.backend, len(data), time.Since(start), err)
	return err
}

func (i *instrumented) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := i.KV.Delete(ctx, key)
	observability.Storage().OnDelete(ctx, i.backend, time.Since(start), err)
	return err
}
