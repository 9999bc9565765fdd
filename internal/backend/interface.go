package backend

import (
	"context"

	"ledger/internal/amqp"
	"ledger/internal/services"
	"ledger/internal/store"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the record store, the optional verification queue
// and a cleanup function releasing both.
type BackendResult struct {
	Store   store.Store
	Queue   *amqp.Client
	Cleanup CleanupFunc
}

// VerificationQueue returns the queue as the services see it, or nil when
// AMQP is not configured.
func (r *BackendResult) VerificationQueue() services.VerificationQueue {
	if r.Queue == nil {
		return nil
	}
	return r.Queue
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Verification email queue, sqlite only
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
