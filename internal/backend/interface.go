package backend

import (
	"context"
	"slices"

	"taxiledger/internal/amqp"
	"taxiledger/internal/ledger"
)

type CleanupFunc func() error

// BackendResult holds the opened store and, when AMQP is configured and
// reachable, the change event client. Cleanup releases both.
type BackendResult struct {
	Store   ledger.Store
	Events  *amqp.Client
	Cleanup CleanupFunc
}

// Factory opens backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Memory specific, empty keeps records in process memory only
	DataFile string

	// Change events, empty URL disables them
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	return slices.Contains(GetBackendTypes(), bt)
}
