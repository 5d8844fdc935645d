package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// Options selects and configures a backend for Open.
type Options struct {
	Backend string

	// Dir is the data directory for the file backend and the default
	// location of the SQLite database.
	Dir        string
	SQLitePath string

	Redis RedisConfig
	Mongo MongoConfig

	// Breaker wraps remote backends (redis, mongo) in a circuit breaker.
	Breaker bool

	Logger *log.Logger
}

// Open creates the backend named by opts.Backend. Every backend is
// instrumented with the storage observability hooks.
func Open(ctx context.Context, opts Options) (KV, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	var (
		kv     KV
		err    error
		remote bool
	)
	switch opts.Backend {
	case BackendMemory:
		kv = NewMemoryKV()
	case BackendFile, "":
		kv, err = NewFileKV(opts.Dir)
	case BackendSQLite:
		path := opts.SQLitePath
		if path == "" {
			path = filepath.Join(opts.Dir, "mindcanvas.sqlite")
		}
		kv, err = NewSQLiteKV(ctx, path)
	case BackendRedis:
		kv, err = NewRedisKV(ctx, opts.Redis)
		remote = true
	case BackendMongo:
		kv, err = NewMongoKV(ctx, opts.Mongo)
		remote = true
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
	if err != nil {
		return nil, err
	}

	name := opts.Backend
	if name == "" {
		name = BackendFile
	}
	if remote && opts.Breaker {
		kv = NewBreakerKV(kv, DefaultBreakerConfig(name), logger)
	}
	logger.Debug("opened store", "backend", name)
	return Instrument(kv, name), nil
}
