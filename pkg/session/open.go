package session

import (
	"context"
	"fmt"
)

// Backend names accepted by [Open].
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendMongo  = "mongo"
)

// Options selects and configures a session backend.
type Options struct {
	Backend string
	Dir     string // file backend
	Mongo   MongoConfig
}

// Open returns the store named by opts.Backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile, "":
		return NewFileStore(opts.Dir)
	case BackendMongo:
		return NewMongoStore(ctx, opts.Mongo)
	default:
		return nil, fmt.Errorf("unknown session backend %q", opts.Backend)
	}
}
