package storage

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// EngineFactory creates storage engines from location URIs.
type EngineFactory struct {
	log *slog.Logger
}

// NewEngineFactory creates a new factory instance.
func NewEngineFactory(logger *slog.Logger) *EngineFactory {
	return &EngineFactory{log: logger}
}

// EngineFor creates a storage engine from a location URI.
// The URI format should be [scheme]://[host][/path]
//
// Supported schemes:
//   - leveldb:// - LevelDB directory (default for the seeder)
//   - bolt:// - BoltDB single file
//   - memory:// - in-memory LevelDB, contents are lost on exit
//
// Returns an error if the URI is invalid or the scheme is unsupported.
func (f *EngineFactory) EngineFor(locationURI string) (Engine, error) {
	u, err := url.Parse(locationURI)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLocationURI, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "leveldb":
		path, err := pathFromURI(u)
		if err != nil {
			return nil, err
		}
		f.log.Debug("Creating leveldb engine", slog.String("uri", u.String()))
		if err := os.MkdirAll(path, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		return NewLevelDBEngine(path, f.log)
	case "bolt":
		path, err := pathFromURI(u)
		if err != nil {
			return nil, err
		}
		f.log.Debug("Creating bolt engine", slog.String("uri", u.String()))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		return NewBoltEngine(path, f.log)
	case "memory":
		f.log.Warn("Using in-memory record store, registrations will not survive a restart")
		return NewMemoryEngine()
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidLocationURI, u.Scheme)
	}
}

// pathFromURI handles both leveldb:///abs/path and leveldb://./relative/path.
func pathFromURI(u *url.URL) (string, error) {
	path := u.Path
	if u.Host != "" {
		path = u.Host + "/" + strings.TrimPrefix(path, "/")
	}
	if path == "" {
		return "", fmt.Errorf("%w: empty path in %s", ErrInvalidLocationURI, u.String())
	}
	return path, nil
}
