package storage

import (
	"fmt"
	"log/slog"

	"github.com/syndtr/goleveldb/leveldb"
	lvlerrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/opt"
	lvlstorage "github.com/syndtr/goleveldb/leveldb/storage"
)

// LevelDBEngine stores records in a LevelDB database.
type LevelDBEngine struct {
	db          *leveldb.DB
	locationURI string
}

// NewLevelDBEngine opens or creates a LevelDB database at path, recovering it
// if the manifest is corrupted.
func NewLevelDBEngine(path string, log *slog.Logger) (*LevelDBEngine, error) {
	opts := &opt.Options{
		Compression: opt.NoCompression,
	}

	db, err := leveldb.OpenFile(path, opts)
	if lvlerrors.IsCorrupted(err) {
		log.Warn("LevelDB corrupted, attempting recovery", "path", path, "err", err)
		db, err = leveldb.RecoverFile(path, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open leveldb at %s: %w", path, err)
	}

	log.Info("Opened LevelDB", "path", path)

	return &LevelDBEngine{
		db:          db,
		locationURI: fmt.Sprintf("leveldb://%s", path),
	}, nil
}

// NewMemoryEngine returns a LevelDB engine backed by memory only.
func NewMemoryEngine() (*LevelDBEngine, error) {
	db, err := leveldb.Open(lvlstorage.NewMemStorage(), nil)
	if err != nil {
		return nil, err
	}
	return &LevelDBEngine{
		db:          db,
		locationURI: "memory://",
	}, nil
}

func (e *LevelDBEngine) Get(key []byte) ([]byte, error) {
	value, err := e.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, errKeyNotFound
	}
	return value, err
}

func (e *LevelDBEngine) Put(key []byte, value []byte) error {
	return e.db.Put(key, value, nil)
}

func (e *LevelDBEngine) Delete(key []byte) error {
	return e.db.Delete(key, nil)
}

func (e *LevelDBEngine) Close() error {
	return e.db.Close()
}

func (e *LevelDBEngine) LocationURI() string {
	return e.locationURI
}
