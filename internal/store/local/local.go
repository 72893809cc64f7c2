// Package local persists the catalog to an embedded BadgerDB key/value
// store. Two keys hold the full collections as JSON arrays; every
// mutation overwrites both. Corrupt or missing values load as empty,
// never as an error.
package local

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"agro-gps/field-backend/internal/fields"
)

const (
	areasKey    = "areas-key"
	productsKey = "products-key"
)

// Store is the local persistence layer. Single writer; Badger handles
// its own internal locking.
type Store struct {
	db     *badger.DB
	logger *zap.Logger
}

// Open opens a persistent store at the given directory, creating it if
// needed.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if path == "" {
		return nil, errors.New("local store path is required")
	}
	if err := os.MkdirAll(path, 0o750); err != nil {
		return nil, fmt.Errorf("create local store directory %s: %w", path, err)
	}

	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// OpenInMemory opens a non-persistent store. Used by tests.
func OpenInMemory(logger *zap.Logger) (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open in-memory store: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// Load reads the last-saved state. Absent or unparseable values yield
// empty collections rather than an error.
func (s *Store) Load() ([]fields.Area, []fields.Product, error) {
	var areas []fields.Area
	var products []fields.Product

	err := s.db.View(func(txn *badger.Txn) error {
		areas = loadSlice[fields.Area](txn, areasKey, s.logger)
		products = loadSlice[fields.Product](txn, productsKey, s.logger)
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("load local state: %w", err)
	}

	return areas, products, nil
}

func loadSlice[T any](txn *badger.Txn, key string, logger *zap.Logger) []T {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		logger.Warn("failed to read local key", zap.String("key", key), zap.Error(err))
		return nil
	}

	var out []T
	err = item.Value(func(val []byte) error {
		if jerr := json.Unmarshal(val, &out); jerr != nil {
			logger.Warn("corrupt local value, treating as empty",
				zap.String("key", key), zap.Error(jerr))
			out = nil
		}
		return nil
	})
	if err != nil {
		logger.Warn("failed to read local value", zap.String("key", key), zap.Error(err))
		return nil
	}
	return out
}

// Save overwrite-serializes both collections in a single transaction
func (s *Store) Save(areas []fields.Area, products []fields.Product) error {
	areaData, err := json.Marshal(areas)
	if err != nil {
		return fmt.Errorf("marshal areas: %w", err)
	}
	productData, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("marshal products: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(areasKey), areaData); err != nil {
			return err
		}
		return txn.Set([]byte(productsKey), productData)
	})
	if err != nil {
		return fmt.Errorf("save local state: %w", err)
	}
	return nil
}
