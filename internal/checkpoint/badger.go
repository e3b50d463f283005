package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/ppiankov/factcheck/internal/model"
)

const badgerKeyPrefix = "checkpoint/"

// BadgerConfig configures an embedded BadgerDB checkpoint store
type BadgerConfig struct {
	Path       string        // Directory for database files; ignored when InMemory
	InMemory   bool          // No disk persistence, for tests
	SyncWrites bool          // fsync every write
	TTL        time.Duration // Zero keeps snapshots forever
	Logger     *slog.Logger  // Nil disables badger's internal logging
}

// BadgerStore stores snapshots in BadgerDB
type BadgerStore struct {
	db  *badger.DB
	ttl time.Duration
}

// badgerLogger adapts slog to badger's logger interface
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// OpenBadger opens (creating if needed) a BadgerDB store
func OpenBadger(cfg BadgerConfig) (*BadgerStore, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("checkpoint path is required for badger backend")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create checkpoint directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &BadgerStore{db: db, ttl: cfg.TTL}, nil
}

// Save implements Store
func (s *BadgerStore) Save(ctx context.Context, runID string, state *model.WorkflowState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encode(state)
	if err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(badgerKeyPrefix+runID), data)
		if s.ttl > 0 {
			e = e.WithTTL(s.ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("save checkpoint %s: %w", runID, err)
	}
	return nil
}

// Load implements Store
func (s *BadgerStore) Load(ctx context.Context, runID string) (*model.WorkflowState, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerKeyPrefix + runID))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load checkpoint %s: %w", runID, err)
	}

	state, err := decode(runID, data)
	if err != nil {
		return nil, false, err
	}
	return state, true, nil
}

// Close closes the database
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
