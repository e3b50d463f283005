// Package checkpoint persists workflow state snapshots between runs.
package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ppiankov/factcheck/internal/model"
)

// ErrCorrupt is returned when a stored snapshot cannot be decoded
var ErrCorrupt = errors.New("corrupt checkpoint")

// Store saves and loads workflow snapshots by run id. Load reports false
// when no snapshot exists.
type Store interface {
	Save(ctx context.Context, runID string, state *model.WorkflowState) error
	Load(ctx context.Context, runID string) (*model.WorkflowState, bool, error)
}

func encode(state *model.WorkflowState) ([]byte, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encode checkpoint: %w", err)
	}
	return data, nil
}

func decode(runID string, data []byte) (*model.WorkflowState, error) {
	var state model.WorkflowState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("%w: run %s: %v", ErrCorrupt, runID, err)
	}
	return &state, nil
}

// NewFromConfig opens the configured backend. "none" returns a nil store,
// which disables checkpointing. Stores backed by a connection implement
// io.Closer.
func NewFromConfig(ctx context.Context, cfg model.CheckpointConfig, logger *slog.Logger) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "memory":
		return NewMemoryStore(), nil
	case "none", "off":
		return nil, nil
	case "badger":
		s, err := OpenBadger(BadgerConfig{
			Path:       cfg.Path,
			SyncWrites: true,
			TTL:        cfg.TTL,
			Logger:     logger,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case "redis":
		s, err := DialRedis(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.TTL)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown checkpoint backend: %s", cfg.Backend)
	}
}
