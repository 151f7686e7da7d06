package answers

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Store persists full answer snapshots in a single fixed slot. Save always
// overwrites; there is no merge.
type Store interface {
	Load(ctx context.Context) (Answers, error)
	Save(ctx context.Context, a Answers) error
	Clear(ctx context.Context) error
}

// LoadOrEmpty loads a snapshot and degrades to empty answers on any failure.
// Failures are logged, never returned.
func LoadOrEmpty(ctx context.Context, store Store, logger *zap.Logger) Answers {
	if store == nil {
		return Answers{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	loaded, err := store.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrCorrupt) {
			logger.Warn("discarding corrupt answer snapshot", zap.Error(err))
		} else {
			logger.Warn("answer store unavailable, starting empty", zap.Error(err))
		}
		return Answers{}
	}
	if loaded == nil {
		return Answers{}
	}
	return loaded
}
