package ledgerstore

import (
	"context"

	"go.uber.org/zap"
)

// Console implements ports.Persistence by logging saves and never returning
// a prior snapshot, for local/dry-run use where durability isn't needed.
type Console struct {
	logger *zap.Logger
}

// NewConsole creates a Console persistence adapter.
func NewConsole(logger *zap.Logger) *Console {
	logger.Info("console-ledgerstore-initialized")
	return &Console{logger: logger}
}

// SaveSnapshot logs the snapshot size at debug level and discards it.
func (c *Console) SaveSnapshot(_ context.Context, key string, blob []byte) error {
	c.logger.Debug("snapshot-save-console", zap.String("key", key), zap.Int("bytes", len(blob)))
	return nil
}

// LoadSnapshot always reports no prior snapshot.
func (c *Console) LoadSnapshot(_ context.Context, key string) ([]byte, error) {
	c.logger.Debug("snapshot-load-console", zap.String("key", key))
	return nil, nil
}

// Close is a no-op.
func (c *Console) Close() error {
	c.logger.Info("closing-console-ledgerstore")
	return nil
}
