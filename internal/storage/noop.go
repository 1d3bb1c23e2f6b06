package storage

import (
	"context"
	"errors"

	"github.com/Helper-Yoon/chat-analyzer/internal/types"
)

// ErrSourceDisabled is returned when no stored source is configured
var ErrSourceDisabled = errors.New("stored source disabled (SOURCE_MODE=none)")

// NoopSource is used when no stored source is configured
type NoopSource struct{}

func NewNoopSource() *NoopSource { return &NoopSource{} }

func (s *NoopSource) LoadTables(_ context.Context) ([]types.RawTable, error) {
	return nil, ErrSourceDisabled
}
