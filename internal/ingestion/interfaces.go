package ingestion

import (
	"context"

	"github.com/Helper-Yoon/chat-analyzer/internal/types"
)

// TableSource supplies raw tables from any origin (workbook upload, SQL
// database, DynamoDB, JSON request body)
type TableSource interface {
	// LoadTables returns every table the source holds. Table names are matched
	// against the dataset markers by the Normalizer.
	LoadTables(ctx context.Context) ([]types.RawTable, error)
}

// StaticSource is a TableSource over tables already in memory
type StaticSource []types.RawTable

// LoadTables returns the tables as-is
func (s StaticSource) LoadTables(_ context.Context) ([]types.RawTable, error) {
	return s, nil
}
