package storage

import (
	"context"
	"fmt"

	"github.com/Helper-Yoon/chat-analyzer/internal/config"
	"github.com/Helper-Yoon/chat-analyzer/internal/ingestion"
	"github.com/rs/zerolog"
)

// Columns read from each dataset
var (
	conversationColumns = []string{"id", "assigneeId", "firstOpenedAt"}
	messageColumns      = []string{"chatId", "personId", "createdAt", "plainText"}
	personColumns       = []string{"id", "name"}
)

// tableName labels a stored table so the normalizer can match its marker
func tableName(marker, table string) string {
	return fmt.Sprintf("%s (%s)", marker, table)
}

// NewSource creates the stored source selected by configuration
func NewSource(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (ingestion.TableSource, error) {
	logger = logger.With().Str("component", "storage").Logger()

	switch cfg.SourceMode {
	case config.SourceSQL:
		db, err := OpenGorm(cfg.SQLDriver, cfg.SQLDSN)
		if err != nil {
			return nil, fmt.Errorf("open %s database: %w", cfg.SQLDriver, err)
		}
		if cfg.SQLAutoMigrate {
			if err := Migrate(db); err != nil {
				return nil, fmt.Errorf("migrate %s database: %w", cfg.SQLDriver, err)
			}
			logger.Info().Msg("default SQL tables migrated")
		}
		logger.Info().Str("driver", cfg.SQLDriver).Msg("SQL source initialized")
		return NewGormSource(db, LoadSQLTables(), logger), nil

	case config.SourceDynamo:
		dcfg := LoadDynamoConfig()
		if dcfg.Mode == DynamoModeNone {
			return nil, fmt.Errorf("SOURCE_MODE=dynamo requires DYNAMO_MODE local or aws")
		}
		return NewDynamoSource(ctx, dcfg, logger)

	default:
		logger.Info().Msg("stored source disabled (SOURCE_MODE=none)")
		return NewNoopSource(), nil
	}
}

