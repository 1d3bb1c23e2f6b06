package storage

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/Helper-Yoon/chat-analyzer/internal/types"
	sqliteDriver "github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// UserChat is the SQL row layout of a conversation
type UserChat struct {
	ID            string `gorm:"primaryKey"`
	AssigneeID    string `gorm:"column:assignee_id"`
	FirstOpenedAt string `gorm:"column:first_opened_at"`
}

func (UserChat) TableName() string { return "user_chats" }

// Message is the SQL row layout of a chat message
type Message struct {
	ID        uint   `gorm:"primaryKey"`
	ChatID    string `gorm:"column:chat_id;index"`
	PersonID  string `gorm:"column:person_id"`
	CreatedAt string `gorm:"column:created_at"`
	PlainText string `gorm:"column:plain_text"`
}

func (Message) TableName() string { return "messages" }

// Manager is the SQL row layout of a directory entry
type Manager struct {
	ID   string `gorm:"primaryKey"`
	Name string
}

func (Manager) TableName() string { return "managers" }

// OpenGorm opens a sqlite or postgres database
func OpenGorm(driver, dsn string) (*gorm.DB, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	if driver == "" {
		driver = "sqlite"
	}
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		if driver == "sqlite" {
			dsn = "chat-analyzer.db"
		} else {
			return nil, fmt.Errorf("dsn is required for driver %q", driver)
		}
	}

	cfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}
	switch driver {
	case "sqlite":
		if err := ensureSQLiteDirectory(dsn); err != nil {
			return nil, err
		}
		return gorm.Open(sqliteDriver.Open(dsn), cfg)
	case "postgres":
		return gorm.Open(postgres.Open(dsn), cfg)
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}

// Migrate creates the default tables
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&UserChat{}, &Message{}, &Manager{})
}

// GormSource reads the three datasets from SQL tables
type GormSource struct {
	db     *gorm.DB
	tables SQLTables
	logger zerolog.Logger
}

// NewGormSource creates a new GormSource
func NewGormSource(db *gorm.DB, tables SQLTables, logger zerolog.Logger) *GormSource {
	return &GormSource{db: db, tables: tables, logger: logger}
}

// LoadTables reads every row of the configured tables. snake_case column
// names are reported in camelCase.
func (s *GormSource) LoadTables(ctx context.Context) ([]types.RawTable, error) {
	tables := []struct {
		marker string
		table  string
	}{
		{types.MarkerConversations, s.tables.Conversations},
		{types.MarkerMessages, s.tables.Messages},
		{types.MarkerPeople, s.tables.People},
	}

	out := make([]types.RawTable, 0, len(tables))
	for _, tbl := range tables {
		t, err := s.readTable(ctx, tbl.table)
		if err != nil {
			return nil, fmt.Errorf("read table %s: %w", tbl.table, err)
		}
		t.Name = tableName(tbl.marker, tbl.table)
		out = append(out, t)

		s.logger.Debug().Str("table", tbl.table).Int("rows", len(t.Rows)).Msg("table loaded")
	}
	return out, nil
}

func (s *GormSource) readTable(ctx context.Context, table string) (types.RawTable, error) {
	rows, err := s.db.WithContext(ctx).Table(table).Rows()
	if err != nil {
		return types.RawTable{}, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return types.RawTable{}, err
	}

	t := types.RawTable{Header: make([]string, len(columns))}
	for i, c := range columns {
		t.Header[i] = camelize(c)
	}

	cells := make([]sql.NullString, len(columns))
	dest := make([]any, len(columns))
	for i := range cells {
		dest[i] = &cells[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return types.RawTable{}, err
		}
		row := make([]string, len(cells))
		for i, c := range cells {
			row[i] = c.String
		}
		t.Rows = append(t.Rows, row)
	}
	return t, rows.Err()
}

// camelize turns assignee_id into assigneeId
func camelize(column string) string {
	parts := strings.Split(column, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}

func ensureSQLiteDirectory(dsn string) error {
	path, ok := sqliteFilePath(dsn)
	if !ok {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create sqlite db dir: %w", err)
	}
	return nil
}

func sqliteFilePath(dsn string) (string, bool) {
	raw := strings.TrimSpace(dsn)
	lower := strings.ToLower(raw)
	if raw == "" || lower == ":memory:" || strings.HasPrefix(lower, "file::memory:") {
		return "", false
	}

	if strings.HasPrefix(lower, "file:") {
		parsed, err := url.Parse(raw)
		if err != nil {
			return stripQuery(raw), true
		}
		if strings.EqualFold(parsed.Query().Get("mode"), "memory") {
			return "", false
		}
		if parsed.Path != "" {
			return parsed.Path, true
		}
		if parsed.Opaque != "" {
			return stripQuery(strings.TrimPrefix(raw, "file:")), true
		}
		return "", false
	}
	return stripQuery(raw), true
}

func stripQuery(v string) string {
	if i := strings.Index(v, "?"); i >= 0 {
		return v[:i]
	}
	return v
}
