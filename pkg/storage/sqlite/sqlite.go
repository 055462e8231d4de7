package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"sync"

	"github.com/go-jet/jet/v2/sqlite"
	"github.com/kasuboski/shokoz/pkg/logger"
	"github.com/kasuboski/shokoz/pkg/storage"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const timestampFormat = "2006-01-02 15:04:05.999999999-07:00"

type SQLite struct {
	db *sql.DB
	mu sync.Mutex
}

// New opens the sqlite database at filePath. Migrations are applied with RunMigrations.
func New(ctx context.Context, filePath string) (storage.Storage, error) {
	dsn := filePath
	if filePath != ":memory:" && !strings.Contains(filePath, "?") {
		dsn = filePath + "?_busy_timeout=5000&_journal_mode=WAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	// every connection to :memory: is its own database
	if filePath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{
		db: db,
	}, nil
}

// RunMigrations brings the schema up to date
func (s *SQLite) RunMigrations(ctx context.Context) error {
	log := logger.FromCtx(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := runMigrations(s.db); err != nil {
		return err
	}

	version, dirty, err := s.GetMigrationVersion()
	if err != nil {
		return err
	}
	log.Debugw("database migrated", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) handleInsert(ctx context.Context, stmt sqlite.InsertStatement) (sql.Result, error) {
	return s.handleStatement(ctx, stmt)
}

func (s *SQLite) handleDelete(ctx context.Context, stmt sqlite.DeleteStatement) (sql.Result, error) {
	return s.handleStatement(ctx, stmt)
}

func (s *SQLite) handleUpdate(ctx context.Context, stmt sqlite.UpdateStatement) (sql.Result, error) {
	return s.handleStatement(ctx, stmt)
}

func (s *SQLite) handleStatement(ctx context.Context, stmt sqlite.Statement) (sql.Result, error) {
	log := logger.FromCtx(ctx)
	var result sql.Result

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Debug("failed to init transaction", zap.Error(err))
		return result, err
	}

	result, err = stmt.ExecContext(ctx, tx)
	if err != nil {
		log.Debug("failed to execute statement", zap.String("query", stmt.DebugSql()), zap.Error(err))
		tx.Rollback()
		return result, err
	}

	return result, tx.Commit()
}

func excluded(columns sqlite.ColumnList) []sqlite.Expression {
	out := make([]sqlite.Expression, len(columns))
	for i, c := range columns {
		out[i] = c
	}
	return out
}
