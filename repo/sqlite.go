package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // SQLite driver

	"CVForgeBot/model"
)

const answersTable = "user_data"

// SQLiteAnswerStore keeps one row per user with a TEXT column per catalog field.
type SQLiteAnswerStore struct {
	db      *sql.DB
	catalog *model.Catalog
	log     zerolog.Logger
	columns string // quoted, comma-separated field columns in catalog order
}

// NewSQLiteAnswerStore opens (or creates) the database at path and makes sure
// every catalog field has a column.
func NewSQLiteAnswerStore(ctx context.Context, path string, catalog *model.Catalog, logger zerolog.Logger) (*SQLiteAnswerStore, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf(
		"file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
		path,
	))
	if err != nil {
		return nil, fmt.Errorf("error opening answers database: %w", err)
	}

	// SQLite has a single writer; one connection serializes all upserts.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error connecting to answers database: %w", err)
	}

	s := &SQLiteAnswerStore{
		db:      db,
		catalog: catalog,
		log:     logger.With().Str("component", "sqlite_answers").Logger(),
	}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	quoted := make([]string, 0, catalog.Len())
	for _, name := range catalog.Names() {
		quoted = append(quoted, quoteIdent(name))
	}
	s.columns = strings.Join(quoted, ", ")

	s.log.Info().Str("path", path).Int("fields", catalog.Len()).Msg("answers database ready")
	return s, nil
}

func (s *SQLiteAnswerStore) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS `+answersTable+` (
			user_id INTEGER PRIMARY KEY,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		return fmt.Errorf("error creating answers table: %w", err)
	}

	existing, err := s.existingColumns(ctx)
	if err != nil {
		return err
	}

	for _, name := range s.catalog.Names() {
		if existing[name] {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s TEXT", answersTable, quoteIdent(name))
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("error adding column %s: %w", name, err)
		}
		s.log.Debug().Str("column", name).Msg("added answers column")
	}
	return nil
}

func (s *SQLiteAnswerStore) existingColumns(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, "PRAGMA table_info("+answersTable+")")
	if err != nil {
		return nil, fmt.Errorf("error reading answers schema: %w", err)
	}
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("error scanning answers schema: %w", err)
		}
		columns[name] = true
	}
	return columns, rows.Err()
}

func (s *SQLiteAnswerStore) Upsert(ctx context.Context, userID int64, field, value string) error {
	if err := s.catalog.Validate(field); err != nil {
		return err
	}

	col := quoteIdent(field)
	stmt := fmt.Sprintf(`
		INSERT INTO %[1]s (user_id, %[2]s, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id) DO UPDATE SET %[2]s = excluded.%[2]s, updated_at = excluded.updated_at`,
		answersTable, col)

	if _, err := s.db.ExecContext(ctx, stmt, userID, value); err != nil {
		return fmt.Errorf("error saving answer %s: %w", field, err)
	}
	return nil
}

func (s *SQLiteAnswerStore) Read(ctx context.Context, userID int64) (model.AnswerRecord, error) {
	names := s.catalog.Names()
	values := make([]sql.NullString, len(names))
	dest := make([]any, len(names))
	for i := range values {
		dest[i] = &values[i]
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE user_id = ?", s.columns, answersTable)
	err := s.db.QueryRowContext(ctx, query, userID).Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return model.AnswerRecord{}, model.ErrRecordNotFound
	}
	if err != nil {
		return model.AnswerRecord{}, fmt.Errorf("error reading answers: %w", err)
	}

	record := model.NewAnswerRecord(userID)
	for i, name := range names {
		if values[i].Valid {
			record.Values[name] = values[i].String
		}
	}
	return record, nil
}

func (s *SQLiteAnswerStore) Clear(ctx context.Context, userID int64) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM "+answersTable+" WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("error clearing answers: %w", err)
	}
	return nil
}

func (s *SQLiteAnswerStore) Close() error {
	return s.db.Close()
}

// quoteIdent quotes a catalog field name for use as a column. Field names are
// already restricted to [a-z0-9_].
func quoteIdent(name string) string {
	return `"` + name + `"`
}
