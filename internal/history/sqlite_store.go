package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"crawshaw.io/sqlite"
)

var errNotInitialized = errors.New("history store not initialized")

// SQLiteStore is an implementation of Store that uses SQLite.
// A single connection is shared and guarded by a mutex.
type SQLiteStore struct {
	mu     sync.Mutex
	conn   *sqlite.Conn
	dbPath string
}

// NewSQLiteStore creates a new SQLiteStore instance.
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{}
}

// Initialize opens the database at dbPath and creates the schema.
func (s *SQLiteStore) Initialize(dbPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dbPath = dbPath

	conn, err := sqlite.OpenConn(dbPath, sqlite.SQLITE_OPEN_CREATE|sqlite.SQLITE_OPEN_READWRITE)
	if err != nil {
		return fmt.Errorf("failed to open SQLite database: %w", err)
	}
	s.conn = conn

	if err := s.createTable(); err != nil {
		s.conn.Close()
		s.conn = nil
		return fmt.Errorf("failed to create table: %w", err)
	}

	return nil
}

// createTable creates the summaries table if it doesn't exist.
func (s *SQLiteStore) createTable() error {
	for _, query := range []string{
		`CREATE TABLE IF NOT EXISTS summaries (
			id TEXT PRIMARY KEY,
			source_hash TEXT NOT NULL,
			length INTEGER NOT NULL,
			sentences_json TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS summaries_created_at ON summaries (created_at);`,
	} {
		if err := s.exec(query); err != nil {
			return err
		}
	}
	return nil
}

// exec runs a statement that returns no rows.
func (s *SQLiteStore) exec(query string) error {
	stmt, err := s.conn.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Reset()

	if _, err := stmt.Step(); err != nil {
		return fmt.Errorf("failed to execute statement: %w", err)
	}
	return nil
}

// Close closes the store and releases any resources.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

// Save stores the record in the database.
func (s *SQLiteStore) Save(record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return errNotInitialized
	}
	if record.ID == "" {
		return fmt.Errorf("record id is required")
	}

	sentences := record.Sentences
	if sentences == nil {
		sentences = []string{}
	}
	sentencesJSON, err := json.Marshal(sentences)
	if err != nil {
		return fmt.Errorf("failed to encode sentences: %w", err)
	}

	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	stmt, err := s.conn.Prepare(`
	INSERT OR REPLACE INTO summaries (id, source_hash, length, sentences_json, created_at)
	VALUES (?, ?, ?, ?, ?);`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Reset()

	// Bind parameters - indices in sqlite are 1-based
	stmt.BindText(1, record.ID)
	stmt.BindText(2, record.SourceHash)
	stmt.BindInt64(3, int64(record.Length))
	stmt.BindText(4, string(sentencesJSON))
	stmt.BindInt64(5, createdAt.UnixNano())

	if _, err := stmt.Step(); err != nil {
		return fmt.Errorf("failed to insert summary: %w", err)
	}
	return nil
}

// Get returns the record with the given id.
func (s *SQLiteStore) Get(id string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil, errNotInitialized
	}

	stmt, err := s.conn.Prepare(`
	SELECT id, source_hash, length, sentences_json, created_at
	FROM summaries WHERE id = ?;`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Reset()

	stmt.BindText(1, id)

	hasRow, err := stmt.Step()
	if err != nil {
		return nil, fmt.Errorf("failed to execute select statement: %w", err)
	}
	if !hasRow {
		return nil, ErrNotFound
	}

	record, err := scanRecord(stmt)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// List returns up to limit records, newest first.
func (s *SQLiteStore) List(limit int) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil, errNotInitialized
	}
	if limit <= 0 {
		limit = -1 // no limit in SQLite
	}

	stmt, err := s.conn.Prepare(`
	SELECT id, source_hash, length, sentences_json, created_at
	FROM summaries ORDER BY created_at DESC, id ASC LIMIT ?;`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Reset()

	stmt.BindInt64(1, int64(limit))

	records := []Record{}
	for {
		hasRow, err := stmt.Step()
		if err != nil {
			return nil, fmt.Errorf("failed to execute select statement: %w", err)
		}
		if !hasRow {
			break
		}

		record, err := scanRecord(stmt)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, nil
}

// scanRecord reads the current row. Column indices are 0-based.
func scanRecord(stmt *sqlite.Stmt) (Record, error) {
	record := Record{
		ID:         stmt.ColumnText(0),
		SourceHash: stmt.ColumnText(1),
		Length:     stmt.ColumnInt(2),
		CreatedAt:  time.Unix(0, stmt.ColumnInt64(4)),
	}
	if err := json.Unmarshal([]byte(stmt.ColumnText(3)), &record.Sentences); err != nil {
		return Record{}, fmt.Errorf("failed to decode sentences for summary %s: %w", record.ID, err)
	}
	return record, nil
}

// Delete removes the record with the given id.
func (s *SQLiteStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return errNotInitialized
	}

	stmt, err := s.conn.Prepare(`DELETE FROM summaries WHERE id = ?;`)
	if err != nil {
		return fmt.Errorf("failed to prepare delete statement: %w", err)
	}
	defer stmt.Reset()

	stmt.BindText(1, id)
	if _, err := stmt.Step(); err != nil {
		return fmt.Errorf("failed to delete summary: %w", err)
	}
	if s.conn.Changes() == 0 {
		return ErrNotFound
	}
	return nil
}

// Clear removes every record.
func (s *SQLiteStore) Clear() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return 0, errNotInitialized
	}

	if err := s.exec(`DELETE FROM summaries;`); err != nil {
		return 0, fmt.Errorf("failed to clear summaries: %w", err)
	}
	return s.conn.Changes(), nil
}

// Count returns the number of stored records.
func (s *SQLiteStore) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return 0, errNotInitialized
	}

	stmt, err := s.conn.Prepare(`SELECT COUNT(*) FROM summaries;`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare count statement: %w", err)
	}
	defer stmt.Reset()

	if _, err := stmt.Step(); err != nil {
		return 0, fmt.Errorf("failed to count summaries: %w", err)
	}
	return stmt.ColumnInt(0), nil
}
