package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/rcliao/spaced-review/internal/model"
	"github.com/rcliao/spaced-review/internal/priority"
)

// The priority order lives in a named field of a named container record.
const (
	OrderContainer = "Priority Rankings"
	OrderField     = "priority-ranking"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	loc    *time.Location
	logger *zap.Logger

	mu      sync.Mutex
	entropy *rand.Rand
}

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithLocation sets the zone calendar dates are read in. Defaults to
// time.Local.
func WithLocation(loc *time.Location) Option {
	return func(s *SQLiteStore) { s.loc = loc }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *SQLiteStore) { s.logger = l }
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string, opts ...Option) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		loc:     time.Local,
		logger:  zap.NewNop(),
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS fields (
		doc_id     TEXT NOT NULL,
		container  TEXT NOT NULL,
		name       TEXT NOT NULL,
		value      TEXT NOT NULL,
		version    INTEGER NOT NULL DEFAULT 1,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (doc_id, container, name)
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id         TEXT PRIMARY KEY,
		doc_id     TEXT NOT NULL,
		item_id    TEXT NOT NULL,
		seq        INTEGER NOT NULL,
		heading    TEXT NOT NULL,
		body       TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_item_seq ON sessions(doc_id, item_id, seq);

	CREATE TABLE IF NOT EXISTS items (
		doc_id     TEXT NOT NULL,
		item_id    TEXT NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (doc_id, item_id)
	);

	CREATE TABLE IF NOT EXISTS deck_members (
		doc_id  TEXT NOT NULL,
		deck    TEXT NOT NULL,
		item_id TEXT NOT NULL,
		PRIMARY KEY (doc_id, deck, item_id),
		FOREIGN KEY (doc_id, item_id) REFERENCES items(doc_id, item_id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_deck_members_item ON deck_members(doc_id, item_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) LoadOrder(ctx context.Context, docID string) (OrderSnapshot, error) {
	var raw string
	var version int64
	err := s.db.QueryRowContext(ctx,
		`SELECT value, version FROM fields WHERE doc_id = ? AND container = ? AND name = ?`,
		docID, OrderContainer, OrderField).Scan(&raw, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return OrderSnapshot{IDs: []string{}, Format: priority.FormatEmpty}, nil
	}
	if err != nil {
		return OrderSnapshot{}, gatewayErr("load order", docID, err)
	}

	ids, format := priority.Decode(raw)
	return OrderSnapshot{IDs: ids, Version: version, Format: format}, nil
}

func (s *SQLiteStore) SaveOrder(ctx context.Context, docID string, ids []string, expectedVersion int64) (int64, error) {
	if err := checkUnique(ids); err != nil {
		return 0, err
	}
	raw, err := priority.Encode(ids)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, gatewayErr("save order", docID, err)
	}
	defer tx.Rollback()

	var current int64
	err = tx.QueryRowContext(ctx,
		`SELECT version FROM fields WHERE doc_id = ? AND container = ? AND name = ?`,
		docID, OrderContainer, OrderField).Scan(&current)
	exists := true
	if errors.Is(err, sql.ErrNoRows) {
		exists = false
	} else if err != nil {
		return 0, gatewayErr("save order", docID, err)
	}

	if current != expectedVersion {
		return current, fmt.Errorf("%w: doc %q at version %d, loaded %d", ErrConflict, docID, current, expectedVersion)
	}

	next := current + 1
	now := time.Now().UTC().Format(time.RFC3339)
	if exists {
		res, err := tx.ExecContext(ctx,
			`UPDATE fields SET value = ?, version = ?, updated_at = ?
			 WHERE doc_id = ? AND container = ? AND name = ? AND version = ?`,
			raw, next, now, docID, OrderContainer, OrderField, current)
		if err != nil {
			return 0, gatewayErr("save order", docID, err)
		}
		if n, _ := res.RowsAffected(); n != 1 {
			return current, fmt.Errorf("%w: doc %q", ErrConflict, docID)
		}
	} else {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO fields (doc_id, container, name, value, version, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
			docID, OrderContainer, OrderField, raw, next, now)
		if err != nil {
			return 0, gatewayErr("save order", docID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, gatewayErr("save order", docID, err)
	}
	return next, nil
}

func (s *SQLiteStore) LoadSessionHistory(ctx context.Context, docID string) (model.History, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, item_id, heading, body, created_at FROM sessions
		 WHERE doc_id = ? ORDER BY item_id, seq`, docID)
	if err != nil {
		return nil, gatewayErr("load history", docID, err)
	}
	defer rows.Close()

	history := model.History{}
	for rows.Next() {
		sess, ok, err := s.scanSession(rows)
		if err != nil {
			return nil, gatewayErr("load history", docID, err)
		}
		if ok {
			history[sess.ItemID] = append(history[sess.ItemID], sess)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, gatewayErr("load history", docID, err)
	}
	return history, nil
}

func (s *SQLiteStore) ItemSessions(ctx context.Context, docID, itemID string) ([]model.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, item_id, heading, body, created_at FROM sessions
		 WHERE doc_id = ? AND item_id = ? ORDER BY seq`, docID, itemID)
	if err != nil {
		return nil, gatewayErr("load sessions", docID, err)
	}
	defer rows.Close()

	sessions := []model.Session{}
	for rows.Next() {
		sess, ok, err := s.scanSession(rows)
		if err != nil {
			return nil, gatewayErr("load sessions", docID, err)
		}
		if ok {
			sessions = append(sessions, sess)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, gatewayErr("load sessions", docID, err)
	}

	if len(sessions) == 0 {
		var n int
		err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM items WHERE doc_id = ? AND item_id = ?`, docID, itemID).Scan(&n)
		if err != nil {
			return nil, gatewayErr("load sessions", docID, err)
		}
		if n == 0 {
			return nil, fmt.Errorf("item %q: %w", itemID, ErrNotFound)
		}
	}
	return sessions, nil
}

func (s *SQLiteStore) AppendSession(ctx context.Context, docID, itemID string, sess model.Session) (model.Session, error) {
	if itemID == "" {
		return sess, fmt.Errorf("append session: empty item id")
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now()
	}
	if err := sess.Validate(); err != nil {
		return sess, err
	}
	sess.ItemID = itemID
	sess.ID = s.newID()

	heading, lines := EncodeSession(sess)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return sess, gatewayErr("append session", docID, err)
	}
	defer tx.Rollback()

	var seq int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) FROM sessions WHERE doc_id = ? AND item_id = ?`,
		docID, itemID).Scan(&seq)
	if err != nil {
		return sess, gatewayErr("append session", docID, err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, doc_id, item_id, seq, heading, body, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, docID, itemID, seq+1, heading, strings.Join(lines, "\n"),
		sess.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return sess, gatewayErr("append session", docID, err)
	}

	if err := tx.Commit(); err != nil {
		return sess, gatewayErr("append session", docID, err)
	}
	return sess, nil
}

func (s *SQLiteStore) DeleteSessions(ctx context.Context, docID string, itemIDs []string) (int, error) {
	if len(itemIDs) == 0 {
		return 0, nil
	}
	placeholders, args := inArgs(docID, itemIDs)
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE doc_id = ? AND item_id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, gatewayErr("delete sessions", docID, err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanSession decodes one session row. Rows whose block text cannot be read
// are logged and skipped.
func (s *SQLiteStore) scanSession(row scanner) (model.Session, bool, error) {
	var id, itemID, heading, body, createdAt string
	if err := row.Scan(&id, &itemID, &heading, &body, &createdAt); err != nil {
		return model.Session{}, false, err
	}

	sess, err := DecodeSession(heading, strings.Split(body, "\n"), s.loc)
	if err != nil {
		s.logger.Warn("skipping unreadable session record",
			zap.String("id", id), zap.String("item", itemID), zap.Error(err))
		return model.Session{}, false, nil
	}
	sess.ID = id
	sess.ItemID = itemID
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		sess.CreatedAt = t.In(s.loc)
	}
	return sess, true, nil
}

func checkUnique(ids []string) error {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: %s", priority.ErrDuplicateID, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// inArgs builds "?, ?, ?" placeholders for ids, prefixed by docID in args.
func inArgs(docID string, ids []string) (string, []interface{}) {
	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, docID)
	for _, id := range ids {
		args = append(args, id)
	}
	return strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", "), args
}
