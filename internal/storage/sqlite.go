package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	_ "modernc.org/sqlite"

	"github.com/nikbrunner/bmsync/internal/model"
)

const currentSchemaVersion = 2

// SQLiteStorage implements Storage and Settings using a SQLite database.
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

// NewSQLiteStorage creates a new SQLiteStorage with the given database path.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	s := &SQLiteStorage{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// SchemaVersion reports the applied migration level.
func (s *SQLiteStorage) SchemaVersion() (int, error) {
	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	return version, err
}

func (s *SQLiteStorage) migrate() error {
	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		// Table doesn't exist or is empty, start fresh
		version = 0
	}
	if version >= currentSchemaVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return fmt.Errorf("migrate v1: %w", err)
		}
	}

	if version < 2 {
		if err := s.migrateV2(); err != nil {
			return fmt.Errorf("migrate v2: %w", err)
		}
	}

	return nil
}

// migrateV1 creates the node table. Rows reference their parent by seq
// since node ids from a remote file may be empty or repeated.
func (s *SQLiteStorage) migrateV1() error {
	schema := `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS nodes (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			node_id TEXT NOT NULL DEFAULT '',
			parent INTEGER,
			position INTEGER NOT NULL,
			kind INTEGER NOT NULL,
			title TEXT NOT NULL,
			url TEXT,
			hidden INTEGER NOT NULL DEFAULT 0,
			date_added INTEGER,
			FOREIGN KEY (parent) REFERENCES nodes(seq) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_nodes_parent ON nodes(parent, position);
		CREATE INDEX IF NOT EXISTS idx_nodes_node_id ON nodes(node_id);

		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := s.db.Exec(schema)
	return err
}

// migrateV2 adds the settings table used for sync configuration.
func (s *SQLiteStorage) migrateV2() error {
	migration := `
		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY NOT NULL,
			value TEXT NOT NULL
		);
		UPDATE schema_version SET version = 2;
	`
	_, err := s.db.Exec(migration)
	return err
}

type nodeRow struct {
	seq      int64
	parent   sql.NullInt64
	position int
	node     model.Node
}

// Load reads the tree from the SQLite database.
func (s *SQLiteStorage) Load() ([]model.Node, error) {
	rows, err := s.db.Query(`
		SELECT seq, node_id, parent, position, kind, title, url, hidden, date_added
		FROM nodes
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// Children grouped by parent seq; 0 holds the top level.
	byParent := map[int64][]nodeRow{}
	for rows.Next() {
		var (
			r         nodeRow
			kind      int
			url       sql.NullString
			hidden    int
			dateAdded sql.NullInt64
		)
		if err := rows.Scan(&r.seq, &r.node.ID, &r.parent, &r.position, &kind, &r.node.Title, &url, &hidden, &dateAdded); err != nil {
			return nil, err
		}
		r.node.Kind = model.Kind(kind)
		r.node.URL = url.String
		r.node.Hidden = hidden == 1
		if dateAdded.Valid {
			d := dateAdded.Int64
			r.node.DateAdded = &d
		}
		if r.node.IsFolder() {
			r.node.Children = []model.Node{}
		}

		parent := int64(0)
		if r.parent.Valid {
			parent = r.parent.Int64
		}
		byParent[parent] = append(byParent[parent], r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return build(byParent, 0), nil
}

func build(byParent map[int64][]nodeRow, parent int64) []model.Node {
	group := byParent[parent]
	sort.Slice(group, func(i, j int) bool { return group[i].position < group[j].position })

	out := make([]model.Node, 0, len(group))
	for _, r := range group {
		n := r.node
		if n.IsFolder() {
			n.Children = build(byParent, r.seq)
		}
		out = append(out, n)
	}
	return out
}

// Save writes the tree to the SQLite database, replacing the previous tree.
func (s *SQLiteStorage) Save(tree []model.Node) error {
	if err := model.Validate(tree); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM nodes"); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO nodes (node_id, parent, position, kind, title, url, hidden, date_added)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	if err := insertNodes(stmt, tree, sql.NullInt64{}); err != nil {
		return err
	}

	return tx.Commit()
}

func insertNodes(stmt *sql.Stmt, nodes []model.Node, parent sql.NullInt64) error {
	for i, n := range nodes {
		var url sql.NullString
		if !n.IsFolder() {
			url = sql.NullString{String: n.URL, Valid: true}
		}
		var dateAdded sql.NullInt64
		if n.DateAdded != nil {
			dateAdded = sql.NullInt64{Int64: *n.DateAdded, Valid: true}
		}

		res, err := stmt.Exec(n.ID, parent, i, int(n.Kind), n.Title, url, boolToInt(n.Hidden), dateAdded)
		if err != nil {
			return fmt.Errorf("insert %q: %w", n.Title, err)
		}

		if n.IsFolder() && len(n.Children) > 0 {
			id, err := res.LastInsertId()
			if err != nil {
				return err
			}
			if err := insertNodes(stmt, n.Children, sql.NullInt64{Int64: id, Valid: true}); err != nil {
				return err
			}
		}
	}
	return nil
}

// Get returns the requested settings. Missing keys map to "".
func (s *SQLiteStorage) Get(ctx context.Context, keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		var value string
		err := s.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", k).Scan(&value)
		if err != nil && err != sql.ErrNoRows {
			return nil, fmt.Errorf("get setting %s: %w", k, err)
		}
		out[k] = value
	}
	return out, nil
}

// Set upserts the given settings in one transaction.
func (s *SQLiteStorage) Set(ctx context.Context, values map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for k, v := range values {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO settings (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, k, v)
		if err != nil {
			return fmt.Errorf("set setting %s: %w", k, err)
		}
	}
	return tx.Commit()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
