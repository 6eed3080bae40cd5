package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
)

// ErrNoSnapshot is returned by Load and Latest when the store holds no
// matching snapshot.
var ErrNoSnapshot = errors.New("sqlplan: no snapshot found")

// DefaultTable is the table snapshots persist into.
const DefaultTable = "sqlplan_snapshots"

// Store persists snapshots into a single table of any database/sql
// database. Rows carry the binary encoding; the table is created lazily by
// Init.
type Store struct {
	db    *sql.DB
	table string
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithTable overrides the snapshot table name.
func WithTable(table string) StoreOption {
	return func(s *Store) { s.table = table }
}

// NewStore returns a store over the given database handle.
func NewStore(db *sql.DB, opts ...StoreOption) *Store {
	s := &Store{db: db, table: DefaultTable}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB { return s.db }

// Init creates the snapshot table when missing.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (id VARCHAR(36) PRIMARY KEY, created_at VARCHAR(35) NOT NULL, data BLOB NOT NULL)",
		s.table,
	))
	return err
}

// Save persists the snapshot.
func (s *Store) Save(ctx context.Context, snap *Snapshot) error {
	data, err := snap.Encode(Msgpack)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO %s (id, created_at, data) VALUES (?, ?, ?)", s.table),
		snap.ID, snap.CreatedAt.UTC().Format(time.RFC3339), data,
	)
	return err
}

// Load returns the snapshot with the given id.
func (s *Store) Load(ctx context.Context, id string) (*Snapshot, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT data FROM %s WHERE id = ?", s.table), id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}
	return Decode(data, Msgpack)
}

// Latest returns the most recently created snapshot.
func (s *Store) Latest(ctx context.Context) (*Snapshot, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT data FROM %s ORDER BY created_at DESC, id DESC LIMIT 1", s.table),
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}
	return Decode(data, Msgpack)
}

// IDs lists the stored snapshot ids, newest first.
func (s *Store) IDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT id FROM %s ORDER BY created_at DESC, id DESC", s.table),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// OpenSQLite opens a store database through the modernc.org/sqlite driver.
// The caller imports the driver.
func OpenSQLite(path string) (*sql.DB, error) {
	return sql.Open("sqlite", path)
}

// OpenPostgres opens a store database through the lib/pq driver. The caller
// imports the driver.
func OpenPostgres(dsn string) (*sql.DB, error) {
	return sql.Open("postgres", dsn)
}

// OpenMySQL opens a store database from a go-sql-driver configuration.
func OpenMySQL(cfg *mysql.Config) (*sql.DB, error) {
	return sql.Open("mysql", cfg.FormatDSN())
}
