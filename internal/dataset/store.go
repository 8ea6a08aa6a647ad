package dataset

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"softalign/internal/langpair"
)

const schemaVersion = 1

// StoreName is the database file name inside a prepared data directory.
const StoreName = "dataset.db"

// Store is the binarized dataset backed by SQLite. One store holds every
// split of a prepared corpus plus the language-pair metadata.
type Store struct {
	db   *sql.DB
	path string
}

// OpenStore initializes or connects to a dataset database and applies the
// schema.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applySchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) applySchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
            key   TEXT PRIMARY KEY,
            value TEXT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS samples (
            split TEXT    NOT NULL,
            id    INTEGER NOT NULL,
            src   BLOB    NOT NULL,
            tgt   BLOB    NOT NULL,
            PRIMARY KEY (split, id)
        )`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return s.setMeta(ctx, "schema_version", fmt.Sprintf("%d", schemaVersion))
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the on-disk location of the database.
func (s *Store) Path() string { return s.path }

func (s *Store) setMeta(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES (?, ?)
         ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("set meta %s: %w", key, err)
	}
	return nil
}

func (s *Store) meta(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("dataset store %s: missing metadata %q", s.path, key)
	}
	if err != nil {
		return "", fmt.Errorf("read meta %s: %w", key, err)
	}
	return value, nil
}

// SetPair records the language pair the store was prepared for.
func (s *Store) SetPair(ctx context.Context, pair langpair.Pair) error {
	if err := s.setMeta(ctx, "source_lang", pair.Source); err != nil {
		return err
	}
	return s.setMeta(ctx, "target_lang", pair.Target)
}

// Pair reads the language pair recorded at preparation time.
func (s *Store) Pair(ctx context.Context) (langpair.Pair, error) {
	src, err := s.meta(ctx, "source_lang")
	if err != nil {
		return langpair.Pair{}, err
	}
	tgt, err := s.meta(ctx, "target_lang")
	if err != nil {
		return langpair.Pair{}, err
	}
	return langpair.Pair{Source: src, Target: tgt}, nil
}

// WriteSplit replaces the named split with the given samples in one
// transaction.
func (s *Store) WriteSplit(ctx context.Context, split *Split) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin write split: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM samples WHERE split = ?`, split.Name); err != nil {
		return fmt.Errorf("clear split %s: %w", split.Name, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO samples (split, id, src, tgt) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range split.Samples {
		sample := &split.Samples[i]
		if _, err := stmt.ExecContext(ctx, split.Name, sample.ID, encodeIDs(sample.Source), encodeIDs(sample.Target)); err != nil {
			return fmt.Errorf("insert sample %d: %w", sample.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit split %s: %w", split.Name, err)
	}
	return nil
}

// ReadSplit loads the named split in ascending sample-id order.
func (s *Store) ReadSplit(ctx context.Context, name string) (*Split, error) {
	pair, err := s.Pair(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, src, tgt FROM samples WHERE split = ? ORDER BY id ASC`, name)
	if err != nil {
		return nil, fmt.Errorf("query split %s: %w", name, err)
	}
	defer rows.Close()

	split := &Split{Name: name, Pair: pair}
	for rows.Next() {
		var (
			id       int64
			src, tgt []byte
		)
		if err := rows.Scan(&id, &src, &tgt); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		srcIDs, err := decodeIDs(src)
		if err != nil {
			return nil, fmt.Errorf("sample %d source: %w", id, err)
		}
		tgtIDs, err := decodeIDs(tgt)
		if err != nil {
			return nil, fmt.Errorf("sample %d target: %w", id, err)
		}
		split.Samples = append(split.Samples, Sample{ID: id, Source: srcIDs, Target: tgtIDs})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate split %s: %w", name, err)
	}
	if len(split.Samples) == 0 {
		return nil, fmt.Errorf("dataset store %s: split %q is empty or missing", s.path, name)
	}
	return split, nil
}

func encodeIDs(ids []int32) []byte {
	buf := make([]byte, 4*len(ids))
	for i, id := range ids {
		binary.LittleEndian.PutUint32(buf[4*i:], uint32(id))
	}
	return buf
}

func decodeIDs(buf []byte) ([]int32, error) {
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("id blob length %d is not a multiple of 4", len(buf))
	}
	ids := make([]int32, len(buf)/4)
	for i := range ids {
		ids[i] = int32(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return ids, nil
}
