package ballotbox

import (
	"context"
	"database/sql"
	"errors"

	_ "github.com/mattn/go-sqlite3" // Import go-sqlite3 library
)

// SQLiteStorage is backed by SQLite
type SQLiteStorage struct {
	db *sql.DB
}

var _ Storage = (*SQLiteStorage)(nil)

// NewSQLiteStorage opens (or creates) the ballot box at path.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// sqlite only has one writer anyway, and this avoids "database is locked".
	db.SetMaxOpenConns(1)
	// one live row per credential: a revote supersedes the earlier ballot,
	// which stays behind so its tracker cannot be cast again.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS ballots (
			seq INTEGER PRIMARY KEY AUTOINCREMENT, -- cast order
			tracker TEXT NOT NULL UNIQUE,
			credential TEXT NOT NULL,
			weight INTEGER NOT NULL,
			cast_at INTEGER NOT NULL,          -- unix timestamp in seconds
			superseded INTEGER NOT NULL DEFAULT 0,
			ballot BLOB NOT NULL
		);
		CREATE UNIQUE INDEX IF NOT EXISTS ballots_live_credential
			ON ballots (credential) WHERE superseded = 0;
	`)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStorage{db: db}, nil
}

func (s *SQLiteStorage) Put(ctx context.Context, rec *Record) (replaced string, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var seen int
	if err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM ballots WHERE tracker = ?`, rec.Tracker).Scan(&seen); err != nil {
		return "", err
	}
	if seen > 0 {
		return "", ErrDuplicateBallot
	}

	err = tx.QueryRowContext(ctx, `
		SELECT tracker FROM ballots WHERE credential = ? AND superseded = 0
	`, rec.Credential).Scan(&replaced)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		err = nil
	case err != nil:
		return "", err
	default:
		_, err = tx.ExecContext(ctx, `
			UPDATE ballots SET superseded = 1 WHERE credential = ? AND superseded = 0
		`, rec.Credential)
		if err != nil {
			return "", err
		}
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO ballots (tracker, credential, weight, cast_at, ballot)
		             VALUES (?,       ?,          ?,      ?,       ?);
	`, rec.Tracker, rec.Credential, rec.Weight, rec.CastAt, rec.Ballot)
	if err != nil {
		return "", err
	}
	return replaced, tx.Commit()
}

func (s *SQLiteStorage) Get(ctx context.Context, tracker string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT tracker, credential, weight, cast_at, ballot FROM ballots WHERE tracker = ? AND superseded = 0
	`, tracker)
	rec := new(Record)
	err := row.Scan(&rec.Tracker, &rec.Credential, &rec.Weight, &rec.CastAt, &rec.Ballot)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBallotMissing
	}
	return rec, err
}

func (s *SQLiteStorage) Each(ctx context.Context, fn func(*Record) error) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tracker, credential, weight, cast_at, ballot FROM ballots
		WHERE superseded = 0 ORDER BY seq ASC
	`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		rec := new(Record)
		if err := rows.Scan(&rec.Tracker, &rec.Credential, &rec.Weight, &rec.CastAt, &rec.Ballot); err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s *SQLiteStorage) Count(ctx context.Context) (n int, err error) {
	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ballots WHERE superseded = 0`).Scan(&n)
	return
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
