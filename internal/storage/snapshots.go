// Package storage persists the last-good payload for each data type so
// the dashboard survives upstream outages and cold starts, and tracks
// which payloads changed since the frontend last polled.
package storage

import (
	"bytes"
	"database/sql"
	"time"

	// Register sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
)

type DB interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	Close() error
}

type Store struct{ db DB }

func OpenSQLite(dsn string) (DB, error) {
	return sql.Open("sqlite3", dsn)
}

func InitSchema(db DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS snapshots(
		data_type TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		updated_at INTEGER NOT NULL,
		changed_at INTEGER
	)`)
	return err
}

func NewStore(db DB) *Store { return &Store{db: db} }

// Save upserts a payload and reports whether it differs from the stored
// one. A changed payload sets the changed flag; an identical payload
// only refreshes updated_at.
func (s *Store) Save(dataType string, payload []byte) (changed bool, err error) {
	existing, _, loadErr := s.load(dataType)
	if loadErr != nil {
		return false, loadErr
	}
	changed = existing == nil || !bytes.Equal(existing, payload)

	now := time.Now().Unix()
	if changed {
		_, err = s.db.Exec(`INSERT INTO snapshots(data_type,payload,updated_at,changed_at) VALUES(?,?,?,?)
			ON CONFLICT(data_type) DO UPDATE SET payload=excluded.payload, updated_at=excluded.updated_at, changed_at=excluded.changed_at`,
			dataType, payload, now, now)
	} else {
		_, err = s.db.Exec(`UPDATE snapshots SET updated_at=? WHERE data_type=?`, now, dataType)
	}
	return changed, err
}

// Load returns the stored payload and its timestamp, or a nil payload
// when nothing fresh enough exists.
func (s *Store) Load(dataType string, maxAge time.Duration) ([]byte, time.Time, error) {
	payload, updatedAt, err := s.load(dataType)
	if err != nil || payload == nil {
		return nil, time.Time{}, err
	}
	if time.Since(updatedAt) > maxAge {
		return nil, time.Time{}, nil
	}
	return payload, updatedAt, nil
}

func (s *Store) load(dataType string) ([]byte, time.Time, error) {
	rows, err := s.db.Query(`SELECT payload, updated_at FROM snapshots WHERE data_type=?`, dataType)
	if err != nil {
		return nil, time.Time{}, err
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, time.Time{}, rows.Err()
	}
	var payload []byte
	var updatedAt int64
	if err := rows.Scan(&payload, &updatedAt); err != nil {
		return nil, time.Time{}, err
	}
	return payload, time.Unix(updatedAt, 0), nil
}

// ChangedFlags returns data types whose payload changed since the flags
// were last cleared, with the change time.
func (s *Store) ChangedFlags() (map[string]time.Time, error) {
	rows, err := s.db.Query(`SELECT data_type, changed_at FROM snapshots WHERE changed_at IS NOT NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]time.Time{}
	for rows.Next() {
		var dataType string
		var changedAt int64
		if err := rows.Scan(&dataType, &changedAt); err != nil {
			return nil, err
		}
		out[dataType] = time.Unix(changedAt, 0)
	}
	return out, rows.Err()
}

// ClearChanged resets all changed flags; called once the update feed has
// been consumed.
func (s *Store) ClearChanged() error {
	_, err := s.db.Exec(`UPDATE snapshots SET changed_at=NULL`)
	return err
}
