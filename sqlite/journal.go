package sqlite

import (
	"database/sql"
	"time"

	"github.com/imagvfx/awful"
)

// CreateEventsTable creates events table to a database if not exists.
// It is ok to call it multiple times.
func CreateEventsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			job_id TEXT NOT NULL,
			name TEXT NOT NULL,
			command TEXT NOT NULL,
			procs INTEGER NOT NULL,
			dir TEXT NOT NULL,
			time TIMESTAMP NOT NULL
		);
	`)
	if err != nil {
		return err
	}
	_, err = tx.Exec(`CREATE INDEX IF NOT EXISTS events_name ON events (name);`)
	return err
}

// JournalService interacts with a database for job events.
type JournalService struct {
	db *sql.DB
}

// NewJournalService creates a new JournalService.
func NewJournalService(db *sql.DB) *JournalService {
	return &JournalService{db: db}
}

// AddEvent adds an event into the database.
func (s *JournalService) AddEvent(e *awful.JobEvent) error {
	_, err := s.db.Exec(`
		INSERT INTO events (
			kind,
			job_id,
			name,
			command,
			procs,
			dir,
			time
		)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		string(e.Kind),
		string(e.JobID),
		e.Name,
		e.Command,
		e.Procs,
		e.Dir,
		e.Time.UTC(),
	)
	return err
}

// FindEvents finds events those matched with given filter, in the order they added.
func (s *JournalService) FindEvents(f awful.EventFilter) ([]*awful.JobEvent, error) {
	where := NewWhere()
	if f.JobID != "" {
		where.Eq("job_id", string(f.JobID))
	}
	if f.Name != "" {
		where.Eq("name", f.Name)
	}
	if f.Kind != "" {
		where.Eq("kind", string(f.Kind))
	}
	if !f.Since.IsZero() {
		where.NotBefore("time", f.Since.UTC())
	}
	rows, err := s.db.Query(`
		SELECT
			kind,
			job_id,
			name,
			command,
			procs,
			dir,
			time
		FROM events
		`+where.Stmt()+`
		ORDER BY id ASC
	`,
		where.Vals()...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*awful.JobEvent, 0)
	for rows.Next() {
		e := &awful.JobEvent{}
		var kind, id string
		var t time.Time
		err := rows.Scan(
			&kind,
			&id,
			&e.Name,
			&e.Command,
			&e.Procs,
			&e.Dir,
			&t,
		)
		if err != nil {
			return nil, err
		}
		e.Kind = awful.JobEventKind(kind)
		e.JobID = awful.JobID(id)
		e.Time = t.Local()
		events = append(events, e)
	}
	return events, rows.Err()
}
