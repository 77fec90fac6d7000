package monitor

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Sample is one telemetry reading.
type Sample struct {
	Time        time.Time
	Temperature float64
	HeaterPower float64
	Stable      bool
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS telemetry (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp TEXT NOT NULL,
    temperature REAL NOT NULL,
    heater_power REAL NOT NULL,
    stable INTEGER NOT NULL
);`

// Store persists telemetry samples in a SQLite database.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) the database at path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create telemetry table: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Insert appends one sample.
func (s *Store) Insert(sample Sample) error {
	stable := 0
	if sample.Stable {
		stable = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO telemetry (timestamp, temperature, heater_power, stable) VALUES (?, ?, ?, ?)`,
		sample.Time.UTC().Format(time.RFC3339Nano), sample.Temperature, sample.HeaterPower, stable,
	)
	if err != nil {
		return fmt.Errorf("insert telemetry sample: %w", err)
	}
	return nil
}

// Recent returns up to n samples, newest first.
func (s *Store) Recent(n int) ([]Sample, error) {
	rows, err := s.db.Query(
		`SELECT timestamp, temperature, heater_power, stable FROM telemetry ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query telemetry: %w", err)
	}
	defer rows.Close()

	var out []Sample
	for rows.Next() {
		var ts string
		var sample Sample
		var stable int
		if err := rows.Scan(&ts, &sample.Temperature, &sample.HeaterPower, &stable); err != nil {
			return nil, fmt.Errorf("scan telemetry row: %w", err)
		}
		sample.Stable = stable != 0
		sample.Time, _ = time.Parse(time.RFC3339Nano, ts)
		out = append(out, sample)
	}
	return out, rows.Err()
}
