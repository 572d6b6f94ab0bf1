// Package telemetry records per-epoch training metrics. The recorder is
// fire-and-forget: storage failures are logged and training is never blocked
// or failed because of them.
package telemetry

import (
	"database/sql"
	"log"
	"time"
)

import _ "modernc.org/sqlite"

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	name        TEXT NOT NULL,
	started_at  TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS epochs (
	run_id      INTEGER NOT NULL REFERENCES runs(id),
	epoch       INTEGER NOT NULL,
	train_loss  REAL NOT NULL,
	val_loss    REAL NOT NULL,
	recorded_at TIMESTAMP NOT NULL
);`

// Recorder stores {epoch, train_loss, val_loss} records in a sqlite file.
type Recorder struct {
	db     *sql.DB
	runID  int64
	logger *log.Logger
}

// Open creates or opens the metrics database and registers a new run.
func Open(path, runName string, logger *log.Logger) (*Recorder, error) {
	if logger == nil {
		logger = log.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	res, err := db.Exec(`INSERT INTO runs(name, started_at) VALUES(?, ?)`, runName, time.Now().UTC())
	if err != nil {
		db.Close()
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Recorder{db: db, runID: id, logger: logger}, nil
}

// Epoch records one epoch. Failures are logged, never returned.
func (r *Recorder) Epoch(epoch int, trainLoss, valLoss float64) {
	_, err := r.db.Exec(
		`INSERT INTO epochs(run_id, epoch, train_loss, val_loss, recorded_at) VALUES(?, ?, ?, ?, ?)`,
		r.runID, epoch, trainLoss, valLoss, time.Now().UTC())
	if err != nil {
		r.logger.Printf("telemetry: dropping epoch %d record: %v", epoch, err)
	}
}

// History returns the recorded (train, val) loss pairs of this run in epoch
// order.
func (r *Recorder) History() ([][2]float64, error) {
	rows, err := r.db.Query(
		`SELECT train_loss, val_loss FROM epochs WHERE run_id = ? ORDER BY epoch`, r.runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out [][2]float64
	for rows.Next() {
		var t, v float64
		if err := rows.Scan(&t, &v); err != nil {
			return nil, err
		}
		out = append(out, [2]float64{t, v})
	}
	return out, rows.Err()
}

// Close releases the database handle.
func (r *Recorder) Close() error {
	return r.db.Close()
}
