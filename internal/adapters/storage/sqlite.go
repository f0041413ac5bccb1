package storage

// sqlite.go: registro de ejecuciones de fetch y training.
//
// Estrategia:
//   - `fetch_runs`: una fila por pitcher descargado (rango, filas crudas y normalizadas, archivo).
//   - `training_runs`: una fila por modelo entrenado, con accuracy de CV y de test.
//   - `training_candidates`: el detalle de la grid search de cada run, una fila por C.
//   - Los timestamps se guardan como texto RFC3339 en UTC con nanosegundos fijos; las accuracies NaN como NULL.

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/alejandrodnm/pitchmodel/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS fetch_runs (
    run_id      TEXT PRIMARY KEY,
    player_id   INTEGER NOT NULL,
    name_last   TEXT    NOT NULL DEFAULT '',
    name_first  TEXT    NOT NULL DEFAULT '',
    start_date  TEXT    NOT NULL,
    end_date    TEXT    NOT NULL,
    raw_rows    INTEGER NOT NULL DEFAULT 0,
    kept_rows   INTEGER NOT NULL DEFAULT 0,
    path        TEXT    NOT NULL DEFAULT '',
    fetched_at  TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS training_runs (
    run_id        TEXT PRIMARY KEY,
    player_id     INTEGER NOT NULL,
    source        TEXT    NOT NULL DEFAULT '',
    best_c        REAL    NOT NULL DEFAULT 0,
    cv_accuracy   REAL,
    test_accuracy REAL,
    train_rows    INTEGER NOT NULL DEFAULT 0,
    dropped_rows  INTEGER NOT NULL DEFAULT 0,
    test_rows     INTEGER NOT NULL DEFAULT 0,
    classes       TEXT    NOT NULL DEFAULT '',
    unseen_labels TEXT    NOT NULL DEFAULT '',
    test_date     TEXT    NOT NULL DEFAULT '',
    model_path    TEXT    NOT NULL DEFAULT '',
    trained_at    TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS training_candidates (
    run_id TEXT    NOT NULL REFERENCES training_runs(run_id) ON DELETE CASCADE,
    pos    INTEGER NOT NULL,
    c      REAL    NOT NULL,
    mean   REAL,
    std    REAL,
    PRIMARY KEY (run_id, pos)
);

CREATE INDEX IF NOT EXISTS idx_fetch_player    ON fetch_runs(player_id, fetched_at DESC);
CREATE INDEX IF NOT EXISTS idx_training_player ON training_runs(player_id, trained_at DESC);
`

const (
	// ancho fijo para que el orden lexicográfico coincida con el cronológico
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
	dateLayout = "2006-01-02"
)

// SQLiteStorage implementa ports.RunStorage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada y aplica el schema.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}
	return &SQLiteStorage{db: db}, nil
}

// SaveFetchRun registra la descarga de un pitcher.
func (s *SQLiteStorage) SaveFetchRun(ctx context.Context, r domain.FetchResult) error {
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO fetch_runs
			(run_id, player_id, name_last, name_first, start_date, end_date,
			 raw_rows, kept_rows, path, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID,
		int64(r.Player.ID),
		r.Player.Last,
		r.Player.First,
		r.StartDate.Format(dateLayout),
		r.EndDate.Format(dateLayout),
		r.RawRows,
		r.Rows,
		r.Path,
		r.FetchedAt.UTC().Format(timeLayout),
	); err != nil {
		return fmt.Errorf("storage.SaveFetchRun: player %s: %w", r.Player.ID, err)
	}
	return nil
}

// GetFetchRuns devuelve las descargas registradas, las más recientes primero.
// playerID 0 devuelve todas.
func (s *SQLiteStorage) GetFetchRuns(ctx context.Context, playerID domain.PlayerID) ([]domain.FetchResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, player_id, name_last, name_first, start_date, end_date,
		       raw_rows, kept_rows, path, fetched_at
		FROM fetch_runs
		WHERE ? = 0 OR player_id = ?
		ORDER BY fetched_at DESC, run_id`,
		int64(playerID), int64(playerID),
	)
	if err != nil {
		return nil, fmt.Errorf("storage.GetFetchRuns: query: %w", err)
	}
	defer rows.Close()

	var runs []domain.FetchResult
	for rows.Next() {
		var r domain.FetchResult
		var id int64
		var start, end, fetchedAt string
		if err := rows.Scan(
			&r.RunID, &id, &r.Player.Last, &r.Player.First, &start, &end,
			&r.RawRows, &r.Rows, &r.Path, &fetchedAt,
		); err != nil {
			return nil, fmt.Errorf("storage.GetFetchRuns: scan row: %w", err)
		}
		r.Player.ID = domain.PlayerID(id)
		r.StartDate, _ = time.Parse(dateLayout, start)
		r.EndDate, _ = time.Parse(dateLayout, end)
		r.FetchedAt, _ = time.Parse(timeLayout, fetchedAt)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// SaveTrainingRun registra un entrenamiento y el detalle de su grid search en una transacción.
func (s *SQLiteStorage) SaveTrainingRun(ctx context.Context, r domain.TrainingResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveTrainingRun: begin tx: %w", err)
	}
	defer tx.Rollback()

	var testDate string
	if !r.TestDate.IsZero() {
		testDate = r.TestDate.Format(dateLayout)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO training_runs
			(run_id, player_id, source, best_c, cv_accuracy, test_accuracy,
			 train_rows, dropped_rows, test_rows, classes, unseen_labels,
			 test_date, model_path, trained_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID,
		int64(r.PlayerID),
		r.Source,
		r.BestC,
		nullableFloat(r.CVAccuracy),
		nullableFloat(r.TestAccuracy),
		r.TrainRows,
		r.DroppedRows,
		r.TestRows,
		joinPitchTypes(r.Classes),
		joinPitchTypes(r.UnseenLabels),
		testDate,
		r.ModelPath,
		r.TrainedAt.UTC().Format(timeLayout),
	); err != nil {
		return fmt.Errorf("storage.SaveTrainingRun: insert run %s: %w", r.RunID, err)
	}

	if len(r.Candidates) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO training_candidates (run_id, pos, c, mean, std) VALUES (?, ?, ?, ?, ?)`,
		)
		if err != nil {
			return fmt.Errorf("storage.SaveTrainingRun: prepare: %w", err)
		}
		defer stmt.Close()

		for i, c := range r.Candidates {
			if _, err := stmt.ExecContext(ctx, r.RunID, i, c.C, nullableFloat(c.Mean), nullableFloat(c.Std)); err != nil {
				return fmt.Errorf("storage.SaveTrainingRun: insert candidate %v: %w", c.C, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveTrainingRun: commit: %w", err)
	}
	return nil
}

// GetTrainingRuns devuelve los entrenamientos registrados, los más recientes primero.
// playerID 0 devuelve todos.
func (s *SQLiteStorage) GetTrainingRuns(ctx context.Context, playerID domain.PlayerID) ([]domain.TrainingResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, player_id, source, best_c, cv_accuracy, test_accuracy,
		       train_rows, dropped_rows, test_rows, classes, unseen_labels,
		       test_date, model_path, trained_at
		FROM training_runs
		WHERE ? = 0 OR player_id = ?
		ORDER BY trained_at DESC, run_id`,
		int64(playerID), int64(playerID),
	)
	if err != nil {
		return nil, fmt.Errorf("storage.GetTrainingRuns: query: %w", err)
	}

	var runs []domain.TrainingResult
	for rows.Next() {
		var r domain.TrainingResult
		var id int64
		var cv, test sql.NullFloat64
		var classes, unseen, testDate, trainedAt string
		if err := rows.Scan(
			&r.RunID, &id, &r.Source, &r.BestC, &cv, &test,
			&r.TrainRows, &r.DroppedRows, &r.TestRows, &classes, &unseen,
			&testDate, &r.ModelPath, &trainedAt,
		); err != nil {
			rows.Close()
			return nil, fmt.Errorf("storage.GetTrainingRuns: scan row: %w", err)
		}
		r.PlayerID = domain.PlayerID(id)
		r.CVAccuracy = floatOrNaN(cv)
		r.TestAccuracy = floatOrNaN(test)
		r.Classes = splitPitchTypes(classes)
		r.UnseenLabels = splitPitchTypes(unseen)
		if testDate != "" {
			r.TestDate, _ = time.Parse(dateLayout, testDate)
		}
		r.TrainedAt, _ = time.Parse(timeLayout, trainedAt)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("storage.GetTrainingRuns: %w", err)
	}
	// una sola conexión: hay que liberar el cursor antes de consultar los candidatos
	rows.Close()

	for i := range runs {
		cands, err := s.candidates(ctx, runs[i].RunID)
		if err != nil {
			return nil, err
		}
		runs[i].Candidates = cands
	}
	return runs, nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// --- helpers internos ---

func (s *SQLiteStorage) candidates(ctx context.Context, runID string) ([]domain.CandidateScore, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c, mean, std FROM training_candidates WHERE run_id = ? ORDER BY pos`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage.candidates: query: %w", err)
	}
	defer rows.Close()

	var out []domain.CandidateScore
	for rows.Next() {
		var c domain.CandidateScore
		var mean, std sql.NullFloat64
		if err := rows.Scan(&c.C, &mean, &std); err != nil {
			return nil, fmt.Errorf("storage.candidates: scan row: %w", err)
		}
		c.Mean = floatOrNaN(mean)
		c.Std = floatOrNaN(std)
		out = append(out, c)
	}
	return out, rows.Err()
}

// nullableFloat convierte NaN en NULL; SQLite no tiene representación para NaN.
func nullableFloat(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func floatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

func joinPitchTypes(types []domain.PitchType) string {
	codes := make([]string, len(types))
	for i, t := range types {
		codes[i] = t.String()
	}
	return strings.Join(codes, ",")
}

func splitPitchTypes(s string) []domain.PitchType {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]domain.PitchType, len(parts))
	for i, p := range parts {
		out[i], _ = domain.ParsePitchType(p)
	}
	return out
}
