package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	apperrors "github.com/Zakintaliban/indonesia-train-passenger-forecasting/internal/errors"
	"github.com/Zakintaliban/indonesia-train-passenger-forecasting/internal/passenger"
)

// ErrNoRuns is returned by LatestRun on an empty archive
var ErrNoRuns = errors.New("archive has no runs")

// Run is one archived forecast run
type Run struct {
	ID            string
	CreatedAt     time.Time
	AppVersion    string
	Horizon       int
	Sources       []string
	SchemaPolicy  string
	MissingPolicy string
	Observations  int
	Records       []passenger.ForecastRecord
	Skipped       []passenger.Skipped
}

// Store archives runs in a SQLite database
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NewStore opens (creating if needed) the archive at dbPath and migrates it
func NewStore(dbPath string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, apperrors.NewStorageError("create archive directory", err).WithContext("path", dbPath)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, apperrors.NewStorageError("open archive database", err).WithContext("path", dbPath)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, apperrors.NewStorageError("ping archive database", err).WithContext("path", dbPath)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, apperrors.NewStorageError("migrate archive database", err).WithContext("path", dbPath)
	}

	return &Store{db: db, path: dbPath, logger: logger.With("component", "archive")}, nil
}

// Close closes the database
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveRun stores a run with all its forecasts in one transaction
func (s *Store) SaveRun(ctx context.Context, run Run) error {
	sources, err := json.Marshal(run.Sources)
	if err != nil {
		return fmt.Errorf("encode sources: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewStorageError("begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, app_version, horizon, sources, schema_policy, missing_policy, observations)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.UTC().Format(time.RFC3339Nano), run.AppVersion, run.Horizon,
		string(sources), run.SchemaPolicy, run.MissingPolicy, run.Observations,
	); err != nil {
		return apperrors.NewStorageError("insert run", err).WithContext("run_id", run.ID)
	}

	for i, rec := range run.Records {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO forecasts (run_id, position, category, n_obs, last_actual, last_year, last_month,
			                        slope, intercept, r2, tolerance, direction)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, i, rec.Category, rec.NObs, rec.LastActual, rec.LastPeriod.Year, int(rec.LastPeriod.Month),
			rec.Slope, rec.Intercept, rec.R2, rec.Tolerance, string(rec.Direction),
		)
		if err != nil {
			return apperrors.NewStorageError("insert forecast", err).
				WithContext("run_id", run.ID).
				WithContext("category", rec.Category)
		}
		forecastID, err := res.LastInsertId()
		if err != nil {
			return apperrors.NewStorageError("read forecast id", err)
		}

		for k, fp := range rec.Forecasts {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO forecast_points (forecast_id, step, period_index, year, month, label, value)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				forecastID, k+1, fp.PeriodIndex, fp.Period.Year, int(fp.Period.Month), fp.Label, fp.Value,
			); err != nil {
				return apperrors.NewStorageError("insert forecast point", err).
					WithContext("run_id", run.ID).
					WithContext("category", rec.Category)
			}
		}
	}

	for i, sk := range run.Skipped {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO skipped_categories (run_id, position, category, reason, detail) VALUES (?, ?, ?, ?, ?)`,
			run.ID, i, sk.Category, sk.Reason, sk.Detail,
		); err != nil {
			return apperrors.NewStorageError("insert skipped category", err).WithContext("run_id", run.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewStorageError("commit run", err).WithContext("run_id", run.ID)
	}

	s.logger.InfoContext(ctx, "run archived",
		"run_id", run.ID,
		"records", len(run.Records),
		"skipped", len(run.Skipped),
		"path", s.path)
	return nil
}

// LatestRun returns the most recently created run
func (s *Store) LatestRun(ctx context.Context) (*Run, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM runs ORDER BY created_at DESC, rowid DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoRuns
	}
	if err != nil {
		return nil, apperrors.NewStorageError("query latest run", err)
	}
	return s.GetRun(ctx, id)
}

// GetRun loads the run with the given id
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	run := &Run{ID: id}
	var createdAt, sources string

	err := s.db.QueryRowContext(ctx,
		`SELECT created_at, app_version, horizon, sources, schema_policy, missing_policy, observations
		 FROM runs WHERE id = ?`, id,
	).Scan(&createdAt, &run.AppVersion, &run.Horizon, &sources, &run.SchemaPolicy, &run.MissingPolicy, &run.Observations)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewStorageError("run not found", err).WithContext("run_id", id)
	}
	if err != nil {
		return nil, apperrors.NewStorageError("query run", err).WithContext("run_id", id)
	}

	if run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	if err := json.Unmarshal([]byte(sources), &run.Sources); err != nil {
		return nil, fmt.Errorf("decode sources: %w", err)
	}

	if run.Records, err = s.loadForecasts(ctx, id); err != nil {
		return nil, err
	}
	if run.Skipped, err = s.loadSkipped(ctx, id); err != nil {
		return nil, err
	}
	return run, nil
}

func (s *Store) loadForecasts(ctx context.Context, runID string) ([]passenger.ForecastRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, category, n_obs, last_actual, last_year, last_month, slope, intercept, r2, tolerance, direction
		 FROM forecasts WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, apperrors.NewStorageError("query forecasts", err).WithContext("run_id", runID)
	}
	defer rows.Close()

	var (
		records []passenger.ForecastRecord
		ids     []int64
	)
	for rows.Next() {
		var (
			rec       passenger.ForecastRecord
			id        int64
			lastMonth int
			direction string
		)
		if err := rows.Scan(&id, &rec.Category, &rec.NObs, &rec.LastActual, &rec.LastPeriod.Year, &lastMonth,
			&rec.Slope, &rec.Intercept, &rec.R2, &rec.Tolerance, &direction); err != nil {
			return nil, apperrors.NewStorageError("scan forecast", err).WithContext("run_id", runID)
		}
		rec.LastPeriod.Month = time.Month(lastMonth)
		rec.Direction = passenger.Direction(direction)
		records = append(records, rec)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("iterate forecasts", err).WithContext("run_id", runID)
	}
	rows.Close()

	for i, id := range ids {
		points, err := s.loadPoints(ctx, id)
		if err != nil {
			return nil, err
		}
		records[i].Forecasts = points
	}
	return records, nil
}

func (s *Store) loadPoints(ctx context.Context, forecastID int64) ([]passenger.ForecastPoint, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT period_index, year, month, label, value FROM forecast_points
		 WHERE forecast_id = ? ORDER BY step`, forecastID)
	if err != nil {
		return nil, apperrors.NewStorageError("query forecast points", err)
	}
	defer rows.Close()

	var points []passenger.ForecastPoint
	for rows.Next() {
		var (
			fp    passenger.ForecastPoint
			month int
		)
		if err := rows.Scan(&fp.PeriodIndex, &fp.Period.Year, &month, &fp.Label, &fp.Value); err != nil {
			return nil, apperrors.NewStorageError("scan forecast point", err)
		}
		fp.Period.Month = time.Month(month)
		points = append(points, fp)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("iterate forecast points", err)
	}
	return points, nil
}

func (s *Store) loadSkipped(ctx context.Context, runID string) ([]passenger.Skipped, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, reason, detail FROM skipped_categories WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, apperrors.NewStorageError("query skipped categories", err).WithContext("run_id", runID)
	}
	defer rows.Close()

	var skipped []passenger.Skipped
	for rows.Next() {
		var sk passenger.Skipped
		if err := rows.Scan(&sk.Category, &sk.Reason, &sk.Detail); err != nil {
			return nil, apperrors.NewStorageError("scan skipped category", err).WithContext("run_id", runID)
		}
		skipped = append(skipped, sk)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("iterate skipped categories", err).WithContext("run_id", runID)
	}
	return skipped, nil
}
