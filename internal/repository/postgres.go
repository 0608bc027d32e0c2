package repository

import (
	"context"
	"fmt"
	"time"

	"muuguzi/internal/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
)

// caregiverSchema is always applied. The document column holds the full stored
// record so fields the typed columns cannot represent survive a save.
var caregiverSchema = []string{
	`CREATE TABLE IF NOT EXISTS caregivers (
		position         INTEGER PRIMARY KEY,
		id               INTEGER,
		name             TEXT NOT NULL DEFAULT '',
		qualifications   JSONB,
		focus_conditions JSONB,
		location         TEXT NOT NULL DEFAULT '',
		gender           TEXT NOT NULL DEFAULT '',
		availability     JSONB,
		is_available     BOOLEAN,
		document         JSONB NOT NULL
	)`,
}

// assessmentSchema needs the pgvector extension and is only applied when the
// assessment log is enabled
var assessmentSchema = []string{
	`CREATE EXTENSION IF NOT EXISTS vector`,
	fmt.Sprintf(`CREATE TABLE IF NOT EXISTS assessment_logs (
		id         BIGSERIAL PRIMARY KEY,
		features   vector(%d) NOT NULL,
		source     TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`, model.FeatureVectorSize),
}

// schemaStatements returns the DDL to apply
func schemaStatements(assessmentLog bool) []string {
	stmts := append([]string{}, caregiverSchema...)
	if assessmentLog {
		stmts = append(stmts, assessmentSchema...)
	}
	return stmts
}

// PostgresRepository handles database operations
type PostgresRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int, logger *zap.Logger) (*PostgresRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db, logger: logger}, nil
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// EnsureSchema creates the tables used by the service if they are missing.
// The pgvector extension is only required when assessmentLog is set.
func (r *PostgresRepository) EnsureSchema(ctx context.Context, assessmentLog bool) error {
	for _, stmt := range schemaStatements(assessmentLog) {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// Load returns all caregivers in stored order. Query failures are logged and
// yield an empty list.
func (r *PostgresRepository) Load(ctx context.Context) []model.Caregiver {
	query := `SELECT document FROM caregivers ORDER BY position`

	var documents [][]byte
	if err := r.db.SelectContext(ctx, &documents, query); err != nil {
		r.logger.Warn("failed to load caregivers", zap.Error(err))
		return []model.Caregiver{}
	}

	caregivers := make([]model.Caregiver, len(documents))
	for i, doc := range documents {
		_ = caregivers[i].UnmarshalJSON(doc)
	}
	return caregivers
}

// Save replaces the stored caregivers with the given list in one transaction
func (r *PostgresRepository) Save(ctx context.Context, caregivers []model.Caregiver) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM caregivers`); err != nil {
		return fmt.Errorf("failed to clear caregivers: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO caregivers (position, id, name, qualifications, focus_conditions, location, gender, availability, is_available, document)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, cg := range caregivers {
		doc, err := cg.MarshalJSON()
		if err != nil {
			return fmt.Errorf("caregiver at %d: %w", i, err)
		}

		var id any
		if !cg.Opaque() {
			id = cg.ID
		}
		_, err = stmt.ExecContext(ctx,
			i, id, cg.Name, cg.Qualifications, cg.FocusConditions,
			cg.Location, cg.Gender, cg.Availability, cg.IsAvailable, string(doc),
		)
		if err != nil {
			return fmt.Errorf("caregiver at %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// LogAssessment stores an encoded prediction input
func (r *PostgresRepository) LogAssessment(ctx context.Context, features []float32, source model.PredictionSource) error {
	query := `INSERT INTO assessment_logs (features, source) VALUES ($1, $2)`
	_, err := r.db.ExecContext(ctx, query, pgvector.NewVector(features), string(source))
	if err != nil {
		return fmt.Errorf("failed to log assessment: %w", err)
	}
	return nil
}
