package testseries

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/examhub/examhub-api/internal/api"
	"github.com/examhub/examhub-api/internal/types"
)

var _ TestSeriesRepo = (*PostgresTestSeriesRepo)(nil)

// TestSeriesRepo persists test series and their questions. Ownership is not
// enforced here; the service layer checks it before calling any mutation.
type TestSeriesRepo interface {
	Insert(ctx context.Context, series *types.TestSeries) (uuid.UUID, error)
	// GetByID returns the series without its questions, or types.ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*types.TestSeries, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID, creatorRole types.Role) ([]types.TestSeries, error)
	Delete(ctx context.Context, id uuid.UUID) error

	InsertQuestion(ctx context.Context, question *types.Question) (uuid.UUID, error)
	ListQuestions(ctx context.Context, seriesID uuid.UUID) ([]types.Question, error)
	DeleteQuestion(ctx context.Context, seriesID, questionID uuid.UUID) error
}

type PostgresTestSeriesRepo struct {
	logger *slog.Logger
	pgpool api.PostgresPool
}

func NewPostgresTestSeriesRepo(pgpool api.PostgresPool, logger *slog.Logger) *PostgresTestSeriesRepo {
	return &PostgresTestSeriesRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresTestSeriesRepo) Insert(ctx context.Context, series *types.TestSeries) (uuid.UUID, error) {
	ctx, span := otel.Tracer("TestSeriesRepo").Start(ctx, "Insert", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "test_series"),
	))
	defer span.End()

	var id uuid.UUID
	err := r.pgpool.QueryRow(ctx,
		`INSERT INTO test_series (title, description, subject, duration_minutes, price, created_by, created_by_model)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		series.Title, series.Description, series.Subject, series.DurationMinutes,
		series.Price, series.CreatedBy, string(series.CreatedByModel)).Scan(&id)
	if err != nil {
		span.RecordError(err)
		return uuid.Nil, fmt.Errorf("%w: test series insert failed: %w", types.ErrUpstreamUnavailable, err)
	}
	return id, nil
}

func (r *PostgresTestSeriesRepo) GetByID(ctx context.Context, id uuid.UUID) (*types.TestSeries, error) {
	var series types.TestSeries
	var createdByModel string
	err := r.pgpool.QueryRow(ctx,
		`SELECT id, title, description, subject, duration_minutes, price, created_by, created_by_model, created_at, updated_at
		 FROM test_series WHERE id = $1`, id).Scan(
		&series.ID, &series.Title, &series.Description, &series.Subject,
		&series.DurationMinutes, &series.Price, &series.CreatedBy, &createdByModel,
		&series.CreatedAt, &series.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("%w: test series lookup failed: %w", types.ErrUpstreamUnavailable, err)
	}
	series.CreatedByModel = types.Role(createdByModel)
	return &series, nil
}

func (r *PostgresTestSeriesRepo) ListByCreator(ctx context.Context, creatorID uuid.UUID, creatorRole types.Role) ([]types.TestSeries, error) {
	ctx, span := otel.Tracer("TestSeriesRepo").Start(ctx, "ListByCreator", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "test_series"),
	))
	defer span.End()

	rows, err := r.pgpool.Query(ctx,
		`SELECT id, title, description, subject, duration_minutes, price, created_by, created_by_model, created_at, updated_at
		 FROM test_series WHERE created_by = $1 AND created_by_model = $2
		 ORDER BY created_at DESC`, creatorID, string(creatorRole))
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: test series list failed: %w", types.ErrUpstreamUnavailable, err)
	}
	defer rows.Close()

	var out []types.TestSeries
	for rows.Next() {
		var series types.TestSeries
		var createdByModel string
		if err := rows.Scan(&series.ID, &series.Title, &series.Description, &series.Subject,
			&series.DurationMinutes, &series.Price, &series.CreatedBy, &createdByModel,
			&series.CreatedAt, &series.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: test series scan failed: %w", types.ErrUpstreamUnavailable, err)
		}
		series.CreatedByModel = types.Role(createdByModel)
		out = append(out, series)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: test series iteration failed: %w", types.ErrUpstreamUnavailable, err)
	}
	return out, nil
}

// Delete removes the series; associated questions go with it via the FK
// cascade. A second delete of the same series reports types.ErrNotFound.
func (r *PostgresTestSeriesRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pgpool.Exec(ctx, "DELETE FROM test_series WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("%w: test series delete failed: %w", types.ErrUpstreamUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}

func (r *PostgresTestSeriesRepo) InsertQuestion(ctx context.Context, question *types.Question) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.pgpool.QueryRow(ctx,
		`INSERT INTO questions (test_series_id, question_text, options, correct_answer, explanation, marks, negative_marks)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		question.TestSeriesID, question.QuestionText, question.Options,
		question.CorrectAnswer, question.Explanation, question.Marks, question.NegativeMarks).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: question insert failed: %w", types.ErrUpstreamUnavailable, err)
	}
	return id, nil
}

func (r *PostgresTestSeriesRepo) ListQuestions(ctx context.Context, seriesID uuid.UUID) ([]types.Question, error) {
	rows, err := r.pgpool.Query(ctx,
		`SELECT id, test_series_id, question_text, options, correct_answer, explanation, marks, negative_marks, created_at
		 FROM questions WHERE test_series_id = $1
		 ORDER BY created_at, id`, seriesID)
	if err != nil {
		return nil, fmt.Errorf("%w: question list failed: %w", types.ErrUpstreamUnavailable, err)
	}
	defer rows.Close()

	var out []types.Question
	for rows.Next() {
		var q types.Question
		if err := rows.Scan(&q.ID, &q.TestSeriesID, &q.QuestionText, &q.Options,
			&q.CorrectAnswer, &q.Explanation, &q.Marks, &q.NegativeMarks, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: question scan failed: %w", types.ErrUpstreamUnavailable, err)
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: question iteration failed: %w", types.ErrUpstreamUnavailable, err)
	}
	return out, nil
}

func (r *PostgresTestSeriesRepo) DeleteQuestion(ctx context.Context, seriesID, questionID uuid.UUID) error {
	tag, err := r.pgpool.Exec(ctx,
		"DELETE FROM questions WHERE id = $1 AND test_series_id = $2", questionID, seriesID)
	if err != nil {
		return fmt.Errorf("%w: question delete failed: %w", types.ErrUpstreamUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}
