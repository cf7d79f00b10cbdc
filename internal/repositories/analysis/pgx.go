package analysis

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orgball2608/insta-compliance-bot/internal/domain"
	"github.com/orgball2608/insta-compliance-bot/internal/repositories"
	"github.com/orgball2608/insta-compliance-bot/pkg/logger"
)

const table = "analysis_reports"

var columns = []string{
	"id", "post_url", "fingerprint", "ai_powered", "model",
	"overall_score", "processing_time_ms", "report", "created_at",
}

type Pgx struct {
	pg     *pgxpool.Pool
	logger logger.Logger
	now    func() time.Time
}

func NewPgx(pg *pgxpool.Pool, logger logger.Logger) *Pgx {
	return &Pgx{
		pg:     pg,
		logger: logger.WithComponent("AnalysisRepo"),
		now:    time.Now,
	}
}

var _ Repository = (*Pgx)(nil)

// Create stores a finished analysis report
func (p *Pgx) Create(ctx context.Context, record domain.AnalysisRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = p.now()
	}

	query, args, err := insertQuery(record)
	if err != nil {
		return repositories.ErrBadQuery
	}

	_, err = p.pg.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetLatestByPostURL returns the most recent reports for a post, newest first
func (p *Pgx) GetLatestByPostURL(ctx context.Context, postURL string, limit int) ([]*domain.AnalysisRecord, error) {
	query, args, err := latestQuery(postURL, limit)
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := p.pg.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.AnalysisRecord
	for rows.Next() {
		var r domain.AnalysisRecord
		if err := rows.Scan(
			&r.ID, &r.PostURL, &r.Fingerprint, &r.AIPowered, &r.Model,
			&r.OverallScore, &r.ProcessingTimeMs, &r.Report, &r.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// CleanupOldRecords deletes reports created before now minus olderThan
func (p *Pgx) CleanupOldRecords(ctx context.Context, olderThan time.Duration) (int64, error) {
	query, args, err := cleanupQuery(p.now().Add(-olderThan))
	if err != nil {
		return 0, repositories.ErrBadQuery
	}

	result, err := p.pg.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	p.logger.Info("Cleaned up old analysis reports", "deleted", result.RowsAffected(), "olderThan", olderThan.String())
	return result.RowsAffected(), nil
}

func insertQuery(r domain.AnalysisRecord) (string, []any, error) {
	return repositories.SqBuilder.
		Insert(table).
		Columns(columns...).
		Values(r.ID, r.PostURL, r.Fingerprint, r.AIPowered, r.Model,
			r.OverallScore, r.ProcessingTimeMs, r.Report, r.CreatedAt).
		ToSql()
}

func latestQuery(postURL string, limit int) (string, []any, error) {
	if limit <= 0 {
		limit = 5
	}
	return repositories.SqBuilder.
		Select(columns...).
		From(table).
		Where(sq.Eq{"post_url": postURL}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
}

func cleanupQuery(cutoff time.Time) (string, []any, error) {
	return repositories.SqBuilder.
		Delete(table).
		Where(sq.Lt{"created_at": cutoff}).
		ToSql()
}
