package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateAnalysisReports, downCreateAnalysisReports)
}

func upCreateAnalysisReports(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS analysis_reports (
			id                 TEXT PRIMARY KEY,
			post_url           TEXT NOT NULL,
			fingerprint        TEXT NOT NULL,
			ai_powered         BOOLEAN NOT NULL DEFAULT FALSE,
			model              TEXT NOT NULL,
			overall_score      INTEGER NOT NULL,
			processing_time_ms BIGINT NOT NULL DEFAULT 0,
			report             JSONB NOT NULL,
			created_at         TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_analysis_reports_post_url_created_at
			ON analysis_reports (post_url, created_at DESC);
	`)
	if err != nil {
		return err
	}
	return nil
}

func downCreateAnalysisReports(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		DROP TABLE IF EXISTS analysis_reports;
	`)
	if err != nil {
		return err
	}
	return nil
}
