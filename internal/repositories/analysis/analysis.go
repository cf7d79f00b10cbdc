package analysis

import (
	"context"
	"errors"
	"time"

	"github.com/orgball2608/insta-compliance-bot/internal/domain"
)

var ErrAlreadyExists = errors.New("analysis record already exists")

//go:generate go run go.uber.org/mock/mockgen -source=analysis.go -destination=mocks/mock.go
type Repository interface {
	// Create stores a finished analysis report
	Create(ctx context.Context, record domain.AnalysisRecord) error

	// GetLatestByPostURL returns the most recent reports for a post, newest first
	GetLatestByPostURL(ctx context.Context, postURL string, limit int) ([]*domain.AnalysisRecord, error)

	// CleanupOldRecords deletes reports created before now minus olderThan
	CleanupOldRecords(ctx context.Context, olderThan time.Duration) (int64, error)
}
