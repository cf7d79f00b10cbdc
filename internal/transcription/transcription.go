package transcription

import (
	"context"

	"github.com/orgball2608/insta-compliance-bot/internal/domain"
	"github.com/orgball2608/insta-compliance-bot/pkg/errors"
)

var ErrFileTooLarge = errors.NewWithCode(errors.CodeTranscriptionFailed, "media file exceeds the transcription size limit")

type Result struct {
	Text string
	// Timestamped is nil when the provider returned no segments.
	Timestamped *domain.TimestampedTranscript
}

//go:generate go run go.uber.org/mock/mockgen -source=transcription.go -destination=mocks/mock.go
type Client interface {
	// Transcribe downloads the media behind mediaURL and returns its speech as text.
	Transcribe(ctx context.Context, mediaURL string) (*Result, error)
}
