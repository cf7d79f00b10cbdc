package domain

type MediaType string

const (
	MediaTypeVideo MediaType = "video"
	MediaTypeImage MediaType = "image"
)

// Word is a single transcribed word with its timing in seconds.
type Word struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Segment is a contiguous span of transcribed speech. Start/End are seconds.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Words []Word  `json:"words,omitempty"`
}

type TimestampedTranscript struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
}

// Post is the content of a single Instagram post as seen by the analyzers.
// Image posts never carry a transcript.
type Post struct {
	URL                   string                 `json:"url,omitempty"`
	Caption               string                 `json:"caption"`
	MediaType             MediaType              `json:"mediaType"`
	MediaURL              string                 `json:"mediaUrl"`
	Transcript            string                 `json:"transcript"`
	TimestampedTranscript *TimestampedTranscript `json:"timestampedTranscript,omitempty"`
	Hashtags              []string               `json:"hashtags"`
	AltText               string                 `json:"altText"`
}

func (p *Post) IsVideo() bool {
	return p.MediaType == MediaTypeVideo
}

// HasTimestamps reports whether segment-level timing is available for a video post.
func (p *Post) HasTimestamps() bool {
	return p.IsVideo() && p.TimestampedTranscript != nil && len(p.TimestampedTranscript.Segments) > 0
}
