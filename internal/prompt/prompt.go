package prompt

import (
	"fmt"
	"strings"

	"github.com/orgball2608/insta-compliance-bot/internal/domain"
	"github.com/orgball2608/insta-compliance-bot/pkg/formatter"
)

const systemPrompt = `You are an expert social media compliance analyst. You review Instagram posts against advertising and disclosure requirements supplied by brands and regulators.

Policy:
- Be precise about WHERE a disclosure appears. A disclosure in the wrong place does not satisfy a placement requirement.
- Instagram truncates captions after roughly 150 characters. "Above the fold" in a caption means within those first 150 characters.
- Evaluate both explicit compliance (exact tags or phrases) and implicit compliance (clear equivalent wording), and say which one applied.
- Quote the exact caption, hashtag, alt text or transcript text you relied on as evidence. Never invent evidence.
- If the content needed to judge a requirement is missing, the requirement fails and the explanation must say what was missing.

Timestamp interpretation (video posts):
- Transcript lines marked [MM:SS-MM:SS] give the time span of each spoken segment. Use these markers whenever they are present.
- "First 10 seconds" means content inside [00:00-00:10].
- "Beginning" means roughly the first 15-20 seconds.
- "Above the fold" for video means roughly the first 5-10 seconds of audio/visual exposure.
- Videos often open with intro filler before substantive content; account for it, but a disclosure that starts after the required window fails.
- Without timestamp markers, timing can only be estimated from word position; lower your confidence accordingly.

Respond only with JSON matching the provided schema. Give every requirement a result with passed, explanation, confidence between 0 and 1, evidence quotes, and reasoning, plus an overall assessment.`

const (
	noCaption        = "No caption provided"
	noHashtags       = "No hashtags"
	noAltText        = "No alt text provided"
	noTranscript     = "No transcript available"
	imageTranscript  = "TRANSCRIPT: Not applicable for image content"
	timestampHeading = "TRANSCRIPT (with timestamps):"
)

// BuildSystemPrompt returns the fixed analyst persona and evaluation policy.
func BuildSystemPrompt() string {
	return systemPrompt
}

// BuildUserPrompt renders the post and the numbered requirements.
func BuildUserPrompt(post *domain.Post, requirements []string) string {
	var sb strings.Builder

	sb.WriteString("Analyze this Instagram post against the compliance requirements below.\n\n")

	sb.WriteString(fmt.Sprintf("CAPTION: %s\n", orDefault(post.Caption, noCaption)))
	sb.WriteString(fmt.Sprintf("HASHTAGS: %s\n", renderHashtags(post.Hashtags)))
	sb.WriteString(fmt.Sprintf("ALT TEXT: %s\n", orDefault(post.AltText, noAltText)))
	writeTranscript(&sb, post)
	sb.WriteString(fmt.Sprintf("MEDIA TYPE: %s\n\n", post.MediaType))

	sb.WriteString("REQUIREMENTS:\n")
	for i, req := range requirements {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, req))
	}

	sb.WriteString("\nEvaluate each requirement independently and return one result per requirement, in the same order.\n")

	return sb.String()
}

func writeTranscript(sb *strings.Builder, post *domain.Post) {
	switch {
	case !post.IsVideo():
		sb.WriteString(imageTranscript + "\n")
	case post.HasTimestamps():
		sb.WriteString(timestampHeading + "\n")
		for _, seg := range post.TimestampedTranscript.Segments {
			sb.WriteString(fmt.Sprintf("[%s-%s]: %s\n",
				formatter.FormatTimestamp(seg.Start), formatter.FormatTimestamp(seg.End), strings.TrimSpace(seg.Text)))
		}
		full := post.Transcript
		if full == "" {
			full = post.TimestampedTranscript.Text
		}
		sb.WriteString(fmt.Sprintf("\nFULL TRANSCRIPT: %s\n", orDefault(full, noTranscript)))
	default:
		sb.WriteString(fmt.Sprintf("TRANSCRIPT: %s\n", orDefault(post.Transcript, noTranscript)))
	}
}

func renderHashtags(tags []string) string {
	rendered := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimPrefix(strings.TrimSpace(tag), "#")
		if tag == "" {
			continue
		}
		rendered = append(rendered, "#"+tag)
	}
	if len(rendered) == 0 {
		return noHashtags
	}
	return strings.Join(rendered, " ")
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
