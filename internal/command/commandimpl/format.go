package commandimpl

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/orgball2608/insta-compliance-bot/internal/cache"
	"github.com/orgball2608/insta-compliance-bot/internal/domain"
	"github.com/orgball2608/insta-compliance-bot/pkg/errors"
	"github.com/orgball2608/insta-compliance-bot/pkg/formatter"
)

const (
	maxMessageLength    = 4096
	maxExplanationRunes = 600
)

var esc = formatter.EscapeMarkdownV2

func formatReport(postURL string, r *domain.AnalysisReport) string {
	var b strings.Builder

	b.WriteString("*" + esc("Compliance report") + "*\n")
	b.WriteString(esc(postURL) + "\n\n")
	b.WriteString(esc(fmt.Sprintf("Score: %d%% (%d/%d passed)", r.OverallScore, r.PassedCount(), len(r.Results))) + "\n")
	b.WriteString(esc("Engine: "+engineLabel(r)) + "\n")
	b.WriteString(esc("Time: "+(time.Duration(r.ProcessingTimeMs)*time.Millisecond).String()) + "\n")

	for _, res := range r.Results {
		mark := "❌"
		if res.Passed {
			mark = "✅"
		}
		b.WriteString("\n" + mark + " *" + esc(res.Requirement) + "*\n")
		b.WriteString(esc(formatter.Truncate(res.Explanation, maxExplanationRunes)) + "\n")
		b.WriteString("_" + esc(fmt.Sprintf("Confidence: %.0f%%", res.Confidence*100)) + "_\n")
		if len(res.Evidence) > 0 {
			b.WriteString(esc("Evidence: "+strings.Join(res.Evidence, "; ")) + "\n")
		}
	}

	if r.OverallAssessment != "" {
		b.WriteString("\n*" + esc("Overall") + "*\n" + esc(r.OverallAssessment) + "\n")
	}

	return truncateMarkdown(b.String())
}

func engineLabel(r *domain.AnalysisReport) string {
	switch {
	case r.AIPowered:
		return "AI (" + r.Model + ")"
	case r.Model == domain.ModelRuleBasedFallback:
		return "rule-based fallback (AI unavailable)"
	default:
		return "rule-based"
	}
}

func formatHistory(postURL string, records []*domain.AnalysisRecord) string {
	var b strings.Builder
	b.WriteString("*" + esc("Recent analyses") + "*\n")
	b.WriteString(esc(postURL) + "\n")

	for i, rec := range records {
		engine := rec.Model
		if rec.AIPowered {
			engine = "AI " + rec.Model
		}
		line := fmt.Sprintf("%d. %d%% by %s, %s", i+1, rec.OverallScore, engine, humanize.Time(rec.CreatedAt))
		b.WriteString("\n" + esc(line))
	}

	return truncateMarkdown(b.String())
}

func formatCacheStats(s cache.Stats) string {
	lines := []string{
		fmt.Sprintf("Active entries: %s", formatter.FormatNumber(s.ActiveEntries)),
		fmt.Sprintf("Expired entries: %s", formatter.FormatNumber(s.ExpiredEntries)),
		fmt.Sprintf("Total entries: %s of %s", formatter.FormatNumber(s.TotalEntries), formatter.FormatNumber(s.MaxSize)),
		fmt.Sprintf("TTL: %s", time.Duration(s.TTLMs)*time.Millisecond),
	}
	return "*" + esc("Analysis cache") + "*\n" + esc(strings.Join(lines, "\n"))
}

// truncateMarkdown cuts at a line boundary so no escape sequence is split.
func truncateMarkdown(s string) string {
	if len(s) <= maxMessageLength {
		return s
	}
	cut := strings.LastIndex(s[:maxMessageLength-len(truncatedSuffix)], "\n")
	if cut <= 0 {
		cut = maxMessageLength - len(truncatedSuffix)
	}
	return s[:cut] + truncatedSuffix
}

var truncatedSuffix = "\n" + esc("... (truncated)")

// userMessage turns an error into text that is safe to show in chat.
func userMessage(err error) string {
	switch {
	case errors.HasCode(err, errors.CodeInvalidURL):
		return "❌ That does not look like an Instagram post link. Use a link like https://www.instagram.com/p/<code>/"
	case errors.IsInvalidInput(err):
		return "❌ " + errors.GetMessage(err)
	case errors.Is(err, context.DeadlineExceeded), errors.HasCode(err, errors.CodeTimeout):
		return "❌ The analysis took too long. Please try again later."
	case errors.HasCode(err, errors.CodeAnalysisFailed):
		return "❌ The AI analysis is unavailable right now. Try /quick for a rule-based check."
	default:
		return "❌ Something went wrong. Please try again later."
	}
}
