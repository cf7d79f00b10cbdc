package commandimpl

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/orgball2608/insta-compliance-bot/internal/analyzer"
	"github.com/orgball2608/insta-compliance-bot/internal/cache"
	"github.com/orgball2608/insta-compliance-bot/internal/domain"
	"github.com/orgball2608/insta-compliance-bot/internal/instagram"
	"github.com/orgball2608/insta-compliance-bot/pkg/errors"
)

func (c *CommandImpl) handleAnalyze(ctx context.Context, chatID, userID int64, args string, rulesOnly bool) error {
	usage := "/check"
	if rulesOnly {
		usage = "/quick"
	}

	postURL, requirements, err := parseAnalyzeArgs(args)
	if err != nil {
		_, sendErr := c.Telegram.SendMessage(chatID, fmt.Sprintf(
			"Please provide a post URL and at least one requirement:\n%s <post_url>\n<requirement 1>\n<requirement 2>", usage))
		return sendErr
	}

	if !c.limiter.Allow(userID) {
		_, err := c.Telegram.SendMessage(chatID, "⏳ You are sending analyses too fast. Please wait a moment and try again.")
		return err
	}

	statusID, err := c.Telegram.SendMessage(chatID, "⏳ Starting analysis...")
	if err != nil {
		return fmt.Errorf("failed to send initial message: %w", err)
	}
	progress := c.statusUpdater(chatID, statusID)

	ctxWithTimeout, cancel := context.WithTimeout(ctx, analysisTimeout)
	defer cancel()

	post, err := c.Instagram.FetchPost(ctxWithTimeout, postURL, progress)
	if err != nil {
		c.finishStatus(chatID, statusID, "❌ Could not load the post.")
		_, sendErr := c.Telegram.SendMessage(chatID, userMessage(err))
		if sendErr != nil {
			return sendErr
		}
		return fmt.Errorf("failed to fetch post: %w", err)
	}
	if post.URL == "" {
		post.URL = postURL
	}

	report, err := c.Analyzer.Analyze(ctxWithTimeout, post, requirements, analyzer.Options{
		RulesOnly: rulesOnly,
		Progress:  progress,
	})
	if err != nil {
		c.finishStatus(chatID, statusID, "❌ Analysis failed.")
		_, sendErr := c.Telegram.SendMessage(chatID, userMessage(err))
		if sendErr != nil {
			return sendErr
		}
		return fmt.Errorf("failed to analyze post: %w", err)
	}

	c.saveHistory(ctx, postURL, post, requirements, report)
	c.finishStatus(chatID, statusID, "✅ Analysis complete.")

	_, err = c.Telegram.SendMarkdown(chatID, formatReport(post.URL, report))
	return err
}

// parseAnalyzeArgs reads the post URL from the first token and requirements from
// everything after it, one per line.
func parseAnalyzeArgs(args string) (string, []string, error) {
	args = strings.TrimSpace(args)
	if args == "" {
		return "", nil, errors.WrapWithCode(errors.ErrInvalidInput, errors.CodeInvalidInput, "post URL is required")
	}

	firstLine, rest, _ := strings.Cut(args, "\n")
	fields := strings.Fields(firstLine)
	postURL := fields[0]
	remainder := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(firstLine), postURL))

	requirements, err := analyzer.ParseRequirements(remainder + "\n" + rest)
	if err != nil {
		return "", nil, err
	}
	return postURL, requirements, nil
}

// statusUpdater mirrors progress milestones into the status message.
func (c *CommandImpl) statusUpdater(chatID int64, messageID int) domain.ProgressFunc {
	var (
		mu   sync.Mutex
		last string
	)
	return func(message string, percent int) {
		text := fmt.Sprintf("⏳ %s... %d%%", message, percent)

		mu.Lock()
		defer mu.Unlock()
		if text == last {
			return
		}
		last = text

		if err := c.Telegram.EditMessageText(chatID, messageID, text); err != nil {
			c.Logger.Debug("Failed to update status message", "error", err)
		}
	}
}

func (c *CommandImpl) finishStatus(chatID int64, messageID int, text string) {
	if err := c.Telegram.EditMessageText(chatID, messageID, text); err != nil {
		c.Logger.Debug("Failed to update status message", "error", err)
	}
}

// saveHistory stores the report under the canonical post URL. Failures are logged and never reach the user.
func (c *CommandImpl) saveHistory(ctx context.Context, postURL string, post *domain.Post, requirements []string, report *domain.AnalysisReport) {
	if canonical, err := instagram.CanonicalPostURL(postURL); err == nil {
		postURL = canonical
	}

	body, err := json.Marshal(report)
	if err != nil {
		c.Logger.Error("Failed to encode report for history", "error", err)
		return
	}

	record := domain.AnalysisRecord{
		ID:               uuid.NewString(),
		PostURL:          postURL,
		Fingerprint:      cache.GenerateKey(post, requirements),
		AIPowered:        report.AIPowered,
		Model:            report.Model,
		OverallScore:     report.OverallScore,
		ProcessingTimeMs: report.ProcessingTimeMs,
		Report:           body,
		CreatedAt:        time.Now(),
	}
	if err := c.AnalysisRepo.Create(ctx, record); err != nil {
		c.Logger.Error("Failed to save analysis history", "postURL", postURL, "error", err)
	}
}
