package commandimpl

import (
	"context"
	"fmt"
	"strings"

	"github.com/orgball2608/insta-compliance-bot/internal/instagram"
)

func (c *CommandImpl) handleHistory(ctx context.Context, chatID int64, args string) error {
	postURL := strings.TrimSpace(args)
	if postURL == "" {
		_, err := c.Telegram.SendMessage(chatID, "Please provide a post URL: /history <post_url>")
		return err
	}

	postURL, err := instagram.CanonicalPostURL(postURL)
	if err != nil {
		_, sendErr := c.Telegram.SendMessage(chatID, userMessage(err))
		return sendErr
	}

	records, err := c.AnalysisRepo.GetLatestByPostURL(ctx, postURL, historyLimit)
	if err != nil {
		_, sendErr := c.Telegram.SendMessage(chatID, "❌ Could not load the analysis history. Please try again later.")
		if sendErr != nil {
			return sendErr
		}
		return fmt.Errorf("failed to load history: %w", err)
	}

	if len(records) == 0 {
		_, err := c.Telegram.SendMessage(chatID, "No analyses found for this post yet. Use /check to run one.")
		return err
	}

	_, err = c.Telegram.SendMarkdown(chatID, formatHistory(postURL, records))
	return err
}

func (c *CommandImpl) handleCacheStats(chatID int64) error {
	_, err := c.Telegram.SendMarkdown(chatID, formatCacheStats(c.Analyzer.CacheStats()))
	return err
}
