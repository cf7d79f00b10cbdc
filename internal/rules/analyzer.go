package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/orgball2608/insta-compliance-bot/internal/domain"
)

const (
	// FoldLength is how many caption characters are visible before truncation.
	FoldLength = 150
	// OpeningWords approximates the first ~10 seconds of speech.
	OpeningWords = 50
)

var hashtagPattern = regexp.MustCompile(`#\w+`)

type category int

const (
	categoryHashtag category = iota
	categoryFold
	categoryAudio
	categoryOpening
	categoryCaption
	categoryGeneric
)

// Analyzer evaluates requirements with deterministic text heuristics. It has no
// dependencies and never fails.
type Analyzer struct{}

func New() *Analyzer {
	return &Analyzer{}
}

// Analyze evaluates every non-blank requirement against the post. The returned report
// carries no AI metadata.
func (a *Analyzer) Analyze(post *domain.Post, requirements []string) *domain.AnalysisReport {
	results := make([]domain.AnalysisResult, 0, len(requirements))
	for _, raw := range requirements {
		req := strings.TrimSpace(raw)
		if req == "" {
			continue
		}
		results = append(results, evaluate(post, req))
	}

	return &domain.AnalysisReport{
		Results:      results,
		OverallScore: domain.OverallScore(results),
	}
}

// classify picks the single category a requirement is evaluated under. The first
// match wins.
func classify(lower string) category {
	switch {
	case strings.Contains(lower, "#") || strings.Contains(lower, "hashtag"):
		return categoryHashtag
	case mentionsFold(lower):
		return categoryFold
	case containsAny(lower, "mention", "says", "audio", "speak"):
		return categoryAudio
	case strings.Contains(lower, "first") && containsAny(lower, "second", "10"):
		return categoryOpening
	case containsAny(lower, "caption", "description", "text"):
		return categoryCaption
	default:
		return categoryGeneric
	}
}

func evaluate(post *domain.Post, req string) domain.AnalysisResult {
	lower := strings.ToLower(req)
	caption := strings.ToLower(post.Caption)
	transcript := strings.ToLower(transcriptOf(post))
	keywords := ExtractKeywords(req)

	switch classify(lower) {
	case categoryHashtag:
		return checkHashtag(req, lower, caption, keywords)
	case categoryFold:
		return checkKeywords(req, keywords, firstRunes(caption, FoldLength),
			fmt.Sprintf("the first %d characters of the caption (above the fold)", FoldLength))
	case categoryAudio:
		if transcript == "" {
			return domain.AnalysisResult{
				Requirement: req,
				Explanation: "No audio transcript is available for this post",
			}
		}
		return checkKeywords(req, keywords, transcript, "the audio transcript")
	case categoryOpening:
		if transcript == "" {
			return domain.AnalysisResult{
				Requirement: req,
				Explanation: "No audio transcript is available to check the opening of the video",
			}
		}
		return checkKeywords(req, keywords, firstWords(transcript, OpeningWords),
			fmt.Sprintf("the first %d words of the transcript (about the first 10 seconds)", OpeningWords))
	case categoryCaption:
		return checkKeywords(req, keywords, caption, "the caption")
	default:
		return checkGeneric(req, keywords, caption, transcript)
	}
}

func checkHashtag(req, lower, caption string, keywords []string) domain.AnalysisResult {
	window := caption
	where := "the caption"
	if mentionsFold(lower) {
		window = firstRunes(caption, FoldLength)
		where = fmt.Sprintf("the first %d characters of the caption", FoldLength)
	}

	if tag := hashtagPattern.FindString(lower); tag != "" {
		if strings.Contains(window, tag) {
			return domain.AnalysisResult{
				Requirement: req,
				Passed:      true,
				Explanation: fmt.Sprintf("Passed: hashtag %s found in %s", tag, where),
			}
		}
		return domain.AnalysisResult{
			Requirement: req,
			Explanation: fmt.Sprintf("Failed: hashtag %s not found in %s", tag, where),
		}
	}

	if len(keywords) == 0 {
		return noKeywords(req)
	}
	var matched []string
	for _, kw := range keywords {
		bare := strings.TrimPrefix(kw, "#")
		if strings.Contains(window, bare) || strings.Contains(window, "#"+bare) {
			matched = append(matched, kw)
		}
	}
	if len(matched) > 0 {
		return domain.AnalysisResult{
			Requirement: req,
			Passed:      true,
			Explanation: fmt.Sprintf("Passed: hashtag keywords found in %s (matched: %s)", where, strings.Join(matched, ", ")),
		}
	}
	return domain.AnalysisResult{
		Requirement: req,
		Explanation: fmt.Sprintf("Failed: hashtag keywords (%s) not found in %s", strings.Join(keywords, ", "), where),
	}
}

func checkKeywords(req string, keywords []string, target, where string) domain.AnalysisResult {
	if len(keywords) == 0 {
		return noKeywords(req)
	}
	matched := matchKeywords(keywords, target)
	if len(matched) > 0 {
		return domain.AnalysisResult{
			Requirement: req,
			Passed:      true,
			Explanation: fmt.Sprintf("Passed: required keywords found in %s (matched: %s)", where, strings.Join(matched, ", ")),
		}
	}
	return domain.AnalysisResult{
		Requirement: req,
		Explanation: fmt.Sprintf("Failed: required keywords (%s) not found in %s", strings.Join(keywords, ", "), where),
	}
}

func checkGeneric(req string, keywords []string, caption, transcript string) domain.AnalysisResult {
	if len(keywords) == 0 {
		return noKeywords(req)
	}
	inCaption := len(matchKeywords(keywords, caption)) > 0
	inAudio := transcript != "" && len(matchKeywords(keywords, transcript)) > 0

	var where string
	switch {
	case inCaption && inAudio:
		where = "caption and audio"
	case inCaption:
		where = "caption"
	case inAudio:
		where = "audio"
	default:
		return domain.AnalysisResult{
			Requirement: req,
			Explanation: fmt.Sprintf("Failed: required keywords (%s) not found in caption or audio", strings.Join(keywords, ", ")),
		}
	}
	return domain.AnalysisResult{
		Requirement: req,
		Passed:      true,
		Explanation: "Passed: required content found in " + where,
	}
}

func noKeywords(req string) domain.AnalysisResult {
	return domain.AnalysisResult{
		Requirement: req,
		Explanation: "Failed: no significant keywords could be extracted from the requirement",
	}
}

func matchKeywords(keywords []string, target string) []string {
	var matched []string
	for _, kw := range keywords {
		if strings.Contains(target, kw) {
			matched = append(matched, kw)
		}
	}
	return matched
}

func transcriptOf(post *domain.Post) string {
	if post.Transcript != "" {
		return post.Transcript
	}
	if post.IsVideo() && post.TimestampedTranscript != nil {
		return post.TimestampedTranscript.Text
	}
	return ""
}

func mentionsFold(lower string) bool {
	return strings.Contains(lower, "above the fold") || strings.Contains(lower, "beginning")
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func firstRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func firstWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
