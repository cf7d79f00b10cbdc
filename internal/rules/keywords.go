package rules

import (
	"regexp"
	"strings"
)

var nonKeywordChars = regexp.MustCompile(`[^\w#]`)

var stopWords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`
		the and but for nor yet with from into onto that this these those there their its
		are was were been being has have had does did done will would could should shall
		may might must can cannot need needs
		include includes including contains contain containing mention mentions mentioned
		caption hashtag hashtags audio video beginning above fold first seconds second
		within least post says say said speak speaks spoken text description also any all
	`) {
		stopWords[w] = struct{}{}
	}
}

// ExtractKeywords returns the significant lower-cased tokens of a requirement, in order.
func ExtractKeywords(text string) []string {
	keywords := []string{}
	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = nonKeywordChars.ReplaceAllString(token, "")
		if len(token) <= 2 {
			continue
		}
		if _, stop := stopWords[token]; stop {
			continue
		}
		keywords = append(keywords, token)
	}
	return keywords
}
