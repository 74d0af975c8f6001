package solver

import (
	"regexp"
	"strings"

	"github.com/quizchain/solver-service/internal/models"
)

var (
	nonASCIIPattern = regexp.MustCompile(`[^\x00-\x7F]+`)
)

// demo URL markers, checked before any keyword. Order matters: the bare
// "demo" marker must come last or it would shadow the specific ones.
var demoMarkers = []struct {
	marker string
	task   models.TaskType
}{
	{"demo-scrape", models.TaskDemoScrape},
	{"demo-audio", models.TaskDemoAudio},
	{"demo-sum", models.TaskDemoSum},
	{"demo-file", models.TaskDemoFile},
	{"demo-api", models.TaskDemoAPI},
	{"demo", models.TaskDemoGeneral},
}

// Keyword rules in fixed priority. Only the first matching rule applies, so
// text mentioning both "download" and "sum" classifies as file_download.
var keywordRules = []struct {
	words []string
	task  models.TaskType
}{
	{[]string{"download", "file", ".pdf", ".csv"}, models.TaskFileDownload},
	{[]string{"sum", "total", "add", "calculate"}, models.TaskSum},
	{[]string{"api"}, models.TaskAPICall},
	{[]string{"scrape", "extract", "parse"}, models.TaskScraping},
	{[]string{"count", "number of"}, models.TaskCounting},
	{[]string{"audio", "sound", "listen"}, models.TaskAudio},
}

// Classify assigns a single task category from the page text and current URL.
func Classify(text, currentURL string) models.TaskType {
	for _, d := range demoMarkers {
		if strings.Contains(currentURL, d.marker) {
			return d.task
		}
	}

	lower := strings.ToLower(CleanText(text))
	for _, rule := range keywordRules {
		for _, word := range rule.words {
			if strings.Contains(lower, word) {
				return rule.task
			}
		}
	}
	return models.TaskGeneral
}

// CleanText strips non-ASCII characters and collapses whitespace.
func CleanText(text string) string {
	cleaned := nonASCIIPattern.ReplaceAllString(text, " ")
	return strings.Join(strings.Fields(cleaned), " ")
}

// QuestionSnippet derives a short question string from page text: the first
// sentence longer than 20 characters that is not a URL or markup fragment,
// falling back to the first 200 characters.
func QuestionSnippet(text string) string {
	clean := CleanText(text)

	for _, sentence := range strings.Split(clean, ".") {
		s := strings.TrimSpace(sentence)
		if len(s) > 20 &&
			!strings.HasPrefix(s, "http") &&
			!strings.HasPrefix(s, "{") &&
			!strings.HasPrefix(s, "<") {
			return s
		}
	}

	if len(clean) > 10 {
		if len(clean) > 200 {
			return clean[:200]
		}
		return clean
	}
	return ""
}
