package fetch

import (
	"context"
	"regexp"
	"strings"

	"github.com/quizchain/solver-service/internal/models"
)

// Renderer retrieves the content of an instruction page. Implementations
// must degrade gracefully: partial content beats an error whenever anything
// at all was loaded.
type Renderer interface {
	Render(ctx context.Context, url string) (*models.PageContent, error)
}

var (
	hrefPattern       = regexp.MustCompile(`(?i)<a[^>]+href=["']([^"']+)["']`)
	formActionPattern = regexp.MustCompile(`(?i)<form[^>]+action=["']([^"']+)["']`)
	scriptPattern     = regexp.MustCompile(`(?is)<script[^>]*>(.*?)</script>`)
	tagPattern        = regexp.MustCompile(`<[^>]+>`)
	spacePattern      = regexp.MustCompile(`\s+`)
)

// HTTPRenderer produces page content from a plain GET. It does not execute
// scripts; hrefs, form actions and script bodies are pulled out with pattern
// matching, which is all the quiz pages need.
type HTTPRenderer struct {
	client *Client
}

func NewHTTPRenderer(client *Client) *HTTPRenderer {
	return &HTTPRenderer{client: client}
}

func (r *HTTPRenderer) Render(ctx context.Context, url string) (*models.PageContent, error) {
	html, err := r.client.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	return ParseStatic(html), nil
}

// ParseStatic extracts visible text, link targets and script bodies from raw
// HTML without a browser.
func ParseStatic(html string) *models.PageContent {
	var hrefs []string
	for _, m := range hrefPattern.FindAllStringSubmatch(html, -1) {
		hrefs = append(hrefs, m[1])
	}
	for _, m := range formActionPattern.FindAllStringSubmatch(html, -1) {
		hrefs = append(hrefs, m[1])
	}

	var scripts []string
	for _, m := range scriptPattern.FindAllStringSubmatch(html, -1) {
		scripts = append(scripts, m[1])
	}

	return &models.PageContent{
		HTML:        html,
		VisibleText: StripTags(html),
		Hrefs:       hrefs,
		Scripts:     scripts,
	}
}

// StripTags reduces HTML to whitespace-normalized text. Script bodies are
// removed first so code does not leak into the "visible" text.
func StripTags(html string) string {
	text := scriptPattern.ReplaceAllString(html, " ")
	text = tagPattern.ReplaceAllString(text, " ")
	text = spacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
