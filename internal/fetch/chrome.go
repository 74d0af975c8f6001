package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/quizchain/solver-service/internal/models"
)

// extraction gets its own short budget once navigation has settled or timed out
const chromeExtractTimeout = 10 * time.Second

// ChromeRenderer drives a headless browser so script-built pages render before
// extraction. A navigation timeout is not fatal: whatever content the page
// managed to load is extracted and returned.
type ChromeRenderer struct {
	navTimeout time.Duration
}

func NewChromeRenderer(navTimeout time.Duration) *ChromeRenderer {
	return &ChromeRenderer{navTimeout: navTimeout}
}

func (r *ChromeRenderer) Render(ctx context.Context, pageURL string) (*models.PageContent, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("no-sandbox", true),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	navCtx, cancelNav := context.WithTimeout(browserCtx, r.navTimeout)
	defer cancelNav()

	err := chromedp.Run(navCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("navigate %s: %w", pageURL, err)
	}

	extractCtx, cancelExtract := context.WithTimeout(browserCtx, chromeExtractTimeout)
	defer cancelExtract()

	var html, text string
	hrefs := []string{}
	scripts := []string{}
	err = chromedp.Run(extractCtx,
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.Text("body", &text, chromedp.ByQuery),
		chromedp.Evaluate(
			`Array.from(document.querySelectorAll("a[href], form[action]")).map(e => e.href || e.action)`,
			&hrefs,
		),
		chromedp.Evaluate(
			`Array.from(document.querySelectorAll("script")).map(s => s.innerText || "")`,
			&scripts,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("extract content of %s: %w", pageURL, err)
	}

	return &models.PageContent{
		HTML:        html,
		VisibleText: text,
		Hrefs:       hrefs,
		Scripts:     scripts,
	}, nil
}
