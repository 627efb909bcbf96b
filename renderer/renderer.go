// Package renderer provides the headless-browser fetch primitive for
// sources that render their content client-side.
package renderer

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
)

const USER_AGENT = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.0.0 Safari/537.36"

const defaultRenderTimeout = 30 * time.Second

// Renderer navigates a URL in a headless browser and returns the fully
// rendered HTML after load completion.
type Renderer interface {
	RenderHTML(ctx context.Context, url string) (string, error)
}

// ChromeRenderer runs one fresh headless Chrome per request. The deferred
// cancels tear the subprocess down on success, parse failure and
// cancellation alike, so no browser process outlives its request.
type ChromeRenderer struct {
	execPath string
	timeout  time.Duration
}

// NewChrome builds a renderer. execPath may be empty to use chromedp's
// default browser lookup; a non-positive timeout falls back to 30s.
func NewChrome(execPath string, timeout time.Duration) *ChromeRenderer {
	if timeout <= 0 {
		timeout = defaultRenderTimeout
	}
	return &ChromeRenderer{execPath: execPath, timeout: timeout}
}

func (r *ChromeRenderer) RenderHTML(ctx context.Context, url string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(USER_AGENT),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-crashpad", true),
		chromedp.Flag("disable-breakpad", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("headless", true),
	)
	if r.execPath != "" {
		opts = append(opts, chromedp.ExecPath(r.execPath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()
	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()
	browserCtx, cancel = context.WithTimeout(browserCtx, r.timeout)
	defer cancel()

	var htmlContent string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(1*time.Second),
		chromedp.OuterHTML("html", &htmlContent),
	)
	if err != nil {
		return "", err
	}
	return htmlContent, nil
}
