// Package pdf renders generated quote documents to PDF with headless Chrome
// and serves them from local storage.
package pdf

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/cartonq/cartonq-backend/internal/quote"
	"github.com/cartonq/cartonq-backend/pkg/config"
)

// Renderer prints HTML to an A4 PDF through the Chrome DevTools protocol.
type Renderer struct {
	store      *Store
	chromePath string
	timeout    time.Duration
}

func NewRenderer(store *Store, cfg config.PDFConfig) (*Renderer, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	chromePath := cfg.ChromePath
	if chromePath == "" {
		chromePath = detectChromePath()
	}
	return &Renderer{
		store:      store,
		chromePath: chromePath,
		timeout:    cfg.Timeout,
	}, nil
}

func (r *Renderer) Render(ctx context.Context, html, leadID string) (quote.Artifact, error) {
	if !ValidLeadID(leadID) {
		return quote.Artifact{}, fmt.Errorf("invalid lead id %q", leadID)
	}
	if html == "" {
		return quote.Artifact{}, fmt.Errorf("empty html document")
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	data, err := r.print(ctx, html)
	if err != nil {
		return quote.Artifact{}, fmt.Errorf("printing pdf: %w", err)
	}

	path, err := r.store.Write(leadID, data)
	if err != nil {
		return quote.Artifact{}, err
	}
	return quote.Artifact{Path: path, URL: r.store.URL(leadID)}, nil
}

func (r *Renderer) print(ctx context.Context, html string) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("enable-print-preview", true),
	)
	if r.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.chromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	chromeCtx, chromeCancel := chromedp.NewContext(allocCtx)
	defer chromeCancel()

	var pdfBuf []byte
	err := chromedp.Run(chromeCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			// A4: 210mm x 297mm in inches
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuf, nil
}

func detectChromePath() string {
	if path := os.Getenv("CHROME_PATH"); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
