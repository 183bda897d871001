package printing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/dentalshop/backend/internal/application/order"
	"github.com/dentalshop/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// A4 in inches, the unit Chrome prints in
const (
	a4Width  = 210 / 25.4
	a4Height = 297 / 25.4
	margin   = 12 / 25.4
)

// ErrRenderTimeout is returned when Chrome does not finish within the timeout
var ErrRenderTimeout = errors.New("pdf rendering timed out")

// PDFRenderer prints HTML documents with a headless Chrome. One browser
// process is shared; every render gets its own tab.
type PDFRenderer struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	timeout     time.Duration
	logger      *zap.Logger
}

// NewPDFRenderer prepares the Chrome allocator. The browser itself starts on
// the first render.
func NewPDFRenderer(cfg config.PrintingConfig, logger *zap.Logger) *PDFRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ChromePath))
	}
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &PDFRenderer{
		allocCtx:    allocCtx,
		allocCancel: cancel,
		timeout:     timeout,
		logger:      logger.Named("printing"),
	}
}

// Render prints html as an A4 PDF
func (r *PDFRenderer) Render(ctx context.Context, html string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tab, closeTab := chromedp.NewContext(r.allocCtx,
		chromedp.WithLogf(r.logger.Sugar().Debugf),
	)
	defer closeTab()
	// the tab follows the request: a cancelled request stops the render
	stop := context.AfterFunc(ctx, closeTab)
	defer stop()

	start := time.Now()
	var pdf []byte
	err := chromedp.Run(tab,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(a4Width).
				WithPaperHeight(a4Height).
				WithMarginTop(margin).
				WithMarginBottom(margin).
				WithMarginLeft(margin).
				WithMarginRight(margin).
				Do(ctx)
			pdf = data
			return err
		}),
	)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrRenderTimeout, r.timeout)
		}
		return nil, fmt.Errorf("failed to print pdf: %w", err)
	}
	if len(pdf) == 0 {
		return nil, errors.New("chrome returned an empty pdf")
	}

	r.logger.Debug("PDF rendered", zap.Int("bytes", len(pdf)), zap.Duration("elapsed", time.Since(start)))
	return pdf, nil
}

// Close stops the browser
func (r *PDFRenderer) Close() {
	r.allocCancel()
}

// Renderer turns an HTML document into a PDF
type Renderer interface {
	Render(ctx context.Context, html string) ([]byte, error)
}

// SlipPrinter produces order slips
type SlipPrinter struct {
	renderer  Renderer
	shopName  string
	shopPhone string
	now       func() time.Time
}

func NewSlipPrinter(renderer Renderer, cfg config.PrintingConfig) *SlipPrinter {
	return &SlipPrinter{
		renderer:  renderer,
		shopName:  cfg.ShopName,
		shopPhone: cfg.ShopPhone,
		now:       time.Now,
	}
}

// Print renders the slip of o as a PDF
func (p *SlipPrinter) Print(ctx context.Context, o *order.OrderResponse) ([]byte, error) {
	html, err := RenderSlipHTML(SlipData{
		ShopName:  p.shopName,
		ShopPhone: p.shopPhone,
		Order:     o,
		PrintedAt: p.now(),
	})
	if err != nil {
		return nil, err
	}
	return p.renderer.Render(ctx, html)
}
