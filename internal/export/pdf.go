package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/pavelanni/lessonpress/internal/model"
)

// PDFOptions configures the print surface. Dimensions are inches (A4).
type PDFOptions struct {
	PaperWidth   float64
	PaperHeight  float64
	MarginTop    float64
	MarginBottom float64
	MarginLeft   float64
	MarginRight  float64

	// Timeout bounds the whole export; ResourceWait bounds how long we wait
	// for external resources (fonts, generated images) before printing
	// best-effort.
	Timeout      time.Duration
	ResourceWait time.Duration
}

// DefaultPDFOptions returns A4 defaults.
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		PaperWidth:   8.27,
		PaperHeight:  11.69,
		MarginTop:    0.59,
		MarginBottom: 0.59,
		MarginLeft:   0.79,
		MarginRight:  0.79,
		Timeout:      90 * time.Second,
		ResourceWait: 15 * time.Second,
	}
}

// PDFEncoder prints the shelled page sequence through headless Chrome.
type PDFEncoder struct {
	opts       PDFOptions
	chromePath string
}

// NewPDFEncoder creates a PDF encoder. chromePath may be empty to use the
// default Chrome discovery.
func NewPDFEncoder(opts PDFOptions, chromePath string) *PDFEncoder {
	return &PDFEncoder{opts: opts, chromePath: chromePath}
}

// Encode renders all pages into one print document and invokes the
// platform print-to-PDF path. If resources do not finish loading within
// the bound, it prints best-effort and flags the artifact incomplete.
func (e *PDFEncoder) Encode(ctx context.Context, m model.MaterialRecord, pages []model.Page) (*Artifact, error) {
	doc := buildPrintDocument(m, pages)

	// Temp file avoids data-URL size limits.
	tmp, err := os.CreateTemp("", "lessonpress-*.html")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)
	if _, err := tmp.WriteString(doc); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	ctx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("headless", true),
	)
	if e.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(e.chromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	if err := chromedp.Run(browserCtx,
		chromedp.Navigate("file://"+tmpPath),
		chromedp.WaitReady("body"),
	); err != nil {
		return nil, fmt.Errorf("print surface unavailable: %w", err)
	}

	// Bounded wait for images and fonts; on timeout, print whatever loaded.
	incomplete := false
	waitCtx, waitCancel := context.WithTimeout(browserCtx, e.opts.ResourceWait)
	var loaded bool
	err = chromedp.Run(waitCtx,
		chromedp.Poll(`Array.from(document.images).every(i => i.complete) && document.fonts.status === "loaded"`, &loaded),
	)
	waitCancel()
	if err != nil {
		incomplete = true
		slog.Warn("PDF export proceeding before all resources loaded",
			"material", m.ID, "wait", e.opts.ResourceWait, "error", err)
	}

	var pdfData []byte
	err = chromedp.Run(browserCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		pdfData, _, err = page.PrintToPDF().
			WithPaperWidth(e.opts.PaperWidth).
			WithPaperHeight(e.opts.PaperHeight).
			WithMarginTop(e.opts.MarginTop).
			WithMarginBottom(e.opts.MarginBottom).
			WithMarginLeft(e.opts.MarginLeft).
			WithMarginRight(e.opts.MarginRight).
			WithPrintBackground(true).
			WithPreferCSSPageSize(false).
			Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("print to PDF: %w", err)
	}

	return &Artifact{
		Filename:   suggestedFilename(m, "pdf"),
		MIME:       "application/pdf",
		Data:       pdfData,
		Incomplete: incomplete,
	}, nil
}

// buildPrintDocument concatenates all shelled pages into one standalone
// HTML document with print CSS forcing one physical page per Page.
func buildPrintDocument(m model.MaterialRecord, pages []model.Page) string {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>")
	sb.WriteString(htmlEscape(m.Title))
	sb.WriteString("</title><style>\n")
	sb.WriteString(`body { margin: 0; }
.page { page-break-after: always; }
.page:last-child { page-break-after: auto; }
.page-header { font-size: 9pt; color: #888; margin-bottom: 8pt; }
.page-footer { font-size: 8pt; color: #aaa; margin-top: 8pt; }
`)
	sb.WriteString("</style></head><body>\n")
	for _, p := range pages {
		sb.WriteString(p.HTML)
		sb.WriteString("\n")
	}
	sb.WriteString("</body></html>\n")
	return sb.String()
}

func htmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
