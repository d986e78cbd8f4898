package printing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/zantech/instantorder/internal/domain/printing"
	"github.com/zantech/instantorder/internal/domain/shared"
	"go.uber.org/zap"
)

const (
	defaultChromeTimeout  = 30 * time.Second
	defaultDeviceScale    = 2.0
	defaultViewportWidth  = 800
	defaultViewportHeight = 600

	// DocumentSelector is the element captured from the rendered page
	DocumentSelector = "#invoice-content"
)

// ChromedpConfig contains configuration for the chromedp rasterizer
type ChromedpConfig struct {
	// ExecPath of the Chrome binary, empty uses the chromedp lookup
	ExecPath string
	// RemoteURL of a running Chrome DevTools endpoint (optional)
	// If set, no local browser is launched
	RemoteURL string
	// Timeout for a single capture
	Timeout time.Duration
	// DeviceScale is the device pixel ratio of the capture (default: 2)
	DeviceScale float64
	// ViewportWidth in CSS pixels (default: 800)
	ViewportWidth int
	// NoSandbox runs Chrome without sandbox (required for Docker/root)
	NoSandbox bool
	Logger    *zap.Logger
}

// ChromedpRasterizer captures HTML documents as PNG bitmaps using the Chrome
// DevTools Protocol
type ChromedpRasterizer struct {
	config      *ChromedpConfig
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromedpRasterizer creates a rasterizer. The browser is started lazily
// on the first capture.
func NewChromedpRasterizer(config *ChromedpConfig) *ChromedpRasterizer {
	if config == nil {
		config = &ChromedpConfig{}
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultChromeTimeout
	}
	if config.DeviceScale <= 0 {
		config.DeviceScale = defaultDeviceScale
	}
	if config.ViewportWidth <= 0 {
		config.ViewportWidth = defaultViewportWidth
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &ChromedpRasterizer{
		config: config,
		logger: logger,
	}
	r.initAllocator()
	return r
}

// initAllocator initializes the Chrome allocator
func (r *ChromedpRasterizer) initAllocator() {
	if r.config.RemoteURL != "" {
		r.allocCtx, r.allocCancel = chromedp.NewRemoteAllocator(context.Background(), r.config.RemoteURL)
		return
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if r.config.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if r.config.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(r.config.ExecPath))
	}
	r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
}

// Rasterize loads html into a fresh tab and screenshots the invoice element
// at the configured device scale.
func (r *ChromedpRasterizer) Rasterize(ctx context.Context, html string) (printing.Bitmap, error) {
	if strings.TrimSpace(html) == "" {
		return printing.Bitmap{}, shared.NewRenderingFailure("document is empty", nil)
	}

	startTime := time.Now()

	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	tabCtx, tabCancel := chromedp.NewContext(r.allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			r.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer tabCancel()

	// stop the tab when the caller's deadline passes
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	var png []byte
	err := chromedp.Run(tabCtx,
		chromedp.EmulateViewport(int64(r.config.ViewportWidth), defaultViewportHeight,
			chromedp.EmulateScale(r.config.DeviceScale)),
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady(DocumentSelector, chromedp.ByQuery),
		chromedp.Screenshot(DocumentSelector, &png, chromedp.ByQuery),
	)
	if err != nil {
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			return printing.Bitmap{}, shared.NewRenderingFailure(
				fmt.Sprintf("rendering timed out after %v", r.config.Timeout), err)
		case errors.Is(ctx.Err(), context.Canceled):
			return printing.Bitmap{}, shared.NewRenderingFailure("rendering was cancelled", err)
		}
		r.logger.Error("chromedp capture failed", zap.Error(err))
		return printing.Bitmap{}, shared.NewRenderingFailure("browser capture failed", err)
	}

	bitmap, err := DecodeBitmap(png)
	if err != nil {
		return printing.Bitmap{}, err
	}

	r.logger.Info("Document rasterized",
		zap.Int("width", bitmap.Width),
		zap.Int("height", bitmap.Height),
		zap.Int("bytes", len(bitmap.Data)),
		zap.Duration("duration", time.Since(startTime)))

	return bitmap, nil
}

// DecodeBitmap reads the dimensions of an encoded raster image
func DecodeBitmap(data []byte) (printing.Bitmap, error) {
	if len(data) == 0 {
		return printing.Bitmap{}, shared.NewRenderingFailure("capture is empty", nil)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return printing.Bitmap{}, shared.NewRenderingFailure("capture is not a decodable image", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return printing.Bitmap{}, shared.NewRenderingFailure("capture has no area", nil)
	}
	return printing.Bitmap{
		Data:   data,
		MIME:   "image/" + format,
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}

// Close shuts the browser down
func (r *ChromedpRasterizer) Close() error {
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}

var _ Rasterizer = (*ChromedpRasterizer)(nil)
