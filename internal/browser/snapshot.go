// internal/browser/snapshot.go
package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/valpere/LeadScrapexter/internal/utils"
)

// Snapshot is a fully rendered page: the serialized DOM after scripts ran
// and the URL the browser ended up on after redirects.
type Snapshot struct {
	HTML     string
	FinalURL string
}

// Config controls the headless browser.
type Config struct {
	Headless      bool          `yaml:"headless" json:"headless"`
	UserAgent     string        `yaml:"user_agent" json:"user_agent"`
	Timeout       time.Duration `yaml:"timeout" json:"timeout"`
	WaitDelay     time.Duration `yaml:"wait_delay" json:"wait_delay"`
	DisableImages bool          `yaml:"disable_images" json:"disable_images"`
}

// DefaultConfig returns browser defaults suitable for lead extraction:
// headless, no images, 30s navigation budget.
func DefaultConfig() Config {
	return Config{
		Headless:      true,
		Timeout:       30 * time.Second,
		WaitDelay:     500 * time.Millisecond,
		DisableImages: true,
	}
}

// Snapshotter renders pages through headless Chrome. A single allocator is
// shared across snapshots; each Snapshot gets its own tab.
type Snapshotter struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	config      Config
	logger      utils.Logger
}

// NewSnapshotter starts the browser allocator.
func NewSnapshotter(config Config, logger utils.Logger) *Snapshotter {
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	if logger == nil {
		logger = utils.NewLogger()
	}

	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.DisableGPU,
		chromedp.NoSandbox, // Required for Docker environments
	}
	if config.Headless {
		opts = append(opts, chromedp.Headless)
	}
	if config.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(config.UserAgent))
	}
	if config.DisableImages {
		opts = append(opts, chromedp.Flag("blink-settings", "imagesEnabled=false"))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	return &Snapshotter{
		allocCtx:    allocCtx,
		allocCancel: cancel,
		config:      config,
		logger:      logger.WithField("component", "browser"),
	}
}

// Snapshot navigates to url and returns the rendered page. The navigation
// budget is the smaller of ctx's deadline and the configured timeout.
func (s *Snapshotter) Snapshot(ctx context.Context, url string) (*Snapshot, error) {
	if url == "" {
		return nil, fmt.Errorf("snapshot URL cannot be empty")
	}

	tabCtx, cancelTab := chromedp.NewContext(s.allocCtx)
	defer cancelTab()
	runCtx, cancelTimeout := context.WithTimeout(tabCtx, s.config.Timeout)
	defer cancelTimeout()

	// Honor the caller's cancellation as well.
	go func() {
		select {
		case <-ctx.Done():
			cancelTimeout()
		case <-runCtx.Done():
		}
	}()

	tasks := []chromedp.Action{
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
	}
	if s.config.WaitDelay > 0 {
		tasks = append(tasks, chromedp.Sleep(s.config.WaitDelay))
	}

	var html, finalURL string
	tasks = append(tasks,
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &html),
	)

	start := time.Now()
	if err := chromedp.Run(runCtx, tasks...); err != nil {
		return nil, fmt.Errorf("snapshot of %s failed: %w", url, err)
	}
	s.logger.Debugf("snapshotted %s (%d bytes) in %s", finalURL, len(html), time.Since(start))

	return &Snapshot{HTML: html, FinalURL: finalURL}, nil
}

// Close shuts down the browser.
func (s *Snapshotter) Close() error {
	if s.allocCancel != nil {
		s.allocCancel()
	}
	return nil
}

// SnapshotFile loads an HTML file from disk as a snapshot, for offline or
// pre-captured pages. FinalURL is the file URL.
func SnapshotFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read HTML file: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return &Snapshot{
		HTML:     string(data),
		FinalURL: "file://" + abs,
	}, nil
}
