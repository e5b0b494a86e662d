// internal/session/runner.go
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/valpere/LeadScrapexter/internal/browser"
	"github.com/valpere/LeadScrapexter/internal/config"
	"github.com/valpere/LeadScrapexter/internal/extract"
	"github.com/valpere/LeadScrapexter/internal/monitoring"
	"github.com/valpere/LeadScrapexter/internal/store"
	"github.com/valpere/LeadScrapexter/internal/utils"
	"github.com/valpere/LeadScrapexter/pkg/types"
)

// ErrBusy is returned when an extraction pass for the same target is
// already in flight. The second caller is rejected, not queued.
var ErrBusy = errors.New("extraction already in flight for target")

// ErrThrottled is returned when an automatic re-run is denied by the rate
// limiter.
var ErrThrottled = errors.New("auto run throttled")

// PageSource produces a rendered snapshot of a target. Implemented by
// browser.Snapshotter; tests substitute fakes.
type PageSource interface {
	Snapshot(ctx context.Context, url string) (*browser.Snapshot, error)
}

// Runner orchestrates one extraction pass: snapshot, engines, persistence.
// Passes are bounded by a hard deadline; on expiry the caller gets an empty
// result marked TimedOut instead of an error, and the pass finishes (and
// persists) in the background.
type Runner struct {
	settings config.Settings
	source   PageSource
	store    store.Store
	metrics  *monitoring.Metrics
	logger   utils.Logger

	emails   *extract.EmailEngine
	phones   *extract.PhoneEngine
	socials  *extract.SocialEngine
	profiles *extract.ProfileEngine

	limiter *rate.Limiter

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewRunner wires the engines from settings. store and metrics may be nil
// for persistence-free use.
func NewRunner(settings config.Settings, source PageSource, st store.Store, metrics *monitoring.Metrics, logger utils.Logger) *Runner {
	if logger == nil {
		logger = utils.NewLogger()
	}
	logger = logger.WithField("component", "session")

	emailCfg := extract.DefaultEmailConfig()
	emailCfg.GenerateNames = settings.GenerateNames
	emails := extract.NewEmailEngine(emailCfg, logger)
	phones := extract.NewPhoneEngine(nil, logger)

	limiter := rate.NewLimiter(rate.Inf, 1)
	if interval := settings.Session.AutoRunInterval.ToDuration(); interval > 0 {
		limiter = rate.NewLimiter(rate.Every(interval), 1)
	}

	return &Runner{
		settings: settings,
		source:   source,
		store:    st,
		metrics:  metrics,
		logger:   logger,
		emails:   emails,
		phones:   phones,
		socials:  extract.NewSocialEngine(nil, logger),
		profiles: extract.NewProfileEngine(emails, phones, logger),
		limiter:  limiter,
		inFlight: make(map[string]struct{}),
	}
}

// Run executes one extraction pass against target (a URL or local HTML
// file already wrapped by the source). A concurrent Run for the same
// target returns ErrBusy.
func (r *Runner) Run(ctx context.Context, target string) (types.ExtractionResult, error) {
	if !r.settings.Active {
		return types.ExtractionResult{}, nil
	}

	r.mu.Lock()
	if _, busy := r.inFlight[target]; busy {
		r.mu.Unlock()
		r.recordPass(monitoring.PassBusy, 0)
		return types.ExtractionResult{}, ErrBusy
	}
	r.inFlight[target] = struct{}{}
	r.mu.Unlock()

	start := time.Now()
	done := make(chan passOutcome, 1)
	go func() {
		result, err := r.pass(ctx, target)
		if err == nil {
			r.persist(result)
		}
		done <- passOutcome{result: result, err: err}
		r.mu.Lock()
		delete(r.inFlight, target)
		r.mu.Unlock()
	}()

	deadline := time.NewTimer(r.settings.Session.Timeout.ToDuration())
	defer deadline.Stop()

	select {
	case outcome := <-done:
		elapsed := time.Since(start)
		if outcome.err != nil {
			r.recordPass(monitoring.PassError, elapsed)
			return types.ExtractionResult{}, outcome.err
		}
		r.recordPass(monitoring.PassOK, elapsed)
		if r.metrics != nil {
			r.metrics.RecordLeads(outcome.result)
		}
		r.logger.Infof("extracted %d leads from %s in %s",
			outcome.result.TotalLeads(), target, elapsed)
		return outcome.result, nil
	case <-deadline.C:
		// The pass keeps running and persists whenever it completes; the
		// caller just stops waiting for it.
		r.recordPass(monitoring.PassTimeout, time.Since(start))
		r.logger.Warnf("extraction of %s exceeded %s", target, r.settings.Session.Timeout)
		return types.ExtractionResult{TimedOut: true}, nil
	case <-ctx.Done():
		r.recordPass(monitoring.PassError, time.Since(start))
		return types.ExtractionResult{}, ctx.Err()
	}
}

// RunAuto is Run gated by the auto-run rate limiter. A denied run returns
// ErrThrottled without touching the in-flight state.
func (r *Runner) RunAuto(ctx context.Context, target string) (types.ExtractionResult, error) {
	if !r.limiter.Allow() {
		return types.ExtractionResult{}, ErrThrottled
	}
	return r.Run(ctx, target)
}

type passOutcome struct {
	result types.ExtractionResult
	err    error
}

func (r *Runner) pass(ctx context.Context, target string) (types.ExtractionResult, error) {
	var result types.ExtractionResult

	snapCtx, cancel := context.WithTimeout(ctx, r.settings.Session.BrowserTimeout.ToDuration())
	defer cancel()
	snapStart := time.Now()
	snap, err := r.source.Snapshot(snapCtx, target)
	if err != nil {
		return result, fmt.Errorf("failed to snapshot %s: %w", target, err)
	}
	if r.metrics != nil {
		r.metrics.RecordSnapshot(time.Since(snapStart))
	}

	page, err := extract.NewPageDocument(snap.HTML, snap.FinalURL)
	if err != nil {
		return result, fmt.Errorf("failed to parse %s: %w", target, err)
	}

	if r.settings.ExtractEmails {
		emails := r.emails.Extract(page, r.settings.ValidateEmails)
		result.Emails = emails.Valid
		result.InvalidEmails = emails.Invalid
	}
	if r.settings.ExtractPhones {
		phones := r.phones.Extract(page, r.settings.SelectedCountries)
		result.Phones = phones.Phones
		result.PhonesFiltered = phones.Filtered
	}
	if r.settings.ExtractSocials {
		socials := r.socials.Extract(page)
		result.SocialLinks = socials.Links
		result.ByPlatform = socials.ByPlatform
		result.BestLinks = socials.BestLinks
	}
	if r.settings.ExtractSERP {
		result.SERPLinkedIn = extract.CollectSERPLinkedIn(page)
	}

	if r.settings.ProfileMode {
		r.extractProfile(ctx, page, snap.FinalURL)
	}

	return result, nil
}

// extractProfile runs profile extraction when the landed URL is a profile
// page. Profiles persist independently of the lead result.
func (r *Runner) extractProfile(ctx context.Context, page *extract.PageDocument, pageURL string) {
	record, ok := r.profiles.Extract(page, pageURL, r.settings.SelectedCountries)
	if !ok {
		return
	}
	if r.metrics != nil {
		r.metrics.RecordProfile(record.Platform)
	}
	if r.store == nil {
		return
	}
	if err := r.store.UpsertProfile(ctx, *record); err != nil {
		r.logger.Errorf("failed to save profile %s: %v", record.ProfileURL, err)
	}
}

// persist stores the latest result and, when autosave is on, merges it into
// the saved state.
func (r *Runner) persist(result types.ExtractionResult) {
	if r.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := r.store.SetResults(ctx, result); err != nil {
		r.logger.Errorf("failed to store results: %v", err)
	}
	if !r.settings.Autosave {
		return
	}

	start := time.Now()
	if _, err := r.store.AppendResults(ctx, result); err != nil {
		r.logger.Errorf("failed to autosave results: %v", err)
		return
	}
	if r.metrics != nil {
		r.metrics.RecordMerge(time.Since(start))
	}
}

func (r *Runner) recordPass(status string, elapsed time.Duration) {
	if r.metrics != nil {
		r.metrics.RecordPass(status, elapsed)
	}
}
