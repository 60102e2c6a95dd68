package importer

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"
)

const (
	// Upstream caps results per request at 500.
	maxBatchSize = 500

	defaultBatchSize    = 500
	defaultRequestDelay = 260 * time.Millisecond
	defaultStaleAfter   = 15 * time.Minute
)

// IGDB platform IDs for subscription-relevant platforms:
// PC, PS4, XONE, Switch, PS5, Series X|S.
var platformIDs = []int{6, 48, 49, 130, 167, 169}

var importFields = strings.Join([]string{
	"fields name, slug, summary, first_release_date, url, updated_at, category,",
	"  cover.image_id,",
	"  platforms.name, platforms.abbreviation,",
	"  genres.name,",
	"  involved_companies.company.name, involved_companies.developer, involved_companies.publisher,",
	"  aggregated_rating, aggregated_rating_count;",
}, "\n")

// IGDB omits category=0 (main_game) from responses and filtering on it
// returns no results. Platforms + cover approximate "relevant release".
func baseFilter() string {
	ids := make([]string, len(platformIDs))
	for i, id := range platformIDs {
		ids[i] = strconv.Itoa(id)
	}
	return fmt.Sprintf("where platforms = (%s) & cover != null", strings.Join(ids, ","))
}

// Config holds the process-level import knobs.
type Config struct {
	// BatchSize is results per upstream request, clamped to 500.
	BatchSize int
	// RequestDelay is slept between pages. Zero means no delay.
	RequestDelay time.Duration
	// StaleAfter is how long a running row may go without a progress
	// heartbeat before the entry guard treats it as abandoned. Zero
	// disables staleness detection.
	StaleAfter time.Duration
}

// DefaultConfig returns the stock import configuration.
func DefaultConfig() Config {
	return Config{
		BatchSize:    defaultBatchSize,
		RequestDelay: defaultRequestDelay,
		StaleAfter:   defaultStaleAfter,
	}
}

// Options are per-invocation parameters.
type Options struct {
	// ResumeFromOffset seeds the first page offset of a bulk run, typically
	// the last_offset recorded on a failed run.
	ResumeFromOffset int
}

// Service drives the fetch, map, upsert loop and maintains the run ledger.
// The loop is sequential: one page in flight at a time.
type Service struct {
	catalog CatalogClient
	games   GameStore
	runs    RunRepository
	cfg     Config
}

func NewService(catalog CatalogClient, games GameStore, runs RunRepository, cfg Config) *Service {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.BatchSize > maxBatchSize {
		cfg.BatchSize = maxBatchSize
	}
	return &Service{catalog: catalog, games: games, runs: runs, cfg: cfg}
}

// RunBulk scans the full filtered catalog from the given offset.
func (s *Service) RunBulk(ctx context.Context, opts Options, onProgress ProgressFunc) (Progress, error) {
	if err := s.guardNoRunning(ctx); err != nil {
		return Progress{}, err
	}

	filter := baseFilter()
	run := &Run{
		Type:        TypeBulk,
		Status:      StatusRunning,
		FilterQuery: filter,
		LastOffset:  opts.ResumeFromOffset,
	}
	if err := s.runs.CreateRun(ctx, run); err != nil {
		return Progress{}, fmt.Errorf("create import run: %w", err)
	}

	return s.runLoop(ctx, run, filter, "id asc", opts.ResumeFromOffset, onProgress)
}

// RunIncremental scans only records modified upstream after the newest local
// modification timestamp. With no local rows to diff against it falls back to
// a bulk run.
func (s *Service) RunIncremental(ctx context.Context, opts Options, onProgress ProgressFunc) (Progress, error) {
	cutoff, ok, err := s.games.MaxIGDBUpdatedAt(ctx)
	if err != nil {
		return Progress{}, fmt.Errorf("resolve incremental cutoff: %w", err)
	}
	if !ok {
		log.Printf("[import] no existing games found, falling back to bulk import")
		return s.RunBulk(ctx, opts, onProgress)
	}

	if err := s.guardNoRunning(ctx); err != nil {
		return Progress{}, err
	}

	filter := fmt.Sprintf("%s & updated_at > %d", baseFilter(), cutoff)
	run := &Run{
		Type:        TypeIncremental,
		Status:      StatusRunning,
		FilterQuery: filter,
	}
	if err := s.runs.CreateRun(ctx, run); err != nil {
		return Progress{}, fmt.Errorf("create import run: %w", err)
	}

	// Sorting by updated_at keeps the cutoff advancing even when a run is
	// interrupted mid-scan; incremental offsets always restart at zero.
	return s.runLoop(ctx, run, filter, "updated_at asc", 0, onProgress)
}

// LatestRun returns the most recently started run row verbatim.
func (s *Service) LatestRun(ctx context.Context) (Run, error) {
	return s.runs.LatestRun(ctx)
}

func (s *Service) guardNoRunning(ctx context.Context) error {
	running, err := s.runs.FindRunning(ctx)
	if err != nil {
		return fmt.Errorf("check running imports: %w", err)
	}
	if running == nil {
		return nil
	}

	if s.cfg.StaleAfter > 0 && time.Since(running.UpdatedAt) > s.cfg.StaleAfter {
		running.Status = StatusFailed
		running.ErrorMessage = fmt.Sprintf("abandoned: no progress heartbeat for more than %s", s.cfg.StaleAfter)
		if err := s.runs.FinalizeRun(ctx, running); err != nil {
			return fmt.Errorf("reap stale run %d: %w", running.ID, err)
		}
		log.Printf("[import] marked stale run %d as failed", running.ID)
		return nil
	}

	return &ConflictError{RunID: running.ID, StartedAt: running.StartedAt}
}

func buildQuery(filter, sort string, limit, offset int) string {
	return strings.Join([]string{
		importFields,
		filter + ";",
		"sort " + sort + ";",
		fmt.Sprintf("limit %d;", limit),
		fmt.Sprintf("offset %d;", offset),
	}, "\n")
}

func (s *Service) runLoop(ctx context.Context, run *Run, filter, sort string, startOffset int, onProgress ProgressFunc) (Progress, error) {
	progress := Progress{RunID: run.ID, CurrentOffset: startOffset}
	offset := startOffset

	for {
		page, err := s.catalog.QueryGames(ctx, buildQuery(filter, sort, s.cfg.BatchSize, offset))
		if err != nil {
			return progress, s.fail(ctx, run, &progress, err)
		}
		progress.Fetched += len(page)

		if len(page) > 0 {
			rows, skipped := mapPage(page)
			res, err := s.games.UpsertBatch(ctx, rows)
			if err != nil {
				return progress, s.fail(ctx, run, &progress, err)
			}
			progress.Inserted += res.Inserted
			progress.Updated += res.Updated
			progress.Skipped += skipped
		}

		offset += s.cfg.BatchSize
		progress.CurrentOffset = offset

		syncCounters(run, &progress)
		run.LastOffset = offset
		if err := s.runs.UpdateProgress(ctx, run); err != nil {
			return progress, s.fail(ctx, run, &progress, err)
		}

		if onProgress != nil {
			onProgress(progress)
		}

		// A short page is the canonical end-of-data signal.
		if len(page) < s.cfg.BatchSize {
			break
		}

		if s.cfg.RequestDelay > 0 {
			select {
			case <-time.After(s.cfg.RequestDelay):
			case <-ctx.Done():
				return progress, s.fail(ctx, run, &progress, ctx.Err())
			}
		}
	}

	run.Status = StatusCompleted
	now := time.Now()
	run.CompletedAt = &now
	syncCounters(run, &progress)
	if err := s.runs.FinalizeRun(ctx, run); err != nil {
		return progress, fmt.Errorf("finalize import run %d: %w", run.ID, err)
	}

	log.Printf("[import] %s import completed: %d fetched, %d inserted, %d updated, %d skipped",
		run.Type, progress.Fetched, progress.Inserted, progress.Updated, progress.Skipped)

	return progress, nil
}

// fail finalizes the run as failed and returns the original cause. A failure
// to write the failure record itself is only logged.
func (s *Service) fail(ctx context.Context, run *Run, progress *Progress, cause error) error {
	run.Status = StatusFailed
	run.ErrorMessage = cause.Error()
	syncCounters(run, progress)
	if err := s.runs.FinalizeRun(ctx, run); err != nil {
		log.Printf("[import] failed to record failure of run %d: %v", run.ID, err)
	}
	log.Printf("[import] %s import failed at offset %d: %v", run.Type, progress.CurrentOffset, cause)
	return cause
}

func syncCounters(run *Run, progress *Progress) {
	run.TotalFetched = progress.Fetched
	run.TotalInserted = progress.Inserted
	run.TotalUpdated = progress.Updated
	run.TotalSkipped = progress.Skipped
}
