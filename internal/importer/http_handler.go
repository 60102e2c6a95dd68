package importer

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"gameapi/internal/httpx"

	"golang.org/x/sync/semaphore"
)

// importService is what the handler needs from the orchestrator.
type importService interface {
	RunBulk(ctx context.Context, opts Options, onProgress ProgressFunc) (Progress, error)
	RunIncremental(ctx context.Context, opts Options, onProgress ProgressFunc) (Progress, error)
	LatestRun(ctx context.Context) (Run, error)
}

// HTTPHandler exposes the run control surface. Import starts are
// fire-and-forget: the response is written before the run finishes, so
// failures are only observable via the status endpoint or logs.
type HTTPHandler struct {
	svc importService
	// Single-slot executor. The run ledger guard is the real lock; this
	// only keeps one goroutine per process from piling up.
	slot *semaphore.Weighted
}

func NewHTTPHandler(svc importService) *HTTPHandler {
	return &HTTPHandler{svc: svc, slot: semaphore.NewWeighted(1)}
}

// StartBulk handles POST /import/bulk
func (h *HTTPHandler) StartBulk(w http.ResponseWriter, r *http.Request) {
	var opts Options
	var resumeOffset any

	if v := r.URL.Query().Get("resume"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid resume offset", nil)
			return
		}
		opts.ResumeFromOffset = n
		resumeOffset = n
	}

	h.dispatch(TypeBulk, opts)

	httpx.JSONSuccess(w, r, map[string]any{
		"message":       "Bulk import started",
		"resume_offset": resumeOffset,
	}, nil)
}

// StartIncremental handles POST /import/incremental
func (h *HTTPHandler) StartIncremental(w http.ResponseWriter, r *http.Request) {
	h.dispatch(TypeIncremental, Options{})

	httpx.JSONSuccess(w, r, map[string]any{
		"message": "Incremental import started",
	}, nil)
}

// Status handles GET /import/status
func (h *HTTPHandler) Status(w http.ResponseWriter, r *http.Request) {
	run, err := h.svc.LatestRun(r.Context())
	if err != nil {
		if errors.Is(err, ErrNoRuns) {
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "No imports have been run yet", nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, run, nil)
}

func (h *HTTPHandler) dispatch(mode string, opts Options) {
	go func() {
		if !h.slot.TryAcquire(1) {
			log.Printf("[import] %s import not dispatched: executor busy", mode)
			return
		}
		defer h.slot.Release(1)

		// Detached from the request; the triggering request has already
		// been answered.
		ctx := context.Background()

		var err error
		if mode == TypeIncremental {
			_, err = h.svc.RunIncremental(ctx, opts, nil)
		} else {
			_, err = h.svc.RunBulk(ctx, opts, nil)
		}
		if err != nil {
			log.Printf("[import] %s import error: %v", mode, err)
		}
	}()
}
