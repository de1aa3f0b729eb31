package controllers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/hrsync/modules/hris/domain"
	"github.com/iota-uz/hrsync/modules/hris/services"
	"github.com/iota-uz/hrsync/pkg/httpapi"
	"github.com/iota-uz/hrsync/pkg/middleware"
)

// Runner starts a pipeline run whose events are streamed back to the caller.
type Runner interface {
	Start(ctx context.Context, req services.RunRequest) *services.Run
}

type SyncControllerOptions struct {
	Runner   Runner
	Location *time.Location
	// RateLimit guards the sync routes only; nil disables it.
	RateLimit mux.MiddlewareFunc
	Clock     func() time.Time
	Logger    *logrus.Logger
}

type SyncController struct {
	basePath string
	opts     SyncControllerOptions
	running  atomic.Bool
}

func NewSyncController(opts SyncControllerOptions) *SyncController {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &SyncController{basePath: "/hris/sync", opts: opts}
}

func (c *SyncController) Key() string {
	return c.basePath
}

func (c *SyncController) Register(r *mux.Router) {
	sub := r.PathPrefix(c.basePath).Subrouter()
	if c.opts.RateLimit != nil {
		sub.Use(c.opts.RateLimit)
	}
	sub.HandleFunc("/{schema}", instrument("sync", c.Sync)).Methods(http.MethodGet, http.MethodPost)
}

// Sync streams a run's progress as server-sent events until the run ends or
// the client goes away, which cancels the run.
func (c *SyncController) Sync(w http.ResponseWriter, r *http.Request) {
	log := middleware.Logger(r.Context(), c.opts.Logger)

	kind, err := services.ParseKind(mux.Vars(r)["schema"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "UNKNOWN_EXPORT", err.Error(), nil)
		return
	}
	req := services.RunRequest{Kind: kind}
	if kind == services.KindAttendance {
		window, err := c.window(r)
		if err != nil {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_WINDOW", err.Error(), nil)
			return
		}
		req.Window = window
	}
	if v := r.URL.Query().Get("upload"); v != "" {
		upload, err := strconv.ParseBool(v)
		if err != nil {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_PARAM", fmt.Sprintf("upload: %v", err), nil)
			return
		}
		req.NoUpload = !upload
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "STREAMING_UNSUPPORTED", "response writer cannot stream", nil)
		return
	}
	if !c.running.CompareAndSwap(false, true) {
		_ = httpapi.WriteError(w, http.StatusConflict, "SYNC_IN_PROGRESS", "a sync run is already in progress", nil)
		return
	}
	defer c.running.Store(false)

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	run := c.opts.Runner.Start(r.Context(), req)
	log = log.WithFields(logrus.Fields{"run_id": run.ID, "export": kind})
	log.Info("sync run started")
	for e := range run.Events {
		if _, err := fmt.Fprint(w, e.SSE()); err != nil {
			log.WithError(err).Warn("client stopped reading the event stream")
			continue
		}
		flusher.Flush()
	}
	if _, err := run.Wait(); err != nil {
		log.WithError(err).Error("sync run failed")
		return
	}
	log.Info("sync run finished")
}

// window reads from/to (YYYY-MM-DD); both default to yesterday in the export timezone.
func (c *SyncController) window(r *http.Request) (domain.DateRange, error) {
	q := r.URL.Query()
	return domain.ParseDateRange(q.Get("from"), q.Get("to"), c.opts.Clock(), c.opts.Location)
}
