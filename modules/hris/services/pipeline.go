package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/hrsync/modules/hris/domain"
	"github.com/iota-uz/hrsync/pkg/logging"
)

type EmployeeSource interface {
	Authenticate(ctx context.Context) error
	FetchEmployees(ctx context.Context, pageSize int, onPage func(page, totalPages int)) ([]domain.Employee, error)
}

type AttendanceSource interface {
	EmployeeSource
	FetchAttendance(
		ctx context.Context,
		employees []domain.Employee,
		window domain.DateRange,
		onProgress func(done, total int),
	) ([]domain.AttendanceRecord, []domain.FetchDiagnostic, error)
}

type TemplateLoader interface {
	Load(path string) (*domain.Table, error)
}

// Deliverer persists a table locally and transmits it. Deliver fails only
// when the local file cannot be written; transmission failures are outcomes.
type Deliverer interface {
	Deliver(ctx context.Context, table *domain.Table, artifact domain.Artifact) (domain.DeliveryResult, error)
	WriteLocal(table *domain.Table, name string) (string, error)
}

type PipelineOptions struct {
	Employees  EmployeeSource
	Attendance AttendanceSource
	Templates  TemplateLoader
	Delivery   Deliverer

	Settings      ExportSettings
	PageSize      int
	TemplatePaths map[Kind]string
	Destinations  map[Kind][]string
	Placement     Placement

	Clock  func() time.Time
	Logger *logrus.Entry
}

// Pipeline runs one export end to end: authenticate, fetch, resolve,
// transform, merge and deliver.
type Pipeline struct {
	opts  PipelineOptions
	clock func() time.Time
	log   *logrus.Entry
}

func NewPipeline(opts PipelineOptions) *Pipeline {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	return &Pipeline{opts: opts, clock: clock, log: log.WithField("component", "pipeline")}
}

type RunRequest struct {
	ID       string
	Kind     Kind
	Window   domain.DateRange
	NoUpload bool
}

type RunResult struct {
	ID       string
	Kind     Kind
	Fetched  int
	Exported int
	Skipped  int

	Missing     []domain.MissingEntry
	MissingPath string
	Diagnostics []domain.FetchDiagnostic
	Delivery    domain.DeliveryResult
}

// Run is a pipeline executing in its own goroutine. Events must be drained;
// the channel is closed when the run ends.
type Run struct {
	ID     string
	Events <-chan Event

	done   chan struct{}
	result *RunResult
	err    error
}

func (r *Run) Wait() (*RunResult, error) {
	<-r.done
	return r.result, r.err
}

func (p *Pipeline) Start(ctx context.Context, req RunRequest) *Run {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	events := make(chan Event, 64)
	run := &Run{ID: req.ID, Events: events, done: make(chan struct{})}
	go func() {
		defer close(run.done)
		defer close(events)
		run.result, run.err = p.Execute(ctx, req, NewChanSink(ctx, events))
	}()
	return run
}

// Execute runs the pipeline on the calling goroutine.
func (p *Pipeline) Execute(ctx context.Context, req RunRequest, sinks ...Sink) (*RunResult, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	log := p.log.WithFields(logrus.Fields{"run_id": req.ID, "export": req.Kind})
	rep := NewReporter(append([]Sink{LogSink{Log: log}}, sinks...)...)
	result := &RunResult{ID: req.ID, Kind: req.Kind}

	started := p.clock()
	err := p.execute(ctx, req, rep, result)
	recordRun(req.Kind, err, p.clock().Sub(started))
	if err != nil {
		rep.Emit(StageError, "sync failed: %v", err)
		return result, err
	}
	return result, nil
}

func (p *Pipeline) execute(ctx context.Context, req RunRequest, rep *Reporter, result *RunResult) error {
	switch req.Kind {
	case KindDirectory, KindRoster:
	case KindAttendance:
		if err := req.Window.Validate(); err != nil {
			return err
		}
		if p.opts.Attendance == nil {
			return fmt.Errorf("no attendance client configured")
		}
	default:
		return fmt.Errorf("unknown export %q", req.Kind)
	}
	// The employee listing always goes through the employees key; the
	// attendance key may be scoped to time data only.
	source := p.opts.Employees
	if source == nil {
		return fmt.Errorf("no HR API client configured for %s export", req.Kind)
	}
	if p.opts.Delivery == nil {
		return fmt.Errorf("no delivery dispatcher configured")
	}

	rep.Emit(StageConnecting, "Connecting to HR API...")
	if err := source.Authenticate(ctx); err != nil {
		return err
	}
	rep.Emit(StageAuthenticated, "Authenticated with HR API")

	employees, err := source.FetchEmployees(ctx, p.opts.PageSize, func(page, total int) {
		if page == 1 {
			rep.Emit(StagePage, "total pages %d", total)
		}
		rep.Emit(StagePage, "page %d fetched, total pages %d", page, total)
	})
	if err != nil {
		return err
	}
	result.Fetched = len(employees)
	idx := BuildIndex(employees)

	var (
		rows   []domain.OutputRow
		width  int
		header []string
		prefix string
	)
	if req.Kind == KindAttendance {
		rows, err = p.attendanceRows(ctx, req, idx, rep, result)
		if err != nil {
			return err
		}
		schema := AttendanceSchema(p.opts.Settings.AttendanceColumns)
		width, header = schema.Width(), schema.Header()
		prefix = fmt.Sprintf("att_%s_%s_", req.Window.FromText(), req.Window.ToText())
	} else {
		export := NewEmployeeExport(req.Kind, p.opts.Settings)
		var skipped int
		rows, skipped = export.Rows(idx)
		result.Exported, result.Skipped = len(rows), skipped
		recordRows(req.Kind, "exported", len(rows))
		recordRows(req.Kind, "skipped", skipped)
		rep.Emit(StageFiltering, "Total employee_data %d of %d fetched", len(rows), len(employees))
		width, header = export.Schema.Width(), export.Schema.Header()
		if req.Kind == KindRoster {
			prefix = "Dice_"
		}
	}

	tmpl, err := p.template(req.Kind, header)
	if err != nil {
		return err
	}
	table, err := Merge(tmpl, rows, width, p.opts.Placement)
	if err != nil {
		return err
	}

	artifact := domain.Artifact{Prefix: prefix, At: p.clock()}
	if !req.NoUpload {
		artifact.Destinations = p.opts.Destinations[req.Kind]
	}
	rep.Emit(StageSaving, "Saving %s", artifact.FileName())
	if len(artifact.Destinations) > 0 {
		rep.Emit(StageUploading, "Uploading %s to %s", artifact.FileName(), strings.Join(artifact.Destinations, ", "))
	}
	delivery, err := p.opts.Delivery.Deliver(ctx, table, artifact)
	result.Delivery = delivery
	if err != nil {
		return gerrors.Wrap(err, "save export")
	}
	for _, o := range delivery.Outcomes {
		recordDelivery(o.Destination, o.OK())
		if o.OK() {
			rep.Emit(StageUploading, "File successfully uploaded to %s at %s", o.Destination, o.RemotePath)
		} else {
			rep.Emit(StageUploading, "Upload to %s failed: %v", o.Destination, o.Err)
		}
	}

	if failed := delivery.Failed(); len(failed) > 0 {
		rep.Emit(StageDone, "Saved %s; %d of %d uploads failed, the local file is kept for resend",
			delivery.LocalPath, len(failed), len(delivery.Outcomes))
		return nil
	}
	rep.Emit(StageDone, "Done: %d rows saved to %s", len(rows), delivery.LocalPath)
	return nil
}

func (p *Pipeline) attendanceRows(
	ctx context.Context,
	req RunRequest,
	idx *Index,
	rep *Reporter,
	result *RunResult,
) ([]domain.OutputRow, error) {
	selected := p.opts.Settings.Filter(KindAttendance).Apply(idx.Employees())
	rep.Emit(StageFiltering, "Fetching attendance for %d of %d employees from %s to %s",
		len(selected), idx.Len(), req.Window.FromText(), req.Window.ToText())

	if err := p.opts.Attendance.Authenticate(ctx); err != nil {
		return nil, err
	}
	records, diagnostics, err := p.opts.Attendance.FetchAttendance(ctx, selected, req.Window, func(done, total int) {
		if done == total || done%25 == 0 {
			rep.Emit(StagePage, "attendance fetched for %d of %d employees", done, total)
		}
	})
	if err != nil {
		return nil, err
	}
	result.Diagnostics = diagnostics
	if len(diagnostics) > 0 {
		rep.Emit(StageFiltering, "Attendance skipped for %d employees", len(diagnostics))
	}

	export := NewAttendanceExport(p.opts.Settings)
	rows, missing := export.Transform(records, idx)
	result.Exported, result.Skipped = len(rows), len(records)-len(rows)
	result.Missing = missing
	recordRows(KindAttendance, "exported", len(rows))
	recordRows(KindAttendance, "skipped", result.Skipped)
	recordRows(KindAttendance, "missing", len(missing))
	rep.Emit(StageFiltering, "%d attendance rows, %d missing entries", len(rows), len(missing))

	if len(missing) > 0 {
		name := fmt.Sprintf("missing_%s_%s_%s.csv", req.Window.FromText(), req.Window.ToText(), p.clock().Format(domain.TimestampLayout))
		path, err := p.opts.Delivery.WriteLocal(MissingEntryTable(missing), name)
		if err != nil {
			p.log.WithError(err).Warn("failed to write missing entries file")
		} else {
			result.MissingPath = path
		}
	}
	return rows, nil
}

// template loads the configured template, or starts from the schema header.
func (p *Pipeline) template(kind Kind, header []string) (*domain.Table, error) {
	path := strings.TrimSpace(p.opts.TemplatePaths[kind])
	if path == "" || p.opts.Templates == nil {
		return &domain.Table{Header: header}, nil
	}
	return p.opts.Templates.Load(path)
}
