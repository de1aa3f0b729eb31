package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

type Stage string

const (
	StageConnecting    Stage = "connecting"
	StageAuthenticated Stage = "authenticated"
	StagePage          Stage = "page-progress"
	StageFiltering     Stage = "filtering-summary"
	StageSaving        Stage = "saving"
	StageUploading     Stage = "uploading"
	StageDone          Stage = "done"
	StageError         Stage = "error"
)

// Event is one advisory progress message. Seq is strictly increasing within a run.
type Event struct {
	Seq     int
	Stage   Stage
	Message string
}

// SSE renders the event as a server-sent-events frame.
func (e Event) SSE() string {
	return "data: " + e.Message + "\n\n"
}

func (e Event) Final() bool {
	return e.Stage == StageDone || e.Stage == StageError
}

type Sink interface {
	Emit(Event)
}

type SinkFunc func(Event)

func (f SinkFunc) Emit(e Event) { f(e) }

// ChanSink forwards events to a channel until ctx is done. It never closes the channel.
type ChanSink struct {
	ctx context.Context
	ch  chan<- Event
}

func NewChanSink(ctx context.Context, ch chan<- Event) *ChanSink {
	return &ChanSink{ctx: ctx, ch: ch}
}

func (s *ChanSink) Emit(e Event) {
	select {
	case s.ch <- e:
	case <-s.ctx.Done():
	}
}

// LogSink writes events to a logrus entry.
type LogSink struct {
	Log *logrus.Entry
}

func (s LogSink) Emit(e Event) {
	entry := s.Log.WithFields(logrus.Fields{"stage": e.Stage, "seq": e.Seq})
	if e.Stage == StageError {
		entry.Error(e.Message)
		return
	}
	entry.Info(e.Message)
}

// Reporter numbers events and fans them out in order.
type Reporter struct {
	sinks []Sink
	seq   int
}

func NewReporter(sinks ...Sink) *Reporter {
	out := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return &Reporter{sinks: out}
}

func (r *Reporter) Emit(stage Stage, format string, args ...any) {
	r.seq++
	e := Event{Seq: r.seq, Stage: stage, Message: fmt.Sprintf(format, args...)}
	for _, s := range r.sinks {
		s.Emit(e)
	}
}
