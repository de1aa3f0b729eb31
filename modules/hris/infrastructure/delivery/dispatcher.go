// Package delivery writes export files locally and transmits them to remote destinations.
package delivery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	gerrors "github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/hrsync/modules/hris/domain"
	"github.com/iota-uz/hrsync/modules/hris/infrastructure/template"
	"github.com/iota-uz/hrsync/pkg/logging"
)

// Remote identifies a transmitted file on the destination side.
type Remote struct {
	Path string
	ID   string
}

// Destination transmits one local file. Implementations open their
// connection inside Send and close it before returning.
type Destination interface {
	Name() string
	Send(ctx context.Context, localPath, remoteName string) (Remote, error)
}

// Checker is implemented by destinations that can verify their credentials without uploading.
type Checker interface {
	Check(ctx context.Context) error
}

type Dispatcher struct {
	outputDir    string
	destinations map[string]Destination
	log          *logrus.Entry
}

func NewDispatcher(outputDir string, destinations []Destination, log *logrus.Entry) *Dispatcher {
	if log == nil {
		log = logging.Nop()
	}
	byName := make(map[string]Destination, len(destinations))
	for _, d := range destinations {
		byName[d.Name()] = d
	}
	return &Dispatcher{
		outputDir:    outputDir,
		destinations: byName,
		log:          log.WithField("component", "delivery"),
	}
}

// Names lists the registered destinations in sorted order.
func (d *Dispatcher) Names() []string {
	out := make([]string, 0, len(d.destinations))
	for name := range d.destinations {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Deliver writes the table to the output directory and sends it to every
// destination of the artifact in turn. The local file is kept whatever the
// transmissions do; only a failed local write is returned as an error.
func (d *Dispatcher) Deliver(ctx context.Context, table *domain.Table, artifact domain.Artifact) (domain.DeliveryResult, error) {
	name := artifact.FileName()
	local, err := d.WriteLocal(table, name)
	if err != nil {
		return domain.DeliveryResult{}, err
	}
	result := domain.DeliveryResult{LocalPath: local}

	for _, destName := range artifact.Destinations {
		outcome := domain.DeliveryOutcome{Destination: destName}
		dest, ok := d.destinations[destName]
		if !ok {
			outcome.Err = &domain.DeliveryError{Destination: destName, Err: fmt.Errorf("destination is not configured")}
			result.Outcomes = append(result.Outcomes, outcome)
			continue
		}

		log := d.log.WithFields(logrus.Fields{"destination": destName, "file": name})
		remote, err := dest.Send(ctx, local, name)
		if err != nil {
			log.WithError(err).Error("upload failed")
			outcome.Err = &domain.DeliveryError{Destination: destName, Err: err}
		} else {
			log.WithFields(logrus.Fields{"remote_path": remote.Path, "remote_id": remote.ID}).Info("file uploaded")
			outcome.RemotePath, outcome.RemoteID = remote.Path, remote.ID
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}
	return result, nil
}

// WriteLocal writes table as CSV to <outputDir>/<name> and returns the path.
// The file appears atomically.
func (d *Dispatcher) WriteLocal(table *domain.Table, name string) (string, error) {
	if err := os.MkdirAll(d.outputDir, 0o755); err != nil {
		return "", gerrors.Wrap(err, "create output directory")
	}
	path := filepath.Join(d.outputDir, name)
	tmp, err := os.CreateTemp(d.outputDir, "."+name+".*")
	if err != nil {
		return "", gerrors.Wrap(err, "create temp file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := template.WriteCSV(tmp, table); err != nil {
		_ = tmp.Close()
		return "", gerrors.Wrapf(err, "write %s", name)
	}
	if err := tmp.Close(); err != nil {
		return "", gerrors.Wrapf(err, "close %s", name)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", gerrors.Wrapf(err, "rename %s", name)
	}
	d.log.WithFields(logrus.Fields{"path": path, "rows": len(table.Rows)}).Info("export saved")
	return path, nil
}

// Check verifies every destination that supports it.
func (d *Dispatcher) Check(ctx context.Context) error {
	for _, name := range d.Names() {
		c, ok := d.destinations[name].(Checker)
		if !ok {
			continue
		}
		if err := c.Check(ctx); err != nil {
			return &domain.DeliveryError{Destination: name, Err: err}
		}
	}
	return nil
}
