package domain

import "time"

// DeliveryOutcome is the result of sending one file to one destination.
type DeliveryOutcome struct {
	Destination string
	RemotePath  string
	RemoteID    string
	Err         error
}

func (o DeliveryOutcome) OK() bool { return o.Err == nil }

type DeliveryResult struct {
	LocalPath string
	Outcomes  []DeliveryOutcome
}

func (r DeliveryResult) Failed() []DeliveryOutcome {
	var failed []DeliveryOutcome
	for _, o := range r.Outcomes {
		if !o.OK() {
			failed = append(failed, o)
		}
	}
	return failed
}

// PartialFailure reports whether the local file exists but at least one upload failed.
func (r DeliveryResult) PartialFailure() bool {
	return r.LocalPath != "" && len(r.Failed()) > 0
}

// Artifact names one export file and where it goes.
// The file is named <Prefix><At as 20060102_150405>.csv.
type Artifact struct {
	Prefix       string
	At           time.Time
	Destinations []string
}

const TimestampLayout = "20060102_150405"

func (a Artifact) FileName() string {
	return a.Prefix + a.At.Format(TimestampLayout) + ".csv"
}
