package core

import (
	"context"
	"errors"
	"time"

	"github.com/25smoking/procfinder/internal/procfs"
)

// ErrUnsupported is returned by a detector whose kernel input does not exist
// on this host. It is reported as StatusUnsupported, never as a clean result.
var ErrUnsupported = errors.New("check unsupported on this host")

// Status is the final state of one check.
type Status string

const (
	StatusClear       Status = "clear"
	StatusFlagged     Status = "flagged"
	StatusUnsupported Status = "unsupported"
	StatusError       Status = "error"
)

// Narrative holds the fixed strings a presentation layer prints for a check.
type Narrative struct {
	Label string
	Pass  string
	Fail  string
}

// Detector is implemented by every check.
//
// Run returns the suspect PIDs in ascending order. Per-process read failures
// are skipped inside Run; a returned error describes the whole check.
type Detector interface {
	Name() string
	Narrative() Narrative
	Run(ctx context.Context, snap *procfs.Snapshot) ([]int, error)
}

// Result is the outcome of one check.
type Result struct {
	Check    string            `json:"check"`
	Label    string            `json:"label"`
	Status   Status            `json:"status"`
	PIDs     []int             `json:"pids"`
	Pass     string            `json:"pass"`
	Fail     string            `json:"fail"`
	Reason   string            `json:"reason,omitempty"`
	Binaries []string          `json:"binaries,omitempty"`
	Owners   map[string]string `json:"owners,omitempty"`
	Duration time.Duration     `json:"duration_ns"`
}

// Summary returns the narrative matching the status.
func (r Result) Summary() string {
	switch r.Status {
	case StatusClear:
		return r.Pass
	case StatusFlagged:
		return r.Fail
	default:
		return r.Reason
	}
}

// newResult turns the outcome of one detector run into a Result.
func newResult(d Detector, pids []int, err error) Result {
	n := d.Narrative()
	res := Result{
		Check: d.Name(),
		Label: n.Label,
		Pass:  n.Pass,
		Fail:  n.Fail,
		PIDs:  []int{},
	}

	switch {
	case errors.Is(err, ErrUnsupported):
		res.Status = StatusUnsupported
		res.Reason = err.Error()
	case err != nil:
		res.Status = StatusError
		res.Reason = err.Error()
	case len(pids) == 0:
		res.Status = StatusClear
	default:
		res.Status = StatusFlagged
		res.PIDs = pids
	}
	return res
}
