package procfs

import (
	"errors"
	"io/fs"
	"syscall"
)

// Reason classifies why a per-process read was skipped.
type Reason string

const (
	// ReasonGone: the process (or the file inside it) no longer exists.
	ReasonGone       Reason = "gone"
	ReasonDenied     Reason = "denied"
	ReasonUnreadable Reason = "unreadable"
)

// Classify maps a per-process read error to a skip reason. A process that
// exits mid-read can also surface as ESRCH.
func Classify(err error) Reason {
	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, syscall.ESRCH):
		return ReasonGone
	case errors.Is(err, fs.ErrPermission):
		return ReasonDenied
	default:
		return ReasonUnreadable
	}
}
