package plugins

import (
	"context"

	"github.com/25smoking/procfinder/internal/procfs"
	"go.uber.org/zap"
)

// probe inspects one process. A returned error means the process is skipped.
type probe func(pid int) (bool, error)

// eachProcess runs fn over the snapshot and collects the PIDs it flags.
// Per-process errors never fail the check: the process most likely exited
// after the snapshot was taken.
func eachProcess(ctx context.Context, logger *zap.Logger, check string, snap *procfs.Snapshot, fn probe) ([]int, error) {
	var flagged []int
	for _, pid := range snap.PIDs() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		hit, err := fn(pid)
		if err != nil {
			logger.Debug("skipping process",
				zap.String("check", check),
				zap.Int("pid", pid),
				zap.String("reason", string(procfs.Classify(err))),
				zap.Error(err),
			)
			continue
		}
		if hit {
			flagged = append(flagged, pid)
		}
	}
	return flagged, nil
}

func nopIfNil(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
