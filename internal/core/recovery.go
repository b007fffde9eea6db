package core

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/25smoking/procfinder/internal/procfs"
	"go.uber.org/zap"
)

// SafeRun runs d and converts a panic into an error.
func SafeRun(ctx context.Context, logger *zap.Logger, d Detector, snap *procfs.Snapshot) (pids []int, err error) {
	defer func() {
		if r := recover(); r != nil {
			stack := string(debug.Stack())
			logger.Error("detector panicked",
				zap.String("check", d.Name()),
				zap.Any("panic", r),
				zap.String("stack", stack),
			)
			pids = nil
			err = fmt.Errorf("check %s panicked: %v", d.Name(), r)
		}
	}()

	return d.Run(ctx, snap)
}
