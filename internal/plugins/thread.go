package plugins

import (
	"context"

	"github.com/25smoking/procfinder/internal/core"
	"github.com/25smoking/procfinder/internal/procfs"
	"go.uber.org/zap"
)

// ThreadPlugin flags processes whose lowest and highest thread IDs are more
// than MaxSpread apart, a sign of threads injected long after start.
//
// Long-lived thread pools trip this too. Treat hits as leads and re-run the
// scan before acting on them.
type ThreadPlugin struct {
	FS        procfs.FS
	MaxSpread int
	Logger    *zap.Logger
}

func (p *ThreadPlugin) Name() string {
	return "thread"
}

func (p *ThreadPlugin) Narrative() core.Narrative {
	return core.Narrative{
		Label: "Thread Check",
		Pass:  "No Suspicious Threads Found",
		Fail:  "Found Suspicious Threads",
	}
}

func (p *ThreadPlugin) Run(ctx context.Context, snap *procfs.Snapshot) ([]int, error) {
	return eachProcess(ctx, nopIfNil(p.Logger), p.Name(), snap, func(pid int) (bool, error) {
		tids, err := p.FS.ThreadIDs(pid)
		if err != nil {
			return false, err
		}
		return ThreadSpread(tids) > p.MaxSpread, nil
	})
}

// ThreadSpread returns max-min over tids, 0 for fewer than two.
func ThreadSpread(tids []int) int {
	if len(tids) < 2 {
		return 0
	}
	lo, hi := tids[0], tids[0]
	for _, tid := range tids[1:] {
		if tid < lo {
			lo = tid
		}
		if tid > hi {
			hi = tid
		}
	}
	return hi - lo
}
