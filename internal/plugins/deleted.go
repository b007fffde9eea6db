package plugins

import (
	"context"
	"strings"

	"github.com/25smoking/procfinder/internal/core"
	"github.com/25smoking/procfinder/internal/procfs"
	"go.uber.org/zap"
)

// DeletedPlugin flags processes whose executable was removed from disk.
// Malware often unlinks itself after start to hide from file scans.
type DeletedPlugin struct {
	FS     procfs.FS
	Logger *zap.Logger
}

func (p *DeletedPlugin) Name() string {
	return "deleted"
}

func (p *DeletedPlugin) Narrative() core.Narrative {
	return core.Narrative{
		Label: "Deleted Binaries Check",
		Pass:  "No Deleted Binaries Running Found",
		Fail:  "Found Deleted Binaries Running",
	}
}

func (p *DeletedPlugin) Run(ctx context.Context, snap *procfs.Snapshot) ([]int, error) {
	return eachProcess(ctx, nopIfNil(p.Logger), p.Name(), snap, func(pid int) (bool, error) {
		exe, err := p.FS.Exe(ctx, pid)
		if err != nil {
			return false, err
		}
		return strings.HasSuffix(exe, procfs.DeletedSuffix), nil
	})
}
