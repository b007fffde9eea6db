package plugins

import (
	"context"
	"strings"

	"github.com/25smoking/procfinder/internal/core"
	"github.com/25smoking/procfinder/internal/procfs"
	"go.uber.org/zap"
)

// CwdPlugin flags processes running from a world-writable temp directory.
type CwdPlugin struct {
	FS procfs.FS
	// Prefixes are matched against the start of the cwd only.
	Prefixes []string
	Logger   *zap.Logger
}

func (p *CwdPlugin) Name() string {
	return "cwd"
}

func (p *CwdPlugin) Narrative() core.Narrative {
	return core.Narrative{
		Label: "CWD Check",
		Pass:  "No Suspicious CWD Found",
		Fail:  "Found Suspicious CWD",
	}
}

func (p *CwdPlugin) Run(ctx context.Context, snap *procfs.Snapshot) ([]int, error) {
	return eachProcess(ctx, nopIfNil(p.Logger), p.Name(), snap, func(pid int) (bool, error) {
		cwd, err := p.FS.Cwd(ctx, pid)
		if err != nil {
			return false, err
		}
		for _, prefix := range p.Prefixes {
			if strings.HasPrefix(cwd, prefix) {
				return true, nil
			}
		}
		return false, nil
	})
}
