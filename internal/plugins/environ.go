package plugins

import (
	"context"
	"strings"

	"github.com/25smoking/procfinder/internal/core"
	"github.com/25smoking/procfinder/internal/procfs"
	"go.uber.org/zap"
)

// PathPlugin flags processes whose PATH contains a '.', which lets a relative
// or current-directory binary shadow a system one.
type PathPlugin struct {
	FS     procfs.FS
	Logger *zap.Logger
}

func (p *PathPlugin) Name() string {
	return "path"
}

func (p *PathPlugin) Narrative() core.Narrative {
	return core.Narrative{
		Label: "PATH Environment Variables Check",
		Pass:  "No Suspicious PATH Environment Variables Found",
		Fail:  "Found Suspicious PATH Environment Variables",
	}
}

func (p *PathPlugin) Run(ctx context.Context, snap *procfs.Snapshot) ([]int, error) {
	return eachProcess(ctx, nopIfNil(p.Logger), p.Name(), snap, func(pid int) (bool, error) {
		env, err := p.FS.Environ(ctx, pid)
		if err != nil {
			return false, err
		}
		path, ok := env["PATH"]
		return ok && strings.Contains(path, "."), nil
	})
}

// PreloadPlugin flags any process started with LD_PRELOAD set, even to an
// empty value.
type PreloadPlugin struct {
	FS     procfs.FS
	Logger *zap.Logger
}

func (p *PreloadPlugin) Name() string {
	return "preload"
}

func (p *PreloadPlugin) Narrative() core.Narrative {
	return core.Narrative{
		Label: "LD_PRELOAD Check",
		Pass:  "No Suspicious LD_PRELOAD Found",
		Fail:  "Found Suspicious LD_PRELOAD",
	}
}

func (p *PreloadPlugin) Run(ctx context.Context, snap *procfs.Snapshot) ([]int, error) {
	return eachProcess(ctx, nopIfNil(p.Logger), p.Name(), snap, func(pid int) (bool, error) {
		env, err := p.FS.Environ(ctx, pid)
		if err != nil {
			return false, err
		}
		_, ok := env["LD_PRELOAD"]
		return ok, nil
	})
}
