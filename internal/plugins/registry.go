package plugins

import (
	"fmt"

	"github.com/25smoking/procfinder/internal/config"
	"github.com/25smoking/procfinder/internal/core"
	"github.com/25smoking/procfinder/internal/procfs"
	"go.uber.org/zap"
)

// Options tweak detector construction beyond the config file.
type Options struct {
	// Only restricts the ps cross-check to these PIDs. Empty means all.
	Only []int
	// Lister replaces the external ps invocation.
	Lister PIDLister
}

// New builds the detectors named in cfg.Checks, in that order.
func New(cfg *config.Config, fs procfs.FS, logger *zap.Logger, opts Options) ([]core.Detector, error) {
	logger = nopIfNil(logger)

	lister := opts.Lister
	if lister == nil {
		lister = CommandLister{
			Command: cfg.PS.Command,
			Args:    cfg.PS.Args,
			Timeout: cfg.PS.Timeout,
		}
	}

	detectors := make([]core.Detector, 0, len(cfg.Checks))
	for _, name := range cfg.Checks {
		var d core.Detector
		switch name {
		case "deleted":
			d = &DeletedPlugin{FS: fs, Logger: logger}
		case "path":
			d = &PathPlugin{FS: fs, Logger: logger}
		case "promiscuous":
			d = &PromiscuousPlugin{FS: fs, Table: cfg.PacketTablePath(), Logger: logger}
		case "ps":
			d = &PsPlugin{Lister: lister, Only: opts.Only, Logger: logger}
		case "thread":
			d = &ThreadPlugin{FS: fs, MaxSpread: cfg.Thread.MaxSpread, Logger: logger}
		case "cwd":
			d = &CwdPlugin{FS: fs, Prefixes: cfg.Cwd.Prefixes, Logger: logger}
		case "preload":
			d = &PreloadPlugin{FS: fs, Logger: logger}
		default:
			return nil, fmt.Errorf("unknown check %q", name)
		}
		detectors = append(detectors, d)
	}
	return detectors, nil
}
