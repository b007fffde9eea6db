package plugins

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/25smoking/procfinder/internal/core"
	"github.com/25smoking/procfinder/internal/procfs"
	"go.uber.org/zap"
)

// PromiscuousPlugin flags processes holding a packet socket, the kind sniffers
// open to read raw frames off an interface.
type PromiscuousPlugin struct {
	FS procfs.FS
	// Table is the packet socket table, normally /proc/net/packet.
	Table  string
	Logger *zap.Logger
}

func (p *PromiscuousPlugin) Name() string {
	return "promiscuous"
}

func (p *PromiscuousPlugin) Narrative() core.Narrative {
	return core.Narrative{
		Label: "Promiscuous Binaries Check",
		Pass:  "No Promiscuous Binaries Running Found",
		Fail:  "Found Promiscuous Binaries Running",
	}
}

// Run returns core.ErrUnsupported when the kernel exposes no packet table,
// so "no table" is never mistaken for "no sniffers".
func (p *PromiscuousPlugin) Run(ctx context.Context, snap *procfs.Snapshot) ([]int, error) {
	inodes, err := procfs.PacketInodes(p.Table)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s does not exist", core.ErrUnsupported, p.Table)
	}
	if err != nil {
		return nil, fmt.Errorf("read packet table: %w", err)
	}
	if len(inodes) == 0 {
		return nil, nil
	}

	return eachProcess(ctx, nopIfNil(p.Logger), p.Name(), snap, func(pid int) (bool, error) {
		links, err := p.FS.FDLinks(ctx, pid)
		if err != nil {
			return false, err
		}
		for _, link := range links {
			inode, ok := procfs.SocketInode(link)
			if !ok {
				continue
			}
			if _, hit := inodes[inode]; hit {
				return true, nil
			}
		}
		return false, nil
	})
}
