package plugins

import (
	"context"
	"testing"

	"github.com/25smoking/procfinder/internal/config"
	"github.com/25smoking/procfinder/internal/core"
	"github.com/25smoking/procfinder/internal/procfs"
	"github.com/25smoking/procfinder/internal/procfs/procfstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func snapshotOf(t *testing.T, tree *procfstest.Tree) *procfs.Snapshot {
	t.Helper()
	snap, err := tree.FS().Snapshot(context.Background())
	require.NoError(t, err)
	return snap
}

func TestDeletedPlugin(t *testing.T) {
	tree := procfstest.New(t)
	tree.Process(10).Exe("/usr/bin/app (deleted)")
	tree.Process(11).Exe("/usr/bin/app")
	tree.Process(12) // kernel thread: no exe link
	tree.Process(13).Exe("/opt/(deleted)/bin")

	p := &DeletedPlugin{FS: tree.FS(), Logger: zaptest.NewLogger(t)}
	pids, err := p.Run(context.Background(), snapshotOf(t, tree))
	require.NoError(t, err)
	assert.Equal(t, []int{10}, pids)
}

func TestPathPlugin(t *testing.T) {
	tree := procfstest.New(t)
	tree.Process(20).Environ("PATH=.:/usr/bin")
	tree.Process(21).Environ("PATH=/usr/bin:/bin", "HOME=/root")
	tree.Process(22).Environ("HOME=/root")
	tree.Process(23) // environ unreadable
	tree.Process(24).Environ("PATH=/home/x/./bin", "TERM=xterm", "LANG=C")
	tree.Process(25).Environ("MYPATH=./bin")

	p := &PathPlugin{FS: tree.FS(), Logger: zaptest.NewLogger(t)}
	pids, err := p.Run(context.Background(), snapshotOf(t, tree))
	require.NoError(t, err)
	assert.Equal(t, []int{20, 24}, pids)
}

func TestPreloadPlugin(t *testing.T) {
	tree := procfstest.New(t)
	tree.Process(30).Environ("LD_PRELOAD=/evil.so")
	tree.Process(31).Environ("MY_LD_PRELOAD_LOG=1")
	tree.Process(32).Environ("LD_PRELOAD=", "HOME=/root")
	tree.Process(33).Environ("HOME=/root", "LD_PRELOAD=/lib/x.so", "TERM=xterm")
	tree.Process(34).Environ("LD_PRELOADX=/evil.so", "LD_LIBRARY_PATH=/tmp")

	p := &PreloadPlugin{FS: tree.FS(), Logger: zaptest.NewLogger(t)}
	pids, err := p.Run(context.Background(), snapshotOf(t, tree))
	require.NoError(t, err)
	assert.Equal(t, []int{30, 32, 33}, pids)
}

func TestCwdPlugin(t *testing.T) {
	tree := procfstest.New(t)
	tree.Process(40).Cwd("/tmp/x")
	tree.Process(41).Cwd("/opt/tmp")
	tree.Process(42).Cwd("/dev/shm")
	tree.Process(43).Cwd("/var/tmp/.hidden")
	tree.Process(44).Cwd("/")
	tree.Process(45)

	p := &CwdPlugin{FS: tree.FS(), Prefixes: []string{"/tmp", "/dev/shm", "/var/tmp"}, Logger: zaptest.NewLogger(t)}
	pids, err := p.Run(context.Background(), snapshotOf(t, tree))
	require.NoError(t, err)
	assert.Equal(t, []int{40, 42, 43}, pids)
}

func TestThreadPlugin(t *testing.T) {
	tree := procfstest.New(t)
	tree.Process(100).Threads("100", "150", "1200")
	tree.Process(200).Threads("100", "150", "900")
	tree.Process(300).Threads("300")
	tree.Process(400).Threads("400", "1401")
	tree.Process(500).Threads("500", "1500")

	p := &ThreadPlugin{FS: tree.FS(), MaxSpread: 1000, Logger: zaptest.NewLogger(t)}
	pids, err := p.Run(context.Background(), snapshotOf(t, tree))
	require.NoError(t, err)
	// 1500-500 is exactly the limit and is not flagged
	assert.Equal(t, []int{100, 400}, pids)
}

func TestThreadSpread(t *testing.T) {
	assert.Equal(t, 1100, ThreadSpread([]int{1200, 100, 150}))
	assert.Equal(t, 800, ThreadSpread([]int{100, 150, 900}))
	assert.Equal(t, 0, ThreadSpread([]int{7}))
	assert.Equal(t, 0, ThreadSpread(nil))
}

func TestPromiscuousPlugin(t *testing.T) {
	t.Run("unsupported_without_table", func(t *testing.T) {
		tree := procfstest.New(t)
		tree.Process(1).FD(3, "socket:[5000]")

		p := &PromiscuousPlugin{FS: tree.FS(), Table: tree.Root + "/net/packet", Logger: zaptest.NewLogger(t)}
		pids, err := p.Run(context.Background(), snapshotOf(t, tree))
		assert.ErrorIs(t, err, core.ErrUnsupported)
		assert.Nil(t, pids)
	})

	t.Run("flags_packet_socket_holders", func(t *testing.T) {
		tree := procfstest.New(t)
		tree.PacketTable("5000", "5001")
		tree.Process(1).FD(0, "/dev/null").FD(3, "socket:[5000]")
		tree.Process(2).FD(3, "socket:[6000]")
		tree.Process(3).FD(4, "pipe:[5000]")
		tree.Process(4).FD(5, "socket:[50001]")
		tree.Process(5).FD(3, "socket:[5001]").FD(4, "socket:[5000]")
		tree.Process(6) // no fd directory

		p := &PromiscuousPlugin{FS: tree.FS(), Table: tree.Root + "/net/packet", Logger: zaptest.NewLogger(t)}
		pids, err := p.Run(context.Background(), snapshotOf(t, tree))
		require.NoError(t, err)
		assert.Equal(t, []int{1, 5}, pids)
	})

	t.Run("empty_table_is_clear", func(t *testing.T) {
		tree := procfstest.New(t)
		tree.PacketTable()
		tree.Process(1).FD(3, "socket:[5000]")

		p := &PromiscuousPlugin{FS: tree.FS(), Table: tree.Root + "/net/packet"}
		pids, err := p.Run(context.Background(), snapshotOf(t, tree))
		require.NoError(t, err)
		assert.Empty(t, pids)
	})
}

func TestRegistry_New(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Checks = []string{"preload", "deleted", "ps"}

	tree := procfstest.New(t)
	detectors, err := New(cfg, tree.FS(), nil, Options{Lister: staticLister{}})
	require.NoError(t, err)

	var names []string
	for _, d := range detectors {
		names = append(names, d.Name())
		assert.NotEmpty(t, d.Narrative().Label)
	}
	assert.Equal(t, []string{"preload", "deleted", "ps"}, names)

	cfg.Checks = []string{"bogus"}
	_, err = New(cfg, tree.FS(), nil, Options{})
	assert.ErrorContains(t, err, `unknown check "bogus"`)
}

func TestDetectors_SkipVanishedProcess(t *testing.T) {
	tree := procfstest.New(t)
	tree.PacketTable("5000")
	tree.Process(1).Exe("/sbin/init").Cwd("/").Environ("PATH=/usr/bin").Threads("1")
	tree.Process(66).
		Exe("/tmp/.x (deleted)").
		Cwd("/tmp").
		Environ("PATH=.:/bin", "LD_PRELOAD=/evil.so").
		FD(3, "socket:[5000]").
		Threads("66", "9000")

	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.ProcRoot = tree.Root
	cfg.Checks = []string{"deleted", "path", "promiscuous", "thread", "cwd", "preload"}

	fs := tree.FS()
	detectors, err := New(cfg, fs, zaptest.NewLogger(t), Options{})
	require.NoError(t, err)

	snap := snapshotOf(t, tree)
	require.Equal(t, []int{1, 66}, snap.PIDs())

	// every check sees 66 while it is alive
	for _, d := range detectors {
		pids, err := d.Run(context.Background(), snap)
		require.NoError(t, err, d.Name())
		assert.Equal(t, []int{66}, pids, d.Name())
	}

	tree.Remove(66)
	for _, d := range detectors {
		pids, err := d.Run(context.Background(), snap)
		require.NoError(t, err, d.Name())
		assert.Empty(t, pids, d.Name())
	}
}

func TestDetectors_CanceledContext(t *testing.T) {
	tree := procfstest.New(t)
	tree.Process(1).Exe("/x (deleted)")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &DeletedPlugin{FS: tree.FS()}
	_, err := p.Run(ctx, snapshotOf(t, tree))
	assert.ErrorIs(t, err, context.Canceled)
}
