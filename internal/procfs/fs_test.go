package procfs_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/25smoking/procfinder/internal/procfs"
	"github.com/25smoking/procfinder/internal/procfs/procfstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFS_RejectsNonDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "proc")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	_, err := procfs.NewFS(file)
	assert.ErrorIs(t, err, procfs.ErrNoProcfs)

	_, err = procfs.NewFS(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, procfs.ErrNoProcfs)
}

func TestFS_SnapshotKeepsNumericEntries(t *testing.T) {
	tree := procfstest.New(t)
	tree.Process(1)
	tree.Process(42)
	tree.Process(7)
	tree.Entry("self")
	tree.Entry("sys")
	tree.Entry("12abc")
	tree.Entry("0")
	tree.PacketTable()

	snap, err := tree.FS().Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 7, 42}, snap.PIDs())
}

func TestFS_Links(t *testing.T) {
	tree := procfstest.New(t)
	tree.Process(10).Exe("/usr/bin/app (deleted)").Cwd("/var/tmp/work")
	fs := tree.FS()
	ctx := context.Background()

	exe, err := fs.Exe(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/app (deleted)", exe)

	cwd, err := fs.Cwd(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "/var/tmp/work", cwd)

	_, err = fs.Exe(ctx, 11)
	assert.Equal(t, procfs.ReasonGone, procfs.Classify(err))
}

func TestParseEnviron(t *testing.T) {
	env := procfs.ParseEnviron([]string{"HOME=/root", "PATH=/usr/bin:/bin", "EMPTY=", "junk", "=nokey", "A=b=c", ""})

	assert.Equal(t, map[string]string{
		"HOME":  "/root",
		"PATH":  "/usr/bin:/bin",
		"EMPTY": "",
		"A":     "b=c",
	}, env)
}

func TestFS_EnvironReadsWholeBlock(t *testing.T) {
	tree := procfstest.New(t)
	tree.Process(5).Environ("LD_PRELOAD=/evil.so", "PATH=/usr/bin", "TERM=xterm")

	env, err := tree.FS().Environ(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "/evil.so", env["LD_PRELOAD"])
	assert.Equal(t, "xterm", env["TERM"])
}

func TestFS_FDLinks(t *testing.T) {
	tree := procfstest.New(t)
	tree.Process(3).FD(0, "/dev/null").FD(3, "socket:[4242]")

	links, err := tree.FS().FDLinks(context.Background(), 3)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"/dev/null", "socket:[4242]"}, links)
}

func TestSocketInode(t *testing.T) {
	tests := []struct {
		link  string
		inode string
		ok    bool
	}{
		{"socket:[4242]", "4242", true},
		{"socket:[]", "", false},
		{"pipe:[4242]", "", false},
		{"/tmp/socket:[1]", "", false},
		{"socket:[12a]", "", false},
	}
	for _, tt := range tests {
		inode, ok := procfs.SocketInode(tt.link)
		assert.Equal(t, tt.ok, ok, tt.link)
		assert.Equal(t, tt.inode, inode, tt.link)
	}
}

func TestFS_ThreadIDsSortedNumerically(t *testing.T) {
	tree := procfstest.New(t)
	tree.Process(100).Threads("100", "1200", "150")

	tids, err := tree.FS().ThreadIDs(100)
	require.NoError(t, err)
	assert.Equal(t, []int{100, 150, 1200}, tids)
}

func TestPacketInodes(t *testing.T) {
	tree := procfstest.New(t)
	tree.PacketTable("1001", "1002")

	inodes, err := procfs.PacketInodes(filepath.Join(tree.Root, "net", "packet"))
	require.NoError(t, err)
	assert.Len(t, inodes, 2)
	assert.Contains(t, inodes, "1001")
	assert.Contains(t, inodes, "1002")

	_, err = procfs.PacketInodes(filepath.Join(t.TempDir(), "packet"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestFS_BinariesSkipsUnresolvable(t *testing.T) {
	tree := procfstest.New(t)
	tree.Process(1).Exe("/sbin/init")
	tree.Process(2) // kernel thread, no exe link
	tree.Process(3).Exe("/tmp/.x (deleted)")

	got := tree.FS().Binaries(context.Background(), []int{1, 2, 3, 99})
	assert.Equal(t, []string{"/sbin/init", "/tmp/.x (deleted)"}, got)
}

func TestFS_ReadsAfterExitAreGone(t *testing.T) {
	tree := procfstest.New(t)
	tree.Process(8).
		Exe("/usr/bin/app").
		Cwd("/").
		Environ("PATH=/usr/bin").
		FD(3, "socket:[5000]")
	fs := tree.FS()
	ctx := context.Background()

	_, err := fs.Environ(ctx, 8)
	require.NoError(t, err)

	tree.Remove(8)

	_, err = fs.Exe(ctx, 8)
	assert.Equal(t, procfs.ReasonGone, procfs.Classify(err), "exe")
	_, err = fs.Cwd(ctx, 8)
	assert.Equal(t, procfs.ReasonGone, procfs.Classify(err), "cwd")
	_, err = fs.Environ(ctx, 8)
	assert.Equal(t, procfs.ReasonGone, procfs.Classify(err), "environ")
	_, err = fs.FDLinks(ctx, 8)
	assert.Equal(t, procfs.ReasonGone, procfs.Classify(err), "fd")
}

func TestFS_RootOverridesHostProc(t *testing.T) {
	t.Setenv("HOST_PROC", filepath.Join(t.TempDir(), "elsewhere"))

	tree := procfstest.New(t)
	tree.Process(4).Exe("/bin/sh").Environ("LD_PRELOAD=/evil.so")
	fs := tree.FS()
	ctx := context.Background()

	snap, err := fs.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{4}, snap.PIDs())

	exe, err := fs.Exe(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, "/bin/sh", exe)

	env, err := fs.Environ(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"LD_PRELOAD": "/evil.so"}, env)
}
