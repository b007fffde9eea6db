// Package procfs reads the per-process views that the scanner inspects.
//
// Every per-process accessor may fail because the process exited between
// snapshot and lookup. Callers treat those failures as skips, see Classify.
package procfs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/common"
	"github.com/shirou/gopsutil/v3/process"
)

// DefaultRoot is where the kernel procfs is mounted.
const DefaultRoot = "/proc"

// DeletedSuffix is appended by the kernel to exe links whose file was unlinked.
const DeletedSuffix = " (deleted)"

var ErrNoProcfs = errors.New("procfs root is not a directory")

// FS is a procfs tree rooted at an arbitrary directory so tests can point it
// at a synthetic layout. Process reads go through gopsutil with the root
// passed as HOST_PROC in the context.
type FS struct {
	root string
}

// NewFS returns an FS for root, failing with ErrNoProcfs if root is not a
// directory.
func NewFS(root string) (FS, error) {
	info, err := os.Stat(root)
	if err != nil {
		return FS{}, fmt.Errorf("%w: %s: %v", ErrNoProcfs, root, err)
	}
	if !info.IsDir() {
		return FS{}, fmt.Errorf("%w: %s", ErrNoProcfs, root)
	}
	return FS{root: root}, nil
}

// Path joins elem under the directory of pid.
func (fs FS) Path(pid int, elem ...string) string {
	parts := append([]string{fs.root, strconv.Itoa(pid)}, elem...)
	return filepath.Join(parts...)
}

func (fs FS) withRoot(ctx context.Context) context.Context {
	return context.WithValue(ctx, common.EnvKey, common.EnvMap{common.HostProcEnvKey: fs.root})
}

func (fs FS) proc(pid int) *process.Process {
	return &process.Process{Pid: int32(pid)}
}

// Snapshot lists the root once and keeps every positive numeric entry.
func (fs FS) Snapshot(ctx context.Context) (*Snapshot, error) {
	listed, err := process.PidsWithContext(fs.withRoot(ctx))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fs.root, err)
	}

	pids := make([]int, 0, len(listed))
	for _, pid := range listed {
		if pid <= 0 {
			continue
		}
		pids = append(pids, int(pid))
	}
	return NewSnapshot(pids)
}

// Exe returns the target of the exe link, which may end in DeletedSuffix.
func (fs FS) Exe(ctx context.Context, pid int) (string, error) {
	return fs.proc(pid).ExeWithContext(fs.withRoot(ctx))
}

// Cwd returns the target of the cwd link.
func (fs FS) Cwd(ctx context.Context, pid int) (string, error) {
	return fs.proc(pid).CwdWithContext(fs.withRoot(ctx))
}

// Environ reads and parses the whole environment block of pid.
func (fs FS) Environ(ctx context.Context, pid int) (map[string]string, error) {
	entries, err := fs.proc(pid).EnvironWithContext(fs.withRoot(ctx))
	if err != nil {
		return nil, err
	}
	return ParseEnviron(entries), nil
}

// ParseEnviron turns KEY=VALUE entries into a map. Entries without '=' or
// with an empty key are dropped; a repeated key keeps its last value.
func ParseEnviron(entries []string) map[string]string {
	env := make(map[string]string, len(entries))
	for _, entry := range entries {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			continue
		}
		env[key] = value
	}
	return env
}

// FDLinks returns the link text of each open descriptor of pid. Descriptors
// closed while the directory is walked are skipped.
func (fs FS) FDLinks(ctx context.Context, pid int) ([]string, error) {
	files, err := fs.proc(pid).OpenFilesWithContext(fs.withRoot(ctx))
	if err != nil {
		return nil, err
	}

	links := make([]string, 0, len(files))
	for _, f := range files {
		links = append(links, f.Path)
	}
	return links, nil
}

// SocketInode extracts N from a "socket:[N]" descriptor link.
func SocketInode(link string) (string, bool) {
	if !strings.HasPrefix(link, "socket:[") || !strings.HasSuffix(link, "]") {
		return "", false
	}
	inode := strings.TrimSuffix(strings.TrimPrefix(link, "socket:["), "]")
	if !isDigits(inode) {
		return "", false
	}
	return inode, true
}

// ThreadIDs returns the numeric task directory names of pid in ascending order.
// The task directory is listed directly: gopsutil's Threads also parses every
// task/<tid>/stat and fails the whole process when one thread exits mid-walk.
func (fs FS) ThreadIDs(pid int) ([]int, error) {
	entries, err := os.ReadDir(fs.Path(pid, "task"))
	if err != nil {
		return nil, err
	}

	tids := make([]int, 0, len(entries))
	for _, e := range entries {
		if tid, ok := parsePID(e.Name()); ok {
			tids = append(tids, tid)
		}
	}
	sort.Ints(tids)
	return tids, nil
}

// PacketInodes reads a packet socket table (one header line, then one socket
// per line with the inode as the last field). A missing table is returned as
// an error satisfying errors.Is(err, os.ErrNotExist).
func PacketInodes(path string) (map[string]struct{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	inodes := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	scanner.Scan() // header
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		inodes[fields[len(fields)-1]] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return inodes, nil
}

// Binaries resolves the exe link of each pid. Unresolvable pids are left out,
// so the result may be shorter than pids.
func (fs FS) Binaries(ctx context.Context, pids []int) []string {
	var binaries []string
	for _, pid := range pids {
		exe, err := fs.Exe(ctx, pid)
		if err != nil {
			continue
		}
		binaries = append(binaries, exe)
	}
	return binaries
}

// parsePID accepts only ASCII digit strings naming a positive integer.
func parsePID(name string) (int, bool) {
	if !isDigits(name) {
		return 0, false
	}
	pid, err := strconv.Atoi(name)
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
