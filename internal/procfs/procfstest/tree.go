// Package procfstest builds synthetic procfs trees for tests.
package procfstest

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/25smoking/procfinder/internal/procfs"
)

// Tree is a fake procfs root under t.TempDir().
type Tree struct {
	t    testing.TB
	Root string
}

func New(t testing.TB) *Tree {
	t.Helper()
	return &Tree{t: t, Root: t.TempDir()}
}

// FS opens the tree as a procfs.FS.
func (tr *Tree) FS() procfs.FS {
	tr.t.Helper()
	fs, err := procfs.NewFS(tr.Root)
	if err != nil {
		tr.t.Fatalf("open fake procfs: %v", err)
	}
	return fs
}

// Entry creates an arbitrary directory directly under the root, e.g. "self"
// or "sys".
func (tr *Tree) Entry(name string) {
	tr.t.Helper()
	tr.mkdir(filepath.Join(tr.Root, name))
}

// PacketTable writes net/packet with a header and one line per inode.
func (tr *Tree) PacketTable(inodes ...string) {
	tr.t.Helper()
	var b strings.Builder
	b.WriteString("sk               RefCnt Type Proto  Iface R Rmem   User   Inode\n")
	for _, inode := range inodes {
		b.WriteString("ffff8881026c4800 3      3    0003   2     1 0      0      " + inode + "\n")
	}
	tr.mkdir(filepath.Join(tr.Root, "net"))
	tr.write(filepath.Join(tr.Root, "net", "packet"), b.String())
}

// Process creates the directory of pid and returns a builder for its contents.
func (tr *Tree) Process(pid int) *Proc {
	tr.t.Helper()
	dir := filepath.Join(tr.Root, strconv.Itoa(pid))
	tr.mkdir(dir)
	return &Proc{tree: tr, dir: dir}
}

// Remove deletes the directory of pid, simulating an exited process.
func (tr *Tree) Remove(pid int) {
	tr.t.Helper()
	if err := os.RemoveAll(filepath.Join(tr.Root, strconv.Itoa(pid))); err != nil {
		tr.t.Fatalf("remove %d: %v", pid, err)
	}
}

type Proc struct {
	tree *Tree
	dir  string
}

func (p *Proc) Exe(target string) *Proc {
	p.tree.symlink(target, filepath.Join(p.dir, "exe"))
	return p
}

func (p *Proc) Cwd(target string) *Proc {
	p.tree.symlink(target, filepath.Join(p.dir, "cwd"))
	return p
}

// Environ writes entries NUL separated and NUL terminated like the kernel.
func (p *Proc) Environ(entries ...string) *Proc {
	data := ""
	if len(entries) > 0 {
		data = strings.Join(entries, "\x00") + "\x00"
	}
	p.tree.write(filepath.Join(p.dir, "environ"), data)
	return p
}

func (p *Proc) FD(fd int, link string) *Proc {
	dir := filepath.Join(p.dir, "fd")
	p.tree.mkdir(dir)
	p.tree.symlink(link, filepath.Join(dir, strconv.Itoa(fd)))
	return p
}

// Threads creates task/<tid> for each tid.
func (p *Proc) Threads(tids ...string) *Proc {
	for _, tid := range tids {
		p.tree.mkdir(filepath.Join(p.dir, "task", tid))
	}
	return p
}

func (tr *Tree) mkdir(dir string) {
	tr.t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		tr.t.Fatalf("mkdir %s: %v", dir, err)
	}
}

func (tr *Tree) write(path, data string) {
	tr.t.Helper()
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		tr.t.Fatalf("write %s: %v", path, err)
	}
}

func (tr *Tree) symlink(target, link string) {
	tr.t.Helper()
	if err := os.Symlink(target, link); err != nil {
		tr.t.Fatalf("symlink %s -> %s: %v", link, target, err)
	}
}
