//go:build linux

package main

import (
	"errors"
	"fmt"

	"github.com/25smoking/procfinder/internal/procfs"
	"golang.org/x/sys/unix"
)

// checkHost requires root to be a mounted procfs and the caller to be root;
// environ, exe and fd of other users' processes are unreadable otherwise.
func checkHost(root string) error {
	var st unix.Statfs_t
	if err := unix.Statfs(root, &st); err != nil {
		return fmt.Errorf("%w: %s: %v", procfs.ErrNoProcfs, root, err)
	}
	if st.Type != unix.PROC_SUPER_MAGIC {
		return fmt.Errorf("%w: %s is not a procfs mount", procfs.ErrNoProcfs, root)
	}
	if unix.Geteuid() != 0 {
		return errors.New("procfinder must be run as root")
	}
	return nil
}
