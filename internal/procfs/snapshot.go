package procfs

import (
	"errors"
	"fmt"
	"sort"
)

var ErrInvalidPID = errors.New("invalid pid")

// Snapshot is the set of PIDs seen at one instant. It is never mutated after
// construction; PIDs returns a copy.
type Snapshot struct {
	pids []int
}

// NewSnapshot builds a snapshot from an explicit PID list. Every element must
// be a positive integer. The result is sorted and de-duplicated.
func NewSnapshot(pids []int) (*Snapshot, error) {
	sorted := make([]int, 0, len(pids))
	seen := make(map[int]struct{}, len(pids))
	for _, pid := range pids {
		if pid <= 0 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidPID, pid)
		}
		if _, dup := seen[pid]; dup {
			continue
		}
		seen[pid] = struct{}{}
		sorted = append(sorted, pid)
	}
	sort.Ints(sorted)
	return &Snapshot{pids: sorted}, nil
}

func (s *Snapshot) PIDs() []int {
	out := make([]int, len(s.pids))
	copy(out, s.pids)
	return out
}

func (s *Snapshot) Len() int {
	return len(s.pids)
}

func (s *Snapshot) Contains(pid int) bool {
	i := sort.SearchInts(s.pids, pid)
	return i < len(s.pids) && s.pids[i] == pid
}

// Filter keeps only the requested PIDs. Requested PIDs that are not in the
// snapshot come back as missing.
func (s *Snapshot) Filter(requested []int) (*Snapshot, []int) {
	var kept, missing []int
	for _, pid := range requested {
		if s.Contains(pid) {
			kept = append(kept, pid)
		} else {
			missing = append(missing, pid)
		}
	}
	// kept is a subset of a valid snapshot so it cannot fail validation
	filtered, _ := NewSnapshot(kept)
	sort.Ints(missing)
	return filtered, missing
}

func (s *Snapshot) String() string {
	return fmt.Sprint(s.pids)
}
