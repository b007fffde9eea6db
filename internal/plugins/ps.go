package plugins

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/25smoking/procfinder/internal/core"
	"github.com/25smoking/procfinder/internal/procfs"
	"go.uber.org/zap"
)

// PIDLister is a user-space view of the process table.
type PIDLister interface {
	ListPIDs(ctx context.Context) ([]int, error)
}

// CommandLister runs an external tool that prints one PID per line.
type CommandLister struct {
	Command string
	Args    []string
	Timeout time.Duration
}

// ListPIDs runs the tool once under Timeout. The tool's own PID is dropped
// from the output since it cannot be in any earlier snapshot.
func (l CommandLister) ListPIDs(ctx context.Context) ([]int, error) {
	ctx, cancel := context.WithTimeout(ctx, l.Timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, l.Command, l.Args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s not found", core.ErrUnsupported, l.Command)
		}
		return nil, fmt.Errorf("start %s: %w", l.Command, err)
	}
	self := cmd.Process.Pid

	err := cmd.Wait()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("%s timed out after %s", l.Command, l.Timeout)
	}
	if err != nil {
		return nil, fmt.Errorf("run %s: %w: %s", l.Command, err, strings.TrimSpace(stderr.String()))
	}

	pids, err := ParsePIDList(stdout.Bytes())
	if err != nil {
		return nil, fmt.Errorf("parse %s output: %w", l.Command, err)
	}

	out := pids[:0]
	for _, pid := range pids {
		if pid != self {
			out = append(out, pid)
		}
	}
	return out, nil
}

// ParsePIDList parses one PID per line, ignoring surrounding blanks and empty
// lines.
func ParsePIDList(data []byte) ([]int, error) {
	var pids []int
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		pid, err := strconv.Atoi(line)
		if err != nil {
			return nil, fmt.Errorf("bad pid %q", line)
		}
		pids = append(pids, pid)
	}
	return pids, scanner.Err()
}

// PsPlugin cross-checks the snapshot against ps. A PID in /proc that ps does
// not print is the classic footprint of a userland rootkit hooking ps; a PID
// ps prints that /proc lacks means /proc itself is being filtered.
type PsPlugin struct {
	Lister PIDLister
	// Only restricts the comparison to these PIDs when set.
	Only   []int
	Logger *zap.Logger
}

func (p *PsPlugin) Name() string {
	return "ps"
}

func (p *PsPlugin) Narrative() core.Narrative {
	return core.Narrative{
		Label: "Ps Check",
		Pass:  "No Suspicious PIDs Found",
		Fail:  "Found Suspicious PIDs",
	}
}

// Run invokes the lister exactly once; the result PIDs are what reporting
// uses, so nothing downstream lists processes again.
func (p *PsPlugin) Run(ctx context.Context, snap *procfs.Snapshot) ([]int, error) {
	listed, err := p.Lister.ListPIDs(ctx)
	if err != nil {
		return nil, err
	}

	if len(p.Only) > 0 {
		only := make(map[int]struct{}, len(p.Only))
		for _, pid := range p.Only {
			only[pid] = struct{}{}
		}
		kept := listed[:0:0]
		for _, pid := range listed {
			if _, ok := only[pid]; ok {
				kept = append(kept, pid)
			}
		}
		listed = kept
	}

	diff := SymmetricDifference(snap.PIDs(), listed)
	nopIfNil(p.Logger).Debug("ps cross-check",
		zap.Int("kernel", snap.Len()),
		zap.Int("listed", len(listed)),
		zap.Ints("difference", diff),
	)
	return diff, nil
}

// SymmetricDifference returns, ascending, the values present in exactly one
// of a and b.
func SymmetricDifference(a, b []int) []int {
	inA := make(map[int]struct{}, len(a))
	for _, v := range a {
		inA[v] = struct{}{}
	}
	inB := make(map[int]struct{}, len(b))
	for _, v := range b {
		inB[v] = struct{}{}
	}

	var diff []int
	for v := range inA {
		if _, ok := inB[v]; !ok {
			diff = append(diff, v)
		}
	}
	for v := range inB {
		if _, ok := inA[v]; !ok {
			diff = append(diff, v)
		}
	}
	sort.Ints(diff)
	return diff
}
