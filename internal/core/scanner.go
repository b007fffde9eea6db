package core

import (
	"context"
	"strings"
	"time"

	"github.com/25smoking/procfinder/internal/procfs"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BinaryResolver maps suspect PIDs to executable paths, best effort.
type BinaryResolver interface {
	Binaries(ctx context.Context, pids []int) []string
}

// OwnerLookup returns the package that owns a file.
type OwnerLookup interface {
	Name() string
	GetFileOwner(ctx context.Context, path string) (string, error)
}

// UnownedMark is the owner recorded for a binary no package claims.
const UnownedMark = "-"

// Scanner runs detectors one after another against a single snapshot.
type Scanner struct {
	Detectors []Detector
	Resolver  BinaryResolver
	// Owners is optional; when set, resolved binaries are attributed to
	// their package.
	Owners OwnerLookup
	// Quiet disables binary resolution for flagged results.
	Quiet  bool
	Host   Host
	Logger *zap.Logger
}

// Scan always returns a report with one result per detector, in detector
// order. A failing or panicking detector produces a StatusError result and
// the remaining detectors still run.
func (s *Scanner) Scan(ctx context.Context, snap *procfs.Snapshot) *Report {
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	rep := &Report{
		ScanID:    uuid.NewString(),
		Host:      s.Host,
		StartedAt: time.Now(),
		PIDs:      snap.PIDs(),
		Results:   make([]Result, 0, len(s.Detectors)),
	}

	for _, d := range s.Detectors {
		start := time.Now()
		pids, err := SafeRun(ctx, logger, d, snap)
		res := newResult(d, pids, err)
		res.Duration = time.Since(start)

		if res.Status == StatusFlagged && !s.Quiet && s.Resolver != nil {
			res.Binaries = s.Resolver.Binaries(ctx, res.PIDs)
			if s.Owners != nil {
				res.Owners = s.lookupOwners(ctx, logger, res.Binaries)
			}
		}

		fields := []zap.Field{
			zap.String("check", res.Check),
			zap.String("status", string(res.Status)),
			zap.Ints("pids", res.PIDs),
			zap.Duration("elapsed", res.Duration),
		}
		switch res.Status {
		case StatusError:
			logger.Error("check failed", append(fields, zap.String("reason", res.Reason))...)
		case StatusUnsupported:
			logger.Warn("check unsupported", append(fields, zap.String("reason", res.Reason))...)
		default:
			logger.Debug("check complete", fields...)
		}

		rep.Results = append(rep.Results, res)
	}

	rep.Duration = time.Since(rep.StartedAt)
	return rep
}

func (s *Scanner) lookupOwners(ctx context.Context, logger *zap.Logger, binaries []string) map[string]string {
	owners := make(map[string]string, len(binaries))
	for _, bin := range binaries {
		if _, done := owners[bin]; done {
			continue
		}
		// A deleted file keeps its original path, which the package
		// database may still know about.
		path := strings.TrimSuffix(bin, procfs.DeletedSuffix)
		owner, err := s.Owners.GetFileOwner(ctx, path)
		if err != nil || owner == "" {
			logger.Debug("no owning package",
				zap.String("manager", s.Owners.Name()),
				zap.String("binary", path),
				zap.Error(err),
			)
			owner = UnownedMark
		}
		owners[bin] = owner
	}
	return owners
}
