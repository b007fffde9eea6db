package core

import "time"

// Report collects the results of every check in one scan.
type Report struct {
	ScanID    string        `json:"scan_id"`
	Host      Host          `json:"host"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
	PIDs      []int         `json:"pids"`
	// Missing lists requested PIDs that were not present at snapshot time.
	Missing []int    `json:"missing,omitempty"`
	Results []Result `json:"results"`
}

// Counts tallies results per status.
func (r *Report) Counts() map[Status]int {
	counts := map[Status]int{
		StatusClear:       0,
		StatusFlagged:     0,
		StatusUnsupported: 0,
		StatusError:       0,
	}
	for _, res := range r.Results {
		counts[res.Status]++
	}
	return counts
}

// Clean reports whether every check that ran came back clear.
func (r *Report) Clean() bool {
	c := r.Counts()
	return c[StatusFlagged] == 0 && c[StatusError] == 0
}
