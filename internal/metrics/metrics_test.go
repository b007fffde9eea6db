package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/25smoking/procfinder/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReport() *core.Report {
	return &core.Report{
		ScanID:    "scan",
		StartedAt: time.Unix(1700000000, 0),
		Duration:  2 * time.Second,
		PIDs:      []int{1, 2, 3},
		Results: []core.Result{
			{Check: "deleted", Status: core.StatusFlagged, PIDs: []int{2, 3}},
			{Check: "promiscuous", Status: core.StatusUnsupported, PIDs: []int{}},
		},
	}
}

func TestRegistry(t *testing.T) {
	families, err := Registry(testReport()).Gather()
	require.NoError(t, err)

	samples := make(map[string]int)
	for _, mf := range families {
		samples[mf.GetName()] = len(mf.GetMetric())
	}
	assert.Equal(t, 8, samples["procfinder_check_status"])
	assert.Equal(t, 2, samples["procfinder_check_suspects"])
	assert.Equal(t, 1, samples["procfinder_scan_duration_seconds"])
}

func TestWriteTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "procfinder.prom")
	require.NoError(t, WriteTextfile(testReport(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `procfinder_check_suspects{check="deleted"} 2`)
	assert.Contains(t, out, `procfinder_check_status{check="promiscuous",status="unsupported"} 1`)
	assert.Contains(t, out, `procfinder_check_status{check="promiscuous",status="clear"} 0`)
	assert.Contains(t, out, "procfinder_snapshot_processes 3")
	assert.Contains(t, out, "# TYPE procfinder_last_scan_timestamp_seconds gauge")
}
