package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/25smoking/procfinder/internal/core"
)

// Save writes rep to filename as json, csv or html.
func Save(rep *core.Report, format, filename string) error {
	var write func(io.Writer, *core.Report) error
	switch format {
	case "json":
		write = WriteJSON
	case "csv":
		write = WriteCSV
	case "html":
		write = WriteHTML
	default:
		return fmt.Errorf("unknown report format %q", format)
	}

	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := write(f, rep); err != nil {
		f.Close()
		return fmt.Errorf("write %s report: %w", format, err)
	}
	return f.Close()
}

func WriteJSON(w io.Writer, rep *core.Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(rep)
}

// WriteCSV writes one row per flagged PID and one row for every check that
// produced no PIDs.
func WriteCSV(w io.Writer, rep *core.Report) error {
	cw := csv.NewWriter(w)

	// Header
	cw.Write([]string{"scan_id", "check", "status", "pid", "detail"})

	// Data
	for _, r := range rep.Results {
		if len(r.PIDs) == 0 {
			cw.Write([]string{rep.ScanID, r.Check, string(r.Status), "", r.Summary()})
			continue
		}
		for _, pid := range r.PIDs {
			cw.Write([]string{rep.ScanID, r.Check, string(r.Status), strconv.Itoa(pid), r.Summary()})
		}
	}

	cw.Flush()
	return cw.Error()
}
