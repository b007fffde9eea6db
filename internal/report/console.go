package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/25smoking/procfinder/internal/core"
	"github.com/gookit/color"
)

const (
	banner = "  _____                ______ _           _\n" +
		" |  __ \\              |  ____(_)         | |\n" +
		" | |__) | __ ___   ___| |__   _ _ __   __| | ___ _ __\n" +
		" |  ___/ '__/ _ \\ / __|  __| | | '_ \\ / _` |/ _ \\ '__|\n" +
		" | |   | | | (_) | (__| |    | | | | | (_| |  __/ |\n" +
		" |_|   |_|  \\___/ \\___|_|    |_|_| |_|\\__,_|\\___|_|"

	author = "wakef33"
)

// Console renders a scan for a terminal. Styles belong to the instance, so
// two consoles with different colour settings can coexist.
type Console struct {
	w       io.Writer
	noColor bool

	noteStyle   color.Style
	warnStyle   color.Style
	bannerStyle color.Style
	dimStyle    color.Style
}

func NewConsole(w io.Writer, noColor bool) *Console {
	return &Console{
		w:           w,
		noColor:     noColor,
		noteStyle:   color.New(color.FgGreen, color.OpBold),
		warnStyle:   color.New(color.FgLightRed, color.OpBold),
		bannerStyle: color.New(color.FgLightBlue),
		dimStyle:    color.New(color.OpFuzzy),
	}
}

func (c *Console) paint(s color.Style, text string) string {
	if c.noColor {
		return text
	}
	return s.Sprint(text)
}

func (c *Console) Banner(version string) {
	fmt.Fprintln(c.w, c.paint(c.bannerStyle, banner))
	fmt.Fprintf(c.w, "\n                 %s\n", c.paint(c.bannerStyle, version))
	fmt.Fprintf(c.w, "                 %s\n\n", c.paint(c.bannerStyle, "Author: "+author))
}

// Note prints a "[+]" line.
func (c *Console) Note(text string) {
	fmt.Fprintf(c.w, "%s %s\n", c.paint(c.noteStyle, "[+]"), text)
}

// Warning prints a "[-]" line.
func (c *Console) Warning(text string) {
	fmt.Fprintf(c.w, "%s %s\n", c.paint(c.warnStyle, "[-]"), text)
}

// Render prints the PID list, one section per result and a summary line.
func (c *Console) Render(rep *core.Report) {
	c.Note("PIDs Running")
	fmt.Fprintln(c.w, formatPIDs(rep.PIDs))
	if len(rep.Missing) > 0 {
		c.Warning("Requested PIDs not running: " + formatPIDs(rep.Missing))
	}
	fmt.Fprintln(c.w)

	for _, res := range rep.Results {
		c.Section(res)
	}
	c.Summary(rep)
}

// Section prints one check. Binary paths come from untrusted processes and
// are always quoted.
func (c *Console) Section(res core.Result) {
	c.Note(res.Label)
	switch res.Status {
	case core.StatusClear:
		c.Note(res.Pass)
	case core.StatusFlagged:
		c.Warning(res.Fail)
		fmt.Fprintln(c.w, formatPIDs(res.PIDs))
		if len(res.Binaries) > 0 {
			fmt.Fprintln(c.w, formatBinaries(res.Binaries, res.Owners))
		}
	case core.StatusUnsupported:
		c.Warning("Unsupported: " + res.Reason)
	default:
		c.Warning("Error: " + res.Reason)
	}
	fmt.Fprintln(c.w)
}

func (c *Console) Summary(rep *core.Report) {
	counts := rep.Counts()
	line := fmt.Sprintf("scan %s finished in %.2fs: %d checks, %d flagged, %d unsupported, %d failed",
		rep.ScanID, rep.Duration.Seconds(), len(rep.Results),
		counts[core.StatusFlagged], counts[core.StatusUnsupported], counts[core.StatusError])
	fmt.Fprintln(c.w, c.paint(c.dimStyle, line))
}

func formatPIDs(pids []int) string {
	return fmt.Sprint(pids)
}

func formatBinaries(binaries []string, owners map[string]string) string {
	parts := make([]string, 0, len(binaries))
	for _, bin := range binaries {
		part := fmt.Sprintf("%q", bin)
		if owner, ok := owners[bin]; ok {
			part += " (" + owner + ")"
		}
		parts = append(parts, part)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
