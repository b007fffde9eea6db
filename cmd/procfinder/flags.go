package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/25smoking/procfinder/internal/config"
	"github.com/25smoking/procfinder/internal/core"
)

// parsePIDs parses the -p list. Every element must be a positive integer.
func parsePIDs(list string) ([]int, error) {
	if strings.TrimSpace(list) == "" {
		return nil, nil
	}

	var pids []int
	for _, field := range strings.Split(list, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		pid, err := strconv.Atoi(field)
		if err != nil || pid <= 0 {
			return nil, fmt.Errorf("PIDs must be positive integers, got %q", field)
		}
		pids = append(pids, pid)
	}
	return pids, nil
}

// parseChecks resolves the -m list to check names, keeping the given order.
func parseChecks(list string) ([]string, error) {
	var selected []string
	seen := make(map[string]bool)
	for _, k := range strings.Split(strings.ToLower(list), ",") {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		name, ok := checkAlias(k)
		if !ok {
			return nil, fmt.Errorf("unknown check %q (known: %s)", k, strings.Join(config.Checks, ", "))
		}
		if !seen[name] {
			seen[name] = true
			selected = append(selected, name)
		}
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("no checks selected")
	}
	return selected, nil
}

// checkAlias maps short names onto check ids.
func checkAlias(keyword string) (string, bool) {
	switch keyword {
	case "deleted", "exe":
		return "deleted", true
	case "path":
		return "path", true
	case "promiscuous", "promisc", "packet", "sniffer":
		return "promiscuous", true
	case "ps", "hidden":
		return "ps", true
	case "thread", "threads":
		return "thread", true
	case "cwd", "tmp":
		return "cwd", true
	case "preload", "ld_preload":
		return "preload", true
	}
	return "", false
}

// exitFlagged is returned when a check flagged a process or failed to run.
// Fatal errors before the scan exit with 1.
const exitFlagged = 2

func scanExitCode(rep *core.Report) int {
	if rep.Clean() {
		return 0
	}
	return exitFlagged
}
