package pkg_mgr

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

type RpmManager struct{}

func NewRpmManager() *RpmManager {
	return &RpmManager{}
}

func (m *RpmManager) Name() string {
	return "rpm"
}

func (m *RpmManager) GetFileOwner(ctx context.Context, path string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	// rpm 对不属于任何包的文件返回 1: "file ... is not owned by any package"
	out, err := exec.CommandContext(ctx, "rpm", "-qf", "--qf", "%{NAME}\n", path).Output()
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, ErrNotOwned)
	}
	return parseRpmOwner(string(out), path)
}

// parseRpmOwner 合并 rpm 输出的包名 (每行一个)
func parseRpmOwner(out, path string) (string, error) {
	var names []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(line, "not owned by any package") {
			continue
		}
		names = append(names, line)
	}
	if len(names) == 0 {
		return "", fmt.Errorf("%s: %w", path, ErrNotOwned)
	}
	return strings.Join(names, ", "), nil
}
