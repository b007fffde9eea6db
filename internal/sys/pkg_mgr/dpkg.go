package pkg_mgr

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var ErrNotOwned = errors.New("not owned by any package")

type DpkgManager struct{}

func NewDpkgManager() *DpkgManager {
	return &DpkgManager{}
}

func (m *DpkgManager) Name() string {
	return "dpkg"
}

func (m *DpkgManager) GetFileOwner(ctx context.Context, path string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	// 例如 dpkg -S /bin/ls -> "coreutils: /bin/ls"
	out, err := exec.CommandContext(ctx, "dpkg", "-S", path).Output()
	if err != nil {
		// dpkg -S 失败通常意味着文件不属于任何包
		return "", fmt.Errorf("%s: %w", path, ErrNotOwned)
	}
	return parseDpkgOwner(string(out), path)
}

// parseDpkgOwner 从 "pkg[, pkg]: path" 格式的输出中取出包名，跳过 diversion 行
func parseDpkgOwner(out, path string) (string, error) {
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "diversion by") {
			continue
		}
		pkgs, file, ok := strings.Cut(line, ": ")
		if !ok || strings.TrimSpace(file) != path {
			continue
		}
		return strings.TrimSpace(pkgs), nil
	}
	return "", fmt.Errorf("%s: %w", path, ErrNotOwned)
}
