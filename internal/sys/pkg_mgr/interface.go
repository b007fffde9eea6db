package pkg_mgr

import "context"

// PackageManager 定义了包管理器需要实现的接口
// 用于屏蔽 RPM 和 DPKG 的差异
type PackageManager interface {
	// Name 返回包管理器的名称 (e.g., "rpm", "dpkg")
	Name() string

	// GetFileOwner 返回拥有该文件的软件包名称
	GetFileOwner(ctx context.Context, path string) (string, error)
}
