package core

import (
	"context"
	"runtime"

	"github.com/shirou/gopsutil/v3/host"
)

// Host identifies the machine a report was produced on.
type Host struct {
	Hostname string `json:"hostname"`
	Platform string `json:"platform"`
	Kernel   string `json:"kernel"`
	Arch     string `json:"arch"`
}

// CollectHost fills in whatever host fields it can and leaves the rest empty.
func CollectHost(ctx context.Context) Host {
	h := Host{Arch: runtime.GOARCH}
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return h
	}
	h.Hostname = info.Hostname
	h.Platform = info.Platform + " " + info.PlatformVersion
	h.Kernel = info.KernelVersion
	if info.KernelArch != "" {
		h.Arch = info.KernelArch
	}
	return h
}
