package agent

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"
)

type hostInfo struct {
	Hostname string
	OS       string
	Arch     string

	Uptime    time.Duration
	HasUptime bool

	Load1   float64
	HasLoad bool

	MemoryTotalBytes     uint64
	MemoryAvailableBytes uint64
	HasMemory            bool

	DiskPath       string
	DiskTotalBytes uint64
	DiskFreeBytes  uint64
	HasDisk        bool
}

func collectHostInfo() hostInfo {
	info := hostInfo{
		OS:       runtime.GOOS,
		Arch:     runtime.GOARCH,
		DiskPath: "/",
	}
	if name, err := os.Hostname(); err == nil {
		info.Hostname = name
	}
	collectPlatformHostInfo(&info)
	return info
}

func (h hostInfo) lines() []string {
	lines := []string{fmt.Sprintf("Host: %s (%s/%s)", h.Hostname, h.OS, h.Arch)}
	if h.HasUptime {
		lines = append(lines, "Uptime: "+h.Uptime.Truncate(time.Second).String())
	}
	if h.HasLoad {
		lines = append(lines, fmt.Sprintf("Load average: %.2f", h.Load1))
	}
	if h.HasMemory {
		lines = append(lines, fmt.Sprintf("Memory: %s available of %s",
			formatBytes(h.MemoryAvailableBytes), formatBytes(h.MemoryTotalBytes)))
	}
	if h.HasDisk {
		lines = append(lines, fmt.Sprintf("Disk %s: %s free of %s",
			h.DiskPath, formatBytes(h.DiskFreeBytes), formatBytes(h.DiskTotalBytes)))
	}
	return lines
}

func (h hostInfo) String() string {
	return strings.Join(h.lines(), "\n")
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
