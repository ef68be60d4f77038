//go:build linux

package agent

import (
	"bufio"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"
)

func collectPlatformHostInfo(info *hostInfo) {
	if raw, err := os.ReadFile("/proc/uptime"); err == nil {
		if fields := strings.Fields(string(raw)); len(fields) > 0 {
			if secs, err := strconv.ParseFloat(fields[0], 64); err == nil {
				info.Uptime = time.Duration(secs * float64(time.Second))
				info.HasUptime = true
			}
		}
	}

	if raw, err := os.ReadFile("/proc/loadavg"); err == nil {
		if fields := strings.Fields(string(raw)); len(fields) > 0 {
			if load, err := strconv.ParseFloat(fields[0], 64); err == nil {
				info.Load1 = load
				info.HasLoad = true
			}
		}
	}

	if memInfo, err := parseKeyValueFile("/proc/meminfo"); err == nil {
		total := memInfo["MemTotal"] * 1024
		available := memInfo["MemAvailable"] * 1024
		if available == 0 {
			available = memInfo["MemFree"] * 1024
		}
		info.MemoryTotalBytes = total
		info.MemoryAvailableBytes = available
		info.HasMemory = total > 0
	}

	var fs syscall.Statfs_t
	if err := syscall.Statfs(info.DiskPath, &fs); err == nil {
		info.DiskTotalBytes = fs.Blocks * uint64(fs.Bsize)
		info.DiskFreeBytes = fs.Bavail * uint64(fs.Bsize)
		info.HasDisk = true
	}
}

func parseKeyValueFile(path string) (map[string]uint64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	result := make(map[string]uint64)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		value, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			continue
		}
		result[strings.TrimSuffix(fields[0], ":")] = value
	}
	return result, scanner.Err()
}
