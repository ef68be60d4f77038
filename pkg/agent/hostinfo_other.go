//go:build !linux

package agent

func collectPlatformHostInfo(info *hostInfo) {}
