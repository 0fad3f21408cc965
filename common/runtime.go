package common

import (
	"regexp"
	"runtime"
)

// GetCPUUsage returns the number of goroutines that currently exist, used
// as a cheap process load signal for the telemetry
// middleware's system.cpu.usage gauge.
func GetCPUUsage() int64 {
	return int64(runtime.NumGoroutine())
}

// GetMemUsage returns the process's current heap allocation in megabytes,
// used for the telemetry middleware's system.mem.usage gauge.
func GetMemUsage() int64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return int64(m.Alloc / (1024 * 1024))
}

var pathIDSegment = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}|proj_[A-Za-z0-9_]+`)

// ReplaceUUIDWithPlaceholder collapses UUID and project-id path segments to
// ":id" so request-latency metrics group by route shape, not by the
// identifier of the resource requested.
func ReplaceUUIDWithPlaceholder(path string) string {
	return pathIDSegment.ReplaceAllString(path, ":id")
}
