// pkg/sysinfo/sysinfo.go - best-effort OS identification.

package sysinfo

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/host"
)

const fallback = "Unable to retrieve system info"

// Describe returns a human-readable OS identification string. It never
// fails; when every source errors it returns a generic string.
func Describe() string {
	if s := describeWMI(); s != "" {
		return s
	}

	info, err := host.Info()
	if err != nil {
		return fallback
	}
	return fmt.Sprintf("%s %s (%s)", info.Platform, info.PlatformVersion, info.KernelArch)
}
