//go:build windows

package sysinfo

import (
	"fmt"

	"github.com/yusufpapurcu/wmi"
)

type win32OperatingSystem struct {
	Caption     string
	Version     string
	BuildNumber string
}

// describeWMI queries Win32_OperatingSystem for the OS name and version.
func describeWMI() string {
	var entries []win32OperatingSystem
	if err := wmi.Query("SELECT Caption, Version, BuildNumber FROM Win32_OperatingSystem", &entries); err != nil || len(entries) == 0 {
		return ""
	}
	os := entries[0]
	return fmt.Sprintf("%s (version %s, build %s)", os.Caption, os.Version, os.BuildNumber)
}
