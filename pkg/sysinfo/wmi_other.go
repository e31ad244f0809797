//go:build !windows

package sysinfo

func describeWMI() string { return "" }
