//go:build !windows

package status

// PE version resources only exist on Windows.
func fileVersion(string) string { return "" }
