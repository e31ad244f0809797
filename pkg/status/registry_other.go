//go:build !windows

package status

// Registry probing only exists on Windows.
func registryInstalledVersion(string) (string, string, bool) {
	return "", "", false
}
