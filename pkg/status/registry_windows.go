//go:build windows

package status

import (
	"strings"

	"golang.org/x/sys/windows/registry"
)

var uninstallKeyPaths = []string{
	`SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall`,
	`SOFTWARE\WOW6432Node\Microsoft\Windows\CurrentVersion\Uninstall`,
}

// registryInstalledVersion scans the Windows uninstall keys for an entry
// whose DisplayName matches or contains the program name. Returns the entry
// name, its DisplayVersion, and whether a match was found.
func registryInstalledVersion(name string) (string, string, bool) {
	for _, root := range []registry.Key{registry.LOCAL_MACHINE, registry.CURRENT_USER} {
		for _, keyPath := range uninstallKeyPaths {
			if entry, ver, ok := scanUninstallKey(root, keyPath, name); ok {
				return entry, ver, true
			}
		}
	}
	return "", "", false
}

func scanUninstallKey(root registry.Key, keyPath, name string) (string, string, bool) {
	key, err := registry.OpenKey(root, keyPath, registry.READ)
	if err != nil {
		return "", "", false
	}
	defer key.Close()

	subkeys, err := key.ReadSubKeyNames(-1)
	if err != nil {
		return "", "", false
	}

	for _, subkey := range subkeys {
		appKey, err := registry.OpenKey(root, keyPath+`\`+subkey, registry.QUERY_VALUE)
		if err != nil {
			continue
		}
		displayName, _, err := appKey.GetStringValue("DisplayName")
		if err != nil {
			appKey.Close()
			continue
		}
		if strings.EqualFold(displayName, name) || strings.Contains(strings.ToLower(displayName), strings.ToLower(name)) {
			ver, _, _ := appKey.GetStringValue("DisplayVersion")
			appKey.Close()
			return displayName, ver, true
		}
		appKey.Close()
	}
	return "", "", false
}
