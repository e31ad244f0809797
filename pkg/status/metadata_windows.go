//go:build windows

package status

import (
	"fmt"

	"github.com/gonutz/w32"
)

// fileVersion reads the PE version resource of a binary. Returns "" when the
// file carries no version info.
func fileVersion(path string) string {
	size := w32.GetFileVersionInfoSize(path)
	if size == 0 {
		return ""
	}
	data := make([]byte, size)
	if !w32.GetFileVersionInfo(path, data) {
		return ""
	}
	info, ok := w32.VerQueryValueRoot(data)
	if !ok {
		return ""
	}
	v := info.FileVersion()
	return fmt.Sprintf("%d.%d.%d.%d",
		v&0xFFFF000000000000>>48,
		v&0x0000FFFF00000000>>32,
		v&0x00000000FFFF0000>>16,
		v&0x000000000000FFFF)
}
