package linkplan

import (
	"fmt"
	"strings"
)

// LAFileInfo holds the fields a libNAME.la text wrapper records
// (spec.md §5 "Sidecar files": pic_object, non_pic_object,
// library_names, dlname, old_library, installed).
type LAFileInfo struct {
	PICObject    string
	NonPICObject string
	LibraryNames string
	Dlname       string
	OldLibrary   string
	Installed    bool
}

// RenderLAFile renders the key/value text a .la wrapper holds. The
// driver reads this file back on a later install/uninstall/link
// invocation; the linker never touches it.
func RenderLAFile(info LAFileInfo) string {
	installed := "no"
	if info.Installed {
		installed = "yes"
	}
	return fmt.Sprintf(
		"pic_object='%s'\nnon_pic_object='%s'\nlibrary_names='%s'\ndlname='%s'\nold_library='%s'\ninstalled=%s\n",
		info.PICObject, info.NonPICObject, info.LibraryNames, info.Dlname, info.OldLibrary, installed,
	)
}

// ParseLAFile reads back the key/value text RenderLAFile writes.
// Install/uninstall re-derive a library's real on-disk files this
// way, the same as the original reads library_names/old_library out
// of the wrapper rather than tracking them separately.
func ParseLAFile(data []byte) (LAFileInfo, error) {
	var info LAFileInfo
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		value = strings.Trim(value, "'")
		switch key {
		case "pic_object":
			info.PICObject = value
		case "non_pic_object":
			info.NonPICObject = value
		case "library_names":
			info.LibraryNames = value
		case "dlname":
			info.Dlname = value
		case "old_library":
			info.OldLibrary = value
		case "installed":
			info.Installed = value == "yes"
		}
	}
	return info, nil
}
