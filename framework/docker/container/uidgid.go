package container

import (
	"strconv"
	"strings"
)

// splitUIDGID parses "uid:gid" as used in Image.UIDGID.
func splitUIDGID(uidgid string) (int, int, bool) {
	uidStr, gidStr, found := strings.Cut(uidgid, ":")
	if !found {
		return 0, 0, false
	}
	uid, err := strconv.Atoi(uidStr)
	if err != nil {
		return 0, 0, false
	}
	gid, err := strconv.Atoi(gidStr)
	if err != nil {
		return 0, 0, false
	}
	return uid, gid, true
}
