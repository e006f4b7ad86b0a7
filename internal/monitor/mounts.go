package monitor

import (
	"bufio"
	"io"
	"strings"
)

// Mount is one entry of the mount table
type Mount struct {
	Device string
	Path   string
	FSType string
}

var virtualFSTypes = map[string]bool{
	"proc": true, "sysfs": true, "devtmpfs": true, "devpts": true,
	"tmpfs": true, "securityfs": true, "cgroup": true, "cgroup2": true,
	"pstore": true, "debugfs": true, "hugetlbfs": true, "mqueue": true,
	"fusectl": true, "configfs": true, "binfmt_misc": true, "autofs": true,
	"efivarfs": true, "tracefs": true, "bpf": true, "overlay": true,
	"squashfs": true, "nsfs": true, "ramfs": true,
}

// ParseMounts reads a /proc/mounts style table and keeps the filesystems
// backed by real storage
func ParseMounts(r io.Reader) ([]Mount, error) {
	var mounts []Mount
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 3 {
			continue
		}
		m := Mount{Device: fields[0], Path: unescapeMountPath(fields[1]), FSType: fields[2]}
		if isVirtual(m) {
			continue
		}
		mounts = append(mounts, m)
	}
	return mounts, sc.Err()
}

func isVirtual(m Mount) bool {
	if virtualFSTypes[m.FSType] {
		return true
	}
	if strings.HasPrefix(m.Path, "/snap/") || strings.HasPrefix(m.Path, "/var/lib/docker/") {
		return true
	}
	// network filesystems name their device host:path
	return !strings.HasPrefix(m.Device, "/") && m.Device != "none" && !strings.Contains(m.Device, ":")
}

// unescapeMountPath decodes the octal escapes the kernel uses for spaces,
// tabs, newlines and backslashes in mount paths
func unescapeMountPath(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+3 < len(s) && isOctal(s[i+1]) && isOctal(s[i+2]) && isOctal(s[i+3]) {
			b.WriteByte((s[i+1]-'0')<<6 | (s[i+2]-'0')<<3 | (s[i+3] - '0'))
			i += 3
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isOctal(c byte) bool {
	return c >= '0' && c <= '7'
}
