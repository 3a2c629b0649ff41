// Package version reports the build of the authkit binaries.
//
// Version and Commit are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/authkit/version.Version=1.2.0" ./cmd/authkitd
package version

import (
	"fmt"
	"runtime/debug"
)

var (
	Version = "dev"
	Commit  = ""
)

// Info describes the running binary.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	GoVersion string `json:"go_version"`
	Modified  bool   `json:"modified,omitempty"`
}

// Get merges the link-time variables with the module build info. Link-time
// values win.
func Get() Info {
	info := Info{Version: Version, Commit: Commit}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.GoVersion = bi.GoVersion
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "" {
				info.Commit = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	if len(info.Commit) > 7 {
		info.Commit = info.Commit[:7]
	}
	return info
}

// String renders e.g. "1.2.0-3f2a9c1-dirty".
func (i Info) String() string {
	s := i.Version
	if i.Commit != "" {
		s += "-" + i.Commit
	}
	if i.Modified {
		s += "-dirty"
	}
	return s
}

// Fields returns the info as logger fields.
func (i Info) Fields() map[string]interface{} {
	return map[string]interface{}{
		"version":    i.Version,
		"commit":     i.Commit,
		"go_version": i.GoVersion,
	}
}

// Banner is the one-line answer to "authkit version".
func (i Info) Banner(binary string) string {
	return fmt.Sprintf("%s %s (%s)", binary, i.String(), i.GoVersion)
}
