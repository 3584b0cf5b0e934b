package version

import (
	"fmt"
	"log"
	"runtime"
	"runtime/debug"
	"strconv"
	"time"
)

var (
	version   = ""                     // Injected with a linker flag
	buildDate = "1970-01-01T00:00:00Z" // Injected with a linker flag
)

// Version encapsulates all available information about the source code and
// the build.
type Version struct {
	// Version is a human-friendly version string.
	Version string `json:"version"`
	// BuildDate is the date/time on which the binary was built.
	BuildDate time.Time `json:"buildDate"`
	// GitCommit is the ID (sha) of the last commit to the source code that is
	// included in this build.
	GitCommit string `json:"gitCommit"`
	// GitTreeDirty is true if the source code contained uncommitted changes
	// at the time it was built; otherwise it is false.
	GitTreeDirty bool `json:"gitTreeDirty"`
	// GoVersion is the version of Go that was used to build the binary.
	GoVersion string `json:"goVersion"`
	// Platform indicates the OS and CPU architecture for which the binary was
	// built.
	Platform string `json:"platform"`
}

var ver Version

func init() {
	ver = Version{
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}

	var err error
	if ver.BuildDate, err = time.Parse(time.RFC3339, buildDate); err != nil {
		log.Fatal(err)
	}

	// Commit identity comes from the module's embedded VCS stamp rather than
	// a second linker flag. Builds without the stamp, tests included, simply
	// leave it empty.
	if buildInfo, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range buildInfo.Settings {
			switch setting.Key {
			case "vcs.revision":
				ver.GitCommit = setting.Value
			case "vcs.modified":
				ver.GitTreeDirty, _ = strconv.ParseBool(setting.Value)
			}
		}
	}

	// Without a release version, or with any uncertainty about the commit,
	// formulate a development version string from what is known.
	if version == "" || ver.GitCommit == "" || ver.GitTreeDirty {
		version = "devel"
		if len(ver.GitCommit) >= 7 {
			version = fmt.Sprintf("%s+%s", version, ver.GitCommit[0:7])
		} else {
			version = fmt.Sprintf("%s+unknown", version)
		}
		if ver.GitTreeDirty {
			version = fmt.Sprintf("%s.dirty", version)
		}
	}
	ver.Version = version
}

// GetVersion returns the build's version information.
func GetVersion() Version {
	return ver
}
