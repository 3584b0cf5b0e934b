package option

import (
	"time"

	"github.com/spf13/pflag"
)

const (
	// ServiceFlag is the flag name for the service flag.
	ServiceFlag = "service"

	// TrackFlag is the flag name for the track flag.
	TrackFlag = "track"

	// ClusterFlag is the flag name for the cluster flag.
	ClusterFlag = "cluster"

	// RegionFlag is the flag name for the region flag.
	RegionFlag = "region"

	// TagFlag is the flag name for the tag flag.
	TagFlag = "tag"

	// ManifestsFlag is the flag name for the manifests flag.
	ManifestsFlag = "manifests"

	// TimeoutFlag is the flag name for the timeout flag.
	TimeoutFlag = "timeout"

	// ConfirmFlag is the flag name for the confirm flag.
	ConfirmFlag = "confirm"
)

// Service adds the ServiceFlag to the provided flag set.
func Service(fs *pflag.FlagSet, service *string, usage string) {
	fs.StringVar(service, ServiceFlag, "", usage)
}

// Track adds the TrackFlag to the provided flag set.
func Track(fs *pflag.FlagSet, track *string, usage string) {
	fs.StringVar(track, TrackFlag, "", usage)
}

// Cluster adds the ClusterFlag to the provided flag set.
func Cluster(fs *pflag.FlagSet, cluster *string, usage string) {
	fs.StringVar(cluster, ClusterFlag, "", usage)
}

// Region adds the RegionFlag to the provided flag set.
func Region(fs *pflag.FlagSet, region *string, usage string) {
	fs.StringVar(region, RegionFlag, "", usage)
}

// Tag adds the TagFlag to the provided flag set.
func Tag(fs *pflag.FlagSet, tag *string, usage string) {
	fs.StringVar(tag, TagFlag, "", usage)
}

// Manifests adds the ManifestsFlag to the provided flag set.
func Manifests(fs *pflag.FlagSet, manifests *string, usage string) {
	fs.StringVar(manifests, ManifestsFlag, "", usage)
}

// Timeout adds the TimeoutFlag to the provided flag set.
func Timeout(
	fs *pflag.FlagSet,
	timeout *time.Duration,
	defaultTimeout time.Duration,
	usage string,
) {
	fs.DurationVar(timeout, TimeoutFlag, defaultTimeout, usage)
}

// Confirm adds the ConfirmFlag to the provided flag set.
func Confirm(fs *pflag.FlagSet, confirm *string, usage string) {
	fs.StringVar(confirm, ConfirmFlag, "", usage)
}
