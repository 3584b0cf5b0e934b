package topology

import (
	"fmt"
	"strings"
)

// Service is one of the applications this tool knows how to deploy. The set
// is closed so that a bad name is rejected before any call leaves the
// process.
type Service string

const (
	ServiceDawn Service = "dawn"
	ServiceDay  Service = "day"
	ServiceDusk Service = "dusk"
)

// containerPort is the port every service container listens on. It matches
// the port the service images EXPOSE.
const containerPort int32 = 8001

// AllServices returns all known Services in a fixed order.
func AllServices() []Service {
	return []Service{ServiceDawn, ServiceDay, ServiceDusk}
}

// ParseService parses a string representation of a service name and returns
// the corresponding Service value or an error if it isn't recognized.
func ParseService(name string) (Service, error) {
	svc := Service(strings.TrimSpace(strings.ToLower(name)))
	switch svc {
	case ServiceDawn, ServiceDay, ServiceDusk:
		return svc, nil
	default:
		return "", fmt.Errorf(
			"unknown service %q; known services are %s",
			name,
			knownServiceNames(),
		)
	}
}

func knownServiceNames() string {
	all := AllServices()
	names := make([]string, len(all))
	for i, svc := range all {
		names[i] = string(svc)
	}
	return strings.Join(names, ", ")
}

// Repository returns the name of the image repository that holds the
// Service's container images.
func (s Service) Repository() string {
	return string(s)
}

// Port returns the port the Service's container listens on.
func (s Service) Port() int32 {
	return containerPort
}

// Track is one of the two parallel deployment lanes a Service runs on within
// a cluster.
type Track string

const (
	// TrackProd is the production lane.
	TrackProd Track = "prod"
	// TrackRC is the release-candidate lane.
	TrackRC Track = "rc"
)

// AllTracks returns both Tracks in a fixed order.
func AllTracks() []Track {
	return []Track{TrackProd, TrackRC}
}

// ParseTrack parses a string representation of a track name and returns the
// corresponding Track value or an error if it isn't recognized.
func ParseTrack(name string) (Track, error) {
	track := Track(strings.TrimSpace(strings.ToLower(name)))
	switch track {
	case TrackProd, TrackRC:
		return track, nil
	default:
		return "", fmt.Errorf(
			"unknown track %q; known tracks are %s and %s",
			name,
			TrackProd,
			TrackRC,
		)
	}
}

// Tag returns the Track's mutable image tag alias. An explicitly supplied
// immutable identifier always takes precedence over this alias.
func (t Track) Tag() string {
	if t == TrackRC {
		return "rc"
	}
	return "latest"
}

// Tier returns the value of the "tier" label carried by the Track's
// workloads.
func (t Track) Tier() string {
	if t == TrackRC {
		return "rc"
	}
	return "production"
}

// TrackSpec holds the deployment attributes that differ between Tracks.
type TrackSpec struct {
	// MinReplicas and MaxReplicas bound the Track's autoscaler.
	MinReplicas int32
	MaxReplicas int32
	// CPURequest, CPULimit, MemoryRequest, and MemoryLimit size each
	// container, in Kubernetes quantity notation.
	CPURequest    string
	CPULimit      string
	MemoryRequest string
	MemoryLimit   string
	// LogLevel is the verbosity the Track's workloads run at.
	LogLevel string
}

var trackSpecs = map[Track]TrackSpec{
	TrackProd: {
		MinReplicas:   2,
		MaxReplicas:   10,
		CPURequest:    "100m",
		CPULimit:      "500m",
		MemoryRequest: "128Mi",
		MemoryLimit:   "512Mi",
		LogLevel:      "INFO",
	},
	TrackRC: {
		MinReplicas:   1,
		MaxReplicas:   3,
		CPURequest:    "100m",
		CPULimit:      "250m",
		MemoryRequest: "128Mi",
		MemoryLimit:   "256Mi",
		LogLevel:      "DEBUG",
	},
}

// Spec returns the Track's deployment attributes.
func (t Track) Spec() TrackSpec {
	return trackSpecs[t]
}
