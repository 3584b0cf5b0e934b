package topology

import "fmt"

// DefaultRegion is the AWS region used when neither a flag nor stored
// configuration names one.
const DefaultRegion = "us-east-1"

// Cluster identifies a target environment. An empty Name means "whatever the
// current kubeconfig context points at"; once a command has resolved its
// target, the Cluster is threaded explicitly through every call instead of
// being read from ambient state.
type Cluster struct {
	// Name is the cluster's name. It doubles as the kubeconfig context used
	// to reach it.
	Name string
	// Region is the AWS region hosting the cluster and its image registry.
	Region string
}

// Unit is a Deployment Unit: the materialized combination of one Service,
// one Track, and the Cluster hosting them. Every resource name inside the
// unit's namespace derives from it, so two Units never collide unless they
// are the same Unit.
type Unit struct {
	Service Service
	Track   Track
	Cluster Cluster
}

// String renders the Service×Track×Cluster triple the way user-facing
// messages reference it.
func (u Unit) String() string {
	cluster := u.Cluster.Name
	if cluster == "" {
		cluster = "current-context"
	}
	return fmt.Sprintf("%s/%s@%s", u.Service, u.Track, cluster)
}

// qualified returns the service name with the track infix applied: "day" on
// prod, "day-rc" on rc.
func (u Unit) qualified() string {
	if u.Track == TrackRC {
		return fmt.Sprintf("%s-%s", u.Service, TrackRC)
	}
	return string(u.Service)
}

// Namespace returns the name of the unit's namespace.
func (u Unit) Namespace() string {
	return fmt.Sprintf("%s-ns", u.qualified())
}

// DeploymentName returns the name of the unit's Deployment.
func (u Unit) DeploymentName() string {
	return u.qualified()
}

// ServiceName returns the name of the unit's ClusterIP Service.
func (u Unit) ServiceName() string {
	return fmt.Sprintf("%s-service", u.qualified())
}

// ConfigMapName returns the name of the unit's ConfigMap.
func (u Unit) ConfigMapName() string {
	return fmt.Sprintf("%s-config", u.qualified())
}

// HPAName returns the name of the unit's HorizontalPodAutoscaler.
func (u Unit) HPAName() string {
	return fmt.Sprintf("%s-hpa", u.qualified())
}

// IngressName returns the name of the unit's Ingress.
func (u Unit) IngressName() string {
	return fmt.Sprintf("%s-ingress", u.qualified())
}

// Host returns the hostname the unit's Ingress routes. Hosts keep the two
// tracks' traffic apart on the shared load balancer.
func (u Unit) Host() string {
	return fmt.Sprintf("%s.example.com", u.qualified())
}

// Selector returns the unit's pod selector. The rc track additionally
// selects on tier; the prod selector predates the tier label and must stay
// as is because a Deployment's selector is immutable.
func (u Unit) Selector() map[string]string {
	selector := map[string]string{"app": string(u.Service)}
	if u.Track == TrackRC {
		selector["tier"] = u.Track.Tier()
	}
	return selector
}

// PodLabels returns the labels stamped on the unit's pods. It is always a
// superset of Selector.
func (u Unit) PodLabels() map[string]string {
	labels := map[string]string{
		"app":  string(u.Service),
		"tier": u.Track.Tier(),
	}
	if u.Cluster.Name != "" {
		labels["cluster"] = u.Cluster.Name
	}
	return labels
}

// Labels returns the metadata labels shared by all of the unit's resources.
func (u Unit) Labels() map[string]string {
	labels := map[string]string{
		"app":         string(u.Service),
		"managed-by":  "foundation",
		"environment": u.Namespace(),
		"tier":        u.Track.Tier(),
	}
	if u.Cluster.Name != "" {
		labels["cluster"] = u.Cluster.Name
	}
	return labels
}

// NamespaceLabels returns the labels applied to the unit's namespace when
// the allocator creates it.
func (u Unit) NamespaceLabels() map[string]string {
	labels := map[string]string{
		"name":        u.Namespace(),
		"app":         string(u.Service),
		"managed-by":  "foundation",
		"tier":        u.Track.Tier(),
		"environment": u.Track.Tier(),
	}
	if u.Cluster.Name != "" {
		labels["cluster"] = u.Cluster.Name
	}
	return labels
}

// InspectCommand returns the kubectl invocation an operator can run to
// follow the unit's rollout by hand.
func (u Unit) InspectCommand() string {
	return fmt.Sprintf(
		"kubectl -n %s rollout status deployment/%s",
		u.Namespace(),
		u.DeploymentName(),
	)
}
