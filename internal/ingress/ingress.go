package ingress

import (
	"fmt"

	networkingv1 "k8s.io/api/networking/v1"

	"github.com/ry111/foundation/internal/topology"
)

// Annotations understood by the AWS Load Balancer Controller.
const (
	AnnotationGroupName       = "alb.ingress.kubernetes.io/group.name"
	AnnotationScheme          = "alb.ingress.kubernetes.io/scheme"
	AnnotationTargetType      = "alb.ingress.kubernetes.io/target-type"
	AnnotationHealthcheckPath = "alb.ingress.kubernetes.io/healthcheck-path"
)

// GroupKey returns the load balancer group key shared by every Ingress in
// the named cluster. The key is derived from the cluster name alone, so the
// two tracks of a service always agree on it regardless of apply order, and
// two different clusters can never share one.
func GroupKey(cluster topology.Cluster) string {
	name := cluster.Name
	if name == "" {
		name = "default"
	}
	return fmt.Sprintf("%s-cluster", name)
}

// Bind stamps the cluster's group key and the fixed ALB annotation set onto
// a rendered Ingress so the controller folds its rules into the cluster's
// one shared load balancer. Bind mutates the rendered copy it is handed and
// nothing else; applying it is the Rollout Coordinator's job.
func Bind(ing *networkingv1.Ingress, cluster topology.Cluster) {
	if ing.Annotations == nil {
		ing.Annotations = map[string]string{}
	}
	ing.Annotations[AnnotationGroupName] = GroupKey(cluster)
	ing.Annotations[AnnotationScheme] = "internet-facing"
	ing.Annotations[AnnotationTargetType] = "ip"
	ing.Annotations[AnnotationHealthcheckPath] = "/health"
}
