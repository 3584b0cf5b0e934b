package ingress

import (
	"testing"

	"github.com/stretchr/testify/require"
	networkingv1 "k8s.io/api/networking/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/ry111/foundation/internal/topology"
)

func TestGroupKey(t *testing.T) {
	trantor := topology.Cluster{Name: "trantor"}
	terminus := topology.Cluster{Name: "terminus"}

	require.Equal(t, "trantor-cluster", GroupKey(trantor))

	// Both tracks of a service derive the key from the cluster alone, so
	// they cannot disagree; different clusters can never collide.
	require.Equal(t, GroupKey(trantor), GroupKey(trantor))
	require.NotEqual(t, GroupKey(trantor), GroupKey(terminus))

	// The current-context pseudo cluster still gets a stable key.
	require.Equal(t, "default-cluster", GroupKey(topology.Cluster{}))
}

func TestBind(t *testing.T) {
	cluster := topology.Cluster{Name: "trantor"}

	ing := &networkingv1.Ingress{
		ObjectMeta: metav1.ObjectMeta{
			Name:      "day-rc-ingress",
			Namespace: "day-rc-ns",
			Annotations: map[string]string{
				"example.com/keep": "me",
			},
		},
	}
	Bind(ing, cluster)

	require.Equal(t, "trantor-cluster", ing.Annotations[AnnotationGroupName])
	require.Equal(t, "internet-facing", ing.Annotations[AnnotationScheme])
	require.Equal(t, "ip", ing.Annotations[AnnotationTargetType])
	require.Equal(t, "/health", ing.Annotations[AnnotationHealthcheckPath])
	// Pre-existing annotations survive.
	require.Equal(t, "me", ing.Annotations["example.com/keep"])

	// Binding is idempotent and handles a nil annotation map.
	bare := &networkingv1.Ingress{}
	Bind(bare, cluster)
	Bind(bare, cluster)
	require.Equal(t, "trantor-cluster", bare.Annotations[AnnotationGroupName])

	// The two tracks of one service in one cluster always end up with the
	// same key.
	prod := &networkingv1.Ingress{}
	rc := &networkingv1.Ingress{}
	Bind(prod, cluster)
	Bind(rc, cluster)
	require.Equal(
		t,
		prod.Annotations[AnnotationGroupName],
		rc.Annotations[AnnotationGroupName],
	)
}
