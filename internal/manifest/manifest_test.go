package manifest

import (
	"testing"

	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/utils/ptr"

	"github.com/ry111/foundation/internal/image"
	"github.com/ry111/foundation/internal/topology"
)

var testRef = image.Reference{
	Registry:   "123456789012.dkr.ecr.us-east-1.amazonaws.com",
	Repository: "day",
	Tag:        "rc",
}

func TestRenderNaming(t *testing.T) {
	testCases := []struct {
		name       string
		unit       topology.Unit
		assertions func(*testing.T, *Bundle)
	}{
		{
			name: "rc names carry the track infix",
			unit: topology.Unit{
				Service: topology.ServiceDay,
				Track:   topology.TrackRC,
				Cluster: topology.Cluster{Name: "trantor"},
			},
			assertions: func(t *testing.T, b *Bundle) {
				require.Equal(t, "day-rc", b.Deployment.Name)
				require.Equal(t, "day-rc-ns", b.Deployment.Namespace)
				require.Equal(t, "day-rc-service", b.Service.Name)
				require.Equal(t, "day-rc-config", b.ConfigMap.Name)
				require.Equal(t, "day-rc-hpa", b.HPA.Name)
				require.Equal(t, "day-rc-ingress", b.Ingress.Name)
				require.Equal(
					t,
					"day-rc.example.com",
					b.Ingress.Spec.Rules[0].Host,
				)
			},
		},
		{
			name: "prod names are bare",
			unit: topology.Unit{
				Service: topology.ServiceDay,
				Track:   topology.TrackProd,
				Cluster: topology.Cluster{Name: "trantor"},
			},
			assertions: func(t *testing.T, b *Bundle) {
				require.Equal(t, "day", b.Deployment.Name)
				require.Equal(t, "day-ns", b.Deployment.Namespace)
				require.Equal(t, "day-service", b.Service.Name)
				require.Equal(t, "day-config", b.ConfigMap.Name)
				require.Equal(t, "day-hpa", b.HPA.Name)
				require.Equal(t, "day-ingress", b.Ingress.Name)
				require.Equal(t, "day.example.com", b.Ingress.Spec.Rules[0].Host)
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			testCase.assertions(t, Render(testCase.unit, testRef))
		})
	}
}

func TestRenderDeployment(t *testing.T) {
	unit := topology.Unit{
		Service: topology.ServiceDay,
		Track:   topology.TrackRC,
		Cluster: topology.Cluster{Name: "trantor"},
	}
	deploy := Render(unit, testRef).Deployment

	// The autoscaler owns scale.
	require.Nil(t, deploy.Spec.Replicas)

	// The rc selector includes tier; pods carry the full label set.
	require.Equal(
		t,
		map[string]string{"app": "day", "tier": "rc"},
		deploy.Spec.Selector.MatchLabels,
	)
	require.Equal(
		t,
		map[string]string{"app": "day", "tier": "rc", "cluster": "trantor"},
		deploy.Spec.Template.Labels,
	)

	require.Len(t, deploy.Spec.Template.Spec.Containers, 1)
	container := deploy.Spec.Template.Spec.Containers[0]
	require.Equal(t, "day", container.Name)
	require.Equal(
		t,
		"123456789012.dkr.ecr.us-east-1.amazonaws.com/day:rc",
		container.Image,
	)
	require.Equal(t, int32(8001), container.Ports[0].ContainerPort)
	require.Equal(
		t,
		"day-rc-config",
		container.EnvFrom[0].ConfigMapRef.Name,
	)

	// Both probes hit the health endpoint on the container port.
	require.Equal(t, "/health", container.LivenessProbe.HTTPGet.Path)
	require.Equal(t, "/health", container.ReadinessProbe.HTTPGet.Path)
	require.Equal(t, int32(30), container.LivenessProbe.InitialDelaySeconds)
	require.Equal(t, int32(5), container.ReadinessProbe.InitialDelaySeconds)

	// The rc track runs with tighter limits than prod.
	require.Equal(
		t,
		"250m",
		container.Resources.Limits.Cpu().String(),
	)
	require.Equal(
		t,
		"256Mi",
		container.Resources.Limits.Memory().String(),
	)

	prodUnit := unit
	prodUnit.Track = topology.TrackProd
	prodDeploy := Render(prodUnit, testRef).Deployment

	// The prod selector predates the tier label and must stay app-only.
	require.Equal(
		t,
		map[string]string{"app": "day"},
		prodDeploy.Spec.Selector.MatchLabels,
	)
	prodContainer := prodDeploy.Spec.Template.Spec.Containers[0]
	require.Equal(
		t,
		"500m",
		prodContainer.Resources.Limits.Cpu().String(),
	)
}

func TestRenderServiceAndHPA(t *testing.T) {
	unit := topology.Unit{
		Service: topology.ServiceDawn,
		Track:   topology.TrackProd,
		Cluster: topology.Cluster{Name: "trantor"},
	}
	bundle := Render(unit, testRef)

	svc := bundle.Service
	require.Equal(t, corev1.ServiceTypeClusterIP, svc.Spec.Type)
	require.Equal(t, map[string]string{"app": "dawn"}, svc.Spec.Selector)
	require.Equal(t, int32(80), svc.Spec.Ports[0].Port)
	require.Equal(t, int32(8001), svc.Spec.Ports[0].TargetPort.IntVal)

	hpa := bundle.HPA
	require.Equal(t, "dawn", hpa.Spec.ScaleTargetRef.Name)
	require.Equal(t, ptr.To(int32(2)), hpa.Spec.MinReplicas)
	require.Equal(t, int32(10), hpa.Spec.MaxReplicas)
	require.Len(t, hpa.Spec.Metrics, 2)
	require.Equal(
		t,
		ptr.To(int32(70)),
		hpa.Spec.Metrics[0].Resource.Target.AverageUtilization,
	)
	require.Equal(
		t,
		ptr.To(int32(80)),
		hpa.Spec.Metrics[1].Resource.Target.AverageUtilization,
	)

	rcUnit := unit
	rcUnit.Track = topology.TrackRC
	rcHPA := Render(rcUnit, testRef).HPA
	require.Equal(t, ptr.To(int32(1)), rcHPA.Spec.MinReplicas)
	require.Equal(t, int32(3), rcHPA.Spec.MaxReplicas)
}

func TestRenderConfigMap(t *testing.T) {
	unit := topology.Unit{
		Service: topology.ServiceDay,
		Track:   topology.TrackProd,
		Cluster: topology.Cluster{Name: "trantor"},
	}
	cm := Render(unit, testRef).ConfigMap
	require.Equal(t, "INFO", cm.Data["LOG_LEVEL"])
	require.Equal(t, "300", cm.Data["CACHE_TTL"])
	require.Equal(t, "true", cm.Data["FEATURE_NEW_UI"])
	require.Contains(t, cm.Data["DATABASE_HOST"], "postgres")

	unit.Track = topology.TrackRC
	require.Equal(t, "DEBUG", Render(unit, testRef).ConfigMap.Data["LOG_LEVEL"])
}

func TestRenderIsDeterministic(t *testing.T) {
	unit := topology.Unit{
		Service: topology.ServiceDusk,
		Track:   topology.TrackRC,
		Cluster: topology.Cluster{Name: "terminus"},
	}

	first, err := Render(unit, testRef).MarshalYAML()
	require.NoError(t, err)
	second, err := Render(unit, testRef).MarshalYAML()
	require.NoError(t, err)
	require.Equal(t, first, second)

	// Every object carries apiVersion/kind so the stream is applyable as is.
	require.Contains(t, string(first), "apiVersion: apps/v1")
	require.Contains(t, string(first), "kind: HorizontalPodAutoscaler")
	require.Contains(t, string(first), "kind: Ingress")
}

func TestBundleObjectsOrder(t *testing.T) {
	unit := topology.Unit{
		Service: topology.ServiceDay,
		Track:   topology.TrackProd,
		Cluster: topology.Cluster{Name: "trantor"},
	}
	objects := Render(unit, testRef).Objects()
	require.Len(t, objects, 5)

	kinds := make([]string, len(objects))
	for i, obj := range objects {
		kinds[i] = obj.GetObjectKind().GroupVersionKind().Kind
	}
	require.Equal(
		t,
		[]string{
			"ConfigMap",
			"Deployment",
			"Service",
			"HorizontalPodAutoscaler",
			"Ingress",
		},
		kinds,
	)

	// Nil slots are skipped rather than applied.
	partial := &Bundle{Deployment: Render(unit, testRef).Deployment}
	require.Len(t, partial.Objects(), 1)
}
