package manifest

import (
	"bytes"

	appsv1 "k8s.io/api/apps/v1"
	autoscalingv2 "k8s.io/api/autoscaling/v2"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
	"k8s.io/utils/ptr"
	"sigs.k8s.io/controller-runtime/pkg/client"
	sigyaml "sigs.k8s.io/yaml"

	"github.com/ry111/foundation/internal/image"
	"github.com/ry111/foundation/internal/topology"
)

// ImagePlaceholder is the literal image string a manifest template carries
// where the resolved reference belongs.
const ImagePlaceholder = "IMAGE_PLACEHOLDER"

const (
	portName    = "http"
	healthPath  = "/health"
	servicePort = 80

	// Application settings shared by every track, matching what the services
	// read from their environment.
	databaseHost = "postgres.production.svc.cluster.local"
	cacheTTL     = "300"
	featureNewUI = "true"

	// Autoscaling targets, as a percentage of requested resources.
	cpuTargetUtilization    = 70
	memoryTargetUtilization = 80
)

// Bundle is the complete set of resource specifications for one deployment
// unit. Slots may be nil when the bundle was rendered from a partial template
// set; Objects skips them.
type Bundle struct {
	ConfigMap  *corev1.ConfigMap
	Deployment *appsv1.Deployment
	Service    *corev1.Service
	HPA        *autoscalingv2.HorizontalPodAutoscaler
	Ingress    *networkingv1.Ingress
}

// Objects returns the bundle's resources in apply order: configuration before
// the workload that consumes it, the workload before anything that routes to
// it.
func (b *Bundle) Objects() []client.Object {
	objects := make([]client.Object, 0, 5)
	if b.ConfigMap != nil {
		objects = append(objects, b.ConfigMap)
	}
	if b.Deployment != nil {
		objects = append(objects, b.Deployment)
	}
	if b.Service != nil {
		objects = append(objects, b.Service)
	}
	if b.HPA != nil {
		objects = append(objects, b.HPA)
	}
	if b.Ingress != nil {
		objects = append(objects, b.Ingress)
	}
	return objects
}

// MarshalYAML renders the bundle as one multi-document YAML stream in the
// fixed apply order. Two bundles rendered from identical inputs marshal to
// byte-identical output.
func (b *Bundle) MarshalYAML() ([]byte, error) {
	buf := &bytes.Buffer{}
	for i, obj := range b.Objects() {
		if i > 0 {
			buf.WriteString("---\n")
		}
		data, err := sigyaml.Marshal(obj)
		if err != nil {
			return nil, err
		}
		buf.Write(data)
	}
	return buf.Bytes(), nil
}

// Render produces the typed resource set for one deployment unit running the
// given image. Rendering is pure computation: identical inputs always yield
// identical bundles, and nothing here injects timestamps or random suffixes.
func Render(unit topology.Unit, ref image.Reference) *Bundle {
	return &Bundle{
		ConfigMap:  configMap(unit),
		Deployment: deployment(unit, ref),
		Service:    service(unit),
		HPA:        hpa(unit),
		Ingress:    ingress(unit),
	}
}

func configMap(unit topology.Unit) *corev1.ConfigMap {
	return &corev1.ConfigMap{
		TypeMeta: metav1.TypeMeta{
			APIVersion: "v1",
			Kind:       "ConfigMap",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:      unit.ConfigMapName(),
			Namespace: unit.Namespace(),
			Labels:    unit.Labels(),
		},
		Data: map[string]string{
			"LOG_LEVEL":      unit.Track.Spec().LogLevel,
			"DATABASE_HOST":  databaseHost,
			"CACHE_TTL":      cacheTTL,
			"FEATURE_NEW_UI": featureNewUI,
		},
	}
}

func deployment(unit topology.Unit, ref image.Reference) *appsv1.Deployment {
	spec := unit.Track.Spec()
	return &appsv1.Deployment{
		TypeMeta: metav1.TypeMeta{
			APIVersion: "apps/v1",
			Kind:       "Deployment",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:      unit.DeploymentName(),
			Namespace: unit.Namespace(),
			Labels:    unit.Labels(),
		},
		Spec: appsv1.DeploymentSpec{
			// Replicas is deliberately left unset so the autoscaler owns
			// scale; setting it here would fight the HPA on every apply.
			Selector: &metav1.LabelSelector{
				MatchLabels: unit.Selector(),
			},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{
					Labels: unit.PodLabels(),
				},
				Spec: corev1.PodSpec{
					Containers: []corev1.Container{
						{
							Name:  string(unit.Service),
							Image: ref.String(),
							Ports: []corev1.ContainerPort{
								{
									Name:          portName,
									ContainerPort: unit.Service.Port(),
								},
							},
							EnvFrom: []corev1.EnvFromSource{
								{
									ConfigMapRef: &corev1.ConfigMapEnvSource{
										LocalObjectReference: corev1.LocalObjectReference{
											Name: unit.ConfigMapName(),
										},
									},
								},
							},
							Resources: corev1.ResourceRequirements{
								Requests: corev1.ResourceList{
									corev1.ResourceCPU:    resource.MustParse(spec.CPURequest),
									corev1.ResourceMemory: resource.MustParse(spec.MemoryRequest),
								},
								Limits: corev1.ResourceList{
									corev1.ResourceCPU:    resource.MustParse(spec.CPULimit),
									corev1.ResourceMemory: resource.MustParse(spec.MemoryLimit),
								},
							},
							LivenessProbe: &corev1.Probe{
								ProbeHandler: corev1.ProbeHandler{
									HTTPGet: &corev1.HTTPGetAction{
										Path: healthPath,
										Port: intstr.FromInt32(unit.Service.Port()),
									},
								},
								InitialDelaySeconds: 30,
								PeriodSeconds:       10,
							},
							ReadinessProbe: &corev1.Probe{
								ProbeHandler: corev1.ProbeHandler{
									HTTPGet: &corev1.HTTPGetAction{
										Path: healthPath,
										Port: intstr.FromInt32(unit.Service.Port()),
									},
								},
								InitialDelaySeconds: 5,
								PeriodSeconds:       5,
							},
						},
					},
				},
			},
		},
	}
}

func service(unit topology.Unit) *corev1.Service {
	return &corev1.Service{
		TypeMeta: metav1.TypeMeta{
			APIVersion: "v1",
			Kind:       "Service",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:      unit.ServiceName(),
			Namespace: unit.Namespace(),
			Labels:    unit.Labels(),
		},
		Spec: corev1.ServiceSpec{
			Type:     corev1.ServiceTypeClusterIP,
			Selector: unit.Selector(),
			Ports: []corev1.ServicePort{
				{
					Name:       portName,
					Port:       servicePort,
					TargetPort: intstr.FromInt32(unit.Service.Port()),
					Protocol:   corev1.ProtocolTCP,
				},
			},
		},
	}
}

func hpa(unit topology.Unit) *autoscalingv2.HorizontalPodAutoscaler {
	spec := unit.Track.Spec()
	return &autoscalingv2.HorizontalPodAutoscaler{
		TypeMeta: metav1.TypeMeta{
			APIVersion: "autoscaling/v2",
			Kind:       "HorizontalPodAutoscaler",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:      unit.HPAName(),
			Namespace: unit.Namespace(),
			Labels:    unit.Labels(),
		},
		Spec: autoscalingv2.HorizontalPodAutoscalerSpec{
			ScaleTargetRef: autoscalingv2.CrossVersionObjectReference{
				APIVersion: "apps/v1",
				Kind:       "Deployment",
				Name:       unit.DeploymentName(),
			},
			MinReplicas: ptr.To(spec.MinReplicas),
			MaxReplicas: spec.MaxReplicas,
			Metrics: []autoscalingv2.MetricSpec{
				{
					Type: autoscalingv2.ResourceMetricSourceType,
					Resource: &autoscalingv2.ResourceMetricSource{
						Name: corev1.ResourceCPU,
						Target: autoscalingv2.MetricTarget{
							Type:               autoscalingv2.UtilizationMetricType,
							AverageUtilization: ptr.To(int32(cpuTargetUtilization)),
						},
					},
				},
				{
					Type: autoscalingv2.ResourceMetricSourceType,
					Resource: &autoscalingv2.ResourceMetricSource{
						Name: corev1.ResourceMemory,
						Target: autoscalingv2.MetricTarget{
							Type:               autoscalingv2.UtilizationMetricType,
							AverageUtilization: ptr.To(int32(memoryTargetUtilization)),
						},
					},
				},
			},
		},
	}
}

func ingress(unit topology.Unit) *networkingv1.Ingress {
	pathType := networkingv1.PathTypePrefix
	return &networkingv1.Ingress{
		TypeMeta: metav1.TypeMeta{
			APIVersion: "networking.k8s.io/v1",
			Kind:       "Ingress",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:      unit.IngressName(),
			Namespace: unit.Namespace(),
			Labels:    unit.Labels(),
			Annotations: map[string]string{
				"kubernetes.io/ingress.class": "alb",
			},
		},
		Spec: networkingv1.IngressSpec{
			Rules: []networkingv1.IngressRule{
				{
					// Hosts keep the two tracks' traffic apart on the shared
					// load balancer.
					Host: unit.Host(),
					IngressRuleValue: networkingv1.IngressRuleValue{
						HTTP: &networkingv1.HTTPIngressRuleValue{
							Paths: []networkingv1.HTTPIngressPath{
								{
									Path:     "/",
									PathType: &pathType,
									Backend: networkingv1.IngressBackend{
										Service: &networkingv1.IngressServiceBackend{
											Name: unit.ServiceName(),
											Port: networkingv1.ServiceBackendPort{
												Number: servicePort,
											},
										},
									},
								},
							},
						},
					},
				},
			},
		},
	}
}
