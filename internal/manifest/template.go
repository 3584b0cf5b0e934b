package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	appsv1 "k8s.io/api/apps/v1"
	autoscalingv2 "k8s.io/api/autoscaling/v2"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/serializer"
	kubeyaml "k8s.io/apimachinery/pkg/util/yaml"

	"github.com/ry111/foundation/internal/image"
	"github.com/ry111/foundation/internal/topology"
)

var templateScheme = runtime.NewScheme()

func init() {
	_ = corev1.AddToScheme(templateScheme)
	_ = appsv1.AddToScheme(templateScheme)
	_ = autoscalingv2.AddToScheme(templateScheme)
	_ = networkingv1.AddToScheme(templateScheme)
}

// RenderFromTemplates loads the YAML manifests in dir, stamps every object
// into the unit's namespace, and substitutes the resolved image reference for
// the ImagePlaceholder literal in the Deployment's pod template. The template
// files themselves are never modified; each call parses them afresh, so
// identical inputs yield identical bundles.
//
// A template set with no Deployment, or whose Deployment carries no
// placeholder, fails with ErrTemplateMalformed rather than silently deploying
// a stale image. The Deployment must also carry the unit's workload name:
// rollouts are observed under that name, and a mismatch would apply cleanly
// and then wait out the full ceiling against a workload that does not exist.
func RenderFromTemplates(
	unit topology.Unit,
	ref image.Reference,
	dir string,
) (*Bundle, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("error reading template directory %q: %w", dir, err)
	}

	bundle := &Bundle{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".yaml", ".yml":
		default:
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("error reading template %q: %w", path, err)
		}
		if err = parseTemplate(data, bundle); err != nil {
			return nil, fmt.Errorf("error parsing template %q: %w", path, err)
		}
	}

	if bundle.Deployment == nil {
		return nil, NewTemplateMalformedErr(dir, "no Deployment is defined")
	}
	if bundle.Deployment.Name != unit.DeploymentName() {
		return nil, NewTemplateMalformedErr(
			dir,
			fmt.Sprintf(
				"the Deployment is named %q, but the unit's workload must be named %q",
				bundle.Deployment.Name,
				unit.DeploymentName(),
			),
		)
	}

	for _, obj := range bundle.Objects() {
		obj.SetNamespace(unit.Namespace())
	}

	var substitutions int
	containers := bundle.Deployment.Spec.Template.Spec.Containers
	for i := range containers {
		if containers[i].Image == ImagePlaceholder {
			containers[i].Image = ref.String()
			substitutions++
		}
	}
	if substitutions == 0 {
		return nil, NewTemplateMalformedErr(
			dir,
			fmt.Sprintf(
				"the Deployment's pod template does not carry the %s image placeholder",
				ImagePlaceholder,
			),
		)
	}

	return bundle, nil
}

// parseTemplate decodes every document in one template file into its slot in
// the bundle.
func parseTemplate(data []byte, bundle *Bundle) error {
	deserializer := serializer.NewCodecFactory(templateScheme).UniversalDeserializer()
	decoder := kubeyaml.NewYAMLOrJSONDecoder(bytes.NewReader(data), 4096)
	for {
		var ext runtime.RawExtension
		if err := decoder.Decode(&ext); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("decode document: %w", err)
		}
		if len(bytes.TrimSpace(ext.Raw)) == 0 {
			continue
		}
		obj, _, err := deserializer.Decode(ext.Raw, nil, nil)
		if err != nil {
			return fmt.Errorf("decode object: %w", err)
		}
		if err = placeObject(obj, bundle); err != nil {
			return err
		}
	}
}

// placeObject assigns a decoded object to its slot in the bundle, rejecting
// duplicates and kinds that have no place in a deployment unit.
func placeObject(obj runtime.Object, bundle *Bundle) error {
	switch typed := obj.(type) {
	case *corev1.ConfigMap:
		if bundle.ConfigMap != nil {
			return errors.New("templates define more than one ConfigMap")
		}
		bundle.ConfigMap = typed
	case *appsv1.Deployment:
		if bundle.Deployment != nil {
			return errors.New("templates define more than one Deployment")
		}
		bundle.Deployment = typed
	case *corev1.Service:
		if bundle.Service != nil {
			return errors.New("templates define more than one Service")
		}
		bundle.Service = typed
	case *autoscalingv2.HorizontalPodAutoscaler:
		if bundle.HPA != nil {
			return errors.New(
				"templates define more than one HorizontalPodAutoscaler",
			)
		}
		bundle.HPA = typed
	case *networkingv1.Ingress:
		if bundle.Ingress != nil {
			return errors.New("templates define more than one Ingress")
		}
		bundle.Ingress = typed
	default:
		return fmt.Errorf(
			"templates define a %T, which has no place in a deployment unit",
			obj,
		)
	}
	return nil
}
