package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ry111/foundation/internal/topology"
)

const testDeploymentTemplate = `apiVersion: apps/v1
kind: Deployment
metadata:
  name: day-rc
spec:
  selector:
    matchLabels:
      app: day
      tier: rc
  template:
    metadata:
      labels:
        app: day
        tier: rc
    spec:
      containers:
      - name: day
        image: IMAGE_PLACEHOLDER
        ports:
        - containerPort: 8001
`

const testSupportingTemplates = `apiVersion: v1
kind: Service
metadata:
  name: day-rc-service
spec:
  type: ClusterIP
  selector:
    app: day
    tier: rc
  ports:
  - port: 80
    targetPort: 8001
---
apiVersion: v1
kind: ConfigMap
metadata:
  name: day-rc-config
data:
  LOG_LEVEL: DEBUG
`

func writeTemplates(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(
			t,
			os.WriteFile(filepath.Join(dir, name), []byte(content), 0600),
		)
	}
	return dir
}

func TestRenderFromTemplates(t *testing.T) {
	unit := topology.Unit{
		Service: topology.ServiceDay,
		Track:   topology.TrackRC,
		Cluster: topology.Cluster{Name: "trantor"},
	}

	t.Run("substitutes the placeholder and stamps the namespace", func(t *testing.T) {
		dir := writeTemplates(t, map[string]string{
			"deployment.yaml": testDeploymentTemplate,
			"service.yaml":    testSupportingTemplates,
			"notes.txt":       "not a manifest",
		})

		bundle, err := RenderFromTemplates(unit, testRef, dir)
		require.NoError(t, err)

		require.Equal(
			t,
			"123456789012.dkr.ecr.us-east-1.amazonaws.com/day:rc",
			bundle.Deployment.Spec.Template.Spec.Containers[0].Image,
		)
		for _, obj := range bundle.Objects() {
			require.Equal(t, "day-rc-ns", obj.GetNamespace())
		}
		require.NotNil(t, bundle.Service)
		require.NotNil(t, bundle.ConfigMap)
		require.Nil(t, bundle.Ingress)

		// The template source is never mutated.
		raw, err := os.ReadFile(filepath.Join(dir, "deployment.yaml"))
		require.NoError(t, err)
		require.Contains(t, string(raw), ImagePlaceholder)

		// Rendering again from the same inputs yields identical output.
		again, err := RenderFromTemplates(unit, testRef, dir)
		require.NoError(t, err)
		firstYAML, err := bundle.MarshalYAML()
		require.NoError(t, err)
		againYAML, err := again.MarshalYAML()
		require.NoError(t, err)
		require.Equal(t, firstYAML, againYAML)
	})

	t.Run("missing placeholder is malformed, not a silent no-op", func(t *testing.T) {
		stale := `apiVersion: apps/v1
kind: Deployment
metadata:
  name: day-rc
spec:
  selector:
    matchLabels:
      app: day
  template:
    metadata:
      labels:
        app: day
    spec:
      containers:
      - name: day
        image: example.com/day:stale
`
		dir := writeTemplates(t, map[string]string{"deployment.yaml": stale})

		_, err := RenderFromTemplates(unit, testRef, dir)
		require.True(t, IsTemplateMalformedErr(err))
		require.ErrorContains(t, err, ImagePlaceholder)
	})

	t.Run("a template set without a Deployment is malformed", func(t *testing.T) {
		dir := writeTemplates(t, map[string]string{
			"service.yaml": testSupportingTemplates,
		})

		_, err := RenderFromTemplates(unit, testRef, dir)
		require.True(t, IsTemplateMalformedErr(err))
		require.ErrorContains(t, err, "no Deployment")
	})

	t.Run("a Deployment named for another workload is malformed", func(t *testing.T) {
		// Status is observed under the unit's conventional name. A template
		// that names its Deployment anything else must fail at render time,
		// not wait out the rollout ceiling against a workload that was never
		// created.
		renamed := strings.Replace(
			testDeploymentTemplate,
			"name: day-rc",
			"name: day-canary",
			1,
		)
		dir := writeTemplates(t, map[string]string{"deployment.yaml": renamed})

		_, err := RenderFromTemplates(unit, testRef, dir)
		require.True(t, IsTemplateMalformedErr(err))
		require.ErrorContains(t, err, `named "day-canary"`)
		require.ErrorContains(t, err, `must be named "day-rc"`)
	})

	t.Run("duplicate kinds are rejected", func(t *testing.T) {
		dir := writeTemplates(t, map[string]string{
			"a.yaml": testDeploymentTemplate,
			"b.yaml": testDeploymentTemplate,
		})

		_, err := RenderFromTemplates(unit, testRef, dir)
		require.ErrorContains(t, err, "more than one Deployment")
	})

	t.Run("kinds outside the unit are rejected", func(t *testing.T) {
		dir := writeTemplates(t, map[string]string{
			"deployment.yaml": testDeploymentTemplate,
			"secret.yaml": `apiVersion: v1
kind: Secret
metadata:
  name: day-rc-secret
`,
		})

		_, err := RenderFromTemplates(unit, testRef, dir)
		require.ErrorContains(t, err, "no place in a deployment unit")
	})

	t.Run("missing directory surfaces a read error", func(t *testing.T) {
		_, err := RenderFromTemplates(unit, testRef, "/nonexistent")
		require.ErrorContains(t, err, "error reading template directory")
	})
}
