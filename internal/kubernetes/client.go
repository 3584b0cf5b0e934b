package kubernetes

import (
	"fmt"

	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/ry111/foundation/internal/topology"
)

// NewClient returns a controller-runtime client for the given cluster. The
// cluster's name selects the kubeconfig context of the same name; an empty
// name falls through to whatever context the kubeconfig currently points at.
func NewClient(cluster topology.Cluster) (client.Client, error) {
	cfg, err := restConfig(cluster)
	if err != nil {
		return nil, fmt.Errorf(
			"error loading kubeconfig for cluster %q: %w",
			cluster.Name,
			err,
		)
	}
	cl, err := client.New(cfg, client.Options{Scheme: GetScheme()})
	if err != nil {
		return nil, fmt.Errorf(
			"error building client for cluster %q: %w",
			cluster.Name,
			err,
		)
	}
	return cl, nil
}

func restConfig(cluster topology.Cluster) (*rest.Config, error) {
	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	overrides := &clientcmd.ConfigOverrides{}
	if cluster.Name != "" {
		overrides.CurrentContext = cluster.Name
	}
	return clientcmd.
		NewNonInteractiveDeferredLoadingClientConfig(rules, overrides).
		ClientConfig()
}
