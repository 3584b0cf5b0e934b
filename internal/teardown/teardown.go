package teardown

import (
	"context"
	goerrors "errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	ecrtypes "github.com/aws/aws-sdk-go-v2/service/ecr/types"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	ekstypes "github.com/aws/aws-sdk-go-v2/service/eks/types"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/ry111/foundation/internal/kubernetes"
	"github.com/ry111/foundation/internal/logging"
	"github.com/ry111/foundation/internal/topology"
)

// ConfirmationToken is the literal a caller must supply, byte for byte,
// before any destroy runs.
const ConfirmationToken = "DELETE"

// Confirm gates every destroy behind the confirmation token. The match is
// exact and case-sensitive, so "delete" is rejected.
func Confirm(input string) error {
	if input != ConfirmationToken {
		return NewConfirmationMismatchErr(input)
	}
	return nil
}

// Coordinator is an interface for components that can destroy deployment
// topology at progressively wider scopes. Destroys are idempotent: an absent
// target reports success with found == false instead of an error.
type Coordinator interface {
	// DestroyTrack deletes one deployment unit by deleting its namespace;
	// the cluster cascades the deletion to every resource inside it.
	DestroyTrack(ctx context.Context, unit topology.Unit) (found bool, err error)
	// DestroyService removes both of the service's tracks from the cluster.
	// found is true if either track had anything left to remove.
	DestroyService(
		ctx context.Context,
		svc topology.Service,
		cluster topology.Cluster,
	) (found bool, err error)
	// DestroyCluster deletes the named EKS cluster. The provisioner cascades
	// the teardown of everything the cluster hosts, load balancer included;
	// this call only confirms the cluster exists and issues the delete.
	DestroyCluster(
		ctx context.Context,
		cluster topology.Cluster,
	) (found bool, err error)
	// DestroyRepository force-deletes the service's image repository,
	// resident images included.
	DestroyRepository(
		ctx context.Context,
		svc topology.Service,
		region string,
	) (found bool, err error)
}

type coordinator struct {
	// The following behaviors are overridable for testing purposes:

	deleteNamespaceFn func(
		ctx context.Context,
		cluster topology.Cluster,
		name string,
	) (bool, error)

	clusterExistsFn func(
		ctx context.Context,
		name string,
		region string,
	) (bool, error)

	deleteClusterFn func(ctx context.Context, name string, region string) error

	deleteRepositoryFn func(
		ctx context.Context,
		repoName string,
		region string,
	) (bool, error)
}

// NewCoordinator returns an implementation of the Coordinator interface that
// deletes namespaces through the cluster's API server and clusters and
// repositories through the AWS control plane.
func NewCoordinator() Coordinator {
	c := &coordinator{}
	c.deleteNamespaceFn = deleteNamespace
	c.clusterExistsFn = clusterExists
	c.deleteClusterFn = deleteCluster
	c.deleteRepositoryFn = deleteRepository
	return c
}

// DestroyTrack implements the Coordinator interface.
func (c *coordinator) DestroyTrack(
	ctx context.Context,
	unit topology.Unit,
) (bool, error) {
	logger := logging.LoggerFromContext(ctx).WithValues(
		"service", unit.Service,
		"track", unit.Track,
		"cluster", unit.Cluster.Name,
	)

	found, err := c.deleteNamespaceFn(ctx, unit.Cluster, unit.Namespace())
	if err != nil {
		return false, fmt.Errorf(
			"error deleting namespace %q for %s: %w",
			unit.Namespace(),
			unit,
			err,
		)
	}
	if !found {
		logger.Info("namespace already absent", "namespace", unit.Namespace())
		return false, nil
	}
	logger.Info("deleted namespace", "namespace", unit.Namespace())
	return true, nil
}

// DestroyService implements the Coordinator interface.
func (c *coordinator) DestroyService(
	ctx context.Context,
	svc topology.Service,
	cluster topology.Cluster,
) (bool, error) {
	var found bool
	var errs []error
	for _, track := range topology.AllTracks() {
		trackFound, err := c.DestroyTrack(ctx, topology.Unit{
			Service: svc,
			Track:   track,
			Cluster: cluster,
		})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		found = found || trackFound
	}
	return found, goerrors.Join(errs...)
}

// DestroyCluster implements the Coordinator interface.
func (c *coordinator) DestroyCluster(
	ctx context.Context,
	cluster topology.Cluster,
) (bool, error) {
	logger := logging.LoggerFromContext(ctx).WithValues(
		"cluster", cluster.Name,
		"region", cluster.Region,
	)

	exists, err := c.clusterExistsFn(ctx, cluster.Name, cluster.Region)
	if err != nil {
		return false, fmt.Errorf(
			"error describing cluster %q: %w",
			cluster.Name,
			err,
		)
	}
	if !exists {
		logger.Info("cluster already absent")
		return false, nil
	}
	if err = c.deleteClusterFn(ctx, cluster.Name, cluster.Region); err != nil {
		return false, fmt.Errorf(
			"error deleting cluster %q: %w",
			cluster.Name,
			err,
		)
	}
	logger.Info("deleted cluster")
	return true, nil
}

// DestroyRepository implements the Coordinator interface.
func (c *coordinator) DestroyRepository(
	ctx context.Context,
	svc topology.Service,
	region string,
) (bool, error) {
	logger := logging.LoggerFromContext(ctx).WithValues(
		"service", svc,
		"region", region,
	)

	found, err := c.deleteRepositoryFn(ctx, svc.Repository(), region)
	if err != nil {
		return false, fmt.Errorf(
			"error deleting repository %q: %w",
			svc.Repository(),
			err,
		)
	}
	if !found {
		logger.Info("repository already absent", "repository", svc.Repository())
		return false, nil
	}
	logger.Info("deleted repository", "repository", svc.Repository())
	return true, nil
}

// deleteNamespace removes the named namespace from the cluster. It reports
// false without error when the namespace does not exist.
func deleteNamespace(
	ctx context.Context,
	cluster topology.Cluster,
	name string,
) (bool, error) {
	cl, err := kubernetes.NewClient(cluster)
	if err != nil {
		return false, err
	}
	ns := &corev1.Namespace{
		ObjectMeta: metav1.ObjectMeta{Name: name},
	}
	if err = cl.Delete(ctx, ns); err != nil {
		if apierrors.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// clusterExists checks for the named EKS cluster in the region.
func clusterExists(
	ctx context.Context,
	name string,
	region string,
) (bool, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return false, fmt.Errorf("error loading AWS config: %w", err)
	}
	if _, err = eks.NewFromConfig(cfg).DescribeCluster(
		ctx,
		&eks.DescribeClusterInput{Name: aws.String(name)},
	); err != nil {
		var notFound *ekstypes.ResourceNotFoundException
		if goerrors.As(err, &notFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// deleteCluster issues the EKS cluster delete. The call returns as soon as
// the control plane accepts it; the actual teardown is asynchronous.
func deleteCluster(ctx context.Context, name string, region string) error {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return fmt.Errorf("error loading AWS config: %w", err)
	}
	_, err = eks.NewFromConfig(cfg).DeleteCluster(
		ctx,
		&eks.DeleteClusterInput{Name: aws.String(name)},
	)
	return err
}

// deleteRepository force-deletes the named ECR repository. It reports false
// without error when the repository does not exist.
func deleteRepository(
	ctx context.Context,
	repoName string,
	region string,
) (bool, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return false, fmt.Errorf("error loading AWS config: %w", err)
	}
	if _, err = ecr.NewFromConfig(cfg).DeleteRepository(
		ctx,
		&ecr.DeleteRepositoryInput{
			RepositoryName: aws.String(repoName),
			// Delete resident images along with the repository.
			Force: true,
		},
	); err != nil {
		var notFound *ecrtypes.RepositoryNotFoundException
		if goerrors.As(err, &notFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
