package rollout

import (
	"context"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/utils/ptr"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/ry111/foundation/internal/logging"
	"github.com/ry111/foundation/internal/manifest"
	"github.com/ry111/foundation/internal/topology"
)

// Phase is the observed state of a deployment unit's rollout.
type Phase string

const (
	// PhasePending denotes a rollout whose resource specs have not yet been
	// submitted.
	PhasePending Phase = "Pending"
	// PhaseProgressing denotes a rollout the orchestrator is still working
	// on: instances are being replaced and the ready count has not reached
	// the desired count.
	PhaseProgressing Phase = "Progressing"
	// PhaseAvailable denotes a rollout whose desired replica count is met
	// and passing readiness checks.
	PhaseAvailable Phase = "Available"
	// PhaseTimedOut denotes a rollout that was still progressing when the
	// bounded wait elapsed. It is reported, not fatal: the rollout keeps
	// running on the cluster and may yet converge.
	PhaseTimedOut Phase = "TimedOut"
)

// CoordinatorConfig is configuration for the rollout coordinator.
type CoordinatorConfig struct {
	// WaitTimeout bounds how long Apply blocks waiting for a unit to report
	// available. When it elapses the rollout is reported TimedOut and left
	// running for manual follow-up.
	WaitTimeout time.Duration `envconfig:"ROLLOUT_WAIT_TIMEOUT" default:"5m"`
	// PollInterval is how often the coordinator re-observes the workload
	// while waiting.
	PollInterval time.Duration `envconfig:"ROLLOUT_POLL_INTERVAL" default:"5s"`
}

// CoordinatorConfigFromEnv returns a CoordinatorConfig populated from
// environment variables.
func CoordinatorConfigFromEnv() CoordinatorConfig {
	cfg := CoordinatorConfig{}
	envconfig.MustProcess("", &cfg)
	return cfg
}

// Result describes the outcome of an Apply or Status call for one deployment
// unit.
type Result struct {
	Unit  topology.Unit
	Phase Phase
	// Image is the reference the unit's workload currently declares.
	Image string
	// ReadyReplicas and DesiredReplicas are the counts behind Phase.
	ReadyReplicas   int32
	DesiredReplicas int32
	// Messages carries the workload's failure condition messages, if any,
	// so a timed-out rollout can say why it is stuck.
	Messages []string
}

// Coordinator is an interface for components that apply a deployment unit's
// resource specs to a cluster and wait, within a bound, for the workload to
// report available.
type Coordinator interface {
	// Apply submits every resource spec in the bundle, in order, then blocks
	// until the unit's workload reports available or the configured wait
	// ceiling elapses. Errors submitting resources are fatal and abort
	// immediately with nothing further applied; a timeout while waiting is
	// not an error and is reported through the Result's Phase instead. The
	// caller may abandon the wait by canceling ctx; the in-flight rollout on
	// the cluster continues unaffected.
	Apply(
		ctx context.Context,
		unit topology.Unit,
		bundle *manifest.Bundle,
	) (*Result, error)

	// Status observes the unit's workload once, without waiting.
	Status(ctx context.Context, unit topology.Unit) (*Result, error)
}

type coordinator struct {
	cfg CoordinatorConfig

	// The following behaviors are overridable for testing purposes:

	applyResourceFn func(ctx context.Context, obj client.Object) error

	getDeploymentFn func(
		ctx context.Context,
		key client.ObjectKey,
		deploy *appsv1.Deployment,
	) error
}

// NewCoordinator returns an implementation of the Coordinator interface that
// talks to the cluster behind the given client.
func NewCoordinator(cl client.Client, cfg CoordinatorConfig) Coordinator {
	c := &coordinator{cfg: cfg}
	c.applyResourceFn = newApplyResourceFn(cl)
	c.getDeploymentFn = func(
		ctx context.Context,
		key client.ObjectKey,
		deploy *appsv1.Deployment,
	) error {
		return cl.Get(ctx, key, deploy)
	}
	return c
}

// Apply implements the Coordinator interface.
func (c *coordinator) Apply(
	ctx context.Context,
	unit topology.Unit,
	bundle *manifest.Bundle,
) (*Result, error) {
	logger := logging.LoggerFromContext(ctx).WithValues(
		"service", unit.Service,
		"track", unit.Track,
		"cluster", unit.Cluster.Name,
	)

	for _, obj := range bundle.Objects() {
		if err := c.applyResourceFn(ctx, obj); err != nil {
			return nil, fmt.Errorf(
				"error applying %s %q for %s: %w",
				obj.GetObjectKind().GroupVersionKind().Kind,
				obj.GetName(),
				unit,
				err,
			)
		}
		logger.Debug(
			"applied resource",
			"kind", obj.GetObjectKind().GroupVersionKind().Kind,
			"name", obj.GetName(),
		)
	}
	logger.Info("submitted resource specs; waiting for workload availability")

	return c.wait(ctx, unit)
}

// Status implements the Coordinator interface.
func (c *coordinator) Status(
	ctx context.Context,
	unit topology.Unit,
) (*Result, error) {
	return c.observe(ctx, unit)
}

// wait polls the unit's workload until it reports available or the
// configured ceiling elapses. The loop is observe-then-sleep; there is no
// push subscription to the cluster.
func (c *coordinator) wait(
	ctx context.Context,
	unit topology.Unit,
) (*Result, error) {
	logger := logging.LoggerFromContext(ctx)

	deadline := time.NewTimer(c.cfg.WaitTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	var last *Result
	for {
		result, err := c.observe(ctx, unit)
		if err != nil {
			return nil, err
		}
		if result.Phase == PhaseAvailable {
			logger.Info(
				"rollout is available",
				"service", unit.Service,
				"track", unit.Track,
				"cluster", unit.Cluster.Name,
				"replicas", result.ReadyReplicas,
			)
			return result, nil
		}
		last = result

		select {
		case <-ticker.C:
		case <-deadline.C:
			// The bound elapsed first. Report, don't fail: the rollout keeps
			// running on the cluster and partial progress may still
			// converge.
			last.Phase = PhaseTimedOut
			return last, nil
		case <-ctx.Done():
			// The caller abandoned the wait. No rollback; the cluster keeps
			// converging without us.
			return last, ctx.Err()
		}
	}
}

// observe takes one reading of the unit's workload and classifies it.
func (c *coordinator) observe(
	ctx context.Context,
	unit topology.Unit,
) (*Result, error) {
	deploy := &appsv1.Deployment{}
	if err := c.getDeploymentFn(
		ctx,
		client.ObjectKey{
			Namespace: unit.Namespace(),
			Name:      unit.DeploymentName(),
		},
		deploy,
	); err != nil {
		if apierrors.IsNotFound(err) {
			return &Result{Unit: unit, Phase: PhasePending}, nil
		}
		return nil, fmt.Errorf(
			"error observing deployment %q for %s: %w",
			unit.DeploymentName(),
			unit,
			err,
		)
	}

	result := &Result{
		Unit:            unit,
		Phase:           PhaseProgressing,
		DesiredReplicas: ptr.Deref(deploy.Spec.Replicas, 1),
		ReadyReplicas:   deploy.Status.ReadyReplicas,
		Messages:        failureMessages(deploy),
	}
	if len(deploy.Spec.Template.Spec.Containers) > 0 {
		result.Image = deploy.Spec.Template.Spec.Containers[0].Image
	}

	// The definition must have been observed before the replica counts mean
	// anything; a stale generation is always still progressing.
	if deploy.Status.ObservedGeneration < deploy.Generation {
		return result, nil
	}

	desired := result.DesiredReplicas
	updated := deploy.Status.UpdatedReplicas
	outdated := deploy.Status.Replicas - updated
	if updated == desired &&
		deploy.Status.AvailableReplicas == desired &&
		deploy.Status.ReadyReplicas == desired &&
		outdated == 0 {
		result.Phase = PhaseAvailable
	}
	return result, nil
}

// failureMessages collects the condition messages that explain a stuck
// rollout: progress marked false, or replica creation failing outright.
func failureMessages(deploy *appsv1.Deployment) []string {
	var messages []string
	for _, cond := range deploy.Status.Conditions {
		if (cond.Type == appsv1.DeploymentProgressing && cond.Status == corev1.ConditionFalse) ||
			(cond.Type == appsv1.DeploymentReplicaFailure && cond.Status == corev1.ConditionTrue) {
			messages = append(messages, cond.Message)
		}
	}
	return messages
}

// newApplyResourceFn returns a function that creates or updates one resource
// by name. The resource is fetched first so that an "already exists" outcome
// can never be confused with a webhook rejection, then created or updated
// accordingly. An update replaces the object wholesale, so the fields the
// rendered specs leave for the cluster to manage are carried forward from the
// live copy before submitting.
func newApplyResourceFn(
	cl client.Client,
) func(ctx context.Context, obj client.Object) error {
	return func(ctx context.Context, obj client.Object) error {
		existing := obj.DeepCopyObject().(client.Object) // nolint: forcetypeassert
		if err := cl.Get(ctx, client.ObjectKeyFromObject(obj), existing); err != nil {
			if !apierrors.IsNotFound(err) {
				return fmt.Errorf("get resource: %w", err)
			}
			if err = cl.Create(ctx, obj); err != nil {
				return fmt.Errorf("create resource: %w", err)
			}
			return nil
		}
		obj.SetResourceVersion(existing.GetResourceVersion())
		// Rendered Deployments never set a replica count; the autoscaler owns
		// scale. On update the server defaults an absent count to 1 instead
		// of keeping the live one, so carry the live count forward.
		if desired, ok := obj.(*appsv1.Deployment); ok && desired.Spec.Replicas == nil {
			if live, ok := existing.(*appsv1.Deployment); ok {
				desired.Spec.Replicas = live.Spec.Replicas
			}
		}
		if err := cl.Update(ctx, obj); err != nil {
			return fmt.Errorf("update resource: %w", err)
		}
		return nil
	}
}
