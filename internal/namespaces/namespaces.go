package namespaces

import (
	"context"
	"errors"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/ry111/foundation/internal/logging"
)

// ErrPermissionDenied indicates the caller's credentials lack namespace
// creation rights. It is fatal to the whole rollout and never retried.
type ErrPermissionDenied struct {
	Namespace string
	Err       error
}

func IsPermissionDeniedErr(target error) bool {
	var err *ErrPermissionDenied
	return errors.As(target, &err)
}

func NewPermissionDeniedErr(namespace string, err error) error {
	return &ErrPermissionDenied{Namespace: namespace, Err: err}
}

func (e *ErrPermissionDenied) Error() string {
	return fmt.Sprintf(
		"not permitted to create namespace %q: %s",
		e.Namespace,
		e.Err,
	)
}

func (e *ErrPermissionDenied) Unwrap() error {
	return e.Err
}

// Allocator is an interface for components that ensure target namespaces
// exist before dependent resources are applied into them.
type Allocator interface {
	// Ensure returns the named namespace, creating it if absent. Calling it
	// any number of times yields exactly one namespace; an existing one is
	// returned unchanged, labels and all.
	Ensure(
		ctx context.Context,
		name string,
		labels map[string]string,
	) (*corev1.Namespace, error)
}

type allocator struct {
	cl client.Client
}

// NewAllocator returns an implementation of the Allocator interface backed
// by the given cluster client.
func NewAllocator(cl client.Client) Allocator {
	return &allocator{cl: cl}
}

// Ensure implements the Allocator interface.
func (a *allocator) Ensure(
	ctx context.Context,
	name string,
	labels map[string]string,
) (*corev1.Namespace, error) {
	ns := &corev1.Namespace{
		ObjectMeta: metav1.ObjectMeta{
			Name:   name,
			Labels: labels,
		},
	}
	err := a.cl.Create(ctx, ns)
	if err == nil {
		logging.LoggerFromContext(ctx).Debug(
			"created namespace",
			"namespace", name,
		)
		return ns, nil
	}
	if apierrors.IsForbidden(err) {
		return nil, NewPermissionDeniedErr(name, err)
	}
	if !apierrors.IsAlreadyExists(err) {
		return nil, fmt.Errorf("error creating namespace %q: %w", name, err)
	}

	existing := &corev1.Namespace{}
	if err = a.cl.Get(
		ctx,
		client.ObjectKey{Name: name},
		existing,
	); err != nil {
		return nil, fmt.Errorf("error getting namespace %q: %w", name, err)
	}
	return existing, nil
}
