package image

import (
	"errors"
	"fmt"

	"github.com/ry111/foundation/internal/topology"
)

// ErrUnknownService indicates that a service's image repository does not
// exist in the target region's registry.
type ErrUnknownService struct {
	Service topology.Service
	Region  string
}

func IsUnknownServiceErr(target error) bool {
	var err *ErrUnknownService
	return errors.As(target, &err)
}

func NewUnknownServiceErr(svc topology.Service, region string) error {
	return &ErrUnknownService{Service: svc, Region: region}
}

func (e *ErrUnknownService) Error() string {
	return fmt.Sprintf(
		"no image repository named %q exists in region %s",
		e.Service.Repository(),
		e.Region,
	)
}

// ErrRegistryUnavailable indicates that the registry for a region could not
// be determined or reached, usually because the account identity lookup
// failed.
type ErrRegistryUnavailable struct {
	Region string
	Err    error
}

func IsRegistryUnavailableErr(target error) bool {
	var err *ErrRegistryUnavailable
	return errors.As(target, &err)
}

func NewRegistryUnavailableErr(region string, err error) error {
	return &ErrRegistryUnavailable{Region: region, Err: err}
}

func (e *ErrRegistryUnavailable) Error() string {
	return fmt.Sprintf(
		"registry unavailable in region %s: %s",
		e.Region,
		e.Err,
	)
}

func (e *ErrRegistryUnavailable) Unwrap() error {
	return e.Err
}
