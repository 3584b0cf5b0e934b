package image

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	ecrtypes "github.com/aws/aws-sdk-go-v2/service/ecr/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/opencontainers/go-digest"
	"github.com/patrickmn/go-cache"

	"github.com/ry111/foundation/internal/logging"
	"github.com/ry111/foundation/internal/topology"
)

// Resolver is an interface for components that can resolve the fully
// qualified image reference a deployment unit should run.
type Resolver interface {
	// Resolve derives the registry host from the caller's own account
	// identity plus the region, verifies the service's repository exists,
	// and selects the track's tag alias unless pin supplies an immutable tag
	// or digest, which takes precedence. Identical inputs under an identical
	// account identity always yield an identical Reference.
	Resolve(
		ctx context.Context,
		svc topology.Service,
		track topology.Track,
		region string,
		pin string,
	) (Reference, error)
}

type ecrResolver struct {
	identityCache *cache.Cache

	// The following behaviors are overridable for testing purposes:

	getAccountIDFn func(ctx context.Context, region string) (string, error)

	repositoryExistsFn func(
		ctx context.Context,
		region string,
		repoName string,
	) (bool, error)
}

// NewResolver returns an implementation of the Resolver interface backed by
// ECR. Account identity lookups are cached since the answer cannot change
// within a run.
func NewResolver() Resolver {
	r := &ecrResolver{
		identityCache: cache.New(
			time.Hour,      // Default ttl for each entry
			10*time.Minute, // Cleanup interval
		),
	}
	r.getAccountIDFn = r.getAccountID
	r.repositoryExistsFn = r.repositoryExists
	return r
}

// Resolve implements the Resolver interface.
func (e *ecrResolver) Resolve(
	ctx context.Context,
	svc topology.Service,
	track topology.Track,
	region string,
	pin string,
) (Reference, error) {
	var account string
	if entry, ok := e.identityCache.Get(region); ok {
		account = entry.(string) // nolint: forcetypeassert
	} else {
		var err error
		if account, err = e.getAccountIDFn(ctx, region); err != nil {
			return Reference{}, NewRegistryUnavailableErr(region, err)
		}
		e.identityCache.Set(region, account, cache.DefaultExpiration)
	}

	exists, err := e.repositoryExistsFn(ctx, region, svc.Repository())
	if err != nil {
		return Reference{}, NewRegistryUnavailableErr(region, err)
	}
	if !exists {
		return Reference{}, NewUnknownServiceErr(svc, region)
	}

	ref := Reference{
		Registry:   fmt.Sprintf("%s.dkr.ecr.%s.amazonaws.com", account, region),
		Repository: svc.Repository(),
	}
	switch {
	case pin == "":
		ref.Tag = track.Tag()
	default:
		if d, err := digest.Parse(pin); err == nil {
			ref.Digest = d
		} else {
			ref.Tag = pin
		}
	}
	if err = ref.Validate(); err != nil {
		return Reference{}, err
	}

	logging.LoggerFromContext(ctx).Debug(
		"resolved image reference",
		"service", svc,
		"track", track,
		"image", ref.String(),
	)
	return ref, nil
}

// getAccountID asks STS who the caller is and returns the account ID that
// owns the region's default registry.
func (e *ecrResolver) getAccountID(
	ctx context.Context,
	region string,
) (string, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return "", fmt.Errorf("error loading AWS config: %w", err)
	}
	output, err := sts.NewFromConfig(cfg).GetCallerIdentity(
		ctx,
		&sts.GetCallerIdentityInput{},
	)
	if err != nil {
		return "", fmt.Errorf("error getting caller identity: %w", err)
	}
	return *output.Account, nil
}

// repositoryExists checks whether the named repository exists in the
// region's registry.
func (e *ecrResolver) repositoryExists(
	ctx context.Context,
	region string,
	repoName string,
) (bool, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return false, fmt.Errorf("error loading AWS config: %w", err)
	}
	if _, err = ecr.NewFromConfig(cfg).DescribeRepositories(
		ctx,
		&ecr.DescribeRepositoriesInput{
			RepositoryNames: []string{repoName},
		},
	); err != nil {
		var notFound *ecrtypes.RepositoryNotFoundException
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("error describing repository %q: %w", repoName, err)
	}
	return true, nil
}
