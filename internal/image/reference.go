package image

import (
	"fmt"

	"github.com/google/go-containerregistry/pkg/name"
	"github.com/opencontainers/go-digest"
)

// Reference is a fully qualified container image reference: registry host,
// repository, and either a mutable tag or a pinning digest.
type Reference struct {
	// Registry is the registry host, e.g.
	// 123456789012.dkr.ecr.us-east-1.amazonaws.com.
	Registry string
	// Repository is the image repository within the registry.
	Repository string
	// Tag is a tag within the repository. Track aliases (latest, rc) are
	// mutable and can be repointed; any other tag is treated as immutable.
	Tag string
	// Digest pins the image by content. When set it takes precedence over
	// Tag because a digest can never be repointed.
	Digest digest.Digest
}

// String renders the Reference the way container runtimes consume it.
func (r Reference) String() string {
	if r.Digest != "" {
		return fmt.Sprintf("%s/%s@%s", r.Registry, r.Repository, r.Digest)
	}
	return fmt.Sprintf("%s/%s:%s", r.Registry, r.Repository, r.Tag)
}

// Validate checks that the Reference parses as a pullable image reference.
func (r Reference) Validate() error {
	if _, err := name.ParseReference(
		r.String(),
		name.StrictValidation,
	); err != nil {
		return fmt.Errorf("invalid image reference %q: %w", r.String(), err)
	}
	return nil
}

// Version returns a short, label-safe identifier for the image: the tag when
// one is set, otherwise a truncated digest.
func (r Reference) Version() string {
	if r.Tag != "" {
		return r.Tag
	}
	if r.Digest != "" {
		encoded := r.Digest.Encoded()
		if len(encoded) > 12 {
			encoded = encoded[:12]
		}
		return encoded
	}
	return ""
}
