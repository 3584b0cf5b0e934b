package image

import (
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/require"
)

func TestReferenceVersion(t *testing.T) {
	ref := Reference{
		Registry:   "123456789012.dkr.ecr.us-east-1.amazonaws.com",
		Repository: "dawn",
		Tag:        "latest",
	}
	require.Equal(t, "latest", ref.Version())

	ref.Tag = ""
	ref.Digest = digest.Digest(
		"sha256:b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9",
	)
	require.Equal(t, "b94d27b9934d", ref.Version())

	require.Empty(t, Reference{}.Version())
}

func TestReferenceValidate(t *testing.T) {
	ref := Reference{
		Registry:   "123456789012.dkr.ecr.us-east-1.amazonaws.com",
		Repository: "day",
		Tag:        "rc",
	}
	require.NoError(t, ref.Validate())

	ref.Tag = "not a tag"
	require.ErrorContains(t, ref.Validate(), "invalid image reference")
}
