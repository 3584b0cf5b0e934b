package teardown

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ry111/foundation/internal/topology"
)

func TestConfirm(t *testing.T) {
	testCases := []struct {
		name       string
		input      string
		assertions func(*testing.T, error)
	}{
		{
			name:  "exact token is accepted",
			input: "DELETE",
			assertions: func(t *testing.T, err error) {
				require.NoError(t, err)
			},
		},
		{
			name:  "lowercase is rejected",
			input: "delete",
			assertions: func(t *testing.T, err error) {
				require.Error(t, err)
				require.True(t, IsConfirmationMismatchErr(err))
				require.Contains(t, err.Error(), "nothing was destroyed")
			},
		},
		{
			name:  "empty input is rejected",
			input: "",
			assertions: func(t *testing.T, err error) {
				require.True(t, IsConfirmationMismatchErr(err))
			},
		},
		{
			name:  "surrounding whitespace is not forgiven",
			input: " DELETE ",
			assertions: func(t *testing.T, err error) {
				require.True(t, IsConfirmationMismatchErr(err))
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			testCase.assertions(t, Confirm(testCase.input))
		})
	}
}

func TestDestroyTrack(t *testing.T) {
	unit := topology.Unit{
		Service: topology.ServiceDawn,
		Track:   topology.TrackRC,
		Cluster: topology.Cluster{Name: "trantor", Region: "us-east-1"},
	}

	testCases := []struct {
		name       string
		coord      *coordinator
		assertions func(*testing.T, bool, error)
	}{
		{
			name: "namespace deleted",
			coord: &coordinator{
				deleteNamespaceFn: func(
					_ context.Context,
					_ topology.Cluster,
					name string,
				) (bool, error) {
					require.Equal(t, "dawn-rc-ns", name)
					return true, nil
				},
			},
			assertions: func(t *testing.T, found bool, err error) {
				require.NoError(t, err)
				require.True(t, found)
			},
		},
		{
			name: "absent namespace is success",
			coord: &coordinator{
				deleteNamespaceFn: func(
					context.Context,
					topology.Cluster,
					string,
				) (bool, error) {
					return false, nil
				},
			},
			assertions: func(t *testing.T, found bool, err error) {
				require.NoError(t, err)
				require.False(t, found)
			},
		},
		{
			name: "errors are wrapped with the unit",
			coord: &coordinator{
				deleteNamespaceFn: func(
					context.Context,
					topology.Cluster,
					string,
				) (bool, error) {
					return false, errors.New("something went wrong")
				},
			},
			assertions: func(t *testing.T, _ bool, err error) {
				require.ErrorContains(t, err, `error deleting namespace "dawn-rc-ns"`)
				require.ErrorContains(t, err, "dawn/rc@trantor")
				require.ErrorContains(t, err, "something went wrong")
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			found, err := testCase.coord.DestroyTrack(context.Background(), unit)
			testCase.assertions(t, found, err)
		})
	}
}

func TestDestroyService(t *testing.T) {
	cluster := topology.Cluster{Name: "trantor", Region: "us-east-1"}

	t.Run("both tracks attempted", func(t *testing.T) {
		var namespaces []string
		c := &coordinator{
			deleteNamespaceFn: func(
				_ context.Context,
				_ topology.Cluster,
				name string,
			) (bool, error) {
				namespaces = append(namespaces, name)
				// Only the prod namespace still exists.
				return name == "day-ns", nil
			},
		}
		found, err := c.DestroyService(
			context.Background(),
			topology.ServiceDay,
			cluster,
		)
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, []string{"day-ns", "day-rc-ns"}, namespaces)
	})

	t.Run("nothing to remove on either track", func(t *testing.T) {
		c := &coordinator{
			deleteNamespaceFn: func(
				context.Context,
				topology.Cluster,
				string,
			) (bool, error) {
				return false, nil
			},
		}
		found, err := c.DestroyService(
			context.Background(),
			topology.ServiceDay,
			cluster,
		)
		require.NoError(t, err)
		require.False(t, found)
	})

	t.Run("one failing track does not stop the other", func(t *testing.T) {
		c := &coordinator{
			deleteNamespaceFn: func(
				_ context.Context,
				_ topology.Cluster,
				name string,
			) (bool, error) {
				if name == "day-ns" {
					return false, errors.New("something went wrong")
				}
				return true, nil
			},
		}
		found, err := c.DestroyService(
			context.Background(),
			topology.ServiceDay,
			cluster,
		)
		require.ErrorContains(t, err, "something went wrong")
		// The rc namespace was still removed.
		require.True(t, found)
	})
}

func TestDestroyCluster(t *testing.T) {
	cluster := topology.Cluster{Name: "terminus", Region: "us-west-2"}

	testCases := []struct {
		name       string
		coord      *coordinator
		assertions func(*testing.T, *coordinator, bool, error)
	}{
		{
			name: "existing cluster is deleted",
			coord: &coordinator{
				clusterExistsFn: func(
					_ context.Context,
					name string,
					region string,
				) (bool, error) {
					require.Equal(t, "terminus", name)
					require.Equal(t, "us-west-2", region)
					return true, nil
				},
				deleteClusterFn: func(
					context.Context,
					string,
					string,
				) error {
					return nil
				},
			},
			assertions: func(t *testing.T, _ *coordinator, found bool, err error) {
				require.NoError(t, err)
				require.True(t, found)
			},
		},
		{
			name: "absent cluster is success and no delete is issued",
			coord: &coordinator{
				clusterExistsFn: func(
					context.Context,
					string,
					string,
				) (bool, error) {
					return false, nil
				},
				deleteClusterFn: func(context.Context, string, string) error {
					t.Fatal("no delete should have been issued")
					return nil
				},
			},
			assertions: func(t *testing.T, _ *coordinator, found bool, err error) {
				require.NoError(t, err)
				require.False(t, found)
			},
		},
		{
			name: "describe errors are wrapped",
			coord: &coordinator{
				clusterExistsFn: func(
					context.Context,
					string,
					string,
				) (bool, error) {
					return false, errors.New("something went wrong")
				},
			},
			assertions: func(t *testing.T, _ *coordinator, _ bool, err error) {
				require.ErrorContains(t, err, `error describing cluster "terminus"`)
				require.ErrorContains(t, err, "something went wrong")
			},
		},
		{
			name: "delete errors are wrapped",
			coord: &coordinator{
				clusterExistsFn: func(
					context.Context,
					string,
					string,
				) (bool, error) {
					return true, nil
				},
				deleteClusterFn: func(context.Context, string, string) error {
					return errors.New("something went wrong")
				},
			},
			assertions: func(t *testing.T, _ *coordinator, _ bool, err error) {
				require.ErrorContains(t, err, `error deleting cluster "terminus"`)
				require.ErrorContains(t, err, "something went wrong")
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			found, err := testCase.coord.DestroyCluster(
				context.Background(),
				cluster,
			)
			testCase.assertions(t, testCase.coord, found, err)
		})
	}
}

func TestDestroyRepository(t *testing.T) {
	testCases := []struct {
		name       string
		coord      *coordinator
		assertions func(*testing.T, bool, error)
	}{
		{
			name: "repository deleted",
			coord: &coordinator{
				deleteRepositoryFn: func(
					_ context.Context,
					repoName string,
					region string,
				) (bool, error) {
					require.Equal(t, "dusk", repoName)
					require.Equal(t, "us-east-1", region)
					return true, nil
				},
			},
			assertions: func(t *testing.T, found bool, err error) {
				require.NoError(t, err)
				require.True(t, found)
			},
		},
		{
			name: "absent repository is success",
			coord: &coordinator{
				deleteRepositoryFn: func(
					context.Context,
					string,
					string,
				) (bool, error) {
					return false, nil
				},
			},
			assertions: func(t *testing.T, found bool, err error) {
				require.NoError(t, err)
				require.False(t, found)
			},
		},
		{
			name: "errors are wrapped",
			coord: &coordinator{
				deleteRepositoryFn: func(
					context.Context,
					string,
					string,
				) (bool, error) {
					return false, errors.New("something went wrong")
				},
			},
			assertions: func(t *testing.T, _ bool, err error) {
				require.ErrorContains(t, err, `error deleting repository "dusk"`)
				require.ErrorContains(t, err, "something went wrong")
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			found, err := testCase.coord.DestroyRepository(
				context.Background(),
				topology.ServiceDusk,
				"us-east-1",
			)
			testCase.assertions(t, found, err)
		})
	}
}
