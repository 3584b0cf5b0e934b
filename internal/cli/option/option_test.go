package option

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"k8s.io/cli-runtime/pkg/genericiooptions"
)

func TestBindStreams(t *testing.T) {
	in := strings.NewReader("")
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	opt := NewOption()
	opt.IOStreams = &genericiooptions.IOStreams{In: in, Out: out, ErrOut: errOut}

	cmd := &cobra.Command{Use: "noop"}
	opt.BindStreams(cmd)

	cmd.Print("to out")
	cmd.PrintErr("to err")
	require.Equal(t, "to out", out.String())
	require.Equal(t, "to err", errOut.String())
	require.Equal(t, in, cmd.InOrStdin())
}
