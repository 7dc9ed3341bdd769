package primitives

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forgebase/depengine/internal/job"
)

func TestStaticEchoesArgumentsAsOutputs(t *testing.T) {
	t.Parallel()

	args := map[string]interface{}{"value": "42", "name": "token"}
	result, err := Static(context.Background(), newFakePC(), &job.Action{Name: "constants"}, args)
	require.NoError(t, err)
	require.Equal(t, args, result.Outputs)
}
