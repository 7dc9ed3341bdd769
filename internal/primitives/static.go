package primitives

import (
	"context"

	"github.com/forgebase/depengine/internal/job"
)

// Static performs no side effect: its arguments are its outputs, verbatim.
// It exists for jobs to stage already-resolved values under a stable action
// name for later actions to reference.
func Static(ctx context.Context, pc Context, action *job.Action, args map[string]interface{}) (Result, error) {
	return Result{Outputs: args}, nil
}
