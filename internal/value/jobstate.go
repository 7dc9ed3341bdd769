package value

import pkgerrors "github.com/forgebase/depengine/pkg/errors"

// resolveJobCompleted implements the job-completed spec kind: a boolean
// check used in skip_condition expressions to make a multi-job run
// idempotent ("skip this job's actions if that other job already ran").
func resolveJobCompleted(args map[string]interface{}, rc ResolverContext) (interface{}, error) {
	name, ok := args["job"].(string)
	if !ok || name == "" {
		return nil, pkgerrors.NewValidationError("job", "job-completed requires a job name", nil)
	}
	return rc.JobCompleted(name), nil
}
