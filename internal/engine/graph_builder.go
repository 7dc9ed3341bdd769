package engine

import (
	"fmt"

	"github.com/forgebase/depengine/internal/job"
	pkgerrors "github.com/forgebase/depengine/pkg/errors"
)

// BuildGraph constructs and topologically sorts the dependency graph for one
// action list (a job's top-level actions, or a template's setup/main
// actions). skip_condition is evaluated per action at dispatch time, not
// here — unlike the teacher's Enabled flag, skipping an action does not
// remove it from the graph, since a later action may still depend on the
// skipped one having "completed" (as a no-op).
func BuildGraph(actions []job.Action) (*Graph, error) {
	graph := NewGraph()
	known := make(map[string]*job.Action, len(actions))

	for i := range actions {
		action := &actions[i]
		if action.Name == "" {
			return nil, pkgerrors.NewDependencyError("", "every action must have a non-empty name")
		}
		if _, err := graph.AddNode(action); err != nil {
			return nil, err
		}
		known[action.Name] = action
	}

	for _, action := range actions {
		for _, dependency := range action.DependsOn {
			if _, ok := known[dependency]; !ok {
				return nil, pkgerrors.NewDependencyError(action.Name, fmt.Sprintf("action %q depends on unknown action %q", action.Name, dependency))
			}
			if err := graph.AddEdge(dependency, action.Name); err != nil {
				return nil, err
			}
		}
	}

	if err := graph.TopologicalSort(); err != nil {
		return nil, err
	}

	return graph, nil
}
