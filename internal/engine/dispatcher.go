package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/forgebase/depengine/internal/job"
	"github.com/forgebase/depengine/internal/ports"
	"github.com/forgebase/depengine/internal/primitives"
	"github.com/forgebase/depengine/internal/value"
	pkgerrors "github.com/forgebase/depengine/pkg/errors"
)

// Dispatcher runs jobs against one ExecutionContext: it builds each action
// list's dependency graph, walks it in the single serial order the
// scheduler produced, and resolves each action to either a built-in
// primitive or a named template.
type Dispatcher struct {
	Primitives *primitives.Registry
	Templates  map[string]*job.Template
}

// NewDispatcher constructs a Dispatcher with the built-in primitive
// registry and the given template set.
func NewDispatcher(templates map[string]*job.Template) *Dispatcher {
	if templates == nil {
		templates = map[string]*job.Template{}
	}
	return &Dispatcher{Primitives: primitives.NewRegistry(), Templates: templates}
}

// ExecuteJob runs one job to completion: its top-level skip_condition is
// checked first, then its actions run in dependency order, then (when
// PostExecutionCheck is enabled) the skip_condition is re-evaluated to
// confirm the job now reads as done.
func (d *Dispatcher) ExecuteJob(ctx context.Context, ec *ExecutionContext, j *job.Job) error {
	ec.EnterJob(j)
	publish(ec, ports.EventJobStarted, ports.SeverityInfo, map[string]interface{}{"job": j.Name})

	skip, err := evaluateSkip(ctx, ec, j.SkipCondition, nil)
	if err != nil {
		return pkgerrors.NewExecutionError(j.Name, err)
	}
	if skip {
		publish(ec, ports.EventActionSkipped, ports.SeverityInfo, map[string]interface{}{"job": j.Name})
		ec.MarkJobCompleted(j.Name)
		return nil
	}

	graph, err := BuildGraph(j.Actions)
	if err != nil {
		return err
	}
	byName := make(map[string]*job.Action, len(j.Actions))
	for i := range j.Actions {
		byName[j.Actions[i].Name] = &j.Actions[i]
	}

	for _, id := range graph.Order {
		if err := d.executeAction(ctx, ec, byName[id], nil); err != nil {
			return err
		}
	}

	if ec.RunOptions().PostExecutionCheck && len(j.SkipCondition) > 0 {
		stillNotDone, err := evaluateSkip(ctx, ec, j.SkipCondition, nil)
		if err != nil {
			return pkgerrors.NewExecutionError(j.Name, err)
		}
		if !stillNotDone {
			return pkgerrors.NewExecutionError(j.Name, fmt.Errorf("job's skip_condition still evaluates false after running all actions"))
		}
	}

	ec.MarkJobCompleted(j.Name)
	publish(ec, ports.EventJobCompleted, ports.SeverityInfo, map[string]interface{}{"job": j.Name})
	return nil
}

// executeAction resolves one action's arguments against scope, checks its
// skip_condition, and dispatches to either a primitive handler or a named
// template. Default outputs are stored as "<action>.<field>" unless the
// action declares its own Output map, which fully replaces them.
func (d *Dispatcher) executeAction(ctx context.Context, ec *ExecutionContext, action *job.Action, scope map[string]interface{}) error {
	kind, ok := action.EffectiveKind()
	if !ok {
		return pkgerrors.NewValidationError(action.Name, "action has neither a template nor a type", nil)
	}

	skip, err := evaluateSkip(ctx, ec, action.SkipCondition, scope)
	if err != nil {
		return pkgerrors.NewExecutionError(action.Name, err)
	}
	if skip {
		publish(ec, ports.EventActionSkipped, ports.SeverityInfo, map[string]interface{}{"action": action.Name})
		return d.storeActionOutputs(ctx, ec, action, nil, scope)
	}

	publish(ec, ports.EventActionStarted, ports.SeverityInfo, map[string]interface{}{"action": action.Name, "kind": kind})

	args, err := value.ResolveArguments(ctx, action.Arguments, ec, scope)
	if err != nil {
		return pkgerrors.NewExecutionError(action.Name, err)
	}

	var outputs map[string]interface{}
	if tmpl, ok := d.Templates[kind]; ok {
		outputs, err = d.executeTemplate(ctx, ec, tmpl, args)
	} else if handler, ok := d.Primitives.Lookup(kind); ok {
		publish(ec, ports.EventPrimitiveAction, ports.SeverityDebug, map[string]interface{}{"action": action.Name, "primitive": kind})
		var result primitives.Result
		result, err = handler(ctx, ec, action, args)
		outputs = result.Outputs
	} else {
		return pkgerrors.NewValidationError(action.Name, fmt.Sprintf("unrecognized action kind %q", kind), nil)
	}
	if err != nil {
		var domainErr *pkgerrors.DomainError
		if errors.As(err, &domainErr) {
			publish(ec, ports.EventActionSkipped, ports.SeverityWarn, map[string]interface{}{"action": action.Name, "reason": err.Error()})
			return nil
		}
		return err
	}

	return d.storeActionOutputs(ctx, ec, action, outputs, scope)
}

// storeActionOutputs applies invariant 4: a custom Output map fully
// replaces the handler's/template's default outputs rather than merging
// with them. Custom output expressions resolve against a scope that
// includes the default outputs under their bare field names, so
// `output: { hash: "{{txHash}}" }` can still reference them.
func (d *Dispatcher) storeActionOutputs(ctx context.Context, ec *ExecutionContext, action *job.Action, defaults map[string]interface{}, parentScope map[string]interface{}) error {
	if !action.HasCustomOutput() {
		for field, v := range defaults {
			ec.StoreOutput(action.Name, field, v)
			publish(ec, ports.EventOutputStored, ports.SeverityDebug, map[string]interface{}{"action": action.Name, "field": field})
		}
		return nil
	}

	outputScope := make(map[string]interface{}, len(defaults)+len(parentScope))
	for k, v := range parentScope {
		outputScope[k] = v
	}
	for k, v := range defaults {
		outputScope[k] = v
	}

	for field, expr := range action.Output {
		resolved, err := value.Resolve(ctx, expr, ec, outputScope)
		if err != nil {
			return pkgerrors.NewExecutionError(action.Name, err)
		}
		ec.StoreOutput(action.Name, field, resolved)
		publish(ec, ports.EventOutputStored, ports.SeverityDebug, map[string]interface{}{"action": action.Name, "field": field})
	}
	return nil
}

// executeTemplate runs a template invocation: its body resolves against the
// template's own path (artifact references inside a template's actions are
// relative to the callee's file, not the caller's), its optional setup
// block runs first regardless of the template's own skip_condition, then
// its main actions run unless that skip_condition is skip-true. Outputs are
// always resolved — even on the skip path, since many templates compute
// addresses or other values that stay meaningful when deployment itself is
// skipped — against the invocation scope plus every action's stored
// outputs, and become the invocation's default output set.
func (d *Dispatcher) executeTemplate(ctx context.Context, ec *ExecutionContext, tmpl *job.Template, scope map[string]interface{}) (map[string]interface{}, error) {
	publish(ec, ports.EventTemplateEntered, ports.SeverityInfo, map[string]interface{}{"template": tmpl.Name})

	prevPath := ec.SetContextPath(tmpl.Path)
	defer ec.SetContextPath(prevPath)

	if tmpl.Setup != nil {
		setupSkip, err := evaluateSkip(ctx, ec, tmpl.Setup.SkipCondition, scope)
		if err != nil {
			return nil, pkgerrors.NewExecutionError(tmpl.Name, err)
		}
		if !setupSkip {
			publish(ec, ports.EventTemplateSetupBegin, ports.SeverityInfo, map[string]interface{}{"template": tmpl.Name})
			if err := d.executeActionList(ctx, ec, tmpl.Setup.Actions, scope); err != nil {
				return nil, err
			}
			publish(ec, ports.EventTemplateSetupDone, ports.SeverityInfo, map[string]interface{}{"template": tmpl.Name})
		}
	}

	skip, err := evaluateSkip(ctx, ec, tmpl.SkipCondition, scope)
	if err != nil {
		return nil, pkgerrors.NewExecutionError(tmpl.Name, err)
	}

	if skip {
		publish(ec, ports.EventTemplateSkipped, ports.SeverityInfo, map[string]interface{}{"template": tmpl.Name})
	} else {
		if err := d.executeActionList(ctx, ec, tmpl.Actions, scope); err != nil {
			return nil, err
		}

		if ec.RunOptions().PostExecutionCheck && len(tmpl.SkipCondition) > 0 {
			stillNotDone, err := evaluateSkip(ctx, ec, tmpl.SkipCondition, scope)
			if err != nil {
				return nil, pkgerrors.NewExecutionError(tmpl.Name, err)
			}
			if !stillNotDone {
				return nil, pkgerrors.NewExecutionError(tmpl.Name, fmt.Errorf("template's skip_condition still evaluates false after running main actions"))
			}
		}
	}

	outputs, err := value.ResolveArguments(ctx, tmpl.Outputs, ec, scope)
	if err != nil {
		return nil, pkgerrors.NewExecutionError(tmpl.Name, err)
	}

	publish(ec, ports.EventTemplateExited, ports.SeverityInfo, map[string]interface{}{"template": tmpl.Name})
	return outputs, nil
}

func (d *Dispatcher) executeActionList(ctx context.Context, ec *ExecutionContext, actions []job.Action, scope map[string]interface{}) error {
	graph, err := BuildGraph(actions)
	if err != nil {
		return err
	}
	byName := make(map[string]*job.Action, len(actions))
	for i := range actions {
		byName[actions[i].Name] = &actions[i]
	}
	for _, id := range graph.Order {
		if err := d.executeAction(ctx, ec, byName[id], scope); err != nil {
			return err
		}
	}
	return nil
}

// evaluateSkip resolves a skip_condition list: any condition resolving to
// a truthy boolean is enough to skip the enclosing action/template/job.
func evaluateSkip(ctx context.Context, ec *ExecutionContext, conditions []job.Value, scope map[string]interface{}) (bool, error) {
	for _, cond := range conditions {
		resolved, err := value.Resolve(ctx, cond, ec, scope)
		if err != nil {
			return false, err
		}
		truthy, err := coerceBool(resolved)
		if err != nil {
			return false, err
		}
		if truthy {
			return true, nil
		}
	}
	return false, nil
}

func coerceBool(v interface{}) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		return t == "true", nil
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("skip_condition must resolve to a boolean, got %T", v)
	}
}

func publish(ec *ExecutionContext, eventType string, severity ports.Severity, payload interface{}) {
	publisher := ec.Publisher()
	if publisher == nil {
		return
	}
	_ = publisher.Publish(context.Background(), ports.NewEvent(eventType, severity, payload))
}
