// Package job holds the engine's data model: jobs, templates, actions, and
// the network descriptor they run against. Parsing these shapes out of YAML
// is an external collaborator's job — this package only defines what the
// engine consumes once a job has been loaded.
package job

// Network describes the chain a job executes against.
type Network struct {
	Name       string
	ChainID    uint64
	RPCURL     string
	GasLimit   *uint64
	EVMVersion string
	Testnet    *bool
	Supports   []string
	Custom     map[string]interface{}
}

// Attribute implements the Network().PROP / Network().custom.a.b access
// pattern for the named fields: testnet defaults to false when unset, and
// everything else is a direct struct field lookup. custom.* is not handled
// here; the value resolver walks the Custom map itself.
func (n Network) Attribute(name string) (interface{}, bool) {
	switch name {
	case "name":
		return n.Name, true
	case "chainId":
		return n.ChainID, true
	case "rpcUrl":
		return n.RPCURL, true
	case "gasLimit":
		if n.GasLimit == nil {
			return nil, false
		}
		return *n.GasLimit, true
	case "evmVersion":
		return n.EVMVersion, true
	case "testnet":
		if n.Testnet == nil {
			return false, true
		}
		return *n.Testnet, true
	case "supports":
		return n.Supports, true
	default:
		return nil, false
	}
}

// RunOptions are run-level flags that are not part of the job/template
// document itself.
type RunOptions struct {
	// PostExecutionCheck re-evaluates a job's or template's skip_condition
	// after its actions run and fails if it is not now skip-true. Defaults
	// to on; an operator may opt out for a single run.
	PostExecutionCheck bool
}

// DefaultRunOptions returns the spec-mandated defaults.
func DefaultRunOptions() RunOptions {
	return RunOptions{PostExecutionCheck: true}
}

// Action is either a template invocation or a primitive action. Template
// is non-empty for an invocation naming a Template by name (or a primitive
// kind, in which case it behaves as a primitive action); Type is used for
// the primitive-only shape.
type Action struct {
	Name          string
	Template      string
	Type          string
	Arguments     map[string]Value
	DependsOn     []string
	SkipCondition []Value
	Output        map[string]Value
}

// EffectiveKind returns the template name or primitive type this action
// dispatches to, and false if neither field was set.
func (a Action) EffectiveKind() (string, bool) {
	if a.Template != "" {
		return a.Template, true
	}
	if a.Type != "" {
		return a.Type, true
	}
	return "", false
}

// HasCustomOutput reports whether the action supplied its own output map,
// which fully replaces a primitive's or template's default outputs.
func (a Action) HasCustomOutput() bool {
	return a.Output != nil
}

// TemplateSetup is the optional setup block run before a template's main
// actions.
type TemplateSetup struct {
	Actions       []Action
	SkipCondition []Value
}

// Template is a parameterised, top-to-bottom action sequence with an
// optional setup block and output mapping.
type Template struct {
	Name          string
	Path          string
	Actions       []Action
	Setup         *TemplateSetup
	SkipCondition []Value
	Outputs       map[string]Value
}

// Job is an ordered (by dependency, not file position) collection of
// actions run against one Execution Context.
type Job struct {
	Name          string
	Version       string
	Path          string
	Actions       []Action
	SkipCondition []Value
	Constants     map[string]interface{}
}
