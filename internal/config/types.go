// Package config holds the YAML-facing document shape a job file decodes
// into and the conversion into the internal/job model the engine runs.
// Value/Spec nodes decode as plain YAML (map[string]interface{},
// []interface{}, scalars) and cross into job.Value through job.FromAny —
// the boundary that package already exposes for exactly this purpose.
// Discovering and wiring multiple files together (imports, a template
// registry spread across a repo) is left to the operator tooling that
// calls this package; config only decodes and validates one document.
package config

import (
	"fmt"

	"github.com/forgebase/depengine/internal/job"
)

// Action is one job or template step as it appears in YAML.
type Action struct {
	Name          string                 `yaml:"name" validate:"required"`
	Template      string                 `yaml:"template,omitempty"`
	Type          string                 `yaml:"type,omitempty"`
	Arguments     map[string]interface{} `yaml:"arguments,omitempty"`
	DependsOn     []string               `yaml:"depends_on,omitempty"`
	SkipCondition []interface{}          `yaml:"skip_condition,omitempty"`
	Output        map[string]interface{} `yaml:"output,omitempty"`
}

// TemplateSetup is a template's optional one-time setup block.
type TemplateSetup struct {
	Actions       []Action      `yaml:"actions" validate:"required,min=1,dive"`
	SkipCondition []interface{} `yaml:"skip_condition,omitempty"`
}

// Template is a reusable, named action sequence.
type Template struct {
	Name          string                 `yaml:"name" validate:"required"`
	Actions       []Action               `yaml:"actions" validate:"required,min=1,dive"`
	Setup         *TemplateSetup         `yaml:"setup,omitempty"`
	SkipCondition []interface{}          `yaml:"skip_condition,omitempty"`
	Outputs       map[string]interface{} `yaml:"outputs,omitempty"`
}

// Network is the chain descriptor a job document targets.
type Network struct {
	Name       string                 `yaml:"name" validate:"required"`
	ChainID    uint64                 `yaml:"chain_id" validate:"required"`
	RPCURL     string                 `yaml:"rpc_url" validate:"required,url"`
	GasLimit   *uint64                `yaml:"gas_limit,omitempty"`
	EVMVersion string                 `yaml:"evm_version,omitempty"`
	Testnet    *bool                  `yaml:"testnet,omitempty"`
	Supports   []string               `yaml:"supports,omitempty"`
	Custom     map[string]interface{} `yaml:"custom,omitempty"`
}

// Job is the top-level document this package decodes: one job plus the
// templates it invokes and the network it targets.
type Job struct {
	Version       string                 `yaml:"version" validate:"required,semver"`
	Name          string                 `yaml:"name" validate:"required,min=1,max=200"`
	Network       Network                `yaml:"network" validate:"required"`
	Constants     map[string]interface{} `yaml:"constants,omitempty"`
	Actions       []Action               `yaml:"actions" validate:"required,min=1,dive"`
	SkipCondition []interface{}          `yaml:"skip_condition,omitempty"`
	Templates     map[string]Template    `yaml:"templates,omitempty" validate:"omitempty,dive"`
}

func toJobValues(vs []interface{}) []job.Value {
	out := make([]job.Value, len(vs))
	for i, v := range vs {
		out[i] = job.FromAny(v)
	}
	return out
}

func toJobValueMap(m map[string]interface{}) map[string]job.Value {
	if m == nil {
		return nil
	}
	out := make(map[string]job.Value, len(m))
	for k, v := range m {
		out[k] = job.FromAny(v)
	}
	return out
}

func toJobAction(a Action) job.Action {
	return job.Action{
		Name:          a.Name,
		Template:      a.Template,
		Type:          a.Type,
		Arguments:     toJobValueMap(a.Arguments),
		DependsOn:     a.DependsOn,
		SkipCondition: toJobValues(a.SkipCondition),
		Output:        toJobValueMap(a.Output),
	}
}

func toJobActions(actions []Action) []job.Action {
	out := make([]job.Action, len(actions))
	for i, a := range actions {
		out[i] = toJobAction(a)
	}
	return out
}

// ToJobTemplate converts a decoded Template into the engine's job.Template.
func ToJobTemplate(t Template, path string) *job.Template {
	out := &job.Template{
		Name:          t.Name,
		Path:          path,
		Actions:       toJobActions(t.Actions),
		SkipCondition: toJobValues(t.SkipCondition),
		Outputs:       toJobValueMap(t.Outputs),
	}
	if t.Setup != nil {
		out.Setup = &job.TemplateSetup{
			Actions:       toJobActions(t.Setup.Actions),
			SkipCondition: toJobValues(t.Setup.SkipCondition),
		}
	}
	return out
}

// ToJobNetwork converts a decoded Network into job.Network.
func ToJobNetwork(n Network) job.Network {
	return job.Network{
		Name:       n.Name,
		ChainID:    n.ChainID,
		RPCURL:     n.RPCURL,
		GasLimit:   n.GasLimit,
		EVMVersion: n.EVMVersion,
		Testnet:    n.Testnet,
		Supports:   n.Supports,
		Custom:     n.Custom,
	}
}

// ToJob converts a fully decoded document into the engine's job.Job and its
// named templates, keyed the way job.Action.Template references them.
func ToJob(path string, doc Job) (*job.Job, map[string]*job.Template) {
	j := &job.Job{
		Name:          doc.Name,
		Version:       doc.Version,
		Path:          path,
		Actions:       toJobActions(doc.Actions),
		SkipCondition: toJobValues(doc.SkipCondition),
		Constants:     doc.Constants,
	}
	templates := make(map[string]*job.Template, len(doc.Templates))
	for name, t := range doc.Templates {
		templates[name] = ToJobTemplate(t, path)
	}
	return j, templates
}

func (j Job) String() string {
	return fmt.Sprintf("job %q (%s) on %s", j.Name, j.Version, j.Network.Name)
}
