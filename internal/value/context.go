// Package value implements the recursive Value resolver: the substrate that
// turns a job.Value (literal, "{{…}}" reference, or tagged spec) into a
// concrete datum, interpreting the small expression language and the
// thirteen value-computation primitives described for the engine.
package value

import (
	"github.com/forgebase/depengine/internal/contract"
	"github.com/forgebase/depengine/internal/job"
	"github.com/forgebase/depengine/internal/ports"
)

// ResolverContext is the narrow view of the Execution Context the resolver
// needs. engine.ExecutionContext implements this interface structurally;
// this package never imports internal/engine, so primitive handlers and the
// engine dispatcher can share the resolver without an import cycle.
type ResolverContext interface {
	// ContextPathValue is the file path currently in scope, used for
	// relative artifact lookup.
	ContextPathValue() string
	// LookupContract resolves a Contract(ID) reference relative to the
	// current context path.
	LookupContract(reference string) (*contract.Contract, error)
	// NetworkValue is the network descriptor for the current run.
	NetworkValue() job.Network
	// JobConstant looks up a job-level constant.
	JobConstant(name string) (interface{}, bool)
	// TopConstant looks up a top-level constant.
	TopConstant(name string) (interface{}, bool)
	// OutputValue looks up a previously stored "<action>.<field>" output.
	OutputValue(key string) (interface{}, bool)
	// ProviderValue is the RPC handle used by call/read-balance/contract-exists.
	ProviderValue() ports.Provider
	// JobCompleted reports whether the named job has already run to
	// completion earlier against this same execution context (used by the
	// job-completed spec kind); completion is not persisted across runs.
	JobCompleted(name string) bool
}
