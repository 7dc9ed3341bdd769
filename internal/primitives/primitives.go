// Package primitives implements the seven built-in action kinds a job or
// template action can resolve to: send-transaction, send-signed-transaction,
// sign-digest, sign-typed-data, sign-message, static, and verify-contract.
package primitives

import (
	"context"

	"github.com/forgebase/depengine/internal/contract"
	"github.com/forgebase/depengine/internal/job"
	"github.com/forgebase/depengine/internal/ports"
	"github.com/forgebase/depengine/internal/value"
	"github.com/forgebase/depengine/internal/verify"
)

// Context is the view of the Execution Context a primitive handler needs:
// everything value.ResolverContext exposes, plus the signing/broadcast
// surface and the ability to record an action's outputs and emit events.
// engine.ExecutionContext satisfies this interface structurally, so this
// package never imports internal/engine.
type Context interface {
	value.ResolverContext

	Signer() ports.Signer
	Provider() ports.Provider
	ContractRepository() contract.Repository
	VerifyPlatforms() []string
	VerifyRegistry() *verify.Registry

	RunOptions() job.RunOptions
	Logger() ports.Logger
	Publisher() ports.EventPublisher

	// StoreOutput records a resolved value as "<actionName>.<field>" so
	// later actions can reference it.
	StoreOutput(actionName, field string, value interface{})
}

// Result is what a primitive handler returns: the default output fields it
// produced (before HasCustomOutput's override is applied by the
// dispatcher) plus anything worth logging.
type Result struct {
	Outputs map[string]interface{}
}

// Handler executes one action's primitive kind against its resolved
// arguments.
type Handler func(ctx context.Context, pc Context, action *job.Action, args map[string]interface{}) (Result, error)

// Registry maps a primitive type name to its Handler.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry builds the registry of built-in primitives.
func NewRegistry() *Registry {
	r := &Registry{handlers: make(map[string]Handler)}
	r.Register("send-transaction", SendTransaction)
	r.Register("send-signed-transaction", SendSignedTransaction)
	r.Register("sign-digest", SignDigest)
	r.Register("sign-typed-data", SignTypedData)
	r.Register("sign-message", SignMessage)
	r.Register("static", Static)
	r.Register("verify-contract", VerifyContract)
	return r
}

// Register adds or overrides the handler for a primitive kind.
func (r *Registry) Register(kind string, handler Handler) {
	r.handlers[kind] = handler
}

// Lookup returns the handler registered for kind, if any.
func (r *Registry) Lookup(kind string) (Handler, bool) {
	h, ok := r.handlers[kind]
	return h, ok
}
