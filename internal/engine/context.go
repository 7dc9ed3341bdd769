package engine

import (
	"sync"

	"github.com/forgebase/depengine/internal/contract"
	"github.com/forgebase/depengine/internal/job"
	"github.com/forgebase/depengine/internal/ports"
	"github.com/forgebase/depengine/internal/verify"
)

// ExecutionContext is the single mutable state one job run shares across
// the scheduler, the resolver, and every primitive action handler. It
// implements value.ResolverContext and primitives.Context structurally —
// neither of those packages imports this one — so the Resolver and the
// primitive handlers can both close over the same run state without an
// import cycle.
type ExecutionContext struct {
	path      string
	contracts contract.Repository
	network   job.Network

	topConstants map[string]interface{}
	jobConstants map[string]interface{}

	provider  ports.Provider
	signer    ports.Signer
	platforms []string
	registry  *verify.Registry

	runOptions job.RunOptions
	logger     ports.Logger
	publisher  ports.EventPublisher

	mu            sync.RWMutex
	outputs       map[string]interface{}
	completedJobs map[string]bool
}

// NewExecutionContext constructs an ExecutionContext for one run. Multiple
// jobs executed in the same invocation (e.g. a deployment pipeline of
// several job files) share one ExecutionContext so later jobs can use
// job-completed against earlier ones and top-level constants stay visible.
func NewExecutionContext(
	contracts contract.Repository,
	network job.Network,
	topConstants map[string]interface{},
	provider ports.Provider,
	signer ports.Signer,
	platforms []string,
	registry *verify.Registry,
	runOptions job.RunOptions,
	logger ports.Logger,
	publisher ports.EventPublisher,
) *ExecutionContext {
	if topConstants == nil {
		topConstants = map[string]interface{}{}
	}
	return &ExecutionContext{
		contracts:     contracts,
		network:       network,
		topConstants:  topConstants,
		provider:      provider,
		signer:        signer,
		platforms:     platforms,
		registry:      registry,
		runOptions:    runOptions,
		logger:        logger,
		publisher:     publisher,
		outputs:       map[string]interface{}{},
		completedJobs: map[string]bool{},
	}
}

// EnterJob rebinds the context path and job-level constants for the job
// about to run. Jobs execute one at a time against a shared
// ExecutionContext, so this just swaps the per-job fields rather than
// allocating a new context.
func (ec *ExecutionContext) EnterJob(j *job.Job) {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	ec.path = j.Path
	ec.jobConstants = j.Constants
}

// MarkJobCompleted records that a job ran to completion, for later
// job-completed() checks.
func (ec *ExecutionContext) MarkJobCompleted(name string) {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	ec.completedJobs[name] = true
}

// SetContextPath rebinds the path artifact references resolve against and
// returns the previous value, so a template invocation can switch to its own
// path for the duration of its body and restore the caller's path after.
func (ec *ExecutionContext) SetContextPath(path string) string {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	prev := ec.path
	ec.path = path
	return prev
}

// --- value.ResolverContext ---

func (ec *ExecutionContext) ContextPathValue() string { return ec.path }

func (ec *ExecutionContext) LookupContract(reference string) (*contract.Contract, error) {
	if ec.contracts == nil {
		return nil, contractRepositoryNotConfigured{}
	}
	return ec.contracts.Lookup(reference, ec.path)
}

func (ec *ExecutionContext) NetworkValue() job.Network { return ec.network }

func (ec *ExecutionContext) JobConstant(name string) (interface{}, bool) {
	ec.mu.RLock()
	defer ec.mu.RUnlock()
	v, ok := ec.jobConstants[name]
	return v, ok
}

func (ec *ExecutionContext) TopConstant(name string) (interface{}, bool) {
	ec.mu.RLock()
	defer ec.mu.RUnlock()
	v, ok := ec.topConstants[name]
	return v, ok
}

func (ec *ExecutionContext) OutputValue(key string) (interface{}, bool) {
	ec.mu.RLock()
	defer ec.mu.RUnlock()
	v, ok := ec.outputs[key]
	return v, ok
}

func (ec *ExecutionContext) ProviderValue() ports.Provider { return ec.provider }

func (ec *ExecutionContext) JobCompleted(name string) bool {
	ec.mu.RLock()
	defer ec.mu.RUnlock()
	return ec.completedJobs[name]
}

// --- primitives.Context (superset of value.ResolverContext) ---

func (ec *ExecutionContext) Signer() ports.Signer   { return ec.signer }
func (ec *ExecutionContext) Provider() ports.Provider { return ec.provider }

func (ec *ExecutionContext) ContractRepository() contract.Repository { return ec.contracts }

func (ec *ExecutionContext) VerifyPlatforms() []string { return ec.platforms }

func (ec *ExecutionContext) VerifyRegistry() *verify.Registry { return ec.registry }

func (ec *ExecutionContext) RunOptions() job.RunOptions { return ec.runOptions }

func (ec *ExecutionContext) Logger() ports.Logger { return ec.logger }

func (ec *ExecutionContext) Publisher() ports.EventPublisher { return ec.publisher }

func (ec *ExecutionContext) StoreOutput(actionName, field string, value interface{}) {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	ec.outputs[actionName+"."+field] = value
}

type contractRepositoryNotConfigured struct{}

func (contractRepositoryNotConfigured) Error() string {
	return "no contract repository is configured for this run"
}
