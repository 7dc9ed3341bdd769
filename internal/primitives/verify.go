package primitives

import (
	"context"
	"fmt"

	"github.com/forgebase/depengine/internal/job"
	"github.com/forgebase/depengine/internal/ports"
	"github.com/forgebase/depengine/internal/verify"
	pkgerrors "github.com/forgebase/depengine/pkg/errors"
)

// VerifyContract is the verify-contract primitive. It never fails the
// action over an individual platform's verification failing — that is a
// DomainError surfaced per-platform as a warn-level event, not an
// ExecutionError — since a job deploying to five chains that only has an
// Etherscan key for one of them is a normal, not an exceptional, shape.
// The action only returns an error when it cannot even attempt
// verification: the registry was never wired up, or no platforms were
// requested.
func VerifyContract(ctx context.Context, pc Context, action *job.Action, args map[string]interface{}) (Result, error) {
	address, ok := args["address"].(string)
	if !ok || address == "" {
		return Result{}, pkgerrors.NewValidationError("address", "verify-contract requires an address", nil)
	}

	platforms, ok := args["platforms"].([]interface{})
	var names []string
	if ok {
		for _, p := range platforms {
			if s, ok := p.(string); ok {
				names = append(names, s)
			}
		}
	}
	if len(names) == 0 {
		names = pc.VerifyPlatforms()
	}
	if len(names) == 0 {
		return Result{}, pkgerrors.NewDomainError(action.Name, "no verification platforms configured")
	}

	req := verify.Request{Address: address}
	if v, ok := args["contractName"].(string); ok {
		req.ContractName = v
	}
	if v, ok := args["sourceName"].(string); ok {
		req.SourceName = v
	}
	if v, ok := args["abi"].(string); ok {
		req.ABI = v
	}
	if v, ok := args["source"].(string); ok {
		req.Source = v
	}
	if v, ok := args["compiler"].(string); ok {
		req.Compiler = v
	}
	if v, ok := args["constructorArguments"].(string); ok {
		req.ConstructorArgs = v
	}

	registry := pc.VerifyRegistry()
	if registry == nil {
		return Result{}, pkgerrors.NewDomainError(action.Name, "verification registry is not configured")
	}

	publish(pc, ports.EventVerificationStarted, ports.SeverityInfo, map[string]interface{}{
		"action":    action.Name,
		"address":   address,
		"platforms": names,
	})

	outcomes := registry.VerifyAll(ctx, names, req)

	statuses := make(map[string]interface{}, len(outcomes))
	anySucceeded := false
	for _, outcome := range outcomes {
		if outcome.Succeeded() {
			anySucceeded = true
			statuses[outcome.Platform] = string(outcome.Result.Status)
			publish(pc, ports.EventVerificationCompleted, ports.SeverityInfo, map[string]interface{}{
				"action":   action.Name,
				"platform": outcome.Platform,
				"status":   outcome.Result.Status,
			})
			continue
		}
		message := ""
		if outcome.Err != nil {
			message = outcome.Err.Error()
		}
		statuses[outcome.Platform] = fmt.Sprintf("failed: %s", message)
		publish(pc, ports.EventVerificationFailed, ports.SeverityWarn, map[string]interface{}{
			"action":   action.Name,
			"platform": outcome.Platform,
			"error":    message,
		})
	}

	return Result{Outputs: map[string]interface{}{
		"verified":   anySucceeded,
		"byPlatform": statuses,
	}}, nil
}
