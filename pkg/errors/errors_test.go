package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidationErrorAggregatesFields(t *testing.T) {
	t.Parallel()

	err := NewValidationError("to", "expected a 0x-prefixed address", nil)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, "to", validationErr.Field)
	require.Contains(t, validationErr.Message, "0x-prefixed")
}

func TestDependencyErrorCitesJob(t *testing.T) {
	t.Parallel()

	err := NewDependencyError("deploy-token", "circular dependency detected")

	var depErr *DependencyError
	require.ErrorAs(t, err, &depErr)
	require.Equal(t, "deploy-token", depErr.Job)
	require.Contains(t, err.Error(), "circular dependency")
}

func TestResolutionErrorCitesExpression(t *testing.T) {
	t.Parallel()

	err := NewResolutionError("Contract(Token).abi", "not found in repository relative to jobs/deploy.yaml")

	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	require.Equal(t, "Contract(Token).abi", resErr.Expression)
	require.Contains(t, err.Error(), "jobs/deploy.yaml")
}

func TestRemoteErrorIsRetryableWhenFlagged(t *testing.T) {
	t.Parallel()

	underlying := stdErrors.New("unable to locate contractcode")
	err := NewRemoteError("etherscan.verifysourcecode", true, underlying)

	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	require.True(t, remoteErr.Retryable)
	require.True(t, stdErrors.Is(err, underlying))
}

func TestExecutionErrorIncludesActionContext(t *testing.T) {
	t.Parallel()

	underlying := fmt.Errorf("receipt status 0")
	err := NewExecutionError("deploy_token", underlying)

	var executionErr *ExecutionError
	require.ErrorAs(t, err, &executionErr)
	require.Equal(t, "deploy_token", executionErr.ActionName)
	require.True(t, stdErrors.Is(err, underlying))
}

func TestDomainErrorIncludesSubject(t *testing.T) {
	t.Parallel()

	err := NewDomainError("sourcify", "platform not configured for network")

	var domainErr *DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "sourcify", domainErr.Subject)
	require.Contains(t, err.Error(), "not configured")
}
