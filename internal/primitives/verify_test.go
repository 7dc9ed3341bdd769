package primitives

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forgebase/depengine/internal/job"
	"github.com/forgebase/depengine/internal/verify"
)

type stubPlatform struct {
	name   string
	result verify.Result
	err    error
}

func (s stubPlatform) Name() string { return s.name }
func (s stubPlatform) Verify(ctx context.Context, req verify.Request) (verify.Result, error) {
	return s.result, s.err
}

func TestVerifyContractReportsPartialFailureWithoutErroringTheAction(t *testing.T) {
	t.Parallel()

	registry := verify.NewRegistry()
	registry.Register(stubPlatform{name: "etherscan", result: verify.Result{Platform: "etherscan", Status: verify.StatusVerified}})
	registry.Register(stubPlatform{name: "sourcify", err: errors.New("network mismatch")})

	pc := newFakePC()
	pc.registry = registry
	pc.publisher = &fakePublisher{}

	action := &job.Action{Name: "verify_token"}
	result, err := VerifyContract(context.Background(), pc, action, map[string]interface{}{
		"address":   "0xabc",
		"platforms": []interface{}{"etherscan", "sourcify"},
	})
	require.NoError(t, err)
	require.Equal(t, true, result.Outputs["verified"])

	byPlatform := result.Outputs["byPlatform"].(map[string]interface{})
	require.Equal(t, "verified", byPlatform["etherscan"])
	require.Contains(t, byPlatform["sourcify"], "failed")
}

func TestVerifyContractFailsWhenNoPlatformsConfigured(t *testing.T) {
	t.Parallel()

	pc := newFakePC()
	pc.registry = verify.NewRegistry()

	_, err := VerifyContract(context.Background(), pc, &job.Action{Name: "verify_token"}, map[string]interface{}{
		"address": "0xabc",
	})
	require.Error(t, err)
}

func TestVerifyContractRequiresAddress(t *testing.T) {
	t.Parallel()

	pc := newFakePC()
	_, err := VerifyContract(context.Background(), pc, &job.Action{Name: "verify_token"}, map[string]interface{}{})
	require.Error(t, err)
}
