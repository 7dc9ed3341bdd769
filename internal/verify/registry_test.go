package verify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakePlatform struct {
	name   string
	result Result
	err    error
}

func (f fakePlatform) Name() string { return f.name }

func (f fakePlatform) Verify(ctx context.Context, req Request) (Result, error) {
	return f.result, f.err
}

func TestVerifyAllContinuesPastIndividualPlatformFailure(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(fakePlatform{name: "etherscan", result: Result{Platform: "etherscan", Status: StatusVerified}})
	reg.Register(fakePlatform{name: "sourcify", err: errors.New("sourcify: compilation mismatch")})

	outcomes := reg.VerifyAll(context.Background(), []string{"etherscan", "sourcify"}, Request{Address: "0xabc"})
	require.Len(t, outcomes, 2)

	require.True(t, outcomes[0].Succeeded())
	require.False(t, outcomes[1].Succeeded())
	require.Error(t, outcomes[1].Err)
}

func TestVerifyAllReportsUnknownPlatformWithoutAbortingOthers(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(fakePlatform{name: "etherscan", result: Result{Platform: "etherscan", Status: StatusVerified}})

	outcomes := reg.VerifyAll(context.Background(), []string{"nope", "etherscan"}, Request{Address: "0xabc"})
	require.Len(t, outcomes, 2)
	require.Error(t, outcomes[0].Err)
	require.True(t, outcomes[1].Succeeded())
}

func TestOutcomeTreatsSourcifyPartialAsSuccess(t *testing.T) {
	t.Parallel()

	o := Outcome{Platform: "sourcify", Result: Result{Status: StatusPartial}}
	require.True(t, o.Succeeded())
}

func TestIsRetryableEtherscanMessageRecognizesIndexingDelay(t *testing.T) {
	t.Parallel()

	require.True(t, isRetryableEtherscanMessage("Unable to locate ContractCode"))
	require.True(t, isRetryableEtherscanMessage("Pending in queue"))
	require.False(t, isRetryableEtherscanMessage("Compilation error: syntax error"))
}

func TestParseSourcifyStatusDistinguishesPerfectFromPartial(t *testing.T) {
	t.Parallel()

	perfect, err := parseSourcifyStatus(`{"result":[{"status":"perfect"}]}`)
	require.NoError(t, err)
	require.Equal(t, StatusVerified, perfect)

	partial, err := parseSourcifyStatus(`{"result":[{"status":"partial"}]}`)
	require.NoError(t, err)
	require.Equal(t, StatusPartial, partial)

	_, err = parseSourcifyStatus(`{"error":"chain not supported"}`)
	require.Error(t, err)
}
