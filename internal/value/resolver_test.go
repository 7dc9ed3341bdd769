package value

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forgebase/depengine/internal/contract"
	"github.com/forgebase/depengine/internal/job"
	"github.com/forgebase/depengine/internal/ports"
)

// fakeContext is a minimal ResolverContext double for resolver tests; it
// does not touch the network, so ProviderValue is only exercised by tests
// that set provider explicitly.
type fakeContext struct {
	path      string
	contracts map[string]*contract.Contract
	network   job.Network
	jobConst  map[string]interface{}
	topConst  map[string]interface{}
	outputs   map[string]interface{}
	provider  ports.Provider
	completed map[string]bool
}

func newFakeContext() *fakeContext {
	return &fakeContext{
		contracts: map[string]*contract.Contract{},
		jobConst:  map[string]interface{}{},
		topConst:  map[string]interface{}{},
		outputs:   map[string]interface{}{},
		completed: map[string]bool{},
	}
}

func (f *fakeContext) ContextPathValue() string { return f.path }

func (f *fakeContext) LookupContract(reference string) (*contract.Contract, error) {
	c, ok := f.contracts[reference]
	if !ok {
		return nil, errNotFound(reference)
	}
	return c, nil
}

func (f *fakeContext) NetworkValue() job.Network { return f.network }

func (f *fakeContext) JobConstant(name string) (interface{}, bool) {
	v, ok := f.jobConst[name]
	return v, ok
}

func (f *fakeContext) TopConstant(name string) (interface{}, bool) {
	v, ok := f.topConst[name]
	return v, ok
}

func (f *fakeContext) OutputValue(key string) (interface{}, bool) {
	v, ok := f.outputs[key]
	return v, ok
}

func (f *fakeContext) ProviderValue() ports.Provider { return f.provider }

func (f *fakeContext) JobCompleted(name string) bool { return f.completed[name] }

type notFoundErr struct{ reference string }

func (e notFoundErr) Error() string { return "contract not found: " + e.reference }

func errNotFound(reference string) error { return notFoundErr{reference: reference} }

func TestBasicArithmeticAdd(t *testing.T) {
	t.Parallel()

	v := job.NewSpec("basic-arithmetic", map[string]job.Value{
		"operation": job.Lit("add"),
		"values":    job.Value{Kind: job.KindArray, Array: []job.Value{job.Lit("1"), job.Lit("2"), job.Lit("39")}},
	})

	got, err := Resolve(context.Background(), v, newFakeContext(), nil)
	require.NoError(t, err)
	require.Equal(t, "42", got)
}

func TestBasicArithmeticDivisionByZeroFails(t *testing.T) {
	t.Parallel()

	v := job.NewSpec("basic-arithmetic", map[string]job.Value{
		"operation": job.Lit("div"),
		"values":    job.Value{Kind: job.KindArray, Array: []job.Value{job.Lit("10"), job.Lit("0")}},
	})

	_, err := Resolve(context.Background(), v, newFakeContext(), nil)
	require.Error(t, err)
}

func TestComputeCreate2MatchesKnownVector(t *testing.T) {
	t.Parallel()

	v := job.NewSpec("compute-create2", map[string]job.Value{
		"address":  job.Lit("0x0000000000000000000000000000000000000000"),
		"salt":     job.Lit("0x0000000000000000000000000000000000000000000000000000000000000000"),
		"initCode": job.Lit("0x00"),
	})

	got, err := Resolve(context.Background(), v, newFakeContext(), nil)
	require.NoError(t, err)
	require.Equal(t, "0x4D1A2e2bB4F88F0250f26Ffff098B0b30B26BF38", got)
}

func TestSliceBytesNegativeIndices(t *testing.T) {
	t.Parallel()

	v := job.NewSpec("slice-bytes", map[string]job.Value{
		"data":  job.Lit("0x0102030405"),
		"start": job.Lit("-2"),
	})

	got, err := Resolve(context.Background(), v, newFakeContext(), nil)
	require.NoError(t, err)
	require.Equal(t, "0x0405", got)
}

func TestSliceBytesNegativeEnd(t *testing.T) {
	t.Parallel()

	v := job.NewSpec("slice-bytes", map[string]job.Value{
		"data": job.Lit("0x0102030405"),
		"end":  job.Lit("-1"),
	})

	got, err := Resolve(context.Background(), v, newFakeContext(), nil)
	require.NoError(t, err)
	require.Equal(t, "0x01020304", got)
}

func TestReadJSONNavigatesArrayAndObjectPath(t *testing.T) {
	t.Parallel()

	v := job.NewSpec("read-json", map[string]job.Value{
		"json": job.Lit(`{"deployments":[{"address":"0xabc"},{"address":"0xdef"}]}`),
		"path": job.Lit("deployments[1].address"),
	})

	got, err := Resolve(context.Background(), v, newFakeContext(), nil)
	require.NoError(t, err)
	require.Equal(t, "0xdef", got)
}

func TestReadJSONMissingKeyIsResolutionFailure(t *testing.T) {
	t.Parallel()

	v := job.NewSpec("read-json", map[string]job.Value{
		"json": job.Lit(`{"a":1}`),
		"path": job.Lit("b"),
	})

	_, err := Resolve(context.Background(), v, newFakeContext(), nil)
	require.Error(t, err)
}

func TestConstructorEncodeAppendsToCreationCode(t *testing.T) {
	t.Parallel()

	v := job.NewSpec("constructor-encode", map[string]job.Value{
		"creationCode": job.Lit("0x6001"),
		"types":        job.Value{Kind: job.KindArray, Array: []job.Value{job.Lit("uint256")}},
		"values":       job.Value{Kind: job.KindArray, Array: []job.Value{job.Lit("1")}},
	})

	got, err := Resolve(context.Background(), v, newFakeContext(), nil)
	require.NoError(t, err)
	s, ok := got.(string)
	require.True(t, ok)
	require.Equal(t, "0x6001", s[:6])
	require.Len(t, s, 6+64) // creation code + one padded uint256 word
}

func TestABIEncodeProducesSelectorPrefixedCallData(t *testing.T) {
	t.Parallel()

	v := job.NewSpec("abi-encode", map[string]job.Value{
		"signature": job.Lit("transfer(address,uint256)"),
		"values": job.Value{Kind: job.KindArray, Array: []job.Value{
			job.Lit("0x0000000000000000000000000000000000000001"),
			job.Lit("100"),
		}},
	})

	got, err := Resolve(context.Background(), v, newFakeContext(), nil)
	require.NoError(t, err)
	s, ok := got.(string)
	require.True(t, ok)
	// transfer(address,uint256) selector is 0xa9059cbb.
	require.Equal(t, "0xa9059cbb", s[:10])
}

func TestResolveExpressionChecksScopeBeforeConstants(t *testing.T) {
	t.Parallel()

	fc := newFakeContext()
	fc.jobConst["x"] = "from-job-constant"

	resolved, err := resolveExpression(context.Background(), "x", fc, map[string]interface{}{"x": "from-scope"})
	require.NoError(t, err)
	require.Equal(t, "from-scope", resolved)
}

func TestResolveExpressionChecksConstantsBeforeOutputs(t *testing.T) {
	t.Parallel()

	fc := newFakeContext()
	fc.jobConst["x"] = "from-job-constant"
	fc.outputs["x"] = "from-output"

	resolved, err := resolveExpression(context.Background(), "x", fc, nil)
	require.NoError(t, err)
	require.Equal(t, "from-job-constant", resolved, "a constant shadowed by a same-named output must still win")
}

func TestResolveExpressionFallsBackToOutputWhenNoConstantMatches(t *testing.T) {
	t.Parallel()

	fc := newFakeContext()
	fc.outputs["deploy.address"] = "0xdeployed"

	resolved, err := resolveExpression(context.Background(), "deploy.address", fc, nil)
	require.NoError(t, err)
	require.Equal(t, "0xdeployed", resolved)
}

func TestResolveExpressionUnresolvedReferenceIsResolutionError(t *testing.T) {
	t.Parallel()

	_, err := resolveExpression(context.Background(), "nowhere.atall", newFakeContext(), nil)
	require.Error(t, err)
}

func TestNetworkAttributeAccess(t *testing.T) {
	t.Parallel()

	fc := newFakeContext()
	fc.network = job.Network{Name: "sepolia", ChainID: 11155111}

	resolved, err := resolveExpression(context.Background(), "Network().chainId", fc, nil)
	require.NoError(t, err)
	require.Equal(t, uint64(11155111), resolved)
}

func TestContractPropertyAccess(t *testing.T) {
	t.Parallel()

	fc := newFakeContext()
	fc.contracts["Token"] = &contract.Contract{ContractName: "Token", ABI: "[]"}

	resolved, err := resolveExpression(context.Background(), "Contract(Token).abi", fc, nil)
	require.NoError(t, err)
	require.Equal(t, "[]", resolved)
}
