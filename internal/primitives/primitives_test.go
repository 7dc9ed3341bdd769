package primitives

import (
	"context"
	"math/big"

	"github.com/forgebase/depengine/internal/contract"
	"github.com/forgebase/depengine/internal/job"
	"github.com/forgebase/depengine/internal/ports"
	"github.com/forgebase/depengine/internal/verify"
)

type fakeSigner struct {
	address      string
	sendTxHash   string
	sendErr      error
	signature    string
	signErr      error
	digest       string
	digestErr    error
	typedDataSig string
}

func (f *fakeSigner) Address() string { return f.address }

func (f *fakeSigner) SendTransaction(ctx context.Context, tx ports.TxRequest) (string, error) {
	return f.sendTxHash, f.sendErr
}

func (f *fakeSigner) EstimateGas(ctx context.Context, tx ports.TxRequest) (uint64, error) {
	return 21000, nil
}

func (f *fakeSigner) SignMessage(ctx context.Context, message []byte) (string, error) {
	return f.signature, f.signErr
}

func (f *fakeSigner) SignTypedData(ctx context.Context, domain, types, message map[string]interface{}, primaryType string) (string, error) {
	return f.typedDataSig, f.signErr
}

func (f *fakeSigner) SignDigest(ctx context.Context, digest []byte) (string, error) {
	return f.digest, f.digestErr
}

type fakeProvider struct {
	broadcastHash string
	broadcastErr  error
	receipt       *ports.Receipt
	receiptErr    error
}

func (f *fakeProvider) GetNetwork(ctx context.Context) (ports.NetworkInfo, error) {
	return ports.NetworkInfo{}, nil
}
func (f *fakeProvider) GetBalance(ctx context.Context, address string) (*big.Int, error) {
	return big.NewInt(0), nil
}
func (f *fakeProvider) GetCode(ctx context.Context, address string) (string, error) {
	return "0x", nil
}
func (f *fakeProvider) Call(ctx context.Context, msg ports.CallMsg) (string, error) { return "0x", nil }
func (f *fakeProvider) EstimateGas(ctx context.Context, msg ports.CallMsg) (uint64, error) {
	return 21000, nil
}
func (f *fakeProvider) BroadcastTransaction(ctx context.Context, rawTxHex string) (string, error) {
	return f.broadcastHash, f.broadcastErr
}
func (f *fakeProvider) WaitForReceipt(ctx context.Context, txHash string) (*ports.Receipt, error) {
	return f.receipt, f.receiptErr
}
func (f *fakeProvider) Destroy() error { return nil }

type fakePublisher struct {
	events []ports.DomainEvent
}

func (f *fakePublisher) Publish(ctx context.Context, event ports.DomainEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakePublisher) Subscribe(eventType string, handler ports.EventHandler) (ports.Subscription, error) {
	return nil, nil
}

type fakePC struct {
	signer    ports.Signer
	provider  ports.Provider
	publisher ports.EventPublisher
	platforms []string
	registry  *verify.Registry
	outputs   map[string]interface{}
	network   job.Network
	completed map[string]bool
}

func newFakePC() *fakePC {
	return &fakePC{
		outputs:   map[string]interface{}{},
		completed: map[string]bool{},
	}
}

func (f *fakePC) ContextPathValue() string { return "" }
func (f *fakePC) LookupContract(reference string) (*contract.Contract, error) {
	return nil, nil
}
func (f *fakePC) NetworkValue() job.Network                 { return f.network }
func (f *fakePC) JobConstant(name string) (interface{}, bool) { return nil, false }
func (f *fakePC) TopConstant(name string) (interface{}, bool) { return nil, false }
func (f *fakePC) OutputValue(key string) (interface{}, bool) {
	v, ok := f.outputs[key]
	return v, ok
}
func (f *fakePC) ProviderValue() ports.Provider   { return f.provider }
func (f *fakePC) JobCompleted(name string) bool   { return f.completed[name] }
func (f *fakePC) Signer() ports.Signer            { return f.signer }
func (f *fakePC) Provider() ports.Provider        { return f.provider }
func (f *fakePC) ContractRepository() contract.Repository { return nil }
func (f *fakePC) VerifyPlatforms() []string       { return f.platforms }
func (f *fakePC) VerifyRegistry() *verify.Registry { return f.registry }
func (f *fakePC) RunOptions() job.RunOptions      { return job.DefaultRunOptions() }
func (f *fakePC) Logger() ports.Logger            { return nil }
func (f *fakePC) Publisher() ports.EventPublisher { return f.publisher }
func (f *fakePC) StoreOutput(actionName, field string, value interface{}) {
	f.outputs[actionName+"."+field] = value
}
