package primitives

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forgebase/depengine/internal/job"
	"github.com/forgebase/depengine/internal/ports"
)

func TestSendTransactionWaitsForReceiptAndReportsOutputs(t *testing.T) {
	t.Parallel()

	pc := newFakePC()
	pc.signer = &fakeSigner{sendTxHash: "0xhash"}
	pc.provider = &fakeProvider{receipt: &ports.Receipt{TxHash: "0xhash", Status: 1, BlockNumber: 42, GasUsed: 21000}}
	pc.publisher = &fakePublisher{}

	action := &job.Action{Name: "deploy"}
	result, err := SendTransaction(context.Background(), pc, action, map[string]interface{}{
		"to":   "0x0000000000000000000000000000000000000001",
		"data": "0x",
	})
	require.NoError(t, err)
	require.Equal(t, "0xhash", result.Outputs["txHash"])
	require.Equal(t, uint64(42), result.Outputs["blockNumber"])
}

func TestSendTransactionFailsOnRevert(t *testing.T) {
	t.Parallel()

	pc := newFakePC()
	pc.signer = &fakeSigner{sendTxHash: "0xhash"}
	pc.provider = &fakeProvider{receipt: &ports.Receipt{TxHash: "0xhash", Status: 0}}
	pc.publisher = &fakePublisher{}

	action := &job.Action{Name: "deploy"}
	_, err := SendTransaction(context.Background(), pc, action, map[string]interface{}{"to": "0x0000000000000000000000000000000000000001"})
	require.Error(t, err)
}

func TestSendTransactionRejectsInvalidAddress(t *testing.T) {
	t.Parallel()

	pc := newFakePC()
	action := &job.Action{Name: "deploy"}
	_, err := SendTransaction(context.Background(), pc, action, map[string]interface{}{"to": "not-an-address"})
	require.Error(t, err)
}

func TestSendSignedTransactionBroadcastsRawHex(t *testing.T) {
	t.Parallel()

	pc := newFakePC()
	pc.provider = &fakeProvider{
		broadcastHash: "0xraw",
		receipt:       &ports.Receipt{TxHash: "0xraw", Status: 1, ContractAddress: "0xc0ffee"},
	}
	pc.publisher = &fakePublisher{}

	action := &job.Action{Name: "deploy_presigned"}
	result, err := SendSignedTransaction(context.Background(), pc, action, map[string]interface{}{
		"rawTransaction": "0xdeadbeef",
	})
	require.NoError(t, err)
	require.Equal(t, "0xraw", result.Outputs["txHash"])
	require.Equal(t, "0xc0ffee", result.Outputs["address"])
}
