package primitives

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forgebase/depengine/internal/job"
)

func TestSignMessageReturnsSignerOutput(t *testing.T) {
	t.Parallel()

	pc := newFakePC()
	pc.signer = &fakeSigner{signature: "0xsig"}

	result, err := SignMessage(context.Background(), pc, &job.Action{Name: "sign"}, map[string]interface{}{
		"message": "hello",
	})
	require.NoError(t, err)
	require.Equal(t, "0xsig", result.Outputs["signature"])
}

func TestSignDigestRequiresThirtyTwoBytes(t *testing.T) {
	t.Parallel()

	pc := newFakePC()
	pc.signer = &fakeSigner{digest: "0xsig"}

	_, err := SignDigest(context.Background(), pc, &job.Action{Name: "sign"}, map[string]interface{}{
		"digest": "0x0011",
	})
	require.Error(t, err)
}

func TestSignDigestSucceedsWithExactDigest(t *testing.T) {
	t.Parallel()

	pc := newFakePC()
	pc.signer = &fakeSigner{digest: "0xsig"}

	digest := "0x" + fixedHex(32)
	result, err := SignDigest(context.Background(), pc, &job.Action{Name: "sign"}, map[string]interface{}{
		"digest": digest,
	})
	require.NoError(t, err)
	require.Equal(t, "0xsig", result.Outputs["signature"])
}

func TestSignTypedDataRequiresAllFields(t *testing.T) {
	t.Parallel()

	pc := newFakePC()
	pc.signer = &fakeSigner{typedDataSig: "0xsig"}

	_, err := SignTypedData(context.Background(), pc, &job.Action{Name: "sign"}, map[string]interface{}{
		"domain": map[string]interface{}{"name": "Token"},
	})
	require.Error(t, err)
}

func fixedHex(n int) string {
	out := make([]byte, n*2)
	for i := range out {
		out[i] = '0'
	}
	return string(out)
}
