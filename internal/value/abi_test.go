package value

import "testing"

import "github.com/stretchr/testify/require"

func TestABIPackConcatenatesWithoutPadding(t *testing.T) {
	t.Parallel()

	got, err := resolveABIPack(map[string]interface{}{
		"types":  []interface{}{"uint8", "address"},
		"values": []interface{}{"1", "0x0000000000000000000000000000000000000001"},
	})
	require.NoError(t, err)
	// uint8(1) packs as a single byte "01"; the address is 20 raw bytes.
	require.Equal(t, "0x010000000000000000000000000000000000000001", got)
}

func TestMethodFromSignatureComputesSelector(t *testing.T) {
	t.Parallel()

	m, err := methodFromSignature("balanceOf(address)")
	require.NoError(t, err)
	require.Len(t, m.ID, 4)
}

func TestSplitTopLevelRespectsNestedParens(t *testing.T) {
	t.Parallel()

	parts := splitTopLevel("address,(uint256,bool),bytes32")
	require.Equal(t, []string{"address", "(uint256,bool)", "bytes32"}, parts)
}
