package value

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/forgebase/depengine/internal/ports"
	pkgerrors "github.com/forgebase/depengine/pkg/errors"
)

// resolveComputeCreate implements compute-create: the legacy CREATE address
// derivation, keccak256(rlp([sender, nonce]))[12:], via go-ethereum's
// crypto.CreateAddress.
func resolveComputeCreate(args map[string]interface{}) (interface{}, error) {
	addrStr, ok := args["address"].(string)
	if !ok || !common.IsHexAddress(addrStr) {
		return nil, pkgerrors.NewValidationError("address", "compute-create requires a valid hex address", nil)
	}
	nonce, err := toUint64(args["nonce"])
	if err != nil {
		return nil, pkgerrors.NewValidationError("nonce", err.Error(), err)
	}
	addr := crypto.CreateAddress(common.HexToAddress(addrStr), nonce)
	return addr.Hex(), nil
}

// resolveComputeCreate2 implements compute-create2:
// keccak256(0xff ++ address ++ salt ++ keccak256(initCode))[12:].
func resolveComputeCreate2(args map[string]interface{}) (interface{}, error) {
	addrStr, ok := args["address"].(string)
	if !ok || !common.IsHexAddress(addrStr) {
		return nil, pkgerrors.NewValidationError("address", "compute-create2 requires a valid hex address", nil)
	}
	saltRaw, ok := args["salt"].(string)
	if !ok {
		return nil, pkgerrors.NewValidationError("salt", "compute-create2 requires a hex salt", nil)
	}
	saltBytes, err := decodeBytesLike(saltRaw)
	if err != nil {
		return nil, pkgerrors.NewValidationError("salt", err.Error(), err)
	}
	var salt [32]byte
	if len(saltBytes) > 32 {
		return nil, pkgerrors.NewValidationError("salt", "salt must be at most 32 bytes", nil)
	}
	copy(salt[32-len(saltBytes):], saltBytes)

	initCodeRaw, ok := args["initCode"].(string)
	if !ok {
		return nil, pkgerrors.NewValidationError("initCode", "compute-create2 requires init code", nil)
	}
	initCode, err := decodeBytesLike(initCodeRaw)
	if err != nil {
		return nil, pkgerrors.NewValidationError("initCode", err.Error(), err)
	}

	initCodeHash := crypto.Keccak256(initCode)
	addr := crypto.CreateAddress2(common.HexToAddress(addrStr), salt, initCodeHash)
	return addr.Hex(), nil
}

// resolveReadBalance implements read-balance: the native-token balance of
// an address, as a base-10 string (matching basic-arithmetic's operand
// convention so the two compose without a separate cast step).
func resolveReadBalance(ctx context.Context, args map[string]interface{}, rc ResolverContext) (interface{}, error) {
	addrStr, ok := args["address"].(string)
	if !ok || !common.IsHexAddress(addrStr) {
		return nil, pkgerrors.NewValidationError("address", "read-balance requires a valid hex address", nil)
	}
	balance, err := rc.ProviderValue().GetBalance(ctx, addrStr)
	if err != nil {
		return nil, pkgerrors.NewRemoteError("read-balance", true, err)
	}
	return balance.String(), nil
}

// resolveCall implements call: a read-only eth_call against to/data,
// returning the raw hex-encoded result.
func resolveCall(ctx context.Context, args map[string]interface{}, rc ResolverContext) (interface{}, error) {
	to, ok := args["to"].(string)
	if !ok || !common.IsHexAddress(to) {
		return nil, pkgerrors.NewValidationError("to", "call requires a valid hex address", nil)
	}
	data, _ := args["data"].(string)
	result, err := rc.ProviderValue().Call(ctx, ports.CallMsg{To: to, Data: data})
	if err != nil {
		return nil, pkgerrors.NewRemoteError("call", true, err)
	}
	return result, nil
}

// resolveContractExists implements contract-exists: true when the address
// has non-empty on-chain code.
func resolveContractExists(ctx context.Context, args map[string]interface{}, rc ResolverContext) (interface{}, error) {
	addrStr, ok := args["address"].(string)
	if !ok || !common.IsHexAddress(addrStr) {
		return nil, pkgerrors.NewValidationError("address", "contract-exists requires a valid hex address", nil)
	}
	code, err := rc.ProviderValue().GetCode(ctx, addrStr)
	if err != nil {
		return nil, pkgerrors.NewRemoteError("contract-exists", true, err)
	}
	trimmed := strings.TrimPrefix(strings.ToLower(code), "0x")
	return trimmed != "", nil
}

func toUint64(raw interface{}) (uint64, error) {
	n, err := toBigInt(raw)
	if err != nil {
		return 0, err
	}
	if !n.IsUint64() {
		return 0, fmt.Errorf("value %s does not fit in uint64", n.String())
	}
	return n.Uint64(), nil
}
