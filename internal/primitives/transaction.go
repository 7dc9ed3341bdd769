package primitives

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/forgebase/depengine/internal/job"
	"github.com/forgebase/depengine/internal/ports"
	pkgerrors "github.com/forgebase/depengine/pkg/errors"
)

// SendTransaction builds, signs, and broadcasts a transaction through the
// configured Signer, then waits for its receipt. Gas limit is whatever the
// action specified; when unset, the choice is left to the Signer and the
// engine does not estimate gas itself.
func SendTransaction(ctx context.Context, pc Context, action *job.Action, args map[string]interface{}) (Result, error) {
	to, _ := args["to"].(string)
	if to != "" && !common.IsHexAddress(to) {
		return Result{}, pkgerrors.NewValidationError("to", fmt.Sprintf("%q is not a valid address", to), nil)
	}
	data, _ := args["data"].(string)

	value := big.NewInt(0)
	if raw, ok := args["value"]; ok {
		n, err := coerceBigInt(raw)
		if err != nil {
			return Result{}, pkgerrors.NewValidationError("value", err.Error(), err)
		}
		value = n
	}

	var gasLimit uint64
	if raw, ok := args["gasLimit"]; ok {
		n, err := coerceBigInt(raw)
		if err != nil {
			return Result{}, pkgerrors.NewValidationError("gasLimit", err.Error(), err)
		}
		gasLimit = n.Uint64()
	}

	tx := ports.TxRequest{To: to, Data: data, Value: value, GasLimit: gasLimit}

	txHash, err := pc.Signer().SendTransaction(ctx, tx)
	if err != nil {
		return Result{}, pkgerrors.NewExecutionError(action.Name, err)
	}
	publishTransactionSent(pc, action.Name, txHash)

	receipt, err := pc.Provider().WaitForReceipt(ctx, txHash)
	if err != nil {
		return Result{}, pkgerrors.NewExecutionError(action.Name, err)
	}
	if receipt.Status == 0 {
		return Result{}, pkgerrors.NewExecutionError(action.Name, fmt.Errorf("transaction %s reverted", txHash))
	}
	publishTransactionConfirmed(pc, action.Name, receipt)

	return Result{Outputs: receiptOutputs(txHash, receipt)}, nil
}

// SendSignedTransaction broadcasts a transaction the caller has already
// signed offline (e.g. with a hardware wallet), skipping the Signer
// entirely for the signature itself.
func SendSignedTransaction(ctx context.Context, pc Context, action *job.Action, args map[string]interface{}) (Result, error) {
	raw, ok := args["rawTransaction"].(string)
	if !ok || raw == "" {
		return Result{}, pkgerrors.NewValidationError("rawTransaction", "send-signed-transaction requires rawTransaction", nil)
	}

	txHash, err := pc.Provider().BroadcastTransaction(ctx, raw)
	if err != nil {
		return Result{}, pkgerrors.NewExecutionError(action.Name, err)
	}
	publishTransactionSent(pc, action.Name, txHash)

	receipt, err := pc.Provider().WaitForReceipt(ctx, txHash)
	if err != nil {
		return Result{}, pkgerrors.NewExecutionError(action.Name, err)
	}
	if receipt.Status == 0 {
		return Result{}, pkgerrors.NewExecutionError(action.Name, fmt.Errorf("transaction %s reverted", txHash))
	}
	publishTransactionConfirmed(pc, action.Name, receipt)

	return Result{Outputs: receiptOutputs(txHash, receipt)}, nil
}

func receiptOutputs(txHash string, receipt *ports.Receipt) map[string]interface{} {
	outputs := map[string]interface{}{
		"txHash":      txHash,
		"status":      receipt.Status,
		"blockNumber": receipt.BlockNumber,
		"gasUsed":     receipt.GasUsed,
	}
	if receipt.ContractAddress != "" {
		outputs["address"] = receipt.ContractAddress
	}
	return outputs
}

func coerceBigInt(raw interface{}) (*big.Int, error) {
	switch v := raw.(type) {
	case *big.Int:
		return v, nil
	case string:
		n, ok := new(big.Int).SetString(v, 0)
		if !ok {
			return nil, fmt.Errorf("%q is not a valid integer", v)
		}
		return n, nil
	case int:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case float64:
		return big.NewInt(int64(v)), nil
	default:
		return nil, fmt.Errorf("cannot interpret %T as an integer", raw)
	}
}
