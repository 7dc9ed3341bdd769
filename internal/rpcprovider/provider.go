// Package rpcprovider adapts go-ethereum's ethclient to ports.Provider.
package rpcprovider

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/forgebase/depengine/internal/ports"
	pkgerrors "github.com/forgebase/depengine/pkg/errors"
)

// Provider wraps an ethclient.Client and exposes it as ports.Provider.
type Provider struct {
	client     *ethclient.Client
	url        string
	pollEvery  time.Duration
	receiptFor time.Duration
}

// Option configures a Provider at construction time.
type Option func(*Provider)

// WithPollInterval overrides the receipt-polling cadence (default 2s).
func WithPollInterval(d time.Duration) Option {
	return func(p *Provider) { p.pollEvery = d }
}

// WithReceiptTimeout overrides how long WaitForReceipt waits before giving
// up (default 5m).
func WithReceiptTimeout(d time.Duration) Option {
	return func(p *Provider) { p.receiptFor = d }
}

// Dial connects to an EVM JSON-RPC endpoint.
func Dial(url string, opts ...Option) (*Provider, error) {
	client, err := ethclient.Dial(url)
	if err != nil {
		return nil, pkgerrors.NewRemoteError("dial", true, err)
	}
	p := &Provider{client: client, url: url, pollEvery: 2 * time.Second, receiptFor: 5 * time.Minute}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *Provider) GetNetwork(ctx context.Context) (ports.NetworkInfo, error) {
	chainID, err := p.client.ChainID(ctx)
	if err != nil {
		return ports.NetworkInfo{}, pkgerrors.NewRemoteError("eth_chainId", true, err)
	}
	return ports.NetworkInfo{ChainID: chainID, Name: p.url}, nil
}

// SuggestGasPrice and PendingNonceAt are exposed on the concrete type, not
// ports.Provider: they exist to feed a Signer's gas-price/nonce hooks (see
// internal/evmsigner) rather than anything the resolver or primitives need
// through the narrower interface.
func (p *Provider) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	gasPrice, err := p.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, pkgerrors.NewRemoteError("eth_gasPrice", true, err)
	}
	return gasPrice, nil
}

func (p *Provider) PendingNonceAt(ctx context.Context, address string) (uint64, error) {
	if !common.IsHexAddress(address) {
		return 0, pkgerrors.NewValidationError("address", fmt.Sprintf("invalid address %q", address), nil)
	}
	nonce, err := p.client.PendingNonceAt(ctx, common.HexToAddress(address))
	if err != nil {
		return 0, pkgerrors.NewRemoteError("eth_getTransactionCount", true, err)
	}
	return nonce, nil
}

func (p *Provider) GetBalance(ctx context.Context, address string) (*big.Int, error) {
	if !common.IsHexAddress(address) {
		return nil, pkgerrors.NewValidationError("address", fmt.Sprintf("invalid address %q", address), nil)
	}
	balance, err := p.client.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return nil, pkgerrors.NewRemoteError("eth_getBalance", true, err)
	}
	return balance, nil
}

func (p *Provider) GetCode(ctx context.Context, address string) (string, error) {
	if !common.IsHexAddress(address) {
		return "", pkgerrors.NewValidationError("address", fmt.Sprintf("invalid address %q", address), nil)
	}
	code, err := p.client.CodeAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return "", pkgerrors.NewRemoteError("eth_getCode", true, err)
	}
	return hexutil.Encode(code), nil
}

func (p *Provider) Call(ctx context.Context, msg ports.CallMsg) (string, error) {
	if !common.IsHexAddress(msg.To) {
		return "", pkgerrors.NewValidationError("to", fmt.Sprintf("invalid address %q", msg.To), nil)
	}
	data, err := hexutil.Decode(msg.Data)
	if err != nil {
		return "", pkgerrors.NewValidationError("data", "call data must be hex-encoded", err)
	}
	to := common.HexToAddress(msg.To)
	result, err := p.client.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return "", pkgerrors.NewRemoteError("eth_call", true, err)
	}
	return hexutil.Encode(result), nil
}

func (p *Provider) EstimateGas(ctx context.Context, msg ports.CallMsg) (uint64, error) {
	if !common.IsHexAddress(msg.To) {
		return 0, pkgerrors.NewValidationError("to", fmt.Sprintf("invalid address %q", msg.To), nil)
	}
	data, err := hexutil.Decode(msg.Data)
	if err != nil {
		return 0, pkgerrors.NewValidationError("data", "call data must be hex-encoded", err)
	}
	to := common.HexToAddress(msg.To)
	gas, err := p.client.EstimateGas(ctx, ethereum.CallMsg{To: &to, Data: data})
	if err != nil {
		return 0, pkgerrors.NewRemoteError("eth_estimateGas", true, err)
	}
	return gas, nil
}

func (p *Provider) BroadcastTransaction(ctx context.Context, rawTxHex string) (string, error) {
	raw, err := hexutil.Decode(rawTxHex)
	if err != nil {
		return "", pkgerrors.NewValidationError("rawTransaction", "raw transaction must be hex-encoded", err)
	}
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return "", pkgerrors.NewValidationError("rawTransaction", "raw transaction is not a valid RLP-encoded transaction", err)
	}
	if err := p.client.SendTransaction(ctx, tx); err != nil {
		return "", pkgerrors.NewRemoteError("eth_sendRawTransaction", true, err)
	}
	return tx.Hash().Hex(), nil
}

// WaitForReceipt polls for a transaction receipt until it appears, the
// context is cancelled, or the configured receipt timeout elapses.
func (p *Provider) WaitForReceipt(ctx context.Context, txHash string) (*ports.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, p.receiptFor)
	defer cancel()

	hash := common.HexToHash(txHash)
	ticker := time.NewTicker(p.pollEvery)
	defer ticker.Stop()

	for {
		receipt, err := p.client.TransactionReceipt(ctx, hash)
		if err == nil {
			return toReceipt(receipt), nil
		}
		if err != ethereum.NotFound {
			return nil, pkgerrors.NewRemoteError("eth_getTransactionReceipt", true, err)
		}
		select {
		case <-ctx.Done():
			return nil, pkgerrors.NewRemoteError("eth_getTransactionReceipt", true, fmt.Errorf("timed out waiting for receipt of %s", txHash))
		case <-ticker.C:
		}
	}
}

func (p *Provider) Destroy() error {
	p.client.Close()
	return nil
}

func toReceipt(r *types.Receipt) *ports.Receipt {
	out := &ports.Receipt{
		TxHash:      r.TxHash.Hex(),
		Status:      r.Status,
		BlockNumber: r.BlockNumber.Uint64(),
		GasUsed:     r.GasUsed,
	}
	if r.ContractAddress != (common.Address{}) {
		out.ContractAddress = r.ContractAddress.Hex()
	}
	return out
}
