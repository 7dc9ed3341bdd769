package ports

import (
	"context"
	"math/big"
)

// CallMsg is the minimal message shape needed for an eth_call.
type CallMsg struct {
	To   string
	Data string
}

// TxRequest describes a transaction to send through a Signer.
type TxRequest struct {
	To       string
	Data     string
	Value    *big.Int
	GasLimit uint64 // 0 means "let the signer/provider choose"
}

// Receipt is the subset of a transaction receipt the engine inspects.
type Receipt struct {
	TxHash          string
	Status          uint64 // 1 = success, 0 = failure
	BlockNumber     uint64
	GasUsed         uint64
	ContractAddress string // non-empty only for a contract-creation transaction
}

// NetworkInfo is what the provider reports about the chain it is attached to.
type NetworkInfo struct {
	ChainID *big.Int
	Name    string
}

// Provider is the RPC client capability the engine consumes. Concrete
// adapters wrap an EVM JSON-RPC client (see internal/rpcprovider).
type Provider interface {
	GetNetwork(ctx context.Context) (NetworkInfo, error)
	GetBalance(ctx context.Context, address string) (*big.Int, error)
	GetCode(ctx context.Context, address string) (string, error)
	Call(ctx context.Context, msg CallMsg) (string, error)
	EstimateGas(ctx context.Context, msg CallMsg) (uint64, error)
	BroadcastTransaction(ctx context.Context, rawTxHex string) (string, error)
	WaitForReceipt(ctx context.Context, txHash string) (*Receipt, error)
	Destroy() error
}

// DigestSigner is an optional capability: signing a raw 32-byte digest
// directly, bypassing EIP-191/EIP-712 framing. Implementations that lack it
// fall back to an adapter built over the signing key or, for a remote
// JSON-RPC signer, over a legacy personal-sign method.
type DigestSigner interface {
	SignDigest(ctx context.Context, digest []byte) (string, error)
}

// Signer is the signing capability the engine consumes for
// send-transaction, send-signed-transaction, and the sign-* primitives.
type Signer interface {
	Address() string
	SendTransaction(ctx context.Context, tx TxRequest) (string, error)
	EstimateGas(ctx context.Context, tx TxRequest) (uint64, error)
	SignMessage(ctx context.Context, message []byte) (string, error)
	SignTypedData(ctx context.Context, domain, types, message map[string]interface{}, primaryType string) (string, error)
}
