// Package evmsigner implements ports.Signer and ports.DigestSigner over a
// local ECDSA private key, the way a deployment CLI signs its own
// transactions without a remote wallet.
package evmsigner

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/forgebase/depengine/internal/ports"
	pkgerrors "github.com/forgebase/depengine/pkg/errors"
)

// Signer signs transactions and messages with one ECDSA private key.
type Signer struct {
	key         *ecdsa.PrivateKey
	address     common.Address
	chainID     *big.Int
	gasPriceFn  func(ctx context.Context) (*big.Int, error)
	nonceFn     func(ctx context.Context, address common.Address) (uint64, error)
	broadcastFn func(ctx context.Context, tx *types.Transaction) error
}

// New builds a Signer from a hex-encoded private key ("0x"-prefixed or
// not). gasPrice/nonce/broadcast hooks let the caller wire it to a live
// provider without this package importing rpcprovider directly.
func New(
	privateKeyHex string,
	chainID *big.Int,
	gasPriceFn func(ctx context.Context) (*big.Int, error),
	nonceFn func(ctx context.Context, address common.Address) (uint64, error),
	broadcastFn func(ctx context.Context, tx *types.Transaction) error,
) (*Signer, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, pkgerrors.NewValidationError("privateKey", "not a valid secp256k1 private key", err)
	}
	return &Signer{
		key:         key,
		address:     crypto.PubkeyToAddress(key.PublicKey),
		chainID:     chainID,
		gasPriceFn:  gasPriceFn,
		nonceFn:     nonceFn,
		broadcastFn: broadcastFn,
	}, nil
}

func (s *Signer) Address() string { return s.address.Hex() }

// SendTransaction builds, signs, and broadcasts a transaction, returning
// its hash. Gas price and nonce always come from the constructor's hooks;
// a zero GasLimit on the request falls back to a fixed 500000.
func (s *Signer) SendTransaction(ctx context.Context, req ports.TxRequest) (string, error) {
	if req.To != "" && !common.IsHexAddress(req.To) {
		return "", pkgerrors.NewValidationError("to", fmt.Sprintf("invalid address %q", req.To), nil)
	}
	data, err := decodeCallData(req.Data)
	if err != nil {
		return "", err
	}

	nonce, err := s.nonceFn(ctx, s.address)
	if err != nil {
		return "", pkgerrors.NewRemoteError("nonce", true, err)
	}
	gasPrice, err := s.gasPriceFn(ctx)
	if err != nil {
		return "", pkgerrors.NewRemoteError("gasPrice", true, err)
	}
	gasLimit := req.GasLimit
	if gasLimit == 0 {
		gasLimit = 500000
	}
	value := req.Value
	if value == nil {
		value = big.NewInt(0)
	}

	var tx *types.Transaction
	if req.To == "" {
		tx = types.NewContractCreation(nonce, value, gasLimit, gasPrice, data)
	} else {
		to := common.HexToAddress(req.To)
		tx = types.NewTransaction(nonce, to, value, gasLimit, gasPrice, data)
	}

	signer := types.NewEIP155Signer(s.chainID)
	signedTx, err := types.SignTx(tx, signer, s.key)
	if err != nil {
		return "", pkgerrors.NewExecutionError("sign-transaction", err)
	}

	if err := s.broadcastFn(ctx, signedTx); err != nil {
		return "", pkgerrors.NewRemoteError("eth_sendRawTransaction", true, err)
	}
	return signedTx.Hash().Hex(), nil
}

func (s *Signer) EstimateGas(ctx context.Context, req ports.TxRequest) (uint64, error) {
	return 0, pkgerrors.NewDomainError("evmsigner", "EstimateGas is delegated to the provider; the signer does not estimate gas itself")
}

// SignDigest implements ports.DigestSigner by signing a raw 32-byte
// digest directly, with no EIP-191/712 framing.
func (s *Signer) SignDigest(ctx context.Context, digest []byte) (string, error) {
	if len(digest) != 32 {
		return "", pkgerrors.NewValidationError("digest", "digest must be exactly 32 bytes", nil)
	}
	sig, err := crypto.Sign(digest, s.key)
	if err != nil {
		return "", pkgerrors.NewExecutionError("sign-digest", err)
	}
	return hexutil.Encode(sig), nil
}

// SignMessage signs a message under EIP-191 personal-sign framing.
func (s *Signer) SignMessage(ctx context.Context, message []byte) (string, error) {
	hash := accounts.TextHash(message)
	sig, err := crypto.Sign(hash, s.key)
	if err != nil {
		return "", pkgerrors.NewExecutionError("sign-message", err)
	}
	adjustRecoveryID(sig)
	return hexutil.Encode(sig), nil
}

// SignTypedData signs an EIP-712 typed-data payload.
func (s *Signer) SignTypedData(ctx context.Context, domain, types_, message map[string]interface{}, primaryType string) (string, error) {
	typedData := apitypes.TypedData{
		Types:       decodeTypes(types_),
		PrimaryType: primaryType,
		Domain:      decodeDomain(domain),
		Message:     message,
	}

	domainSeparator, err := typedData.HashStruct("EIP712Domain", typedData.Domain.Map())
	if err != nil {
		return "", pkgerrors.NewValidationError("domain", "could not hash EIP-712 domain", err)
	}
	messageHash, err := typedData.HashStruct(typedData.PrimaryType, typedData.Message)
	if err != nil {
		return "", pkgerrors.NewValidationError("message", "could not hash EIP-712 message against its type", err)
	}

	rawData := []byte(fmt.Sprintf("\x19\x01%s%s", domainSeparator, messageHash))
	hash := crypto.Keccak256(rawData)

	sig, err := crypto.Sign(hash, s.key)
	if err != nil {
		return "", pkgerrors.NewExecutionError("sign-typed-data", err)
	}
	adjustRecoveryID(sig)
	return hexutil.Encode(sig), nil
}

// adjustRecoveryID rewrites crypto.Sign's 0/1 recovery byte to the 27/28
// convention wallets and verifiers expect from a personal/typed-data
// signature.
func adjustRecoveryID(sig []byte) {
	if len(sig) == 65 && sig[64] < 27 {
		sig[64] += 27
	}
}

func decodeCallData(data string) ([]byte, error) {
	if data == "" {
		return nil, nil
	}
	decoded, err := hexutil.Decode(data)
	if err != nil {
		return nil, pkgerrors.NewValidationError("data", "call data must be hex-encoded", err)
	}
	return decoded, nil
}

func decodeDomain(domain map[string]interface{}) apitypes.TypedDataDomain {
	out := apitypes.TypedDataDomain{}
	if v, ok := domain["name"].(string); ok {
		out.Name = v
	}
	if v, ok := domain["version"].(string); ok {
		out.Version = v
	}
	if v, ok := domain["chainId"]; ok {
		out.ChainId = toMathBigHex(v)
	}
	if v, ok := domain["verifyingContract"].(string); ok {
		out.VerifyingContract = v
	}
	if v, ok := domain["salt"].(string); ok {
		out.Salt = v
	}
	return out
}

func toMathBigHex(v interface{}) *math.HexOrDecimal256 {
	switch t := v.(type) {
	case string:
		n := new(big.Int)
		n.SetString(strings.TrimPrefix(t, "0x"), 16)
		return (*math.HexOrDecimal256)(n)
	case float64:
		return (*math.HexOrDecimal256)(big.NewInt(int64(t)))
	default:
		return nil
	}
}

func decodeTypes(raw map[string]interface{}) apitypes.Types {
	out := apitypes.Types{}
	for typeName, fieldsRaw := range raw {
		fieldList, ok := fieldsRaw.([]interface{})
		if !ok {
			continue
		}
		var fields []apitypes.Type
		for _, f := range fieldList {
			fm, ok := f.(map[string]interface{})
			if !ok {
				continue
			}
			name, _ := fm["name"].(string)
			typ, _ := fm["type"].(string)
			fields = append(fields, apitypes.Type{Name: name, Type: typ})
		}
		out[typeName] = fields
	}
	return out
}
