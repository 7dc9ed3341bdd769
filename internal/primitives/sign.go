package primitives

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/forgebase/depengine/internal/job"
	"github.com/forgebase/depengine/internal/ports"
	pkgerrors "github.com/forgebase/depengine/pkg/errors"
)

// SignDigest signs a raw 32-byte digest directly. A Signer implementation
// that can't support this without EIP-191 framing should expose the
// optional ports.DigestSigner capability; when it doesn't, the action fails
// with a DomainError rather than silently re-framing the digest.
func SignDigest(ctx context.Context, pc Context, action *job.Action, args map[string]interface{}) (Result, error) {
	digestHex, ok := args["digest"].(string)
	if !ok || digestHex == "" {
		return Result{}, pkgerrors.NewValidationError("digest", "sign-digest requires a digest", nil)
	}
	digest, err := hexutil.Decode(digestHex)
	if err != nil {
		return Result{}, pkgerrors.NewValidationError("digest", err.Error(), err)
	}
	if len(digest) != 32 {
		return Result{}, pkgerrors.NewValidationError("digest", "digest must be exactly 32 bytes", nil)
	}

	signer, ok := pc.Signer().(ports.DigestSigner)
	if !ok {
		return Result{}, pkgerrors.NewDomainError(action.Name, "configured signer does not support raw digest signing")
	}

	signature, err := signer.SignDigest(ctx, digest)
	if err != nil {
		return Result{}, pkgerrors.NewExecutionError(action.Name, err)
	}
	return Result{Outputs: map[string]interface{}{"signature": signature}}, nil
}

// SignMessage signs an EIP-191 personal message.
func SignMessage(ctx context.Context, pc Context, action *job.Action, args map[string]interface{}) (Result, error) {
	raw, ok := args["message"]
	if !ok {
		return Result{}, pkgerrors.NewValidationError("message", "sign-message requires a message", nil)
	}
	message, err := messageBytes(raw)
	if err != nil {
		return Result{}, pkgerrors.NewValidationError("message", err.Error(), err)
	}

	signature, err := pc.Signer().SignMessage(ctx, message)
	if err != nil {
		return Result{}, pkgerrors.NewExecutionError(action.Name, err)
	}
	return Result{Outputs: map[string]interface{}{"signature": signature}}, nil
}

// SignTypedData signs an EIP-712 typed data payload: a domain, a types map,
// and a message, all already resolved to plain maps.
func SignTypedData(ctx context.Context, pc Context, action *job.Action, args map[string]interface{}) (Result, error) {
	domain, ok := args["domain"].(map[string]interface{})
	if !ok {
		return Result{}, pkgerrors.NewValidationError("domain", "sign-typed-data requires a domain object", nil)
	}
	types, ok := args["types"].(map[string]interface{})
	if !ok {
		return Result{}, pkgerrors.NewValidationError("types", "sign-typed-data requires a types object", nil)
	}
	message, ok := args["message"].(map[string]interface{})
	if !ok {
		return Result{}, pkgerrors.NewValidationError("message", "sign-typed-data requires a message object", nil)
	}
	primaryType, ok := args["primaryType"].(string)
	if !ok || primaryType == "" {
		return Result{}, pkgerrors.NewValidationError("primaryType", "sign-typed-data requires a primaryType", nil)
	}

	signature, err := pc.Signer().SignTypedData(ctx, domain, types, message, primaryType)
	if err != nil {
		return Result{}, pkgerrors.NewExecutionError(action.Name, err)
	}
	return Result{Outputs: map[string]interface{}{"signature": signature}}, nil
}

func messageBytes(raw interface{}) ([]byte, error) {
	switch v := raw.(type) {
	case string:
		if len(v) >= 2 && (v[:2] == "0x" || v[:2] == "0X") {
			return hexutil.Decode(v)
		}
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return nil, fmt.Errorf("cannot interpret %T as a message", raw)
	}
}
