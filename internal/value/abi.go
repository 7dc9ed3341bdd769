package value

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	pkgerrors "github.com/forgebase/depengine/pkg/errors"
)

// resolveABIEncode implements abi-encode: a Solidity function signature plus
// positional values, producing full call data (4-byte selector followed by
// the standard ABI-encoded arguments), hex-encoded with a 0x prefix.
func resolveABIEncode(args map[string]interface{}) (interface{}, error) {
	signature, ok := args["signature"].(string)
	if !ok || signature == "" {
		return nil, pkgerrors.NewValidationError("signature", "abi-encode requires a function signature", nil)
	}
	rawValues, _ := args["values"].([]interface{})

	method, err := methodFromSignature(signature)
	if err != nil {
		return nil, pkgerrors.NewValidationError("signature", err.Error(), err)
	}

	packedArgs, err := packArguments(method.Inputs, rawValues)
	if err != nil {
		return nil, pkgerrors.NewValidationError("values", err.Error(), err)
	}

	data := append(append([]byte{}, method.ID...), packedArgs...)
	return hexutil.Encode(data), nil
}

// resolveABIPack implements abi-pack: Solidity's non-padded
// encodePacked semantics over an explicit list of Solidity type names. The
// go-ethereum abi package does not expose a packed encoder (only the padded
// Arguments.Pack), so packing is implemented directly per type.
func resolveABIPack(args map[string]interface{}) (interface{}, error) {
	types, values, err := typesAndValues(args)
	if err != nil {
		return nil, err
	}

	var out []byte
	for i, typeName := range types {
		t, err := abi.NewType(typeName, "", nil)
		if err != nil {
			return nil, pkgerrors.NewValidationError("types", fmt.Sprintf("invalid type %q: %v", typeName, err), err)
		}
		encoded, err := packSingle(t, values[i])
		if err != nil {
			return nil, pkgerrors.NewValidationError("values", fmt.Sprintf("values[%d]: %v", i, err), err)
		}
		out = append(out, encoded...)
	}
	return hexutil.Encode(out), nil
}

// resolveConstructorEncode implements constructor-encode: standard ABI
// encoding of constructor arguments, optionally prefixed with the
// contract's creation code so the result can be used directly as
// send-transaction deployment data.
func resolveConstructorEncode(args map[string]interface{}) (interface{}, error) {
	types, values, err := typesAndValues(args)
	if err != nil {
		return nil, err
	}

	arguments := make(abi.Arguments, len(types))
	for i, typeName := range types {
		t, err := abi.NewType(typeName, "", nil)
		if err != nil {
			return nil, pkgerrors.NewValidationError("types", fmt.Sprintf("invalid type %q: %v", typeName, err), err)
		}
		arguments[i] = abi.Argument{Type: t}
	}

	converted := make([]interface{}, len(values))
	for i, t := range arguments {
		cv, err := convertForABI(values[i], t.Type)
		if err != nil {
			return nil, pkgerrors.NewValidationError("values", fmt.Sprintf("values[%d]: %v", i, err), err)
		}
		converted[i] = cv
	}

	encoded, err := arguments.Pack(converted...)
	if err != nil {
		return nil, pkgerrors.NewValidationError("values", err.Error(), err)
	}

	creationCode, _ := args["creationCode"].(string)
	creationCode = strings.TrimSpace(creationCode)
	if creationCode == "" {
		return hexutil.Encode(encoded), nil
	}
	return strings.TrimSuffix(creationCode, "0x") + hexutil.Encode(encoded)[2:], nil
}

func typesAndValues(args map[string]interface{}) ([]string, []interface{}, error) {
	rawTypes, ok := args["types"].([]interface{})
	if !ok {
		return nil, nil, pkgerrors.NewValidationError("types", "requires a types array", nil)
	}
	rawValues, ok := args["values"].([]interface{})
	if !ok || len(rawValues) != len(rawTypes) {
		return nil, nil, pkgerrors.NewValidationError("values", "values array must match types array in length", nil)
	}
	types := make([]string, len(rawTypes))
	for i, rt := range rawTypes {
		s, ok := rt.(string)
		if !ok {
			return nil, nil, pkgerrors.NewValidationError("types", fmt.Sprintf("types[%d] must be a string", i), nil)
		}
		types[i] = s
	}
	return types, rawValues, nil
}

func packArguments(inputs abi.Arguments, rawValues []interface{}) ([]byte, error) {
	if len(rawValues) != len(inputs) {
		return nil, fmt.Errorf("expected %d values, got %d", len(inputs), len(rawValues))
	}
	converted := make([]interface{}, len(inputs))
	for i, input := range inputs {
		cv, err := convertForABI(rawValues[i], input.Type)
		if err != nil {
			return nil, fmt.Errorf("values[%d]: %w", i, err)
		}
		converted[i] = cv
	}
	return inputs.Pack(converted...)
}

// methodFromSignature builds a go-ethereum abi.Method from a bare Solidity
// signature like "transfer(address,uint256)"; go-ethereum's abi package
// only constructs Methods from a full JSON ABI document, so the signature
// is parsed by hand and fed to abi.NewMethod directly.
func methodFromSignature(signature string) (abi.Method, error) {
	signature = strings.TrimSpace(signature)
	open := strings.Index(signature, "(")
	if open < 0 || !strings.HasSuffix(signature, ")") {
		return abi.Method{}, fmt.Errorf("%q is not a valid function signature", signature)
	}
	name := signature[:open]
	inner := signature[open+1 : len(signature)-1]

	var typeNames []string
	if strings.TrimSpace(inner) != "" {
		typeNames = splitTopLevel(inner)
	}

	inputs := make(abi.Arguments, len(typeNames))
	for i, tn := range typeNames {
		t, err := abi.NewType(strings.TrimSpace(tn), "", nil)
		if err != nil {
			return abi.Method{}, fmt.Errorf("parameter %d (%q): %w", i, tn, err)
		}
		inputs[i] = abi.Argument{Name: fmt.Sprintf("arg%d", i), Type: t}
	}

	return abi.NewMethod(name, name, abi.Function, "nonpayable", false, false, inputs, nil), nil
}

// splitTopLevel splits a comma-separated type list, respecting nested
// parentheses (tuples) so "a,(b,c),d" splits into three elements.
func splitTopLevel(s string) []string {
	var out []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, s[start:])
	return out
}

// convertForABI coerces a generic decoded value (string/number/bool/array)
// into the concrete Go type go-ethereum's abi.Arguments.Pack expects for t.
func convertForABI(raw interface{}, t abi.Type) (interface{}, error) {
	switch t.T {
	case abi.AddressTy:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("expected hex address string, got %T", raw)
		}
		if !common.IsHexAddress(s) {
			return nil, fmt.Errorf("%q is not a valid address", s)
		}
		return common.HexToAddress(s), nil
	case abi.BoolTy:
		b, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("expected bool, got %T", raw)
		}
		return b, nil
	case abi.StringTy:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", raw)
		}
		return s, nil
	case abi.UintTy, abi.IntTy:
		n, err := toBigInt(raw)
		if err != nil {
			return nil, err
		}
		return convertSizedInt(n, t)
	case abi.BytesTy:
		return decodeBytesLike(raw)
	case abi.FixedBytesTy:
		b, err := decodeBytesLike(raw)
		if err != nil {
			return nil, err
		}
		return fixedBytes(b, t.Size)
	case abi.SliceTy, abi.ArrayTy:
		list, ok := raw.([]interface{})
		if !ok {
			return nil, fmt.Errorf("expected array, got %T", raw)
		}
		return convertElementSlice(list, t)
	default:
		return nil, fmt.Errorf("unsupported abi type %s", t.String())
	}
}

// convertSizedInt narrows a *big.Int to the concrete fixed-width Go type
// Pack expects for bit sizes <= 64 (go-ethereum uses native ints/uints up
// to 64 bits and *big.Int beyond that).
func convertSizedInt(n *big.Int, t abi.Type) (interface{}, error) {
	if t.Size > 64 {
		return n, nil
	}
	switch t.T {
	case abi.UintTy:
		switch t.Size {
		case 8:
			return uint8(n.Uint64()), nil
		case 16:
			return uint16(n.Uint64()), nil
		case 32:
			return uint32(n.Uint64()), nil
		default:
			return n.Uint64(), nil
		}
	default:
		switch t.Size {
		case 8:
			return int8(n.Int64()), nil
		case 16:
			return int16(n.Int64()), nil
		case 32:
			return int32(n.Int64()), nil
		default:
			return n.Int64(), nil
		}
	}
}

func convertElementSlice(list []interface{}, t abi.Type) (interface{}, error) {
	elemType := *t.Elem
	out := make([]interface{}, len(list))
	for i, v := range list {
		cv, err := convertForABI(v, elemType)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = cv
	}
	return out, nil
}

func decodeBytesLike(raw interface{}) ([]byte, error) {
	switch v := raw.(type) {
	case []byte:
		return v, nil
	case string:
		if strings.HasPrefix(v, "0x") || strings.HasPrefix(v, "0X") {
			return hexutil.Decode(v)
		}
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("expected bytes or hex string, got %T", raw)
	}
}

func fixedBytes(b []byte, size int) (interface{}, error) {
	if len(b) > size {
		return nil, fmt.Errorf("value is %d bytes, exceeds bytes%d", len(b), size)
	}
	padded := make([]byte, size)
	copy(padded, b)
	return padded, nil
}

// packSingle implements Solidity's abi.encodePacked rule for one value: no
// left-padding for dynamic types, left-padding only within a type's own
// fixed width for numeric types, right-padding within its width for
// fixed-bytes types, and no length prefix for
// bytes/string (the caller is trusted to know the boundaries).
func packSingle(t abi.Type, raw interface{}) ([]byte, error) {
	switch t.T {
	case abi.AddressTy:
		converted, err := convertForABI(raw, t)
		if err != nil {
			return nil, err
		}
		addr := converted.(common.Address)
		return addr.Bytes(), nil
	case abi.BoolTy:
		b, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("expected bool, got %T", raw)
		}
		if b {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	case abi.StringTy:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", raw)
		}
		return []byte(s), nil
	case abi.BytesTy:
		return decodeBytesLike(raw)
	case abi.FixedBytesTy:
		b, err := decodeBytesLike(raw)
		if err != nil {
			return nil, err
		}
		return fixedBytesPacked(b, t.Size)
	case abi.UintTy, abi.IntTy:
		n, err := toBigInt(raw)
		if err != nil {
			return nil, err
		}
		return packInt(n, t.Size/8), nil
	default:
		return nil, fmt.Errorf("abi-pack does not support type %s", t.String())
	}
}

func fixedBytesPacked(b []byte, size int) ([]byte, error) {
	if len(b) > size {
		return nil, fmt.Errorf("value is %d bytes, exceeds bytes%d", len(b), size)
	}
	padded := make([]byte, size)
	copy(padded, b)
	return padded, nil
}

func packInt(n *big.Int, widthBytes int) []byte {
	out := make([]byte, widthBytes)
	abs := new(big.Int).Abs(n)
	absBytes := abs.Bytes()
	copy(out[widthBytes-len(absBytes):], absBytes)
	if n.Sign() < 0 {
		// Two's complement for packed signed integers.
		for i := range out {
			out[i] = ^out[i]
		}
		carry := byte(1)
		for i := len(out) - 1; i >= 0 && carry > 0; i-- {
			sum := int(out[i]) + int(carry)
			out[i] = byte(sum)
			carry = byte(sum >> 8)
		}
	}
	return out
}
