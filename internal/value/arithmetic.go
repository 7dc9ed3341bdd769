package value

import (
	"fmt"
	"math/big"

	pkgerrors "github.com/forgebase/depengine/pkg/errors"
)

// resolveBasicArithmetic implements the basic-arithmetic spec kind: an
// operation name and a list of operand values, each coerced to *big.Int.
// Arbitrary-precision arithmetic has no ecosystem alternative worth reaching
// for here — math/big is the correct tool, not a gap in the dependency
// stack (see DESIGN.md).
func resolveBasicArithmetic(args map[string]interface{}) (interface{}, error) {
	opRaw, ok := args["operation"]
	if !ok {
		return nil, pkgerrors.NewValidationError("operation", "basic-arithmetic requires an operation", nil)
	}
	op, ok := opRaw.(string)
	if !ok {
		return nil, pkgerrors.NewValidationError("operation", "operation must be a string", nil)
	}

	rawValues, ok := args["values"].([]interface{})
	if !ok || len(rawValues) == 0 {
		return nil, pkgerrors.NewValidationError("values", "basic-arithmetic requires a non-empty values array", nil)
	}

	operands := make([]*big.Int, len(rawValues))
	for i, raw := range rawValues {
		n, err := toBigInt(raw)
		if err != nil {
			return nil, pkgerrors.NewValidationError(fmt.Sprintf("values[%d]", i), err.Error(), err)
		}
		operands[i] = n
	}

	result := new(big.Int).Set(operands[0])
	switch op {
	case "add":
		for _, n := range operands[1:] {
			result.Add(result, n)
		}
	case "sub", "subtract":
		for _, n := range operands[1:] {
			result.Sub(result, n)
		}
	case "mul", "multiply":
		for _, n := range operands[1:] {
			result.Mul(result, n)
		}
	case "div", "divide":
		for _, n := range operands[1:] {
			if n.Sign() == 0 {
				return nil, pkgerrors.NewValidationError("values", "division by zero", nil)
			}
			result.Div(result, n)
		}
	case "mod":
		for _, n := range operands[1:] {
			if n.Sign() == 0 {
				return nil, pkgerrors.NewValidationError("values", "modulo by zero", nil)
			}
			result.Mod(result, n)
		}
	case "min":
		for _, n := range operands[1:] {
			if n.Cmp(result) < 0 {
				result = n
			}
		}
	case "max":
		for _, n := range operands[1:] {
			if n.Cmp(result) > 0 {
				result = n
			}
		}
	default:
		return nil, pkgerrors.NewValidationError("operation", fmt.Sprintf("unsupported arithmetic operation %q", op), nil)
	}

	return result.String(), nil
}

// toBigInt coerces a resolved argument (string, int, float64, or *big.Int)
// into a *big.Int. Values arrive as strings in YAML-sourced jobs and as
// float64 when a resolver intermediate passed through a JSON document, so
// both are accepted.
func toBigInt(raw interface{}) (*big.Int, error) {
	switch v := raw.(type) {
	case *big.Int:
		return v, nil
	case string:
		n, ok := new(big.Int).SetString(v, 0)
		if !ok {
			return nil, fmt.Errorf("%q is not a valid integer literal", v)
		}
		return n, nil
	case int:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	case float64:
		return big.NewInt(int64(v)), nil
	default:
		return nil, fmt.Errorf("cannot interpret %T as an integer", raw)
	}
}
