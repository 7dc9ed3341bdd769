package value

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"

	pkgerrors "github.com/forgebase/depengine/pkg/errors"
)

// resolveSliceBytes implements slice-bytes: a Python-style [start:end] slice
// over a hex byte string, where negative indices count from the end and a
// missing bound defaults to the corresponding edge of the data.
func resolveSliceBytes(args map[string]interface{}) (interface{}, error) {
	dataRaw, ok := args["data"].(string)
	if !ok {
		return nil, pkgerrors.NewValidationError("data", "slice-bytes requires a hex data string", nil)
	}
	data, err := decodeBytesLike(dataRaw)
	if err != nil {
		return nil, pkgerrors.NewValidationError("data", err.Error(), err)
	}
	n := len(data)

	start, err := optionalIndex(args["start"], 0)
	if err != nil {
		return nil, pkgerrors.NewValidationError("start", err.Error(), err)
	}
	end, err := optionalIndex(args["end"], n)
	if err != nil {
		return nil, pkgerrors.NewValidationError("end", err.Error(), err)
	}

	start = normalizeIndex(start, n)
	end = normalizeIndex(end, n)
	if start > end {
		start = end
	}

	return hexutil.Encode(data[start:end]), nil
}

func optionalIndex(raw interface{}, fallback int) (int, error) {
	if raw == nil {
		return fallback, nil
	}
	n, err := toBigInt(raw)
	if err != nil {
		return 0, err
	}
	if !n.IsInt64() {
		return 0, fmt.Errorf("index %s is out of range", n.String())
	}
	return int(n.Int64()), nil
}

// normalizeIndex clamps a possibly-negative, possibly-out-of-range index
// into [0, n], mirroring Python slice semantics rather than panicking.
func normalizeIndex(i, n int) int {
	if i < 0 {
		i += n
	}
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}
