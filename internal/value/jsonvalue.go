package value

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	pkgerrors "github.com/forgebase/depengine/pkg/errors"
)

var jsonPathSegment = regexp.MustCompile(`^([^\[\]]*)((?:\[\d+\])*)$`)

// resolveReadJSON implements read-json: navigate a JSON document (supplied
// inline, already decoded once by an upstream artifact read) by a
// dot/bracket path such as "deployments[0].address". Missing paths are a
// ValidationError, not a nil result, so a typo surfaces immediately rather
// than propagating a null downstream.
func resolveReadJSON(args map[string]interface{}) (interface{}, error) {
	raw, ok := args["json"]
	if !ok {
		return nil, pkgerrors.NewValidationError("json", "read-json requires a json document", nil)
	}
	doc, err := asJSONValue(raw)
	if err != nil {
		return nil, pkgerrors.NewValidationError("json", err.Error(), err)
	}

	path, _ := args["path"].(string)
	path = strings.TrimSpace(path)
	if path == "" {
		return doc, nil
	}

	cur := doc
	for _, segment := range strings.Split(path, ".") {
		m := jsonPathSegment.FindStringSubmatch(segment)
		if m == nil {
			return nil, pkgerrors.NewValidationError("path", fmt.Sprintf("malformed path segment %q", segment), nil)
		}
		key, indices := m[1], m[2]
		if key != "" {
			obj, ok := cur.(map[string]interface{})
			if !ok {
				return nil, pkgerrors.NewValidationError("path", fmt.Sprintf("%q is not an object at %q", key, path), nil)
			}
			cur, ok = obj[key]
			if !ok {
				return nil, pkgerrors.NewValidationError("path", fmt.Sprintf("key %q not found", key), nil)
			}
		}
		for _, idxStr := range parseIndices(indices) {
			arr, ok := cur.([]interface{})
			if !ok {
				return nil, pkgerrors.NewValidationError("path", fmt.Sprintf("not an array at %q", path), nil)
			}
			idx := idxStr
			if idx < 0 {
				idx = len(arr) + idx
			}
			if idx < 0 || idx >= len(arr) {
				return nil, pkgerrors.NewValidationError("path", fmt.Sprintf("index %d out of range at %q", idxStr, path), nil)
			}
			cur = arr[idx]
		}
	}
	return cur, nil
}

// resolveResolveJSON implements resolve-json: decode a JSON document and
// then resolve every "{{…}}" string leaf within it against the same
// scope/constants/outputs a top-level reference would use. This lets a
// build artifact's JSON carry template placeholders that only become
// concrete once the job has outputs to substitute.
func resolveResolveJSON(ctx context.Context, args map[string]interface{}, rc ResolverContext, scope map[string]interface{}) (interface{}, error) {
	raw, ok := args["json"]
	if !ok {
		return nil, pkgerrors.NewValidationError("json", "resolve-json requires a json document", nil)
	}
	doc, err := asJSONValue(raw)
	if err != nil {
		return nil, pkgerrors.NewValidationError("json", err.Error(), err)
	}
	return resolveJSONLeaves(ctx, doc, rc, scope)
}

func resolveJSONLeaves(ctx context.Context, node interface{}, rc ResolverContext, scope map[string]interface{}) (interface{}, error) {
	switch v := node.(type) {
	case string:
		if m := jsonLeafReferencePattern.FindStringSubmatch(v); m != nil {
			return resolveExpression(ctx, m[1], rc, scope)
		}
		return v, nil
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, elem := range v {
			resolved, err := resolveJSONLeaves(ctx, elem, rc, scope)
			if err != nil {
				return nil, err
			}
			out[k] = resolved
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, elem := range v {
			resolved, err := resolveJSONLeaves(ctx, elem, rc, scope)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	default:
		return v, nil
	}
}

var jsonLeafReferencePattern = regexp.MustCompile(`^\{\{(.*)\}\}$`)

// asJSONValue accepts either an already-decoded structure (map/slice from a
// prior resolver step) or a raw JSON string, normalizing to the former by
// decoding the string.
func asJSONValue(raw interface{}) (interface{}, error) {
	switch v := raw.(type) {
	case string:
		var decoded interface{}
		if err := json.Unmarshal([]byte(v), &decoded); err != nil {
			return nil, fmt.Errorf("invalid json: %w", err)
		}
		return decoded, nil
	default:
		return v, nil
	}
}

func parseIndices(bracketed string) []int {
	if bracketed == "" {
		return nil
	}
	parts := strings.Split(strings.Trim(bracketed, "[]"), "][")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}
