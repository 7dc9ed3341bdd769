package value

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/forgebase/depengine/internal/job"
	pkgerrors "github.com/forgebase/depengine/pkg/errors"
)

var (
	contractPattern = regexp.MustCompile(`^Contract\((.+?)\)(?:\.(.+))?$`)
	networkPattern  = regexp.MustCompile(`^Network\(\)(?:\.(.+))?$`)
)

// Resolve turns a job.Value into a concrete Go value: literals pass through,
// references are looked up against scope/constants/outputs, specs dispatch
// to one of the value-computation primitives below, and arrays resolve
// element-by-element.
func Resolve(ctx context.Context, v job.Value, rc ResolverContext, scope map[string]interface{}) (interface{}, error) {
	switch v.Kind {
	case job.KindLiteral:
		return v.Literal, nil
	case job.KindReference:
		return resolveExpression(ctx, v.Reference, rc, scope)
	case job.KindSpec:
		return resolveSpec(ctx, v.Spec, rc, scope)
	case job.KindArray:
		out := make([]interface{}, len(v.Array))
		for i, elem := range v.Array {
			resolved, err := Resolve(ctx, elem, rc, scope)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	default:
		return nil, pkgerrors.NewResolutionError("<unknown>", "unrecognized value kind")
	}
}

// ResolveArguments resolves every entry of an arguments map. Entries are
// visited in Go's unspecified map order; each is resolved independently, so
// the order does not affect the resulting map.
func ResolveArguments(ctx context.Context, args map[string]job.Value, rc ResolverContext, scope map[string]interface{}) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(args))
	for k, v := range args {
		resolved, err := Resolve(ctx, v, rc, scope)
		if err != nil {
			return nil, err
		}
		out[k] = resolved
	}
	return out, nil
}

func resolveExpression(ctx context.Context, expr string, rc ResolverContext, scope map[string]interface{}) (interface{}, error) {
	expr = strings.TrimSpace(expr)

	if m := contractPattern.FindStringSubmatch(expr); m != nil {
		reference, prop := m[1], m[2]
		c, err := rc.LookupContract(reference)
		if err != nil {
			return nil, err
		}
		if prop == "" {
			return c, nil
		}
		val, ok := c.Property(prop)
		if !ok {
			return nil, pkgerrors.NewResolutionError(expr, fmt.Sprintf("contract %q has no property %q", reference, prop))
		}
		return val, nil
	}

	if m := networkPattern.FindStringSubmatch(expr); m != nil {
		path := m[1]
		if path == "" {
			return rc.NetworkValue(), nil
		}
		segments := strings.Split(path, ".")
		head := segments[0]
		if head == "custom" {
			val, ok := walkPath(rc.NetworkValue().Custom, segments[1:])
			if !ok {
				return nil, pkgerrors.NewResolutionError(expr, fmt.Sprintf("network has no custom property %q", path))
			}
			return val, nil
		}
		val, ok := rc.NetworkValue().Attribute(head)
		if !ok {
			return nil, pkgerrors.NewResolutionError(expr, fmt.Sprintf("network has no property %q", head))
		}
		if len(segments) > 1 {
			val, ok = walkPath(val, segments[1:])
			if !ok {
				return nil, pkgerrors.NewResolutionError(expr, fmt.Sprintf("network property %q has no nested path %q", head, path))
			}
		}
		return val, nil
	}

	if strings.HasPrefix(expr, "job-completed(") && strings.HasSuffix(expr, ")") {
		name := strings.TrimSuffix(strings.TrimPrefix(expr, "job-completed("), ")")
		name = strings.Trim(strings.TrimSpace(name), `"'`)
		return rc.JobCompleted(name), nil
	}

	if scope != nil {
		if val, ok := scope[expr]; ok {
			return val, nil
		}
	}

	segments := strings.Split(expr, ".")
	head := segments[0]

	if val, ok := rc.JobConstant(head); ok {
		if len(segments) == 1 {
			return val, nil
		}
		nested, ok := walkPath(val, segments[1:])
		if !ok {
			return nil, pkgerrors.NewResolutionError(expr, fmt.Sprintf("job constant %q has no nested path", head))
		}
		return nested, nil
	}

	if val, ok := rc.TopConstant(head); ok {
		if len(segments) == 1 {
			return val, nil
		}
		nested, ok := walkPath(val, segments[1:])
		if !ok {
			return nil, pkgerrors.NewResolutionError(expr, fmt.Sprintf("top-level constant %q has no nested path", head))
		}
		return nested, nil
	}

	if val, ok := rc.OutputValue(expr); ok {
		return val, nil
	}

	return nil, pkgerrors.NewResolutionError(expr, "no scope variable, constant, or output matches this reference")
}

// walkPath descends a chain of map keys over an already-decoded JSON/YAML
// value (map[string]interface{} at each level). It is used for both
// Network().custom.* access and nested constant lookups.
func walkPath(root interface{}, segments []string) (interface{}, bool) {
	cur := root
	for _, seg := range segments {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func resolveSpec(ctx context.Context, spec *job.Spec, rc ResolverContext, scope map[string]interface{}) (interface{}, error) {
	args, err := ResolveArguments(ctx, spec.Arguments, rc, scope)
	if err != nil {
		return nil, err
	}

	switch spec.Type {
	case "basic-arithmetic":
		return resolveBasicArithmetic(args)
	case "abi-encode":
		return resolveABIEncode(args)
	case "abi-pack":
		return resolveABIPack(args)
	case "constructor-encode":
		return resolveConstructorEncode(args)
	case "compute-create":
		return resolveComputeCreate(args)
	case "compute-create2":
		return resolveComputeCreate2(args)
	case "read-balance":
		return resolveReadBalance(ctx, args, rc)
	case "call":
		return resolveCall(ctx, args, rc)
	case "contract-exists":
		return resolveContractExists(ctx, args, rc)
	case "read-json":
		return resolveReadJSON(args)
	case "slice-bytes":
		return resolveSliceBytes(args)
	case "job-completed":
		return resolveJobCompleted(args, rc)
	case "resolve-json":
		return resolveResolveJSON(ctx, args, rc, scope)
	default:
		return nil, pkgerrors.NewResolutionError(spec.Type, "unrecognized value spec kind")
	}
}
