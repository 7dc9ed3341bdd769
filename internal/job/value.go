package job

import (
	"regexp"
	"strings"
)

// Kind discriminates the Value tagged union, per the "untagged-union
// Values" design note: a typed implementation models Value as
// Literal | Reference(expr) | Spec(kind, args) | Array(elements), parsed
// once when the document is loaded instead of sniffed at every resolve call.
type Kind int

const (
	KindLiteral Kind = iota
	KindReference
	KindSpec
	KindArray
)

var referencePattern = regexp.MustCompile(`^\{\{(.*)\}\}$`)

// Spec is a tagged value-computation primitive: { type: kind, arguments }.
type Spec struct {
	Type      string
	Arguments map[string]Value
}

// Value is a node in the recursive Value document: a literal, a "{{…}}"
// reference, a tagged Spec, or an array of further Values.
type Value struct {
	Kind      Kind
	Literal   interface{}
	Reference string
	Spec      *Spec
	Array     []Value
}

// Lit constructs a literal Value.
func Lit(v interface{}) Value { return Value{Kind: KindLiteral, Literal: v} }

// Ref constructs a reference Value from its bare expression (without the
// surrounding "{{" "}}").
func Ref(expr string) Value { return Value{Kind: KindReference, Reference: strings.TrimSpace(expr)} }

// NewSpec constructs a tagged Spec Value.
func NewSpec(kind string, args map[string]Value) Value {
	return Value{Kind: KindSpec, Spec: &Spec{Type: kind, Arguments: args}}
}

// FromAny parses a raw, already-YAML/JSON-decoded value (string / number /
// bool / nil / map[string]interface{} / []interface{}) into a Value. This is
// the boundary an external loader would call after decoding a document; it
// is exposed here so the resolver and its tests can construct Values
// directly without a full YAML loader.
func FromAny(raw interface{}) Value {
	switch v := raw.(type) {
	case string:
		if m := referencePattern.FindStringSubmatch(v); m != nil {
			return Ref(m[1])
		}
		return Lit(v)
	case []interface{}:
		elems := make([]Value, len(v))
		for i, e := range v {
			elems[i] = FromAny(e)
		}
		return Value{Kind: KindArray, Array: elems}
	case map[string]interface{}:
		if typ, ok := v["type"].(string); ok {
			args, _ := v["arguments"].(map[string]interface{})
			parsedArgs := make(map[string]Value, len(args))
			for k, av := range args {
				parsedArgs[k] = FromAny(av)
			}
			return NewSpec(typ, parsedArgs)
		}
		return Lit(v)
	default:
		return Lit(v)
	}
}
