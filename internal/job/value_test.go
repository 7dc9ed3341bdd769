package job

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromAnyParsesReference(t *testing.T) {
	t.Parallel()

	v := FromAny("{{deploy.hash}}")
	require.Equal(t, KindReference, v.Kind)
	require.Equal(t, "deploy.hash", v.Reference)
}

func TestFromAnyParsesLiteralString(t *testing.T) {
	t.Parallel()

	v := FromAny("plain")
	require.Equal(t, KindLiteral, v.Kind)
	require.Equal(t, "plain", v.Literal)
}

func TestFromAnyParsesSpec(t *testing.T) {
	t.Parallel()

	raw := map[string]interface{}{
		"type": "basic-arithmetic",
		"arguments": map[string]interface{}{
			"operation": "add",
			"values":    []interface{}{"1", "2"},
		},
	}
	v := FromAny(raw)
	require.Equal(t, KindSpec, v.Kind)
	require.Equal(t, "basic-arithmetic", v.Spec.Type)
	require.Equal(t, KindLiteral, v.Spec.Arguments["operation"].Kind)

	values := v.Spec.Arguments["values"]
	require.Equal(t, KindArray, values.Kind)
	require.Len(t, values.Array, 2)
}

func TestFromAnyPassesThroughPlainObjects(t *testing.T) {
	t.Parallel()

	raw := map[string]interface{}{"foo": "bar"}
	v := FromAny(raw)
	require.Equal(t, KindLiteral, v.Kind)
	require.Equal(t, raw, v.Literal)
}
