package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const validDoc = `
version: "1.0.0"
name: deploy-token
network:
  name: sepolia
  chain_id: 11155111
  rpc_url: https://rpc.sepolia.example/v1
actions:
  - name: deploy
    type: send-transaction
    arguments:
      to: "0x0000000000000000000000000000000000000001"
      data: "0x"
  - name: verify
    type: verify-contract
    depends_on: ["deploy"]
    arguments:
      address: "{{deploy.address}}"
`

func TestDecodeParsesAndValidatesADocument(t *testing.T) {
	t.Parallel()

	doc, err := Decode(strings.NewReader(validDoc))
	require.NoError(t, err)
	require.Equal(t, "deploy-token", doc.Name)
	require.Len(t, doc.Actions, 2)

	j, templates := ToJob("jobs/deploy.yaml", *doc)
	require.Equal(t, "deploy-token", j.Name)
	require.Empty(t, templates)
	require.Equal(t, "deploy", j.Actions[0].Name)
	require.Equal(t, "deploy.address", j.Actions[1].Arguments["address"].Reference)
}

func TestDecodeRejectsDuplicateActionNames(t *testing.T) {
	t.Parallel()

	const doc = `
version: "1.0.0"
name: bad
network: {name: x, chain_id: 1, rpc_url: "https://x.example"}
actions:
  - {name: a, type: static}
  - {name: a, type: static}
`
	_, err := Decode(strings.NewReader(doc))
	require.Error(t, err)
}

func TestDecodeRejectsUnknownDependency(t *testing.T) {
	t.Parallel()

	const doc = `
version: "1.0.0"
name: bad
network: {name: x, chain_id: 1, rpc_url: "https://x.example"}
actions:
  - {name: a, type: static, depends_on: ["ghost"]}
`
	_, err := Decode(strings.NewReader(doc))
	require.Error(t, err)
}

func TestDecodeRejectsMalformedVersion(t *testing.T) {
	t.Parallel()

	const doc = `
version: "not-semver"
name: bad
network: {name: x, chain_id: 1, rpc_url: "https://x.example"}
actions:
  - {name: a, type: static}
`
	_, err := Decode(strings.NewReader(doc))
	require.Error(t, err)
}
