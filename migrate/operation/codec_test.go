package operation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/satishbabariya/arangomigrate/migrate/database"
)

const sample = `
- create_collection:
    name: Collection1
- create_collection:
    name: Collection2
    wait_for_sync: true
- create_index:
    name: OnNameAndEmail
    collection: Collection1
    fields:
      - name
      - email
    settings:
      type: persistent
      unique: true
      sparse: false
      deduplicate: false
- aql: This is a query
- create_edge_collection:
    name: Edge
- create_graph:
    name: Named Graph
    edge_definitions:
      - collection: Edge
        from:
          - Collection1
        to:
          - Collection2
    is_smart: false
    is_disjoint: true
    options:
      numberOfShards: 10
      writeConcern: 2
- delete_index:
    name: OnNameAndEmail
    collection: Collection1
- delete_graph:
    name: Named Graph
`

func TestDecodeList(t *testing.T) {
	var ops List
	require.NoError(t, yaml.Unmarshal([]byte(sample), &ops))
	require.Len(t, ops, 8)

	waitForSync, deduplicate := true, false
	assert.Equal(t, CreateCollection{Name: "Collection1"}, ops[0])
	assert.Equal(t, CreateCollection{Name: "Collection2", WaitForSync: &waitForSync}, ops[1])
	assert.Equal(t, CreateIndex{
		Name:       "OnNameAndEmail",
		Collection: "Collection1",
		Fields:     []string{"name", "email"},
		Settings:   database.IndexSettings{Type: database.PersistentIndex, Unique: true, Deduplicate: &deduplicate},
	}, ops[2])
	assert.Equal(t, AQL{Query: "This is a query"}, ops[3])
	assert.Equal(t, CreateEdgeCollection{Name: "Edge"}, ops[4])

	graph, ok := ops[5].(CreateGraph)
	require.True(t, ok)
	assert.Equal(t, "Named Graph", graph.Name)
	require.NotNil(t, graph.IsSmart)
	assert.False(t, *graph.IsSmart)
	require.NotNil(t, graph.IsDisjoint)
	assert.True(t, *graph.IsDisjoint)
	assert.Equal(t, &database.GraphOptions{NumberOfShards: 10, WriteConcern: 2}, graph.Options)
	assert.Equal(t, []string{"Collection2"}, graph.EdgeDefinitions[0].To)

	assert.Equal(t, DeleteIndex{Name: "OnNameAndEmail", Collection: "Collection1"}, ops[6])
	assert.Equal(t, DeleteGraph{Name: "Named Graph"}, ops[7])
}

func TestEncodeDecodeList(t *testing.T) {
	var ops List
	require.NoError(t, yaml.Unmarshal([]byte(sample), &ops))

	out, err := yaml.Marshal(ops)
	require.NoError(t, err)
	assert.Contains(t, string(out), "- aql: This is a query")
	assert.Contains(t, string(out), "- create_edge_collection:")

	var again List
	require.NoError(t, yaml.Unmarshal(out, &again))
	assert.Equal(t, ops, again)
}

func TestDecodeErrors(t *testing.T) {
	tests := map[string]string{
		"unknown operation": "- drop_everything:\n    name: x\n",
		"not a mapping":     "- create_collection\n",
		"two keys":          "- create_collection: {name: a}\n  delete_collection: {name: a}\n",
		"aql mapping":       "- aql: {query: x}\n",
		"not a list":        "create_collection: {name: a}\n",
		"bad field":         "- create_index:\n    name: [a]\n",
	}
	for name, doc := range tests {
		var ops List
		assert.Error(t, yaml.Unmarshal([]byte(doc), &ops), name)
	}
}

func TestDecodeIndexSettingsByType(t *testing.T) {
	doc := `
- create_index:
    name: expires
    collection: Sessions
    fields: [created_at]
    settings:
      type: ttl
      expireAfter: 3600
- create_index:
    name: location
    collection: Places
    fields: [coords]
    settings:
      type: geo
      geoJson: true
- create_index:
    name: search
    collection: Posts
    fields: [body]
    settings:
      type: fulltext
      minLength: 3
- create_index:
    name: by_tag
    collection: Posts
    fields: [tags]
    settings:
      type: persistent
`
	var ops List
	require.NoError(t, yaml.Unmarshal([]byte(doc), &ops))
	require.Len(t, ops, 4)

	assert.Equal(t, 3600, ops[0].(CreateIndex).Settings.ExpireAfter)
	assert.True(t, ops[1].(CreateIndex).Settings.GeoJSON)
	assert.Equal(t, 3, ops[2].(CreateIndex).Settings.MinLength)

	unset := ops[3].(CreateIndex).Settings
	assert.Nil(t, unset.Deduplicate)
	assert.True(t, unset.DeduplicateOrDefault())

	out, err := yaml.Marshal(ops)
	require.NoError(t, err)
	assert.Contains(t, string(out), "expireAfter: 3600")
	assert.Contains(t, string(out), "geoJson: true")
	assert.NotContains(t, string(out), "deduplicate")
}
