package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestRenderSchema(t *testing.T) {
	out, err := renderSchema("json")
	require.NoError(t, err)
	var fromJSON map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &fromJSON))
	assert.Equal(t, "object", fromJSON["type"])
	assert.Equal(t, false, fromJSON["additionalProperties"])

	out, err = renderSchema("yaml")
	require.NoError(t, err)
	var fromYAML map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &fromYAML))
	assert.Contains(t, fromYAML, "properties")

	_, err = renderSchema("xml")
	assert.Error(t, err)
}

func TestValidateOutputFormat(t *testing.T) {
	for _, format := range []string{"human", "json", "yaml"} {
		assert.NoError(t, validateOutputFormat(format))
	}
	assert.Error(t, validateOutputFormat("table"))
}
