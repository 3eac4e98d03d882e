package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestSwaggerDocRegistered(t *testing.T) {
	doc, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var spec map[string]any
	require.NoError(t, json.Unmarshal([]byte(doc), &spec))

	info, ok := spec["info"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Asistente AI-MYPE API", info["title"])
	assert.Equal(t, "/api/v1", spec["basePath"])

	paths, ok := spec["paths"].(map[string]any)
	require.True(t, ok)
	for _, route := range []string{
		"/register", "/login", "/assistant/ask",
		"/payments/{id}/confirm", "/payments/webhook",
		"/tax-regime/calculate", "/health",
	} {
		assert.Contains(t, paths, route)
	}
}
