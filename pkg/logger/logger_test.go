package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLogger_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	log := New("info", &buf, false).WithFields(map[string]interface{}{"component": "listings"})

	log.Debug("hidden", nil)
	log.Warn("image delete failed", map[string]interface{}{"image": "products/a.png"})

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "image delete failed", line["message"])
	assert.Equal(t, "listings", line["component"])
	assert.Equal(t, "products/a.png", line["image"])
}
