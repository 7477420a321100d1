package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/dom/twitter-clone/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New("info", "json", &buf)

	log.Debug("hidden")
	log.Info("signup", "user_id", "u1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "signup", entry["msg"])
	assert.Equal(t, "u1", entry["user_id"])
}

func TestNew_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New("error", "text", &buf)

	log.Warn("dropped")
	assert.Empty(t, buf.String())

	log.Error("kept")
	assert.Contains(t, buf.String(), "kept")
}
