package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ProductionUsesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := newWithOutput(&buf, "production", "debug")
	log.WithField("flight_id", 7).Info("reserved")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "reserved", entry["msg"])
	assert.EqualValues(t, 7, entry["flight_id"])
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	log := newWithOutput(&bytes.Buffer{}, "development", "loud")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	_, ok := log.Formatter.(*logrus.TextFormatter)
	assert.True(t, ok)
}
