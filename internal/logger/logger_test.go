package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_FileOutputJSON(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	path := filepath.Join(t.TempDir(), "ledger.log")
	require.NoError(t, Init("debug", "json", path))
	assert.Equal(t, logrus.DebugLevel, Log.GetLevel())

	WithFields(logrus.Fields{"user": "0xabc"}).Info("deposit")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"user":"0xabc"`)
	assert.Contains(t, string(data), `"msg":"deposit"`)
}

func TestInit_BadLevelFallsBackToInfo(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	require.NoError(t, Init("loud", "text", "stderr"))
	assert.Equal(t, logrus.InfoLevel, Log.GetLevel())
}
