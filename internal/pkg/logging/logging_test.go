package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWithLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")

	logger := log.New()
	closeLog, err := Setup(logger, path, false)
	require.NoError(t, err)
	defer closeLog()

	logger.Info("account check started")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "account check started")
}

func TestSetupVerboseLevel(t *testing.T) {
	logger := log.New()
	closeLog, err := Setup(logger, "", true)
	require.NoError(t, err)
	defer closeLog()

	assert.Equal(t, log.DebugLevel, logger.GetLevel())
}

func TestSetupDefaultLevel(t *testing.T) {
	logger := log.New()
	closeLog, err := Setup(logger, "", false)
	require.NoError(t, err)
	defer closeLog()

	assert.Equal(t, log.InfoLevel, logger.GetLevel())
}

func TestSetupBadLogFile(t *testing.T) {
	logger := log.New()
	_, err := Setup(logger, filepath.Join(t.TempDir(), "missing", "run.log"), false)
	assert.Error(t, err)
}

func TestStatusGlyphs(t *testing.T) {
	assert.True(t, strings.HasSuffix(Success("account active"), " account active"))
	assert.Contains(t, Success("m"), "✓")
	assert.Contains(t, Warning("m"), "⚠")
	assert.Contains(t, Failure("m"), "✗")
}
