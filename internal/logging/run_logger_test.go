package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConsoleOnly(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Console: &buf, NoColor: true})
	require.NoError(t, err)
	defer logger.Close()

	logger.Debug().Msg("hidden")
	logger.Info().Str("template_id", "abc").Msg("Template uploaded")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "Template uploaded")
	assert.Contains(t, out, "template_id=abc")
	assert.Empty(t, logger.Path())
}

func TestNewVerbose(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Console: &buf, NoColor: true, Verbose: true})
	require.NoError(t, err)
	defer logger.Close()

	logger.Debug().Msg("request details")
	assert.Contains(t, buf.String(), "request details")
}

func TestNewWithLogDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "carbone_logs")

	var buf bytes.Buffer
	logger, err := New(Options{Console: &buf, NoColor: true, Dir: dir, Verbose: true})
	require.NoError(t, err)

	logger.Info().Str("render_id", "R1.pdf").Msg("Report written")
	require.NoError(t, logger.Close())
	require.NoError(t, logger.Close())

	require.True(t, strings.HasPrefix(filepath.Base(logger.Path()), "carbone_"))
	data, err := os.ReadFile(logger.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"render_id":"R1.pdf"`)
	assert.Contains(t, string(data), `"message":"Run completed"`)
}

func TestNilRunLogger(t *testing.T) {
	var logger *RunLogger
	assert.Empty(t, logger.Path())
	assert.NoError(t, logger.Close())
}
