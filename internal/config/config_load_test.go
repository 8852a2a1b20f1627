package config

import (
	"errors"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load([]string{"--dir", dir})
	require.NoError(t, err)

	assert.Equal(t, ModeStdio, cfg.Mode)
	assert.Equal(t, DefaultHost, cfg.Host)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, int64(DefaultMaxFileSize), cfg.MaxFileSize)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, dir, cfg.PDFDirectory)
}

func TestLoad_Flags(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load([]string{
		"--mode=server",
		"--host=0.0.0.0",
		"--port=9090",
		"--dir=" + dir,
		"--loglevel=debug",
		"--maxfilesize=2048",
		"--xrefwindow=1024",
		"--extendedfilters",
		"--strictgenerations",
		"--timeout=5s",
		"--crosscheck=false",
		"--cachesize=0",
	})
	require.NoError(t, err)

	assert.Equal(t, ModeServer, cfg.Mode)
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, int64(2048), cfg.MaxFileSize)
	assert.Equal(t, 1024, cfg.XRefWindow)
	assert.True(t, cfg.ExtendedFilters)
	assert.True(t, cfg.StrictGenerations)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.False(t, cfg.CrossCheck)
	assert.Zero(t, cfg.CacheSize)
}

func TestLoad_Environment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PDFGRAPH_MODE", "server")
	t.Setenv("PDFGRAPH_PORT", "3000")
	t.Setenv("PDFGRAPH_DIR", dir)
	t.Setenv("PDFGRAPH_LOGLEVEL", "warn")
	t.Setenv("PDFGRAPH_EXTENDEDFILTERS", "true")
	t.Setenv("PDFGRAPH_TIMEOUT", "45s")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, ModeServer, cfg.Mode)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, dir, cfg.PDFDirectory)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.True(t, cfg.ExtendedFilters)
	assert.Equal(t, 45*time.Second, cfg.Timeout)
}

func TestLoad_FlagOverridesEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PDFGRAPH_MODE", "server")
	t.Setenv("PDFGRAPH_PORT", "3000")

	cfg, err := Load([]string{"--mode=stdio", "--port=8888", "--dir=" + dir})
	require.NoError(t, err)
	assert.Equal(t, ModeStdio, cfg.Mode)
	assert.Equal(t, 8888, cfg.Port)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		args []string
	}{
		{"mode", []string{"--mode=http"}},
		{"port", []string{"--mode=server", "--port=0"}},
		{"log level", []string{"--loglevel=verbose"}},
		{"xref window", []string{"--xrefwindow=0"}},
		{"unknown flag", []string{"--nope"}},
		{"bad duration", []string{"--timeout=soon"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(append(tt.args, "--dir="+dir))
			assert.Error(t, err)
		})
	}
}

func TestLoad_Help(t *testing.T) {
	_, err := Load([]string{"--help"})
	assert.True(t, errors.Is(err, pflag.ErrHelp))
}

func TestLoad_VersionFlag(t *testing.T) {
	for _, arg := range []string{"-v", "-version", "--version"} {
		_, err := Load([]string{"--dir=/tmp", arg})
		assert.True(t, errors.Is(err, ErrVersionRequested), arg)
	}
}
