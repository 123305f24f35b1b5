package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLegacyDataDirPrefersEnvVar(t *testing.T) {
	t.Setenv("CHESSTTY_DATA_DIR", "/tmp/chesstty-data")
	assert.Equal(t, "/tmp/chesstty-data", LegacyDataDir())
}

func TestLegacyDataDirFallsBackToHome(t *testing.T) {
	t.Setenv("CHESSTTY_DATA_DIR", "")
	t.Setenv("HOME", "/home/tester")
	assert.Equal(t, filepath.Join("/home/tester", ".config/chesstty/data"), LegacyDataDir())
}

func TestLegacyDataDirFallsBackToDevDirWithoutHome(t *testing.T) {
	t.Setenv("CHESSTTY_DATA_DIR", "")
	t.Setenv("HOME", "")
	assert.Equal(t, devDataDir, LegacyDataDir())
}

func TestDBPathPrefersEnvVar(t *testing.T) {
	t.Setenv("CHESSTTY_DB_PATH", "/tmp/custom.db")
	assert.Equal(t, "/tmp/custom.db", DBPath())
}

func TestDBPathFallsBackToHome(t *testing.T) {
	t.Setenv("CHESSTTY_DB_PATH", "")
	t.Setenv("HOME", "/home/tester")
	assert.Equal(t, filepath.Join("/home/tester", ".local/share/chesstty/chesstty.db"), DBPath())
}

func TestSocketPathPrefersEnvVar(t *testing.T) {
	t.Setenv("CHESSTTY_SOCKET_PATH", "/tmp/custom.sock")
	assert.Equal(t, "/tmp/custom.sock", SocketPath())
}

func TestSocketPathDefault(t *testing.T) {
	t.Setenv("CHESSTTY_SOCKET_PATH", "")
	assert.Equal(t, defaultSocket, SocketPath())
}

func TestAnalysisEnginePathDisabledByDefault(t *testing.T) {
	t.Setenv("CHESSTTY_ANALYSIS_ENGINE", "")
	assert.Equal(t, "", AnalysisEnginePath())
}

func TestAnalysisEnginePathFromEnvVar(t *testing.T) {
	t.Setenv("CHESSTTY_ANALYSIS_ENGINE", "/usr/bin/stockfish")
	assert.Equal(t, "/usr/bin/stockfish", AnalysisEnginePath())
}
