// Package config resolves chessd's on-disk locations: the legacy JSON
// migration directory, the live database path, and the event-stream socket
// path. Ported from original_source's server/src/config.rs, dropping the
// "directories" crate's platform-specific project-dir lookup (no equivalent
// import appears anywhere in the corpus) in favor of the same
// $HOME-relative fallback the original uses for the legacy directory.
package config

import (
	"os"
	"path/filepath"
)

const (
	defaultConfigDir = ".config/chesstty/data"
	devDataDir       = "./data"
	defaultDBPath    = "./data/chesstty.db"
	defaultSocket    = "/tmp/chesstty.sock"
)

// AnalysisEnginePath returns the external UCI engine binary chessd spawns to
// run the post-game analysis pipeline, or "" if analysis-on-finish is
// disabled.
//
// Priority: CHESSTTY_ANALYSIS_ENGINE env var, otherwise disabled.
func AnalysisEnginePath() string {
	return os.Getenv("CHESSTTY_ANALYSIS_ENGINE")
}

// LegacyDataDir returns the directory jsonstore migrates records out of.
//
// Priority: CHESSTTY_DATA_DIR env var, then $HOME/.config/chesstty/data,
// then ./data.
func LegacyDataDir() string {
	if dir := os.Getenv("CHESSTTY_DATA_DIR"); dir != "" {
		return dir
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, defaultConfigDir)
	}
	return devDataDir
}

// DBPath returns the badgerstore database file path.
//
// Priority: CHESSTTY_DB_PATH env var, then $HOME/.local/share/chesstty/
// chesstty.db, then ./data/chesstty.db.
func DBPath() string {
	if path := os.Getenv("CHESSTTY_DB_PATH"); path != "" {
		return path
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".local/share/chesstty/chesstty.db")
	}
	return defaultDBPath
}

// SocketPath returns the Unix domain socket path the event-stream transport
// listens on.
//
// Priority: CHESSTTY_SOCKET_PATH env var, then /tmp/chesstty.sock.
func SocketPath() string {
	if path := os.Getenv("CHESSTTY_SOCKET_PATH"); path != "" {
		return path
	}
	return defaultSocket
}
