package internal

import (
	"log"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

var (
	// DefaultAppName is used for config lookup paths and the env prefix
	DefaultAppName    = "ocrsft"
	DefaultConfigPath = filepath.Join(getHomeDir(), ".config", DefaultAppName)
	DefaultExportPath = filepath.Join(DefaultConfigPath, "samples.db")

	// Dataset defaults
	DefaultDataDir  = filepath.Join(".", "data_preprocessed", "eng")
	DefaultTestSize = 0.1
	DefaultSeed     = uint64(42)

	// Encoder defaults
	DefaultMaxLength = 4096
	DefaultTokenizer = "hf"
	DefaultEncoding  = "cl100k_base"
)

func getHomeDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current working directory if home directory is unavailable
		cwd, cwdErr := os.Getwd()
		if cwdErr != nil {
			log.Printf("Unable to get home or working directory, using /tmp: %v", err)
			return "/tmp"
		}
		log.Printf("Unable to get home directory, using current working directory: %v", err)
		return cwd
	}
	return homeDir
}

// GetLogger returns a properly configured zerolog logger instance
func GetLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
