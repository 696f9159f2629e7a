package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/relloyd/sparkify-dwh/constants"
)

// EnvVarHomeDir relocates the directory holding the config files.
const EnvVarHomeDir = constants.EnvVarPrefix + "_HOME"

var configHomeDir string

// mustGetConfigHomeDir returns the full path to the home directory that stores all config files.
func mustGetConfigHomeDir() string {
	if configHomeDir == "" {
		if d := os.Getenv(EnvVarHomeDir); d != "" {
			configHomeDir = d
			return configHomeDir
		}
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		configHomeDir = filepath.Join(home, MainDir)
	}
	return configHomeDir
}

// makeDir will make the given directory if it does not already exist.
func makeDir(dir string) error {
	_, err := os.Stat(dir)
	if os.IsNotExist(err) {
		if err = os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("error creating directory %v: %w", dir, err)
		}
		return nil
	}
	return err
}

func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}
