package utils

import (
	"fmt"
	"os"
	"path"
)

// GetConfigDir returns the path to the screenbuddy configuration directory.
// The directory is located inside the user's configuration directory
// as <UserConfigDir>/.screenbuddy, unless overridden by SCREENBUDDY_CONFIG_HOME.
func GetConfigDir() (string, error) {
	if configHome := os.Getenv("SCREENBUDDY_CONFIG_HOME"); configHome != "" {
		return configHome, nil
	}
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return path.Join(cfg, ".screenbuddy"), nil
}

// GetCacheDir returns the path to the screenbuddy cache directory, used
// for synthesized speech audio. Located inside the user's cache directory
// as <UserCacheDir>/screenbuddy, unless overridden by SCREENBUDDY_CACHE_HOME.
func GetCacheDir() (string, error) {
	if cacheHome := os.Getenv("SCREENBUDDY_CACHE_HOME"); cacheHome != "" {
		return cacheHome, nil
	}
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user cache directory: %w", err)
	}
	return path.Join(cacheDir, "screenbuddy"), nil
}
