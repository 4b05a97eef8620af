package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// ExecutableDir returns the directory containing the running binary with
// symlinks resolved.
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}

	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}

	return filepath.Dir(exe), nil
}

// ResolvePath turns a configured path into an absolute one. Relative paths
// are looked up against the working directory first and the executable
// directory second; when neither exists the working-directory form is
// returned so the caller reports a sensible "not found".
func ResolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}

	wdPath, err := filepath.Abs(path)
	if err == nil && FileExists(wdPath) {
		return wdPath
	}

	if exeDir, exeErr := ExecutableDir(); exeErr == nil {
		exePath := filepath.Join(exeDir, path)
		if FileExists(exePath) {
			slog.Debug("resolved path against executable directory",
				slog.String("configured", path),
				slog.String("resolved", exePath))
			return exePath
		}
	}

	if err != nil {
		return path
	}
	return wdPath
}

// EnsureDir creates dir and its parents if they do not exist.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
