package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains the application file-system layout. Relative
// configuration paths resolve against the executable directory, never
// the current working directory.
type Paths struct {
	ExecutableDir string
	DataDir       string
	ReportsDir    string
	LogsDir       string
}

// GetPaths returns the application paths relative to the executable
// location.
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %w", err)
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}
	return PathsFrom(filepath.Dir(exe))
}

// PathsFrom builds the layout under the given base directory and
// ensures the directories exist.
func PathsFrom(baseDir string) (*Paths, error) {
	p := &Paths{
		ExecutableDir: baseDir,
		DataDir:       filepath.Join(baseDir, "data"),
		ReportsDir:    filepath.Join(baseDir, "reports"),
		LogsDir:       filepath.Join(baseDir, "logs"),
	}
	for _, dir := range []string{p.DataDir, p.ReportsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return p, nil
}

// Resolve turns a possibly relative configured path into an absolute
// one anchored at the executable directory.
func (p *Paths) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.ExecutableDir, path)
}
