// Package credentials resolves secrets and identifiers from the environment,
// credential files and built-in defaults.
package credentials

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Resolver looks values up through injectable environment and file readers.
// The zero value reads the real process environment and filesystem.
type Resolver struct {
	Getenv   func(string) string
	ReadFile func(string) ([]byte, error)
}

// Source is one candidate location for a value.
type Source interface {
	lookup(r Resolver) string
}

type envSource string

func (s envSource) lookup(r Resolver) string {
	return r.env(string(s))
}

type fileSource struct {
	pathEnv     string
	defaultPath string
}

func (s fileSource) lookup(r Resolver) string {
	path := r.Path(s.pathEnv, s.defaultPath)
	if path == "" {
		return ""
	}
	data, err := r.readFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

type literalSource string

func (s literalSource) lookup(Resolver) string {
	return strings.TrimSpace(string(s))
}

// Env reads the named environment variable.
func Env(name string) Source {
	return envSource(name)
}

// File reads the file named by the pathEnv variable, or defaultPath when that
// variable is unset or blank.
func File(pathEnv, defaultPath string) Source {
	return fileSource{pathEnv: pathEnv, defaultPath: defaultPath}
}

// Literal always yields v.
func Literal(v string) Source {
	return literalSource(v)
}

// Resolve returns the first non-empty trimmed value, or "" when every source
// comes up empty.
func (r Resolver) Resolve(sources ...Source) string {
	for _, src := range sources {
		if v := src.lookup(r); v != "" {
			return v
		}
	}
	return ""
}

// Path returns the trimmed value of pathEnv, falling back to defaultPath.
func (r Resolver) Path(pathEnv, defaultPath string) string {
	if pathEnv != "" {
		if p := r.env(pathEnv); p != "" {
			return p
		}
	}
	return defaultPath
}

func (r Resolver) env(name string) string {
	getenv := r.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	return strings.TrimSpace(getenv(name))
}

func (r Resolver) readFile(path string) ([]byte, error) {
	if r.ReadFile != nil {
		return r.ReadFile(path)
	}
	return os.ReadFile(path)
}

// DefaultPath returns ~/.credentials/<name>. When the home directory cannot
// be determined the path is relative to the working directory.
func DefaultPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return filepath.Join(home, ".credentials", name)
}

// WriteSecret overwrites path with value, creating missing parent directories.
// The file is readable by the owner only.
func WriteSecret(path, value string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create credential directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(value), 0o600); err != nil {
		return fmt.Errorf("write credential file: %w", err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("restrict credential file: %w", err)
	}
	return nil
}
