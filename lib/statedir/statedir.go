package statedir

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// Prefix marks a path as relative to the state directory.
const Prefix = "<state>"

const appName = "campcheck"

// Dir returns the directory campcheck keeps its state in, the campcheck
// subdirectory of the XDG state home (~/.local/state on linux).
func Dir() string {
	return filepath.Join(xdg.StateHome, appName)
}

// ResolvePath replaces a leading "<state>" in path with the state directory
// and makes sure that directory exists, other paths are returned untouched.
func ResolvePath(path string) (string, error) {
	if !strings.HasPrefix(path, Prefix) {
		return path, nil
	}

	root := Dir()
	err := os.MkdirAll(root, 0o755)
	if err != nil {
		return "", err
	}

	subpath := strings.TrimLeft(strings.TrimPrefix(path, Prefix), `/\`)
	return filepath.Join(root, subpath), nil
}
