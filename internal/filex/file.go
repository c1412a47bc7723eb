// Package filex holds small filesystem helpers for the client: output
// directory creation and safe saving of received payloads.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func EnsureSubDir(dirName string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getwd: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// SafeName strips any path components from a peer-supplied file name so a
// received file can never escape the output directory. An empty or
// dot-only result falls back to "unnamed".
func SafeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "" || name == "." || name == ".." || name == string(filepath.Separator) {
		return "unnamed"
	}
	return name
}

// SaveReceived writes data into dir under a sanitized version of name and
// returns the final path. If the name is already taken, a numeric suffix
// is inserted before the extension.
func SaveReceived(dir, name string, data []byte) (string, error) {
	base := SafeName(name)
	path := filepath.Join(dir, base)

	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for i := 1; ; i++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			break
		}
		path = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, i, ext))
	}

	if err := os.WriteFile(path, data, 0o660); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
