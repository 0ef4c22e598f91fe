// Package filex resolves and creates the on-disk directories the client
// keeps its per-account state in.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnsureDir joins base and sub, creates the directory (and parents) if
// needed and returns its absolute path. A relative base is resolved against
// the working directory.
func EnsureDir(base string, sub ...string) (string, error) {
	if base == "" {
		base = "."
	}
	root, err := filepath.Abs(base)
	if err != nil {
		return "", fmt.Errorf("abs %s: %w", base, err)
	}

	dir := filepath.Join(append([]string{root}, sub...)...)

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// AccountDirName turns an account identifier into a single safe path
// element. Separators and dots are replaced so an identifier can never
// escape the data directory.
func AccountDirName(account string) string {
	account = strings.TrimSpace(account)
	if account == "" {
		return "anonymous"
	}
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_")
	return r.Replace(account)
}
