package codegen

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Write writes every artifact under dir, creating directories as needed.
func Write(dir string, arts []Artifact) error {
	for _, a := range arts {
		path := filepath.Join(dir, filepath.FromSlash(a.Path))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("codegen: failed creating output directory: %w", err)
		}
		if err := os.WriteFile(path, a.Content, 0o644); err != nil {
			return fmt.Errorf("codegen: failed writing output %s: %w", path, err)
		}
	}
	return nil
}

// Clean removes previously generated artifacts from dir so a full pass
// regenerates them wholesale. Go bindings are removed for package pkg only.
// Missing files are ignored.
func Clean(dir, pkg string) error {
	if pkg == "" {
		pkg = DefaultGoPackage
	}
	paths := []string{PathInitScript, PathImports, PathSystemsTS, PathComponentsTS, pkg + "/" + GoBindingsFile}
	for _, p := range paths {
		err := os.Remove(filepath.Join(dir, filepath.FromSlash(p)))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("codegen: clean %s: %w", p, err)
		}
	}
	return nil
}
