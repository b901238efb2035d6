package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"kizuna/interpreter-go/pkg/ast"
)

// ScriptRef names one program file scheduled for submission.
type ScriptRef struct {
	Package string
	Path    string
}

// Program is a decoded program file.
type Program struct {
	ScriptRef
	Script *ast.Script
}

// Loader orders the program files of a package and its locked dependencies.
type Loader struct {
	manifest *Manifest
	lock     *Lockfile
}

// NewLoader creates a loader. lock may be nil when the manifest declares no
// dependencies.
func NewLoader(manifest *Manifest, lock *Lockfile) (*Loader, error) {
	if manifest == nil {
		return nil, fmt.Errorf("loader: missing manifest")
	}
	if len(manifest.Dependencies) > 0 && lock == nil {
		return nil, fmt.Errorf("loader: package.lock missing for %q; run `kizuna deps install`", manifest.Name)
	}
	if lock != nil && lock.Root != "" && lock.Root != manifest.Name {
		return nil, fmt.Errorf("loader: lockfile root %q does not match manifest name %q", lock.Root, manifest.Name)
	}
	return &Loader{manifest: manifest, lock: lock}, nil
}

// LoadLockfileFor reads the lockfile next to manifest. It returns a nil
// lockfile without error when the file is absent.
func LoadLockfileFor(manifest *Manifest) (*Lockfile, error) {
	if manifest == nil {
		return nil, nil
	}
	lock, err := LoadLockfile(filepath.Join(manifest.Dir(), LockfileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return lock, nil
}

// Plan returns every program file in submission order. Dependencies come
// first, visited in sorted name order with their own dependencies ahead of
// them; the root package's scripts follow in manifest order.
func (l *Loader) Plan() ([]ScriptRef, error) {
	visited := make(map[string]bool)
	var refs []ScriptRef
	for _, name := range l.manifest.DependencyNames() {
		var err error
		if refs, err = l.visit(sanitizeSegment(name), visited, refs); err != nil {
			return nil, err
		}
	}
	for _, path := range l.manifest.ScriptPaths() {
		refs = append(refs, ScriptRef{Package: l.manifest.Name, Path: path})
	}
	if len(refs) == 0 {
		return nil, ErrNoScripts
	}
	return refs, nil
}

func (l *Loader) visit(name string, visited map[string]bool, refs []ScriptRef) ([]ScriptRef, error) {
	if visited[name] {
		return refs, nil
	}
	visited[name] = true

	pkg, ok := l.lock.Find(name)
	if !ok {
		return nil, fmt.Errorf("loader: dependency %q not in package.lock; run `kizuna deps install`", name)
	}
	for _, dep := range pkg.Dependencies {
		var err error
		if refs, err = l.visit(dep, visited, refs); err != nil {
			return nil, err
		}
	}
	manifest, err := LoadManifest(filepath.Join(pkg.Dir, ManifestName))
	if err != nil {
		return nil, fmt.Errorf("loader: dependency %q: %w", name, err)
	}
	for _, path := range manifest.ScriptPaths() {
		refs = append(refs, ScriptRef{Package: name, Path: path})
	}
	return refs, nil
}

// Load decodes a planned program file.
func (r ScriptRef) Load() (*Program, error) {
	script, err := LoadProgram(r.Path)
	if err != nil {
		return nil, err
	}
	return &Program{ScriptRef: r, Script: script}, nil
}
