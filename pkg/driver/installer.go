package driver

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Installer resolves a manifest's dependency graph into a lockfile.
type Installer struct {
	manifest *Manifest
	paths    pathFetcher
	git      gitSource
}

type gitSource interface {
	Fetch(name string, spec *DependencySpec) (*LockedPackage, error)
}

// NewInstaller creates an installer caching git checkouts under cacheDir.
func NewInstaller(manifest *Manifest, cacheDir string) *Installer {
	return &Installer{
		manifest: manifest,
		git:      newGitFetcher(cacheDir),
	}
}

// Install fetches every dependency reachable from the manifest and rewrites
// lock.Packages with the result. It reports whether the package set changed
// along with human-readable progress lines.
func (in *Installer) Install(lock *Lockfile) (bool, []string, error) {
	if in == nil || in.manifest == nil {
		return false, nil, fmt.Errorf("installer: missing manifest")
	}
	if lock == nil {
		return false, nil, fmt.Errorf("installer: nil lockfile")
	}

	state := &installState{
		resolved: make(map[string]*LockedPackage),
		origin:   make(map[string]string),
		declared: make(map[string]string),
	}
	if err := in.resolveAll(state, in.manifest, in.manifest.Name); err != nil {
		return false, state.logs, err
	}

	names := make([]string, 0, len(state.resolved))
	for name := range state.resolved {
		names = append(names, name)
	}
	sort.Strings(names)
	packages := make([]*LockedPackage, 0, len(names))
	for _, name := range names {
		packages = append(packages, state.resolved[name])
	}

	changed := !samePackages(lock.Packages, packages)
	if lock.Root == "" {
		lock.Root = in.manifest.Name
	}
	lock.Packages = packages
	lock.normalize()
	return changed, state.logs, nil
}

type installState struct {
	resolved map[string]*LockedPackage
	origin   map[string]string
	// declared holds the descriptor each resolved package was fetched from.
	declared map[string]string
	logs     []string
}

func (in *Installer) resolveAll(state *installState, manifest *Manifest, requester string) error {
	for _, depName := range manifest.DependencyNames() {
		if err := in.resolve(state, manifest, requester, depName, manifest.Dependencies[depName]); err != nil {
			return err
		}
	}
	return nil
}

func (in *Installer) resolve(state *installState, owner *Manifest, requester, depName string, spec *DependencySpec) error {
	key := sanitizeSegment(depName)
	descriptor := declaredSource(owner, spec)
	if _, ok := state.resolved[key]; ok && state.declared[key] == descriptor {
		return nil
	}
	pkg, err := in.fetch(owner, depName, spec)
	if err != nil {
		return err
	}
	if existing, ok := state.resolved[key]; ok {
		if existing.Source != pkg.Source {
			return fmt.Errorf("installer: dependency %q required by %s resolves to %s but %s already locked it to %s",
				key, requester, pkg.Source, state.origin[key], existing.Source)
		}
		return nil
	}

	depManifest, err := LoadManifest(filepath.Join(pkg.Dir, ManifestName))
	if err != nil {
		return fmt.Errorf("installer: dependency %q: %w", key, err)
	}
	for _, name := range depManifest.DependencyNames() {
		pkg.Dependencies = append(pkg.Dependencies, sanitizeSegment(name))
	}
	sort.Strings(pkg.Dependencies)
	if depManifest.Version != "" && !spec.IsGit() {
		pkg.Version = depManifest.Version
	}

	state.resolved[key] = pkg
	state.origin[key] = requester
	state.declared[key] = descriptor
	state.logs = append(state.logs, fmt.Sprintf("Resolved %s %s (%s)", key, pkg.Version, pkg.Source))
	return in.resolveAll(state, depManifest, key)
}

func (in *Installer) fetch(owner *Manifest, depName string, spec *DependencySpec) (*LockedPackage, error) {
	if spec.IsGit() {
		return in.git.Fetch(depName, spec)
	}
	return in.paths.Fetch(depName, owner.Dir(), spec)
}

// declaredSource identifies a dependency as written, before fetching: the
// absolute directory of a path dependency, or a git URL with its pin.
func declaredSource(owner *Manifest, spec *DependencySpec) string {
	if spec.IsGit() {
		revision, _, err := gitRevisionFromSpec(spec)
		if err != nil {
			return ""
		}
		return fmt.Sprintf("git+%s#%s", strings.TrimSpace(spec.Git), revision)
	}
	dir := filepath.FromSlash(spec.Path)
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(owner.Dir(), dir)
	}
	return "path:" + filepath.ToSlash(filepath.Clean(dir))
}

func samePackages(a, b []*LockedPackage) bool {
	index := make(map[string]*LockedPackage, len(a))
	for _, pkg := range a {
		if pkg != nil {
			index[pkg.Name] = pkg
		}
	}
	if len(index) != len(b) {
		return false
	}
	for _, pkg := range b {
		old, ok := index[pkg.Name]
		if !ok {
			return false
		}
		if old.Version != pkg.Version || old.Source != pkg.Source || old.Checksum != pkg.Checksum || old.Dir != pkg.Dir {
			return false
		}
		if len(old.Dependencies) != len(pkg.Dependencies) {
			return false
		}
		for i := range old.Dependencies {
			if old.Dependencies[i] != pkg.Dependencies[i] {
				return false
			}
		}
	}
	return true
}
