package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testTool = "kizuna-cli test"

func TestInstallerPathDependency(t *testing.T) {
	root := t.TempDir()
	mainDir := filepath.Join(root, "app")
	depDir := filepath.Join(root, "dep")
	writePackage(t, mainDir, `
name: app
version: 0.1.0
dependencies:
  dep:
    path: ../dep
`)
	writePackage(t, depDir, `
name: dep
version: 0.2.0
scripts: [lib.kz.yml]
`, "lib.kz.yml")

	manifest, err := LoadManifest(filepath.Join(mainDir, ManifestName))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	lock := NewLockfile(manifest.Name, testTool)
	installer := NewInstaller(manifest, filepath.Join(root, ".kizuna"))

	changed, logs, err := installer.Install(lock)
	if err != nil {
		t.Fatalf("Install returned error: %v", err)
	}
	if !changed {
		t.Fatalf("expected lockfile to change for new dependency")
	}
	if len(logs) == 0 {
		t.Fatalf("expected logging output for dependency resolution")
	}
	if len(lock.Packages) != 1 {
		t.Fatalf("lock packages = %#v", lock.Packages)
	}
	pkg := lock.Packages[0]
	if pkg.Name != "dep" || pkg.Version != "0.2.0" {
		t.Fatalf("lock entry unexpected: %#v", pkg)
	}
	if !strings.HasPrefix(pkg.Source, "path:") || pkg.Dir != depDir {
		t.Fatalf("expected path source in %s, got %#v", depDir, pkg)
	}
	if pkg.Checksum == "" {
		t.Fatalf("expected checksum")
	}

	changed, _, err = installer.Install(lock)
	if err != nil {
		t.Fatalf("second Install returned error: %v", err)
	}
	if changed {
		t.Fatalf("expected second install to be a no-op")
	}

	writeFile(t, filepath.Join(depDir, "notes.txt"), "edited")
	changed, _, err = installer.Install(lock)
	if err != nil {
		t.Fatalf("third Install returned error: %v", err)
	}
	if !changed {
		t.Fatalf("expected checksum change to update the lockfile")
	}
}

func TestInstallerPathDependencyTransitive(t *testing.T) {
	root := t.TempDir()
	writePackage(t, filepath.Join(root, "app"), `
name: app
dependencies:
  mid: ../mid
`)
	writePackage(t, filepath.Join(root, "mid"), `
name: mid
version: 1.0.0
dependencies:
  leaf: ../leaf
`)
	writePackage(t, filepath.Join(root, "leaf"), `
name: leaf
version: 2.0.0
`)

	manifest, err := LoadManifest(filepath.Join(root, "app", ManifestName))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	lock := NewLockfile(manifest.Name, testTool)
	if _, _, err := NewInstaller(manifest, "").Install(lock); err != nil {
		t.Fatalf("Install: %v", err)
	}
	if len(lock.Packages) != 2 {
		t.Fatalf("lock packages = %#v", lock.Packages)
	}
	leaf, ok := lock.Find("leaf")
	if !ok || leaf.Version != "2.0.0" {
		t.Fatalf("leaf entry = %#v", leaf)
	}
	mid, ok := lock.Find("mid")
	if !ok || len(mid.Dependencies) != 1 || mid.Dependencies[0] != "leaf" {
		t.Fatalf("mid entry = %#v", mid)
	}
}

func TestInstallerConflictingSources(t *testing.T) {
	root := t.TempDir()
	writePackage(t, filepath.Join(root, "app"), `
name: app
dependencies:
  a: ../a
  shared: ../shared_one
`)
	writePackage(t, filepath.Join(root, "a"), `
name: a
dependencies:
  shared: ../shared_two
`)
	writePackage(t, filepath.Join(root, "shared_one"), "name: shared")
	writePackage(t, filepath.Join(root, "shared_two"), "name: shared")

	manifest, err := LoadManifest(filepath.Join(root, "app", ManifestName))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	_, _, err = NewInstaller(manifest, "").Install(NewLockfile(manifest.Name, testTool))
	if err == nil || !strings.Contains(err.Error(), `dependency "shared"`) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestInstallerMissingPathDependency(t *testing.T) {
	root := t.TempDir()
	writePackage(t, filepath.Join(root, "app"), `
name: app
dependencies:
  ghost: ../ghost
`)
	manifest, err := LoadManifest(filepath.Join(root, "app", ManifestName))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	_, _, err = NewInstaller(manifest, "").Install(NewLockfile(manifest.Name, testTool))
	if err == nil || !strings.Contains(err.Error(), "fetch: dependency \"ghost\"") {
		t.Fatalf("expected fetch error, got %v", err)
	}
}

func TestInstallerGitDependency(t *testing.T) {
	root := t.TempDir()
	repo := filepath.Join(root, "repo")
	writePackage(t, repo, `
name: gitpkg
version: 0.2.0
scripts: [src/core.kz.yml]
`, "src/core.kz.yml")
	rev := initGitRepo(t, repo)

	mainDir := filepath.Join(root, "app")
	writePackage(t, mainDir, `
name: app
version: 0.1.0
dependencies:
  gitpkg:
    git: `+repo+`
    rev: `+rev+`
`)

	manifest, err := LoadManifest(filepath.Join(mainDir, ManifestName))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	cacheDir := filepath.Join(root, "cache")
	lock := NewLockfile(manifest.Name, testTool)

	changed, _, err := NewInstaller(manifest, cacheDir).Install(lock)
	if err != nil {
		t.Fatalf("Install error: %v", err)
	}
	if !changed {
		t.Fatalf("expected lockfile change for git dependency")
	}
	if len(lock.Packages) != 1 {
		t.Fatalf("lock packages unexpected: %#v", lock.Packages)
	}
	pkg := lock.Packages[0]
	if want := fmt.Sprintf("git+%s@%s", repo, rev); pkg.Source != want {
		t.Fatalf("pkg.Source = %q, want %q", pkg.Source, want)
	}
	if pkg.Version != rev {
		t.Fatalf("pkg.Version = %q, want %q", pkg.Version, rev)
	}
	cached := filepath.Join(cacheDir, "pkg", "src", pkg.Name, sanitizePathSegment(pkg.Version))
	if pkg.Dir != cached {
		t.Fatalf("pkg.Dir = %q, want %q", pkg.Dir, cached)
	}
	if _, err := os.Stat(filepath.Join(cached, "src", "core.kz.yml")); err != nil {
		t.Fatalf("expected checked out program in cache: %v", err)
	}
}

func TestInstallerGitDependencyBranch(t *testing.T) {
	root := t.TempDir()
	repo := filepath.Join(root, "repo")
	writePackage(t, repo, `
name: gitpkg
version: 0.3.0
`)
	rev := initGitRepo(t, repo)

	mainDir := filepath.Join(root, "app")
	writePackage(t, mainDir, `
name: app
dependencies:
  gitpkg:
    git: `+repo+`
    branch: master
`)

	manifest, err := LoadManifest(filepath.Join(mainDir, ManifestName))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	lock := NewLockfile(manifest.Name, testTool)
	if _, _, err := NewInstaller(manifest, filepath.Join(root, "cache")).Install(lock); err != nil {
		t.Fatalf("Install error: %v", err)
	}
	pkg, ok := lock.Find("gitpkg")
	if !ok {
		t.Fatalf("gitpkg missing from lock: %#v", lock.Packages)
	}
	if want := fmt.Sprintf("master@%s", rev); pkg.Version != want {
		t.Fatalf("pkg.Version = %q, want %q", pkg.Version, want)
	}
}

func TestInstallerGitRequiresCache(t *testing.T) {
	root := t.TempDir()
	writePackage(t, filepath.Join(root, "app"), `
name: app
dependencies:
  remote:
    git: https://example.invalid/remote.git
    tag: v1
`)
	manifest, err := LoadManifest(filepath.Join(root, "app", ManifestName))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	_, _, err = NewInstaller(manifest, "").Install(NewLockfile(manifest.Name, testTool))
	if err == nil || !strings.Contains(err.Error(), "git fetcher unavailable") {
		t.Fatalf("expected unavailable git fetcher error, got %v", err)
	}
}

func TestInstallerGitShortRevReusesCheckout(t *testing.T) {
	root := t.TempDir()
	repo := filepath.Join(root, "repo")
	writePackage(t, repo, `
name: gitpkg
version: 0.2.0
`)
	rev := initGitRepo(t, repo)
	short := rev[:7]

	mainDir := filepath.Join(root, "app")
	writePackage(t, mainDir, `
name: app
dependencies:
  gitpkg:
    git: `+repo+`
    rev: `+short+`
`)
	manifest, err := LoadManifest(filepath.Join(mainDir, ManifestName))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	installer := NewInstaller(manifest, filepath.Join(root, "cache"))
	lock := NewLockfile(manifest.Name, testTool)
	if _, _, err := installer.Install(lock); err != nil {
		t.Fatalf("Install error: %v", err)
	}
	pkg, _ := lock.Find("gitpkg")
	if want := short + "@" + rev; pkg == nil || pkg.Version != want {
		t.Fatalf("pkg = %#v, want version %q", pkg, want)
	}

	// A second install must not clone again, so the origin can go away.
	if err := os.RemoveAll(repo); err != nil {
		t.Fatalf("RemoveAll: %v", err)
	}
	changed, _, err := installer.Install(lock)
	if err != nil {
		t.Fatalf("second Install error: %v", err)
	}
	if changed {
		t.Fatalf("expected cached checkout to leave the lockfile unchanged: %#v", lock.Packages)
	}
	pkg, _ = lock.Find("gitpkg")
	if want := fmt.Sprintf("git+%s@%s", repo, rev); pkg.Source != want {
		t.Fatalf("pkg.Source = %q, want %q", pkg.Source, want)
	}
}

type countingGit struct {
	inner gitSource
	calls int
}

func (c *countingGit) Fetch(name string, spec *DependencySpec) (*LockedPackage, error) {
	c.calls++
	return c.inner.Fetch(name, spec)
}

func TestInstallerSharedGitDependencyFetchedOnce(t *testing.T) {
	root := t.TempDir()
	repo := filepath.Join(root, "repo")
	writePackage(t, repo, "name: gitpkg")
	rev := initGitRepo(t, repo)

	gitDep := `
dependencies:
  gitpkg:
    git: ` + repo + `
    rev: ` + rev
	writePackage(t, filepath.Join(root, "app"), `
name: app
dependencies:
  left: ../left
  right: ../right
`)
	writePackage(t, filepath.Join(root, "left"), "name: left"+gitDep)
	writePackage(t, filepath.Join(root, "right"), "name: right"+gitDep)

	manifest, err := LoadManifest(filepath.Join(root, "app", ManifestName))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	installer := NewInstaller(manifest, filepath.Join(root, "cache"))
	counter := &countingGit{inner: installer.git}
	installer.git = counter

	lock := NewLockfile(manifest.Name, testTool)
	if _, _, err := installer.Install(lock); err != nil {
		t.Fatalf("Install error: %v", err)
	}
	if counter.calls != 1 {
		t.Fatalf("git fetches = %d, want 1", counter.calls)
	}
	if len(lock.Packages) != 3 {
		t.Fatalf("lock packages = %#v", lock.Packages)
	}
}
