package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kizuna/interpreter-go/pkg/ast"
	"kizuna/interpreter-go/pkg/driver"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(strings.TrimSpace(contents)+"\n"), 0o644); err != nil {
		t.Fatalf("write file %s: %v", path, err)
	}
}

func writeProgram(t *testing.T, path string, units ...ast.Unit) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := driver.WriteProgram(path, ast.Prog(units...)); err != nil {
		t.Fatalf("WriteProgram %s: %v", path, err)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	originalWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir %s: %v", dir, err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(originalWD)
	})
}

func TestResolveKizunaHomeEnv(t *testing.T) {
	target := filepath.Join(t.TempDir(), "cache")
	t.Setenv("KIZUNA_HOME", target)

	got, err := resolveKizunaHome()
	if err != nil {
		t.Fatalf("resolveKizunaHome error: %v", err)
	}
	if got != target {
		t.Fatalf("resolveKizunaHome = %q, want %q", got, target)
	}
}

func TestResolveKizunaHomeDefault(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("KIZUNA_HOME", "")
	t.Setenv("HOME", tmp)

	got, err := resolveKizunaHome()
	if err != nil {
		t.Fatalf("resolveKizunaHome error: %v", err)
	}
	if want := filepath.Join(tmp, ".kizuna"); got != want {
		t.Fatalf("resolveKizunaHome = %q, want %q", got, want)
	}
}

func TestHelpAndVersion(t *testing.T) {
	code, _, stderr := captureCLI(t, []string{"help"})
	if code != 0 || !strings.Contains(stderr, "kizuna run") {
		t.Fatalf("help exited %d with %q", code, stderr)
	}
	code, stdout, _ := captureCLI(t, []string{"--version"})
	if code != 0 || strings.TrimSpace(stdout) != cliToolVersion {
		t.Fatalf("version exited %d with %q", code, stdout)
	}
	code, _, stderr = captureCLI(t, []string{"frobnicate"})
	if code != 1 || !strings.Contains(stderr, `unknown command "frobnicate"`) || !strings.Contains(stderr, "Usage:") {
		t.Fatalf("unknown command exited %d with %q", code, stderr)
	}
	if code, _, _ := captureCLI(t, nil); code != 1 {
		t.Fatalf("no arguments exited %d, want 1", code)
	}
}

func TestRunFilesShareOneRuntime(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.kz.yml")
	second := filepath.Join(dir, "second.kz.yml")
	writeProgram(t, first,
		ast.Fn("greet", []string{"who"},
			ast.Call("println", ast.Bin(ast.Str("hello "), ast.OpAdd, ast.ID("who"))),
		),
		ast.Def("count", ast.Num(2)),
	)
	writeProgram(t, second,
		ast.Call("greet", ast.Str("kizuna")),
		ast.Call("print", ast.Bin(ast.ID("count"), ast.OpMul, ast.Num(1.5))),
	)

	code, stdout, stderr := captureCLI(t, []string{"run", first, second})
	if code != 0 {
		t.Fatalf("run exited %d (stderr: %q)", code, stderr)
	}
	if want := "hello kizuna\n3"; stdout != want {
		t.Fatalf("stdout = %q, want %q", stdout, want)
	}
}

func TestRunContinuesPastBrokenFile(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.kz.yml")
	writeFile(t, broken, "[{type: Lambda}]")
	good := filepath.Join(dir, "good.kz.yml")
	writeProgram(t, good, ast.Call("println", ast.Str("still ran")))

	code, stdout, stderr := captureCLI(t, []string{broken, filepath.Join(dir, "missing.kz.yml"), good})
	if code != 1 {
		t.Fatalf("run exited %d, want 1", code)
	}
	if stdout != "still ran\n" {
		t.Fatalf("stdout = %q", stdout)
	}
	if strings.Count(stderr, "failed to load script") != 2 {
		t.Fatalf("expected two load diagnostics, got %q", stderr)
	}
}

func TestCheckReportsEachFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.kz.yml")
	writeProgram(t, good, ast.Def("x", ast.Num(1)), ast.Loop(ast.Brk()))
	bad := filepath.Join(dir, "bad.kz.yml")
	writeFile(t, bad, "[{type: BinaryExpression, operator: Pow, left: {type: NumberLiteral, value: 1}, right: {type: NumberLiteral, value: 2}}]")

	code, stdout, stderr := captureCLI(t, []string{"check", good, bad})
	if code != 1 {
		t.Fatalf("check exited %d, want 1", code)
	}
	if !strings.Contains(stdout, "ok "+good+" (2 units)") {
		t.Fatalf("stdout = %q", stdout)
	}
	if !strings.Contains(stderr, `unknown operator "Pow"`) {
		t.Fatalf("stderr = %q", stderr)
	}
}

func TestRunWithoutManifestOrFiles(t *testing.T) {
	chdir(t, t.TempDir())
	code, _, stderr := captureCLI(t, []string{"run"})
	if code != 1 || !strings.Contains(stderr, "requires program files or a package.yml") {
		t.Fatalf("run exited %d with %q", code, stderr)
	}
}

func TestDepsInstallThenRunManifestScripts(t *testing.T) {
	root := t.TempDir()
	util := filepath.Join(root, "util")
	writeFile(t, filepath.Join(util, "package.yml"), `
name: util
version: 1.0.0
scripts: [lib.kz.yml]
`)
	writeProgram(t, filepath.Join(util, "lib.kz.yml"),
		ast.Fn("shout", []string{"s"}, ast.Bin(ast.ID("s"), ast.OpAdd, ast.Str("!"))),
	)

	project := filepath.Join(root, "app")
	writeFile(t, filepath.Join(project, "package.yml"), `
name: app
version: 0.1.0
scripts:
  - src/main.kz.yml
dependencies:
  util:
    path: ../util
`)
	writeProgram(t, filepath.Join(project, "src", "main.kz.yml"),
		ast.Call("println", ast.Call("shout", ast.Str("util dependency"))),
	)

	t.Setenv("KIZUNA_HOME", filepath.Join(root, "cache"))
	chdir(t, filepath.Join(project, "src"))

	code, _, stderr := captureCLI(t, []string{"run"})
	if code != 1 || !strings.Contains(stderr, "package.lock missing") {
		t.Fatalf("run before install exited %d with %q", code, stderr)
	}

	code, stdout, stderr := captureCLI(t, []string{"deps", "install"})
	if code != 0 {
		t.Fatalf("deps install exited %d (stderr: %q)", code, stderr)
	}
	if !strings.Contains(stdout, "Created package.lock") {
		t.Fatalf("deps install stdout = %q", stdout)
	}
	lock, err := driver.LoadLockfile(filepath.Join(project, "package.lock"))
	if err != nil {
		t.Fatalf("LoadLockfile: %v", err)
	}
	if len(lock.Packages) != 1 || lock.Packages[0].Name != "util" || lock.Packages[0].Version != "1.0.0" {
		t.Fatalf("lock packages unexpected: %#v", lock.Packages)
	}

	code, stdout, _ = captureCLI(t, []string{"deps", "install"})
	if code != 0 || !strings.Contains(stdout, "already up to date") {
		t.Fatalf("second deps install exited %d with %q", code, stdout)
	}

	code, stdout, stderr = captureCLI(t, []string{"run"})
	if code != 0 {
		t.Fatalf("run exited %d (stderr: %q)", code, stderr)
	}
	if stdout != "util dependency!\n" {
		t.Fatalf("stdout = %q", stdout)
	}
	if stderr != "" {
		t.Fatalf("expected empty stderr, got %q", stderr)
	}

	code, stdout, stderr = captureCLI(t, []string{"build"})
	if code != 0 {
		t.Fatalf("build exited %d (stderr: %q)", code, stderr)
	}
	bundlePath := filepath.Join(project, "build", "app.kz.yml")
	if !strings.Contains(stdout, bundlePath) {
		t.Fatalf("build stdout = %q", stdout)
	}
	bundle, err := driver.LoadProgram(bundlePath)
	if err != nil {
		t.Fatalf("LoadProgram(bundle): %v", err)
	}
	if len(bundle.Units) != 2 {
		t.Fatalf("bundle units = %d, want 2", len(bundle.Units))
	}
	code, stdout, _ = captureCLI(t, []string{"run", bundlePath})
	if code != 0 || stdout != "util dependency!\n" {
		t.Fatalf("run bundle exited %d with %q", code, stdout)
	}
}

func TestDepsRequiresSubcommand(t *testing.T) {
	if code, _, stderr := captureCLI(t, []string{"deps"}); code != 1 || !strings.Contains(stderr, "requires a subcommand") {
		t.Fatalf("deps exited %d with %q", code, stderr)
	}
	if code, _, stderr := captureCLI(t, []string{"deps", "update"}); code != 1 || !strings.Contains(stderr, "unknown deps subcommand") {
		t.Fatalf("deps update exited %d with %q", code, stderr)
	}
}

func captureCLI(t *testing.T, args []string) (int, string, string) {
	t.Helper()

	stdout := os.Stdout
	stderr := os.Stderr

	rOut, wOut, err := os.Pipe()
	if err != nil {
		t.Fatalf("stdout pipe: %v", err)
	}
	rErr, wErr, err := os.Pipe()
	if err != nil {
		t.Fatalf("stderr pipe: %v", err)
	}

	os.Stdout = wOut
	os.Stderr = wErr

	code := run(args)

	if err := wOut.Close(); err != nil {
		t.Fatalf("stdout close: %v", err)
	}
	if err := wErr.Close(); err != nil {
		t.Fatalf("stderr close: %v", err)
	}

	os.Stdout = stdout
	os.Stderr = stderr

	outBytes, err := io.ReadAll(rOut)
	if err != nil {
		t.Fatalf("stdout read: %v", err)
	}
	errBytes, err := io.ReadAll(rErr)
	if err != nil {
		t.Fatalf("stderr read: %v", err)
	}
	_ = rOut.Close()
	_ = rErr.Close()

	return code, string(outBytes), string(errBytes)
}
