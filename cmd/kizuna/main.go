package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"kizuna/interpreter-go/pkg/ast"
	"kizuna/interpreter-go/pkg/driver"
	"kizuna/interpreter-go/pkg/interpreter"
)

const cliToolVersion = "kizuna-cli 0.1.0-dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 1
	}

	switch args[0] {
	case "--help", "-h", "help":
		printUsage()
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return 0
	case "run":
		return runScripts(args[1:])
	case "check":
		return checkScripts(args[1:])
	case "build":
		return buildBundle(args[1:])
	case "deps":
		return runDeps(args[1:])
	default:
		if looksLikeProgramPath(args[0]) {
			return runScripts(args)
		}
		fmt.Fprintf(os.Stderr, "unknown command %q\n", args[0])
		printUsage()
		return 1
	}
}

// runScripts submits every program file to one runtime in order. A file that
// fails to load is reported and skipped; the exit status reflects it.
func runScripts(files []string) int {
	refs := make([]driver.ScriptRef, 0, len(files))
	for _, file := range files {
		refs = append(refs, driver.ScriptRef{Path: file})
	}
	if len(refs) == 0 {
		planned, err := planManifestScripts()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 1
		}
		refs = planned
	}

	interp := interpreter.New()
	interp.RegisterPrinters(os.Stdout)

	status := 0
	for _, ref := range refs {
		prog, err := ref.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load script: %v\n", err)
			status = 1
			continue
		}
		if _, err := interp.SubmitScript(prog.Script); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", ref.Path, err)
			status = 1
		}
	}
	return status
}

func checkScripts(files []string) int {
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "kizuna check requires at least one program file")
		return 1
	}
	status := 0
	for _, file := range files {
		script, err := driver.LoadProgram(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			status = 1
			continue
		}
		fmt.Fprintf(os.Stdout, "ok %s (%d units)\n", file, len(script.Units))
	}
	return status
}

// buildBundle concatenates the planned manifest scripts into one program file.
func buildBundle(args []string) int {
	output := ""
	switch {
	case len(args) == 0:
	case len(args) == 2 && (args[0] == "-o" || args[0] == "--output"):
		output = args[1]
	default:
		fmt.Fprintf(os.Stderr, "unexpected arguments: %s\n", strings.Join(args, " "))
		return 1
	}

	manifest, err := loadManifestFrom(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load manifest: %v\n", err)
		return 1
	}
	refs, err := planScripts(manifest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	bundle := ast.NewScript(nil)
	for _, ref := range refs {
		prog, err := ref.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load script: %v\n", err)
			return 1
		}
		bundle = bundle.Append(prog.Script)
	}

	if output == "" {
		output = filepath.Join(manifest.Dir(), "build", manifest.Name+driver.ProgramExtension)
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create output directory: %v\n", err)
		return 1
	}
	if err := driver.WriteProgram(output, bundle); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	fmt.Fprintf(os.Stdout, "Built %s from %d scripts\n", output, len(refs))
	return 0
}

func runDeps(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "kizuna deps requires a subcommand (install)")
		return 1
	}
	switch args[0] {
	case "install":
		if len(args) > 1 {
			fmt.Fprintf(os.Stderr, "kizuna deps install does not take arguments (received %s)\n", strings.Join(args[1:], " "))
			return 1
		}
		return runDepsInstall()
	default:
		fmt.Fprintf(os.Stderr, "unknown deps subcommand %q\n", args[0])
		return 1
	}
}

func runDepsInstall() int {
	manifest, err := loadManifestFrom(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read manifest: %v\n", err)
		return 1
	}
	cacheDir, err := resolveKizunaHome()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve KIZUNA_HOME: %v\n", err)
		return 1
	}

	fmt.Fprintf(os.Stdout, "Manifest: %s\n", manifest.Path)
	fmt.Fprintf(os.Stdout, "Root package: %s\n", manifest.Name)
	fmt.Fprintf(os.Stdout, "Dependencies: %d\n", len(manifest.Dependencies))
	fmt.Fprintf(os.Stdout, "Cache directory: %s\n", cacheDir)

	lockPath := filepath.Join(manifest.Dir(), driver.LockfileName)
	lock, err := driver.LoadLockfile(lockPath)
	lockCreated := false
	switch {
	case err == nil:
		if lock.Root != manifest.Name {
			fmt.Fprintf(os.Stderr, "lockfile root %q does not match manifest name %q\n", lock.Root, manifest.Name)
			return 1
		}
	case errors.Is(err, os.ErrNotExist):
		lock = driver.NewLockfile(manifest.Name, cliToolVersion)
		lockCreated = true
	default:
		fmt.Fprintf(os.Stderr, "failed to read lockfile: %v\n", err)
		return 1
	}
	lock.Path = lockPath
	lock.Tool = cliToolVersion

	changed, logs, err := driver.NewInstaller(manifest, cacheDir).Install(lock)
	for _, line := range logs {
		fmt.Fprintln(os.Stdout, line)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve dependencies: %v\n", err)
		return 1
	}

	if changed || lockCreated {
		action := "Updated"
		if lockCreated {
			action = "Created"
		}
		if err := driver.WriteLockfile(lock, lockPath); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write lockfile: %v\n", err)
			return 1
		}
		fmt.Fprintf(os.Stdout, "%s package.lock: %s\n", action, lock.Path)
	} else {
		fmt.Fprintf(os.Stdout, "package.lock already up to date: %s\n", lock.Path)
	}

	fmt.Fprintln(os.Stdout, "Dependencies installed.")
	return 0
}

func planManifestScripts() ([]driver.ScriptRef, error) {
	manifest, err := loadManifestFrom(".")
	if err != nil {
		if errors.Is(err, driver.ErrManifestNotFound) {
			return nil, fmt.Errorf("kizuna run requires program files or a package.yml with scripts: %w", err)
		}
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}
	return planScripts(manifest)
}

func planScripts(manifest *driver.Manifest) ([]driver.ScriptRef, error) {
	lock, err := driver.LoadLockfileFor(manifest)
	if err != nil {
		return nil, fmt.Errorf("failed to read lockfile: %w", err)
	}
	loader, err := driver.NewLoader(manifest, lock)
	if err != nil {
		return nil, err
	}
	refs, err := loader.Plan()
	if err != nil {
		if errors.Is(err, driver.ErrNoScripts) {
			return nil, fmt.Errorf("%s: %w", manifest.Path, err)
		}
		return nil, err
	}
	return refs, nil
}

func loadManifestFrom(start string) (*driver.Manifest, error) {
	if start == "" || start == "." {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
		start = cwd
	}
	manifestPath, err := driver.FindManifest(start)
	if err != nil {
		return nil, err
	}
	return driver.LoadManifest(manifestPath)
}

func resolveKizunaHome() (string, error) {
	if home := strings.TrimSpace(os.Getenv("KIZUNA_HOME")); home != "" {
		abs, err := filepath.Abs(home)
		if err != nil {
			return "", fmt.Errorf("resolve KIZUNA_HOME %q: %w", home, err)
		}
		return abs, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}
	return filepath.Join(userHome, ".kizuna"), nil
}

func looksLikeProgramPath(arg string) bool {
	if arg == "" {
		return false
	}
	if strings.HasSuffix(arg, driver.ProgramExtension) || filepath.Ext(arg) == ".json" {
		return true
	}
	return strings.ContainsAny(arg, `/\`) || strings.HasPrefix(arg, ".")
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  kizuna run [file.kz.yml ...]")
	fmt.Fprintln(os.Stderr, "  kizuna <file.kz.yml> [file.kz.yml ...]")
	fmt.Fprintln(os.Stderr, "  kizuna check <file.kz.yml ...>")
	fmt.Fprintln(os.Stderr, "  kizuna build [-o output.kz.yml]")
	fmt.Fprintln(os.Stderr, "  kizuna deps install")
	fmt.Fprintln(os.Stderr, "  kizuna help | version")
}
