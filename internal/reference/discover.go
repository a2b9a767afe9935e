// Package reference implements the Project Reference Discoverer: it locates
// one primary multi-project build file under a root path and extracts the
// absolute paths of the projects it references, so the scheduler can seed a
// project's allowed-external-paths set. No direct teacher analogue exists
// (the teacher orchestrates a single workspace at a time); the package
// follows the teacher's general "best-effort parse, warn and continue"
// idiom from internal/parser/parser.go and internal/parser/yaml_validation.go.
package reference

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ProjectType names the build-file family that produced a discovery.
type ProjectType string

const (
	TypeSolution        ProjectType = "solution"
	TypeSolutionX       ProjectType = "solutionx"
	TypeVSCodeWorkspace ProjectType = "vscode_workspace"
	TypeNPMWorkspace    ProjectType = "npm_workspace"
	TypeGoWork          ProjectType = "go_work"
	TypeCargoWorkspace  ProjectType = "cargo_workspace"
	TypeMavenModules    ProjectType = "maven_modules"
	TypeTSReferences    ProjectType = "ts_references"
	TypeCSProj          ProjectType = "csproj"
	TypeFSProj          ProjectType = "fsproj"
	TypeUnknown         ProjectType = "unknown"
)

// Reference is one discovered project, with its path marked external when
// it falls outside the discovery root.
type Reference struct {
	Path       string
	IsExternal bool
}

// Result is the Discoverer's output.
type Result struct {
	References          []Reference
	ExternalDirectories []string
	PrimaryProjectFile  string
	ProjectType         ProjectType
}

// DiscoverReferences locates the single primary build file under rootPath
// by priority, parses it with a format-specific extractor, and returns the
// absolute project references it declares (one level deep for
// solution-style files), deduplicated by absolute path.
func DiscoverReferences(rootPath string) (*Result, error) {
	absRoot, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, err
	}

	primary, ptype, err := findPrimary(absRoot)
	if err != nil {
		return nil, err
	}
	if primary == "" {
		return &Result{ProjectType: TypeUnknown}, nil
	}

	refs := parseByType(primary, ptype, absRoot)
	refs = dedupeByPath(refs)
	sort.Slice(refs, func(i, j int) bool { return refs[i].Path < refs[j].Path })

	externalDirs := externalDirectories(refs)

	return &Result{
		References:          refs,
		ExternalDirectories: externalDirs,
		PrimaryProjectFile:  primary,
		ProjectType:         ptype,
	}, nil
}

func findPrimary(root string) (path string, ptype ProjectType, err error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return "", TypeUnknown, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}

	pick := func(suffix string) string {
		for _, n := range names {
			if strings.HasSuffix(strings.ToLower(n), suffix) {
				return filepath.Join(root, n)
			}
		}
		return ""
	}

	if p := pick(".sln"); p != "" {
		return p, TypeSolution, nil
	}
	if p := pick(".slnx"); p != "" {
		return p, TypeSolutionX, nil
	}
	if p := pick(".code-workspace"); p != "" {
		return p, TypeVSCodeWorkspace, nil
	}
	if p := pick("package.json"); p != "" && npmDeclaresWorkspaces(p) {
		return p, TypeNPMWorkspace, nil
	}
	if p := pick("go.work"); p != "" {
		return p, TypeGoWork, nil
	}
	if p := pick("cargo.toml"); p != "" && cargoDeclaresWorkspace(p) {
		return p, TypeCargoWorkspace, nil
	}
	if p := pick("pom.xml"); p != "" && pomDeclaresModules(p) {
		return p, TypeMavenModules, nil
	}
	if p := pick("tsconfig.json"); p != "" && tsconfigDeclaresReferences(p) {
		return p, TypeTSReferences, nil
	}
	if p := pick(".csproj"); p != "" {
		return p, TypeCSProj, nil
	}
	if p := pick(".fsproj"); p != "" {
		return p, TypeFSProj, nil
	}
	return "", TypeUnknown, nil
}

func parseByType(primary string, ptype ProjectType, root string) []Reference {
	var refs []Reference
	switch ptype {
	case TypeSolution:
		refs = parseSolution(primary)
	case TypeSolutionX:
		refs = parseSolutionX(primary)
	case TypeVSCodeWorkspace:
		refs = parseVSCodeWorkspace(primary)
	case TypeNPMWorkspace:
		refs = parseNPMWorkspace(primary)
	case TypeGoWork:
		refs = parseGoWork(primary)
	case TypeCargoWorkspace:
		refs = parseCargoWorkspace(primary)
	case TypeMavenModules:
		refs = parseMavenModules(primary)
	case TypeTSReferences:
		refs = parseTSReferences(primary)
	case TypeCSProj:
		refs = parseDotnetProjectRefs(primary)
	case TypeFSProj:
		refs = parseDotnetProjectRefs(primary)
	}

	// Solution-style files (and workspace manifests that list project
	// files) get one extra level: parse each referenced project file's
	// own inner references too.
	if ptype == TypeSolution || ptype == TypeSolutionX || ptype == TypeVSCodeWorkspace {
		var extra []Reference
		for _, r := range refs {
			if fileExists(r.Path) && (strings.HasSuffix(r.Path, ".csproj") || strings.HasSuffix(r.Path, ".fsproj")) {
				extra = append(extra, parseDotnetProjectRefs(r.Path)...)
			}
		}
		refs = append(refs, extra...)
	}

	for i := range refs {
		refs[i].Path = absPath(refs[i].Path)
		refs[i].IsExternal = !isDescendant(root, refs[i].Path)
	}
	return refs
}

func externalDirectories(refs []Reference) []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, r := range refs {
		if !r.IsExternal {
			continue
		}
		dir := r.Path
		if info, err := os.Stat(r.Path); err != nil || !info.IsDir() {
			dir = filepath.Dir(r.Path)
		}
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	sort.Strings(dirs)
	return dirs
}

func dedupeByPath(refs []Reference) []Reference {
	seen := make(map[string]bool, len(refs))
	out := make([]Reference, 0, len(refs))
	for _, r := range refs {
		abs := absPath(r.Path)
		if seen[abs] {
			continue
		}
		seen[abs] = true
		r.Path = abs
		out = append(out, r)
	}
	return out
}

func absPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return filepath.Clean(abs)
}

func isDescendant(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// expandWildcard expands a single "*" path-segment workspace pattern one
// directory level, filtering to entries that contain expectedManifest.
func expandWildcard(baseDir, pattern, expectedManifest string) []string {
	idx := strings.Index(pattern, "*")
	if idx < 0 {
		full := filepath.Join(baseDir, pattern)
		if fileExists(filepath.Join(full, expectedManifest)) {
			return []string{full}
		}
		return nil
	}

	prefix := pattern[:idx]
	prefixDir := filepath.Join(baseDir, filepath.Dir(prefix))
	entries, err := os.ReadDir(prefixDir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		candidate := filepath.Join(prefixDir, e.Name())
		if fileExists(filepath.Join(candidate, expectedManifest)) {
			out = append(out, candidate)
		}
	}
	sort.Strings(out)
	return out
}
