package reference

import (
	"encoding/json"
	"encoding/xml"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Each parseX function is a best-effort extractor: any failure returns an
// empty slice rather than aborting discovery (spec §4.4).

var slnProjectLineRe = regexp.MustCompile(`(?m)^Project\([^)]*\)\s*=\s*"[^"]*",\s*"([^"]+)"`)

func parseSolution(path string) []Reference {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	dir := filepath.Dir(path)
	var refs []Reference
	for _, m := range slnProjectLineRe.FindAllStringSubmatch(string(data), -1) {
		p := strings.ReplaceAll(m[1], "\\", string(filepath.Separator))
		if !strings.HasSuffix(strings.ToLower(p), ".csproj") && !strings.HasSuffix(strings.ToLower(p), ".fsproj") {
			continue
		}
		refs = append(refs, Reference{Path: filepath.Join(dir, p)})
	}
	return refs
}

type slnxDoc struct {
	XMLName xml.Name `xml:"Solution"`
	Folders []struct {
		Projects []struct {
			Path string `xml:"Path,attr"`
		} `xml:"Project"`
	} `xml:"Folder"`
	Projects []struct {
		Path string `xml:"Path,attr"`
	} `xml:"Project"`
}

func parseSolutionX(path string) []Reference {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var doc slnxDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil
	}
	dir := filepath.Dir(path)
	var refs []Reference
	for _, p := range doc.Projects {
		refs = append(refs, Reference{Path: filepath.Join(dir, p.Path)})
	}
	for _, f := range doc.Folders {
		for _, p := range f.Projects {
			refs = append(refs, Reference{Path: filepath.Join(dir, p.Path)})
		}
	}
	return refs
}

type vscodeWorkspaceDoc struct {
	Folders []struct {
		Path string `json:"path"`
	} `json:"folders"`
}

func parseVSCodeWorkspace(path string) []Reference {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var doc vscodeWorkspaceDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil
	}
	dir := filepath.Dir(path)
	var refs []Reference
	for _, f := range doc.Folders {
		p := f.Path
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		refs = append(refs, Reference{Path: p})
	}
	return refs
}

type packageJSONDoc struct {
	Workspaces json.RawMessage `json:"workspaces"`
}

func npmDeclaresWorkspaces(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var doc packageJSONDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return false
	}
	return len(doc.Workspaces) > 0 && string(doc.Workspaces) != "null"
}

func parseNPMWorkspace(path string) []Reference {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var doc packageJSONDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil
	}

	var patterns []string
	var asList []string
	if err := json.Unmarshal(doc.Workspaces, &asList); err == nil {
		patterns = asList
	} else {
		var asObj struct {
			Packages []string `json:"packages"`
		}
		if err := json.Unmarshal(doc.Workspaces, &asObj); err == nil {
			patterns = asObj.Packages
		}
	}

	dir := filepath.Dir(path)
	var refs []Reference
	for _, pattern := range patterns {
		for _, p := range expandWildcard(dir, pattern, "package.json") {
			refs = append(refs, Reference{Path: p})
		}
	}
	return refs
}

func parseGoWork(path string) []Reference {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	dir := filepath.Dir(path)
	var refs []Reference
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "use ")
		line = strings.Trim(line, "()")
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "go ") || strings.HasPrefix(line, "//") {
			continue
		}
		refs = append(refs, Reference{Path: filepath.Join(dir, line)})
	}
	return refs
}

func cargoDeclaresWorkspace(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var doc map[string]interface{}
	if err := tomlUnmarshalBestEffort(data, &doc); err != nil {
		return false
	}
	_, ok := doc["workspace"]
	return ok
}

func parseCargoWorkspace(path string) []Reference {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	members := extractTOMLStringArray(string(data), "members")
	dir := filepath.Dir(path)
	var refs []Reference
	for _, m := range members {
		for _, p := range expandWildcard(dir, m, "Cargo.toml") {
			refs = append(refs, Reference{Path: p})
		}
	}
	return refs
}

type mavenPom struct {
	Modules []string `xml:"modules>module"`
}

func pomDeclaresModules(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var doc mavenPom
	if err := xml.Unmarshal(data, &doc); err != nil {
		return false
	}
	return len(doc.Modules) > 0
}

func parseMavenModules(path string) []Reference {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var doc mavenPom
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil
	}
	dir := filepath.Dir(path)
	var refs []Reference
	for _, m := range doc.Modules {
		refs = append(refs, Reference{Path: filepath.Join(dir, m)})
	}
	return refs
}

type tsconfigDoc struct {
	References []struct {
		Path string `json:"path"`
	} `json:"references"`
}

func tsconfigDeclaresReferences(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var doc tsconfigDoc
	if err := json.Unmarshal(stripJSONComments(data), &doc); err != nil {
		return false
	}
	return len(doc.References) > 0
}

func parseTSReferences(path string) []Reference {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var doc tsconfigDoc
	if err := json.Unmarshal(stripJSONComments(data), &doc); err != nil {
		return nil
	}
	dir := filepath.Dir(path)
	var refs []Reference
	for _, r := range doc.References {
		refs = append(refs, Reference{Path: filepath.Join(dir, r.Path)})
	}
	return refs
}

var dotnetProjectRefRe = regexp.MustCompile(`<ProjectReference\s+Include="([^"]+)"`)

func parseDotnetProjectRefs(path string) []Reference {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	dir := filepath.Dir(path)
	var refs []Reference
	for _, m := range dotnetProjectRefRe.FindAllStringSubmatch(string(data), -1) {
		p := strings.ReplaceAll(m[1], "\\", string(filepath.Separator))
		refs = append(refs, Reference{Path: filepath.Join(dir, p)})
	}
	return refs
}

// stripJSONComments removes // line comments so tsconfig.json (which permits
// them) can be parsed with encoding/json.
func stripJSONComments(data []byte) []byte {
	lines := strings.Split(string(data), "\n")
	for i, line := range lines {
		if idx := strings.Index(line, "//"); idx >= 0 {
			lines[i] = line[:idx]
		}
	}
	return []byte(strings.Join(lines, "\n"))
}

// tomlUnmarshalBestEffort decodes just enough TOML structure (top-level
// table names) to detect a [workspace] section without a full TOML parser.
func tomlUnmarshalBestEffort(data []byte, out *map[string]interface{}) error {
	*out = make(map[string]interface{})
	tableRe := regexp.MustCompile(`(?m)^\s*\[([a-zA-Z0-9_.\-]+)\]`)
	for _, m := range tableRe.FindAllStringSubmatch(string(data), -1) {
		(*out)[strings.Split(m[1], ".")[0]] = true
	}
	return nil
}

// extractTOMLStringArray extracts a bracketed string array assigned to key,
// e.g. `members = ["a", "b"]`, without a full TOML parser.
func extractTOMLStringArray(data, key string) []string {
	re := regexp.MustCompile(`(?s)` + regexp.QuoteMeta(key) + `\s*=\s*\[(.*?)\]`)
	m := re.FindStringSubmatch(data)
	if m == nil {
		return nil
	}
	var out []string
	for _, item := range strings.Split(m[1], ",") {
		item = strings.TrimSpace(item)
		item = strings.Trim(item, `"'`)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
