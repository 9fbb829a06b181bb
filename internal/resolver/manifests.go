package resolver

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/mod/modfile"
	"gopkg.in/yaml.v3"
)

// ErrNoPackageName means a manifest parsed but declared no package name.
var ErrNoPackageName = errors.New("manifest declares no package name")

// PackageBinding ties the repository to a package manager and registry.
type PackageBinding struct {
	Manager     string `json:"manager"`
	Manifest    string `json:"manifest"`
	Registry    string `json:"registry"`
	PackageName string `json:"package_name,omitempty"`
	Locator     string `json:"locator"`
}

// manifestSpec describes one recognised package manifest.
type manifestSpec struct {
	match     func(name string) bool
	manager   string
	registry  string
	locator   string // printf pattern taking the package name
	languages []string
	name      func(content []byte) (string, error)
}

func exactly(file string) func(string) bool {
	return func(name string) bool { return name == file }
}

func suffix(ext string) func(string) bool {
	return func(name string) bool { return strings.HasSuffix(name, ext) }
}

// manifestTable is ordered; earlier entries win when languages tie.
var manifestTable = []manifestSpec{
	{exactly("package.json"), "npm", "https://www.npmjs.com", "https://www.npmjs.com/package/%s", []string{"JavaScript", "TypeScript"}, jsonName},
	{exactly("Cargo.toml"), "cargo", "https://crates.io", "https://docs.rs/%s", []string{"Rust"}, cargoName},
	{exactly("pyproject.toml"), "pip", "https://pypi.org", "https://pypi.org/project/%s", []string{"Python"}, pyprojectName},
	{exactly("setup.py"), "pip", "https://pypi.org", "https://pypi.org/project/%s", []string{"Python"}, assignedName},
	{exactly("setup.cfg"), "pip", "https://pypi.org", "https://pypi.org/project/%s", []string{"Python"}, assignedName},
	{exactly("requirements.txt"), "pip", "https://pypi.org", "https://pypi.org/project/%s", []string{"Python"}, nil},
	{exactly("go.mod"), "go", "https://pkg.go.dev", "https://pkg.go.dev/%s", []string{"Go"}, goModuleName},
	{suffix(".gemspec"), "bundler", "https://rubygems.org", "https://rubygems.org/gems/%s", []string{"Ruby"}, gemspecName},
	{exactly("Gemfile"), "bundler", "https://rubygems.org", "https://rubygems.org/gems/%s", []string{"Ruby"}, nil},
	{exactly("composer.json"), "composer", "https://packagist.org", "https://packagist.org/packages/%s", []string{"PHP"}, jsonName},
	{exactly("pom.xml"), "maven", "https://central.sonatype.com", "https://central.sonatype.com/artifact/%s", []string{"Java", "Kotlin", "Scala"}, pomName},
	{exactly("build.gradle"), "gradle", "https://central.sonatype.com", "", []string{"Java", "Kotlin", "Groovy"}, nil},
	{exactly("build.gradle.kts"), "gradle", "https://central.sonatype.com", "", []string{"Kotlin", "Java"}, nil},
	{exactly("pubspec.yaml"), "pub", "https://pub.dev", "https://pub.dev/packages/%s", []string{"Dart"}, pubspecName},
	{exactly("mix.exs"), "hex", "https://hex.pm", "https://hex.pm/packages/%s", []string{"Elixir"}, mixName},
}

// matchManifest picks the manifest among root entries. A manifest whose
// ecosystem matches the primary language wins; otherwise table order decides.
func matchManifest(names []string, primary string) (manifestSpec, string, bool) {
	var (
		first     manifestSpec
		firstName string
		found     bool
	)
	for _, spec := range manifestTable {
		for _, name := range names {
			if !spec.match(name) {
				continue
			}
			for _, lang := range spec.languages {
				if strings.EqualFold(lang, primary) {
					return spec, name, true
				}
			}
			if !found {
				first, firstName, found = spec, name, true
			}
		}
	}
	return first, firstName, found
}

// locatorFor builds the registry locator for a package name.
func (s manifestSpec) locatorFor(name string) string {
	if name == "" || s.locator == "" {
		return s.registry
	}
	return fmt.Sprintf(s.locator, name)
}

func jsonName(content []byte) (string, error) {
	var m struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(content, &m); err != nil {
		return "", fmt.Errorf("parse json manifest: %w", err)
	}
	return nonEmpty(m.Name)
}

func cargoName(content []byte) (string, error) {
	var m struct {
		Package struct {
			Name string `toml:"name"`
		} `toml:"package"`
	}
	if _, err := toml.Decode(string(content), &m); err != nil {
		return "", fmt.Errorf("parse Cargo.toml: %w", err)
	}
	return nonEmpty(m.Package.Name)
}

func pyprojectName(content []byte) (string, error) {
	var m struct {
		Project struct {
			Name string `toml:"name"`
		} `toml:"project"`
		Tool struct {
			Poetry struct {
				Name string `toml:"name"`
			} `toml:"poetry"`
		} `toml:"tool"`
	}
	if _, err := toml.Decode(string(content), &m); err != nil {
		return "", fmt.Errorf("parse pyproject.toml: %w", err)
	}
	if m.Project.Name != "" {
		return m.Project.Name, nil
	}
	return nonEmpty(m.Tool.Poetry.Name)
}

func goModuleName(content []byte) (string, error) {
	path := modfile.ModulePath(content)
	return nonEmpty(path)
}

func pubspecName(content []byte) (string, error) {
	var m struct {
		Name string `yaml:"name"`
	}
	if err := yaml.Unmarshal(content, &m); err != nil {
		return "", fmt.Errorf("parse pubspec.yaml: %w", err)
	}
	return nonEmpty(m.Name)
}

var (
	assignedNamePattern = regexp.MustCompile(`(?m)^\s*name\s*=\s*["']?([\w.-]+)`)
	gemspecNamePattern  = regexp.MustCompile(`\.name\s*=\s*["']([\w.-]+)["']`)
	pomArtifactPattern  = regexp.MustCompile(`<artifactId>\s*([\w.-]+)\s*</artifactId>`)
	pomGroupPattern     = regexp.MustCompile(`<groupId>\s*([\w.-]+)\s*</groupId>`)
	pomParentPattern    = regexp.MustCompile(`(?s)<parent>.*?</parent>`)
	mixAppPattern       = regexp.MustCompile(`app:\s*:(\w+)`)
)

// assignedName reads `name = "x"` from setup.py or setup.cfg.
func assignedName(content []byte) (string, error) {
	return firstGroup(assignedNamePattern, content)
}

func gemspecName(content []byte) (string, error) {
	return firstGroup(gemspecNamePattern, content)
}

func mixName(content []byte) (string, error) {
	return firstGroup(mixAppPattern, content)
}

// pomName returns "group/artifact" from the project's own coordinates in
// pom.xml. The <parent> block is skipped; its groupId is used only when the
// project inherits it.
func pomName(content []byte) (string, error) {
	parent := pomParentPattern.Find(content)
	own := pomParentPattern.ReplaceAll(content, nil)

	artifact, err := firstGroup(pomArtifactPattern, own)
	if err != nil {
		return "", err
	}
	if group, err := firstGroup(pomGroupPattern, own); err == nil {
		return group + "/" + artifact, nil
	}
	if group, err := firstGroup(pomGroupPattern, parent); err == nil {
		return group + "/" + artifact, nil
	}
	return artifact, nil
}

func firstGroup(re *regexp.Regexp, content []byte) (string, error) {
	m := re.FindSubmatch(content)
	if m == nil {
		return "", ErrNoPackageName
	}
	return string(m[1]), nil
}

func nonEmpty(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrNoPackageName
	}
	return name, nil
}

// mkdocsSiteURL reads site_url from mkdocs.yml.
func mkdocsSiteURL(content []byte) (string, error) {
	var m struct {
		SiteURL string `yaml:"site_url"`
	}
	if err := yaml.Unmarshal(content, &m); err != nil {
		return "", fmt.Errorf("parse mkdocs.yml: %w", err)
	}
	return strings.TrimSpace(m.SiteURL), nil
}

// hasWorkspaces reports whether a package.json declares workspaces.
func hasWorkspaces(content []byte) bool {
	var m struct {
		Workspaces json.RawMessage `json:"workspaces"`
	}
	if err := json.Unmarshal(content, &m); err != nil {
		return false
	}
	w := strings.TrimSpace(string(m.Workspaces))
	return w != "" && w != "null" && w != "[]" && w != "{}"
}
