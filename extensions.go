package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ExtensionMapping binds one file extension to the technology it belongs to.
type ExtensionMapping struct {
	Ext        string
	Technology string
}

// defaultExtensions is the built-in extension table. It is a closed
// allow-list: files whose extension is not listed here (or in a user
// overlay) are never analyzed. Several extensions may map to the same
// technology; the same extension must never appear twice, which
// NewClassifier enforces.
var defaultExtensions = []ExtensionMapping{
	// Python and related
	{".py", "Python"},
	{".pyi", "Python Interface"},
	{".pyx", "Cython"},
	{".pxd", "Cython Header"},
	{".ipynb", "Jupyter Notebook"},
	{".requirements.txt", "Python Requirements"},
	{".pipfile", "Python Pipenv"},
	{".pyproject.toml", "Python Project"},

	// Web technologies
	{".html", "HTML"},
	{".htm", "HTML"},
	{".css", "CSS"},
	{".scss", "SASS"},
	{".sass", "SASS"},
	{".less", "LESS"},
	{".js", "JavaScript"},
	{".jsx", "React JSX"},
	{".ts", "TypeScript"},
	{".tsx", "React TSX"},
	{".vue", "Vue.js"},
	{".svelte", "Svelte"},
	{".php", "PHP"},
	{".blade.php", "Laravel Blade"},
	{".hbs", "Handlebars"},
	{".ejs", "EJS Template"},
	{".astro", "Astro"},

	// System programming
	{".c", "C"},
	{".h", "C Header"},
	{".cpp", "C++"},
	{".hpp", "C++ Header"},
	{".cc", "C++"},
	{".hh", "C++ Header"},
	{".cxx", "C++"},
	{".rs", "Rust"},
	{".go", "Go"},
	{".swift", "Swift"},
	{".m", "Objective-C"},
	{".mm", "Objective-C++"},

	// JVM languages
	{".java", "Java"},
	{".class", "Java Bytecode"},
	{".jar", "Java Archive"},
	{".kt", "Kotlin"},
	{".kts", "Kotlin Script"},
	{".groovy", "Groovy"},
	{".scala", "Scala"},
	{".clj", "Clojure"},

	// .NET languages
	{".cs", "C#"},
	{".vb", "Visual Basic"},
	{".fs", "F#"},
	{".fsx", "F# Script"},
	{".xaml", "XAML"},

	// Shell and scripts
	{".sh", "Shell Script"},
	{".bash", "Bash Script"},
	{".zsh", "Zsh Script"},
	{".fish", "Fish Script"},
	{".ps1", "PowerShell"},
	{".bat", "Batch File"},
	{".cmd", "Windows Command"},
	{".nu", "Nushell Script"},

	// Ruby and related
	{".rb", "Ruby"},
	{".erb", "Ruby ERB Template"},
	{".rake", "Ruby Rake"},
	{".gemspec", "Ruby Gem Spec"},

	// Other programming languages
	{".pl", "Perl"},
	{".pm", "Perl Module"},
	{".ex", "Elixir"},
	{".exs", "Elixir Script"},
	{".erl", "Erlang"},
	{".hrl", "Erlang Header"},
	{".hs", "Haskell"},
	{".lhs", "Literate Haskell"},
	{".lua", "Lua"},
	{".r", "R"},
	{".rmd", "R Markdown"},
	{".jl", "Julia"},
	{".dart", "Dart"},
	{".nim", "Nim"},
	{".ml", "OCaml"},
	{".mli", "OCaml Interface"},

	// Configuration and data
	{".json", "JSON"},
	{".yaml", "YAML"},
	{".yml", "YAML"},
	{".toml", "TOML"},
	{".ini", "INI"},
	{".conf", "Configuration"},
	{".config", "Configuration"},
	{".env", "Environment Variables"},
	{".properties", "Properties"},
	{".xml", "XML"},
	{".xsd", "XML Schema"},
	{".dtd", "Document Type Definition"},
	{".csv", "CSV"},
	{".tsv", "TSV"},

	// Documentation and text
	{".md", "Markdown"},
	{".mdx", "MDX"},
	{".rst", "reStructuredText"},
	{".txt", "Plain Text"},
	{".tex", "LaTeX"},
	{".adoc", "AsciiDoc"},
	{".wiki", "Wiki Markup"},
	{".org", "Org Mode"},

	// Database
	{".sql", "SQL"},
	{".psql", "PostgreSQL"},
	{".plsql", "PL/SQL"},
	{".tsql", "T-SQL"},
	{".prisma", "Prisma Schema"},

	// Build and package
	{".cmake", "CMake"},
	{".make", "Makefile"},
	{".maven", "Maven POM"},
	{".dockerfile", "Dockerfile"},
	{".containerfile", "Container File"},
	{".nix", "Nix Expression"},

	// WebAssembly
	{".wat", "WebAssembly Text"},
	{".wasm", "WebAssembly Binary"},

	// GraphQL
	{".graphql", "GraphQL"},
	{".gql", "GraphQL"},

	// Protocol Buffers and gRPC
	{".proto", "Protocol Buffers"},

	// Mobile development
	{".xcodeproj", "Xcode Project"},
	{".pbxproj", "Xcode Project"},
	{".gradle", "Android Gradle"},
	{".plist", "Property List"},

	// Game development
	{".unity", "Unity Scene"},
	{".prefab", "Unity Prefab"},
	{".godot", "Godot Resource"},
	{".tscn", "Godot Scene"},

	// AI/ML
	{".onnx", "ONNX Model"},
	{".h5", "HDF5 Model"},
	{".pkl", "Pickle Model"},
	{".model", "Model File"},
}

// excludedDirs are directory names pruned before descent: VCS metadata,
// virtual environments and tool caches. Nothing below them is ever read.
var excludedDirs = map[string]struct{}{
	".git":          {},
	"venv":          {},
	".venv":         {},
	"__pycache__":   {},
	".pytest_cache": {},
	".mypy_cache":   {},
}

// loadExtensionOverlay looks for an extensions.yml in the standard config
// locations and returns its mappings, or nil if no overlay exists. The
// overlay is loaded once at startup; the table never changes mid-run.
func loadExtensionOverlay() ([]ExtensionMapping, string, error) {
	configPaths := []string{}
	if home, err := os.UserHomeDir(); err == nil {
		configPaths = append(configPaths, filepath.Join(home, ".config", "ctxfit"))
	}
	configPaths = append(configPaths, ".")

	var overlayPath string
	for _, p := range configPaths {
		testPath := filepath.Join(p, "extensions.yml")
		if _, err := os.Stat(testPath); err == nil {
			overlayPath = testPath
			break
		}
	}
	if overlayPath == "" {
		return nil, "", nil
	}

	data, err := os.ReadFile(overlayPath)
	if err != nil {
		return nil, "", fmt.Errorf("error reading extension file %s: %w", overlayPath, err)
	}
	mappings, err := parseExtensionOverlay(data)
	if err != nil {
		return nil, "", fmt.Errorf("error parsing extension file %s: %w", overlayPath, err)
	}
	return mappings, overlayPath, nil
}

// parseExtensionOverlay decodes a flat ext -> technology YAML map. Keys
// may be written with or without the leading dot; two keys that collide
// once normalized are rejected like any other duplicate. YAML itself
// rejects a key written twice verbatim.
func parseExtensionOverlay(data []byte) ([]ExtensionMapping, error) {
	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	// Map iteration order is random; sorted keys keep the mapping order
	// and any duplicate error deterministic.
	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	seen := make(map[string]string, len(raw))
	mappings := make([]ExtensionMapping, 0, len(raw))
	for _, key := range keys {
		ext := strings.ToLower(strings.TrimSpace(key))
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		tech := raw[key]
		// "zig" and ".zig" are distinct YAML keys that name the same
		// extension.
		if prev, ok := seen[ext]; ok {
			return nil, fmt.Errorf("duplicate extension %q (%s and %s)", ext, prev, tech)
		}
		seen[ext] = tech
		mappings = append(mappings, ExtensionMapping{Ext: ext, Technology: tech})
	}
	sort.Slice(mappings, func(i, j int) bool { return mappings[i].Ext < mappings[j].Ext })
	return mappings, nil
}

// mergeExtensions applies overlay mappings on top of base. An overlay
// entry replaces the base entry with the same extension, otherwise it is
// appended.
func mergeExtensions(base, overlay []ExtensionMapping) []ExtensionMapping {
	if len(overlay) == 0 {
		return base
	}

	merged := make([]ExtensionMapping, len(base))
	copy(merged, base)
	index := make(map[string]int, len(merged))
	for i, m := range merged {
		index[m.Ext] = i
	}

	for _, m := range overlay {
		if i, ok := index[m.Ext]; ok {
			merged[i] = m
		} else {
			index[m.Ext] = len(merged)
			merged = append(merged, m)
		}
	}
	return merged
}
