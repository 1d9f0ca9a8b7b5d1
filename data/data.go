package data

import (
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed scenarios
var embeddedFS embed.FS

// ScenariosFS returns the built-in scenarios rooted at `data/scenarios`.
func ScenariosFS() fs.FS {
	sub, err := fs.Sub(embeddedFS, "scenarios")
	if err != nil {
		return embeddedFS
	}
	return sub
}

// ScenarioNames lists built-in scenarios by file name without extension.
func ScenarioNames() []string {
	entries, err := fs.ReadDir(ScenariosFS(), ".")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".yaml" {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// Scenario returns the raw YAML of a built-in scenario.
func Scenario(name string) ([]byte, error) {
	return fs.ReadFile(ScenariosFS(), name+".yaml")
}
