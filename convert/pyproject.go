package convert

import (
	"fmt"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"reqcheck/requirements"
)

// pyProject mirrors the PEP 621 [project] table, dependencies only.
type pyProject struct {
	Project struct {
		Name         string   `toml:"name,omitempty"`
		Dependencies []string `toml:"dependencies"`
	} `toml:"project"`
}

// ToPyProject renders the manifest's requirements as a minimal
// pyproject.toml [project] dependencies array. Markers and extras travel
// inside the requirement strings, so nothing is lost.
func ToPyProject(m *requirements.Manifest, projectName string) ([]byte, error) {
	var p pyProject
	p.Project.Name = projectName
	p.Project.Dependencies = []string{}
	for _, req := range m.Requirements() {
		r := *req
		r.Comment = "" // comments have no home in a TOML string array
		p.Project.Dependencies = append(p.Project.Dependencies, r.String())
	}
	out, err := toml.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to render pyproject.toml: %w", err)
	}
	return out, nil
}

// FromPyProject parses a pyproject.toml and returns its [project]
// dependencies as a requirements manifest.
func FromPyProject(path string) (*requirements.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var p pyProject
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	m := &requirements.Manifest{Path: path}
	for i, dep := range p.Project.Dependencies {
		entry, err := requirements.Parse(strings.NewReader(dep))
		if err != nil {
			return nil, fmt.Errorf("%s: dependency %d: %w", path, i+1, err)
		}
		m.Entries = append(m.Entries, entry.Entries...)
	}
	return m, nil
}
