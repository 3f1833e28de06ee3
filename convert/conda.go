package convert

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"reqcheck/requirements"
)

// condaEnv mirrors the conda environment.yml schema, dependencies only.
type condaEnv struct {
	Name         string   `yaml:"name,omitempty"`
	Dependencies []string `yaml:"dependencies"`
}

// ToCondaEnv renders the manifest as a conda environment.yml. Conda has no
// marker syntax and only exact pins, so anything that does not map is
// reported in the returned warnings and written unpinned.
func ToCondaEnv(m *requirements.Manifest, envName string) ([]byte, []string, error) {
	env := condaEnv{Name: envName, Dependencies: []string{}}
	var warnings []string
	for _, req := range m.Requirements() {
		entry := req.Name
		if pin, ok := exactPin(req.Specifiers); ok {
			entry += "=" + pin
		} else if len(req.Specifiers) > 0 {
			warnings = append(warnings, fmt.Sprintf("%s: conda only takes exact pins, dropping %s", req.Name, specList(req.Specifiers)))
		}
		if req.Marker != nil {
			warnings = append(warnings, fmt.Sprintf("%s: conda has no environment markers, dropping %q", req.Name, req.Marker.String()))
		}
		env.Dependencies = append(env.Dependencies, entry)
	}
	out, err := yaml.Marshal(&env)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to render environment.yml: %w", err)
	}
	return out, warnings, nil
}

// FromCondaEnv parses a conda environment.yml into a requirements
// manifest. Conda's "name=version" pins become "==" specifiers.
func FromCondaEnv(path string) (*requirements.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var env condaEnv
	if err := yaml.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	m := &requirements.Manifest{Path: path}
	for i, dep := range env.Dependencies {
		line := strings.TrimSpace(dep)
		if line == "" {
			continue
		}
		// conda spells pins name=version (single "="); build channels like
		// "numpy=1.24=py311h64a7726_0" keep only name and version
		parts := strings.Split(line, "=")
		if len(parts) >= 2 && parts[1] != "" {
			line = parts[0] + "==" + parts[1]
		}
		entry, err := requirements.Parse(strings.NewReader(line))
		if err != nil {
			return nil, fmt.Errorf("%s: dependency %d: %w", path, i+1, err)
		}
		m.Entries = append(m.Entries, entry.Entries...)
	}
	return m, nil
}

func exactPin(specs []requirements.Specifier) (string, bool) {
	if len(specs) != 1 {
		return "", false
	}
	s := specs[0]
	if (s.Op == "==" || s.Op == "===") && !strings.HasSuffix(s.Version, ".*") {
		return s.Version, true
	}
	return "", false
}

func specList(specs []requirements.Specifier) string {
	out := make([]string, len(specs))
	for i, s := range specs {
		out[i] = s.String()
	}
	return strings.Join(out, ",")
}
