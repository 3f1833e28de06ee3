package checks

import (
	"fmt"
	"sort"

	"reqcheck/requirements"
)

// Severity grades an issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is a single finding against a manifest.
type Issue struct {
	File     string
	Line     int
	Severity Severity
	Check    string
	Message  string
}

func (i Issue) String() string {
	loc := fmt.Sprintf("line %d", i.Line)
	if i.File != "" {
		loc = fmt.Sprintf("%s:%d", i.File, i.Line)
	}
	return fmt.Sprintf("%s: %s: %s (%s)", loc, i.Severity, i.Message, i.Check)
}

// Check inspects a parsed manifest and reports issues.
type Check interface {
	Name() string
	Description() string
	Run(m *requirements.Manifest) []Issue
}

var registry = map[string]Check{}

// Register adds a check to the registry. Registering the same name twice
// panics; check names are package-global.
func Register(c Check) {
	if _, dup := registry[c.Name()]; dup {
		panic(fmt.Sprintf("checks: duplicate registration of %q", c.Name()))
	}
	registry[c.Name()] = c
}

// All returns the registered checks sorted by name.
func All() []Check {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]Check, 0, len(names))
	for _, n := range names {
		out = append(out, registry[n])
	}
	return out
}

// Run executes every enabled check against the manifest and returns the
// findings sorted by line. A nil config enables everything at default
// severity.
func Run(m *requirements.Manifest, cfg *Config) []Issue {
	var issues []Issue
	for _, c := range All() {
		if cfg.disabled(c.Name()) {
			continue
		}
		for _, issue := range c.Run(m) {
			issue.File = m.Path
			if sev, ok := cfg.severity(c.Name()); ok {
				issue.Severity = sev
			}
			issues = append(issues, issue)
		}
	}
	sort.SliceStable(issues, func(i, j int) bool { return issues[i].Line < issues[j].Line })
	return issues
}

// HasErrors reports whether any finding is error-severity.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}
