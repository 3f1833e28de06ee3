package checks

import (
	"fmt"
	"sort"

	"reqcheck/requirements"
)

func init() {
	Register(&duplicatesCheck{})
}

// duplicatesCheck flags a package pinned more than once, unless the pins
// carry mutually exclusive environment markers (e.g. one line for
// python_version < "3.7" and one for everything newer).
type duplicatesCheck struct{}

func (*duplicatesCheck) Name() string { return "duplicates" }

func (*duplicatesCheck) Description() string {
	return "duplicate package names without mutually exclusive markers"
}

func (*duplicatesCheck) Run(m *requirements.Manifest) []Issue {
	envs := sampleEnvironments(m)
	var issues []Issue
	seen := map[string][]*requirements.Requirement{}
	for _, req := range m.Requirements() {
		name := requirements.CanonicalName(req.Name)
		for _, prev := range seen[name] {
			if markersExclusive(prev.Marker, req.Marker, envs) {
				continue
			}
			issues = append(issues, Issue{
				Line:     req.Line,
				Severity: SeverityError,
				Check:    "duplicates",
				Message:  fmt.Sprintf("package %q already pinned on line %d and the markers are not mutually exclusive", req.Name, prev.Line),
			})
		}
		seen[name] = append(seen[name], req)
	}
	return issues
}

var sampleVersions = []string{"2.7.18", "3.6.15", "3.7.17", "3.8.18", "3.9.19", "3.10.14", "3.11.9", "3.12.4", "3.13.0"}
var samplePlatforms = []string{"linux", "darwin", "win32"}
var sampleMachines = []string{"x86_64", "aarch64"}

// sampleEnvironments builds the grid the exclusivity decision is made
// over: interpreter versions crossed with platforms and machines, plus a
// variant per extra value the manifest's markers actually mention.
func sampleEnvironments(m *requirements.Manifest) []requirements.Environment {
	extras := map[string]bool{"": true}
	for _, req := range m.Requirements() {
		if req.Marker == nil {
			continue
		}
		for _, lit := range req.Marker.Literals("extra") {
			extras[requirements.CanonicalName(lit)] = true
		}
	}
	extraValues := make([]string, 0, len(extras))
	for e := range extras {
		extraValues = append(extraValues, e)
	}
	sort.Strings(extraValues)

	var envs []requirements.Environment
	for _, v := range sampleVersions {
		for _, p := range samplePlatforms {
			for _, machine := range sampleMachines {
				for _, extra := range extraValues {
					env := requirements.DefaultEnvironment(v, p)
					env["platform_machine"] = machine
					env["extra"] = extra
					envs = append(envs, env)
				}
			}
		}
	}
	return envs
}

// markersExclusive reports whether no sampled environment satisfies both
// markers. Identical markers always overlap, whatever the grid says.
// Markers that fail to evaluate count as overlapping; the markers check
// reports the underlying problem separately.
func markersExclusive(a, b requirements.Marker, envs []requirements.Environment) bool {
	if a == nil || b == nil {
		return false
	}
	if a.String() == b.String() {
		return false
	}
	for _, env := range envs {
		av, err := a.Eval(env)
		if err != nil {
			return false
		}
		bv, err := b.Eval(env)
		if err != nil {
			return false
		}
		if av && bv {
			return false
		}
	}
	return true
}
