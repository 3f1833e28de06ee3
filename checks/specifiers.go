package checks

import (
	"fmt"

	"reqcheck/requirements"
)

func init() {
	Register(&specifiersCheck{})
}

// specifiersCheck flags specifier sets no version can satisfy, like
// "pkg==1.0,==2.0" or "pkg<1.0,>2.0".
type specifiersCheck struct{}

func (*specifiersCheck) Name() string { return "specifiers" }

func (*specifiersCheck) Description() string {
	return "contradictory version constraints on a single requirement"
}

// candidateVersions derives probe versions from the specifier set itself:
// each referenced version plus neighbors slightly below and above it.
func candidateVersions(specs []requirements.Specifier) []*requirements.Version {
	var out []*requirements.Version
	for _, s := range specs {
		raw := s.Version
		if v, err := requirements.ParseVersion(trimWildcard(raw)); err == nil {
			out = append(out, v)
			out = append(out, neighbor(v, -1), neighbor(v, 1), deeper(v))
		}
	}
	return out
}

func trimWildcard(v string) string {
	if len(v) > 2 && v[len(v)-2:] == ".*" {
		return v[:len(v)-2]
	}
	return v
}

func neighbor(v *requirements.Version, delta int) *requirements.Version {
	n := *v
	n.Release = append([]int(nil), v.Release...)
	last := len(n.Release) - 1
	n.Release[last] += delta
	if n.Release[last] < 0 {
		n.Release[last] = 0
	}
	return &n
}

// deeper probes versions like 1.0.1 that sit strictly inside a
// one-segment-wide range such as ">1.0,<1.1".
func deeper(v *requirements.Version) *requirements.Version {
	n := *v
	n.Release = append(append([]int(nil), v.Release...), 1)
	return &n
}

func (*specifiersCheck) Run(m *requirements.Manifest) []Issue {
	var issues []Issue
	for _, req := range m.Requirements() {
		if len(req.Specifiers) < 2 {
			continue
		}
		candidates := candidateVersions(req.Specifiers)
		if len(candidates) == 0 {
			continue
		}
		satisfiable := false
		for _, v := range candidates {
			ok, err := requirements.MatchAll(req.Specifiers, v)
			if err != nil {
				satisfiable = true // cannot probe, give the line the benefit of the doubt
				break
			}
			if ok {
				satisfiable = true
				break
			}
		}
		if !satisfiable {
			issues = append(issues, Issue{
				Line:     req.Line,
				Severity: SeverityError,
				Check:    "specifiers",
				Message:  fmt.Sprintf("package %q has contradictory constraints: no version satisfies %s", req.Name, specString(req.Specifiers)),
			})
		}
	}
	return issues
}

func specString(specs []requirements.Specifier) string {
	s := ""
	for i, sp := range specs {
		if i > 0 {
			s += ","
		}
		s += sp.String()
	}
	return s
}
