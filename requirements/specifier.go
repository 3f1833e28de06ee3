package requirements

import (
	"fmt"
	"regexp"
	"strings"
)

// Specifier is a single version constraint, e.g. ">=1.2" or "==2.1.*".
type Specifier struct {
	Op      string
	Version string
}

var specifierRe = regexp.MustCompile(`^(===|==|!=|<=|>=|~=|<|>)\s*(.+)$`)

// ParseSpecifiers parses a comma-separated specifier list ("pkg>=1,<2"
// carries the part after the name).
func ParseSpecifiers(s string) ([]Specifier, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var specs []Specifier
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("empty specifier in %q", s)
		}
		m := specifierRe.FindStringSubmatch(part)
		if m == nil {
			return nil, fmt.Errorf("invalid specifier %q", part)
		}
		spec := Specifier{Op: m[1], Version: strings.TrimSpace(m[2])}
		if err := spec.validate(); err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func (s Specifier) validate() error {
	ver := s.Version
	switch s.Op {
	case "===":
		// arbitrary equality compares raw strings, anything goes
		return nil
	case "==", "!=":
		ver = strings.TrimSuffix(ver, ".*")
	case "~=":
		v, err := ParseVersion(ver)
		if err != nil {
			return err
		}
		if len(v.Release) < 2 {
			return fmt.Errorf("compatible release specifier ~=%s needs at least two release segments", ver)
		}
		return nil
	}
	if _, err := ParseVersion(ver); err != nil {
		return fmt.Errorf("specifier %s%s: %w", s.Op, s.Version, err)
	}
	return nil
}

func (s Specifier) String() string {
	return s.Op + s.Version
}

// Match reports whether version v satisfies the specifier.
func (s Specifier) Match(v *Version) (bool, error) {
	switch s.Op {
	case "===":
		return strings.TrimSpace(v.String()) == s.Version, nil
	case "==":
		if strings.HasSuffix(s.Version, ".*") {
			return matchPrefix(v, strings.TrimSuffix(s.Version, ".*"))
		}
		return compareTo(v, s.Version, func(c int) bool { return c == 0 })
	case "!=":
		if strings.HasSuffix(s.Version, ".*") {
			ok, err := matchPrefix(v, strings.TrimSuffix(s.Version, ".*"))
			return !ok, err
		}
		return compareTo(v, s.Version, func(c int) bool { return c != 0 })
	case "<=":
		return compareTo(v, s.Version, func(c int) bool { return c <= 0 })
	case ">=":
		return compareTo(v, s.Version, func(c int) bool { return c >= 0 })
	case "<":
		return compareTo(v, s.Version, func(c int) bool { return c < 0 })
	case ">":
		return compareTo(v, s.Version, func(c int) bool { return c > 0 })
	case "~=":
		spec, err := ParseVersion(s.Version)
		if err != nil {
			return false, err
		}
		if len(spec.Release) < 2 {
			return false, fmt.Errorf("compatible release specifier ~=%s needs at least two release segments", s.Version)
		}
		lower, err := compareTo(v, s.Version, func(c int) bool { return c >= 0 })
		if err != nil || !lower {
			return false, err
		}
		prefix := spec.Release[:len(spec.Release)-1]
		return releaseHasPrefix(v.Release, prefix) && v.Epoch == spec.Epoch, nil
	}
	return false, fmt.Errorf("unknown operator %q", s.Op)
}

func compareTo(v *Version, spec string, ok func(int) bool) (bool, error) {
	sv, err := ParseVersion(spec)
	if err != nil {
		return false, err
	}
	// local tags are ignored outside equality comparisons
	a, b := *v, *sv
	if sv.Local == "" {
		a.Local = ""
	}
	return ok(a.Compare(&b)), nil
}

func matchPrefix(v *Version, prefix string) (bool, error) {
	pv, err := ParseVersion(prefix)
	if err != nil {
		return false, err
	}
	return v.Epoch == pv.Epoch && releaseHasPrefix(v.Release, pv.Release), nil
}

func releaseHasPrefix(release, prefix []int) bool {
	for i, n := range prefix {
		var seg int
		if i < len(release) {
			seg = release[i]
		}
		if seg != n {
			return false
		}
	}
	return true
}

// MatchAll reports whether v satisfies every specifier in the set.
func MatchAll(specs []Specifier, v *Version) (bool, error) {
	for _, s := range specs {
		ok, err := s.Match(v)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}
