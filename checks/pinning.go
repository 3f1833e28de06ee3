package checks

import (
	"fmt"
	"strings"

	"reqcheck/requirements"
)

func init() {
	Register(&pinningCheck{})
}

// pinningCheck warns about requirements that float: no specifier at all,
// or only a lower bound.
type pinningCheck struct{}

func (*pinningCheck) Name() string { return "pinning" }

func (*pinningCheck) Description() string {
	return "requirements without a pin or upper bound"
}

func (*pinningCheck) Run(m *requirements.Manifest) []Issue {
	var issues []Issue
	for _, req := range m.Requirements() {
		if req.URL != "" {
			continue
		}
		if len(req.Specifiers) == 0 {
			issues = append(issues, Issue{
				Line:     req.Line,
				Severity: SeverityWarning,
				Check:    "pinning",
				Message:  fmt.Sprintf("package %q has no version constraint", req.Name),
			})
			continue
		}
		if lowerBoundOnly(req.Specifiers) {
			issues = append(issues, Issue{
				Line:     req.Line,
				Severity: SeverityWarning,
				Check:    "pinning",
				Message:  fmt.Sprintf("package %q has a lower bound but no upper bound", req.Name),
			})
		}
	}
	return issues
}

func lowerBoundOnly(specs []requirements.Specifier) bool {
	hasLower := false
	for _, s := range specs {
		switch s.Op {
		case ">", ">=":
			hasLower = true
		case "==", "===", "~=", "<", "<=":
			return false
		case "!=":
			// exclusions neither bound nor pin
		}
	}
	// "==1.2.*" style wildcards count as bounded
	for _, s := range specs {
		if s.Op == "==" && strings.HasSuffix(s.Version, ".*") {
			return false
		}
	}
	return hasLower
}
