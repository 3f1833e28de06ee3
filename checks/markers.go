package checks

import (
	"fmt"

	"reqcheck/requirements"
)

func init() {
	Register(&markersCheck{})
}

// markersCheck validates environment markers beyond bare syntax: the
// variables must exist, and version-valued variables must be compared
// against version literals.
type markersCheck struct{}

func (*markersCheck) Name() string { return "markers" }

func (*markersCheck) Description() string {
	return "unknown marker variables and suspicious comparisons"
}

func (*markersCheck) Run(m *requirements.Manifest) []Issue {
	var issues []Issue
	for _, req := range m.Requirements() {
		if req.Marker == nil {
			continue
		}
		unknown := false
		for _, v := range req.Marker.Variables() {
			if !requirements.MarkerVariables[v] {
				unknown = true
				issues = append(issues, Issue{
					Line:     req.Line,
					Severity: SeverityError,
					Check:    "markers",
					Message:  fmt.Sprintf("unknown marker variable %q", v),
				})
			}
		}
		if unknown {
			continue
		}
		for _, p := range req.Marker.Problems() {
			issues = append(issues, Issue{
				Line:     req.Line,
				Severity: SeverityWarning,
				Check:    "markers",
				Message:  p,
			})
		}
	}
	return issues
}
