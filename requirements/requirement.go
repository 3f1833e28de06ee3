package requirements

import (
	"regexp"
	"sort"
	"strings"
)

// Requirement is one dependency pin from a requirements manifest:
// name, optional extras, version specifiers, an optional environment
// marker and the trailing comment, if any.
type Requirement struct {
	Name       string
	Extras     []string
	Specifiers []Specifier
	URL        string // set for "name @ url" requirements, exclusive with Specifiers
	Marker     Marker
	Comment    string
	Line       int
}

// Directive is a non-requirement instruction line the pip ecosystem
// defines, e.g. "-r base.txt" or "--index-url https://...".
type Directive struct {
	Option  string
	Value   string
	Comment string
	Line    int
}

// EntryKind discriminates manifest entries.
type EntryKind int

const (
	EntryRequirement EntryKind = iota
	EntryDirective
	EntryComment
	EntryBlank
)

// Entry is a single manifest line. Comment and blank lines are kept so a
// manifest can be re-serialized without losing its shape.
type Entry struct {
	Kind EntryKind
	Req  *Requirement
	Dir  *Directive
	Text string // raw text of comment lines
	Line int
}

// Manifest is an ordered requirements file.
type Manifest struct {
	Path    string
	Entries []Entry
}

// Requirements returns just the requirement entries, in file order.
func (m *Manifest) Requirements() []*Requirement {
	var reqs []*Requirement
	for _, e := range m.Entries {
		if e.Kind == EntryRequirement {
			reqs = append(reqs, e.Req)
		}
	}
	return reqs
}

// Directives returns just the directive entries, in file order.
func (m *Manifest) Directives() []*Directive {
	var dirs []*Directive
	for _, e := range m.Entries {
		if e.Kind == EntryDirective {
			dirs = append(dirs, e.Dir)
		}
	}
	return dirs
}

var nameSepRe = regexp.MustCompile(`[-_.]+`)

// CanonicalName normalizes a package name the way package indexes do:
// lowercase, with runs of "-", "_" and "." collapsed to a single "-".
func CanonicalName(name string) string {
	return nameSepRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

// CanonicalExtras lowercases, deduplicates and sorts an extras list.
func CanonicalExtras(extras []string) []string {
	seen := make(map[string]bool, len(extras))
	var out []string
	for _, e := range extras {
		e = CanonicalName(e)
		if e == "" || seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

// String serializes the requirement in normalized form:
// name[extras] specifiers ; marker  # comment
func (r *Requirement) String() string {
	var b strings.Builder
	b.WriteString(r.Name)
	if len(r.Extras) > 0 {
		b.WriteString("[" + strings.Join(r.Extras, ",") + "]")
	}
	if r.URL != "" {
		b.WriteString(" @ " + r.URL)
	}
	for i, s := range r.Specifiers {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(s.String())
	}
	if r.Marker != nil {
		b.WriteString(" ; " + r.Marker.String())
	}
	if r.Comment != "" {
		b.WriteString("  # " + r.Comment)
	}
	return b.String()
}

func (d *Directive) String() string {
	var b strings.Builder
	b.WriteString(d.Option)
	if d.Value != "" {
		b.WriteString(" " + d.Value)
	}
	if d.Comment != "" {
		b.WriteString("  # " + d.Comment)
	}
	return b.String()
}
