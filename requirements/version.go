package requirements

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Version is a parsed package version: epoch, dotted release segments and
// the optional pre/post/dev/local suffixes the Python packaging ecosystem
// uses (PEP 440 style, e.g. "1!2.0.3rc1.post2.dev4+cu118").
type Version struct {
	Epoch   int
	Release []int
	Pre     *PreRelease
	Post    int // -1 when absent
	Dev     int // -1 when absent
	Local   string

	original string
}

// PreRelease is a pre-release marker: phase "a", "b" or "rc" plus a number.
type PreRelease struct {
	Phase  string
	Number int
}

var versionRe = regexp.MustCompile(`^(?:(\d+)!)?` + // epoch
	`(\d+(?:\.\d+)*)` + // release
	`(?:[._-]?(a|alpha|b|beta|c|rc|pre|preview)[._-]?(\d*))?` + // pre
	`(?:[._-]?(post|rev|r)[._-]?(\d*)|-(\d+))?` + // post
	`(?:[._-]?(dev)[._-]?(\d*))?` + // dev
	`(?:\+([a-z0-9]+(?:[._-][a-z0-9]+)*))?$`) // local

// ParseVersion parses a version string. Leading "v" and surrounding
// whitespace are tolerated, the rest must match the versioning scheme.
func ParseVersion(s string) (*Version, error) {
	orig := s
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.TrimPrefix(s, "v")
	m := versionRe.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Errorf("invalid version %q", orig)
	}

	v := &Version{Post: -1, Dev: -1, original: strings.TrimSpace(orig)}
	if m[1] != "" {
		v.Epoch, _ = strconv.Atoi(m[1])
	}
	for _, seg := range strings.Split(m[2], ".") {
		n, err := strconv.Atoi(seg)
		if err != nil {
			return nil, fmt.Errorf("invalid version %q: release segment %q", orig, seg)
		}
		v.Release = append(v.Release, n)
	}
	if m[3] != "" {
		v.Pre = &PreRelease{Phase: canonicalPhase(m[3]), Number: atoiOrZero(m[4])}
	}
	if m[5] != "" {
		v.Post = atoiOrZero(m[6])
	}
	if m[7] != "" {
		// implicit post: "1.0-1"
		v.Post = atoiOrZero(m[7])
	}
	if m[8] != "" {
		v.Dev = atoiOrZero(m[9])
	}
	v.Local = m[10]
	return v, nil
}

func canonicalPhase(p string) string {
	switch p {
	case "a", "alpha":
		return "a"
	case "b", "beta":
		return "b"
	default: // c, rc, pre, preview
		return "rc"
	}
}

func atoiOrZero(s string) int {
	if s == "" {
		return 0
	}
	n, _ := strconv.Atoi(s)
	return n
}

// String returns the version as originally written.
func (v *Version) String() string {
	if v.original != "" {
		return v.original
	}
	return v.Canonical()
}

// Canonical returns the normalized spelling of the version.
func (v *Version) Canonical() string {
	var b strings.Builder
	if v.Epoch > 0 {
		fmt.Fprintf(&b, "%d!", v.Epoch)
	}
	segs := make([]string, len(v.Release))
	for i, n := range v.Release {
		segs[i] = strconv.Itoa(n)
	}
	b.WriteString(strings.Join(segs, "."))
	if v.Pre != nil {
		fmt.Fprintf(&b, "%s%d", v.Pre.Phase, v.Pre.Number)
	}
	if v.Post >= 0 {
		fmt.Fprintf(&b, ".post%d", v.Post)
	}
	if v.Dev >= 0 {
		fmt.Fprintf(&b, ".dev%d", v.Dev)
	}
	if v.Local != "" {
		fmt.Fprintf(&b, "+%s", v.Local)
	}
	return b.String()
}

// Compare returns -1, 0 or 1 ordering v against o.
//
// The order follows the packaging ecosystem: epoch first, then release
// segments with the shorter release zero-padded, then suffixes where
// dev < pre < final < post. Local tags only break otherwise-equal versions.
func (v *Version) Compare(o *Version) int {
	if v.Epoch != o.Epoch {
		return cmpInt(v.Epoch, o.Epoch)
	}
	if c := cmpRelease(v.Release, o.Release); c != 0 {
		return c
	}
	if c := cmpInt(v.preRank(), o.preRank()); c != 0 {
		return c
	}
	if v.Pre != nil && o.Pre != nil {
		if c := cmpInt(v.Pre.Number, o.Pre.Number); c != 0 {
			return c
		}
	}
	if c := cmpInt(v.Post, o.Post); c != 0 {
		return c
	}
	if c := cmpInt(v.devRank(), o.devRank()); c != 0 {
		return c
	}
	return cmpLocal(v.Local, o.Local)
}

// preRank orders the suffix phase: dev-only < a < b < rc < final.
func (v *Version) preRank() int {
	if v.Pre == nil {
		if v.Post < 0 && v.Dev >= 0 {
			return -1 // pure dev release sorts before any pre-release
		}
		return 3
	}
	switch v.Pre.Phase {
	case "a":
		return 0
	case "b":
		return 1
	default:
		return 2
	}
}

func (v *Version) devRank() int {
	if v.Dev < 0 {
		return int(^uint(0) >> 1) // releases without .dev sort after those with it
	}
	return v.Dev
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpRelease(a, b []int) int {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		var x, y int
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		if c := cmpInt(x, y); c != 0 {
			return c
		}
	}
	return 0
}

func cmpLocal(a, b string) int {
	if a == b {
		return 0
	}
	if a == "" {
		return -1
	}
	if b == "" {
		return 1
	}
	as := strings.FieldsFunc(a, func(r rune) bool { return r == '.' || r == '-' || r == '_' })
	bs := strings.FieldsFunc(b, func(r rune) bool { return r == '.' || r == '-' || r == '_' })
	for i := 0; i < len(as) && i < len(bs); i++ {
		an, aerr := strconv.Atoi(as[i])
		bn, berr := strconv.Atoi(bs[i])
		switch {
		case aerr == nil && berr == nil:
			if c := cmpInt(an, bn); c != 0 {
				return c
			}
		case aerr == nil:
			return 1 // numeric segments sort after alphanumeric ones
		case berr == nil:
			return -1
		default:
			if c := strings.Compare(as[i], bs[i]); c != 0 {
				return c
			}
		}
	}
	return cmpInt(len(as), len(bs))
}
