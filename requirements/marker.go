package requirements

import (
	"fmt"
	"strings"
)

// Environment holds the marker variables a requirement line can be
// conditioned on, e.g. python_version or sys_platform.
type Environment map[string]string

// MarkerVariables lists every variable an environment marker may reference.
var MarkerVariables = map[string]bool{
	"python_version":                 true,
	"python_full_version":            true,
	"os_name":                        true,
	"sys_platform":                   true,
	"platform_machine":               true,
	"platform_system":                true,
	"platform_release":               true,
	"platform_version":               true,
	"platform_python_implementation": true,
	"implementation_name":            true,
	"implementation_version":         true,
	"extra":                          true,
}

// versionVariables are compared by version order rather than as strings.
var versionVariables = map[string]bool{
	"python_version":         true,
	"python_full_version":    true,
	"implementation_version": true,
}

// DefaultEnvironment builds a plausible CPython environment for the given
// interpreter version ("3.11" or "3.11.4") and sys.platform value
// ("linux", "darwin" or "win32").
func DefaultEnvironment(pythonVersion, platform string) Environment {
	full := pythonVersion
	for strings.Count(full, ".") < 2 {
		full += ".0"
	}
	short := full
	if parts := strings.SplitN(full, ".", 3); len(parts) >= 2 {
		short = parts[0] + "." + parts[1]
	}
	osName, system := "posix", "Linux"
	switch platform {
	case "win32":
		osName, system = "nt", "Windows"
	case "darwin":
		system = "Darwin"
	}
	return Environment{
		"python_version":                 short,
		"python_full_version":            full,
		"os_name":                        osName,
		"sys_platform":                   platform,
		"platform_machine":               "x86_64",
		"platform_system":                system,
		"platform_release":               "",
		"platform_version":               "",
		"platform_python_implementation": "CPython",
		"implementation_name":            "cpython",
		"implementation_version":         full,
		"extra":                          "",
	}
}

// Marker is a parsed environment marker expression.
type Marker interface {
	// Eval decides the marker against an environment. Referencing a
	// variable the environment does not define is an error.
	Eval(env Environment) (bool, error)
	String() string
	// Variables reports every marker variable the expression mentions.
	Variables() []string
	// Literals reports every string literal the expression compares the
	// given variable against.
	Literals(variable string) []string
	// Problems reports comparisons that are syntactically fine but can
	// never mean what was intended, e.g. python_version == "recent".
	Problems() []string
}

type markerOr struct{ left, right Marker }
type markerAnd struct{ left, right Marker }

type markerCmp struct {
	lhs, rhs markerOperand
	op       string
}

type markerOperand struct {
	value    string
	variable bool
}

func (m *markerOr) Eval(env Environment) (bool, error) {
	l, err := m.left.Eval(env)
	if err != nil {
		return false, err
	}
	if l {
		return true, nil
	}
	return m.right.Eval(env)
}

func (m *markerOr) String() string {
	return m.left.String() + " or " + m.right.String()
}

func (m *markerOr) Variables() []string {
	return append(m.left.Variables(), m.right.Variables()...)
}

func (m *markerOr) Literals(variable string) []string {
	return append(m.left.Literals(variable), m.right.Literals(variable)...)
}

func (m *markerOr) Problems() []string {
	return append(m.left.Problems(), m.right.Problems()...)
}

func (m *markerAnd) Eval(env Environment) (bool, error) {
	l, err := m.left.Eval(env)
	if err != nil {
		return false, err
	}
	if !l {
		return false, nil
	}
	return m.right.Eval(env)
}

func (m *markerAnd) String() string {
	l, r := m.left.String(), m.right.String()
	if _, ok := m.left.(*markerOr); ok {
		l = "(" + l + ")"
	}
	if _, ok := m.right.(*markerOr); ok {
		r = "(" + r + ")"
	}
	return l + " and " + r
}

func (m *markerAnd) Variables() []string {
	return append(m.left.Variables(), m.right.Variables()...)
}

func (m *markerAnd) Literals(variable string) []string {
	return append(m.left.Literals(variable), m.right.Literals(variable)...)
}

func (m *markerAnd) Problems() []string {
	return append(m.left.Problems(), m.right.Problems()...)
}

func (m *markerCmp) Eval(env Environment) (bool, error) {
	lhs, err := m.lhs.resolve(env)
	if err != nil {
		return false, err
	}
	rhs, err := m.rhs.resolve(env)
	if err != nil {
		return false, err
	}

	switch m.op {
	case "in":
		return strings.Contains(rhs, lhs), nil
	case "not in":
		return !strings.Contains(rhs, lhs), nil
	}

	// python_version and friends compare by version order when both sides
	// parse as versions; everything else falls back to string comparison.
	if m.versionValued() {
		lv, lerr := ParseVersion(lhs)
		rv, rerr := ParseVersion(rhs)
		if lerr == nil && rerr == nil {
			return Specifier{Op: m.op, Version: rv.String()}.Match(lv)
		}
	}
	c := strings.Compare(lhs, rhs)
	switch m.op {
	case "==", "===":
		return c == 0, nil
	case "!=":
		return c != 0, nil
	case "<":
		return c < 0, nil
	case "<=":
		return c <= 0, nil
	case ">":
		return c > 0, nil
	case ">=":
		return c >= 0, nil
	case "~=":
		return false, fmt.Errorf("operator ~= needs version operands, got %q and %q", lhs, rhs)
	}
	return false, fmt.Errorf("unknown marker operator %q", m.op)
}

func (m *markerCmp) versionValued() bool {
	return (m.lhs.variable && versionVariables[m.lhs.value]) ||
		(m.rhs.variable && versionVariables[m.rhs.value])
}

func (m *markerCmp) String() string {
	return m.lhs.String() + " " + m.op + " " + m.rhs.String()
}

func (m *markerCmp) Variables() []string {
	var vars []string
	if m.lhs.variable {
		vars = append(vars, m.lhs.value)
	}
	if m.rhs.variable {
		vars = append(vars, m.rhs.value)
	}
	return vars
}

func (m *markerCmp) Literals(variable string) []string {
	var lits []string
	if m.lhs.variable && m.lhs.value == variable && !m.rhs.variable {
		lits = append(lits, m.rhs.value)
	}
	if m.rhs.variable && m.rhs.value == variable && !m.lhs.variable {
		lits = append(lits, m.lhs.value)
	}
	return lits
}

func (m *markerCmp) Problems() []string {
	if m.op == "in" || m.op == "not in" || !m.versionValued() {
		return nil
	}
	var problems []string
	for _, o := range []markerOperand{m.lhs, m.rhs} {
		if o.variable {
			continue
		}
		if _, err := ParseVersion(o.value); err != nil {
			problems = append(problems, fmt.Sprintf("comparing a version-valued variable against non-version %q", o.value))
		}
	}
	return problems
}

func (o markerOperand) resolve(env Environment) (string, error) {
	if !o.variable {
		return o.value, nil
	}
	v, ok := env[o.value]
	if !ok {
		return "", fmt.Errorf("marker variable %q not defined in environment", o.value)
	}
	return v, nil
}

func (o markerOperand) String() string {
	if o.variable {
		return o.value
	}
	return `"` + o.value + `"`
}

// ParseMarker parses an environment marker expression such as
// `python_version < "3.7" and sys_platform != "win32"`.
func ParseMarker(s string) (Marker, error) {
	toks, err := lexMarker(s)
	if err != nil {
		return nil, err
	}
	p := &markerParser{input: s, toks: toks}
	m, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.toks) {
		return nil, fmt.Errorf("marker %q: unexpected %q", s, p.toks[p.pos].text)
	}
	return m, nil
}

type markerToken struct {
	kind string // "ident", "string", "op", "lparen", "rparen"
	text string
	off  int
}

func lexMarker(s string) ([]markerToken, error) {
	var toks []markerToken
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '(':
			toks = append(toks, markerToken{"lparen", "(", i})
			i++
		case c == ')':
			toks = append(toks, markerToken{"rparen", ")", i})
			i++
		case c == '"' || c == '\'':
			j := strings.IndexByte(s[i+1:], c)
			if j < 0 {
				return nil, fmt.Errorf("marker %q: unterminated string at offset %d", s, i)
			}
			toks = append(toks, markerToken{"string", s[i+1 : i+1+j], i})
			i += j + 2
		case strings.ContainsRune("<>=!~", rune(c)):
			j := i
			for j < len(s) && strings.ContainsRune("<>=!~", rune(s[j])) {
				j++
			}
			op := s[i:j]
			switch op {
			case "==", "!=", "<=", ">=", "<", ">", "~=", "===":
			default:
				return nil, fmt.Errorf("marker %q: invalid operator %q at offset %d", s, op, i)
			}
			toks = append(toks, markerToken{"op", op, i})
			i = j
		case isIdentByte(c):
			j := i
			for j < len(s) && isIdentByte(s[j]) {
				j++
			}
			toks = append(toks, markerToken{"ident", s[i:j], i})
			i = j
		default:
			return nil, fmt.Errorf("marker %q: unexpected character %q at offset %d", s, c, i)
		}
	}
	return toks, nil
}

func isIdentByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '.'
}

type markerParser struct {
	input string
	toks  []markerToken
	pos   int
}

func (p *markerParser) parseOr() (Marker, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peekIdent("or") {
		p.pos++
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &markerOr{left, right}
	}
	return left, nil
}

func (p *markerParser) parseAnd() (Marker, error) {
	left, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for p.peekIdent("and") {
		p.pos++
		right, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		left = &markerAnd{left, right}
	}
	return left, nil
}

func (p *markerParser) parseAtom() (Marker, error) {
	if p.pos < len(p.toks) && p.toks[p.pos].kind == "lparen" {
		p.pos++
		m, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.pos >= len(p.toks) || p.toks[p.pos].kind != "rparen" {
			return nil, fmt.Errorf("marker %q: missing closing parenthesis", p.input)
		}
		p.pos++
		return m, nil
	}
	return p.parseComparison()
}

func (p *markerParser) parseComparison() (Marker, error) {
	lhs, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	op, err := p.parseOp()
	if err != nil {
		return nil, err
	}
	rhs, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	return &markerCmp{lhs: lhs, rhs: rhs, op: op}, nil
}

func (p *markerParser) parseOperand() (markerOperand, error) {
	if p.pos >= len(p.toks) {
		return markerOperand{}, fmt.Errorf("marker %q: unexpected end of expression", p.input)
	}
	t := p.toks[p.pos]
	switch t.kind {
	case "string":
		p.pos++
		return markerOperand{value: t.text}, nil
	case "ident":
		p.pos++
		return markerOperand{value: t.text, variable: true}, nil
	}
	return markerOperand{}, fmt.Errorf("marker %q: expected value at offset %d, got %q", p.input, t.off, t.text)
}

func (p *markerParser) parseOp() (string, error) {
	if p.pos >= len(p.toks) {
		return "", fmt.Errorf("marker %q: missing operator", p.input)
	}
	t := p.toks[p.pos]
	if t.kind == "op" {
		p.pos++
		return t.text, nil
	}
	if t.kind == "ident" && t.text == "in" {
		p.pos++
		return "in", nil
	}
	if t.kind == "ident" && t.text == "not" {
		p.pos++
		if !p.peekIdent("in") {
			return "", fmt.Errorf("marker %q: expected 'in' after 'not' at offset %d", p.input, t.off)
		}
		p.pos++
		return "not in", nil
	}
	return "", fmt.Errorf("marker %q: expected operator at offset %d, got %q", p.input, t.off, t.text)
}

func (p *markerParser) peekIdent(word string) bool {
	return p.pos < len(p.toks) && p.toks[p.pos].kind == "ident" && p.toks[p.pos].text == word
}
