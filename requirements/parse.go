package requirements

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// ParseError reports a malformed manifest line.
type ParseError struct {
	File   string
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Reason)
}

// knownOptions are the requirement-file options recognized as directives.
var knownOptions = map[string]bool{
	"-r": true, "--requirement": true,
	"-c": true, "--constraint": true,
	"-e": true, "--editable": true,
	"-i": true, "--index-url": true,
	"--extra-index-url": true,
	"--no-index":        true,
	"-f":                true,
	"--find-links":      true,
	"--no-binary":       true,
	"--only-binary":     true,
	"--trusted-host":    true,
	"--hash":            true,
	"--pre":             true,
	"--require-hashes":  true,
}

var nameRe = regexp.MustCompile(`^([A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?)`)
var extrasRe = regexp.MustCompile(`^\[\s*([A-Za-z0-9._-]+(?:\s*,\s*[A-Za-z0-9._-]+)*)\s*\]`)

// ParseFile reads and parses a requirements manifest from disk.
func ParseFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer f.Close()
	m, err := Parse(f)
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			pe.File = path
		}
		return nil, err
	}
	m.Path = path
	return m, nil
}

// Parse reads a requirements manifest. One entry per line; a trailing
// backslash joins the next line; "#" starts a comment; ";" introduces an
// environment marker.
func Parse(r io.Reader) (*Manifest, error) {
	m := &Manifest{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNo := 0
	first := true
	for scanner.Scan() {
		raw := scanner.Text()
		lineNo++
		startLine := lineNo
		if first {
			raw = strings.TrimPrefix(raw, "\ufeff")
			first = false
		}

		// logical line: join backslash continuations
		for strings.HasSuffix(strings.TrimRight(raw, " \t"), `\`) && scanner.Scan() {
			raw = strings.TrimSuffix(strings.TrimRight(raw, " \t"), `\`) + " " + strings.TrimSpace(scanner.Text())
			lineNo++
		}

		entry, err := parseLine(raw, startLine)
		if err != nil {
			return nil, err
		}
		m.Entries = append(m.Entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return m, nil
}

func parseLine(raw string, lineNo int) (Entry, error) {
	line := strings.TrimSpace(raw)
	if line == "" {
		return Entry{Kind: EntryBlank, Line: lineNo}, nil
	}
	if strings.HasPrefix(line, "#") {
		return Entry{Kind: EntryComment, Text: strings.TrimSpace(strings.TrimPrefix(line, "#")), Line: lineNo}, nil
	}

	line, comment := splitComment(line)
	line = strings.TrimSpace(line)
	if line == "" {
		// "   # comment" with leading spaces before the hash
		return Entry{Kind: EntryComment, Text: comment, Line: lineNo}, nil
	}

	if strings.HasPrefix(line, "-") {
		d, err := parseDirective(line, comment, lineNo)
		if err != nil {
			return Entry{}, err
		}
		return Entry{Kind: EntryDirective, Dir: d, Line: lineNo}, nil
	}

	req, err := parseRequirement(line, lineNo)
	if err != nil {
		return Entry{}, err
	}
	req.Comment = comment
	return Entry{Kind: EntryRequirement, Req: req, Line: lineNo}, nil
}

// splitComment cuts an inline comment off a line, honoring quotes so a
// "#" inside a marker string is not treated as a comment.
func splitComment(line string) (string, string) {
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '#':
			return line[:i], strings.TrimSpace(line[i+1:])
		}
	}
	return line, ""
}

func parseDirective(line, comment string, lineNo int) (*Directive, error) {
	option := line
	value := ""
	if i := strings.IndexAny(line, " \t="); i > 0 {
		option = line[:i]
		value = strings.TrimSpace(strings.TrimPrefix(line[i:], "="))
	}
	if !knownOptions[option] {
		return nil, &ParseError{Line: lineNo, Reason: fmt.Sprintf("unknown option %q", option)}
	}
	return &Directive{Option: option, Value: value, Comment: comment, Line: lineNo}, nil
}

func parseRequirement(line string, lineNo int) (*Requirement, error) {
	spec, marker := splitMarker(line)
	spec = strings.TrimSpace(spec)

	m := nameRe.FindString(spec)
	if m == "" {
		return nil, &ParseError{Line: lineNo, Reason: fmt.Sprintf("cannot parse package name in %q", line)}
	}
	req := &Requirement{Name: m, Line: lineNo}
	rest := strings.TrimSpace(spec[len(m):])

	if strings.HasPrefix(rest, "[") {
		em := extrasRe.FindStringSubmatch(rest)
		if em == nil {
			return nil, &ParseError{Line: lineNo, Reason: fmt.Sprintf("malformed extras in %q", line)}
		}
		for _, e := range strings.Split(em[1], ",") {
			req.Extras = append(req.Extras, strings.TrimSpace(e))
		}
		req.Extras = CanonicalExtras(req.Extras)
		rest = strings.TrimSpace(rest[len(em[0]):])
	}

	if strings.HasPrefix(rest, "@") {
		req.URL = strings.TrimSpace(rest[1:])
		if req.URL == "" {
			return nil, &ParseError{Line: lineNo, Reason: fmt.Sprintf("missing URL after @ in %q", line)}
		}
	} else if rest != "" {
		specs, err := ParseSpecifiers(rest)
		if err != nil {
			return nil, &ParseError{Line: lineNo, Reason: err.Error()}
		}
		req.Specifiers = specs
	}

	if marker != "" {
		mk, err := ParseMarker(marker)
		if err != nil {
			return nil, &ParseError{Line: lineNo, Reason: err.Error()}
		}
		req.Marker = mk
	}
	return req, nil
}

// splitMarker cuts the environment marker off a requirement, honoring
// quotes so a ";" inside a marker string stays put.
func splitMarker(line string) (string, string) {
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == ';':
			return line[:i], strings.TrimSpace(line[i+1:])
		}
	}
	return line, ""
}
