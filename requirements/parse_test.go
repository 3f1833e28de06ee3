package requirements

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFile(t *testing.T) {
	m, err := ParseFile("testdata/requirements.txt")
	require.NoError(t, err)
	assert.Equal(t, "testdata/requirements.txt", m.Path)

	reqs := m.Requirements()
	require.Len(t, reqs, 10)
	dirs := m.Directives()
	require.Len(t, dirs, 2)

	strax := reqs[0]
	assert.Equal(t, "strax", strax.Name)
	require.Len(t, strax.Specifiers, 2)
	assert.Equal(t, Specifier{Op: ">=", Version: "1.5.0"}, strax.Specifiers[0])
	assert.Equal(t, Specifier{Op: "<", Version: "2.0"}, strax.Specifiers[1])
	assert.Equal(t, 2, strax.Line)

	scipy := reqs[3]
	assert.Equal(t, "scipy", scipy.Name)
	assert.Equal(t, "keep in sync with numba", scipy.Comment)

	typing := reqs[6]
	assert.Equal(t, "typing_extensions", typing.Name)
	require.NotNil(t, typing.Marker)
	ok, err := typing.Marker.Eval(DefaultEnvironment("3.6", "linux"))
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = typing.Marker.Eval(DefaultEnvironment("3.11", "linux"))
	require.NoError(t, err)
	assert.False(t, ok)

	requests := reqs[8]
	assert.Equal(t, "requests", requests.Name)
	assert.Equal(t, []string{"security", "socks"}, requests.Extras)

	utilix := reqs[9]
	assert.Equal(t, "utilix", utilix.Name)
	assert.Equal(t, "https://github.com/XENONnT/utilix/archive/refs/tags/v0.8.0.zip", utilix.URL)
	assert.Empty(t, utilix.Specifiers)

	assert.Equal(t, "-r", dirs[0].Option)
	assert.Equal(t, "extra.txt", dirs[0].Value)
	assert.Equal(t, "--index-url", dirs[1].Option)
	assert.Equal(t, "https://pypi.org/simple", dirs[1].Value)
}

func TestParseContinuation(t *testing.T) {
	m, err := Parse(strings.NewReader("strax>=1.5.0, \\\n    <2.0\nnumpy==1.23.5\n"))
	require.NoError(t, err)
	reqs := m.Requirements()
	require.Len(t, reqs, 2)
	assert.Len(t, reqs[0].Specifiers, 2)
	assert.Equal(t, 1, reqs[0].Line)
	assert.Equal(t, 3, reqs[1].Line)
}

func TestParseBOM(t *testing.T) {
	m, err := Parse(strings.NewReader("\ufeffnumpy==1.23.5\n"))
	require.NoError(t, err)
	reqs := m.Requirements()
	require.Len(t, reqs, 1)
	assert.Equal(t, "numpy", reqs[0].Name)
}

func TestParsePreservesLayout(t *testing.T) {
	in := "# header\n\nnumpy==1.23.5  # pinned\n"
	m, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, m.Entries, 3)
	assert.Equal(t, EntryComment, m.Entries[0].Kind)
	assert.Equal(t, "header", m.Entries[0].Text)
	assert.Equal(t, EntryBlank, m.Entries[1].Kind)
	assert.Equal(t, EntryRequirement, m.Entries[2].Kind)
	assert.Equal(t, in, m.Format())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		line int
	}{
		{"bad specifier", "numpy==\n", 1},
		{"bad name", "==1.0\n", 1},
		{"unknown option", "numpy==1.0\n--frobnicate on\n", 2},
		{"bad marker", "numpy==1.0 ; python_version <\n", 1},
		{"bad extras", "requests[==2.0\n", 1},
		{"missing url", "utilix @\n", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.in))
			require.Error(t, err)
			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.line, pe.Line)
		})
	}
}

func TestParseMarkerWithSemicolonInString(t *testing.T) {
	m, err := Parse(strings.NewReader(`pkg==1.0 ; sys_platform != "a;b"` + "\n"))
	require.NoError(t, err)
	reqs := m.Requirements()
	require.Len(t, reqs, 1)
	require.NotNil(t, reqs[0].Marker)
}

func TestCanonicalName(t *testing.T) {
	assert.Equal(t, "typing-extensions", CanonicalName("Typing_Extensions"))
	assert.Equal(t, "zope-interface", CanonicalName("zope.interface"))
	assert.Equal(t, "a-b", CanonicalName("a---b"))
	assert.Equal(t, "numpy", CanonicalName("  numpy "))
}

func TestRequirementString(t *testing.T) {
	m, err := Parse(strings.NewReader(`requests[socks, security] == 2.28.2 ; python_version >= "3.7"  # http client` + "\n"))
	require.NoError(t, err)
	reqs := m.Requirements()
	require.Len(t, reqs, 1)
	assert.Equal(t,
		`requests[security,socks]==2.28.2 ; python_version >= "3.7"  # http client`,
		reqs[0].String())
}

func TestFormatRoundTrip(t *testing.T) {
	m, err := ParseFile("testdata/requirements.txt")
	require.NoError(t, err)
	again, err := Parse(strings.NewReader(m.Format()))
	require.NoError(t, err)
	assert.Equal(t, m.Format(), again.Format())
	assert.Len(t, again.Requirements(), len(m.Requirements()))
}
