package checks

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reqcheck/requirements"
)

func parseManifest(t *testing.T, src string) *requirements.Manifest {
	t.Helper()
	m, err := requirements.Parse(strings.NewReader(src))
	require.NoError(t, err)
	return m
}

func issuesFor(t *testing.T, check string, src string) []Issue {
	t.Helper()
	m := parseManifest(t, src)
	for _, c := range All() {
		if c.Name() == check {
			return c.Run(m)
		}
	}
	t.Fatalf("check %q not registered", check)
	return nil
}

func TestRegistry(t *testing.T) {
	names := make([]string, 0)
	for _, c := range All() {
		names = append(names, c.Name())
		assert.NotEmpty(t, c.Description())
	}
	assert.Equal(t, []string{"duplicates", "markers", "pinning", "specifiers"}, names)
}

func TestDuplicates(t *testing.T) {
	t.Run("plain duplicate", func(t *testing.T) {
		issues := issuesFor(t, "duplicates", "numpy==1.23.5\nscipy==1.10.1\nnumpy==1.24.0\n")
		require.Len(t, issues, 1)
		assert.Equal(t, SeverityError, issues[0].Severity)
		assert.Equal(t, 3, issues[0].Line)
		assert.Contains(t, issues[0].Message, "line 1")
	})

	t.Run("normalized names collide", func(t *testing.T) {
		issues := issuesFor(t, "duplicates", "typing_extensions==4.5.0\nTyping-Extensions==4.6.0\n")
		require.Len(t, issues, 1)
	})

	t.Run("exclusive markers allowed", func(t *testing.T) {
		issues := issuesFor(t, "duplicates",
			`dataclasses==0.8 ; python_version < "3.7"`+"\n"+
				`dataclasses==0.6 ; python_version >= "3.7"`+"\n")
		assert.Empty(t, issues)
	})

	t.Run("overlapping markers flagged", func(t *testing.T) {
		issues := issuesFor(t, "duplicates",
			`dataclasses==0.8 ; python_version < "3.8"`+"\n"+
				`dataclasses==0.6 ; python_version < "3.7"`+"\n")
		require.Len(t, issues, 1)
	})

	t.Run("platform split allowed", func(t *testing.T) {
		issues := issuesFor(t, "duplicates",
			`pywin32==306 ; sys_platform == "win32"`+"\n"+
				`pyobjc==9.2 ; sys_platform == "darwin"`+"\n"+
				`uvloop==0.17.0 ; sys_platform != "win32" and sys_platform != "darwin"`+"\n"+
				`uvloop==0.16.0 ; sys_platform == "win32"`+"\n")
		assert.Empty(t, issues)
	})

	t.Run("one conditional one not", func(t *testing.T) {
		issues := issuesFor(t, "duplicates",
			"numpy==1.23.5\n"+`numpy==1.24.0 ; python_version >= "3.9"`+"\n")
		require.Len(t, issues, 1)
	})

	t.Run("identical markers flagged", func(t *testing.T) {
		issues := issuesFor(t, "duplicates",
			`tensorflow==2.8.0 ; platform_machine == "aarch64"`+"\n"+
				`tensorflow==2.12.0 ; platform_machine == "aarch64"`+"\n")
		require.Len(t, issues, 1)
		assert.Equal(t, SeverityError, issues[0].Severity)
	})

	t.Run("same extra flagged", func(t *testing.T) {
		issues := issuesFor(t, "duplicates",
			`sphinx==6.1.3 ; extra == "docs"`+"\n"+
				`sphinx==7.0.0 ; extra == "docs"`+"\n")
		require.Len(t, issues, 1)
	})

	t.Run("machine split allowed", func(t *testing.T) {
		issues := issuesFor(t, "duplicates",
			`tensorflow==2.12.0 ; platform_machine == "x86_64"`+"\n"+
				`tensorflow-aarch64==2.12.0 ; platform_machine == "aarch64"`+"\n"+
				`onnxruntime==1.14.0 ; platform_machine == "x86_64"`+"\n"+
				`onnxruntime==1.13.1 ; platform_machine == "aarch64"`+"\n")
		assert.Empty(t, issues)
	})

	t.Run("extra overlaps version marker", func(t *testing.T) {
		issues := issuesFor(t, "duplicates",
			`sphinx==6.1.3 ; extra == "docs"`+"\n"+
				`sphinx==7.0.0 ; python_version >= "3.9"`+"\n")
		require.Len(t, issues, 1)
	})

	t.Run("distinct extras allowed", func(t *testing.T) {
		issues := issuesFor(t, "duplicates",
			`pydantic==1.10.7 ; extra == "legacy"`+"\n"+
				`pydantic==2.0.0 ; extra == "modern"`+"\n")
		assert.Empty(t, issues)
	})
}

func TestPinning(t *testing.T) {
	issues := issuesFor(t, "pinning", "numpy\nscipy>=1.10\npandas==1.5.3\nstrax>=1.5.0,<2.0\nnumba==0.56.*\n")
	require.Len(t, issues, 2)
	assert.Equal(t, 1, issues[0].Line)
	assert.Contains(t, issues[0].Message, "no version constraint")
	assert.Equal(t, 2, issues[1].Line)
	assert.Contains(t, issues[1].Message, "no upper bound")
	for _, i := range issues {
		assert.Equal(t, SeverityWarning, i.Severity)
	}
}

func TestMarkers(t *testing.T) {
	t.Run("unknown variable", func(t *testing.T) {
		issues := issuesFor(t, "markers", `numpy==1.23.5 ; python_verison == "3.6"`+"\n")
		require.Len(t, issues, 1)
		assert.Equal(t, SeverityError, issues[0].Severity)
		assert.Contains(t, issues[0].Message, "python_verison")
	})

	t.Run("non-version literal", func(t *testing.T) {
		issues := issuesFor(t, "markers", `numpy==1.23.5 ; python_version >= "recent"`+"\n")
		require.Len(t, issues, 1)
		assert.Equal(t, SeverityWarning, issues[0].Severity)
	})

	t.Run("clean marker", func(t *testing.T) {
		issues := issuesFor(t, "markers", `numpy==1.23.5 ; python_version >= "3.8" and sys_platform != "win32"`+"\n")
		assert.Empty(t, issues)
	})
}

func TestSpecifiers(t *testing.T) {
	t.Run("contradictory pins", func(t *testing.T) {
		issues := issuesFor(t, "specifiers", "numpy==1.23.5,==1.24.0\n")
		require.Len(t, issues, 1)
		assert.Equal(t, SeverityError, issues[0].Severity)
	})

	t.Run("empty range", func(t *testing.T) {
		issues := issuesFor(t, "specifiers", "numpy<1.0,>2.0\n")
		require.Len(t, issues, 1)
	})

	t.Run("narrow range ok", func(t *testing.T) {
		issues := issuesFor(t, "specifiers", "numpy>1.0,<1.1\n")
		assert.Empty(t, issues)
	})

	t.Run("normal range ok", func(t *testing.T) {
		issues := issuesFor(t, "specifiers", "strax>=1.5.0,<2.0\nnumpy==1.23.5\n")
		assert.Empty(t, issues)
	})
}

func TestRun(t *testing.T) {
	m := parseManifest(t, "numpy==1.23.5\nnumpy==1.24.0\nscipy\n")
	m.Path = "reqs.txt"

	issues := Run(m, nil)
	require.Len(t, issues, 2)
	assert.Equal(t, "duplicates", issues[0].Check)
	assert.Equal(t, "reqs.txt", issues[0].File)
	assert.Equal(t, "pinning", issues[1].Check)
	assert.True(t, HasErrors(issues))
	assert.True(t, issues[0].Line <= issues[1].Line)
}

func TestRunWithConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "lint.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(
		"checks:\n  pinning:\n    disabled: true\n  duplicates:\n    severity: warning\n"), 0o644))

	cfg, err := LoadConfig(cfgPath)
	require.NoError(t, err)

	m := parseManifest(t, "numpy==1.23.5\nnumpy==1.24.0\nscipy\n")
	issues := Run(m, cfg)
	require.Len(t, issues, 1)
	assert.Equal(t, "duplicates", issues[0].Check)
	assert.Equal(t, SeverityWarning, issues[0].Severity)
	assert.False(t, HasErrors(issues))
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "missing.yml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yml")
	require.NoError(t, os.WriteFile(bad, []byte("checks:\n  pinning:\n    severity: fatal\n"), 0o644))
	_, err = LoadConfig(bad)
	assert.Error(t, err)
}

func TestIssueString(t *testing.T) {
	i := Issue{File: "reqs.txt", Line: 3, Severity: SeverityError, Check: "duplicates", Message: "boom"}
	assert.Equal(t, "reqs.txt:3: error: boom (duplicates)", i.String())
}
