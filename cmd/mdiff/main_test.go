package main

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	abc := fixture(t, dir, "abc", "abc")
	abd := fixture(t, dir, "abd", "abd")
	abcdef := fixture(t, dir, "abcdef", "abcdef")
	one := fixture(t, dir, "one", "\x01")
	upperA := fixture(t, dir, "A", "A")
	missing := filepath.Join(dir, "missing")

	tests := []struct {
		name       string
		args       []string
		code       int
		stdout     string
		stderrHas  []string
		stderrNone bool
	}{
		{
			name:       "identical files",
			args:       []string{abc, abc},
			code:       exitOK,
			stdout:     "",
			stderrNone: true,
		},
		{
			name:   "one differing byte",
			args:   []string{abc, abd},
			code:   exitOK,
			stdout: "diff at 0x2: 0x63 (c) != 0x64 (d)\n",
		},
		{
			name:   "unprintable left",
			args:   []string{one, upperA},
			code:   exitOK,
			stdout: "diff at 0x0:             0x41 (A)\n",
		},
		{
			name:   "extra arguments are ignored",
			args:   []string{abc, abd, missing, "more"},
			code:   exitOK,
			stdout: "diff at 0x2: 0x63 (c) != 0x64 (d)\n",
		},
		{
			name:   "trailing unknown flag is ignored",
			args:   []string{abc, abd, "-x"},
			code:   exitOK,
			stdout: "diff at 0x2: 0x63 (c) != 0x64 (d)\n",
		},
		{
			name:   "trailing compat flag is ignored",
			args:   []string{abc, abd, "--compat"},
			code:   exitOK,
			stdout: "diff at 0x2: 0x63 (c) != 0x64 (d)\n",
		},
		{
			name:       "trailing verbose flag is ignored",
			args:       []string{abc, abd, "-v"},
			code:       exitOK,
			stdout:     "diff at 0x2: 0x63 (c) != 0x64 (d)\n",
			stderrNone: true,
		},
		{
			name:   "trailing data in second file",
			args:   []string{abc, abcdef},
			code:   exitOK,
			stdout: "extra data in " + abcdef + " at 0x3\n",
		},
		{
			name:   "compat stops with the first file",
			args:   []string{"--compat", abc, abcdef},
			code:   exitOK,
			stdout: "",
		},
		{
			name:   "compat doubles offsets",
			args:   []string{"--compat", abc, abd},
			code:   exitOK,
			stdout: "diff at 0x4: 0x63 (c) != 0x64 (d)\n",
		},
		{
			name:      "no arguments",
			args:      nil,
			code:      exitUsage,
			stderrHas: []string{"usage"},
		},
		{
			name:      "one argument",
			args:      []string{abc},
			code:      exitUsage,
			stderrHas: []string{"usage"},
		},
		{
			name:      "unknown flag",
			args:      []string{"--bogus", abc, abd},
			code:      exitUsage,
			stderrHas: []string{"bogus", "usage"},
		},
		{
			name:      "first file missing",
			args:      []string{missing, abc},
			code:      exitOpen,
			stderrHas: []string{"cannot open " + missing},
		},
		{
			name:      "second file missing",
			args:      []string{abc, missing},
			code:      exitOpen,
			stderrHas: []string{"cannot open " + missing},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(tt.args, &stdout, &stderr)

			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.stdout, stdout.String())
			for _, s := range tt.stderrHas {
				assert.Contains(t, stderr.String(), s)
			}
			if tt.stderrNone {
				assert.Empty(t, stderr.String())
			}
		})
	}
}

func TestRun_Help(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"--help"}, &stdout, &stderr)

	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout.String(), "mdiff [flags] file1 file2")
}

func TestRun_Verbose(t *testing.T) {
	dir := t.TempDir()
	abc := fixture(t, dir, "abc", "abc")
	abd := fixture(t, dir, "abd", "abd")

	var stdout, stderr bytes.Buffer
	code := run([]string{"-v", abc, abd}, &stdout, &stderr)

	require.Equal(t, exitOK, code)
	assert.Equal(t, "diff at 0x2: 0x63 (c) != 0x64 (d)\n", stdout.String())
	assert.Contains(t, stderr.String(), "comparison finished")
	assert.Contains(t, stderr.String(), "left_hash")
}

func TestRun_Decompress(t *testing.T) {
	dir := t.TempDir()
	plain := fixture(t, dir, "plain", "hello world")

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte("hello world"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	packed := fixture(t, dir, "packed.gz", buf.String())

	var stdout, stderr bytes.Buffer
	code := run([]string{"-z", plain, packed}, &stdout, &stderr)
	assert.Equal(t, exitOK, code)
	assert.Empty(t, stdout.String())

	stdout.Reset()
	code = run([]string{plain, packed}, &stdout, &stderr)
	assert.Equal(t, exitOK, code)
	assert.NotEmpty(t, stdout.String())
}
