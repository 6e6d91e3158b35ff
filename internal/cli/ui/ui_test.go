package ui

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/conduit-lang/gosass/internal/compiler/ast"
	"github.com/conduit-lang/gosass/internal/compiler/errors"
)

func TestMessageFormat(t *testing.T) {
	got := Message{
		Level:       LevelError,
		Context:     "unknown function",
		Problem:     "lighter",
		Details:     []string{"not a built-in"},
		Suggestions: []string{"lighten"},
		Hints:       []string{"List functions: gosass functions"},
		NoColor:     true,
	}.Format()

	want := "✗ UNKNOWN FUNCTION: lighter\n" +
		"   not a built-in\n" +
		"   Did you mean: lighten?\n" +
		"   → List functions: gosass functions\n"
	assert.Equal(t, want, got)
}

func TestMessageLevels(t *testing.T) {
	assert.Equal(t, "! careful\n", Warning("careful", true))
	assert.Equal(t, "i note\n", Info("note", true))
	assert.Equal(t, "✓ done", FormatSuccess("done", true))

	var buf bytes.Buffer
	WriteSuccess(&buf, "wrote a.css", true)
	assert.Equal(t, "✓ wrote a.css\n", buf.String())
}

func TestConfigError(t *testing.T) {
	got := ConfigError("bad style", true)
	assert.Contains(t, got, "CONFIGURATION ERROR: bad style")
	assert.Contains(t, got, "gosass init")
}

func TestCompileError(t *testing.T) {
	plain := CompileError("a.scss", fmt.Errorf("disk on fire"), true)
	assert.Contains(t, plain, "COMPILE FAILED: a.scss")
	assert.Contains(t, plain, "disk on fire")

	ce := errors.New(errors.EvaluationError, errors.ErrUserError, "stop", ast.SourceLocation{Path: "a.scss", Line: 2})
	got := CompileError("a.scss", fmt.Errorf("wrapped: %w", ce), true)
	assert.Contains(t, got, "stop")
	assert.Contains(t, got, "a.scss:3:1")
}

func TestSuggest(t *testing.T) {
	candidates := []string{"lighten", "darken", "length", "nth"}
	assert.Equal(t, []string{"lighten"}, Suggest("lighter", candidates, 0))
	assert.Equal(t, []string{"darken"}, Suggest("DARKN", candidates, 0))
	assert.Empty(t, Suggest("completely-different", candidates, 0))
	assert.Len(t, Suggest("n", candidates, 1), 1)
}

func TestDistance(t *testing.T) {
	assert.Equal(t, 3, Distance("kitten", "sitting"))
	assert.Equal(t, 3, Distance("saturday", "sunday"))
	assert.Equal(t, 0, Distance("", ""))
	assert.Equal(t, 4, Distance("", "abcd"))
	assert.Equal(t, 1, Distance("café", "cafe"))
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, true, "NAME", "SIGNATURE")
	table.AddRow("rgb", "rgb($red, $green, $blue)")
	table.AddRow("if", "if($condition, $if-true, $if-false)")
	table.Render()

	want := "NAME  SIGNATURE\n" +
		strings.Repeat("─", 4) + "  " + strings.Repeat("─", 35) + "\n" +
		"rgb   rgb($red, $green, $blue)\n" +
		"if    if($condition, $if-true, $if-false)\n"
	assert.Equal(t, want, buf.String())
}

func TestKeyValues(t *testing.T) {
	var buf bytes.Buffer
	kv := NewKeyValues(&buf, true)
	kv.Add("files", "3")
	kv.Add("cache hits", "2")
	kv.Render()
	assert.Equal(t, "files:      3\ncache hits: 2\n", buf.String())
}

func TestProgressBar(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgressBar(&buf, 2, "compiling", true)
	bar.Add(1)
	assert.Contains(t, buf.String(), "1/2 compiling")
	bar.Add(5)
	assert.Contains(t, buf.String(), "2/2 compiling")
	bar.Finish()
	assert.Equal(t, byte('\n'), buf.Bytes()[buf.Len()-1])
}
