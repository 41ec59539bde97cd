package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeWhitespace(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{" \t \n  ", ""},
		{"  foo   bar  ", "foo bar"},
		{"foo\t\tbar", "foo bar"},
		{"foo  \n  bar", "foo\nbar"},
		{"\nfoo\n", "foo"},
		{"a b", "a b"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeWhitespace(tt.in), "input %q", tt.in)
	}
}

func TestNormalizeWhitespace_Idempotent(t *testing.T) {
	inputs := []string{
		"  a  b \n\n c ",
		"\t\tx\r\ny  ",
		"one\n \ntwo",
		"  lead",
	}
	for _, in := range inputs {
		once := NormalizeWhitespace(in)
		assert.Equal(t, once, NormalizeWhitespace(once), "input %q", in)
	}
}

func TestDecodeText(t *testing.T) {
	assert.Equal(t, `a*b`, decodeText([]byte(`a\*b`), dropAllEscapes))
	assert.Equal(t, `a\*b`, decodeText([]byte(`a\*b`), keepInlineEscape))
	assert.Equal(t, `a.b`, decodeText([]byte(`a\.b`), keepInlineEscape))
	assert.Equal(t, `\z`, decodeText([]byte(`\z`), dropAllEscapes))
	assert.Equal(t, `trailing\`, decodeText([]byte(`trailing\`), dropAllEscapes))
	assert.Equal(t, "© ö ģ", decodeText([]byte("&copy; &#246; &#x123;"), dropAllEscapes))
}

func TestMatchEntity(t *testing.T) {
	tests := []struct {
		in   string
		want string
		n    int
	}{
		{"&amp;rest", "&", 5},
		{"&#35;", "#", 5},
		{"&#X22;", `"`, 6},
		{"&#0;", "\uFFFD", 4},
		{"&notit;", "", 0},
		{"&bogus;", "", 0},
		{"&amp", "", 0},
		{"&#;", "", 0},
		{"&#12345678;", "", 0},
		{"&x y;", "", 0},
	}
	for _, tt := range tests {
		got, n := matchEntity([]byte(tt.in))
		assert.Equal(t, tt.want, got, "input %q", tt.in)
		assert.Equal(t, tt.n, n, "input %q", tt.in)
	}
}

func TestDecodeTitle(t *testing.T) {
	assert.Equal(t, "", decodeTitle([]byte("  \n ")))
	assert.Equal(t, "\nline\n", decodeTitle([]byte("\nline\n")))
	assert.Equal(t, `say "hi"`, decodeTitle([]byte(`say \"hi\"`)))
}

func TestDecodeLabel(t *testing.T) {
	assert.Equal(t, "Foo Bar", decodeLabel([]byte("Foo\n  Bar")))
	assert.Equal(t, "a]b", decodeLabel([]byte(`a\]b`)))
}
