package munge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMunge_SingleCharacters(t *testing.T) {
	tests := map[string]string{
		":":  "_COLON_",
		"+":  "_PLUS_",
		">":  "_GT_",
		"<":  "_LT_",
		"=":  "_EQ_",
		"~":  "_TILDE_",
		"!":  "_BANG_",
		"@":  "_CIRCA_",
		"#":  "_SHARP_",
		"'":  "_SINGLEQUOTE_",
		`"`:  "_DOUBLEQUOTE_",
		"%":  "_PERCENT_",
		"^":  "_CARET_",
		"&":  "_AMPERSAND_",
		"*":  "_STAR_",
		"|":  "_BAR_",
		"{":  "_LBRACE_",
		"}":  "_RBRACE_",
		"[":  "_LBRACK_",
		"]":  "_RBRACK_",
		"/":  "_SLASH_",
		`\`:  "_BSLASH_",
		"?":  "_QMARK_",
		"-":  "_",
		".":  "_",
	}

	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, Munge(in))
		})
	}
	assert.Len(t, substitutions, len(tests))
}

func TestMunge_PassThrough(t *testing.T) {
	for _, s := range []string{"", "abc", "handler_2", "ÄÖü", "with space", "tab\tand\nnewline", "$dollar", "(paren)", ",;`"} {
		assert.Equal(t, s, Munge(s), "input %q", s)
	}
}

func TestMunge_Symbols(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"my-fn/core!", "my_fn_SLASH_core_BANG_"},
		{"example.core/work-magic", "example_core_SLASH_work_magic"},
		{"a.b/valid?", "a_b_SLASH_valid_QMARK_"},
		{"ns/->record", "ns_SLASH___GT_record"},
		{"ns/*dyn*", "ns_SLASH__STAR_dyn_STAR_"},
		{"::kw", "_COLON__COLON_kw"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Munge(tt.in))
		})
	}
}

func TestMunge_NeverShrinks(t *testing.T) {
	var all strings.Builder
	for r := range substitutions {
		all.WriteRune(r)
	}
	inputs := []string{"", "x", all.String(), "ns.core/fn-name!?", strings.Repeat("-.", 50)}
	for _, s := range inputs {
		assert.GreaterOrEqual(t, len(Munge(s)), len(s), "input %q", s)
	}
}

func TestLookup(t *testing.T) {
	s, ok := Lookup('/')
	require.True(t, ok)
	assert.Equal(t, "_SLASH_", s)

	_, ok = Lookup('a')
	assert.False(t, ok)
}

func TestHandler(t *testing.T) {
	assert.Equal(t, "index."+Munge("my-fn/core!"), Handler("my-fn/core!"))
	assert.Equal(t, "index.", Handler(""))
}

func TestMunge_InvalidUTF8PassesThrough(t *testing.T) {
	assert.Equal(t, "ab\xffc", Munge("ab\xffc"))
	assert.Equal(t, "x_\xc3", Munge("x-\xc3"))
	assert.Equal(t, "\xe2\x82_SLASH_", Munge("\xe2\x82/"))
}
