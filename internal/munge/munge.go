// Package munge rewrites ClojureScript symbols into identifiers that are legal
// JavaScript handler names, using the same character table as the cljs compiler.
package munge

import (
	"strings"
	"unicode/utf8"
)

// HandlerModule is the module every compiled function is exported from.
const HandlerModule = "index"

var substitutions = map[rune]string{
	':':  "_COLON_",
	'+':  "_PLUS_",
	'>':  "_GT_",
	'<':  "_LT_",
	'=':  "_EQ_",
	'~':  "_TILDE_",
	'!':  "_BANG_",
	'@':  "_CIRCA_",
	'#':  "_SHARP_",
	'\'': "_SINGLEQUOTE_",
	'"':  "_DOUBLEQUOTE_",
	'%':  "_PERCENT_",
	'^':  "_CARET_",
	'&':  "_AMPERSAND_",
	'*':  "_STAR_",
	'|':  "_BAR_",
	'{':  "_LBRACE_",
	'}':  "_RBRACE_",
	'[':  "_LBRACK_",
	']':  "_RBRACK_",
	'/':  "_SLASH_",
	'\\': "_BSLASH_",
	'?':  "_QMARK_",
	'-':  "_",
	'.':  "_",
}

// Lookup returns the replacement for r, if r is munged at all.
func Lookup(r rune) (string, bool) {
	s, ok := substitutions[r]
	return s, ok
}

// Munge replaces each rune found in the substitution table and passes every
// other rune through unchanged. Bytes that are not valid UTF-8 are copied
// as-is. It never fails; an empty identifier yields "".
func Munge(identifier string) string {
	var b strings.Builder
	b.Grow(len(identifier))
	for i := 0; i < len(identifier); {
		r, size := utf8.DecodeRuneInString(identifier[i:])
		if s, ok := substitutions[r]; ok {
			b.WriteString(s)
		} else {
			b.WriteString(identifier[i : i+size])
		}
		i += size
	}
	return b.String()
}

// Handler returns the runtime handler for a cljs symbol, e.g.
// "my-ns.core/handler!" becomes "index.my_ns_core_SLASH_handler_BANG_".
func Handler(symbol string) string {
	return HandlerModule + "." + Munge(symbol)
}
