// Package mangle provides the identifier-normalization scheme shared by
// constant-propagation's monomorphization name mangling (C8, spec.md
// §4.7: "callee::[arg0, arg1,…]") and codegen's register-name sanitizer
// (SPEC_FULL.md §11), so a mangled specialization name and an
// SSA-renamed local collapse through the same valid-AVM-identifier
// rules instead of each pass inventing its own escaping.
package mangle

import "github.com/iancoleman/strcase"

// Sanitize rewrites name into a valid AVM identifier: strcase folds it
// to snake_case first, then any byte outside [a-z0-9_] still present —
// the "::[", ", ", "]" punctuation a mangled specialization name embeds,
// or the "$" an SSA rename introduces — is replaced with "_".
func Sanitize(name string) string {
	s := strcase.ToSnake(name)
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '_':
			out = append(out, c)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
