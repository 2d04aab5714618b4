package token

// Keywords is the reserved-word table the lexer consults to decide whether
// an identifier-shaped lexeme should be emitted as Keyword instead of
// Ident. The literal text is also what ends up in Token.Literal, so the
// parser can dispatch on it directly.
var Keywords = map[string]struct{}{
	"if":        {},
	"else":      {},
	"switch":    {},
	"case":      {},
	"default":   {},
	"while":     {},
	"do":        {},
	"for":       {},
	"try":       {},
	"catch":     {},
	"finally":   {},
	"fun":       {},
	"class":     {},
	"space":     {},
	"enum":      {},
	"import":    {},
	"as":        {},
	"return":    {},
	"break":     {},
	"continue":  {},
	"raise":     {},
	"assert":    {},
	"this":      {},
	"super":     {},
	"nil":       {},
	"true":      {},
	"false":     {},
	"not":       {},
	"and":       {},
	"or":        {},
	"xor":       {},
	"in":        {},
}

// Lookup reports whether ident is a reserved keyword and, if so, returns
// Keyword; otherwise it returns Ident.
func Lookup(ident string) Kind {
	if _, ok := Keywords[ident]; ok {
		return Keyword
	}
	return Ident
}
