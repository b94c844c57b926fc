package mirtext

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Lexer tokenizes the textual MIR syntax.
var Lexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"String", `"(\\.|[^"\\])*"`, nil},

		// Block labels and locals before identifiers (order matters)
		{"Block", `bb[0-9]+\b`, nil},
		{"Local", `_[0-9]+\b`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},

		{"Float", `[0-9]+\.[0-9]+_f(32|64)\b`, nil},
		{"Int", `[0-9]+`, nil},

		{"Arrow", `->`, nil},
		{"Punctuation", `[-(){}\[\],:=&*!.#]`, nil},

		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})

var options = []participle.Option{
	participle.Lexer(Lexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(6),
}

var (
	typeParser       = participle.MustBuild[TypeExpr](options...)
	placeParser      = participle.MustBuild[PlaceExpr](options...)
	statementParser  = participle.MustBuild[StatementExpr](options...)
	terminatorParser = participle.MustBuild[TerminatorExpr](options...)
	repackParser     = participle.MustBuild[RepackExpr](options...)
)
