package irtext

import "github.com/alecthomas/participle/v2/lexer"

// Lexer tokenizes the textual IR format printed by ir.Print: function and
// block headers, `$N` value references, `'N` block references, integer
// literals, and the fixed set of instruction/opcode keywords, which are
// lexed as plain identifiers and matched by literal text in the grammar —
// the same approach the teacher's grammar.KansoLexer takes for its own
// keywords.
var Lexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `//[^\n]*`, nil},
		{"Value", `\$[0-9]+`, nil},
		{"Block", `'[0-9]+`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		{"Int", `-?[0-9]+`, nil},
		{"Punct", `[{}:,=]`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
