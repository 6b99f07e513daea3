package gamelog

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// LogLexer tokenizes one line of a Unity-style client log. The interesting
// lines are key/value assignments whose values are usually quoted paths:
//
//	Mono path[0] = 'D:/Games/Client/Client_Data/Managed'
//	Mono config path = 'D:/Games/Client/MonoBleedingEdge/etc'
//	GfxDevice renderer = Direct3D11
var LogLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Whitespace between tokens
	{Name: "Whitespace", Pattern: `[ \t]+`},

	// Single-quoted values (paths may contain spaces)
	{Name: "Quoted", Pattern: `'[^']*'`},

	// Index brackets, e.g. path[0]
	{Name: "LBracket", Pattern: `\[`},
	{Name: "RBracket", Pattern: `\]`},

	{Name: "Eq", Pattern: `=`},

	// Numbers (must come before Word)
	{Name: "Int", Pattern: `[0-9]+`},

	// Everything else that is not structure: key words, bare values,
	// Windows paths (colons and slashes stay inside one token)
	{Name: "Word", Pattern: `[^ \t=\[\]']+`},
})
