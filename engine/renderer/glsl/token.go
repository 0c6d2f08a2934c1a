// Package glsl scans GLSL shader source into a small tree of the top-level
// declarations the engine reflects on: vertex inputs, structs, uniforms and constants.
// Function bodies and expressions are skipped, not parsed.
package glsl

import "fmt"

// TokenKind represents the type of token.
type TokenKind uint8

const (
	TokenEOF TokenKind = iota

	TokenIdent
	TokenIntLiteral
	TokenFloatLiteral
	// TokenDirective holds a whole preprocessor line without the leading '#'.
	TokenDirective

	TokenLeftParen    // (
	TokenRightParen   // )
	TokenLeftBrace    // {
	TokenRightBrace   // }
	TokenLeftBracket  // [
	TokenRightBracket // ]
	TokenComma        // ,
	TokenSemicolon    // ;
	TokenEqual        // =
	TokenDot          // .

	// TokenOther is any operator or character the declaration grammar does not care about.
	TokenOther
)

var tokenNames = map[TokenKind]string{
	TokenEOF:          "end of input",
	TokenIdent:        "identifier",
	TokenIntLiteral:   "integer literal",
	TokenFloatLiteral: "float literal",
	TokenDirective:    "directive",
	TokenLeftParen:    "'('",
	TokenRightParen:   "')'",
	TokenLeftBrace:    "'{'",
	TokenRightBrace:   "'}'",
	TokenLeftBracket:  "'['",
	TokenRightBracket: "']'",
	TokenComma:        "','",
	TokenSemicolon:    "';'",
	TokenEqual:        "'='",
	TokenDot:          "'.'",
	TokenOther:        "operator",
}

func (k TokenKind) String() string {
	if s, ok := tokenNames[k]; ok {
		return s
	}
	return fmt.Sprintf("token(%d)", k)
}

// Token is a lexical unit. Offset is the byte offset of the lexeme in the source.
type Token struct {
	Kind   TokenKind
	Lexeme string
	Offset int
	Line   int
	Column int
}

func (t Token) Pos() Position {
	return Position{Line: t.Line, Column: t.Column}
}

// Position is a 1-based line/column pair.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Keywords the declaration parser gives meaning to. Everything else is an identifier.
const (
	KeywordIn        = "in"
	KeywordAttribute = "attribute"
	KeywordUniform   = "uniform"
	KeywordStruct    = "struct"
	KeywordConst     = "const"
	KeywordLayout    = "layout"
	KeywordPrecision = "precision"
)

var precisionQualifiers = map[string]bool{
	"lowp":    true,
	"mediump": true,
	"highp":   true,
}

var storageModifiers = map[string]bool{
	"flat":          true,
	"smooth":        true,
	"noperspective": true,
	"centroid":      true,
	"invariant":     true,
	"precise":       true,
}
