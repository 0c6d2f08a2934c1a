package glsl

import "strings"

// Lexer tokenizes GLSL source code. Comments are dropped, so anything written
// inside them never reaches the parser.
type Lexer struct {
	source string
	pos    int
	line   int
	column int
	start  int
	// position of the token being scanned
	startLine   int
	startColumn int
	tokens      []Token
}

// NewLexer creates a new lexer for the given source.
func NewLexer(source string) *Lexer {
	estTokens := len(source) / 5
	if estTokens < 16 {
		estTokens = 16
	}
	return &Lexer{
		source: source,
		line:   1,
		column: 1,
		tokens: make([]Token, 0, estTokens),
	}
}

// Tokenize returns all tokens from the source, terminated by a TokenEOF.
func (l *Lexer) Tokenize() ([]Token, error) {
	for !l.isAtEnd() {
		l.start = l.pos
		l.startLine = l.line
		l.startColumn = l.column
		if err := l.scanToken(); err != nil {
			return nil, err
		}
	}

	l.tokens = append(l.tokens, Token{
		Kind:   TokenEOF,
		Offset: len(l.source),
		Line:   l.line,
		Column: l.column,
	})
	return l.tokens, nil
}

func (l *Lexer) scanToken() error {
	c := l.advance()

	switch c {
	case '(':
		l.addToken(TokenLeftParen)
	case ')':
		l.addToken(TokenRightParen)
	case '{':
		l.addToken(TokenLeftBrace)
	case '}':
		l.addToken(TokenRightBrace)
	case '[':
		l.addToken(TokenLeftBracket)
	case ']':
		l.addToken(TokenRightBracket)
	case ',':
		l.addToken(TokenComma)
	case ';':
		l.addToken(TokenSemicolon)
	case '=':
		if l.match('=') {
			l.addToken(TokenOther)
		} else {
			l.addToken(TokenEqual)
		}
	case '.':
		if isDigit(l.peek()) {
			l.number()
		} else {
			l.addToken(TokenDot)
		}
	case '/':
		if l.match('/') {
			for l.peek() != '\n' && !l.isAtEnd() {
				l.advance()
			}
		} else if l.match('*') {
			return l.blockComment()
		} else {
			l.addToken(TokenOther)
		}
	case '#':
		l.directive()

	case ' ', '\r', '\t', '\f', '\v', '\n':
		// whitespace

	default:
		switch {
		case isDigit(c):
			l.number()
		case isAlpha(c) || c == '_':
			l.identifier()
		default:
			l.addToken(TokenOther)
		}
	}
	return nil
}

func (l *Lexer) blockComment() error {
	for !l.isAtEnd() {
		if l.peek() == '*' && l.peekNext() == '/' {
			l.advance()
			l.advance()
			return nil
		}
		l.advance()
	}
	return errorf(Position{Line: l.startLine, Column: l.startColumn}, "unterminated block comment")
}

// directive consumes a preprocessor line, honouring backslash continuations.
func (l *Lexer) directive() {
	for !l.isAtEnd() {
		if l.peek() == '\\' && l.peekNext() == '\n' {
			l.advance()
			l.advance()
			continue
		}
		if l.peek() == '\n' {
			break
		}
		// A trailing line comment is not part of the directive.
		if l.peek() == '/' && l.peekNext() == '/' {
			break
		}
		l.advance()
	}
	text := strings.ReplaceAll(l.source[l.start+1:l.pos], "\\\n", " ")
	l.tokens = append(l.tokens, Token{
		Kind:   TokenDirective,
		Lexeme: strings.TrimSpace(text),
		Offset: l.start,
		Line:   l.startLine,
		Column: l.startColumn,
	})
}

func (l *Lexer) number() {
	kind := TokenIntLiteral
	if l.source[l.start] == '0' && (l.peek() == 'x' || l.peek() == 'X') {
		l.advance()
		for isHexDigit(l.peek()) {
			l.advance()
		}
	} else {
		if l.source[l.start] == '.' {
			kind = TokenFloatLiteral
		}
		for isDigit(l.peek()) {
			l.advance()
		}
		if kind == TokenIntLiteral && l.peek() == '.' {
			kind = TokenFloatLiteral
			l.advance()
			for isDigit(l.peek()) {
				l.advance()
			}
		}
		if l.peek() == 'e' || l.peek() == 'E' {
			next := l.peekNext()
			if isDigit(next) || next == '+' || next == '-' {
				kind = TokenFloatLiteral
				l.advance()
				l.advance()
				for isDigit(l.peek()) {
					l.advance()
				}
			}
		}
	}

	switch l.peek() {
	case 'u', 'U':
		if kind == TokenIntLiteral {
			l.advance()
		}
	case 'f', 'F':
		kind = TokenFloatLiteral
		l.advance()
	}
	l.addToken(kind)
}

func (l *Lexer) identifier() {
	for c := l.peek(); isAlpha(c) || isDigit(c) || c == '_'; c = l.peek() {
		l.advance()
	}
	l.addToken(TokenIdent)
}

func (l *Lexer) addToken(kind TokenKind) {
	l.tokens = append(l.tokens, Token{
		Kind:   kind,
		Lexeme: l.source[l.start:l.pos],
		Offset: l.start,
		Line:   l.startLine,
		Column: l.startColumn,
	})
}

func (l *Lexer) advance() byte {
	c := l.source[l.pos]
	l.pos++
	if c == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return c
}

func (l *Lexer) match(expected byte) bool {
	if l.isAtEnd() || l.source[l.pos] != expected {
		return false
	}
	l.advance()
	return true
}

func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.pos]
}

func (l *Lexer) peekNext() byte {
	if l.pos+1 >= len(l.source) {
		return 0
	}
	return l.source[l.pos+1]
}

func (l *Lexer) isAtEnd() bool {
	return l.pos >= len(l.source)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
