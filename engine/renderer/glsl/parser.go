package glsl

import (
	"strconv"
	"strings"
)

// Parser builds a Module from a token stream.
type Parser struct {
	tokens []Token
	pos    int
	module *Module
	// location assigned by a preceding layout qualifier, -1 when none
	location int
}

// Parse tokenizes and parses one shader stage.
func Parse(source string) (*Module, error) {
	tokens, err := NewLexer(source).Tokenize()
	if err != nil {
		return nil, err
	}
	return NewParser(tokens).Parse()
}

func NewParser(tokens []Token) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != TokenEOF {
		tokens = append(tokens, Token{Kind: TokenEOF})
	}
	return &Parser{
		tokens:   tokens,
		module:   &Module{},
		location: -1,
	}
}

// Parse consumes every token and returns the collected declarations.
func (p *Parser) Parse() (*Module, error) {
	for !p.check(TokenEOF) {
		if err := p.declaration(); err != nil {
			return nil, err
		}
	}
	return p.module, nil
}

func (p *Parser) declaration() error {
	tok := p.peek()
	switch tok.Kind {
	case TokenDirective:
		p.advance()
		p.directive(tok)
		return nil
	case TokenSemicolon:
		p.advance()
		return nil
	case TokenIdent:
	default:
		return p.skipStatement()
	}

	switch tok.Lexeme {
	case KeywordPrecision:
		return p.skipStatement()
	case KeywordLayout:
		return p.layout()
	case KeywordStruct:
		p.advance()
		p.location = -1
		if _, err := p.structBody(); err != nil {
			return err
		}
		// Declarators following a struct body are plain globals.
		return p.skipStatement()
	case KeywordUniform:
		p.advance()
		return p.uniform()
	case KeywordIn, KeywordAttribute:
		p.advance()
		return p.input()
	case KeywordConst:
		p.advance()
		return p.constant()
	}
	if storageModifiers[tok.Lexeme] {
		p.advance()
		return nil
	}
	return p.skipStatement()
}

// layout parses "layout(id [= value], ...)" and remembers a location for the next input.
func (p *Parser) layout() error {
	p.advance()
	if _, err := p.expect(TokenLeftParen, "after layout"); err != nil {
		return err
	}
	for !p.check(TokenRightParen) {
		id, err := p.expect(TokenIdent, "layout qualifier")
		if err != nil {
			return err
		}
		if p.match(TokenEqual) {
			val := p.advance()
			if id.Lexeme == "location" {
				n, err := strconv.ParseInt(strings.TrimRight(val.Lexeme, "uU"), 0, 32)
				if err != nil || val.Kind != TokenIntLiteral {
					return errorf(val.Pos(), "layout location must be an integer literal, found '%s'", val.Lexeme)
				}
				p.location = int(n)
			}
		}
		if !p.match(TokenComma) {
			break
		}
	}
	_, err := p.expect(TokenRightParen, "to close layout")
	return err
}

func (p *Parser) input() error {
	location := p.location
	p.location = -1
	p.skipQualifiers()
	if p.match(TokenSemicolon) {
		return nil
	}

	typeTok, err := p.expect(TokenIdent, "input type")
	if err != nil {
		return err
	}
	typeArray, err := p.arraySuffix()
	if err != nil {
		return err
	}
	for {
		name, err := p.expect(TokenIdent, "input name")
		if err != nil {
			return err
		}
		arr, err := p.arraySuffix()
		if err != nil {
			return err
		}
		if arr == nil {
			arr = typeArray
		}
		p.module.Inputs = append(p.module.Inputs, InputDecl{
			Name:     name.Lexeme,
			Type:     typeTok.Lexeme,
			Location: location,
			Array:    arr,
			Pos:      typeTok.Pos(),
		})
		location = -1
		if !p.match(TokenComma) {
			break
		}
	}
	_, err = p.expect(TokenSemicolon, "after input declaration")
	return err
}

func (p *Parser) uniform() error {
	p.location = -1
	p.skipQualifiers()

	var typeName string
	var typePos Position
	if p.checkIdent(KeywordStruct) {
		p.advance()
		s, err := p.structBody()
		if err != nil {
			return err
		}
		typeName, typePos = s.Name, s.Pos
	} else {
		typeTok, err := p.expect(TokenIdent, "uniform type")
		if err != nil {
			return err
		}
		if p.check(TokenLeftBrace) {
			return errorf(typeTok.Pos(), "uniform block '%s' is not supported, declare plain uniforms instead", typeTok.Lexeme)
		}
		typeName, typePos = typeTok.Lexeme, typeTok.Pos()
	}

	typeArray, err := p.arraySuffix()
	if err != nil {
		return err
	}
	for {
		name, err := p.expect(TokenIdent, "uniform name")
		if err != nil {
			return err
		}
		arr, err := p.arraySuffix()
		if err != nil {
			return err
		}
		if arr == nil {
			arr = typeArray
		}
		p.module.Uniforms = append(p.module.Uniforms, UniformDecl{
			Name:  name.Lexeme,
			Type:  typeName,
			Array: arr,
			Pos:   typePos,
		})
		if p.check(TokenEqual) {
			p.skipInitializer()
		}
		if !p.match(TokenComma) {
			break
		}
	}
	_, err = p.expect(TokenSemicolon, "after uniform declaration")
	return err
}

// structBody parses "Name { members }" after the struct keyword and registers the struct.
func (p *Parser) structBody() (StructDecl, error) {
	nameTok, err := p.expect(TokenIdent, "struct name")
	if err != nil {
		return StructDecl{}, err
	}
	decl := StructDecl{Name: nameTok.Lexeme, Pos: nameTok.Pos()}
	if _, err := p.expect(TokenLeftBrace, "to open struct "+decl.Name); err != nil {
		return StructDecl{}, err
	}

	for !p.match(TokenRightBrace) {
		if p.check(TokenEOF) {
			return StructDecl{}, errorf(decl.Pos, "struct '%s' is not closed", decl.Name)
		}
		p.skipQualifiers()
		typeTok, err := p.expect(TokenIdent, "member type in struct "+decl.Name)
		if err != nil {
			return StructDecl{}, err
		}
		if typeTok.Lexeme == KeywordStruct {
			return StructDecl{}, errorf(typeTok.Pos(), "nested struct definitions are not supported in struct '%s'", decl.Name)
		}
		typeArray, err := p.arraySuffix()
		if err != nil {
			return StructDecl{}, err
		}
		for {
			name, err := p.expect(TokenIdent, "member name in struct "+decl.Name)
			if err != nil {
				return StructDecl{}, err
			}
			arr, err := p.arraySuffix()
			if err != nil {
				return StructDecl{}, err
			}
			if arr == nil {
				arr = typeArray
			}
			decl.Members = append(decl.Members, StructMember{
				Name:  name.Lexeme,
				Type:  typeTok.Lexeme,
				Array: arr,
				Pos:   name.Pos(),
			})
			if !p.match(TokenComma) {
				break
			}
		}
		if _, err := p.expect(TokenSemicolon, "after struct member"); err != nil {
			return StructDecl{}, err
		}
	}

	p.module.Structs = append(p.module.Structs, decl)
	return decl, nil
}

func (p *Parser) constant() error {
	p.location = -1
	p.skipQualifiers()
	typeTok, err := p.expect(TokenIdent, "constant type")
	if err != nil {
		return err
	}
	if _, err := p.arraySuffix(); err != nil {
		return err
	}
	for {
		name, err := p.expect(TokenIdent, "constant name")
		if err != nil {
			return err
		}
		if _, err := p.arraySuffix(); err != nil {
			return err
		}
		if _, err := p.expect(TokenEqual, "in constant "+name.Lexeme); err != nil {
			return err
		}
		value := p.skipInitializer()
		p.module.Constants = append(p.module.Constants, ConstDecl{
			Name:  name.Lexeme,
			Type:  typeTok.Lexeme,
			Value: value,
			Pos:   name.Pos(),
		})
		if !p.match(TokenComma) {
			break
		}
	}
	_, err = p.expect(TokenSemicolon, "after constant declaration")
	return err
}

// directive records object-like "#define NAME value" macros as constants.
func (p *Parser) directive(tok Token) {
	fields := strings.Fields(tok.Lexeme)
	if len(fields) < 3 || fields[0] != "define" || strings.Contains(fields[1], "(") {
		return
	}
	p.module.Constants = append(p.module.Constants, ConstDecl{
		Name:  fields[1],
		Value: strings.Join(fields[2:], " "),
		Pos:   tok.Pos(),
	})
}

// arraySuffix parses an optional "[expr]" and returns nil when there is none.
func (p *Parser) arraySuffix() (*ArraySize, error) {
	if !p.check(TokenLeftBracket) {
		return nil, nil
	}
	open := p.advance()
	var parts []string
	for !p.check(TokenRightBracket) {
		if p.check(TokenEOF) || p.check(TokenSemicolon) {
			return nil, errorf(open.Pos(), "unterminated array size")
		}
		parts = append(parts, p.advance().Lexeme)
	}
	p.advance()
	if len(parts) == 0 {
		return nil, errorf(open.Pos(), "unsized arrays are not supported")
	}
	return &ArraySize{Expr: strings.Join(parts, ""), Pos: open.Pos()}, nil
}

// skipInitializer consumes "= expr" (or just expr) up to a top-level ',' or ';' and
// returns the expression text.
func (p *Parser) skipInitializer() string {
	p.match(TokenEqual)
	depth := 0
	var parts []string
	for !p.check(TokenEOF) {
		tok := p.peek()
		switch tok.Kind {
		case TokenLeftParen, TokenLeftBracket, TokenLeftBrace:
			depth++
		case TokenRightParen, TokenRightBracket, TokenRightBrace:
			depth--
		case TokenComma, TokenSemicolon:
			if depth <= 0 {
				return strings.Join(parts, "")
			}
		}
		parts = append(parts, tok.Lexeme)
		p.advance()
	}
	return strings.Join(parts, "")
}

// skipStatement discards tokens up to the end of the current statement. A braced block
// at the top level (a function body) also ends the statement.
func (p *Parser) skipStatement() error {
	p.location = -1
	parens := 0
	for !p.check(TokenEOF) {
		tok := p.advance()
		switch tok.Kind {
		case TokenLeftParen:
			parens++
		case TokenRightParen:
			if parens > 0 {
				parens--
			}
		case TokenSemicolon:
			if parens == 0 {
				return nil
			}
		case TokenLeftBrace:
			if err := p.skipBlock(tok); err != nil {
				return err
			}
			if parens == 0 {
				p.match(TokenSemicolon)
				return nil
			}
		}
	}
	return nil
}

func (p *Parser) skipBlock(open Token) error {
	depth := 1
	for depth > 0 {
		if p.check(TokenEOF) {
			return errorf(open.Pos(), "unbalanced '{'")
		}
		switch p.advance().Kind {
		case TokenLeftBrace:
			depth++
		case TokenRightBrace:
			depth--
		}
	}
	return nil
}

func (p *Parser) skipQualifiers() {
	for p.check(TokenIdent) {
		lex := p.peek().Lexeme
		if !precisionQualifiers[lex] && !storageModifiers[lex] {
			return
		}
		p.advance()
	}
}

func (p *Parser) expect(kind TokenKind, context string) (Token, error) {
	tok := p.peek()
	if tok.Kind != kind {
		found := tok.Lexeme
		if found == "" {
			found = tok.Kind.String()
		}
		return tok, errorf(tok.Pos(), "expected %s for %s, found '%s'", kind, context, found)
	}
	p.advance()
	return tok, nil
}

func (p *Parser) peek() Token {
	return p.tokens[p.pos]
}

func (p *Parser) advance() Token {
	tok := p.tokens[p.pos]
	if tok.Kind != TokenEOF {
		p.pos++
	}
	return tok
}

func (p *Parser) check(kind TokenKind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) checkIdent(lexeme string) bool {
	tok := p.peek()
	return tok.Kind == TokenIdent && tok.Lexeme == lexeme
}

func (p *Parser) match(kind TokenKind) bool {
	if p.check(kind) {
		p.advance()
		return true
	}
	return false
}
