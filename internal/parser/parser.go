package parser

import (
	"fmt"

	"github.com/golang/glog"

	"github.com/funvibe/webidl/internal/config"
	"github.com/funvibe/webidl/internal/diagnostics"
	"github.com/funvibe/webidl/internal/idl"
	"github.com/funvibe/webidl/internal/lexer"
	"github.com/funvibe/webidl/internal/token"
)

// Parser accumulates definitions from any number of Parse calls and turns
// them into a resolved model in Finish. One Parser owns one global scope;
// it is not safe for concurrent use.
type Parser struct {
	globalScope *idl.Scope
	productions []idl.Definition

	src    *diagnostics.Source
	tokens []token.Token
	pos    int

	curToken  token.Token
	peekToken token.Token
}

// New returns a parser whose global scope already holds the builtin
// typedefs.
func New() (*Parser, error) {
	p := &Parser{globalScope: idl.NewGlobalScope()}
	if err := p.installBuiltins(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parser) installBuiltins() error {
	for _, kind := range idl.TypedArrayKinds() {
		builtin := idl.Builtin(kind)
		if _, err := idl.NewTypedef(diagnostics.BuiltinLocation(config.BuiltinTypeLocation), p.globalScope, builtin, builtin.Name()); err != nil {
			return err
		}
	}
	// Builtin definitions are bound in the scope but never returned.
	saved := p.productions
	err := p.Parse(config.BuiltinIDL, diagnostics.BuiltinFile)
	p.productions = saved
	return err
}

// GlobalScope exposes the root scope, mostly for tests.
func (p *Parser) GlobalScope() *idl.Scope { return p.globalScope }

// Parse tokenizes and parses one source text.
func (p *Parser) Parse(text, filename string) error {
	p.src = diagnostics.NewSource(filename, text)
	toks, err := lexer.New(p.src).Tokenize()
	if err != nil {
		return err
	}
	p.tokens = toks
	p.pos = 0
	p.curToken = toks[0]
	p.peekToken = p.tokenAt(1)

	defs, err := p.parseDefinitions()
	if err != nil {
		return err
	}
	glog.V(2).Infof("parsed %d definitions from %s", len(defs), p.src.File)
	p.productions = append(p.productions, defs...)
	return nil
}

// Finish resolves and validates everything parsed so far and returns the
// definitions a generator consumes, in source order and without
// duplicates. Implements statements finish first because they decide
// which interfaces are consequential.
func (p *Parser) Finish() ([]idl.Definition, error) {
	var implements, others []idl.Definition
	for _, d := range p.productions {
		if _, ok := d.(*idl.ImplementsStatement); ok {
			implements = append(implements, d)
		} else {
			others = append(others, d)
		}
	}
	for _, d := range append(implements, others...) {
		if err := d.Finish(p.globalScope); err != nil {
			return nil, err
		}
	}
	glog.V(1).Infof("finished %d productions", len(p.productions))

	for _, d := range p.productions {
		if err := d.Validate(); err != nil {
			return nil, err
		}
	}
	glog.V(1).Infof("validated %d productions", len(p.productions))

	seen := make(map[idl.Definition]bool, len(p.productions))
	var result []idl.Definition
	for _, d := range p.productions {
		if seen[d] {
			continue
		}
		seen[d] = true
		switch d.(type) {
		case *idl.Typedef, *idl.ImplementsStatement:
			continue
		}
		result = append(result, d)
	}
	return result, nil
}

func (p *Parser) tokenAt(i int) token.Token {
	if i < len(p.tokens) {
		return p.tokens[i]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *Parser) nextToken() {
	p.pos++
	p.curToken = p.tokenAt(p.pos)
	p.peekToken = p.tokenAt(p.pos + 1)
}

func (p *Parser) curTokenIs(tt token.TokenType) bool  { return p.curToken.Type == tt }
func (p *Parser) peekTokenIs(tt token.TokenType) bool { return p.peekToken.Type == tt }

// accept consumes the current token when it has type tt.
func (p *Parser) accept(tt token.TokenType) bool {
	if p.curTokenIs(tt) {
		p.nextToken()
		return true
	}
	return false
}

// expect consumes and returns the current token, which must have type tt.
func (p *Parser) expect(tt token.TokenType) (token.Token, error) {
	tok := p.curToken
	if tok.Type != tt {
		return tok, p.syntaxError()
	}
	p.nextToken()
	return tok, nil
}

func (p *Parser) loc(tok token.Token) diagnostics.Location {
	return diagnostics.At(p.src, tok.Offset)
}

func (p *Parser) curLoc() diagnostics.Location { return p.loc(p.curToken) }

// syntaxError reports the current token as unexpected.
func (p *Parser) syntaxError() error {
	if p.curTokenIs(token.EOF) {
		return &diagnostics.Error{
			Message:   "Syntax Error at end of file. Possibly due to missing semicolon(;), braces(}) or both",
			Locations: []string{p.src.File},
		}
	}
	return diagnostics.NewError("invalid syntax", p.curLoc())
}

func (p *Parser) errorAt(tok token.Token, format string, args ...interface{}) error {
	return diagnostics.NewError(fmt.Sprintf(format, args...), p.loc(tok))
}

// identifier reads an IDENTIFIER token into an unresolved identifier.
func (p *Parser) identifier(opts ...idl.IdentifierOption) (*idl.Identifier, token.Token, error) {
	tok, err := p.expect(token.IDENTIFIER)
	if err != nil {
		return nil, tok, err
	}
	id, err := idl.NewUnresolvedIdentifier(p.loc(tok), tok.Lexeme, opts...)
	return id, tok, err
}
