package parser

import (
	"github.com/funvibe/webidl/internal/idl"
	"github.com/funvibe/webidl/internal/token"
)

// argumentNameKeywords may be used as argument names.
var argumentNameKeywords = map[token.TokenType]bool{
	token.ATTRIBUTE:    true,
	token.CALLBACK:     true,
	token.CONST:        true,
	token.CREATOR:      true,
	token.DELETER:      true,
	token.DICTIONARY:   true,
	token.ENUM:         true,
	token.GETTER:       true,
	token.IMPLEMENTS:   true,
	token.INHERIT:      true,
	token.INTERFACE:    true,
	token.LEGACYCALLER: true,
	token.PARTIAL:      true,
	token.JSONIFIER:    true,
	token.SERIALIZER:   true,
	token.SETTER:       true,
	token.STATIC:       true,
	token.STRINGIFIER:  true,
	token.TYPEDEF:      true,
	token.UNRESTRICTED: true,
}

func (p *Parser) parseParenArgumentList() ([]*idl.Argument, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	args, err := p.parseArgumentList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return args, nil
}

// ArgumentList : Argument Arguments
//              |
// Arguments : COMMA Argument Arguments
//           |
func (p *Parser) parseArgumentList() ([]*idl.Argument, error) {
	if p.curTokenIs(token.RPAREN) {
		return nil, nil
	}
	var args []*idl.Argument
	for {
		arg, err := p.parseArgument()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.accept(token.COMMA) {
			return args, nil
		}
	}
}

// Argument : ExtendedAttributeList Optional Type Ellipsis ArgumentName Default
func (p *Parser) parseArgument() (*idl.Argument, error) {
	attrs, err := p.parseExtendedAttributeList()
	if err != nil {
		return nil, err
	}
	optTok := p.curToken
	optional := p.accept(token.OPTIONAL)
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	variadic := p.accept(token.ELLIPSIS)

	nameTok := p.curToken
	if nameTok.Type != token.IDENTIFIER && !argumentNameKeywords[nameTok.Type] {
		return nil, p.syntaxError()
	}
	p.nextToken()
	id, err := idl.NewUnresolvedIdentifier(p.loc(nameTok), nameTok.Lexeme)
	if err != nil {
		return nil, err
	}

	defTok := p.curToken
	def, err := p.parseDefaultValue()
	if err != nil {
		return nil, err
	}
	if !optional && def != nil {
		return nil, p.errorAt(defTok, "Mandatory arguments can't have a default value.")
	}
	if variadic {
		if optional {
			return nil, p.errorAt(optTok, "Variadic arguments should not be marked optional.")
		}
		optional = true
	}

	arg := idl.NewArgument(p.loc(nameTok), id, typ, idl.ArgumentOptions{
		Optional: optional,
		Variadic: variadic,
		Default:  def,
	})
	if err := arg.AddExtendedAttributes(attrs); err != nil {
		return nil, err
	}
	return arg, nil
}

// Default : EQUALS DefaultValue
//         |
// DefaultValue : ConstValue
//              | STRING
//              | LBRACKET RBRACKET
func (p *Parser) parseDefaultValue() (*idl.Value, error) {
	if !p.accept(token.EQUALS) {
		return nil, nil
	}
	tok := p.curToken
	switch tok.Type {
	case token.STRING:
		p.nextToken()
		return idl.NewStringValue(p.loc(tok), tok.Literal.(string)), nil
	case token.LBRACKET:
		p.nextToken()
		if _, err := p.expect(token.RBRACKET); err != nil {
			return nil, err
		}
		return idl.NewEmptySequenceValue(p.loc(tok)), nil
	}
	return p.parseConstValue()
}
