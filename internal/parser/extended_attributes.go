package parser

import (
	"github.com/funvibe/webidl/internal/idl"
	"github.com/funvibe/webidl/internal/token"
)

// ExtendedAttributeList : LBRACKET ExtendedAttribute ExtendedAttributes RBRACKET
//                       |
func (p *Parser) parseExtendedAttributeList() ([]*idl.ExtendedAttribute, error) {
	if !p.accept(token.LBRACKET) {
		return nil, nil
	}
	var attrs []*idl.ExtendedAttribute
	for {
		attr, err := p.parseExtendedAttribute()
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, attr)
		if !p.accept(token.COMMA) {
			break
		}
	}
	if _, err := p.expect(token.RBRACKET); err != nil {
		return nil, err
	}
	return attrs, nil
}

// ExtendedAttribute : IDENTIFIER
//                   | IDENTIFIER LPAREN ArgumentList RPAREN
//                   | IDENTIFIER EQUALS IDENTIFIER
//                   | IDENTIFIER EQUALS STRING
//                   | IDENTIFIER EQUALS LPAREN IdentifierList RPAREN
//                   | IDENTIFIER EQUALS IDENTIFIER LPAREN ArgumentList RPAREN
func (p *Parser) parseExtendedAttribute() (*idl.ExtendedAttribute, error) {
	nameTok, err := p.expect(token.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	attr := idl.NewExtendedAttribute(p.loc(nameTok), nameTok.Lexeme)

	if p.curTokenIs(token.LPAREN) {
		args, err := p.parseParenArgumentList()
		if err != nil {
			return nil, err
		}
		return attr.WithArgs(args), nil
	}
	if !p.accept(token.EQUALS) {
		return attr, nil
	}

	switch p.curToken.Type {
	case token.STRING:
		attr.WithValue(p.curToken.Literal.(string))
		p.nextToken()
		return attr, nil
	case token.LPAREN:
		p.nextToken()
		list, err := p.parseIdentifierList()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return attr.WithList(list), nil
	}
	value, err := p.expect(token.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	attr.WithValue(value.Lexeme)
	if p.curTokenIs(token.LPAREN) {
		args, err := p.parseParenArgumentList()
		if err != nil {
			return nil, err
		}
		attr.WithArgs(args)
	}
	return attr, nil
}

// IdentifierList : IDENTIFIER Identifiers
// Identifiers : COMMA IDENTIFIER Identifiers
//             |
func (p *Parser) parseIdentifierList() ([]string, error) {
	var list []string
	for {
		tok, err := p.expect(token.IDENTIFIER)
		if err != nil {
			return nil, err
		}
		list = append(list, tok.Lexeme)
		if !p.accept(token.COMMA) {
			return list, nil
		}
	}
}
