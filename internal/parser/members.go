package parser

import (
	"math/big"

	"github.com/funvibe/webidl/internal/config"
	"github.com/funvibe/webidl/internal/diagnostics"
	"github.com/funvibe/webidl/internal/idl"
	"github.com/funvibe/webidl/internal/token"
)

// InterfaceMember : Const
//                 | AttributeOrOperation
func (p *Parser) parseInterfaceMember() (idl.Member, error) {
	switch p.curToken.Type {
	case token.CONST:
		return p.parseConst()
	case token.STRINGIFIER:
		start := p.curToken
		p.nextToken()
		switch p.curToken.Type {
		case token.SEMICOLON:
			p.nextToken()
			return p.autoMethod(start, "__stringifier", idl.Builtin(idl.DOMString), idl.MethodFlags{Stringifier: true})
		case token.ATTRIBUTE, token.READONLY:
			return p.parseAttribute(idl.AttributeFlags{Stringifier: true})
		}
		return p.parseOperationRest(start, []token.Token{start})
	case token.JSONIFIER:
		start := p.curToken
		p.nextToken()
		if _, err := p.expect(token.SEMICOLON); err != nil {
			return nil, err
		}
		return p.autoMethod(start, "__jsonifier", idl.Builtin(idl.ObjectKind), idl.MethodFlags{Jsonifier: true})
	case token.STATIC:
		start := p.curToken
		p.nextToken()
		if p.curTokenIs(token.ATTRIBUTE) || p.curTokenIs(token.READONLY) {
			return p.parseAttribute(idl.AttributeFlags{Static: true})
		}
		return p.parseOperationRest(start, []token.Token{start})
	case token.INHERIT, token.READONLY, token.ATTRIBUTE:
		return p.parseAttribute(idl.AttributeFlags{})
	}
	return p.parseOperation()
}

func (p *Parser) autoMethod(tok token.Token, name string, ret idl.Type, flags idl.MethodFlags) (idl.Member, error) {
	id, err := idl.NewUnresolvedIdentifier(diagnostics.BuiltinLocation(config.AutoGeneratedIdentifier), name, idl.AllowDoubleUnderscore)
	if err != nil {
		return nil, err
	}
	return idl.NewMethod(p.loc(tok), id, ret, nil, flags)
}

// Const : CONST ConstType IDENTIFIER EQUALS ConstValue SEMICOLON
//
// ConstType : PrimitiveOrStringType Null
//           | IDENTIFIER Null
func (p *Parser) parseConst() (idl.Member, error) {
	start, _ := p.expect(token.CONST)
	var typ idl.Type
	if p.curTokenIs(token.IDENTIFIER) {
		var err error
		if typ, err = p.namedType(p.curToken); err != nil {
			return nil, err
		}
		p.nextToken()
	} else {
		var err error
		if typ, err = p.parsePrimitiveOrStringType(); err != nil {
			return nil, err
		}
	}
	if p.curTokenIs(token.QUESTION) {
		typ = idl.NewNullableType(p.curLoc(), typ)
		p.nextToken()
	}
	id, _, err := p.identifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.EQUALS); err != nil {
		return nil, err
	}
	value, err := p.parseConstValue()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return idl.NewConst(p.loc(start), id, typ, value)
}

// ConstValue : TRUE | FALSE | INTEGER | FLOAT | NULL
func (p *Parser) parseConstValue() (*idl.Value, error) {
	tok := p.curToken
	loc := p.loc(tok)
	switch tok.Type {
	case token.TRUE, token.FALSE:
		p.nextToken()
		return idl.NewBooleanValue(loc, tok.Type == token.TRUE), nil
	case token.INTEGER:
		p.nextToken()
		return idl.NewIntegerValue(loc, tok.Literal.(*big.Int))
	case token.FLOAT:
		p.nextToken()
		return idl.NewFloatValue(loc, tok.Literal.(float64)), nil
	case token.NULL:
		p.nextToken()
		return idl.NewNullValue(loc), nil
	}
	return nil, p.syntaxError()
}

// Attribute : Inherit ReadOnly ATTRIBUTE Type IDENTIFIER SEMICOLON
//
// Static and stringifier qualifiers have already been consumed into flags.
func (p *Parser) parseAttribute(flags idl.AttributeFlags) (idl.Member, error) {
	start := p.curToken
	if p.accept(token.INHERIT) {
		flags.Inherit = true
	}
	if p.accept(token.READONLY) {
		flags.Readonly = true
	}
	if _, err := p.expect(token.ATTRIBUTE); err != nil {
		return nil, err
	}
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	id, _, err := p.identifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return idl.NewAttribute(p.loc(start), id, typ, flags)
}

// Operation : Qualifiers OperationRest
//
// Qualifiers : Specials
// Specials : Special Specials
//          |
// Special : GETTER | SETTER | CREATOR | DELETER | LEGACYCALLER
func (p *Parser) parseOperation() (idl.Member, error) {
	start := p.curToken
	var qualifiers []token.Token
	for isSpecial(p.curToken.Type) {
		qualifiers = append(qualifiers, p.curToken)
		p.nextToken()
	}
	return p.parseOperationRest(start, qualifiers)
}

func isSpecial(tt token.TokenType) bool {
	switch tt {
	case token.GETTER, token.SETTER, token.CREATOR, token.DELETER, token.LEGACYCALLER:
		return true
	}
	return false
}

// OperationRest : ReturnType OptionalIdentifier LPAREN ArgumentList RPAREN SEMICOLON
func (p *Parser) parseOperationRest(start token.Token, qualifiers []token.Token) (idl.Member, error) {
	seen := make(map[token.TokenType]bool, len(qualifiers))
	for _, q := range qualifiers {
		if seen[q.Type] {
			return nil, p.errorAt(start, "Duplicate qualifiers are not allowed")
		}
		seen[q.Type] = true
	}
	flags := idl.MethodFlags{
		Static:       seen[token.STATIC],
		Stringifier:  seen[token.STRINGIFIER],
		Getter:       seen[token.GETTER],
		Setter:       seen[token.SETTER],
		Creator:      seen[token.CREATOR],
		Deleter:      seen[token.DELETER],
		LegacyCaller: seen[token.LEGACYCALLER],
	}
	if (flags.Getter || flags.Deleter) && (flags.Setter || flags.Creator) {
		return nil, p.errorAt(start, "getter and deleter are incompatible with setter and creator")
	}

	sigTok := p.curToken
	ret, err := p.parseReturnType()
	if err != nil {
		return nil, err
	}
	var id *idl.Identifier
	if p.curTokenIs(token.IDENTIFIER) {
		if id, _, err = p.identifier(); err != nil {
			return nil, err
		}
	}
	args, err := p.parseParenArgumentList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}

	if err := p.checkSpecialSignature(sigTok, &flags, ret, args); err != nil {
		return nil, err
	}

	if id == nil {
		if !flags.Getter && !flags.Setter && !flags.Creator && !flags.Deleter && !flags.LegacyCaller && !flags.Stringifier {
			return nil, p.errorAt(sigTok, "Identifier required for non-special methods")
		}
		id, err = idl.NewUnresolvedIdentifier(diagnostics.BuiltinLocation(config.AutoGeneratedIdentifier),
			autoGeneratedName(flags), idl.AllowDoubleUnderscore)
		if err != nil {
			return nil, err
		}
	}
	return idl.NewMethod(p.loc(sigTok), id, ret, args, flags)
}

func (p *Parser) checkSpecialSignature(sigTok token.Token, flags *idl.MethodFlags, ret idl.Type, args []*idl.Argument) error {
	keyed := func(kind string, want int) error {
		if len(args) != want {
			return p.errorAt(sigTok, "%s has wrong number of arguments", kind)
		}
		switch {
		case idl.TypesEqual(args[0].Type(), idl.Builtin(idl.DOMString)):
			flags.Special = idl.Named
		case idl.TypesEqual(args[0].Type(), idl.Builtin(idl.UnsignedLong)):
			flags.Special = idl.Indexed
		default:
			return diagnostics.NewError(kind+" has wrong argument type (must be DOMString or UnsignedLong)", args[0].Location())
		}
		for _, arg := range args {
			if arg.Optional() || arg.Variadic() {
				how := "optional"
				if !arg.Optional() {
					how = "variadic"
				}
				return diagnostics.NewError(kind+" cannot have "+how+" argument", arg.Location())
			}
		}
		return nil
	}

	if flags.Getter || flags.Deleter {
		kind := "deleter"
		if flags.Getter {
			kind = "getter"
		}
		if err := keyed(kind, 1); err != nil {
			return err
		}
		if flags.Getter && ret.IsVoid() {
			return p.errorAt(sigTok, "getter cannot have void return type")
		}
	}
	if flags.Setter || flags.Creator {
		kind := "creator"
		if flags.Setter {
			kind = "setter"
		}
		if err := keyed(kind, 2); err != nil {
			return err
		}
	}
	if flags.Stringifier {
		if len(args) != 0 {
			return p.errorAt(sigTok, "stringifier has wrong number of arguments")
		}
		if !ret.IsDOMString() {
			return p.errorAt(sigTok, "stringifier must have DOMString return type")
		}
	}
	return nil
}

// autoGeneratedName names an identifier-less special operation, e.g.
// __namedgetter or __indexedsetterdeleter.
func autoGeneratedName(f idl.MethodFlags) string {
	name := "__"
	switch f.Special {
	case idl.Named:
		name += "named"
	case idl.Indexed:
		name += "indexed"
	}
	for _, part := range []struct {
		on   bool
		text string
	}{
		{f.Getter, "getter"},
		{f.Setter, "setter"},
		{f.Deleter, "deleter"},
		{f.Creator, "creator"},
		{f.LegacyCaller, "legacycaller"},
		{f.Stringifier, "stringifier"},
	} {
		if part.on {
			name += part.text
		}
	}
	return name
}
