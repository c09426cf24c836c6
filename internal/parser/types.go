package parser

import (
	"github.com/funvibe/webidl/internal/idl"
	"github.com/funvibe/webidl/internal/token"
)

type typeModifier int

const (
	modNullable typeModifier = iota
	modArray
)

// Type : SingleType
//      | UnionType TypeSuffix
//
// SingleType : NonAnyType
//            | ANY TypeSuffixStartingWithArray
func (p *Parser) parseType() (idl.Type, error) {
	switch p.curToken.Type {
	case token.LPAREN:
		u, err := p.parseUnionType()
		if err != nil {
			return nil, err
		}
		return p.parseTypeSuffix(u, false)
	case token.ANY:
		p.nextToken()
		return p.parseTypeSuffix(idl.Builtin(idl.Any), true)
	}
	return p.parseNonAnyType()
}

// UnionType : LPAREN UnionMemberType OR UnionMemberType UnionMemberTypes RPAREN
func (p *Parser) parseUnionType() (idl.Type, error) {
	start, err := p.expect(token.LPAREN)
	if err != nil {
		return nil, err
	}
	var members []idl.Type
	for {
		m, err := p.parseUnionMemberType()
		if err != nil {
			return nil, err
		}
		members = append(members, m)
		if !p.accept(token.OR) {
			break
		}
	}
	if len(members) < 2 {
		return nil, p.syntaxError()
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return idl.NewUnionType(p.loc(start), members), nil
}

// UnionMemberType : NonAnyType
//                 | UnionType TypeSuffix
//                 | ANY LBRACKET RBRACKET TypeSuffix
func (p *Parser) parseUnionMemberType() (idl.Type, error) {
	switch p.curToken.Type {
	case token.LPAREN:
		u, err := p.parseUnionType()
		if err != nil {
			return nil, err
		}
		return p.parseTypeSuffix(u, false)
	case token.ANY:
		start := p.curToken
		p.nextToken()
		if _, err := p.expect(token.LBRACKET); err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RBRACKET); err != nil {
			return nil, err
		}
		arr, err := idl.NewArrayType(p.loc(start), idl.Builtin(idl.Any))
		if err != nil {
			return nil, err
		}
		return p.parseTypeSuffix(arr, false)
	}
	return p.parseNonAnyType()
}

// NonAnyType : PrimitiveOrStringType TypeSuffix
//            | OBJECT TypeSuffix
//            | DATE TypeSuffix
//            | IDENTIFIER TypeSuffix
//            | SEQUENCE LT Type GT Null
//            | MOZMAP LT Type GT Null
//            | PROMISE LT ReturnType GT
func (p *Parser) parseNonAnyType() (idl.Type, error) {
	start := p.curToken
	switch start.Type {
	case token.OBJECT:
		p.nextToken()
		return p.parseTypeSuffix(idl.Builtin(idl.ObjectKind), false)
	case token.DATE:
		p.nextToken()
		return p.parseTypeSuffix(idl.Builtin(idl.Date), false)
	case token.IDENTIFIER:
		t, err := p.namedType(start)
		if err != nil {
			return nil, err
		}
		p.nextToken()
		return p.parseTypeSuffix(t, false)
	case token.SEQUENCE, token.MOZMAP:
		p.nextToken()
		inner, err := p.parseAngleType(p.parseType)
		if err != nil {
			return nil, err
		}
		var t idl.Type
		if start.Type == token.SEQUENCE {
			t = idl.NewSequenceType(p.loc(start), inner)
		} else {
			t = idl.NewMozMapType(p.loc(start), inner)
		}
		if p.curTokenIs(token.QUESTION) {
			p.nextToken()
			t = idl.NewNullableType(p.loc(start), t)
		}
		return t, nil
	case token.PROMISE:
		p.nextToken()
		if !p.curTokenIs(token.LT) {
			return nil, p.errorAt(start, "Promise used without saying what it's parametrized over")
		}
		inner, err := p.parseAngleType(p.parseReturnType)
		if err != nil {
			return nil, err
		}
		return idl.NewPromiseType(p.loc(start), inner), nil
	}
	prim, err := p.parsePrimitiveOrStringType()
	if err != nil {
		return nil, err
	}
	return p.parseTypeSuffix(prim, false)
}

func (p *Parser) parseAngleType(inner func() (idl.Type, error)) (idl.Type, error) {
	if _, err := p.expect(token.LT); err != nil {
		return nil, err
	}
	t, err := inner()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.GT); err != nil {
		return nil, err
	}
	return t, nil
}

// namedType refers to a definition by name. Names already bound to a
// definition other than a typedef are wrapped directly; everything else is
// looked up again when the type is completed.
func (p *Parser) namedType(tok token.Token) (idl.Type, error) {
	loc := p.loc(tok)
	if obj, ok := p.globalScope.Lookup(tok.Lexeme); ok {
		if def, ok := obj.(idl.Definition); ok {
			if _, isTypedef := def.(*idl.Typedef); !isTypedef {
				return idl.NewWrapperType(loc, def), nil
			}
		}
	}
	id, err := idl.NewUnresolvedIdentifier(loc, tok.Lexeme)
	if err != nil {
		return nil, err
	}
	return idl.NewUnresolvedType(loc, id), nil
}

// PrimitiveOrStringType : UnsignedIntegerType
//                       | UnrestrictedFloatType
//                       | DOMSTRING | BYTESTRING | BOOLEAN | BYTE | OCTET
func (p *Parser) parsePrimitiveOrStringType() (idl.Type, error) {
	tok := p.curToken
	switch tok.Type {
	case token.DOMSTRING:
		p.nextToken()
		return idl.Builtin(idl.DOMString), nil
	case token.BYTESTRING:
		p.nextToken()
		return idl.Builtin(idl.ByteString), nil
	case token.BOOLEAN:
		p.nextToken()
		return idl.Builtin(idl.Boolean), nil
	case token.BYTE:
		p.nextToken()
		return idl.Builtin(idl.Byte), nil
	case token.OCTET:
		p.nextToken()
		return idl.Builtin(idl.Octet), nil
	case token.UNRESTRICTED:
		p.nextToken()
		switch p.curToken.Type {
		case token.FLOAT_KW:
			p.nextToken()
			return idl.Builtin(idl.UnrestrictedFloat), nil
		case token.DOUBLE:
			p.nextToken()
			return idl.Builtin(idl.UnrestrictedDouble), nil
		}
		return nil, p.syntaxError()
	case token.FLOAT_KW:
		p.nextToken()
		return idl.Builtin(idl.Float), nil
	case token.DOUBLE:
		p.nextToken()
		return idl.Builtin(idl.Double), nil
	}
	unsigned := p.accept(token.UNSIGNED)
	var kind idl.BuiltinKind
	switch p.curToken.Type {
	case token.SHORT:
		kind = idl.Short
	case token.LONG:
		kind = idl.Long
		if p.peekTokenIs(token.LONG) {
			p.nextToken()
			kind = idl.LongLong
		}
	default:
		return nil, p.syntaxError()
	}
	p.nextToken()
	if unsigned {
		kind = unsignedKind[kind]
	}
	return idl.Builtin(kind), nil
}

var unsignedKind = map[idl.BuiltinKind]idl.BuiltinKind{
	idl.Short:    idl.UnsignedShort,
	idl.Long:     idl.UnsignedLong,
	idl.LongLong: idl.UnsignedLongLong,
}

// TypeSuffix : LBRACKET RBRACKET TypeSuffix
//            | QUESTION TypeSuffixStartingWithArray
//            |
//
// TypeSuffixStartingWithArray : LBRACKET RBRACKET TypeSuffix
//                             |
func (p *Parser) parseTypeSuffix(t idl.Type, startingWithArray bool) (idl.Type, error) {
	var mods []typeModifier
	allowNullable := !startingWithArray
	for {
		switch {
		case p.curTokenIs(token.LBRACKET):
			p.nextToken()
			if _, err := p.expect(token.RBRACKET); err != nil {
				return nil, err
			}
			mods = append(mods, modArray)
			allowNullable = true
			continue
		case allowNullable && p.curTokenIs(token.QUESTION):
			p.nextToken()
			mods = append(mods, modNullable)
			allowNullable = false
			continue
		}
		break
	}
	return handleModifiers(t, mods)
}

func handleModifiers(t idl.Type, mods []typeModifier) (idl.Type, error) {
	for _, m := range mods {
		switch m {
		case modNullable:
			t = idl.NewNullableType(t.Location(), t)
		case modArray:
			arr, err := idl.NewArrayType(t.Location(), t)
			if err != nil {
				return nil, err
			}
			t = arr
		}
	}
	return t, nil
}

// ReturnType : Type
//            | VOID
func (p *Parser) parseReturnType() (idl.Type, error) {
	if p.accept(token.VOID) {
		return idl.Builtin(idl.Void), nil
	}
	return p.parseType()
}
