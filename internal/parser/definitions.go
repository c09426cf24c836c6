package parser

import (
	"github.com/funvibe/webidl/internal/diagnostics"
	"github.com/funvibe/webidl/internal/idl"
	"github.com/funvibe/webidl/internal/token"
)

// Definitions : ExtendedAttributeList Definition Definitions
//             |
func (p *Parser) parseDefinitions() ([]idl.Definition, error) {
	var defs []idl.Definition
	for !p.curTokenIs(token.EOF) {
		attrs, err := p.parseExtendedAttributeList()
		if err != nil {
			return nil, err
		}
		def, err := p.parseDefinition()
		if err != nil {
			return nil, err
		}
		if err := def.AddExtendedAttributes(attrs); err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// Definition : CallbackOrInterface
//            | PartialInterface
//            | Dictionary
//            | Enum
//            | Typedef
//            | ImplementsStatement
func (p *Parser) parseDefinition() (idl.Definition, error) {
	switch p.curToken.Type {
	case token.CALLBACK:
		return p.parseCallbackOrInterface()
	case token.INTERFACE:
		return p.parseInterface()
	case token.PARTIAL:
		return p.parsePartialInterface()
	case token.DICTIONARY:
		return p.parseDictionary()
	case token.ENUM:
		return p.parseEnum()
	case token.TYPEDEF:
		return p.parseTypedef()
	case token.IDENTIFIER:
		return p.parseImplementsStatement()
	}
	return nil, p.syntaxError()
}

// CallbackOrInterface : CALLBACK CallbackRest
//                     | CALLBACK Interface
//
// CallbackRest : IDENTIFIER EQUALS ReturnType LPAREN ArgumentList RPAREN SEMICOLON
func (p *Parser) parseCallbackOrInterface() (idl.Definition, error) {
	start, _ := p.expect(token.CALLBACK)
	if p.curTokenIs(token.INTERFACE) {
		def, err := p.parseInterface()
		if err != nil {
			return nil, err
		}
		iface, ok := def.(*idl.Interface)
		if !ok {
			return nil, p.errorAt(start, "Callback interface %s must have a body", def.(*idl.ExternalInterface).Identifier().Name)
		}
		iface.SetCallback(true)
		return iface, nil
	}

	id, _, err := p.identifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.EQUALS); err != nil {
		return nil, err
	}
	ret, err := p.parseReturnType()
	if err != nil {
		return nil, err
	}
	args, err := p.parseParenArgumentList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return idl.NewCallback(p.loc(start), p.globalScope, id, ret, args)
}

// Interface : INTERFACE IDENTIFIER Inheritance LBRACE InterfaceMembers RBRACE SEMICOLON
//           | INTERFACE IDENTIFIER SEMICOLON
func (p *Parser) parseInterface() (idl.Definition, error) {
	start, _ := p.expect(token.INTERFACE)
	location := p.loc(start)
	id, _, err := p.identifier()
	if err != nil {
		return nil, err
	}
	if p.accept(token.SEMICOLON) {
		return idl.NewExternalInterface(location, p.globalScope, id)
	}

	parent, err := p.parseInheritance()
	if err != nil {
		return nil, err
	}
	members, err := p.parseInterfaceBody()
	if err != nil {
		return nil, err
	}

	if existing, ok := p.globalScope.Lookup(id.Name); ok {
		iface, ok := existing.(*idl.Interface)
		if !ok {
			return nil, diagnostics.NewError("Interface has the same name as non-interface object", location, existing.Location())
		}
		if err := iface.SetNonPartial(location, parent, members); err != nil {
			return nil, err
		}
		return iface, nil
	}
	return idl.NewInterface(location, p.globalScope, id, parent, members, true)
}

// PartialInterface : PARTIAL INTERFACE IDENTIFIER LBRACE InterfaceMembers RBRACE SEMICOLON
func (p *Parser) parsePartialInterface() (idl.Definition, error) {
	start, _ := p.expect(token.PARTIAL)
	location := p.loc(start)
	if _, err := p.expect(token.INTERFACE); err != nil {
		return nil, err
	}
	id, _, err := p.identifier()
	if err != nil {
		return nil, err
	}
	members, err := p.parseInterfaceBody()
	if err != nil {
		return nil, err
	}

	if existing, ok := p.globalScope.Lookup(id.Name); ok {
		iface, ok := existing.(*idl.Interface)
		if !ok {
			return nil, diagnostics.NewError("Partial interface has the same name as non-interface object", location, existing.Location())
		}
		iface.AddPartialMembers(members)
		return iface, nil
	}
	return idl.NewInterface(location, p.globalScope, id, nil, members, false)
}

// Inheritance : COLON ScopedName
//             |
func (p *Parser) parseInheritance() (*idl.Placeholder, error) {
	if !p.accept(token.COLON) {
		return nil, nil
	}
	id, tok, err := p.identifier()
	if err != nil {
		return nil, err
	}
	return idl.NewPlaceholder(p.loc(tok), id), nil
}

// InterfaceMembers : ExtendedAttributeList InterfaceMember InterfaceMembers
//                  |
func (p *Parser) parseInterfaceBody() ([]idl.Member, error) {
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	var members []idl.Member
	for !p.curTokenIs(token.RBRACE) {
		attrs, err := p.parseExtendedAttributeList()
		if err != nil {
			return nil, err
		}
		member, err := p.parseInterfaceMember()
		if err != nil {
			return nil, err
		}
		if err := member.AddExtendedAttributes(attrs); err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	p.nextToken()
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return members, nil
}

// Dictionary : DICTIONARY IDENTIFIER Inheritance LBRACE DictionaryMembers RBRACE SEMICOLON
//
// DictionaryMember : ExtendedAttributeList Type IDENTIFIER DefaultValue SEMICOLON
func (p *Parser) parseDictionary() (idl.Definition, error) {
	start, _ := p.expect(token.DICTIONARY)
	id, _, err := p.identifier()
	if err != nil {
		return nil, err
	}
	parent, err := p.parseInheritance()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	var members []*idl.Argument
	for !p.curTokenIs(token.RBRACE) {
		attrs, err := p.parseExtendedAttributeList()
		if err != nil {
			return nil, err
		}
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		name, tok, err := p.identifier()
		if err != nil {
			return nil, err
		}
		def, err := p.parseDefaultValue()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.SEMICOLON); err != nil {
			return nil, err
		}
		member := idl.NewArgument(p.loc(tok), name, typ, idl.ArgumentOptions{
			Optional:         true,
			DictionaryMember: true,
			Default:          def,
		})
		if err := member.AddExtendedAttributes(attrs); err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	p.nextToken()
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return idl.NewDictionary(p.loc(start), p.globalScope, id, parent, members)
}

// Enum : ENUM IDENTIFIER LBRACE EnumValueList RBRACE SEMICOLON
//
// EnumValueList : STRING EnumValueListComma
// EnumValueListComma : COMMA EnumValueListString
//                    |
// EnumValueListString : STRING EnumValueListComma
//                     |
func (p *Parser) parseEnum() (idl.Definition, error) {
	start, _ := p.expect(token.ENUM)
	id, _, err := p.identifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	first, err := p.expect(token.STRING)
	if err != nil {
		return nil, err
	}
	values := []string{first.Literal.(string)}
	for p.accept(token.COMMA) {
		if !p.curTokenIs(token.STRING) {
			break
		}
		values = append(values, p.curToken.Literal.(string))
		p.nextToken()
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return idl.NewEnum(p.loc(start), p.globalScope, id, values)
}

// Typedef : TYPEDEF Type IDENTIFIER SEMICOLON
func (p *Parser) parseTypedef() (idl.Definition, error) {
	start, _ := p.expect(token.TYPEDEF)
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return idl.NewTypedef(p.loc(start), p.globalScope, typ, name.Lexeme)
}

// ImplementsStatement : ScopedName IMPLEMENTS ScopedName SEMICOLON
func (p *Parser) parseImplementsStatement() (idl.Definition, error) {
	left, leftTok, err := p.identifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.IMPLEMENTS); err != nil {
		return nil, err
	}
	right, rightTok, err := p.identifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return idl.NewImplementsStatement(p.loc(leftTok),
		idl.NewPlaceholder(p.loc(leftTok), left),
		idl.NewPlaceholder(p.loc(rightTok), right)), nil
}
