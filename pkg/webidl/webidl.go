// Package webidl parses WebIDL sources into a resolved, validated model.
//
// A Parser accepts any number of sources and resolves them together:
//
//	p, err := webidl.New()
//	...
//	if err := p.ParseFile("dom.webidl"); err != nil { ... }
//	defs, err := p.Finish()
//
// Errors describing the input are *Error values carrying the message and
// the rendered source locations.
package webidl

import (
	"context"
	"fmt"
	"os"

	"github.com/funvibe/webidl/internal/diagnostics"
	"github.com/funvibe/webidl/internal/idl"
	"github.com/funvibe/webidl/internal/parser"
	"github.com/funvibe/webidl/internal/pipeline"
)

// Model types, re-exported for callers outside this module.
type (
	Definition        = idl.Definition
	Interface         = idl.Interface
	ExternalInterface = idl.ExternalInterface
	Dictionary        = idl.Dictionary
	Enum              = idl.Enum
	Callback          = idl.Callback
	Member            = idl.Member
	Const             = idl.Const
	Attribute         = idl.Attribute
	Method            = idl.Method
	Argument          = idl.Argument
	Type              = idl.Type
	Value             = idl.Value
	Error             = diagnostics.Error
)

// Parser collects sources for one resolution pass.
type Parser struct {
	p        *parser.Parser
	finished bool
}

func New() (*Parser, error) {
	p, err := parser.New()
	if err != nil {
		return nil, err
	}
	return &Parser{p: p}, nil
}

// Parse adds one source text; filename only labels locations.
func (p *Parser) Parse(text, filename string) error {
	if p.finished {
		return fmt.Errorf("webidl: Parse after Finish")
	}
	return p.p.Parse(text, filename)
}

// ParseFile reads and parses the file at path.
func (p *Parser) ParseFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return p.Parse(string(data), path)
}

// Finish resolves and validates everything parsed so far. An internal
// consistency failure is reported as an error rather than a panic.
func (p *Parser) Finish() (defs []Definition, err error) {
	p.finished = true
	defer recoverAssertion(&err)
	return p.p.Finish()
}

func recoverAssertion(err *error) {
	if r := recover(); r != nil {
		ae, ok := r.(*idl.AssertionError)
		if !ok {
			panic(r)
		}
		*err = ae
	}
}

// Deps lists the files def was built from, builtins excluded.
func Deps(def Definition) []string { return idl.Deps(def) }

// ParseFiles parses paths together and returns the finished definitions.
func ParseFiles(ctx context.Context, paths ...string) (defs []Definition, err error) {
	defer recoverAssertion(&err)
	out := pipeline.New(
		pipeline.LoadProcessor{},
		&parser.ParserProcessor{},
	).Run(pipeline.NewContext(ctx, "", paths...))
	if out.Err != nil {
		return nil, out.Err
	}
	return out.Definitions, nil
}
