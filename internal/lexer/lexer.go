package lexer

import (
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/funvibe/webidl/internal/diagnostics"
	"github.com/funvibe/webidl/internal/token"
)

var (
	floatRe = regexp.MustCompile(`^(?:-?(?:(?:[0-9]+\.[0-9]*|[0-9]*\.[0-9]+)(?:[Ee][+-]?[0-9]+)?|[0-9]+[Ee][+-]?[0-9]+|Infinity)|NaN)`)
	intRe   = regexp.MustCompile(`^-?(?:0(?:[Xx][0-9A-Fa-f]+|[0-7]*)|[1-9][0-9]*)`)
	identRe = regexp.MustCompile(`^[A-Z_a-z][0-9A-Z_a-z-]*`)
)

// Lexer turns one Source into tokens. It never skips unknown input: a
// character it cannot classify becomes an OTHER token and is left for the
// parser to reject.
type Lexer struct {
	src       *diagnostics.Source
	input     string
	position  int
	line      int
	lineStart int
}

func New(src *diagnostics.Source) *Lexer {
	return &Lexer{src: src, input: src.Text, line: 1}
}

// Source returns the source being tokenized.
func (l *Lexer) Source() *diagnostics.Source {
	return l.src
}

// Tokenize reads the whole input. The last token is always EOF.
func (l *Lexer) Tokenize() ([]token.Token, error) {
	var toks []token.Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks, nil
		}
	}
}

func (l *Lexer) NextToken() (token.Token, error) {
	if err := l.skipWhitespace(); err != nil {
		return token.Token{}, err
	}
	if l.position >= len(l.input) {
		return l.newToken(token.EOF, "", nil), nil
	}

	rest := l.input[l.position:]
	ch := rest[0]

	if ch == '"' {
		end := strings.IndexByte(rest[1:], '"')
		if end == -1 {
			return token.Token{}, l.errorf("Unterminated string literal")
		}
		lexeme := rest[:end+2]
		tok := l.newToken(token.STRING, lexeme, lexeme[1:len(lexeme)-1])
		l.advance(len(lexeme))
		return tok, nil
	}

	if m := floatRe.FindString(rest); m != "" && !l.isWordContinuation(m) {
		val, err := parseFloat(m)
		if err != nil {
			return token.Token{}, l.errorf("Invalid float literal")
		}
		tok := l.newToken(token.FLOAT, m, val)
		l.advance(len(m))
		return tok, nil
	}

	if m := intRe.FindString(rest); m != "" {
		val, ok := parseInt(m)
		if !ok {
			return token.Token{}, l.errorf("Invalid integer literal")
		}
		tok := l.newToken(token.INTEGER, m, val)
		l.advance(len(m))
		return tok, nil
	}

	if m := identRe.FindString(rest); m != "" {
		tok := l.newToken(token.LookupIdent(m), m, m)
		l.advance(len(m))
		return tok, nil
	}

	if strings.HasPrefix(rest, "...") {
		tok := l.newToken(token.ELLIPSIS, "...", "...")
		l.advance(3)
		return tok, nil
	}

	tt := token.OTHER
	switch ch {
	case '{':
		tt = token.LBRACE
	case '}':
		tt = token.RBRACE
	case '(':
		tt = token.LPAREN
	case ')':
		tt = token.RPAREN
	case '[':
		tt = token.LBRACKET
	case ']':
		tt = token.RBRACKET
	case ';':
		tt = token.SEMICOLON
	case ':':
		tt = token.COLON
	case ',':
		tt = token.COMMA
	case '=':
		tt = token.EQUALS
	case '<':
		tt = token.LT
	case '>':
		tt = token.GT
	case '?':
		tt = token.QUESTION
	case '-':
		tt = token.MINUS
	}
	// OTHER covers one whole rune so that multi-byte input is not split.
	width := 1
	if tt == token.OTHER {
		for width < len(rest) && !isRuneStart(rest[width]) {
			width++
		}
	}
	lexeme := rest[:width]
	tok := l.newToken(tt, lexeme, lexeme)
	l.advance(width)
	return tok, nil
}

// isWordContinuation rejects "Infinity"/"NaN" matches that are really the
// prefix of a longer identifier such as "Infinityish".
func (l *Lexer) isWordContinuation(m string) bool {
	if !strings.HasSuffix(m, "Infinity") && m != "NaN" {
		return false
	}
	next := l.position + len(m)
	if next >= len(l.input) {
		return false
	}
	c := l.input[next]
	return c == '_' || c == '-' || isLetter(c) || isDigit(c)
}

func (l *Lexer) newToken(tt token.TokenType, lexeme string, literal interface{}) token.Token {
	return token.Token{
		Type:    tt,
		Lexeme:  lexeme,
		Literal: literal,
		Line:    l.line,
		Column:  l.position - l.lineStart,
		Offset:  l.position,
	}
}

func (l *Lexer) advance(n int) {
	for i := 0; i < n; i++ {
		if l.input[l.position] == '\n' {
			l.line++
			l.lineStart = l.position + 1
		}
		l.position++
	}
}

func (l *Lexer) errorf(msg string) error {
	return diagnostics.NewError(msg, diagnostics.At(l.src, l.position))
}

func (l *Lexer) skipWhitespace() error {
	for l.position < len(l.input) {
		ch := l.input[l.position]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			l.advance(1)
		case strings.HasPrefix(l.input[l.position:], "//"):
			end := strings.IndexByte(l.input[l.position:], '\n')
			if end == -1 {
				end = len(l.input) - l.position
			}
			l.advance(end)
		case strings.HasPrefix(l.input[l.position:], "/*"):
			end := strings.Index(l.input[l.position+2:], "*/")
			if end == -1 {
				return l.errorf("Unterminated comment")
			}
			l.advance(end + 4)
		default:
			return nil
		}
	}
	return nil
}

// parseInt applies the C-style rules: 0x/0X is hex, a leading 0 is octal,
// anything else decimal; the sign is applied after the magnitude.
func parseInt(literal string) (*big.Int, bool) {
	s := literal
	negative := false
	if s[0] == '-' {
		negative = true
		s = s[1:]
	}
	base := 10
	if s[0] == '0' && len(s) > 1 {
		if s[1] == 'x' || s[1] == 'X' {
			base = 16
			s = s[2:]
		} else {
			base = 8
			s = s[1:]
		}
	}
	val, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, false
	}
	if negative {
		val.Neg(val)
	}
	return val, true
}

func parseFloat(literal string) (float64, error) {
	switch literal {
	case "Infinity":
		return math.Inf(1), nil
	case "-Infinity":
		return math.Inf(-1), nil
	case "NaN":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(literal, 64)
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
