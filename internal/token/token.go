package token

import "fmt"

type TokenType int

const (
	ILLEGAL TokenType = iota
	EOF

	IDENTIFIER
	INTEGER
	FLOAT
	STRING
	OTHER

	// Punctuation
	LBRACE    // {
	RBRACE    // }
	LPAREN    // (
	RPAREN    // )
	LBRACKET  // [
	RBRACKET  // ]
	SEMICOLON // ;
	COLON     // :
	COMMA     // ,
	EQUALS    // =
	LT        // <
	GT        // >
	QUESTION  // ?
	ELLIPSIS  // ...
	MINUS     // -

	keywordBeg
	MODULE
	INTERFACE
	PARTIAL
	DICTIONARY
	ENUM
	CALLBACK
	TYPEDEF
	IMPLEMENTS
	CONST
	NULL
	TRUE
	FALSE
	SERIALIZER
	STRINGIFIER
	JSONIFIER
	UNRESTRICTED
	ATTRIBUTE
	READONLY
	INHERIT
	STATIC
	GETTER
	SETTER
	CREATOR
	DELETER
	LEGACYCALLER
	OPTIONAL
	DATE
	DOMSTRING
	BYTESTRING
	ANY
	BOOLEAN
	BYTE
	DOUBLE
	FLOAT_KW
	LONG
	OBJECT
	OCTET
	PROMISE
	MOZMAP
	OR
	SEQUENCE
	SHORT
	UNSIGNED
	VOID
	keywordEnd
)

var names = map[TokenType]string{
	ILLEGAL:    "ILLEGAL",
	EOF:        "EOF",
	IDENTIFIER: "IDENTIFIER",
	INTEGER:    "INTEGER",
	FLOAT:      "FLOAT",
	STRING:     "STRING",
	OTHER:      "OTHER",
	LBRACE:     "{",
	RBRACE:     "}",
	LPAREN:     "(",
	RPAREN:     ")",
	LBRACKET:   "[",
	RBRACKET:   "]",
	SEMICOLON:  ";",
	COLON:      ":",
	COMMA:      ",",
	EQUALS:     "=",
	LT:         "<",
	GT:         ">",
	QUESTION:   "?",
	ELLIPSIS:   "...",
	MINUS:      "-",
}

var keywords = map[string]TokenType{
	"module":       MODULE,
	"interface":    INTERFACE,
	"partial":      PARTIAL,
	"dictionary":   DICTIONARY,
	"enum":         ENUM,
	"callback":     CALLBACK,
	"typedef":      TYPEDEF,
	"implements":   IMPLEMENTS,
	"const":        CONST,
	"null":         NULL,
	"true":         TRUE,
	"false":        FALSE,
	"serializer":   SERIALIZER,
	"stringifier":  STRINGIFIER,
	"jsonifier":    JSONIFIER,
	"unrestricted": UNRESTRICTED,
	"attribute":    ATTRIBUTE,
	"readonly":     READONLY,
	"inherit":      INHERIT,
	"static":       STATIC,
	"getter":       GETTER,
	"setter":       SETTER,
	"creator":      CREATOR,
	"deleter":      DELETER,
	"legacycaller": LEGACYCALLER,
	"optional":     OPTIONAL,
	"Date":         DATE,
	"DOMString":    DOMSTRING,
	"ByteString":   BYTESTRING,
	"any":          ANY,
	"boolean":      BOOLEAN,
	"byte":         BYTE,
	"double":       DOUBLE,
	"float":        FLOAT_KW,
	"long":         LONG,
	"object":       OBJECT,
	"octet":        OCTET,
	"Promise":      PROMISE,
	"MozMap":       MOZMAP,
	"or":           OR,
	"sequence":     SEQUENCE,
	"short":        SHORT,
	"unsigned":     UNSIGNED,
	"void":         VOID,
}

func init() {
	for word, tt := range keywords {
		names[tt] = word
	}
}

// LookupIdent maps an identifier to its keyword token type, or IDENTIFIER.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENTIFIER
}

// IsKeyword reports whether the token type is a reserved word.
func (t TokenType) IsKeyword() bool {
	return t > keywordBeg && t < keywordEnd
}

func (t TokenType) String() string {
	if s, ok := names[t]; ok {
		return s
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// Token is a single lexeme. Offset is the byte position of the first
// character in the source text; Line and Column are 1-based and 0-based
// respectively, matching the location rendering.
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal interface{} // *big.Int, float64 or string, depending on Type
	Line    int
	Column  int
	Offset  int
}
