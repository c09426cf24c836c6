package diagnostics

import (
	"fmt"
	"strings"
)

// BuiltinFile is the file name reported for builtin and synthesized objects.
const BuiltinFile = "<builtin>"

// Source is one chunk of input text handed to the parser.
type Source struct {
	File string
	Text string
}

// NewSource wraps text. An empty file name becomes "<unknown>".
func NewSource(file, text string) *Source {
	if file == "" {
		file = "<unknown>"
	}
	return &Source{File: file, Text: text}
}

// Location is a position in a Source, or a builtin marker when Src is nil.
type Location struct {
	Src     *Source
	Offset  int
	Builtin string
}

// At returns the location of byte offset in src.
func At(src *Source, offset int) Location {
	return Location{Src: src, Offset: offset}
}

// BuiltinLocation returns a synthetic location carrying a description.
func BuiltinLocation(text string) Location {
	return Location{Builtin: text}
}

// IsBuiltin reports whether the location does not point into real source.
func (l Location) IsBuiltin() bool {
	return l.Src == nil || l.Src.File == BuiltinFile
}

// File returns the source file name, or BuiltinFile.
func (l Location) File() string {
	if l.Src == nil {
		return BuiltinFile
	}
	return l.Src.File
}

// Line returns the 1-based line number.
func (l Location) Line() int {
	if l.Src == nil {
		return 0
	}
	return strings.Count(l.Src.Text[:l.clamp()], "\n") + 1
}

// Column returns the 0-based column.
func (l Location) Column() int {
	if l.Src == nil {
		return 0
	}
	off := l.clamp()
	return off - (strings.LastIndexByte(l.Src.Text[:off], '\n') + 1)
}

func (l Location) clamp() int {
	if l.Offset > len(l.Src.Text) {
		return len(l.Src.Text)
	}
	if l.Offset < 0 {
		return 0
	}
	return l.Offset
}

// SourceLine returns the text of the line containing the location, cut
// at 80 bytes past the location when the line is longer.
func (l Location) SourceLine() string {
	if l.Src == nil {
		return ""
	}
	off := l.clamp()
	text := l.Src.Text
	start := strings.LastIndexByte(text[:off], '\n') + 1
	limit := off + 80
	if limit > len(text) {
		limit = len(text)
	}
	end := strings.IndexByte(text[off:limit], '\n')
	if end == -1 {
		return text[start:]
	}
	return text[start : off+end]
}

// Short renders "<file> line <n>:<col>".
func (l Location) Short() string {
	if l.Src == nil {
		return l.Builtin
	}
	return fmt.Sprintf("%s line %d:%d", l.Src.File, l.Line(), l.Column())
}

func (l Location) String() string {
	if l.Src == nil {
		return l.Builtin + "\n"
	}
	return fmt.Sprintf("%s\n%s\n%s^", l.Short(), l.SourceLine(), strings.Repeat(" ", l.Column()))
}

// Equal compares locations by file and offset.
func (l Location) Equal(o Location) bool {
	if l.Src == nil || o.Src == nil {
		return l.Src == o.Src && l.Builtin == o.Builtin
	}
	return l.Src.File == o.Src.File && l.Offset == o.Offset
}
