package config

// SourceFileExt is the preferred extension for IDL sources.
const SourceFileExt = ".webidl"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".webidl", ".idl"}

// ProjectFileNames are searched, in order, by FindProject.
var ProjectFileNames = []string{"webidl.yaml", "webidl.yml"}

// BuiltinIDL is parsed into every global scope before user sources.
const BuiltinIDL = "typedef unsigned long long DOMTimeStamp;"

// Builtin location texts
const (
	AutoGeneratedIdentifier = "<auto-generated-identifier>"
	BuiltinTypeLocation     = "<builtin type>"
)

// Output formats understood by the CLI.
const (
	FormatSummary    = "summary"
	FormatYAML       = "yaml"
	FormatProto      = "proto"
	FormatDescriptor = "descriptor"
	FormatDeps       = "deps"
)

// Formats lists every output format.
var Formats = []string{FormatSummary, FormatYAML, FormatProto, FormatDescriptor, FormatDeps}

// DefaultProtoPackage names the generated proto package when the project
// does not.
const DefaultProtoPackage = "webidl"
