package internal

// TokenType represents the type of a lexical token
type TokenType string

// Token type constants
const (
	TokenTypeText     TokenType = "TEXT"
	TokenTypeVariable TokenType = "VARIABLE"
	TokenTypeBlock    TokenType = "BLOCK"
	TokenTypeComment  TokenType = "COMMENT"
	TokenTypeEOF      TokenType = "EOF"
)

// NodeType identifies node variants. The set is closed: typed searches
// over a NodeList match on these values, never on names.
type NodeType int

// Node type constants
const (
	NodeTypeText NodeType = iota
	NodeTypeVariable
	NodeTypeFirstOf
	NodeTypeLoad
	NodeTypeSpaceless
	NodeTypeBlock
	NodeTypeExtends
	NodeTypeInclude
	NodeTypeCustom
)

// Node type string names for debugging
const (
	NodeTypeNameText      = "TEXT"
	NodeTypeNameVariable  = "VARIABLE"
	NodeTypeNameFirstOf   = "FIRSTOF"
	NodeTypeNameLoad      = "LOAD"
	NodeTypeNameSpaceless = "SPACELESS"
	NodeTypeNameBlock     = "BLOCK"
	NodeTypeNameExtends   = "EXTENDS"
	NodeTypeNameInclude   = "INCLUDE"
	NodeTypeNameCustom    = "CUSTOM"
)

// String returns the string representation of the node type
func (n NodeType) String() string {
	switch n {
	case NodeTypeText:
		return NodeTypeNameText
	case NodeTypeVariable:
		return NodeTypeNameVariable
	case NodeTypeFirstOf:
		return NodeTypeNameFirstOf
	case NodeTypeLoad:
		return NodeTypeNameLoad
	case NodeTypeSpaceless:
		return NodeTypeNameSpaceless
	case NodeTypeBlock:
		return NodeTypeNameBlock
	case NodeTypeExtends:
		return NodeTypeNameExtends
	case NodeTypeInclude:
		return NodeTypeNameInclude
	default:
		return NodeTypeNameCustom
	}
}

// Delimiters
const (
	StrVariableOpen  = "{{"
	StrVariableClose = "}}"
	StrBlockOpen     = "{%"
	StrBlockClose    = "%}"
	StrCommentOpen   = "{#"
	StrCommentClose  = "#}"
	LenDelim         = 2
)

// Character constants
const (
	CharDoubleQuote = '"'
	CharSingleQuote = '\''
	CharNewline     = '\n'
	CharPipe        = '|'
	CharColon       = ':'
	CharDot         = '.'
)

// Built-in tag names
const (
	TagNameFirstOf      = "firstof"
	TagNameLoad         = "load"
	TagNameSpaceless    = "spaceless"
	TagNameEndSpaceless = "endspaceless"
	TagNameBlock        = "block"
	TagNameEndBlock     = "endblock"
	TagNameExtends      = "extends"
	TagNameInclude      = "include"
	TagPrefixEnd        = "end"
)

// Built-in filter names
const (
	FilterNameUpper   = "upper"
	FilterNameLower   = "lower"
	FilterNameDefault = "default"
	FilterNameLength  = "length"
	FilterNameJoin    = "join"
)

// Context keys and attribute names
const (
	ContextKeyBlock    = "block"
	BlockAttrSuper     = "super"
	BlockAttrName      = "name"
	LibraryNameBuiltin = "builtins"
)

// Defaults
const (
	DefaultMaxDepth        = 32
	DefaultJoinSeparator   = ", "
	MaxStringDisplayLength = 40
	TruncatedStringLength  = 37
	TruncationSuffix       = "..."
)

// String values
const (
	StringValueEmpty = ""
	StringValueTrue  = "true"
	StringValueFalse = "false"
)

// Log message constants
const (
	LogMsgLexerCreated        = "lexer created"
	LogMsgTokenizerEnd        = "tokenization complete"
	LogMsgParserCreated       = "parser created"
	LogMsgParserEnd           = "parse complete"
	LogMsgRegistryCreated     = "registry created"
	LogMsgLibraryRegistered   = "tag library registered"
	LogMsgLibraryCollision    = "tag library registration collision - first-come-wins"
	LogMsgLibraryLoaded       = "tag library loaded into parse scope"
	LogMsgProviderRegistered  = "library provider registered"
	LogMsgInheritanceResolved = "inheritance chain resolved"
	LogMsgIncludeMissing      = "included template not found, rendering empty"
	LogMsgScriptLibraryLoaded = "script library loaded"
)

// Log field names
const (
	LogFieldSource   = "source_length"
	LogFieldTokens   = "token_count"
	LogFieldNodes    = "node_count"
	LogFieldTag      = "tag"
	LogFieldLibrary  = "library"
	LogFieldTemplate = "template"
	LogFieldDepth    = "depth"
	LogFieldChain    = "chain"
	LogFieldPath     = "path"
	LogFieldTagCount = "tag_count"
)
