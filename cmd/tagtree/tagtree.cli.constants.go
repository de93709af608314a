package main

import "os"

// CLI identity
const (
	CLIName  = "tagtree"
	CLIShort = "Render and validate tagtree templates"
	CLILong  = `tagtree renders Django-style templates with block inheritance.

Templates are loaded from --template-dir directories, from an optional
PostgreSQL store configured in the config file, or read directly with
--template. Tag libraries written in Starlark are picked up from
--script-dir directories and enabled with {% load name %}.`
)

// Command names
const (
	CmdNameRender   = "render"
	CmdNameValidate = "validate"
	CmdNameVersion  = "version"
)

// Command descriptions
const (
	CmdShortRender   = "Render a template with data"
	CmdShortValidate = "Parse a template and report errors without rendering"
	CmdShortVersion  = "Show version information"
)

// Flag names - long form
const (
	FlagTemplate    = "template"
	FlagName        = "name"
	FlagData        = "data"
	FlagDataFile    = "data-file"
	FlagOutput      = "output"
	FlagFormat      = "format"
	FlagConfig      = "config"
	FlagTemplateDir = "template-dir"
	FlagScriptDir   = "script-dir"
	FlagLogLevel    = "log-level"
)

// Flag names - short form
const (
	FlagTemplateShort = "t"
	FlagNameShort     = "n"
	FlagDataShort     = "d"
	FlagDataFileShort = "f"
	FlagOutputShort   = "o"
	FlagFormatShort   = "F"
	FlagConfigShort   = "c"
)

// Flag usage strings
const (
	FlagUsageTemplate    = `template file (use "-" for stdin)`
	FlagUsageName        = "template name resolved through the configured loaders"
	FlagUsageData        = "JSON data string"
	FlagUsageDataFile    = "JSON or YAML data file"
	FlagUsageOutput      = "output file (default: stdout)"
	FlagUsageFormat      = "output format: text, json"
	FlagUsageConfig      = "config file (default: $XDG_CONFIG_HOME/tagtree/config.yaml)"
	FlagUsageTemplateDir = "template directory, may be repeated"
	FlagUsageScriptDir   = "Starlark tag library directory, may be repeated"
	FlagUsageLogLevel    = "log level: debug, info, warn, error"
)

// Flag default values
const (
	FlagDefaultOutput = "-" // stdout
	FlagDefaultFormat = "text"
)

// Output formats
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
)

// Exit codes
const (
	ExitCodeSuccess         = 0
	ExitCodeError           = 1
	ExitCodeUsageError      = 2
	ExitCodeValidationError = 3
	ExitCodeInputError      = 4
)

// Input source indicators
const (
	InputSourceStdin = "-"
)

// Data file extensions
const (
	DataExtJSON = ".json"
	DataExtYAML = ".yaml"
	DataExtYML  = ".yml"
)

// File permissions for written output
const (
	FilePermissions os.FileMode = 0644
)

// Error messages - ALL must be constants
const (
	ErrMsgMissingTemplate   = "one of --template or --name is required"
	ErrMsgBothTemplateName  = "--template and --name are mutually exclusive"
	ErrMsgInvalidJSON       = "invalid JSON data"
	ErrMsgInvalidYAML       = "invalid YAML data"
	ErrMsgDataFileFormat    = "unsupported data file format"
	ErrMsgReadFileFailed    = "failed to read file"
	ErrMsgWriteOutputFailed = "failed to write output"
	ErrMsgEngineFailed      = "failed to set up engine"
	ErrMsgConfigFailed      = "failed to load config"
	ErrMsgRenderFailed      = "template rendering failed"
	ErrMsgInvalidFormat     = "invalid output format"
	ErrMsgUnexpectedArgs    = "unexpected arguments"
)

// Output format templates
const (
	FmtErrorWithCause   = "Error: %s: %v\n"
	FmtError            = "Error: %v\n"
	FmtValidOK          = "OK: %s\n"
	FmtValidFailed      = "%s: %s\n"
	FmtBlocks           = "blocks: %s\n"
	FmtExtends          = "extends: yes\n"
	VersionTextTemplate = "tagtree version %s\nGo: %s\n"
	StdinTemplateName   = "<stdin>"
)
