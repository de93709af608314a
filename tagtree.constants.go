package tagtree

import (
	"time"

	"github.com/itsatony/go-tagtree/internal"
)

// Engine defaults
const (
	DefaultMaxDepth = internal.DefaultMaxDepth
	DefaultCacheTTL = time.Duration(0)
)

// Error code constants for categorization
const (
	ErrCodeParse    = "TAGTREE_PARSE"
	ErrCodeRender   = "TAGTREE_RENDER"
	ErrCodeLoader   = "TAGTREE_LOADER"
	ErrCodeRegistry = "TAGTREE_REGISTRY"
	ErrCodeConfig   = "TAGTREE_CONFIG"
)

// Metadata keys attached to errors
const (
	MetaKeyKind     = "kind"
	MetaKeyLine     = "line"
	MetaKeyColumn   = "column"
	MetaKeyTag      = "tag"
	MetaKeyTemplate = "template"
	MetaKeyLibrary  = "library"
	MetaKeyLoader   = "loader"
	MetaKeyPath     = "path"
)

// Error message constants
const (
	ErrMsgParseFailed         = "template parsing failed"
	ErrMsgRenderFailed        = "template rendering failed"
	ErrMsgTemplateNotFound    = "template not found"
	ErrMsgEmptyTemplateName   = "template name cannot be empty"
	ErrMsgInvalidTemplateName = "template name escapes the loader root"
	ErrMsgLoaderFailed        = "template loader failed"
	ErrMsgNilLoader           = "loader cannot be nil"
	ErrMsgRegistryFailed      = "tag library registration failed"
	ErrMsgConfigRead          = "failed to read config file"
	ErrMsgConfigDecode        = "failed to decode config"
	ErrMsgConfigFormat        = "unsupported config format"
	ErrMsgConfigCacheTTL      = "invalid cache_ttl duration"
	ErrMsgConfigLogLevel      = "invalid log_level"
)

// Storage driver error messages
const (
	ErrMsgPostgresConnectionFailed = "failed to connect to PostgreSQL"
	ErrMsgPostgresQueryFailed      = "PostgreSQL query failed"
	ErrMsgPostgresMigrationFailed  = "PostgreSQL migration failed"
	ErrMsgPostgresEmptyConnString  = "PostgreSQL connection string is empty"
	ErrMsgPostgresAlreadyClosed    = "PostgreSQL loader is already closed"
)

// PostgreSQL loader defaults
const (
	PostgresTablePrefix            = "tagtree_"
	PostgresDefaultMaxOpenConns    = 25
	PostgresDefaultMaxIdleConns    = 5
	PostgresDefaultConnMaxLifetime = 5 * time.Minute
	PostgresDefaultConnMaxIdleTime = 5 * time.Minute
	PostgresDefaultQueryTimeout    = 30 * time.Second
)

// Loader names used in error metadata
const (
	LoaderNameMemory     = "memory"
	LoaderNameFileSystem = "filesystem"
	LoaderNamePostgres   = "postgres"
)

// Config file formats by extension
const (
	ConfigExtYAML  = ".yaml"
	ConfigExtYML   = ".yml"
	ConfigExtTOML  = ".toml"
	ConfigFileName = "config.yaml"
	ConfigDirName  = "tagtree"
)

// Log message constants
const (
	LogMsgEngineCreated    = "engine created"
	LogMsgTemplateLoaded   = "template loaded"
	LogMsgTemplateCacheHit = "template cache hit"
	LogMsgCacheInvalidated = "template cache invalidated"
	LogMsgLoaderMiss       = "loader does not know template"
)

// Log field names
const (
	LogFieldTemplate = "template"
	LogFieldLoader   = "loader"
	LogFieldCount    = "count"
)
