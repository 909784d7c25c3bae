// Package siteconfig defines the per-site descriptors consumed by the
// content, git sync, and deployment packages, together with a YAML
// file-backed registry store.
//
// A SiteConfig is an immutable snapshot: no component in this module
// mutates one after load. Updates happen by writing a new registry
// revision through the Store and re-resolving.
package siteconfig

// PrimaryKeyStrategy selects how CreateRecord fills the primary key
// column when the caller does not supply a value.
type PrimaryKeyStrategy string

const (
	// PKAutoIncrement leaves key generation to the database.
	PKAutoIncrement PrimaryKeyStrategy = "auto_increment"

	// PKRandomToken generates a random UUID string key.
	PKRandomToken PrimaryKeyStrategy = "random_token"

	// PKTimestamp uses the creation time in unix milliseconds.
	PKTimestamp PrimaryKeyStrategy = "timestamp"

	// PKCustom requires the caller to supply the key value.
	PKCustom PrimaryKeyStrategy = "custom"
)

// PrimaryKeyConfig describes the primary key of an editable table.
type PrimaryKeyConfig struct {
	// Column is the primary key column name. Defaults to "id" for the
	// auto_increment strategy when empty.
	Column string `json:"column,omitempty" yaml:"column,omitempty"`

	// Strategy selects key generation on insert. Defaults to auto_increment.
	Strategy PrimaryKeyStrategy `json:"strategy,omitempty" yaml:"strategy,omitempty"`
}

// TableAccessConfig declares one table of a relational file as editable
// and scopes which columns may be read and written.
type TableAccessConfig struct {
	Name string `json:"name" yaml:"name"`

	// EditableColumns limits which columns writes may touch. Empty means
	// every column is writable.
	EditableColumns []string `json:"editableColumns,omitempty" yaml:"editableColumns,omitempty"`

	// ReadableColumns limits the projection returned by reads. Empty
	// means every column is readable.
	ReadableColumns []string `json:"readableColumns,omitempty" yaml:"readableColumns,omitempty"`

	// InsertDefaults are merged into every created record for columns the
	// caller left unset.
	InsertDefaults map[string]any `json:"insertDefaults,omitempty" yaml:"insertDefaults,omitempty"`

	// PrimaryKey describes key generation for created records.
	PrimaryKey PrimaryKeyConfig `json:"primaryKey,omitempty" yaml:"primaryKey,omitempty"`
}

// RelationalFileConfig exposes tables inside an embedded database file.
// FilePattern is a glob matched against repo-relative paths; `*` matches
// within one path segment and `**` spans segments.
type RelationalFileConfig struct {
	FilePattern    string              `json:"filePattern" yaml:"filePattern"`
	EditableTables []TableAccessConfig `json:"editableTables,omitempty" yaml:"editableTables,omitempty"`
}

// ModelFileConfig marks JSON documents that follow a schema file. The
// core edits them as text; the classification is surfaced so callers can
// route them to schema-aware tooling.
type ModelFileConfig struct {
	FilePattern string `json:"filePattern" yaml:"filePattern"`
	SchemaPath  string `json:"schemaPath,omitempty" yaml:"schemaPath,omitempty"`
}

// FileTreatment says how a custom extension behaves in the content layer.
type FileTreatment string

const (
	TreatAsText  FileTreatment = "text"
	TreatAsAsset FileTreatment = "asset"
)

// CustomFileTypeConfig maps extra file extensions onto a treatment.
type CustomFileTypeConfig struct {
	// Extensions are matched case-insensitively, with or without the
	// leading dot.
	Extensions  []string      `json:"extensions" yaml:"extensions"`
	DisplayName string        `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	TreatAs     FileTreatment `json:"treatAs" yaml:"treatAs"`
}

// SiteConfig describes one managed site. Credential is opaque to this
// module: either a bare token or "user:token", already decrypted by the
// caller. BuildCommand and ValidateCommand are argument vectors executed
// directly, never through a shell.
type SiteConfig struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`

	// RepoURL is the remote repository, an http(s) URL or a filesystem path.
	RepoURL    string `json:"repoUrl" yaml:"repoUrl"`
	Credential string `json:"credential,omitempty" yaml:"credential,omitempty"`

	// LocalPath is the working tree this site syncs into. The deployment
	// engine is its sole writer.
	LocalPath string `json:"localPath" yaml:"localPath"`

	// BuildCommand is run from LocalPath during deployment. Empty skips
	// the build stage.
	BuildCommand []string `json:"buildCommand,omitempty" yaml:"buildCommand,omitempty"`

	// BuildOutputDir is the directory published to the hosting branch,
	// relative to LocalPath.
	BuildOutputDir string `json:"buildOutputDir,omitempty" yaml:"buildOutputDir,omitempty"`

	// ValidateCommand optionally checks the working tree before a build.
	ValidateCommand []string `json:"validateCommand,omitempty" yaml:"validateCommand,omitempty"`

	// EditablePaths are ordered repo-relative prefixes delimiting the
	// editable surface. Empty means the whole tree is editable.
	EditablePaths []string `json:"editablePaths,omitempty" yaml:"editablePaths,omitempty"`

	RelationalFiles []RelationalFileConfig `json:"relationalFiles,omitempty" yaml:"relationalFiles,omitempty"`
	ModelFiles      []ModelFileConfig      `json:"modelFiles,omitempty" yaml:"modelFiles,omitempty"`
	CustomFileTypes []CustomFileTypeConfig `json:"customFileTypes,omitempty" yaml:"customFileTypes,omitempty"`
}

// Principal identifies the acting user for commit authorship. The core
// performs no permission lookups with it.
type Principal struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
}

// Registry is the root document of a sites file.
type Registry struct {
	Sites []SiteConfig `json:"sites" yaml:"sites"`
}

// Site returns the config with the given id, or nil when absent.
func (r *Registry) Site(id string) *SiteConfig {
	for i := range r.Sites {
		if r.Sites[i].ID == id {
			return &r.Sites[i]
		}
	}
	return nil
}
