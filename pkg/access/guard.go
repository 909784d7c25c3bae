// Package access implements the path, table, and column guards that
// every content operation passes before touching a site's working tree.
// The checks are pure functions over a SiteConfig; the only filesystem
// interaction is ResolveWithin's path resolution.
package access

import (
	"fmt"
	"path/filepath"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/billstark001/fiction-cms-sub001/pkg/cmserr"
	"github.com/billstark001/fiction-cms-sub001/pkg/siteconfig"
)

// NormalizeRelPath canonicalizes a repo-relative path: forward slashes,
// cleaned, no leading "./" or "/". An empty or all-dots input normalizes
// to ".".
func NormalizeRelPath(p string) string {
	p = filepath.ToSlash(p)
	p = strings.TrimPrefix(p, "/")
	cleaned := filepath.ToSlash(filepath.Clean(p))
	if cleaned == "" {
		return "."
	}
	return cleaned
}

// IsPathAllowed reports whether the path falls inside the site's
// editable surface. An empty EditablePaths list leaves the whole tree
// editable. Matching is by string prefix on normalized paths, so a
// configured prefix without a trailing slash also admits sibling names
// that share it.
func IsPathAllowed(cfg *siteconfig.SiteConfig, path string) bool {
	if len(cfg.EditablePaths) == 0 {
		return true
	}
	normalized := NormalizeRelPath(path)
	if strings.HasPrefix(normalized, "..") {
		return false
	}
	for _, prefix := range cfg.EditablePaths {
		if strings.HasPrefix(normalized, NormalizeRelPath(prefix)) {
			return true
		}
	}
	return false
}

// RequirePathAllowed is IsPathAllowed returning a classified error.
func RequirePathAllowed(cfg *siteconfig.SiteConfig, op, path string) error {
	if !IsPathAllowed(cfg, path) {
		return cmserr.New(cmserr.CodeAccessDenied, op, NormalizeRelPath(path))
	}
	return nil
}

// ResolveWithin resolves a repo-relative path against the site root and
// verifies the result stays inside it, so traversal sequences cannot
// escape the working tree even when the prefix guard passes.
func ResolveWithin(root, rel string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving site root %s: %w", root, err)
	}
	abs := filepath.Clean(filepath.Join(absRoot, filepath.FromSlash(rel)))
	if abs != absRoot && !strings.HasPrefix(abs, absRoot+string(filepath.Separator)) {
		return "", cmserr.New(cmserr.CodeAccessDenied, "resolve_path", NormalizeRelPath(rel))
	}
	return abs, nil
}

// ResolveRelationalFile returns the relational-file config whose pattern
// matches the path, or an access_denied error when the file is not
// configured for relational editing.
func ResolveRelationalFile(cfg *siteconfig.SiteConfig, path string) (*siteconfig.RelationalFileConfig, error) {
	normalized := NormalizeRelPath(path)
	for i := range cfg.RelationalFiles {
		if MatchGlob(cfg.RelationalFiles[i].FilePattern, normalized) {
			return &cfg.RelationalFiles[i], nil
		}
	}
	return nil, cmserr.New(cmserr.CodeAccessDenied, "resolve_relational_file", normalized)
}

// ResolveTableAccess returns the access config for a table inside a
// relational file, or an access_denied error when the table is not
// listed as editable.
func ResolveTableAccess(rfc *siteconfig.RelationalFileConfig, table string) (*siteconfig.TableAccessConfig, error) {
	for i := range rfc.EditableTables {
		if rfc.EditableTables[i].Name == table {
			return &rfc.EditableTables[i], nil
		}
	}
	return nil, cmserr.New(cmserr.CodeAccessDenied, "resolve_table", table)
}

// CheckWritableColumns rejects a write whose column set reaches outside
// the table's editable columns. An empty editable list admits every
// column.
func CheckWritableColumns(tac *siteconfig.TableAccessConfig, columns []string) error {
	if len(tac.EditableColumns) == 0 {
		return nil
	}
	editable := mapset.NewSet(tac.EditableColumns...)
	requested := mapset.NewSet(columns...)
	denied := requested.Difference(editable)
	if denied.Cardinality() > 0 {
		cols := denied.ToSlice()
		return cmserr.New(cmserr.CodeAccessDenied, "write_columns",
			fmt.Sprintf("%s.%s", tac.Name, strings.Join(cols, ",")))
	}
	return nil
}

// ReadableColumns projects the available columns through the table's
// readable list, preserving the available order. An empty readable list
// passes everything through.
func ReadableColumns(tac *siteconfig.TableAccessConfig, available []string) []string {
	if len(tac.ReadableColumns) == 0 {
		return available
	}
	readable := mapset.NewSet(tac.ReadableColumns...)
	out := make([]string, 0, len(available))
	for _, col := range available {
		if readable.Contains(col) {
			out = append(out, col)
		}
	}
	return out
}

// IsColumnReadable reports whether the table's readable projection
// admits the column.
func IsColumnReadable(tac *siteconfig.TableAccessConfig, column string) bool {
	if len(tac.ReadableColumns) == 0 {
		return true
	}
	for _, col := range tac.ReadableColumns {
		if col == column {
			return true
		}
	}
	return false
}

// MatchGlob matches a slash-separated path against a glob pattern.
// Supports *, **, and ? wildcards; ** spans path segments.
func MatchGlob(pattern, path string) bool {
	if strings.Contains(pattern, "**") {
		parts := strings.SplitN(pattern, "**", 2)
		prefix := parts[0]
		suffix := strings.TrimLeft(parts[1], "/")

		if prefix != "" && !strings.HasPrefix(path, prefix) {
			return false
		}
		if suffix == "" {
			return true
		}

		trimmed := path
		if prefix != "" {
			trimmed = strings.TrimPrefix(path, prefix)
		}
		pathParts := strings.Split(trimmed, "/")
		for i := range pathParts {
			subpath := strings.Join(pathParts[i:], "/")
			if matched, _ := filepath.Match(suffix, subpath); matched {
				return true
			}
		}
		return false
	}

	matched, _ := filepath.Match(pattern, path)
	return matched
}
