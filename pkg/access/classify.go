package access

import (
	"path/filepath"
	"strings"

	"github.com/billstark001/fiction-cms-sub001/pkg/siteconfig"
)

// FileKind is the coarse classification of a repo file.
type FileKind string

const (
	KindText            FileKind = "text"
	KindAsset           FileKind = "asset"
	KindRelationalStore FileKind = "relational-store"
	KindModel           FileKind = "model"
	KindCustom          FileKind = "custom"
	KindUnknown         FileKind = "unknown"
)

// FileClass is the resolved classification of one path.
type FileClass struct {
	Kind FileKind

	// DisplayName is set for custom kinds from their configuration.
	DisplayName string

	// Treatment says how the content layer handles the file: text kinds
	// read and write as UTF-8 documents, everything else streams as
	// opaque bytes.
	Treatment siteconfig.FileTreatment
}

var textExtensions = map[string]bool{
	".md": true, ".markdown": true, ".txt": true,
	".html": true, ".htm": true, ".css": true,
	".js": true, ".mjs": true, ".ts": true, ".tsx": true, ".jsx": true,
	".json": true, ".yaml": true, ".yml": true, ".toml": true,
	".xml": true, ".csv": true,
}

var assetExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".webp": true, ".ico": true, ".svg": true, ".bmp": true,
	".woff": true, ".woff2": true, ".ttf": true, ".otf": true, ".eot": true,
	".mp3": true, ".mp4": true, ".webm": true, ".ogg": true, ".wav": true,
	".pdf": true, ".zip": true, ".gz": true, ".tar": true,
}

// Classify resolves the kind of a repo-relative path. Site configuration
// wins over the built-in extension tables: relational globs first, then
// model globs, then custom types.
func Classify(cfg *siteconfig.SiteConfig, path string) FileClass {
	normalized := NormalizeRelPath(path)

	for i := range cfg.RelationalFiles {
		if MatchGlob(cfg.RelationalFiles[i].FilePattern, normalized) {
			return FileClass{Kind: KindRelationalStore, Treatment: siteconfig.TreatAsAsset}
		}
	}
	for i := range cfg.ModelFiles {
		if MatchGlob(cfg.ModelFiles[i].FilePattern, normalized) {
			return FileClass{Kind: KindModel, Treatment: siteconfig.TreatAsText}
		}
	}

	ext := strings.ToLower(filepath.Ext(normalized))
	for i := range cfg.CustomFileTypes {
		ct := &cfg.CustomFileTypes[i]
		for _, e := range ct.Extensions {
			if normalizeExt(e) == ext {
				return FileClass{Kind: KindCustom, DisplayName: ct.DisplayName, Treatment: ct.TreatAs}
			}
		}
	}

	switch {
	case textExtensions[ext]:
		return FileClass{Kind: KindText, Treatment: siteconfig.TreatAsText}
	case assetExtensions[ext]:
		return FileClass{Kind: KindAsset, Treatment: siteconfig.TreatAsAsset}
	default:
		return FileClass{Kind: KindUnknown, Treatment: siteconfig.TreatAsAsset}
	}
}

func normalizeExt(e string) string {
	e = strings.ToLower(strings.TrimSpace(e))
	if e == "" {
		return e
	}
	if !strings.HasPrefix(e, ".") {
		e = "." + e
	}
	return e
}
