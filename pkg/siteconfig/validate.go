package siteconfig

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"
)

// Violation describes a single problem found in a SiteConfig.
type Violation struct {
	// Field is the configuration field that has the problem.
	Field string `json:"field"`

	// Message describes the problem.
	Message string `json:"message"`
}

func (v Violation) String() string {
	return v.Field + ": " + v.Message
}

func violationf(field, format string, args ...any) Violation {
	return Violation{Field: field, Message: fmt.Sprintf(format, args...)}
}

var validPKStrategies = map[PrimaryKeyStrategy]bool{
	"":              true, // defaults to auto_increment
	PKAutoIncrement: true,
	PKRandomToken:   true,
	PKTimestamp:     true,
	PKCustom:        true,
}

// Validate checks a SiteConfig for structural problems and returns every
// violation found. An empty result means the config is usable. It does
// not touch the network or the filesystem.
func Validate(cfg *SiteConfig) []Violation {
	var out []Violation

	if strings.TrimSpace(cfg.ID) == "" {
		out = append(out, violationf("id", "must not be empty"))
	}
	if strings.TrimSpace(cfg.Name) == "" {
		out = append(out, violationf("name", "must not be empty"))
	}
	out = append(out, validateRepoURL(cfg.RepoURL)...)
	out = append(out, validateCredential(cfg.Credential)...)
	if strings.TrimSpace(cfg.LocalPath) == "" {
		out = append(out, violationf("localPath", "must not be empty"))
	}
	if len(cfg.BuildCommand) > 0 && strings.TrimSpace(cfg.BuildCommand[0]) == "" {
		out = append(out, violationf("buildCommand", "executable must not be empty"))
	}
	if len(cfg.ValidateCommand) > 0 && strings.TrimSpace(cfg.ValidateCommand[0]) == "" {
		out = append(out, violationf("validateCommand", "executable must not be empty"))
	}

	for i, rf := range cfg.RelationalFiles {
		field := fmt.Sprintf("relationalFiles[%d]", i)
		if strings.TrimSpace(rf.FilePattern) == "" {
			out = append(out, violationf(field+".filePattern", "must not be empty"))
		}
		for j, tbl := range rf.EditableTables {
			tf := fmt.Sprintf("%s.editableTables[%d]", field, j)
			if strings.TrimSpace(tbl.Name) == "" {
				out = append(out, violationf(tf+".name", "must not be empty"))
			}
			if !validPKStrategies[tbl.PrimaryKey.Strategy] {
				out = append(out, violationf(tf+".primaryKey.strategy", "unknown strategy %q", tbl.PrimaryKey.Strategy))
			}
			if tbl.PrimaryKey.Strategy == PKCustom && strings.TrimSpace(tbl.PrimaryKey.Column) == "" {
				out = append(out, violationf(tf+".primaryKey.column", "required for the custom strategy"))
			}
		}
	}

	for i, mf := range cfg.ModelFiles {
		if strings.TrimSpace(mf.FilePattern) == "" {
			out = append(out, violationf(fmt.Sprintf("modelFiles[%d].filePattern", i), "must not be empty"))
		}
	}

	for i, ct := range cfg.CustomFileTypes {
		field := fmt.Sprintf("customFileTypes[%d]", i)
		if len(ct.Extensions) == 0 {
			out = append(out, violationf(field+".extensions", "must not be empty"))
		}
		if ct.TreatAs != TreatAsText && ct.TreatAs != TreatAsAsset {
			out = append(out, violationf(field+".treatAs", "must be %q or %q", TreatAsText, TreatAsAsset))
		}
	}

	return out
}

// ValidateRegistry validates every site and rejects duplicate ids.
// Violation fields are prefixed with sites[i].
func ValidateRegistry(reg *Registry) []Violation {
	var out []Violation
	seen := make(map[string]int, len(reg.Sites))
	for i := range reg.Sites {
		cfg := &reg.Sites[i]
		prefix := fmt.Sprintf("sites[%d].", i)
		for _, v := range Validate(cfg) {
			out = append(out, Violation{Field: prefix + v.Field, Message: v.Message})
		}
		if cfg.ID == "" {
			continue
		}
		if first, dup := seen[cfg.ID]; dup {
			out = append(out, violationf(prefix+"id", "duplicate of sites[%d]", first))
		} else {
			seen[cfg.ID] = i
		}
	}
	return out
}

func validateRepoURL(raw string) []Violation {
	if strings.TrimSpace(raw) == "" {
		return []Violation{violationf("repoUrl", "must not be empty")}
	}
	if strings.ContainsAny(raw, " \t\n") {
		return []Violation{violationf("repoUrl", "must not contain whitespace")}
	}
	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return []Violation{violationf("repoUrl", "not a valid URL: %v", err)}
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return []Violation{violationf("repoUrl", "unsupported scheme %q", u.Scheme)}
		}
		if u.Host == "" {
			return []Violation{violationf("repoUrl", "missing host")}
		}
	}
	// Anything without a scheme is taken as a filesystem path.
	return nil
}

func validateCredential(cred string) []Violation {
	if cred == "" {
		// Pull-only public sites need no credential.
		return nil
	}
	for _, r := range cred {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return []Violation{violationf("credential", "must not contain whitespace or control characters")}
		}
	}
	if strings.HasPrefix(cred, ":") || strings.HasSuffix(cred, ":") {
		return []Violation{violationf("credential", "user and token parts must both be non-empty")}
	}
	if strings.Count(cred, ":") > 1 {
		return []Violation{violationf("credential", "expected a bare token or user:token")}
	}
	return nil
}
