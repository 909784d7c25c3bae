package siteconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSite() SiteConfig {
	return SiteConfig{
		ID:             "blog",
		Name:           "Team Blog",
		RepoURL:        "https://github.com/acme/blog",
		Credential:     "ghp_abc123",
		LocalPath:      "/var/cms/blog",
		BuildCommand:   []string{"npm", "run", "build"},
		BuildOutputDir: "dist",
	}
}

func fieldsOf(violations []Violation) []string {
	fields := make([]string, 0, len(violations))
	for _, v := range violations {
		fields = append(fields, v.Field)
	}
	return fields
}

func TestValidate_OK(t *testing.T) {
	cfg := validSite()
	assert.Empty(t, Validate(&cfg))
}

func TestValidate_RequiredFields(t *testing.T) {
	cfg := SiteConfig{}
	fields := fieldsOf(Validate(&cfg))
	assert.Contains(t, fields, "id")
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "repoUrl")
	assert.Contains(t, fields, "localPath")
}

func TestValidate_RepoURL(t *testing.T) {
	cases := []struct {
		name string
		url  string
		ok   bool
	}{
		{"https", "https://github.com/acme/blog", true},
		{"http", "http://git.internal/acme/blog", true},
		{"local path", "/srv/git/blog", true},
		{"relative path", "../fixtures/blog", true},
		{"ssh scheme", "ssh://git@github.com/acme/blog", false},
		{"whitespace", "https://github.com/acme/b log", false},
		{"empty", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validSite()
			cfg.RepoURL = tc.url
			violations := Validate(&cfg)
			if tc.ok {
				assert.Empty(t, violations)
			} else {
				assert.Contains(t, fieldsOf(violations), "repoUrl")
			}
		})
	}
}

func TestValidate_Credential(t *testing.T) {
	cases := []struct {
		name string
		cred string
		ok   bool
	}{
		{"empty allowed", "", true},
		{"bare token", "ghp_abc123", true},
		{"user and token", "ci-bot:ghp_abc123", true},
		{"embedded space", "ghp abc", false},
		{"leading colon", ":token", false},
		{"two colons", "a:b:c", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validSite()
			cfg.Credential = tc.cred
			violations := Validate(&cfg)
			if tc.ok {
				assert.Empty(t, violations)
			} else {
				assert.Contains(t, fieldsOf(violations), "credential")
			}
		})
	}
}

func TestValidate_RelationalConfigs(t *testing.T) {
	cfg := validSite()
	cfg.RelationalFiles = []RelationalFileConfig{
		{
			FilePattern: "",
			EditableTables: []TableAccessConfig{
				{Name: "", PrimaryKey: PrimaryKeyConfig{Strategy: "sequence"}},
				{Name: "posts", PrimaryKey: PrimaryKeyConfig{Strategy: PKCustom}},
			},
		},
	}

	fields := fieldsOf(Validate(&cfg))
	assert.Contains(t, fields, "relationalFiles[0].filePattern")
	assert.Contains(t, fields, "relationalFiles[0].editableTables[0].name")
	assert.Contains(t, fields, "relationalFiles[0].editableTables[0].primaryKey.strategy")
	assert.Contains(t, fields, "relationalFiles[0].editableTables[1].primaryKey.column")
}

func TestValidate_CustomFileTypes(t *testing.T) {
	cfg := validSite()
	cfg.CustomFileTypes = []CustomFileTypeConfig{
		{Extensions: nil, TreatAs: "binary"},
	}
	fields := fieldsOf(Validate(&cfg))
	assert.Contains(t, fields, "customFileTypes[0].extensions")
	assert.Contains(t, fields, "customFileTypes[0].treatAs")
}

func TestValidateRegistry_DuplicateIDs(t *testing.T) {
	a := validSite()
	b := validSite()
	reg := &Registry{Sites: []SiteConfig{a, b}}

	violations := ValidateRegistry(reg)
	require.Len(t, violations, 1)
	assert.Equal(t, "sites[1].id", violations[0].Field)
	assert.Contains(t, violations[0].Message, "duplicate")
}
