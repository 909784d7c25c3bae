package access

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billstark001/fiction-cms-sub001/pkg/cmserr"
	"github.com/billstark001/fiction-cms-sub001/pkg/siteconfig"
)

func guardedSite() *siteconfig.SiteConfig {
	return &siteconfig.SiteConfig{
		ID:            "blog",
		EditablePaths: []string{"content/posts", "static/images/"},
	}
}

func TestIsPathAllowed(t *testing.T) {
	cfg := guardedSite()

	cases := []struct {
		path    string
		allowed bool
	}{
		{"content/posts/hello.md", true},
		{"content/posts", true},
		{"./content/posts/sub/deep.md", true},
		{"/content/posts/rooted.md", true},
		{"static/images/logo.png", true},
		{"content/pages/about.md", false},
		{"static/js/app.js", false},
		{"", false},
		{"content/posts/../../secrets.env", false},
		{"../outside.txt", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, IsPathAllowed(cfg, tc.path), "path %q", tc.path)
	}

	// Prefix matching is by string, so sibling names sharing a prefix
	// without a separator are admitted.
	assert.True(t, IsPathAllowed(cfg, "content/posts-draft/x.md"))
}

func TestIsPathAllowed_Unrestricted(t *testing.T) {
	cfg := &siteconfig.SiteConfig{ID: "open"}
	assert.True(t, IsPathAllowed(cfg, "anything/goes.md"))
	assert.True(t, IsPathAllowed(cfg, "deep/nested/file.bin"))
}

func TestRequirePathAllowed(t *testing.T) {
	cfg := guardedSite()
	err := RequirePathAllowed(cfg, "write_text", "secrets/key.pem")
	require.Error(t, err)
	assert.True(t, cmserr.IsAccessDenied(err))
	assert.NoError(t, RequirePathAllowed(cfg, "write_text", "content/posts/a.md"))
}

func TestResolveWithin(t *testing.T) {
	root := t.TempDir()

	abs, err := ResolveWithin(root, "content/posts/a.md")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "content", "posts", "a.md"), abs)

	// The root itself resolves.
	abs, err = ResolveWithin(root, ".")
	require.NoError(t, err)
	assert.Equal(t, root, abs)

	_, err = ResolveWithin(root, "../escape.txt")
	require.Error(t, err)
	assert.True(t, cmserr.IsAccessDenied(err))

	_, err = ResolveWithin(root, "a/../../../../etc/passwd")
	require.Error(t, err)
	assert.True(t, cmserr.IsAccessDenied(err))
}

func TestResolveRelationalFile(t *testing.T) {
	cfg := &siteconfig.SiteConfig{
		RelationalFiles: []siteconfig.RelationalFileConfig{
			{FilePattern: "data/*.db"},
			{FilePattern: "archive/**/*.sqlite"},
		},
	}

	rfc, err := ResolveRelationalFile(cfg, "data/site.db")
	require.NoError(t, err)
	assert.Equal(t, "data/*.db", rfc.FilePattern)

	rfc, err = ResolveRelationalFile(cfg, "archive/2024/q1/events.sqlite")
	require.NoError(t, err)
	assert.Equal(t, "archive/**/*.sqlite", rfc.FilePattern)

	_, err = ResolveRelationalFile(cfg, "data/nested/other.db")
	require.Error(t, err)
	assert.True(t, cmserr.IsAccessDenied(err))
}

func TestResolveTableAccess(t *testing.T) {
	rfc := &siteconfig.RelationalFileConfig{
		EditableTables: []siteconfig.TableAccessConfig{
			{Name: "posts"},
		},
	}

	tac, err := ResolveTableAccess(rfc, "posts")
	require.NoError(t, err)
	assert.Equal(t, "posts", tac.Name)

	_, err = ResolveTableAccess(rfc, "users")
	require.Error(t, err)
	assert.True(t, cmserr.IsAccessDenied(err))
}

func TestCheckWritableColumns(t *testing.T) {
	tac := &siteconfig.TableAccessConfig{
		Name:            "posts",
		EditableColumns: []string{"title", "body"},
	}

	assert.NoError(t, CheckWritableColumns(tac, []string{"title"}))
	assert.NoError(t, CheckWritableColumns(tac, []string{"title", "body"}))

	err := CheckWritableColumns(tac, []string{"title", "author_id"})
	require.Error(t, err)
	assert.True(t, cmserr.IsAccessDenied(err))
	assert.Contains(t, err.Error(), "author_id")

	open := &siteconfig.TableAccessConfig{Name: "tags"}
	assert.NoError(t, CheckWritableColumns(open, []string{"anything"}))
}

func TestReadableColumns(t *testing.T) {
	tac := &siteconfig.TableAccessConfig{
		Name:            "posts",
		ReadableColumns: []string{"id", "title"},
	}
	available := []string{"id", "title", "body", "secret"}

	assert.Equal(t, []string{"id", "title"}, ReadableColumns(tac, available))
	assert.True(t, IsColumnReadable(tac, "id"))
	assert.False(t, IsColumnReadable(tac, "secret"))

	open := &siteconfig.TableAccessConfig{Name: "tags"}
	assert.Equal(t, available, ReadableColumns(open, available))
}

func TestMatchGlob(t *testing.T) {
	cases := []struct {
		pattern string
		path    string
		match   bool
	}{
		{"data/*.db", "data/site.db", true},
		{"data/*.db", "data/sub/site.db", false},
		{"data/**/*.db", "data/sub/site.db", true},
		{"data/**", "data/anything/at/all", true},
		{"*.db", "site.db", true},
		{"*.db", "data/site.db", false},
		{"data/site-?.db", "data/site-1.db", true},
		{"data/site-?.db", "data/site-12.db", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.match, MatchGlob(tc.pattern, tc.path), "pattern %q path %q", tc.pattern, tc.path)
	}
}
