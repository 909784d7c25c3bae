package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/billstark001/fiction-cms-sub001/pkg/siteconfig"
)

func TestClassify(t *testing.T) {
	cfg := &siteconfig.SiteConfig{
		RelationalFiles: []siteconfig.RelationalFileConfig{
			{FilePattern: "data/*.db"},
		},
		ModelFiles: []siteconfig.ModelFileConfig{
			{FilePattern: "models/*.json", SchemaPath: "schemas/page.json"},
		},
		CustomFileTypes: []siteconfig.CustomFileTypeConfig{
			{Extensions: []string{"mdx", ".adoc"}, DisplayName: "Rich Text", TreatAs: siteconfig.TreatAsText},
			{Extensions: []string{"psd"}, DisplayName: "Photoshop", TreatAs: siteconfig.TreatAsAsset},
		},
	}

	cases := []struct {
		path string
		kind FileKind
	}{
		{"data/site.db", KindRelationalStore},
		{"models/page.json", KindModel},
		{"content/page.json", KindText}, // json outside the model glob
		{"content/post.mdx", KindCustom},
		{"content/guide.adoc", KindCustom},
		{"design/hero.psd", KindCustom},
		{"content/post.md", KindText},
		{"static/logo.png", KindAsset},
		{"static/app.wasm", KindUnknown},
		{"Content/Post.MD", KindText}, // extension match is case-insensitive
	}
	for _, tc := range cases {
		got := Classify(cfg, tc.path)
		assert.Equal(t, tc.kind, got.Kind, "path %q", tc.path)
	}

	rich := Classify(cfg, "content/post.mdx")
	assert.Equal(t, "Rich Text", rich.DisplayName)
	assert.Equal(t, siteconfig.TreatAsText, rich.Treatment)

	psd := Classify(cfg, "design/hero.psd")
	assert.Equal(t, siteconfig.TreatAsAsset, psd.Treatment)
}

func TestClassify_ConfigWinsOverExtension(t *testing.T) {
	// A .json file matched by a relational glob classifies as a
	// relational store, not text.
	cfg := &siteconfig.SiteConfig{
		RelationalFiles: []siteconfig.RelationalFileConfig{
			{FilePattern: "data/**"},
		},
	}
	assert.Equal(t, KindRelationalStore, Classify(cfg, "data/records.json").Kind)
}
