package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse_FrontmatterAndBody(t *testing.T) {
	r := Parse([]byte("---\ntitle: Hello\ntags:\n  - go\n  - notes\n---\n# Heading\nBody text.\n"))

	assert.Equal(t, "Hello", r.Title)
	assert.Equal(t, []string{"go", "notes"}, r.Tags)
	assert.Equal(t, "# Heading\nBody text.\n", r.Body)
	assert.Equal(t, "Hello", r.Frontmatter["title"])
}

func TestParse_NoFrontmatter(t *testing.T) {
	r := Parse([]byte("# Just a heading\nSome text.\n"))

	assert.Nil(t, r.Frontmatter)
	assert.Equal(t, "Just a heading", r.Title)
	assert.Equal(t, "# Just a heading\nSome text.\n", r.Body)
}

func TestParse_EmptyFrontmatter(t *testing.T) {
	r := Parse([]byte("---\n---\nbody\n"))

	assert.NotNil(t, r.Frontmatter)
	assert.Empty(t, r.Frontmatter)
	assert.Equal(t, "body\n", r.Body)
}

func TestParse_InvalidYAMLKeepsContentAsBody(t *testing.T) {
	input := "---\n: invalid: yaml: {{{\n---\nBody\n"
	r := Parse([]byte(input))

	assert.Nil(t, r.Frontmatter)
	assert.Equal(t, input, r.Body)
}

func TestParse_UnclosedFrontmatter(t *testing.T) {
	input := "---\ntitle: x\nno end\n"
	r := Parse([]byte(input))

	assert.Nil(t, r.Frontmatter)
	assert.Equal(t, input, r.Body)
	assert.Empty(t, r.Title)
}

func TestParse_HorizontalRuleIsNotFrontmatter(t *testing.T) {
	input := "intro\n---\nmore\n"
	r := Parse([]byte(input))

	assert.Nil(t, r.Frontmatter)
	assert.Equal(t, input, r.Body)
}

func TestParse_CRLFFrontmatter(t *testing.T) {
	r := Parse([]byte("---\r\ntitle: Windows\r\n---\r\ntext\r\n"))

	assert.Equal(t, "Windows", r.Title)
	assert.Equal(t, "text\r\n", r.Body)
}

func TestExtractTags_InlineAndFrontmatter(t *testing.T) {
	fm := map[string]any{"tags": []any{"alpha"}}
	tags := extractTags("Some text #beta and #alpha again.", fm)

	assert.Equal(t, []string{"alpha", "beta"}, tags)
}

func TestExtractTags_CommaString(t *testing.T) {
	fm := map[string]any{"tags": "work, #ideas ,, work"}

	assert.Equal(t, []string{"work", "ideas"}, extractTags("", fm))
}

func TestExtractTags_SkipsHeadingsAndCode(t *testing.T) {
	body := "# Title\n## Section\n```\n#notatag\n```\nprice #1 no, #café yes\nissue#12 stays\n"

	assert.Equal(t, []string{"café"}, extractTags(body, nil))
}

func TestExtractTags_NestedPath(t *testing.T) {
	assert.Equal(t, []string{"project/frank-md"}, extractTags("#project/frank-md", nil))
}

func TestExtractTags_NeverNil(t *testing.T) {
	assert.NotNil(t, extractTags("", nil))
}

func TestDeriveTitle_FrontmatterOverH1(t *testing.T) {
	fm := map[string]any{"title": "  From FM  "}

	assert.Equal(t, "From FM", deriveTitle(fm, "# From H1\n"))
	assert.Equal(t, "From H1", deriveTitle(map[string]any{"title": 42}, "text\n# From H1\n"))
	assert.Equal(t, "", deriveTitle(nil, "## Only H2\n"))
}
