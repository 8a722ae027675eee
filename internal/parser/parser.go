// Package parser derives display metadata from note content: YAML frontmatter,
// title, tags and text statistics. Notes themselves are never rewritten.
package parser

import (
	"bytes"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var tagRe = regexp.MustCompile(`(?:^|\s)#([\p{L}][\p{L}\p{N}_/-]*)`)

// Result holds the metadata of one note.
type Result struct {
	Frontmatter map[string]any
	Body        string
	Tags        []string
	Title       string
}

// Parse splits optional frontmatter from the body and derives title and tags.
// Malformed frontmatter is treated as part of the body, so Parse never fails
// on user content.
func Parse(data []byte) Result {
	fm, body := splitFrontmatter(data)
	return Result{
		Frontmatter: fm,
		Body:        body,
		Tags:        extractTags(body, fm),
		Title:       deriveTitle(fm, body),
	}
}

// splitFrontmatter separates a leading "---" YAML block from the body.
func splitFrontmatter(data []byte) (map[string]any, string) {
	const delim = "---"
	if !bytes.HasPrefix(data, []byte(delim+"\n")) && !bytes.HasPrefix(data, []byte(delim+"\r\n")) {
		return nil, string(data)
	}

	rest := data[bytes.IndexByte(data, '\n')+1:]
	var end int
	switch {
	case bytes.HasPrefix(rest, []byte(delim)):
		end = 0
	default:
		idx := bytes.Index(rest, []byte("\n"+delim))
		if idx < 0 {
			return nil, string(data)
		}
		end = idx + 1
	}

	block := rest[:end]
	after := rest[end+len(delim):]
	// The closing delimiter must be alone on its line.
	if len(after) > 0 && after[0] != '\n' && after[0] != '\r' {
		return nil, string(data)
	}

	fm := map[string]any{}
	if err := yaml.Unmarshal(block, &fm); err != nil {
		return nil, string(data)
	}
	return fm, strings.TrimLeft(string(after), "\r\n")
}

// extractTags merges frontmatter tags (list or comma separated string) with
// inline #tags, keeping first-seen order.
func extractTags(body string, fm map[string]any) []string {
	seen := make(map[string]struct{})
	out := []string{}
	add := func(tag string) {
		tag = strings.TrimPrefix(strings.TrimSpace(tag), "#")
		if tag == "" {
			return
		}
		if _, dup := seen[tag]; dup {
			return
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}

	switch v := fm["tags"].(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				add(s)
			}
		}
	case string:
		for _, s := range strings.Split(v, ",") {
			add(s)
		}
	}

	inFence := false
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if inFence || isHeading(trimmed) {
			continue
		}
		for _, m := range tagRe.FindAllStringSubmatch(line, -1) {
			add(m[1])
		}
	}
	return out
}

// deriveTitle prefers frontmatter "title", then the first H1.
func deriveTitle(fm map[string]any, body string) string {
	if s, ok := fm["title"].(string); ok && strings.TrimSpace(s) != "" {
		return strings.TrimSpace(s)
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

func isHeading(line string) bool {
	n := 0
	for n < len(line) && line[n] == '#' {
		n++
	}
	return n > 0 && n <= 6 && (n == len(line) || line[n] == ' ')
}
