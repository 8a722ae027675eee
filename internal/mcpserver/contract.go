package mcpserver

// NoteConventions describes how notes are stored so that LLM clients create
// files the editor will list and render.
const NoteConventions = `# FrankMD Note Conventions

Notes are plain Markdown files below the notes root. There is no database:
what is on disk is what the editor shows.

## Paths

1. Paths are relative to the notes root and use forward slashes.
2. Notes end with ` + "`.md`" + `. ` + "`create_note`" + ` adds the extension when it is missing.
3. Entries whose name starts with a dot are hidden: they never appear in the tree
   or in search results.
4. Paths may not leave the root. ` + "`..`" + ` segments are stripped.
5. A folder can only be deleted when it is empty.

## Content

- UTF-8 Markdown. Frontmatter is optional:

` + "```" + `markdown
---
title: Shown instead of the first heading
tags: [work, ideas]
---

# Heading

Inline #tags are collected too.
` + "```" + `

## Search

` + "`search_notes`" + ` takes a case-insensitive regular expression (RE2 syntax). An
invalid expression is matched as literal text. Hits are reported one per line
with surrounding context lines, in tree order.
`
