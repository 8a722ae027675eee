// Package models defines the data shapes exchanged between the notes store,
// search, and the request layer.
package models

import "encoding/json"

// Node types.
const (
	NodeFolder = "folder"
	NodeFile   = "file"
)

// TreeNode is one entry of the sidebar listing. Folder nodes carry their
// ordered children; file nodes never do.
type TreeNode struct {
	Name     string     `json:"name"`
	Path     string     `json:"path"`
	Type     string     `json:"type"`
	Children []TreeNode `json:"children,omitempty"`
}

// IsFolder reports whether the node is a folder.
func (n TreeNode) IsFolder() bool {
	return n.Type == NodeFolder
}

// MarshalJSON always emits "children" for folders, even when empty, and
// never for files.
func (n TreeNode) MarshalJSON() ([]byte, error) {
	if !n.IsFolder() {
		return json.Marshal(struct {
			Name string `json:"name"`
			Path string `json:"path"`
			Type string `json:"type"`
		}{n.Name, n.Path, n.Type})
	}
	children := n.Children
	if children == nil {
		children = []TreeNode{}
	}
	return json.Marshal(struct {
		Name     string     `json:"name"`
		Path     string     `json:"path"`
		Type     string     `json:"type"`
		Children []TreeNode `json:"children"`
	}{n.Name, n.Path, n.Type, children})
}

// SearchHit is one matching line found by a content search.
type SearchHit struct {
	Path       string        `json:"path"`
	LineNumber int           `json:"line_number"`
	MatchText  string        `json:"match_text"`
	Context    []ContextLine `json:"context"`
}

// ContextLine is a line surrounding (or being) a search match.
type ContextLine struct {
	LineNumber int    `json:"line_number"`
	Content    string `json:"content"`
	IsMatch    bool   `json:"is_match"`
}
