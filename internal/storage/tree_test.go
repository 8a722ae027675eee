package storage

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/frankmd/internal/models"
)

func TestTree_Empty(t *testing.T) {
	s := tempNotes(t)
	tree, err := s.Tree()
	require.NoError(t, err)
	assert.Empty(t, tree)
}

func TestTree_NestedNote(t *testing.T) {
	s := tempNotes(t)
	require.NoError(t, s.Write("a/b/c.md", []byte("hello")))

	tree, err := s.Tree()
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, models.TreeNode{
		Name: "a", Path: "a", Type: models.NodeFolder,
		Children: []models.TreeNode{{
			Name: "b", Path: "a/b", Type: models.NodeFolder,
			Children: []models.TreeNode{{Name: "c", Path: "a/b/c.md", Type: models.NodeFile}},
		}},
	}, tree[0])
}

func TestTree_Ordering(t *testing.T) {
	s := tempNotes(t)
	for _, p := range []string{"zebra.md", "Apple.md", "banana.md", "Zoo/x.md", "alpha/y.md", "Beta/z.md"} {
		require.NoError(t, s.Write(p, []byte("x")))
	}

	tree, err := s.Tree()
	require.NoError(t, err)
	var names []string
	for _, n := range tree {
		names = append(names, n.Type+":"+n.Name)
	}
	assert.Equal(t, []string{
		"folder:alpha", "folder:Beta", "folder:Zoo",
		"file:Apple", "file:banana", "file:zebra",
	}, names)
}

func TestTree_SkipsHiddenAndNonMarkdown(t *testing.T) {
	s := tempNotes(t)
	require.NoError(t, s.Write(".hidden.md", []byte("h")))
	require.NoError(t, s.Write(".git/config.md", []byte("h")))
	require.NoError(t, s.Write("visible.md", []byte("v")))
	require.NoError(t, s.Write("readme.txt", []byte("t")))
	require.NoError(t, s.Write("img/pic.png", []byte("p")))

	tree, err := s.Tree()
	require.NoError(t, err)
	require.Len(t, tree, 2)
	assert.Equal(t, "img", tree[0].Name)
	assert.Empty(t, tree[0].Children)
	assert.Equal(t, "visible", tree[1].Name)
}

func TestTree_SymlinksOmitted(t *testing.T) {
	s := tempNotes(t)
	outside := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret.md"), []byte("s"), 0o644))
	if err := os.Symlink(outside, filepath.Join(s.Root(), "link")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	tree, err := s.Tree()
	require.NoError(t, err)
	assert.Empty(t, tree)
}

func TestTree_Deep(t *testing.T) {
	s := tempNotes(t)
	parts := make([]string, 64)
	for i := range parts {
		parts[i] = "d"
	}
	deep := strings.Join(parts, "/") + "/leaf.md"
	require.NoError(t, s.Write(deep, []byte("leaf")))

	tree, err := s.Tree()
	require.NoError(t, err)
	depth := 0
	node := tree[0]
	for node.IsFolder() {
		depth++
		require.Len(t, node.Children, 1)
		node = node.Children[0]
	}
	assert.Equal(t, 64, depth)
	assert.Equal(t, deep, node.Path)

	var visited []string
	require.NoError(t, s.Walk(func(rel, _ string) error {
		visited = append(visited, rel)
		return nil
	}))
	assert.Equal(t, []string{deep}, visited)
}

func TestWalk_TreeOrderAndStop(t *testing.T) {
	s := tempNotes(t)
	for _, p := range []string{"b.md", "a.md", "dir/z.md", "dir/sub/y.md", "notes.txt"} {
		require.NoError(t, s.Write(p, []byte("x")))
	}

	var visited []string
	require.NoError(t, s.Walk(func(rel, abs string) error {
		assert.Equal(t, filepath.Join(s.Root(), filepath.FromSlash(rel)), abs)
		visited = append(visited, rel)
		return nil
	}))
	assert.Equal(t, []string{"dir/sub/y.md", "dir/z.md", "a.md", "b.md"}, visited)

	visited = nil
	require.NoError(t, s.Walk(func(rel, _ string) error {
		visited = append(visited, rel)
		if len(visited) == 2 {
			return fs.SkipAll
		}
		return nil
	}))
	assert.Len(t, visited, 2)
}

func TestTreeNode_JSON(t *testing.T) {
	folder := models.TreeNode{Name: "f", Path: "f", Type: models.NodeFolder}
	file := models.TreeNode{Name: "n", Path: "f/n.md", Type: models.NodeFile}

	data, err := json.Marshal([]models.TreeNode{folder, file})
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"name":"f","path":"f","type":"folder","children":[]},
		{"name":"n","path":"f/n.md","type":"file"}
	]`, string(data))
}
