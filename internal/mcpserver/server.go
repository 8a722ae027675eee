// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the notes root to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/frankmd/internal/noteservice"
)

// Search argument bounds, the same as the HTTP API.
const (
	maxContextLines  = 20
	maxSearchResults = 1000
)

const (
	treeURI        = "frankmd://tree"
	conventionsURI = "frankmd://conventions"
)

// Server wraps the MCP server with the notes tools.
type Server struct {
	mcp *server.MCPServer
	svc *noteservice.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *noteservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"FrankMD",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_tree",
		mcp.WithDescription("List all folders and notes as a JSON tree (folders first, alphabetical)."),
	), s.listTree)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read the full content of a Markdown note."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the note (e.g. folder/note.md)")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a new note. Fails if the path already exists. "+
			"See the "+conventionsURI+" resource for path and content rules."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path for the new note; .md is added when missing")),
		mcp.WithString("content", mcp.Description("Markdown content")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("save_note",
		mcp.WithDescription("Replace the content of a note, creating it when it does not exist."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the note")),
		mcp.WithString("content", mcp.Required(), mcp.Description("New Markdown content")),
		mcp.WithString("checksum", mcp.Description("Optional checksum from read; the save fails if the note changed since")),
	), s.saveNote)

	s.mcp.AddTool(mcp.NewTool("delete_note",
		mcp.WithDescription("Delete a note."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the note")),
	), s.deleteNote)

	s.mcp.AddTool(mcp.NewTool("rename_path",
		mcp.WithDescription("Rename or move a note or a folder (with everything inside it)."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Current relative path")),
		mcp.WithString("new_path", mcp.Required(), mcp.Description("New relative path")),
	), s.renamePath)

	s.mcp.AddTool(mcp.NewTool("create_folder",
		mcp.WithDescription("Create a folder and any missing parents."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative folder path")),
	), s.createFolder)

	s.mcp.AddTool(mcp.NewTool("delete_folder",
		mcp.WithDescription("Delete an empty folder."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative folder path")),
	), s.deleteFolder)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Search note contents with a case-insensitive regular expression. "+
			"Returns JSON hits with line numbers and context lines."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Regular expression or plain text")),
		mcp.WithNumber("context_lines", mcp.Description("Lines of context around each hit")),
		mcp.WithNumber("max_results", mcp.Description("Maximum number of hits")),
	), s.searchNotes)

	s.mcp.AddResource(
		mcp.NewResource(treeURI, "Notes Tree",
			mcp.WithResourceDescription("Current folder and note listing as JSON."),
			mcp.WithMIMEType("application/json"),
		),
		s.readTreeResource,
	)

	s.mcp.AddResource(
		mcp.NewResource(conventionsURI, "Note Conventions",
			mcp.WithResourceDescription("How notes are named, stored and searched."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readConventionsResource,
	)

	return s
}

// ServeStdio serves MCP on the given streams until ctx is done or in closes.
// Server errors are logged to errLog.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer, errLog *log.Logger) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(errLog)
	return stdio.Listen(ctx, in, out)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listTree(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tree, err := s.svc.Tree(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(tree)
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.svc.GetNote(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(note.Content), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content := req.GetString("content", "")

	note, err := s.svc.CreateNote(ctx, path, []byte(content))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", note.Path)), nil
}

func (s *Server) saveNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	note, err := s.svc.SaveNote(ctx, path, []byte(content), req.GetString("checksum", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("saved: %s (checksum %s)", note.Path, note.Checksum)), nil
}

func (s *Server) deleteNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.DeleteNote(ctx, path); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", path)), nil
}

func (s *Server) renamePath(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	newPath, err := req.RequireString("new_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	got, err := s.svc.RenamePath(ctx, path, newPath)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("renamed: %s -> %s", path, got)), nil
}

func (s *Server) createFolder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.CreateFolder(ctx, path); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created folder: %s", path)), nil
}

func (s *Server) deleteFolder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.DeleteFolder(ctx, path); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted folder: %s", path)), nil
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	opts := s.svc.SearchDefaults()
	opts.ContextLines = min(max(req.GetInt("context_lines", opts.ContextLines), 0), maxContextLines)
	opts.MaxResults = min(max(req.GetInt("max_results", opts.MaxResults), 1), maxSearchResults)

	hits, err := s.svc.Search(ctx, query, opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(hits)
}

func (s *Server) readTreeResource(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	tree, err := s.svc.Tree(ctx)
	if err != nil {
		return nil, err
	}
	out, err := json.Marshal(tree)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      treeURI,
			MIMEType: "application/json",
			Text:     string(out),
		},
	}, nil
}

func (s *Server) readConventionsResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      conventionsURI,
			MIMEType: "text/markdown",
			Text:     NoteConventions,
		},
	}, nil
}
