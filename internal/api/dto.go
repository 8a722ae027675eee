package api

import "github.com/starford/frankmd/internal/noteservice"

// NoteDetail is the full note response type (aliased from the domain layer).
type NoteDetail = noteservice.NoteDetail

// ContentRequest is the body of note create and save requests.
type ContentRequest struct {
	Content string `json:"content"`
}

// RenameRequest is the body of note and folder rename requests.
type RenameRequest struct {
	NewPath string `json:"new_path"`
}

// RenameResponse is returned after a successful rename.
type RenameResponse struct {
	OldPath string `json:"old_path"`
	NewPath string `json:"new_path"`
	Message string `json:"message"`
}

// FolderResponse is returned after a folder is created.
type FolderResponse struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// MessageResponse is returned by deletes.
type MessageResponse struct {
	Message string `json:"message"`
}
